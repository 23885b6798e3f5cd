// Package external hands downloads over to an external download manager program.
package external

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/alanbriolat/download-prompt"
	"github.com/alanbriolat/download-prompt/generic"
)

const Name = "external"

var (
	ErrDisabled      = errors.New("external download manager disabled")
	ErrNoCommand     = errors.New("no external download manager configured")
	ErrSelf          = errors.New("external download manager is this program")
	ErrUnknownScheme = errors.New("unknown URL scheme")
	ErrExcluded      = errors.New("URL excluded from handoff")
)

var protocols = generic.NewSet("http", "https", "magnet", "ftp")

// Browser extension packages must stay with the browser.
var excluded = []string{".googleusercontent.com/crx"}

type Options struct {
	Enabled bool
	// Command is the download manager program, run as: Command Args... URL FILENAME
	Command string
	Args    []string
	// Self is the path of the running program, which is never handed to itself.
	Self string
}

func NewHandler(opt Options) download_prompt.Handler {
	return download_prompt.Handler{
		Name: Name,
		Match: func(req download_prompt.DownloadRequest) (download_prompt.Handoff, error) {
			return Match(opt, req)
		},
		Priority: download_prompt.PriorityDefault,
	}
}

func Match(opt Options, req download_prompt.DownloadRequest) (download_prompt.Handoff, error) {
	if !opt.Enabled {
		return nil, ErrDisabled
	}
	if opt.Command == "" {
		return nil, ErrNoCommand
	}
	if opt.Self != "" && filepath.Base(opt.Command) == filepath.Base(opt.Self) {
		return nil, ErrSelf
	}
	parsedURL, err := url.Parse(req.URL)
	if err != nil {
		return nil, err
	}
	if !protocols.Contains(strings.ToLower(parsedURL.Scheme)) {
		return nil, fmt.Errorf("%w %q", ErrUnknownScheme, parsedURL.Scheme)
	}
	lowerURL := strings.ToLower(req.URL)
	for _, fragment := range excluded {
		if strings.Contains(lowerURL, fragment) {
			return nil, ErrExcluded
		}
	}
	return &handoff{
		command:  opt.Command,
		args:     opt.Args,
		url:      req.URL,
		filename: filepath.Base(req.SuggestedPath),
	}, nil
}

type handoff struct {
	command  string
	args     []string
	url      string
	filename string
}

func (h *handoff) String() string {
	return fmt.Sprintf("%v <- %v (%v)", h.command, h.url, h.filename)
}

// Launch starts the download manager without waiting for it to finish; it outlives the session.
func (h *handoff) Launch(ctx context.Context) error {
	log := download_prompt.Logger(ctx).Sugar().Named("external")
	args := append(append([]string(nil), h.args...), h.url, h.filename)
	cmd := exec.Command(h.command, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %v: %w", h.command, err)
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			log.Warnf("%v exited: %v", h.command, err)
		} else {
			log.Debugf("%v exited", h.command)
		}
	}()
	return nil
}

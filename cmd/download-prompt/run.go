package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/r3labs/diff/v3"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/alanbriolat/download-prompt"
	"github.com/alanbriolat/download-prompt/handoff/external"
	"github.com/alanbriolat/download-prompt/internal/catalog"
	"github.com/alanbriolat/download-prompt/internal/config"
	"github.com/alanbriolat/download-prompt/internal/pubsub"
	"github.com/alanbriolat/download-prompt/internal/session"
	"github.com/alanbriolat/download-prompt/internal/tui"
	"github.com/alanbriolat/download-prompt/util"
)

// exitCancelled is the exit status when the download was cancelled or handed off.
const exitCancelled = 2

func runCommand(ctx context.Context) *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "prompt for one download and print the decision",
		ArgsUsage: "[PATH]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "url",
				Usage: "`URL` being downloaded, used for handoff",
			},
			&cli.StringFlag{
				Name:  "size",
				Value: "0",
				Usage: "total download `SIZE`, e.g. 500MB",
			},
			&cli.StringFlag{
				Name:  "connection",
				Value: download_prompt.ConnectionUnknown.String(),
				Usage: "current network connection `TYPE`",
			},
			&cli.StringFlag{
				Name:  "reason",
				Value: download_prompt.LocationDialogDefault.String(),
				Usage: "why the backend wants a location chosen",
			},
			&cli.BoolFlag{
				Name:  "later-supported",
				Value: true,
				Usage: "whether the network allows downloading later",
			},
			&cli.BoolFlag{
				Name:  "incognito",
				Usage: "the download comes from an incognito window",
			},
			&cli.BoolFlag{
				Name:  "watch",
				Usage: "reload the configuration file when it changes",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() > 1 {
				return cli.Exit("expected at most one PATH", 1)
			}
			cfg, path, err := loadConfig(c)
			if err != nil {
				return err
			}
			req, err := parseRequest(c, cfg.Prompt.DefaultDirectory)
			if err != nil {
				return err
			}
			outcome, err := prompt(ctx, cfg, path, c.Bool("watch"), req)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, outcome)
			if outcome.Cancelled {
				return cli.Exit("", exitCancelled)
			}
			return nil
		},
	}
}

// parseRequest builds the request from flags. Without a PATH argument the file is named after the URL and placed in
// defaultDir.
func parseRequest(c *cli.Context, defaultDir string) (req download_prompt.DownloadRequest, err error) {
	req.URL = c.String("url")
	req.SuggestedPath = c.Args().First()
	if req.SuggestedPath == "" {
		if req.URL == "" {
			return req, cli.Exit("either PATH or --url is required", 1)
		}
		filename, err := util.FilenameFromURL(req.URL)
		if err != nil {
			return req, fmt.Errorf("can't name the file from --url: %w", err)
		}
		req.SuggestedPath = filepath.Join(defaultDir, filename)
	}
	req.LaterDialogSupported = c.Bool("later-supported")
	req.IsIncognito = c.Bool("incognito")
	if req.TotalBytes, err = download_prompt.ParseBytes(c.String("size")); err != nil {
		return req, fmt.Errorf("invalid --size: %w", err)
	}
	if req.ConnectionType, err = download_prompt.ParseConnectionType(c.String("connection")); err != nil {
		return req, fmt.Errorf("invalid --connection: %w", err)
	}
	if req.LocationDialogReason, err = download_prompt.ParseLocationDialogReason(c.String("reason")); err != nil {
		return req, fmt.Errorf("invalid --reason: %w", err)
	}
	return req, nil
}

// prompt runs a single session against the terminal and waits for its outcome.
func prompt(ctx context.Context, cfg config.Config, configPath string, watch bool, req download_prompt.DownloadRequest) (download_prompt.Outcome, error) {
	logger := zap.S()

	prefsDB, err := openPreferences(cfg)
	if err != nil {
		return download_prompt.Outcome{}, fmt.Errorf("failed to open preferences: %w", err)
	}
	defer prefsDB.Close()

	hist, err := openHistory(cfg)
	if err != nil {
		return download_prompt.Outcome{}, fmt.Errorf("failed to open history: %w", err)
	}
	defer hist.Close()

	prefs, err := prefsDB.ReadPreferences()
	if err != nil {
		logger.Warnf("failed to read preferences: %v", err)
	}
	self, err := os.Executable()
	if err != nil {
		logger.Debugf("can't locate own executable: %v", err)
	}
	var handoffs download_prompt.HandoffRegistry
	handoffs.MustAdd(external.NewHandler(external.Options{
		Enabled: prefs.HandoffEnabled.UnwrapOr(cfg.Handoff.Enabled),
		Command: prefs.HandoffCommand.UnwrapOr(cfg.Handoff.Command),
		Args:    cfg.Handoff.Args,
		Self:    self,
	}))

	dirs := catalog.New(cfg.Directories...)
	dialogs := tui.New(dirs)

	sessionConfig := session.DefaultConfig
	sessionConfig.Prompt = cfg.Prompt
	sessionConfig.Database = prefsDB
	sessionConfig.Catalog = dirs
	sessionConfig.Metrics = hist
	sessionConfig.Handoff = &handoffs
	sessionConfig.LaterDialog = dialogs.Later()
	sessionConfig.LocationDialog = dialogs.Location()
	manager, err := session.New(sessionConfig, ctx)
	if err != nil {
		return download_prompt.Outcome{}, err
	}
	defer func() {
		if err := manager.Close(context.Background()); err != nil {
			logger.Warnf("failed to close sessions: %v", err)
		}
	}()

	// Flow diffs are only ever logged at debug level, so don't bother computing them otherwise
	debug := zap.L().Core().Enabled(zapcore.DebugLevel)
	events, err := manager.SubscribeFiltered(func(event session.Event) bool {
		_, isUpdate := event.(session.FlowUpdated)
		return debug || !isUpdate
	})
	if err != nil {
		return download_prompt.Outcome{}, err
	}
	go logEvents(events)

	if watch && configPath != "" {
		watcher, err := config.Watch(ctx, configPath, func(cfg config.Config) {
			logger.Infof("configuration reloaded from %v", configPath)
			manager.SetPromptConfig(cfg.Prompt)
		})
		if err != nil {
			return download_prompt.Outcome{}, err
		}
		defer watcher.Close()
	}

	outcomes := make(chan download_prompt.Outcome, 1)
	if _, err := manager.Start(ctx, req, download_prompt.SinkFunc(func(o download_prompt.Outcome) {
		outcomes <- o
	})); err != nil {
		return download_prompt.Outcome{}, err
	}
	// Interrupting tears the session down, which still reports an outcome
	return <-outcomes, nil
}

func logEvents(events pubsub.ReceiverCloser[session.Event]) {
	logger := zap.S().Named("events")
	for event := range events.Receive() {
		logger.Debugf("event: %T: %v", event, event.Session())
		switch e := event.(type) {
		case session.DialogShown:
			logger.Infof("showing %v dialog", e.Dialog)
		case session.FlowUpdated:
			changes, err := diff.Diff(e.OldState, e.NewState)
			if err != nil {
				logger.Errorf("failed to diff old and new flow state: %v", err)
			} else {
				for _, change := range changes {
					logger.Debugf("%v: %#v -> %#v", change.Path, change.From, change.To)
				}
			}
		case session.OutcomeEmitted:
			logger.Infof("outcome: %v", e.Outcome)
		}
	}
}

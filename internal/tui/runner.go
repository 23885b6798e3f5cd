// Package tui renders the prompt dialogs in the terminal.
package tui

import (
	"context"
	"errors"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/alanbriolat/download-prompt"
	"github.com/alanbriolat/download-prompt/async"
	"github.com/alanbriolat/download-prompt/internal/sync_"
)

var (
	ErrBusy = errors.New("another dialog is open")
)

type resultKind int

const (
	resultNone resultKind = iota
	resultChoice
	resultEdit
	resultPath
	resultCancel
)

type result struct {
	kind   resultKind
	choice download_prompt.SchedulingChoice
	path   string
}

// dialogModel is a tea.Model that ends with a result.
type dialogModel interface {
	tea.Model
	result() result
}

type dialogKind string

const (
	kindLater    dialogKind = "later"
	kindLocation dialogKind = "location"
)

type running struct {
	kind      dialogKind
	program   *tea.Program
	dismissed sync_.Event
	done      chan struct{}
}

// runner runs at most one dialog program at a time.
type runner struct {
	options []tea.ProgramOption
	mu      sync.Mutex
	current *running
}

func (r *runner) start(ctx context.Context, kind dialogKind, model dialogModel, deliver func(result)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current != nil {
		select {
		case <-r.current.done:
		default:
			return ErrBusy
		}
	}
	log := download_prompt.Logger(ctx).Sugar().Named("tui")
	options := append([]tea.ProgramOption{tea.WithContext(ctx)}, r.options...)
	run := &running{
		kind:    kind,
		program: tea.NewProgram(model, options...),
		done:    make(chan struct{}),
	}
	r.current = run
	results := async.RunResult(run.program.Run)
	go func() {
		final, err := (<-results).Parts()
		// A result can open the next dialog, so the runner is freed before delivering it
		close(run.done)
		if run.dismissed.IsSet() {
			return
		}
		if err != nil {
			log.Warnf("%v dialog failed: %v", kind, err)
			deliver(result{kind: resultCancel})
			return
		}
		deliver(final.(dialogModel).result())
	}()
	return nil
}

// dismiss closes the dialog of the given kind, if open, without delivering a result.
func (r *runner) dismiss(kind dialogKind) {
	r.mu.Lock()
	run := r.current
	r.mu.Unlock()
	if run == nil || run.kind != kind {
		return
	}
	run.dismissed.Set()
	run.program.Quit()
	<-run.done
}

// Dialogs shows the prompt dialogs one at a time on the terminal.
type Dialogs struct {
	runner
	catalog download_prompt.DirectoryCatalog
	now     func() time.Time
}

func New(catalog download_prompt.DirectoryCatalog, options ...tea.ProgramOption) *Dialogs {
	if catalog == nil {
		catalog = download_prompt.StaticCatalog(nil)
	}
	return &Dialogs{
		runner:  runner{options: options},
		catalog: catalog,
		now:     time.Now,
	}
}

func (d *Dialogs) Later() download_prompt.LaterDialogService {
	return laterDialog{d}
}

func (d *Dialogs) Location() download_prompt.LocationDialogService {
	return locationDialog{d}
}

type laterDialog struct {
	*Dialogs
}

func (d laterDialog) Show(ctx context.Context, req download_prompt.LaterDialogRequest, cb download_prompt.LaterDialogCallbacks) error {
	return d.start(ctx, kindLater, newLaterModel(req, d.now()), func(res result) {
		switch res.kind {
		case resultChoice:
			cb.OnChoice(res.choice)
		case resultEdit:
			cb.OnEditLocation(res.choice)
		default:
			cb.OnCancel()
		}
	})
}

func (d laterDialog) Dismiss() {
	d.dismiss(kindLater)
}

type locationDialog struct {
	*Dialogs
}

func (d locationDialog) Show(ctx context.Context, req download_prompt.LocationDialogRequest, cb download_prompt.LocationDialogCallbacks) error {
	dirs, err := d.catalog.Directories(ctx)
	if err != nil {
		download_prompt.Logger(ctx).Sugar().Named("tui").Debugf("problem listing directories: %v", err)
	}
	return d.start(ctx, kindLocation, newLocationModel(req, dirs), func(res result) {
		if res.kind == resultPath {
			cb.OnPath(res.path)
		} else {
			cb.OnCancel()
		}
	})
}

func (d locationDialog) Dismiss() {
	d.dismiss(kindLocation)
}

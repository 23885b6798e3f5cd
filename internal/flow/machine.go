// Package flow is the state machine deciding which prompt dialog comes next. It performs no I/O: every event returns
// the effects its owner must carry out, in order.
package flow

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/alanbriolat/download-prompt"
)

var (
	ErrInactive        = errors.New("flow no longer active")
	ErrUnexpectedEvent = errors.New("event not expected in current state")
	ErrEditUnavailable = errors.New("edit location not available")
)

type Options struct {
	Config  download_prompt.Config
	Metrics download_prompt.Metrics
	// AllowEditLocation offers "edit location" from the scheduling dialog.
	AllowEditLocation bool
	// ShouldSuggest reports whether the default location is a poor fit for the request; nil never suggests.
	ShouldSuggest func(req download_prompt.DownloadRequest) bool
}

// Snapshot is a copy of the flow state, safe to pass to other goroutines.
type Snapshot struct {
	State         State
	Request       download_prompt.DownloadRequest
	Choice        download_prompt.SchedulingChoice
	Path          string
	EditRequested bool
	Active        bool
}

// Machine is not safe for concurrent use; a session owns one and feeds it events from a single goroutine.
type Machine struct {
	opt  Options
	snap Snapshot
}

func NewMachine(opt Options) *Machine {
	if opt.Metrics == nil {
		opt.Metrics = download_prompt.NilMetrics{}
	}
	return &Machine{
		opt:  opt,
		snap: Snapshot{State: StateInit, Active: true},
	}
}

func (m *Machine) Snapshot() Snapshot {
	return m.snap
}

func (m *Machine) State() State {
	return m.snap.State
}

func (m *Machine) Active() bool {
	return m.snap.Active
}

// Start runs the Init state for req and opens the first dialog.
func (m *Machine) Start(req download_prompt.DownloadRequest) ([]Effect, error) {
	if err := m.expect(StateInit); err != nil {
		return nil, err
	}
	m.snap.Request = req
	m.snap.Choice = download_prompt.Now()
	m.snap.Path = req.SuggestedPath
	m.snap.EditRequested = false

	if m.opt.Config.LocationSuggestionEnabled && req.LocationDialogReason == download_prompt.LocationDialogDefault &&
		m.opt.ShouldSuggest != nil && m.opt.ShouldSuggest(req) {
		m.snap.Request.LocationDialogReason = download_prompt.LocationDialogLocationSuggestion
		m.opt.Metrics.RecordSuggestionShown()
	}

	if m.opt.Config.LaterDialogEnabled && req.LaterDialogSupported {
		return m.showLater()
	}
	return m.showLocation()
}

// LaterChoice handles a confirmed scheduling choice.
func (m *Machine) LaterChoice(choice download_prompt.SchedulingChoice) ([]Effect, error) {
	if err := m.expect(StateAwaitingLater); err != nil {
		return nil, err
	}
	m.snap.Choice = choice
	m.opt.Metrics.RecordLaterChoice(choice.Kind, m.snap.Request.TotalBytes)
	if m.snap.Request.LocationDialogReason == download_prompt.LocationDialogDefault {
		return m.complete()
	}
	m.snap.EditRequested = false
	return m.showLocation()
}

func (m *Machine) LaterCancel() ([]Effect, error) {
	if err := m.expect(StateAwaitingLater); err != nil {
		return nil, err
	}
	m.opt.Metrics.RecordLaterUIEvent(download_prompt.LaterDialogCancel)
	return m.finish(download_prompt.Cancelled())
}

// EditLocation swaps the scheduling dialog for the location dialog, keeping current as the choice to return to.
func (m *Machine) EditLocation(current download_prompt.SchedulingChoice) ([]Effect, error) {
	if err := m.expect(StateAwaitingLater); err != nil {
		return nil, err
	}
	if !m.opt.AllowEditLocation {
		return nil, ErrEditUnavailable
	}
	m.opt.Metrics.RecordLaterUIEvent(download_prompt.LaterDialogEditClicked)
	m.snap.Choice = current
	m.snap.EditRequested = true
	effects, err := m.showLocation()
	if err != nil {
		return nil, err
	}
	return append([]Effect{DismissLaterDialog{}}, effects...), nil
}

// LocationPath handles a picked location.
func (m *Machine) LocationPath(path string) ([]Effect, error) {
	if err := m.expect(StateAwaitingLocation); err != nil {
		return nil, err
	}
	m.snap.Path = path
	if m.snap.Request.LocationDialogReason == download_prompt.LocationDialogLocationSuggestion {
		// Accepted means the file went somewhere other than the default directory
		accepted := filepath.Dir(filepath.Clean(path)) != filepath.Clean(m.opt.Config.DefaultDirectory)
		m.opt.Metrics.RecordSuggestionChoice(accepted)
	}
	if m.snap.EditRequested {
		m.snap.EditRequested = false
		return m.showLater()
	}
	return m.complete()
}

func (m *Machine) LocationCancel() ([]Effect, error) {
	if err := m.expect(StateAwaitingLocation); err != nil {
		return nil, err
	}
	if m.snap.EditRequested {
		m.snap.EditRequested = false
		return m.showLater()
	}
	return m.finish(download_prompt.Cancelled())
}

// Cancel tears the flow down from any state, closing an open dialog and emitting Cancelled unless an outcome has
// already been emitted.
func (m *Machine) Cancel() ([]Effect, error) {
	if !m.snap.Active {
		return nil, ErrInactive
	}
	var effects []Effect
	switch m.snap.State {
	case StateAwaitingLater:
		effects = append(effects, DismissLaterDialog{})
	case StateAwaitingLocation:
		effects = append(effects, DismissLocationDialog{})
	}
	more, err := m.finish(download_prompt.Cancelled())
	if err != nil {
		return nil, err
	}
	return append(effects, more...), nil
}

func (m *Machine) expect(state State) error {
	if !m.snap.Active {
		return ErrInactive
	}
	if m.snap.State != state {
		return fmt.Errorf("%w: in %s, expected %s", ErrUnexpectedEvent, m.snap.State, state)
	}
	return nil
}

func (m *Machine) transition(to State) error {
	if err := ValidateTransition(m.snap.State, to); err != nil {
		return err
	}
	m.snap.State = to
	return nil
}

func (m *Machine) showLater() ([]Effect, error) {
	if err := m.transition(StateAwaitingLater); err != nil {
		return nil, err
	}
	m.opt.Metrics.RecordLaterUIEvent(download_prompt.LaterDialogShow)
	return []Effect{ShowLaterDialog{download_prompt.LaterDialogRequest{
		InitialChoice:      m.snap.Choice,
		Subtitle:           Subtitle(m.snap.Request, m.opt.Config.LaterMinFileSize),
		AllowEditLocation:  m.opt.AllowEditLocation,
		PromptStatus:       m.opt.Config.PromptStatus,
		ShowDateTimePicker: m.opt.Config.ShowDateTimePicker,
	}}}, nil
}

func (m *Machine) showLocation() ([]Effect, error) {
	if err := m.transition(StateAwaitingLocation); err != nil {
		return nil, err
	}
	return []Effect{ShowLocationDialog{download_prompt.LocationDialogRequest{
		Reason:        m.snap.Request.LocationDialogReason,
		SuggestedPath: m.snap.Path,
		TotalBytes:    m.snap.Request.TotalBytes,
		IsIncognito:   m.snap.Request.IsIncognito,
	}}}, nil
}

func (m *Machine) complete() ([]Effect, error) {
	return m.finish(download_prompt.Complete(m.snap.Path, m.snap.Choice))
}

func (m *Machine) finish(outcome download_prompt.Outcome) ([]Effect, error) {
	if err := m.transition(StateTerminal); err != nil {
		return nil, err
	}
	m.snap.Active = false
	return []Effect{EmitOutcome{outcome}}, nil
}

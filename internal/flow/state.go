package flow

import (
	"errors"
	"fmt"

	"github.com/alanbriolat/download-prompt/generic"
)

var (
	ErrInvalidTransition = errors.New("invalid transition")
)

type State string

const (
	StateInit             State = "init"
	StateAwaitingLater    State = "awaiting_later"
	StateAwaitingLocation State = "awaiting_location"
	StateTerminal         State = "terminal"
)

// ValidTransitions defines allowed state transitions. Init may go straight to Terminal when the flow is handed off
// or torn down before any dialog is shown.
var ValidTransitions = map[State][]State{
	StateInit:             {StateAwaitingLater, StateAwaitingLocation, StateTerminal},
	StateAwaitingLater:    {StateAwaitingLocation, StateTerminal},
	StateAwaitingLocation: {StateAwaitingLater, StateTerminal},
	StateTerminal:         {},
}

var dialogStates = generic.NewSet(StateAwaitingLater, StateAwaitingLocation)

// HasDialog returns true if a dialog is open while in this state.
func (s State) HasDialog() bool {
	return dialogStates.Contains(s)
}

func CanTransition(from, to State) bool {
	allowed, exists := ValidTransitions[from]
	if !exists {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

func ValidateTransition(from, to State) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w from %s to %s", ErrInvalidTransition, from, to)
	}
	return nil
}

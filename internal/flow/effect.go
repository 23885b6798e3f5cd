package flow

import (
	"fmt"

	"github.com/alanbriolat/download-prompt"
)

// Effect is something the owner of a Machine must do as a result of an event, in order.
type Effect interface {
	fmt.Stringer
	effect()
}

type ShowLaterDialog struct {
	Request download_prompt.LaterDialogRequest
}

type ShowLocationDialog struct {
	Request download_prompt.LocationDialogRequest
}

type DismissLaterDialog struct{}

type DismissLocationDialog struct{}

// EmitOutcome is produced exactly once per Machine.
type EmitOutcome struct {
	Outcome download_prompt.Outcome
}

func (ShowLaterDialog) effect()       {}
func (ShowLocationDialog) effect()    {}
func (DismissLaterDialog) effect()    {}
func (DismissLocationDialog) effect() {}
func (EmitOutcome) effect()           {}

func (e ShowLaterDialog) String() string {
	return fmt.Sprintf("ShowLaterDialog{InitialChoice:%v, Subtitle:%q}", e.Request.InitialChoice, e.Request.Subtitle)
}

func (e ShowLocationDialog) String() string {
	return fmt.Sprintf("ShowLocationDialog{Reason:%v, SuggestedPath:%q}", e.Request.Reason, e.Request.SuggestedPath)
}

func (DismissLaterDialog) String() string {
	return "DismissLaterDialog"
}

func (DismissLocationDialog) String() string {
	return "DismissLocationDialog"
}

func (e EmitOutcome) String() string {
	return fmt.Sprintf("EmitOutcome{%v}", e.Outcome)
}

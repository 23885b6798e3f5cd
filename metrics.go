package download_prompt

import "fmt"

// LaterUIEvent is a user-interface event of the scheduling dialog.
type LaterUIEvent int

const (
	LaterDialogShow LaterUIEvent = iota
	LaterDialogCancel
	LaterDialogEditClicked
)

func (e LaterUIEvent) String() string {
	switch e {
	case LaterDialogShow:
		return "later_dialog_show"
	case LaterDialogCancel:
		return "later_dialog_cancel"
	case LaterDialogEditClicked:
		return "later_dialog_edit_clicked"
	default:
		return fmt.Sprintf("LaterUIEvent(%d)", int(e))
	}
}

// Metrics records usage of the prompt flow. Implementations must not block.
type Metrics interface {
	RecordLaterUIEvent(event LaterUIEvent)
	RecordLaterChoice(choice SchedulingKind, totalBytes uint64)
	RecordSuggestionShown()
	// RecordSuggestionChoice records whether the user kept a path other than the default directory.
	RecordSuggestionChoice(accepted bool)
}

type NilMetrics struct{}

func (NilMetrics) RecordLaterUIEvent(LaterUIEvent)           {}
func (NilMetrics) RecordLaterChoice(SchedulingKind, uint64) {}
func (NilMetrics) RecordSuggestionShown()                   {}
func (NilMetrics) RecordSuggestionChoice(bool)              {}

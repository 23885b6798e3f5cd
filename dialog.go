package download_prompt

import "context"

// LaterDialogRequest describes one showing of the scheduling ("download later") dialog.
type LaterDialogRequest struct {
	InitialChoice SchedulingChoice
	// Subtitle may be empty.
	Subtitle string
	// AllowEditLocation enables the "edit location" link, which is only useful with more than one directory.
	AllowEditLocation  bool
	PromptStatus       PromptStatus
	ShowDateTimePicker bool
}

// LaterDialogCallbacks receive the result of a scheduling dialog. Exactly one of them is expected per showing.
type LaterDialogCallbacks struct {
	OnChoice func(choice SchedulingChoice)
	OnCancel func()
	// OnEditLocation carries the selection the dialog held when the link was clicked.
	OnEditLocation func(current SchedulingChoice)
}

type LaterDialogService interface {
	// Show opens the dialog, returning an error if it could not be opened.
	Show(ctx context.Context, req LaterDialogRequest, cb LaterDialogCallbacks) error
	// Dismiss closes the dialog without invoking any callback.
	Dismiss()
}

// LocationDialogRequest describes one showing of the location dialog.
type LocationDialogRequest struct {
	Reason        LocationDialogReason
	SuggestedPath string
	TotalBytes    uint64
	IsIncognito   bool
}

// LocationDialogCallbacks receive the result of a location dialog. Exactly one of them is expected per showing.
type LocationDialogCallbacks struct {
	OnPath   func(path string)
	OnCancel func()
}

type LocationDialogService interface {
	Show(ctx context.Context, req LocationDialogRequest, cb LocationDialogCallbacks) error
	Dismiss()
}

// Host is the surface the dialogs are shown on; once it is gone no dialog can be shown.
type Host interface {
	Alive() bool
}

// HostFunc adapts a function to Host.
type HostFunc func() bool

func (f HostFunc) Alive() bool {
	return f()
}

// AlwaysAlive is a Host for callers without a window lifecycle, e.g. terminal front ends.
var AlwaysAlive Host = HostFunc(func() bool { return true })

package session

import (
	"github.com/alanbriolat/download-prompt"
	"github.com/alanbriolat/download-prompt/internal/flow"
)

type Event interface {
	// The Session this event relates to.
	Session() *Session
}

type sessionEvent struct {
	session *Session
}

func (e sessionEvent) Session() *Session {
	return e.session
}

type DialogKind string

const (
	DialogLater    DialogKind = "later"
	DialogLocation DialogKind = "location"
)

type SessionStarted struct {
	sessionEvent
	Request download_prompt.DownloadRequest
}
type DialogShown struct {
	sessionEvent
	Dialog DialogKind
}
type FlowUpdated struct {
	sessionEvent
	OldState flow.Snapshot
	NewState flow.Snapshot
}
type OutcomeEmitted struct {
	sessionEvent
	Outcome download_prompt.Outcome
}
type SessionRemoved struct {
	sessionEvent
}

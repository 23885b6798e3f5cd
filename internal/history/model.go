package history

import "time"

type LaterUIEvent struct {
	ID        uint
	Event     string
	CreatedAt time.Time
}

func (LaterUIEvent) TableName() string {
	return "later_ui_events"
}

type LaterChoice struct {
	ID         uint
	Choice     string
	TotalBytes uint64
	CreatedAt  time.Time
}

func (LaterChoice) TableName() string {
	return "later_choices"
}

const (
	SuggestionShown    = "shown"
	SuggestionAccepted = "accepted"
	SuggestionDeclined = "declined"
)

type SuggestionEvent struct {
	ID        uint
	Event     string
	CreatedAt time.Time
}

func (SuggestionEvent) TableName() string {
	return "suggestion_events"
}

// Stats summarises the recorded history.
type Stats struct {
	LaterUIEvents map[string]int64
	LaterChoices  map[string]int64
	// LaterBytes is the total size of downloads per scheduling choice.
	LaterBytes  map[string]uint64
	Suggestions map[string]int64
}

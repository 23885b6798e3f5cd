package download_prompt

import (
	"fmt"
	"time"

	"github.com/alanbriolat/download-prompt/generic"
)

// SchedulingKind tags the variant held by a SchedulingChoice.
type SchedulingKind int

const (
	ScheduleNow SchedulingKind = iota
	ScheduleOnWifi
	ScheduleAt
)

func (k SchedulingKind) String() string {
	switch k {
	case ScheduleNow:
		return "now"
	case ScheduleOnWifi:
		return "on_wifi"
	case ScheduleAt:
		return "at"
	default:
		return fmt.Sprintf("SchedulingKind(%d)", int(k))
	}
}

// SchedulingChoice is when the download should start: now, once on Wi-Fi, or at a given time. The zero value is Now.
type SchedulingChoice struct {
	Kind SchedulingKind
	// At is only meaningful when Kind == ScheduleAt.
	At time.Time
}

func Now() SchedulingChoice {
	return SchedulingChoice{Kind: ScheduleNow}
}

func OnWifi() SchedulingChoice {
	return SchedulingChoice{Kind: ScheduleOnWifi}
}

func At(t time.Time) SchedulingChoice {
	return SchedulingChoice{Kind: ScheduleAt, At: t}
}

func (c SchedulingChoice) OnlyOnWifi() bool {
	return c.Kind == ScheduleOnWifi
}

// StartTime is Some only for ScheduleAt.
func (c SchedulingChoice) StartTime() generic.Option[time.Time] {
	if c.Kind == ScheduleAt {
		return generic.Some(c.At)
	}
	return generic.None[time.Time]()
}

func (c SchedulingChoice) String() string {
	if c.Kind == ScheduleAt {
		return fmt.Sprintf("at(%s)", c.At.Format(time.RFC3339))
	}
	return c.Kind.String()
}

// PromptStatus is the persisted "don't ask again" state of the scheduling dialog.
type PromptStatus int

const (
	// PromptStatusShowInitial means the user has never answered the "don't show again" checkbox.
	PromptStatusShowInitial PromptStatus = iota
	PromptStatusShowPreference
	PromptStatusDontShow
)

func (s PromptStatus) String() string {
	switch s {
	case PromptStatusShowInitial:
		return "show_initial"
	case PromptStatusShowPreference:
		return "show_preference"
	case PromptStatusDontShow:
		return "dont_show"
	default:
		return fmt.Sprintf("PromptStatus(%d)", int(s))
	}
}

func ParsePromptStatus(s string) (PromptStatus, error) {
	for _, status := range []PromptStatus{PromptStatusShowInitial, PromptStatusShowPreference, PromptStatusDontShow} {
		if status.String() == s {
			return status, nil
		}
	}
	return PromptStatusShowInitial, fmt.Errorf("unknown prompt status %q", s)
}

package session

import (
	"github.com/alanbriolat/download-prompt"
	"github.com/alanbriolat/download-prompt/generic"
)

// Preferences are the user's persisted choices, overlaid on the host configuration for every new session.
type Preferences struct {
	PromptStatus     generic.Option[download_prompt.PromptStatus] `json:"prompt_status"`
	DefaultDirectory generic.Option[string]                        `json:"default_directory"`
	// HandoffEnabled and HandoffCommand configure passing downloads to an external download manager.
	HandoffEnabled generic.Option[bool]   `json:"handoff_enabled"`
	HandoffCommand generic.Option[string] `json:"handoff_command"`
}

// Apply returns config with every preference that is set overriding it.
func (p Preferences) Apply(config download_prompt.Config) download_prompt.Config {
	if p.PromptStatus.IsSome() {
		config.PromptStatus = p.PromptStatus.Unwrap()
	}
	if p.DefaultDirectory.IsSome() {
		config.DefaultDirectory = p.DefaultDirectory.Unwrap()
	}
	return config
}

type Database interface {
	ReadPreferences() (Preferences, error)
	WritePreferences(*Preferences) error
}

type NilDatabase struct{}

func (d NilDatabase) ReadPreferences() (Preferences, error) {
	return Preferences{}, nil
}

func (d NilDatabase) WritePreferences(_ *Preferences) error {
	return nil
}

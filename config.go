package download_prompt

// Config is the host-provided, read-only configuration a session is constructed with.
type Config struct {
	// LaterDialogEnabled is the "download later" feature toggle.
	LaterDialogEnabled bool
	// LocationSuggestionEnabled is the "suggest alternate location" feature toggle.
	LocationSuggestionEnabled bool
	ShowDateTimePicker        bool
	// LaterMinFileSize is the size at which the scheduling dialog explains the file is large; 0 disables it.
	LaterMinFileSize uint64
	PromptStatus     PromptStatus
	// DefaultDirectory is the user's download directory, used to judge location suggestions.
	DefaultDirectory string
}

var DefaultConfig = Config{
	LaterDialogEnabled:        true,
	LocationSuggestionEnabled: true,
	ShowDateTimePicker:        true,
	LaterMinFileSize:          200 * MB,
	PromptStatus:              PromptStatusShowInitial,
	DefaultDirectory:          ".",
}

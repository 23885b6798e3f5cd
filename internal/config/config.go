// Package config loads the host configuration of the download-prompt CLI from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/alanbriolat/download-prompt"
	"github.com/alanbriolat/download-prompt/internal/catalog"
)

var (
	ErrNoDirectories      = errors.New("no download directories configured")
	ErrNoDefaultDirectory = errors.New("default directory not set")
	ErrHandoffCommand     = errors.New("handoff enabled without a command")
)

// Config is everything the CLI needs to run prompt sessions.
type Config struct {
	Prompt          download_prompt.Config
	Directories     []catalog.Entry
	Handoff         HandoffConfig
	PreferencesPath string
	HistoryPath     string
}

type HandoffConfig struct {
	Enabled bool
	Command string
	Args    []string
}

// Default returns a Config with sensible defaults.
func Default() Config {
	dataDir := filepath.Join(userDir(os.UserConfigDir), "download-prompt")
	downloads := filepath.Join(userDir(os.UserHomeDir), "Downloads")
	prompt := download_prompt.DefaultConfig
	prompt.DefaultDirectory = downloads
	return Config{
		Prompt: prompt,
		Directories: []catalog.Entry{
			{Name: "Downloads", Path: downloads, Type: download_prompt.DirectoryDefault},
		},
		PreferencesPath: filepath.Join(dataDir, "preferences.db"),
		HistoryPath:     filepath.Join(dataDir, "history.db"),
	}
}

func userDir(f func() (string, error)) string {
	if dir, err := f(); err == nil {
		return dir
	}
	return "."
}

// yamlConfig is used for YAML unmarshaling with optional booleans and string sizes.
type yamlConfig struct {
	LaterDialog        *bool            `yaml:"later_dialog"`
	LocationSuggestion *bool            `yaml:"location_suggestion"`
	DateTimePicker     *bool            `yaml:"date_time_picker"`
	LaterMinFileSize   string           `yaml:"later_min_file_size"`
	PromptStatus       string           `yaml:"prompt_status"`
	DefaultDirectory   string           `yaml:"default_directory"`
	Directories        []yamlDirectory  `yaml:"directories"`
	Handoff            yamlHandoff      `yaml:"handoff"`
	Database           yamlDatabasePath `yaml:"database"`
}

type yamlDirectory struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
	Type string `yaml:"type"`
}

type yamlHandoff struct {
	Enabled bool     `yaml:"enabled"`
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
}

type yamlDatabasePath struct {
	Preferences string `yaml:"preferences"`
	History     string `yaml:"history"`
}

// LoadFromFile loads configuration from a YAML file, on top of Default.
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration, on top of Default.
func Parse(data []byte) (Config, error) {
	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	cfg := Default()
	if yc.LaterDialog != nil {
		cfg.Prompt.LaterDialogEnabled = *yc.LaterDialog
	}
	if yc.LocationSuggestion != nil {
		cfg.Prompt.LocationSuggestionEnabled = *yc.LocationSuggestion
	}
	if yc.DateTimePicker != nil {
		cfg.Prompt.ShowDateTimePicker = *yc.DateTimePicker
	}
	if yc.LaterMinFileSize != "" {
		size, err := download_prompt.ParseBytes(yc.LaterMinFileSize)
		if err != nil {
			return Config{}, fmt.Errorf("parse later_min_file_size: %w", err)
		}
		cfg.Prompt.LaterMinFileSize = size
	}
	if yc.PromptStatus != "" {
		status, err := download_prompt.ParsePromptStatus(yc.PromptStatus)
		if err != nil {
			return Config{}, fmt.Errorf("parse prompt_status: %w", err)
		}
		cfg.Prompt.PromptStatus = status
	}
	if yc.DefaultDirectory != "" {
		cfg.Prompt.DefaultDirectory = expandHome(yc.DefaultDirectory)
		cfg.Directories[0].Path = cfg.Prompt.DefaultDirectory
	}
	if len(yc.Directories) > 0 {
		cfg.Directories = nil
		for i, d := range yc.Directories {
			dirType, err := parseDirectoryType(d.Type)
			if err != nil {
				return Config{}, fmt.Errorf("parse directories[%d].type: %w", i, err)
			}
			cfg.Directories = append(cfg.Directories, catalog.Entry{Name: d.Name, Path: expandHome(d.Path), Type: dirType})
		}
	}
	cfg.Handoff = HandoffConfig{
		Enabled: yc.Handoff.Enabled,
		Command: yc.Handoff.Command,
		Args:    yc.Handoff.Args,
	}
	if yc.Database.Preferences != "" {
		cfg.PreferencesPath = expandHome(yc.Database.Preferences)
	}
	if yc.Database.History != "" {
		cfg.HistoryPath = expandHome(yc.Database.History)
	}

	return cfg, nil
}

// LoadFromEnv overrides configuration from environment variables with the DOWNLOAD_PROMPT_ prefix.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("DOWNLOAD_PROMPT_LATER_DIALOG"); v != "" {
		c.Prompt.LaterDialogEnabled = v == "true" || v == "1"
	}
	if v := os.Getenv("DOWNLOAD_PROMPT_LOCATION_SUGGESTION"); v != "" {
		c.Prompt.LocationSuggestionEnabled = v == "true" || v == "1"
	}
	if v := os.Getenv("DOWNLOAD_PROMPT_LATER_MIN_FILE_SIZE"); v != "" {
		size, err := download_prompt.ParseBytes(v)
		if err != nil {
			return fmt.Errorf("parse DOWNLOAD_PROMPT_LATER_MIN_FILE_SIZE: %w", err)
		}
		c.Prompt.LaterMinFileSize = size
	}
	if v := os.Getenv("DOWNLOAD_PROMPT_DEFAULT_DIRECTORY"); v != "" {
		c.Prompt.DefaultDirectory = expandHome(v)
	}
	if v := os.Getenv("DOWNLOAD_PROMPT_HANDOFF_COMMAND"); v != "" {
		c.Handoff.Command = v
	}
	return nil
}

// Validate reports every problem with the configuration.
func (c *Config) Validate() error {
	var result error
	if len(c.Directories) == 0 {
		result = multierror.Append(result, ErrNoDirectories)
	}
	if c.Prompt.DefaultDirectory == "" {
		result = multierror.Append(result, ErrNoDefaultDirectory)
	}
	if c.Handoff.Enabled && c.Handoff.Command == "" {
		result = multierror.Append(result, ErrHandoffCommand)
	}
	return result
}

func parseDirectoryType(s string) (download_prompt.DirectoryType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "additional":
		return download_prompt.DirectoryAdditional, nil
	case "default":
		return download_prompt.DirectoryDefault, nil
	case "other":
		return download_prompt.DirectoryOther, nil
	default:
		return 0, fmt.Errorf("unknown directory type %q", s)
	}
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		return filepath.Join(userDir(os.UserHomeDir), strings.TrimPrefix(path, "~"))
	}
	return path
}

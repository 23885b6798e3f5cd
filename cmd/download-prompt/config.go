package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/alanbriolat/download-prompt/internal/boltdb"
	"github.com/alanbriolat/download-prompt/internal/config"
	"github.com/alanbriolat/download-prompt/internal/history"
)

// defaultConfigPath is read when no --config is given, if it exists.
func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "download-prompt", "config.yaml")
}

// loadConfig returns the configuration and the file it came from, which is empty if only defaults were used.
func loadConfig(c *cli.Context) (config.Config, string, error) {
	path := c.String("config")
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath()
	}

	cfg := config.Default()
	if path != "" {
		loaded, err := config.LoadFromFile(path)
		switch {
		case err == nil:
			cfg = loaded
		case !explicit && errors.Is(err, fs.ErrNotExist):
			path = ""
		default:
			return cfg, path, err
		}
	}
	if err := cfg.LoadFromEnv(); err != nil {
		return cfg, path, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, path, fmt.Errorf("invalid configuration: %w", err)
	}
	zap.S().Named("config").Debugf("loaded configuration from %q", path)
	return cfg, path, nil
}

func openPreferences(cfg config.Config) (boltdb.Database, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.PreferencesPath), 0750); err != nil {
		return nil, err
	}
	return boltdb.New(cfg.PreferencesPath)
}

func openHistory(cfg config.Config) (*history.Store, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.HistoryPath), 0750); err != nil {
		return nil, err
	}
	return history.Open(cfg.HistoryPath)
}

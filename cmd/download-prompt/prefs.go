package main

import (
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/alanbriolat/download-prompt"
	"github.com/alanbriolat/download-prompt/generic"
	"github.com/alanbriolat/download-prompt/internal/session"
)

func prefsCommand() *cli.Command {
	return &cli.Command{
		Name:  "prefs",
		Usage: "show or change saved preferences",
		Subcommands: []*cli.Command{
			{
				Name:  "show",
				Usage: "print saved preferences as JSON",
				Action: func(c *cli.Context) error {
					return withPreferences(c, func(prefs *session.Preferences) (bool, error) {
						data, err := json.MarshalIndent(prefs, "", "  ")
						if err != nil {
							return false, err
						}
						fmt.Fprintln(c.App.Writer, string(data))
						return false, nil
					})
				},
			},
			{
				Name:  "set",
				Usage: "change saved preferences",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "prompt-status",
						Usage: "one of show_initial, show_preference, dont_show",
					},
					&cli.StringFlag{
						Name:  "default-directory",
						Usage: "save downloads to `DIR` by default",
					},
					&cli.BoolFlag{
						Name:  "handoff-enabled",
						Usage: "pass downloads to an external download manager",
					},
					&cli.StringFlag{
						Name:  "handoff-command",
						Usage: "external download manager `PROGRAM`",
					},
				},
				Action: func(c *cli.Context) error {
					return withPreferences(c, func(prefs *session.Preferences) (bool, error) {
						return setPreferences(c, prefs)
					})
				},
			},
			{
				Name:  "reset",
				Usage: "forget all saved preferences",
				Action: func(c *cli.Context) error {
					return withPreferences(c, func(prefs *session.Preferences) (bool, error) {
						*prefs = session.Preferences{}
						return true, nil
					})
				},
			},
		},
	}
}

// setPreferences applies the flags that were given, reporting whether anything changed.
func setPreferences(c *cli.Context, prefs *session.Preferences) (changed bool, err error) {
	if c.IsSet("prompt-status") {
		status, err := download_prompt.ParsePromptStatus(c.String("prompt-status"))
		if err != nil {
			return false, err
		}
		prefs.PromptStatus = generic.Some(status)
		changed = true
	}
	if c.IsSet("default-directory") {
		prefs.DefaultDirectory = generic.Some(c.String("default-directory"))
		changed = true
	}
	if c.IsSet("handoff-enabled") {
		prefs.HandoffEnabled = generic.Some(c.Bool("handoff-enabled"))
		changed = true
	}
	if c.IsSet("handoff-command") {
		prefs.HandoffCommand = generic.Some(c.String("handoff-command"))
		changed = true
	}
	if !changed {
		return false, cli.Exit("nothing to set", 1)
	}
	return true, nil
}

// withPreferences reads the saved preferences, passes them to f, and writes them back if f reports a change.
func withPreferences(c *cli.Context, f func(*session.Preferences) (bool, error)) error {
	cfg, _, err := loadConfig(c)
	if err != nil {
		return err
	}
	db, err := openPreferences(cfg)
	if err != nil {
		return fmt.Errorf("failed to open preferences: %w", err)
	}
	defer db.Close()
	prefs, err := db.ReadPreferences()
	if err != nil {
		return err
	}
	changed, err := f(&prefs)
	if err != nil || !changed {
		return err
	}
	return db.WritePreferences(&prefs)
}

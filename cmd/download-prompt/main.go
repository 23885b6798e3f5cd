package main

import (
	"context"
	"log"
	"os"
	"os/signal"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/alanbriolat/download-prompt"
	"github.com/alanbriolat/download-prompt/async"
)

func main() {
	config := zap.NewDevelopmentConfig()
	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	// Keep the terminal quiet while dialogs are drawn, unless asked otherwise
	config.Level.SetLevel(zapcore.WarnLevel)
	logger, err := config.Build()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logger.Sync()
	zap.RedirectStdLog(logger)
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = download_prompt.WithLogger(ctx, logger)

	app := &cli.App{
		Name:  "download-prompt",
		Usage: "decide when and where a download is saved",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "load configuration from `FILE`",
				EnvVars: []string{"DOWNLOAD_PROMPT_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "log-level",
				Value: "warn",
				Usage: "minimum `LEVEL` of log messages",
			},
		},
		Before: func(c *cli.Context) error {
			var level zapcore.Level
			if err := level.UnmarshalText([]byte(c.String("log-level"))); err != nil {
				return err
			}
			config.Level.SetLevel(level)
			return nil
		},
		Commands: []*cli.Command{
			runCommand(ctx),
			prefsCommand(),
			statsCommand(),
			dirsCommand(ctx),
		},
		HideHelpCommand: true,
	}

	result := async.Run(func() error { return app.Run(os.Args) })

	select {
	case err = <-result:
		if err != nil {
			logger.Fatal(err.Error())
		}
	case <-ctx.Done():
		stop()
		err = <-result
		if err != nil {
			logger.Fatal(err.Error())
		}
	}
}

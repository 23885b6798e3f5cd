package main

import (
	"context"
	"fmt"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/alanbriolat/download-prompt"
	"github.com/alanbriolat/download-prompt/internal/catalog"
)

func statsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "summarise recorded prompt history",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "since",
				Value: 30 * 24 * time.Hour,
				Usage: "only count the last `DURATION` of history",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, _, err := loadConfig(c)
			if err != nil {
				return err
			}
			hist, err := openHistory(cfg)
			if err != nil {
				return fmt.Errorf("failed to open history: %w", err)
			}
			defer hist.Close()
			stats, err := hist.Stats(time.Now().Add(-c.Duration("since")))
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
			printCounts(w, "later dialog", stats.LaterUIEvents)
			printCounts(w, "later choice", stats.LaterChoices)
			for _, name := range sortedKeys(stats.LaterBytes) {
				fmt.Fprintf(w, "later bytes\t%v\t%v\n", name, download_prompt.FormatBytes(stats.LaterBytes[name]))
			}
			printCounts(w, "suggestion", stats.Suggestions)
			return w.Flush()
		},
	}
}

func printCounts(w *tabwriter.Writer, group string, counts map[string]int64) {
	for _, name := range sortedKeys(counts) {
		fmt.Fprintf(w, "%v\t%v\t%d\n", group, name, counts[name])
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func dirsCommand(ctx context.Context) *cli.Command {
	return &cli.Command{
		Name:  "dirs",
		Usage: "list the configured download directories and their free space",
		Action: func(c *cli.Context) error {
			cfg, _, err := loadConfig(c)
			if err != nil {
				return err
			}
			dirs, err := catalog.New(cfg.Directories...).Directories(ctx)
			if err != nil {
				zap.S().Warnf("problem listing directories: %v", err)
			}
			w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tTYPE\tLOCATION\tFREE\tTOTAL")
			for _, dir := range dirs {
				fmt.Fprintf(w, "%v\t%v\t%v\t%v\t%v\n", dir.Name, dir.Type, dir.Location,
					download_prompt.FormatBytes(dir.AvailableSpace), download_prompt.FormatBytes(dir.TotalSpace))
			}
			return w.Flush()
		},
	}
}

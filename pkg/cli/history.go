package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/secmon-lab/checkin/pkg/domain/model"
	"github.com/urfave/cli/v3"
)

func cmdHistory() *cli.Command {
	var cfg clientConfig
	var limit int
	var clearAll bool

	flags := []cli.Flag{
		&cli.IntFlag{
			Name:        "limit",
			Aliases:     []string{"n"},
			Usage:       "Number of entries to show (0 for all)",
			Value:       20,
			Destination: &limit,
		},
		&cli.BoolFlag{
			Name:        "clear",
			Usage:       "Delete every history entry",
			Destination: &clearAll,
		},
	}
	flags = append(flags, cfg.Flags()...)

	return &cli.Command{
		Name:  "history",
		Usage: "Show sent messages, newest first",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cl, err := cfg.build(ctx, c)
			if err != nil {
				return err
			}
			defer cl.Close(ctx)

			if clearAll {
				return cl.uc.Settings.ClearHistory(ctx)
			}

			entries := cl.uc.Settings.History(ctx, limit)
			if len(entries) == 0 {
				fmt.Fprintln(cl.out, "No messages sent yet")
				return nil
			}
			printHistory(cl.out, entries)
			return nil
		},
	}
}

func printHistory(w io.Writer, entries []*model.HistoryEntry) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tTYPE\tLOCATION\tSENT TO\tREASON\tMESSAGE")
	for _, e := range entries {
		sentTo := make([]string, len(e.SentTo))
		for i, d := range e.SentTo {
			sentTo[i] = d.String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.Timestamp.Local().Format(time.DateTime),
			e.Type.Label(),
			e.Location,
			strings.Join(sentTo, ","),
			e.Reason,
			firstLine(e.AdditionalMessage),
		)
	}
	_ = tw.Flush()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " ..."
	}
	return s
}

package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdThread() *cli.Command {
	var cfg clientConfig

	return &cli.Command{
		Name:  "thread",
		Usage: "Inspect the Slack thread check-outs reply into",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Print the linked check-in message ts",
				Flags: cfg.Flags(),
				Action: func(ctx context.Context, c *cli.Command) error {
					cl, err := cfg.build(ctx, c)
					if err != nil {
						return err
					}
					defer cl.Close(ctx)

					if ts := cl.uc.Threads.Current(ctx); ts != "" {
						fmt.Fprintln(cl.out, ts)
					} else {
						fmt.Fprintln(cl.out, "No check-in thread linked; the next check-out posts to the channel")
					}
					return nil
				},
			},
			{
				Name:  "clear",
				Usage: "Forget the linked check-in thread",
				Flags: cfg.Flags(),
				Action: func(ctx context.Context, c *cli.Command) error {
					cl, err := cfg.build(ctx, c)
					if err != nil {
						return err
					}
					defer cl.Close(ctx)

					if !cl.uc.Threads.Clear(ctx) {
						return goerr.New("failed to clear thread link")
					}
					fmt.Fprintln(cl.out, "Thread link cleared")
					return nil
				},
			},
		},
	}
}

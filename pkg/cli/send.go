package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/checkin/pkg/domain/types"
	"github.com/secmon-lab/checkin/pkg/usecase"
	"github.com/secmon-lab/checkin/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdSend() *cli.Command {
	return &cli.Command{
		Name:  "send",
		Usage: "Send a check-in or check-out message",
		Commands: []*cli.Command{
			cmdSendType(types.MessageTypeCheckIn, "Start the day"),
			cmdSendType(types.MessageTypeCheckOut, "End the day, replying to the morning Slack post"),
		},
	}
}

func cmdSendType(msgType types.MessageType, usage string) *cli.Command {
	var cfg clientConfig
	var location, reason, message, target string

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "location",
			Usage:       "Where you work from [Office|Home] (default: settings)",
			Destination: &location,
		},
		&cli.StringFlag{
			Name:        "reason",
			Usage:       "Reason for working from home",
			Destination: &reason,
		},
		&cli.StringFlag{
			Name:        "message",
			Aliases:     []string{"m"},
			Usage:       "Additional message",
			Destination: &message,
		},
		&cli.StringFlag{
			Name:        "to",
			Usage:       "Destination [email|slack|both]",
			Value:       types.TargetBoth.String(),
			Sources:     cli.EnvVars("CHECKIN_SEND_TO"),
			Destination: &target,
		},
	}
	flags = append(flags, cfg.Flags()...)

	return &cli.Command{
		Name:  msgType.String(),
		Usage: usage,
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			to, err := types.ParseTarget(target)
			if err != nil {
				return goerr.Wrap(err, "invalid --to")
			}

			cl, err := cfg.build(ctx, c)
			if err != nil {
				return err
			}
			defer cl.Close(ctx)

			loc := cl.uc.Settings.Get(ctx).DefaultLocation
			if location != "" {
				loc, err = types.ParseLocation(location)
				if err != nil {
					return goerr.Wrap(err, "invalid --location")
				}
			}

			result, err := cl.uc.Checkin.Send(ctx, usecase.SendInput{
				Type:     msgType,
				Location: loc,
				Reason:   reason,
				Message:  message,
				Target:   to,
			})
			if err != nil {
				return err
			}

			logging.From(ctx).Debug("Send finished", "outcome", result.Outcome, "thread_ts", result.ThreadTS)
			if result.Outcome == types.OutcomeFailed {
				return goerr.New("message was not delivered",
					goerr.V("email_error", result.EmailErr),
					goerr.V("chat_error", result.ChatErr),
				)
			}
			return nil
		},
	}
}

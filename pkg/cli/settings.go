package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/checkin/pkg/domain/model"
	"github.com/secmon-lab/checkin/pkg/domain/types"
	"github.com/secmon-lab/checkin/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdSettings() *cli.Command {
	var cfg clientConfig
	var email, channel, location string
	var reasons []string

	setFlags := []cli.Flag{
		&cli.StringFlag{
			Name:        "email",
			Usage:       "Attendance email address (empty to clear)",
			Destination: &email,
		},
		&cli.StringFlag{
			Name:        "channel",
			Usage:       "Slack channel ID, e.g. C0123456789 (empty to clear)",
			Destination: &channel,
		},
		&cli.StringFlag{
			Name:        "location",
			Usage:       "Default location [Office|Home]",
			Destination: &location,
		},
		&cli.StringSliceFlag{
			Name:        "reason",
			Usage:       "Saved reason for working from home (repeatable, replaces the list)",
			Destination: &reasons,
		},
	}
	setFlags = append(setFlags, cfg.Flags()...)

	return &cli.Command{
		Name:  "settings",
		Usage: "Show or change settings",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Print current settings",
				Flags: cfg.Flags(),
				Action: func(ctx context.Context, c *cli.Command) error {
					cl, err := cfg.build(ctx, c)
					if err != nil {
						return err
					}
					defer cl.Close(ctx)
					printSettings(cl.out, cl.uc.Settings.Get(ctx))
					return nil
				},
			},
			{
				Name:  "set",
				Usage: "Change settings",
				Flags: setFlags,
				Action: func(ctx context.Context, c *cli.Command) error {
					var update usecase.SettingsUpdate
					if c.IsSet("email") {
						update.AttendanceEmail = &email
					}
					if c.IsSet("channel") {
						update.SlackChannelID = &channel
					}
					if c.IsSet("location") {
						loc, err := types.ParseLocation(location)
						if err != nil {
							return goerr.Wrap(err, "invalid --location")
						}
						update.DefaultLocation = &loc
					}
					if c.IsSet("reason") {
						update.SavedReasons = reasons
					}

					cl, err := cfg.build(ctx, c)
					if err != nil {
						return err
					}
					defer cl.Close(ctx)

					_, err = cl.uc.Settings.Update(ctx, update)
					return err
				},
			},
		},
	}
}

func printSettings(w io.Writer, s *model.Settings) {
	slackStatus := "not connected"
	if s.HasSlack() {
		slackStatus = "connected as " + s.SlackUserName
		if s.SlackTeamName != "" {
			slackStatus += " (" + s.SlackTeamName + ")"
		}
	}

	fmt.Fprintf(w, "Attendance email:  %s\n", orNone(s.AttendanceEmail))
	fmt.Fprintf(w, "Slack:             %s\n", slackStatus)
	fmt.Fprintf(w, "Slack channel:     %s\n", orNone(s.SlackChannelID))
	fmt.Fprintf(w, "Default location:  %s\n", s.DefaultLocation)
	fmt.Fprintf(w, "Saved reasons:     %s\n", orNone(strings.Join(s.SavedReasons, ", ")))
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

package cli

import (
	"context"
	"io"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/checkin/pkg/cli/config"
	"github.com/secmon-lab/checkin/pkg/service/notify"
	"github.com/secmon-lab/checkin/pkg/service/storage"
	"github.com/secmon-lab/checkin/pkg/usecase"
	"github.com/secmon-lab/checkin/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// clientConfig is the configuration shared by every client side command
type clientConfig struct {
	store   config.Store
	profile config.Profile
	slack   config.SlackClient
	gmail   config.Gmail
	noColor bool
}

func (x *clientConfig) Flags() []cli.Flag {
	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "no-color",
			Usage:       "Disable colored notifications",
			Sources:     cli.EnvVars("CHECKIN_NO_COLOR", "NO_COLOR"),
			Destination: &x.noColor,
		},
	}
	flags = append(flags, x.store.Flags()...)
	flags = append(flags, x.profile.Flags()...)
	flags = append(flags, x.slack.Flags()...)
	flags = append(flags, x.gmail.Flags()...)
	return flags
}

// client bundles the use cases with the resources backing them
type client struct {
	uc    *usecase.UseCases
	store *storage.Store
	out   io.Writer
}

func (c *client) Close(ctx context.Context) {
	if err := c.store.Close(); err != nil {
		logging.From(ctx).Warn("failed to close store", "error", err)
	}
}

// build opens the store, seeds it from the profile and wires the use cases.
// The caller must Close the returned client.
func (x *clientConfig) build(ctx context.Context, cmd *cli.Command) (*client, error) {
	kv, err := x.store.Configure(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize store")
	}
	store := storage.New(kv)

	out := cmd.Root().Writer
	var notifyOpts []notify.Option
	if x.noColor {
		notifyOpts = append(notifyOpts, notify.WithNoColor())
	}

	opts := []usecase.Option{
		usecase.WithNotifier(notify.NewConsole(out, notifyOpts...)),
	}

	mailer, err := x.gmail.Configure(ctx)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	if mailer != nil {
		opts = append(opts, usecase.WithMailer(mailer))
	}

	uc := usecase.New(store, x.slack.ProxyClient(), opts...)

	profile, err := x.profile.Load()
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	if applied, err := uc.Settings.Seed(ctx, profile); err != nil {
		_ = store.Close()
		return nil, err
	} else if applied {
		logging.From(ctx).Info("Seeded settings from profile")
	}

	logging.From(ctx).Debug("Client configured",
		"store", x.store,
		"slack", x.slack,
		"gmail", x.gmail,
	)

	return &client{uc: uc, store: store, out: out}, nil
}

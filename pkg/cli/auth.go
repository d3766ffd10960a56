package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"time"

	"github.com/cli/browser"
	"github.com/m-mizutani/goerr/v2"
	httpctrl "github.com/secmon-lab/checkin/pkg/controller/http"
	"github.com/secmon-lab/checkin/pkg/usecase"
	"github.com/secmon-lab/checkin/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdAuth() *cli.Command {
	var cfg clientConfig

	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the Slack connection",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Sign in to Slack in the browser",
				Flags: cfg.Flags(),
				Action: func(ctx context.Context, c *cli.Command) error {
					cl, err := cfg.build(ctx, c)
					if err != nil {
						return err
					}
					defer cl.Close(ctx)
					return runLogin(ctx, cl, &cfg)
				},
			},
			{
				Name:  "logout",
				Usage: "Forget the Slack token and channel",
				Flags: cfg.Flags(),
				Action: func(ctx context.Context, c *cli.Command) error {
					cl, err := cfg.build(ctx, c)
					if err != nil {
						return err
					}
					defer cl.Close(ctx)
					return cl.uc.SlackAuth.Disconnect(ctx)
				},
			},
			{
				Name:  "verify",
				Usage: "Check that the stored Slack token is still valid",
				Flags: cfg.Flags(),
				Action: func(ctx context.Context, c *cli.Command) error {
					cl, err := cfg.build(ctx, c)
					if err != nil {
						return err
					}
					defer cl.Close(ctx)

					valid, err := cl.uc.SlackAuth.Verify(ctx)
					if err != nil {
						return err
					}
					if valid {
						fmt.Fprintln(cl.out, "Slack token is valid")
					} else {
						fmt.Fprintln(cl.out, "Slack token is no longer valid, run `checkin auth login`")
					}
					return nil
				},
			},
		},
	}
}

func runLogin(ctx context.Context, cl *client, cfg *clientConfig) error {
	coordCfg, err := cfg.slack.CoordinatorConfig()
	if err != nil {
		return err
	}

	coord, err := usecase.NewCoordinator(coordCfg, &browserOpener{out: cl.out}, cfg.slack.ProxyClient())
	if err != nil {
		return err
	}

	listener, err := net.Listen("tcp", cfg.slack.ListenAddr())
	if err != nil {
		return goerr.Wrap(err, "failed to listen for OAuth callback", goerr.V("addr", cfg.slack.ListenAddr()))
	}

	server := &http.Server{
		Handler:           httpctrl.NewRelayHandler(coord.Mailbox(), coord.Mailbox().Origin()),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.From(ctx).Error("OAuth callback listener stopped", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	// releases the interrupt handler installed by the opener
	loginCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	_, err = cl.uc.SlackAuth.Connect(loginCtx, coord)
	return err
}

// browserOpener opens the authorize URL in the default browser. The
// returned window counts as closed once the user presses Ctrl-C.
type browserOpener struct {
	out io.Writer
}

type interruptWindow struct {
	closed atomic.Bool
}

func (w *interruptWindow) Closed() bool {
	return w.closed.Load()
}

func (o *browserOpener) Open(ctx context.Context, authorizeURL string) (usecase.Window, error) {
	w := &interruptWindow{}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	done := make(chan struct{})
	go func() {
		select {
		case <-sigCh:
			w.closed.Store(true)
		case <-done:
		}
	}()
	go func() {
		<-ctx.Done()
		signal.Stop(sigCh)
		close(done)
	}()

	fmt.Fprintf(o.out, "Opening Slack sign-in in your browser. Press Ctrl-C to cancel.\nIf it does not open, visit:\n%s\n", authorizeURL)
	if err := browser.OpenURL(authorizeURL); err != nil {
		logging.From(ctx).Warn("Failed to open browser", "error", err)
	}
	return w, nil
}

package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/checkin/pkg/service/gmail"
	"github.com/urfave/cli/v3"
	"google.golang.org/api/option"
)

// Gmail holds Gmail API credentials. Either an access token or a refresh
// token with its OAuth client is accepted.
type Gmail struct {
	accessToken  string
	clientID     string
	clientSecret string
	refreshToken string
}

func (x *Gmail) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gmail-access-token",
			Usage:       "Gmail API access token with gmail.send scope",
			Category:    "Gmail",
			Destination: &x.accessToken,
			Sources:     cli.EnvVars("CHECKIN_GMAIL_ACCESS_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "gmail-client-id",
			Usage:       "Google OAuth client ID for refreshing Gmail tokens",
			Category:    "Gmail",
			Destination: &x.clientID,
			Sources:     cli.EnvVars("CHECKIN_GMAIL_CLIENT_ID"),
		},
		&cli.StringFlag{
			Name:        "gmail-client-secret",
			Usage:       "Google OAuth client secret",
			Category:    "Gmail",
			Destination: &x.clientSecret,
			Sources:     cli.EnvVars("CHECKIN_GMAIL_CLIENT_SECRET"),
		},
		&cli.StringFlag{
			Name:        "gmail-refresh-token",
			Usage:       "Gmail refresh token",
			Category:    "Gmail",
			Destination: &x.refreshToken,
			Sources:     cli.EnvVars("CHECKIN_GMAIL_REFRESH_TOKEN"),
		},
	}
}

func (x Gmail) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("access-token.len", len(x.accessToken)),
		slog.Int("client-id.len", len(x.clientID)),
		slog.Int("client-secret.len", len(x.clientSecret)),
		slog.Int("refresh-token.len", len(x.refreshToken)),
	)
}

// IsConfigured reports whether any Gmail credential is set
func (x *Gmail) IsConfigured() bool {
	return x.accessToken != "" || x.refreshToken != ""
}

// Configure returns a mailer, or nil when Gmail is not configured
func (x *Gmail) Configure(ctx context.Context, opts ...option.ClientOption) (*gmail.Mailer, error) {
	switch {
	case x.refreshToken != "":
		if x.clientID == "" || x.clientSecret == "" {
			return nil, goerr.New("gmail-client-id and gmail-client-secret are required with gmail-refresh-token")
		}
		opts = append(opts, option.WithTokenSource(gmail.RefreshTokenSource(ctx, x.clientID, x.clientSecret, x.refreshToken)))
	case x.accessToken != "":
		opts = append(opts, option.WithTokenSource(gmail.StaticTokenSource(x.accessToken)))
	default:
		return nil, nil
	}

	mailer, err := gmail.New(ctx, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure gmail")
	}
	return mailer, nil
}

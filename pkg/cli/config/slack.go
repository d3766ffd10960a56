package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/checkin/pkg/service/proxy"
	"github.com/secmon-lab/checkin/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// SlackApp holds the Slack app credentials used by the credential proxy
type SlackApp struct {
	clientID     string
	clientSecret string
}

func (x *SlackApp) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-client-id",
			Usage:       "Slack OAuth client ID",
			Category:    "Slack",
			Destination: &x.clientID,
			Sources:     cli.EnvVars("CHECKIN_SLACK_CLIENT_ID"),
		},
		&cli.StringFlag{
			Name:        "slack-client-secret",
			Usage:       "Slack OAuth client secret",
			Category:    "Slack",
			Destination: &x.clientSecret,
			Sources:     cli.EnvVars("CHECKIN_SLACK_CLIENT_SECRET"),
		},
	}
}

func (x SlackApp) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("client-id.len", len(x.clientID)),
		slog.Int("client-secret.len", len(x.clientSecret)),
	)
}

// Credentials returns the client id and secret, falling back to the plain
// SLACK_CLIENT_ID and SLACK_CLIENT_SECRET environment variables at call time.
func (x *SlackApp) Credentials() (string, string) {
	id, secret := x.clientID, x.clientSecret
	if id == "" {
		id = os.Getenv("SLACK_CLIENT_ID")
	}
	if secret == "" {
		secret = os.Getenv("SLACK_CLIENT_SECRET")
	}
	return id, secret
}

// SlackClient holds what the CLI needs to reach the proxy and run the handshake
type SlackClient struct {
	proxyURL     string
	clientID     string
	userScopes   []string
	scopes       []string
	callbackPort int
	redirectURI  string
}

func (x *SlackClient) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "proxy-url",
			Usage:       "Base URL of the credential proxy (checkin serve)",
			Category:    "Slack",
			Value:       "http://localhost:8080",
			Destination: &x.proxyURL,
			Sources:     cli.EnvVars("CHECKIN_PROXY_URL"),
		},
		&cli.StringFlag{
			Name:        "slack-client-id",
			Usage:       "Slack OAuth client ID (public, used to build the authorize URL)",
			Category:    "Slack",
			Destination: &x.clientID,
			Sources:     cli.EnvVars("CHECKIN_SLACK_CLIENT_ID", "SLACK_CLIENT_ID"),
		},
		&cli.StringSliceFlag{
			Name:        "slack-user-scope",
			Usage:       "User token scope to request (repeatable)",
			Category:    "Slack",
			Value:       append([]string(nil), usecase.DefaultUserScopes...),
			Destination: &x.userScopes,
			Sources:     cli.EnvVars("CHECKIN_SLACK_USER_SCOPES"),
		},
		&cli.StringSliceFlag{
			Name:        "slack-scope",
			Usage:       "Bot token scope to request (repeatable)",
			Category:    "Slack",
			Destination: &x.scopes,
			Sources:     cli.EnvVars("CHECKIN_SLACK_SCOPES"),
		},
		&cli.IntFlag{
			Name:        "callback-port",
			Usage:       "Loopback port receiving the OAuth redirect",
			Category:    "Slack",
			Value:       8089,
			Destination: &x.callbackPort,
			Sources:     cli.EnvVars("CHECKIN_CALLBACK_PORT"),
		},
		&cli.StringFlag{
			Name:        "redirect-uri",
			Usage:       "Override the OAuth redirect URI (default: http://127.0.0.1:<callback-port>/slack/callback)",
			Category:    "Slack",
			Destination: &x.redirectURI,
			Sources:     cli.EnvVars("CHECKIN_REDIRECT_URI"),
		},
	}
}

func (x SlackClient) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("proxy_url", x.proxyURL),
		slog.Int("client-id.len", len(x.clientID)),
		slog.Any("user_scopes", x.userScopes),
		slog.Int("callback_port", x.callbackPort),
	)
}

// ProxyClient returns a client for the configured credential proxy
func (x *SlackClient) ProxyClient() *proxy.Client {
	return proxy.New(x.proxyURL)
}

// ListenAddr is the loopback address serving the OAuth redirect
func (x *SlackClient) ListenAddr() string {
	return fmt.Sprintf("127.0.0.1:%d", x.callbackPort)
}

// RedirectURI is the registered redirect the authorize URL points to
func (x *SlackClient) RedirectURI() string {
	if x.redirectURI != "" {
		return x.redirectURI
	}
	return fmt.Sprintf("http://%s/slack/callback", x.ListenAddr())
}

// CoordinatorConfig builds the handshake configuration
func (x *SlackClient) CoordinatorConfig() (usecase.CoordinatorConfig, error) {
	if x.clientID == "" {
		return usecase.CoordinatorConfig{}, goerr.New("slack-client-id is required to sign in")
	}
	return usecase.CoordinatorConfig{
		ClientID:    x.clientID,
		RedirectURI: x.RedirectURI(),
		UserScopes:  x.userScopes,
		Scopes:      x.scopes,
	}, nil
}

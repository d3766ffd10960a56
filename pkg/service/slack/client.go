package slack

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/checkin/pkg/domain/model"
	"github.com/slack-go/slack"
)

// client implements Service interface
type client struct {
	httpClient *http.Client
}

// Option is a functional option for client configuration
type Option func(*client)

// WithHTTPClient sets the HTTP client used for upstream calls
func WithHTTPClient(c *http.Client) Option {
	return func(x *client) {
		x.httpClient = c
	}
}

// New creates a new Slack service
func New(opts ...Option) Service {
	c := &client{
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *client) api(token string) *slack.Client {
	return slack.New(token, slack.OptionHTTPClient(c.httpClient))
}

// PostMessage posts text to a channel, optionally as a thread reply
func (c *client) PostMessage(ctx context.Context, token, channelID, text, threadTS string) (string, error) {
	opts := []slack.MsgOption{
		slack.MsgOptionText(text, false),
	}
	if threadTS != "" {
		opts = append(opts, slack.MsgOptionTS(threadTS))
	}

	_, ts, err := c.api(token).PostMessageContext(ctx, channelID, opts...)
	if err != nil {
		return "", upstreamError(err, "failed to post message",
			goerr.V(model.ChannelIDKey, channelID),
			goerr.V("thread_ts", threadTS))
	}
	return ts, nil
}

// ExchangeCode redeems code at oauth.v2.access and returns the authed user's token
func (c *client) ExchangeCode(ctx context.Context, clientID, clientSecret, code, redirectURI string) (*model.SlackGrant, error) {
	resp, err := slack.GetOAuthV2ResponseContext(ctx, c.httpClient, clientID, clientSecret, code, redirectURI)
	if err != nil {
		// clientSecret is never attached to the error
		return nil, upstreamError(err, "failed to exchange oauth code",
			goerr.V("client_id", clientID),
			goerr.V("redirect_uri", redirectURI))
	}

	return &model.SlackGrant{
		AccessToken: resp.AuthedUser.AccessToken,
		UserID:      resp.AuthedUser.ID,
		TeamID:      resp.Team.ID,
		TeamName:    resp.Team.Name,
	}, nil
}

// AuthTest checks token with auth.test. An ok:false answer is (false, nil).
func (c *client) AuthTest(ctx context.Context, token string) (bool, error) {
	if _, err := c.api(token).AuthTestContext(ctx); err != nil {
		var se slack.SlackErrorResponse
		if errors.As(err, &se) {
			return false, nil
		}
		return false, upstreamError(err, "failed to call auth.test")
	}
	return true, nil
}

// UserIdentity fetches the token owner's profile with users.identity
func (c *client) UserIdentity(ctx context.Context, token string) (*model.SlackIdentity, error) {
	resp, err := c.api(token).GetUserIdentityContext(ctx)
	if err != nil {
		return nil, upstreamError(err, "failed to get user identity")
	}

	return &model.SlackIdentity{
		ID:    resp.User.ID,
		Name:  resp.User.Name,
		Email: resp.User.Email,
	}, nil
}

// upstreamError classifies err as an upstream rejection (ok:false) or a transport failure
func upstreamError(err error, msg string, opts ...goerr.Option) error {
	var se slack.SlackErrorResponse
	if errors.As(err, &se) {
		opts = append(opts, goerr.V(model.UpstreamErrorKey, se.Err))
		return goerr.Wrap(fmt.Errorf("%w: %w", model.ErrUpstreamRejected, err), msg, opts...)
	}
	return goerr.Wrap(fmt.Errorf("%w: %w", model.ErrTransportFailure, err), msg, opts...)
}

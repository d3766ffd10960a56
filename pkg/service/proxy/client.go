package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/checkin/pkg/domain/interfaces"
	"github.com/secmon-lab/checkin/pkg/domain/model"
	"github.com/secmon-lab/checkin/pkg/utils/safe"
)

// maxResponseSize bounds what is read from the proxy
const maxResponseSize = 1 << 20

// Client talks to the credential proxy over HTTP
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ interfaces.ChatProxy = &Client{}

// Option is a functional option for Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(x *Client) {
		x.httpClient = c
	}
}

// New creates a client for the proxy served at baseURL (e.g. "http://localhost:8080")
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PostMessage forwards a chat post and returns its ts
func (c *Client) PostMessage(ctx context.Context, input *interfaces.PostMessageInput) (string, error) {
	req := &model.MessageRequest{
		Token:     input.Token,
		ChannelID: input.ChannelID,
		Text:      input.Text,
		ThreadTS:  input.ThreadTS,
	}

	resp, err := c.call(ctx, "/api/slack/message", req)
	if err != nil {
		return "", goerr.Wrap(err, "failed to post message", goerr.V(model.ChannelIDKey, input.ChannelID))
	}
	return resp.TS, nil
}

// ExchangeCode redeems an authorization code through the proxy
func (c *Client) ExchangeCode(ctx context.Context, code, redirectURI string) (*model.SlackGrant, error) {
	resp, err := c.call(ctx, "/api/slack/oauth", &model.OAuthRequest{Code: code, RedirectURI: redirectURI})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to exchange code", goerr.V("redirect_uri", redirectURI))
	}
	return &model.SlackGrant{
		AccessToken: resp.Token,
		UserID:      resp.UserID,
		TeamID:      resp.TeamID,
		TeamName:    resp.TeamName,
	}, nil
}

// VerifyToken reports whether token is valid. Only an unreachable proxy is an error.
func (c *Client) VerifyToken(ctx context.Context, token string) (bool, error) {
	resp, err := c.call(ctx, "/api/slack/test", &model.TokenRequest{Token: token})
	if err != nil {
		if resp != nil {
			return false, nil
		}
		return false, goerr.Wrap(err, "failed to verify token")
	}
	return resp.Success, nil
}

// UserIdentity fetches the token owner's profile
func (c *Client) UserIdentity(ctx context.Context, token string) (*model.SlackIdentity, error) {
	resp, err := c.call(ctx, "/api/slack/userinfo", &model.TokenRequest{Token: token})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get user identity")
	}
	if resp.User == nil {
		return nil, goerr.Wrap(model.ErrTransportFailure, "userinfo response has no user")
	}
	return resp.User, nil
}

// call posts body as JSON and decodes the proxy envelope. When the proxy
// answered with a well formed envelope, it is returned alongside the error.
func (c *Client) call(ctx context.Context, path string, body any) (*model.ProxyResponse, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create request", goerr.V("path", path))
	}
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(fmt.Errorf("%w: %w", model.ErrTransportFailure, err), "failed to call proxy", goerr.V("path", path))
	}
	defer safe.Close(ctx, httpResp.Body)

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseSize))
	if err != nil {
		return nil, goerr.Wrap(fmt.Errorf("%w: %w", model.ErrTransportFailure, err), "failed to read proxy response", goerr.V("path", path))
	}

	var resp model.ProxyResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, goerr.Wrap(fmt.Errorf("%w: %w", model.ErrTransportFailure, err), "failed to parse proxy response",
			goerr.V("path", path),
			goerr.V(model.StatusCodeKey, httpResp.StatusCode))
	}

	if httpResp.StatusCode == http.StatusOK && resp.Success {
		return &resp, nil
	}

	return &resp, goerr.Wrap(classify(httpResp.StatusCode, resp.Error), "proxy returned failure",
		goerr.V("path", path),
		goerr.V(model.StatusCodeKey, httpResp.StatusCode),
		goerr.V(model.UpstreamErrorKey, resp.Error))
}

func classify(status int, msg string) error {
	switch {
	case status == http.StatusBadRequest && strings.HasPrefix(msg, "Missing required"):
		return model.ErrBadRequest
	case status == http.StatusBadRequest:
		return model.ErrUpstreamRejected
	case status == http.StatusMethodNotAllowed:
		return model.ErrMethodNotAllowed
	case status == http.StatusInternalServerError && strings.HasPrefix(msg, "Server configuration error"):
		return model.ErrServerConfig
	case status == http.StatusOK:
		// auth.test style answer: success:false at 200
		return model.ErrUpstreamRejected
	default:
		return model.ErrTransportFailure
	}
}

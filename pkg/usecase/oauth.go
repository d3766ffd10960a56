package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/checkin/pkg/domain/model"
	"github.com/secmon-lab/checkin/pkg/domain/types"
	"github.com/secmon-lab/checkin/pkg/utils/logging"
)

const (
	// DefaultAuthorizeURL is Slack's OAuth v2 authorization endpoint
	DefaultAuthorizeURL = "https://slack.com/oauth/v2/authorize"
	// DefaultPollInterval is how often the authorization view is checked for closure
	DefaultPollInterval = time.Second
)

// DefaultUserScopes are requested when none are configured
var DefaultUserScopes = []string{"chat:write"}

// Window is an opened authorization view
type Window interface {
	// Closed reports whether the user closed the view
	Closed() bool
}

// Opener opens the authorization URL for the user
type Opener interface {
	Open(ctx context.Context, authorizeURL string) (Window, error)
}

// CodeExchanger redeems an authorization code, normally through the credential proxy
type CodeExchanger interface {
	ExchangeCode(ctx context.Context, code, redirectURI string) (*model.SlackGrant, error)
}

// Mailbox is a one-shot channel between the callback view and a waiting
// Coordinator. Messages whose origin or state differs from the expected one
// are dropped.
type Mailbox struct {
	origin string
	state  string
	ch     chan *model.RelayMessage

	mu     sync.Mutex
	closed bool
}

// NewMailbox creates a mailbox accepting messages from origin (scheme://host[:port])
// that carry the OAuth state parameter
func NewMailbox(origin, state string) *Mailbox {
	return &Mailbox{
		origin: origin,
		state:  state,
		ch:     make(chan *model.RelayMessage, 1),
	}
}

// Origin is the only origin whose messages are accepted
func (m *Mailbox) Origin() string {
	return m.origin
}

// Post delivers msg without blocking. It returns false when msg is from a
// foreign origin or carries another state, a message is already queued, or
// the mailbox is closed.
func (m *Mailbox) Post(msg *model.RelayMessage) bool {
	if msg == nil || msg.Origin != m.origin || msg.State != m.state {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return false
	}
	select {
	case m.ch <- msg:
		return true
	default:
		return false
	}
}

// Close rejects further posts
func (m *Mailbox) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
}

func (m *Mailbox) receive() <-chan *model.RelayMessage {
	return m.ch
}

// CoordinatorConfig describes the Slack app and redirect used by a Coordinator
type CoordinatorConfig struct {
	ClientID     string
	RedirectURI  string
	UserScopes   []string
	Scopes       []string
	AuthorizeURL string
	PollInterval time.Duration
}

// Coordinator runs one OAuth authorization attempt:
// Idle -> AwaitingRedirect -> ExchangingCode -> Authenticated, or Failed.
// A Coordinator cannot be reused.
type Coordinator struct {
	cfg       CoordinatorConfig
	opener    Opener
	exchanger CodeExchanger
	mailbox   *Mailbox
	state     string

	mu      sync.Mutex
	session *model.OAuthSession
}

// NewCoordinator validates cfg and prepares an Idle session
func NewCoordinator(cfg CoordinatorConfig, opener Opener, exchanger CodeExchanger) (*Coordinator, error) {
	if cfg.ClientID == "" {
		return nil, goerr.New("slack client ID is required")
	}
	origin, err := originOf(cfg.RedirectURI)
	if err != nil {
		return nil, err
	}
	// the exchange needs a user token, so a user scope is always requested
	if len(cfg.UserScopes) == 0 {
		cfg.UserScopes = DefaultUserScopes
	}
	if cfg.AuthorizeURL == "" {
		cfg.AuthorizeURL = DefaultAuthorizeURL
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}

	state, err := generateState()
	if err != nil {
		return nil, err
	}

	return &Coordinator{
		cfg:       cfg,
		opener:    opener,
		exchanger: exchanger,
		mailbox:   NewMailbox(origin, state),
		state:     state,
		session:   model.NewOAuthSession(),
	}, nil
}

// Mailbox returns the mailbox the callback relay must post into
func (c *Coordinator) Mailbox() *Mailbox {
	return c.mailbox
}

// State returns the current session state
func (c *Coordinator) State() types.SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.State
}

// AuthorizeURL builds the Slack authorization URL for this attempt
func (c *Coordinator) AuthorizeURL() string {
	params := url.Values{}
	params.Set("client_id", c.cfg.ClientID)
	if len(c.cfg.Scopes) > 0 {
		params.Set("scope", strings.Join(c.cfg.Scopes, ","))
	}
	if len(c.cfg.UserScopes) > 0 {
		params.Set("user_scope", strings.Join(c.cfg.UserScopes, ","))
	}
	params.Set("redirect_uri", c.cfg.RedirectURI)
	params.Set("state", c.state)

	return c.cfg.AuthorizeURL + "?" + params.Encode()
}

// Authorize opens the authorization view and waits for the callback relay or
// the view to close. The returned session is in a terminal state; on failure
// err is also stored as session.Failure. Closing the view before any message
// arrives fails with model.ErrUserCancelled.
func (c *Coordinator) Authorize(ctx context.Context) (*model.OAuthSession, error) {
	if !c.transition(types.SessionStateAwaitingRedirect) {
		return nil, goerr.New("authorization attempt already started", goerr.V("state", c.State()))
	}
	defer c.mailbox.Close()

	logger := logging.From(ctx)

	win, err := c.opener.Open(ctx, c.AuthorizeURL())
	if err != nil {
		return c.fail(goerr.Wrap(err, "failed to open authorization view"))
	}

	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return c.fail(goerr.Wrap(ctx.Err(), "authorization interrupted"))

		case msg := <-c.mailbox.receive():
			return c.handle(ctx, msg)

		case <-ticker.C:
			if !win.Closed() {
				continue
			}
			// the relay may have delivered just before the view closed
			select {
			case msg := <-c.mailbox.receive():
				return c.handle(ctx, msg)
			default:
			}
			logger.Debug("Authorization view closed before callback")
			return c.fail(goerr.Wrap(model.ErrUserCancelled, "authorization view was closed"))
		}
	}
}

func (c *Coordinator) handle(ctx context.Context, msg *model.RelayMessage) (*model.OAuthSession, error) {
	if msg.Kind != model.RelayKindSuccess {
		return c.fail(goerr.Wrap(model.ErrUpstreamRejected, "authorization was denied",
			goerr.V(model.UpstreamErrorKey, msg.Error)))
	}

	if !c.transition(types.SessionStateExchangingCode) {
		return c.fail(goerr.New("unexpected session state", goerr.V("state", c.State())))
	}

	grant, err := c.exchanger.ExchangeCode(ctx, msg.Code, c.cfg.RedirectURI)
	if err != nil {
		return c.fail(goerr.Wrap(err, "failed to exchange authorization code"))
	}
	if grant.AccessToken == "" {
		return c.fail(goerr.Wrap(model.ErrUpstreamRejected, "exchange returned no user token",
			goerr.V(model.UpstreamErrorKey, "missing_user_token")))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.session.Authenticate(grant)
	return c.session, nil
}

func (c *Coordinator) transition(next types.SessionState) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Transition(next)
}

func (c *Coordinator) fail(err error) (*model.OAuthSession, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session.Fail(err)
	return c.session, err
}

// generateState generates a random state parameter for OAuth
func generateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", goerr.Wrap(err, "failed to generate random state")
	}
	return hex.EncodeToString(b), nil
}

func originOf(redirectURI string) (string, error) {
	u, err := url.Parse(redirectURI)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", goerr.New("redirect URI must be absolute", goerr.V("redirect_uri", redirectURI))
	}
	return u.Scheme + "://" + u.Host, nil
}

package slack

import (
	"context"

	"github.com/secmon-lab/checkin/pkg/domain/model"
)

// Service calls the Slack Web API on behalf of the credential proxy. Every
// method takes the caller's credentials; the service holds none.
//
// Errors wrap model.ErrUpstreamRejected when Slack answered ok:false (the
// Slack error code is attached under model.UpstreamErrorKey) and
// model.ErrTransportFailure otherwise.
type Service interface {
	// PostMessage posts text to channelID and returns the message ts.
	// A non-empty threadTS posts a reply into that thread.
	PostMessage(ctx context.Context, token, channelID, text, threadTS string) (string, error)

	// ExchangeCode redeems an OAuth v2 authorization code
	ExchangeCode(ctx context.Context, clientID, clientSecret, code, redirectURI string) (*model.SlackGrant, error)

	// AuthTest reports whether token is accepted by auth.test
	AuthTest(ctx context.Context, token string) (bool, error)

	// UserIdentity returns the profile of the user owning token (users.identity)
	UserIdentity(ctx context.Context, token string) (*model.SlackIdentity, error)
}

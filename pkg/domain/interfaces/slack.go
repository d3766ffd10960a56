package interfaces

import (
	"context"

	"github.com/secmon-lab/checkin/pkg/domain/model"
)

// PostMessageInput is one chat post. ThreadTS is empty for a top-level post.
type PostMessageInput struct {
	Token     string `masq:"secret"`
	ChannelID string
	Text      string
	ThreadTS  string
}

// ChatProxy is the client view of the credential proxy
type ChatProxy interface {
	// PostMessage returns the posted message's ts
	PostMessage(ctx context.Context, input *PostMessageInput) (string, error)
	ExchangeCode(ctx context.Context, code, redirectURI string) (*model.SlackGrant, error)
	VerifyToken(ctx context.Context, token string) (bool, error)
	UserIdentity(ctx context.Context, token string) (*model.SlackIdentity, error)
}

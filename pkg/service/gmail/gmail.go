package gmail

import (
	"context"
	"encoding/base64"
	"mime"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/checkin/pkg/domain/interfaces"
	"github.com/secmon-lab/checkin/pkg/domain/model"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// SendScope is the only scope the mailer needs
const SendScope = gmailapi.GmailSendScope

// Mailer sends plain text email as the authenticated Gmail user
type Mailer struct {
	svc *gmailapi.Service
}

var _ interfaces.Mailer = &Mailer{}

// New creates a Mailer. opts are passed to the Gmail client, e.g. a token source.
func New(ctx context.Context, opts ...option.ClientOption) (*Mailer, error) {
	svc, err := gmailapi.NewService(ctx, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create gmail service")
	}
	return &Mailer{svc: svc}, nil
}

// StaticTokenSource wraps a short lived access token
func StaticTokenSource(accessToken string) oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
}

// RefreshTokenSource mints access tokens from an installed app refresh token
func RefreshTokenSource(ctx context.Context, clientID, clientSecret, refreshToken string) oauth2.TokenSource {
	cfg := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{SendScope},
	}
	return cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
}

// Send delivers body to the given address with subject
func (m *Mailer) Send(ctx context.Context, to, subject, body string) error {
	raw, err := BuildRaw(to, subject, body)
	if err != nil {
		return err
	}

	_, err = m.svc.Users.Messages.Send("me", &gmailapi.Message{Raw: raw}).Context(ctx).Do()
	if err != nil {
		return goerr.Wrap(err, "failed to send email", goerr.V(model.EmailKey, to))
	}
	return nil
}

// BuildRaw renders an RFC 2822 message and encodes it as base64url without padding
func BuildRaw(to, subject, body string) (string, error) {
	if !model.IsValidEmail(to) || strings.ContainsAny(to, "\r\n") {
		return "", goerr.Wrap(model.ErrInvalidEmail, "invalid recipient", goerr.V(model.EmailKey, to))
	}

	// header values must stay on one line
	subject = strings.NewReplacer("\r", "", "\n", " ").Replace(subject)

	var b strings.Builder
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("UTF-8", subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)

	return base64.RawURLEncoding.EncodeToString([]byte(b.String())), nil
}

package interfaces

import "context"

// Mailer delivers a plain text email
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

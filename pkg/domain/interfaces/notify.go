package interfaces

import (
	"context"

	"github.com/secmon-lab/checkin/pkg/domain/types"
)

// Notifier shows a user-visible notification
type Notifier interface {
	Notify(ctx context.Context, severity types.Severity, msg string)
}

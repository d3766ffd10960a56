package safe

import (
	"context"
	"io"
	"log/slog"

	"github.com/secmon-lab/checkin/pkg/utils/logging"
)

// Close closes closer and logs the failure instead of returning it.
// A nil closer is a no-op.
func Close(ctx context.Context, closer io.Closer) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.From(ctx).Error("Failed to close", slog.Any("error", err))
	}
}

// Write writes data to w and logs the failure. Used after the status line
// has been committed, when there is nobody left to return the error to.
func Write(ctx context.Context, w io.Writer, data []byte) {
	if w == nil {
		return
	}
	if _, err := w.Write(data); err != nil {
		logging.From(ctx).Error("Failed to write", slog.Any("error", err))
	}
}

package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/checkin/pkg/utils/logging"
)

func TestFromFallsBackToDefault(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	prev := logging.Default()
	logging.SetDefault(logger)
	t.Cleanup(func() { logging.SetDefault(prev) })

	logging.From(context.Background()).Info("hello")
	gt.String(t, buf.String()).Contains("hello")
}

func TestWithStoresLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	ctx := logging.With(context.Background(), logger)
	logging.From(ctx).Info("scoped", "key", "value")

	gt.String(t, buf.String()).Contains("scoped")
	gt.String(t, buf.String()).Contains("key=value")
}

func TestSetDefaultIgnoresNil(t *testing.T) {
	prev := logging.Default()
	logging.SetDefault(nil)
	gt.Value(t, logging.Default()).Equal(prev)
}

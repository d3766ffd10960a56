package storage_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/checkin/pkg/domain/model"
	"github.com/secmon-lab/checkin/pkg/domain/types"
	"github.com/secmon-lab/checkin/pkg/repository/memory"
	"github.com/secmon-lab/checkin/pkg/service/storage"
)

// failingKV fails every operation
type failingKV struct{}

func (failingKV) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, errors.New("disk on fire")
}
func (failingKV) Put(ctx context.Context, key string, value []byte) error {
	return errors.New("disk on fire")
}
func (failingKV) Delete(ctx context.Context, key string) error { return errors.New("disk on fire") }
func (failingKV) Close() error                                 { return nil }

func TestSettings(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults when absent", func(t *testing.T) {
		s := storage.New(memory.New())
		gt.Bool(t, s.HasSettings(ctx)).False()
		gt.Value(t, s.Settings(ctx)).Equal(model.DefaultSettings())
	})

	t.Run("round trip", func(t *testing.T) {
		s := storage.New(memory.New())
		settings := model.DefaultSettings()
		settings.AttendanceEmail = "hr@example.com"
		settings.SlackAccessToken = "xoxp-secret"
		settings.SlackChannelID = "C01ABCDEF23"
		settings.DefaultLocation = types.LocationHome

		gt.Bool(t, s.SaveSettings(ctx, settings)).True()
		gt.Bool(t, s.HasSettings(ctx)).True()
		gt.Value(t, s.Settings(ctx)).Equal(settings)
	})

	t.Run("defaults when unreadable", func(t *testing.T) {
		kv := memory.New()
		gt.NoError(t, kv.Put(ctx, storage.KeySettings, []byte("{not json"))).Required()

		s := storage.New(kv)
		gt.Value(t, s.Settings(ctx)).Equal(model.DefaultSettings())
	})

	t.Run("backend failures are swallowed", func(t *testing.T) {
		s := storage.New(failingKV{})
		gt.Value(t, s.Settings(ctx)).Equal(model.DefaultSettings())
		gt.Bool(t, s.SaveSettings(ctx, model.DefaultSettings())).False()
	})
}

func TestHistory(t *testing.T) {
	ctx := context.Background()

	t.Run("empty when absent", func(t *testing.T) {
		s := storage.New(memory.New())
		gt.Array(t, s.History(ctx)).Length(0)
	})

	t.Run("newest first and capped", func(t *testing.T) {
		s := storage.New(memory.New())
		for i := 0; i < model.HistoryLimit+1; i++ {
			gt.Bool(t, s.AddHistory(ctx, &model.HistoryEntry{
				ID:        fmt.Sprintf("%03d", i),
				Timestamp: time.Now(),
				Type:      types.MessageTypeCheckIn,
				Status:    model.HistoryStatusSuccess,
			})).True()
		}

		history := s.History(ctx)
		gt.Array(t, history).Length(model.HistoryLimit)
		gt.Value(t, history[0].ID).Equal(fmt.Sprintf("%03d", model.HistoryLimit))
		gt.Value(t, history[model.HistoryLimit-1].ID).Equal("001")
	})

	t.Run("clear", func(t *testing.T) {
		s := storage.New(memory.New())
		gt.Bool(t, s.AddHistory(ctx, &model.HistoryEntry{ID: "1"})).True()
		gt.Bool(t, s.ClearHistory(ctx)).True()
		gt.Array(t, s.History(ctx)).Length(0)
		// clearing again is fine
		gt.Bool(t, s.ClearHistory(ctx)).True()
	})

	t.Run("unreadable history is empty", func(t *testing.T) {
		kv := memory.New()
		gt.NoError(t, kv.Put(ctx, storage.KeyHistory, []byte("[{"))).Required()
		gt.Array(t, storage.New(kv).History(ctx)).Length(0)
	})

	t.Run("concurrent adds keep every entry", func(t *testing.T) {
		s := storage.New(memory.New())
		done := make(chan struct{})
		for i := 0; i < 10; i++ {
			go func(i int) {
				s.AddHistory(ctx, &model.HistoryEntry{ID: fmt.Sprintf("%d", i)})
				done <- struct{}{}
			}(i)
		}
		for i := 0; i < 10; i++ {
			<-done
		}
		gt.Array(t, s.History(ctx)).Length(10)
	})
}

func TestThreadLink(t *testing.T) {
	ctx := context.Background()
	s := storage.New(memory.New())

	gt.Value(t, s.ThreadLink(ctx)).Equal("")
	gt.Bool(t, s.SetThreadLink(ctx, "1700000000.000100")).True()
	gt.Value(t, s.ThreadLink(ctx)).Equal("1700000000.000100")

	// reading does not consume
	gt.Value(t, s.ThreadLink(ctx)).Equal("1700000000.000100")

	gt.Bool(t, s.SetThreadLink(ctx, "1700000001.000200")).True()
	gt.Value(t, s.ThreadLink(ctx)).Equal("1700000001.000200")

	gt.Bool(t, s.ClearThreadLink(ctx)).True()
	gt.Value(t, s.ThreadLink(ctx)).Equal("")

	failing := storage.New(failingKV{})
	gt.Value(t, failing.ThreadLink(ctx)).Equal("")
	gt.Bool(t, failing.SetThreadLink(ctx, "x")).False()
	gt.Bool(t, failing.ClearThreadLink(ctx)).False()
}

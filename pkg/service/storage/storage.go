package storage

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/checkin/pkg/domain/interfaces"
	"github.com/secmon-lab/checkin/pkg/domain/model"
	"github.com/secmon-lab/checkin/pkg/utils/logging"
)

// Well known keys
const (
	KeySettings   = "settings"
	KeyHistory    = "history"
	KeyThreadLink = "threadLink"
)

// Store is the typed view over a KVStore. Failures never propagate: reads
// fall back to defaults and writes report false, and both are logged.
type Store struct {
	kv interfaces.KVStore

	// serializes read-modify-write of history
	historyMu sync.Mutex
}

func New(kv interfaces.KVStore) *Store {
	return &Store{kv: kv}
}

// Close closes the backend
func (s *Store) Close() error {
	return s.kv.Close()
}

// Settings returns the stored settings or DefaultSettings
func (s *Store) Settings(ctx context.Context) *model.Settings {
	settings := model.DefaultSettings()
	found, err := s.getJSON(ctx, KeySettings, settings)
	if err != nil {
		logging.From(ctx).Warn("Failed to load settings, using defaults", "error", err)
		return model.DefaultSettings()
	}
	if !found {
		return settings
	}
	if settings.SavedReasons == nil {
		settings.SavedReasons = []string{}
	}
	return settings
}

// HasSettings reports whether settings were ever saved
func (s *Store) HasSettings(ctx context.Context) bool {
	_, err := s.kv.Get(ctx, KeySettings)
	return err == nil
}

func (s *Store) SaveSettings(ctx context.Context, settings *model.Settings) bool {
	if err := s.putJSON(ctx, KeySettings, settings); err != nil {
		logging.From(ctx).Error("Failed to save settings", "error", err)
		return false
	}
	return true
}

// History returns entries newest first, empty when absent or unreadable
func (s *Store) History(ctx context.Context) []*model.HistoryEntry {
	var history []*model.HistoryEntry
	if _, err := s.getJSON(ctx, KeyHistory, &history); err != nil {
		logging.From(ctx).Warn("Failed to load history", "error", err)
		return []*model.HistoryEntry{}
	}
	if history == nil {
		return []*model.HistoryEntry{}
	}
	return history
}

// AddHistory inserts entry at the head and keeps at most model.HistoryLimit entries
func (s *Store) AddHistory(ctx context.Context, entry *model.HistoryEntry) bool {
	s.historyMu.Lock()
	defer s.historyMu.Unlock()

	history := model.PrependHistory(s.History(ctx), entry)
	if err := s.putJSON(ctx, KeyHistory, history); err != nil {
		logging.From(ctx).Error("Failed to save history", "error", err, "entry_id", entry.ID)
		return false
	}
	return true
}

func (s *Store) ClearHistory(ctx context.Context) bool {
	s.historyMu.Lock()
	defer s.historyMu.Unlock()

	if err := s.kv.Delete(ctx, KeyHistory); err != nil {
		logging.From(ctx).Error("Failed to clear history", "error", err)
		return false
	}
	return true
}

// ThreadLink returns the stored thread identifier or ""
func (s *Store) ThreadLink(ctx context.Context) string {
	v, err := s.kv.Get(ctx, KeyThreadLink)
	if err != nil {
		if !errors.Is(err, interfaces.ErrKeyNotFound) {
			logging.From(ctx).Warn("Failed to load thread link", "error", err)
		}
		return ""
	}
	return string(v)
}

func (s *Store) SetThreadLink(ctx context.Context, ts string) bool {
	if err := s.kv.Put(ctx, KeyThreadLink, []byte(ts)); err != nil {
		logging.From(ctx).Error("Failed to save thread link", "error", err)
		return false
	}
	return true
}

func (s *Store) ClearThreadLink(ctx context.Context) bool {
	if err := s.kv.Delete(ctx, KeyThreadLink); err != nil {
		logging.From(ctx).Error("Failed to clear thread link", "error", err)
		return false
	}
	return true
}

// getJSON decodes key into v and reports whether the key was present
func (s *Store) getJSON(ctx context.Context, key string, v any) (bool, error) {
	raw, err := s.kv.Get(ctx, key)
	if errors.Is(err, interfaces.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, goerr.Wrap(err, "failed to read key", goerr.V("key", key))
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, goerr.Wrap(err, "failed to decode value", goerr.V("key", key))
	}
	return true, nil
}

func (s *Store) putJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return goerr.Wrap(err, "failed to encode value", goerr.V("key", key))
	}
	if err := s.kv.Put(ctx, key, raw); err != nil {
		return goerr.Wrap(err, "failed to write key", goerr.V("key", key))
	}
	return nil
}

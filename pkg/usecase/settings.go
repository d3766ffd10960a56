package usecase

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/checkin/pkg/domain/interfaces"
	"github.com/secmon-lab/checkin/pkg/domain/model"
	"github.com/secmon-lab/checkin/pkg/domain/types"
	"github.com/secmon-lab/checkin/pkg/service/storage"
)

// Notification texts for settings and history
const (
	MsgSettingsSaved      = "Settings saved successfully!"
	MsgSettingsSaveFailed = "Failed to save settings"
	MsgSettingsInvalid    = "Please fix the errors"
	MsgHistoryCleared     = "History cleared"
)

// SettingsUpdate changes only the non-nil fields
type SettingsUpdate struct {
	AttendanceEmail *string
	SlackChannelID  *string
	DefaultLocation *types.Location
	SavedReasons    []string
}

// Profile seeds settings on first run
type Profile struct {
	AttendanceEmail string
	SlackChannelID  string
	DefaultLocation types.Location
	SavedReasons    []string
}

// SettingsUseCase reads and edits the stored settings and history
type SettingsUseCase struct {
	store    *storage.Store
	notifier interfaces.Notifier
}

func NewSettingsUseCase(store *storage.Store, notifier interfaces.Notifier) *SettingsUseCase {
	return &SettingsUseCase{store: store, notifier: notifier}
}

// Get returns stored settings, or the defaults
func (uc *SettingsUseCase) Get(ctx context.Context) *model.Settings {
	return uc.store.Settings(ctx)
}

// Update applies update, validates the result and saves it
func (uc *SettingsUseCase) Update(ctx context.Context, update SettingsUpdate) (*model.Settings, error) {
	settings := uc.store.Settings(ctx)

	if update.AttendanceEmail != nil {
		settings.AttendanceEmail = strings.TrimSpace(*update.AttendanceEmail)
	}
	if update.SlackChannelID != nil {
		settings.SlackChannelID = strings.TrimSpace(*update.SlackChannelID)
	}
	if update.DefaultLocation != nil {
		settings.DefaultLocation = *update.DefaultLocation
	}
	if update.SavedReasons != nil {
		settings.SavedReasons = cleanReasons(update.SavedReasons)
	}

	if err := settings.Validate(); err != nil {
		uc.notifier.Notify(ctx, types.SeverityError, MsgSettingsInvalid)
		return nil, err
	}

	if !uc.store.SaveSettings(ctx, settings) {
		uc.notifier.Notify(ctx, types.SeverityError, MsgSettingsSaveFailed)
		return nil, goerr.New("failed to save settings")
	}
	uc.notifier.Notify(ctx, types.SeveritySuccess, MsgSettingsSaved)
	return settings, nil
}

// Seed stores profile when no settings exist yet. It reports whether it applied.
func (uc *SettingsUseCase) Seed(ctx context.Context, profile *Profile) (bool, error) {
	if profile == nil || uc.store.HasSettings(ctx) {
		return false, nil
	}

	settings := model.DefaultSettings()
	settings.AttendanceEmail = strings.TrimSpace(profile.AttendanceEmail)
	settings.SlackChannelID = strings.TrimSpace(profile.SlackChannelID)
	if profile.DefaultLocation != "" {
		settings.DefaultLocation = profile.DefaultLocation
	}
	if len(profile.SavedReasons) > 0 {
		settings.SavedReasons = cleanReasons(profile.SavedReasons)
	}

	if err := settings.Validate(); err != nil {
		return false, goerr.Wrap(err, "invalid profile")
	}
	if !uc.store.SaveSettings(ctx, settings) {
		return false, goerr.New("failed to save seeded settings")
	}
	return true, nil
}

// History returns up to limit entries, newest first. limit <= 0 returns all.
func (uc *SettingsUseCase) History(ctx context.Context, limit int) []*model.HistoryEntry {
	history := uc.store.History(ctx)
	if limit > 0 && len(history) > limit {
		history = history[:limit]
	}
	return history
}

// ClearHistory drops every history entry
func (uc *SettingsUseCase) ClearHistory(ctx context.Context) error {
	if !uc.store.ClearHistory(ctx) {
		return goerr.New("failed to clear history")
	}
	uc.notifier.Notify(ctx, types.SeverityInfo, MsgHistoryCleared)
	return nil
}

func cleanReasons(reasons []string) []string {
	seen := make(map[string]bool, len(reasons))
	result := make([]string, 0, len(reasons))
	for _, r := range reasons {
		r = strings.TrimSpace(r)
		if r == "" || seen[r] {
			continue
		}
		seen[r] = true
		result = append(result, r)
	}
	return result
}

package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/checkin/pkg/domain/interfaces"
	"github.com/secmon-lab/checkin/pkg/domain/model"
	"github.com/secmon-lab/checkin/pkg/domain/types"
	"github.com/secmon-lab/checkin/pkg/service/storage"
	"github.com/secmon-lab/checkin/pkg/utils/logging"
)

// Notification texts for the Slack connection
const (
	MsgSlackSignInFailed = "Failed to sign in to Slack"
	MsgSlackSignedOut    = "Signed out from Slack"
)

// Authorizer runs one OAuth authorization attempt. *Coordinator implements it.
type Authorizer interface {
	Authorize(ctx context.Context) (*model.OAuthSession, error)
}

var _ Authorizer = &Coordinator{}

// SlackAuthUseCase connects, verifies and disconnects the user's Slack account
type SlackAuthUseCase struct {
	store    *storage.Store
	proxy    interfaces.ChatProxy
	notifier interfaces.Notifier
}

func NewSlackAuthUseCase(store *storage.Store, proxy interfaces.ChatProxy, notifier interfaces.Notifier) *SlackAuthUseCase {
	return &SlackAuthUseCase{store: store, proxy: proxy, notifier: notifier}
}

// Connect runs the handshake and stores the token with its display fields.
// A cancelled handshake returns nil and shows nothing.
func (uc *SlackAuthUseCase) Connect(ctx context.Context, auth Authorizer) (*model.Settings, error) {
	logger := logging.From(ctx)

	session, err := auth.Authorize(ctx)
	if err != nil {
		if errors.Is(err, model.ErrUserCancelled) {
			logger.Info("Slack sign-in cancelled")
			return nil, nil
		}
		uc.notifier.Notify(ctx, types.SeverityError, failureText(err, MsgSlackSignInFailed))
		return nil, err
	}

	settings := uc.store.Settings(ctx)
	settings.SlackAccessToken = session.AccessToken
	settings.SlackUserID = session.UserID
	settings.SlackTeamID = session.TeamID
	settings.SlackTeamName = session.TeamName

	identity, idErr := uc.proxy.UserIdentity(ctx, session.AccessToken)
	if idErr != nil {
		logger.Warn("Failed to fetch Slack identity", "error", idErr)
		identity = &model.SlackIdentity{ID: session.UserID}
	}
	settings.SlackUserName = identity.DisplayName()

	if !uc.store.SaveSettings(ctx, settings) {
		uc.notifier.Notify(ctx, types.SeverityError, MsgSettingsSaveFailed)
		return nil, goerr.New("failed to save slack connection")
	}

	if idErr == nil {
		uc.notifier.Notify(ctx, types.SeveritySuccess, "Connected to Slack as "+settings.SlackUserName+"!")
	} else {
		uc.notifier.Notify(ctx, types.SeveritySuccess, "Connected to Slack!")
	}
	return settings, nil
}

// Disconnect clears the token and every Slack derived field, including the channel
func (uc *SlackAuthUseCase) Disconnect(ctx context.Context) error {
	settings := uc.store.Settings(ctx)
	settings.ClearSlack()
	if !uc.store.SaveSettings(ctx, settings) {
		uc.notifier.Notify(ctx, types.SeverityError, MsgSettingsSaveFailed)
		return goerr.New("failed to clear slack connection")
	}
	uc.notifier.Notify(ctx, types.SeverityInfo, MsgSlackSignedOut)
	return nil
}

// Verify reports whether the stored token is still accepted by Slack
func (uc *SlackAuthUseCase) Verify(ctx context.Context) (bool, error) {
	settings := uc.store.Settings(ctx)
	if !settings.HasSlack() {
		return false, goerr.Wrap(model.ErrSlackUnavailable, "no slack token stored")
	}
	valid, err := uc.proxy.VerifyToken(ctx, settings.SlackAccessToken)
	if err != nil {
		return false, goerr.Wrap(err, "failed to verify slack token")
	}
	return valid, nil
}

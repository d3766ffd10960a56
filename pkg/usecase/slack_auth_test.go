package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/checkin/pkg/domain/model"
	"github.com/secmon-lab/checkin/pkg/domain/types"
	"github.com/secmon-lab/checkin/pkg/service/notify"
	"github.com/secmon-lab/checkin/pkg/usecase"
)

type fakeAuthorizer struct {
	session *model.OAuthSession
	err     error
}

func (a *fakeAuthorizer) Authorize(ctx context.Context) (*model.OAuthSession, error) {
	return a.session, a.err
}

func authenticated() *model.OAuthSession {
	s := model.NewOAuthSession()
	s.State = types.SessionStateExchangingCode
	s.Authenticate(&model.SlackGrant{
		AccessToken: "xoxp-new",
		UserID:      "U999",
		TeamID:      "T1",
		TeamName:    "Acme",
	})
	return s
}

func TestConnect(t *testing.T) {
	ctx := context.Background()

	t.Run("with identity", func(t *testing.T) {
		store := newStore()
		notifier := &notify.Recorder{}
		proxy := &fakeProxy{identity: &model.SlackIdentity{ID: "U999", Name: "Jane"}}
		uc := usecase.New(store, proxy, usecase.WithNotifier(notifier))

		settings, err := uc.SlackAuth.Connect(ctx, &fakeAuthorizer{session: authenticated()})
		gt.NoError(t, err).Required()
		gt.Value(t, settings.SlackUserName).Equal("Jane")

		stored := store.Settings(ctx)
		gt.Value(t, stored.SlackAccessToken).Equal("xoxp-new")
		gt.Value(t, stored.SlackUserID).Equal("U999")
		gt.Value(t, stored.SlackTeamID).Equal("T1")
		gt.Value(t, stored.SlackTeamName).Equal("Acme")
		gt.Value(t, notifier.Last()).Equal(notify.Entry{Severity: types.SeveritySuccess, Message: "Connected to Slack as Jane!"})
	})

	t.Run("identity lookup fails", func(t *testing.T) {
		store := newStore()
		notifier := &notify.Recorder{}
		proxy := &fakeProxy{identityErr: errors.New("missing_scope")}
		uc := usecase.New(store, proxy, usecase.WithNotifier(notifier))

		_, err := uc.SlackAuth.Connect(ctx, &fakeAuthorizer{session: authenticated()})
		gt.NoError(t, err).Required()
		gt.Value(t, store.Settings(ctx).SlackUserName).Equal("User U999")
		gt.Value(t, notifier.Last().Message).Equal("Connected to Slack!")
	})

	t.Run("cancelled is silent", func(t *testing.T) {
		store := newStore()
		notifier := &notify.Recorder{}
		uc := usecase.New(store, &fakeProxy{}, usecase.WithNotifier(notifier))

		settings, err := uc.SlackAuth.Connect(ctx, &fakeAuthorizer{
			err: goerr.Wrap(model.ErrUserCancelled, "closed"),
		})
		gt.NoError(t, err)
		gt.Bool(t, settings == nil).True()
		gt.Array(t, notifier.Entries).Length(0)
		gt.Bool(t, store.HasSettings(ctx)).False()
	})

	t.Run("rejected shows upstream error", func(t *testing.T) {
		notifier := &notify.Recorder{}
		uc := usecase.New(newStore(), &fakeProxy{}, usecase.WithNotifier(notifier))

		_, err := uc.SlackAuth.Connect(ctx, &fakeAuthorizer{
			err: goerr.Wrap(model.ErrUpstreamRejected, "denied", goerr.V(model.UpstreamErrorKey, "invalid_code")),
		})
		gt.Error(t, err).Is(model.ErrUpstreamRejected)
		gt.Value(t, notifier.Last()).Equal(notify.Entry{Severity: types.SeverityError, Message: "invalid_code"})
	})

	t.Run("transport failure shows generic text", func(t *testing.T) {
		notifier := &notify.Recorder{}
		uc := usecase.New(newStore(), &fakeProxy{}, usecase.WithNotifier(notifier))

		_, err := uc.SlackAuth.Connect(ctx, &fakeAuthorizer{err: errors.New("dial tcp: refused")})
		gt.Value(t, err).NotNil()
		gt.Value(t, notifier.Last().Message).Equal(usecase.MsgSlackSignInFailed)
	})
}

func TestDisconnect(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	seedSettings(ctx, store, func(s *model.Settings) {
		configured(s)
		s.SlackUserID = "U1"
		s.SlackUserName = "Jane"
	})
	notifier := &notify.Recorder{}
	uc := usecase.New(store, &fakeProxy{}, usecase.WithNotifier(notifier))

	gt.NoError(t, uc.SlackAuth.Disconnect(ctx)).Required()

	stored := store.Settings(ctx)
	gt.Value(t, stored.SlackAccessToken).Equal("")
	gt.Value(t, stored.SlackChannelID).Equal("")
	gt.Value(t, stored.SlackUserName).Equal("")
	gt.Value(t, stored.AttendanceEmail).Equal("hr@example.com")
	gt.Value(t, notifier.Last()).Equal(notify.Entry{Severity: types.SeverityInfo, Message: usecase.MsgSlackSignedOut})
}

func TestVerify(t *testing.T) {
	ctx := context.Background()

	t.Run("not connected", func(t *testing.T) {
		uc := usecase.New(newStore(), &fakeProxy{valid: true})
		_, err := uc.SlackAuth.Verify(ctx)
		gt.Error(t, err).Is(model.ErrSlackUnavailable)
	})

	t.Run("valid", func(t *testing.T) {
		store := newStore()
		seedSettings(ctx, store, configured)
		uc := usecase.New(store, &fakeProxy{valid: true})
		valid, err := uc.SlackAuth.Verify(ctx)
		gt.NoError(t, err).Required()
		gt.Bool(t, valid).True()
	})

	t.Run("revoked", func(t *testing.T) {
		store := newStore()
		seedSettings(ctx, store, configured)
		uc := usecase.New(store, &fakeProxy{valid: false})
		valid, err := uc.SlackAuth.Verify(ctx)
		gt.NoError(t, err).Required()
		gt.Bool(t, valid).False()
	})

	t.Run("proxy unreachable", func(t *testing.T) {
		store := newStore()
		seedSettings(ctx, store, configured)
		uc := usecase.New(store, &fakeProxy{verifyErr: model.ErrTransportFailure})
		_, err := uc.SlackAuth.Verify(ctx)
		gt.Error(t, err).Is(model.ErrTransportFailure)
	})
}

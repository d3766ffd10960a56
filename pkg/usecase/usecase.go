package usecase

import (
	"time"

	"github.com/secmon-lab/checkin/pkg/domain/interfaces"
	"github.com/secmon-lab/checkin/pkg/service/notify"
	"github.com/secmon-lab/checkin/pkg/service/storage"
)

type UseCases struct {
	store    *storage.Store
	proxy    interfaces.ChatProxy
	mailer   interfaces.Mailer
	notifier interfaces.Notifier
	now      func() time.Time

	Checkin   *CheckinUseCase
	SlackAuth *SlackAuthUseCase
	Settings  *SettingsUseCase
	Threads   *ThreadPolicy
}

type Option func(*UseCases)

// WithMailer enables the email destination
func WithMailer(mailer interfaces.Mailer) Option {
	return func(u *UseCases) {
		u.mailer = mailer
	}
}

func WithNotifier(notifier interfaces.Notifier) Option {
	return func(u *UseCases) {
		u.notifier = notifier
	}
}

// WithClock replaces time.Now for message timestamps
func WithClock(now func() time.Time) Option {
	return func(u *UseCases) {
		u.now = now
	}
}

func New(store *storage.Store, proxy interfaces.ChatProxy, opts ...Option) *UseCases {
	uc := &UseCases{
		store: store,
		proxy: proxy,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	if uc.notifier == nil {
		uc.notifier = &notify.Recorder{}
	}

	uc.Threads = NewThreadPolicy(store)
	uc.Checkin = NewCheckinUseCase(store, proxy, uc.mailer, uc.notifier, uc.Threads, uc.now)
	uc.SlackAuth = NewSlackAuthUseCase(store, proxy, uc.notifier)
	uc.Settings = NewSettingsUseCase(store, uc.notifier)

	return uc
}

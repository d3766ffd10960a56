package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/checkin/pkg/domain/interfaces"
	"github.com/secmon-lab/checkin/pkg/domain/model"
	"github.com/secmon-lab/checkin/pkg/domain/types"
	"github.com/secmon-lab/checkin/pkg/service/storage"
	"github.com/secmon-lab/checkin/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

// Notification texts shown after a send
const (
	MsgEmailSent            = "Email sent successfully!"
	MsgSlackSent            = "Message sent to Slack!"
	MsgBothSent             = "Sent to both email and Slack!"
	MsgEmailOnly            = "Email sent, but Slack failed"
	MsgSlackOnly            = "Slack sent, but email failed"
	MsgBothFailed           = "Failed to send to both"
	MsgEmailFailed          = "Failed to send email"
	MsgSlackFailed          = "Failed to send to Slack"
	MsgConfigureSlack       = "Please configure Slack in settings"
	MsgConfigureEmail       = "Please configure email in settings"
	MsgSignInGmail          = "Please sign in to Gmail first"
	MsgSendInProgressNotice = "A send of this type is already in progress"
)

// SendInput is one composed check-in or check-out
type SendInput struct {
	Type     types.MessageType
	Location types.Location
	Reason   string
	Message  string
	Target   types.Target
}

// Validate checks the enumerated fields
func (x *SendInput) Validate() error {
	if !x.Type.IsValid() {
		return goerr.Wrap(model.ErrBadRequest, "invalid message type", goerr.V(model.MessageTypeKey, x.Type))
	}
	if !x.Location.IsValid() {
		return goerr.Wrap(model.ErrInvalidLocation, "invalid location", goerr.V("location", x.Location))
	}
	if !x.Target.IsValid() {
		return goerr.Wrap(model.ErrBadRequest, "invalid target", goerr.V("target", x.Target))
	}
	return nil
}

// SendResult reports the per-destination results of a send
type SendResult struct {
	Outcome  types.Outcome
	EmailErr error
	ChatErr  error
	// ThreadTS is the ts of the chat post, empty unless it succeeded
	ThreadTS string
	// Entry is the recorded history entry, nil unless every destination succeeded
	Entry *model.HistoryEntry
}

// CheckinUseCase composes and dispatches check-in and check-out messages
type CheckinUseCase struct {
	store    *storage.Store
	proxy    interfaces.ChatProxy
	mailer   interfaces.Mailer
	notifier interfaces.Notifier
	threads  *ThreadPolicy
	now      func() time.Time

	mu       sync.Mutex
	inflight map[types.MessageType]bool
}

// NewCheckinUseCase creates a CheckinUseCase. mailer may be nil when email is not set up.
func NewCheckinUseCase(store *storage.Store, proxy interfaces.ChatProxy, mailer interfaces.Mailer, notifier interfaces.Notifier, threads *ThreadPolicy, now func() time.Time) *CheckinUseCase {
	return &CheckinUseCase{
		store:    store,
		proxy:    proxy,
		mailer:   mailer,
		notifier: notifier,
		threads:  threads,
		now:      now,
		inflight: make(map[types.MessageType]bool),
	}
}

// Send dispatches input to its target destinations. Sends to email and chat
// run concurrently and are both awaited. A destination that is not configured
// aborts the whole send before anything goes out. Per-destination failures are
// reported in SendResult, not as the returned error.
func (uc *CheckinUseCase) Send(ctx context.Context, input SendInput) (*SendResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	if !uc.acquire(input.Type) {
		uc.notifier.Notify(ctx, types.SeverityWarning, MsgSendInProgressNotice)
		return nil, goerr.Wrap(model.ErrSendInProgress, "concurrent send", goerr.V(model.MessageTypeKey, input.Type))
	}
	defer uc.release(input.Type)

	settings := uc.store.Settings(ctx)
	if err := uc.checkAvailable(ctx, settings, input.Target); err != nil {
		return nil, err
	}

	msg := model.NewMessage(input.Type, input.Location, input.Reason, input.Message, uc.now())
	threadTS := uc.threads.ResolveThreadContext(ctx, input.Type)

	logger := logging.From(ctx).With("type", input.Type, "target", input.Target)
	logger.Debug("Sending message", "thread_ts", threadTS)

	result := &SendResult{}
	var eg errgroup.Group

	if input.Target.Includes(types.DestinationEmail) {
		eg.Go(func() error {
			result.EmailErr = uc.mailer.Send(ctx, settings.AttendanceEmail, msg.EmailSubject(), msg.EmailBody())
			return nil
		})
	}
	if input.Target.Includes(types.DestinationChat) {
		eg.Go(func() error {
			ts, err := uc.proxy.PostMessage(ctx, &interfaces.PostMessageInput{
				Token:     settings.SlackAccessToken,
				ChannelID: settings.SlackChannelID,
				Text:      msg.ChatText(),
				ThreadTS:  threadTS,
			})
			result.ChatErr = err
			if err == nil {
				result.ThreadTS = ts
			}
			return nil
		})
	}
	_ = eg.Wait()

	var sentTo []types.Destination
	for _, d := range input.Target.Destinations() {
		if result.errOf(d) == nil {
			sentTo = append(sentTo, d)
		} else {
			logger.Warn("Destination failed", "destination", d, "error", result.errOf(d))
		}
	}
	result.Outcome = types.OutcomeOf(len(sentTo), len(input.Target.Destinations()))

	if input.Target.Includes(types.DestinationChat) && result.ChatErr == nil {
		uc.threads.RecordThreadResult(ctx, input.Type, result.ThreadTS)
	}

	// partial sends keep the thread link but leave no history
	if result.Outcome == types.OutcomeSucceeded {
		result.Entry = model.NewHistoryEntry(msg, sentTo, result.ThreadTS)
		uc.store.AddHistory(ctx, result.Entry)
	}

	uc.notifyResult(ctx, input.Target, result)
	return result, nil
}

func (r *SendResult) errOf(d types.Destination) error {
	if d == types.DestinationEmail {
		return r.EmailErr
	}
	return r.ChatErr
}

func (uc *CheckinUseCase) checkAvailable(ctx context.Context, settings *model.Settings, target types.Target) error {
	if target.Includes(types.DestinationEmail) {
		if uc.mailer == nil {
			uc.notifier.Notify(ctx, types.SeverityError, MsgSignInGmail)
			return goerr.Wrap(model.ErrEmailUnavailable, "gmail credentials are not configured")
		}
		if !settings.HasEmail() {
			uc.notifier.Notify(ctx, types.SeverityError, MsgConfigureEmail)
			return goerr.Wrap(model.ErrEmailUnavailable, "attendance email is not configured")
		}
	}
	if target.Includes(types.DestinationChat) && (!settings.HasSlack() || settings.SlackChannelID == "") {
		uc.notifier.Notify(ctx, types.SeverityError, MsgConfigureSlack)
		return goerr.Wrap(model.ErrSlackUnavailable, "slack destination is not configured")
	}
	return nil
}

func (uc *CheckinUseCase) notifyResult(ctx context.Context, target types.Target, r *SendResult) {
	switch target {
	case types.TargetBoth:
		switch {
		case r.EmailErr == nil && r.ChatErr == nil:
			uc.notifier.Notify(ctx, types.SeveritySuccess, MsgBothSent)
		case r.EmailErr == nil:
			uc.notifier.Notify(ctx, types.SeverityWarning, MsgEmailOnly)
		case r.ChatErr == nil:
			uc.notifier.Notify(ctx, types.SeverityWarning, MsgSlackOnly)
		default:
			uc.notifier.Notify(ctx, types.SeverityError, MsgBothFailed)
		}

	case types.TargetEmail:
		if r.EmailErr == nil {
			uc.notifier.Notify(ctx, types.SeveritySuccess, MsgEmailSent)
		} else {
			uc.notifier.Notify(ctx, types.SeverityError, failureText(r.EmailErr, MsgEmailFailed))
		}

	case types.TargetSlack:
		if r.ChatErr == nil {
			uc.notifier.Notify(ctx, types.SeveritySuccess, MsgSlackSent)
		} else {
			uc.notifier.Notify(ctx, types.SeverityError, failureText(r.ChatErr, MsgSlackFailed))
		}
	}
}

func (uc *CheckinUseCase) acquire(t types.MessageType) bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if uc.inflight[t] {
		return false
	}
	uc.inflight[t] = true
	return true
}

func (uc *CheckinUseCase) release(t types.MessageType) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	delete(uc.inflight, t)
}

// failureText prefers the upstream error string over the generic fallback
func failureText(err error, fallback string) string {
	if s := model.UpstreamMessage(err); s != "" {
		return s
	}
	return fallback
}

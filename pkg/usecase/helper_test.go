package usecase_test

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/secmon-lab/checkin/pkg/domain/interfaces"
	"github.com/secmon-lab/checkin/pkg/domain/model"
	"github.com/secmon-lab/checkin/pkg/repository/memory"
	"github.com/secmon-lab/checkin/pkg/service/storage"
)

type fakeProxy struct {
	mu    sync.Mutex
	posts []*interfaces.PostMessageInput

	postTS  []string
	postErr error

	grant       *model.SlackGrant
	exchangeErr error
	exchanges   atomic.Int32

	identity    *model.SlackIdentity
	identityErr error

	valid     bool
	verifyErr error
}

var _ interfaces.ChatProxy = &fakeProxy{}

func (p *fakeProxy) PostMessage(ctx context.Context, input *interfaces.PostMessageInput) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.posts = append(p.posts, input)
	if p.postErr != nil {
		return "", p.postErr
	}
	if len(p.postTS) == 0 {
		return "1000.0001", nil
	}
	ts := p.postTS[0]
	p.postTS = p.postTS[1:]
	return ts, nil
}

func (p *fakeProxy) ExchangeCode(ctx context.Context, code, redirectURI string) (*model.SlackGrant, error) {
	p.exchanges.Add(1)
	if p.exchangeErr != nil {
		return nil, p.exchangeErr
	}
	return p.grant, nil
}

func (p *fakeProxy) VerifyToken(ctx context.Context, token string) (bool, error) {
	return p.valid, p.verifyErr
}

func (p *fakeProxy) UserIdentity(ctx context.Context, token string) (*model.SlackIdentity, error) {
	if p.identityErr != nil {
		return nil, p.identityErr
	}
	return p.identity, nil
}

func (p *fakeProxy) Posts() []*interfaces.PostMessageInput {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*interfaces.PostMessageInput(nil), p.posts...)
}

type sentMail struct {
	to, subject, body string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
	// block, when set, is waited on before returning
	block   chan struct{}
	entered chan struct{}
}

func (m *fakeMailer) Send(ctx context.Context, to, subject, body string) error {
	if m.entered != nil {
		m.entered <- struct{}{}
	}
	if m.block != nil {
		<-m.block
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

func (m *fakeMailer) Sent() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMail(nil), m.sent...)
}

func newStore() *storage.Store {
	return storage.New(memory.New())
}

func seedSettings(ctx context.Context, store *storage.Store, fn func(s *model.Settings)) {
	s := model.DefaultSettings()
	fn(s)
	store.SaveSettings(ctx, s)
}

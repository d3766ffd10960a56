package usecase

import (
	"context"

	"github.com/secmon-lab/checkin/pkg/domain/types"
	"github.com/secmon-lab/checkin/pkg/service/storage"
)

// ThreadPolicy links a check-out reply to the most recent check-in post.
// The link is a single slot: the latest successful check-in wins and it is
// never expired, so a check-out on a later day still replies to the last
// check-in thread.
type ThreadPolicy struct {
	store *storage.Store
}

// NewThreadPolicy creates a ThreadPolicy backed by store
func NewThreadPolicy(store *storage.Store) *ThreadPolicy {
	return &ThreadPolicy{store: store}
}

// ResolveThreadContext returns the thread ts to reply into, or "" for a top-level post
func (p *ThreadPolicy) ResolveThreadContext(ctx context.Context, msgType types.MessageType) string {
	if msgType != types.MessageTypeCheckOut {
		return ""
	}
	return p.store.ThreadLink(ctx)
}

// RecordThreadResult stores ts as the new link when a check-in post succeeded
func (p *ThreadPolicy) RecordThreadResult(ctx context.Context, msgType types.MessageType, ts string) {
	if msgType != types.MessageTypeCheckIn || ts == "" {
		return
	}
	p.store.SetThreadLink(ctx, ts)
}

// Current returns the stored link without applying policy
func (p *ThreadPolicy) Current(ctx context.Context) string {
	return p.store.ThreadLink(ctx)
}

// Clear forgets the stored link
func (p *ThreadPolicy) Clear(ctx context.Context) bool {
	return p.store.ClearThreadLink(ctx)
}

package usecase_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/checkin/pkg/domain/types"
	"github.com/secmon-lab/checkin/pkg/usecase"
)

func TestThreadPolicy(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	policy := usecase.NewThreadPolicy(store)

	gt.Value(t, policy.ResolveThreadContext(ctx, types.MessageTypeCheckOut)).Equal("")

	policy.RecordThreadResult(ctx, types.MessageTypeCheckIn, "171.5")
	gt.Value(t, policy.ResolveThreadContext(ctx, types.MessageTypeCheckOut)).Equal("171.5")
	gt.Value(t, policy.ResolveThreadContext(ctx, types.MessageTypeCheckIn)).Equal("")

	// check-out results and empty ts never touch the link
	policy.RecordThreadResult(ctx, types.MessageTypeCheckOut, "172.0")
	policy.RecordThreadResult(ctx, types.MessageTypeCheckIn, "")
	gt.Value(t, policy.Current(ctx)).Equal("171.5")

	gt.Bool(t, policy.Clear(ctx)).True()
	gt.Value(t, policy.Current(ctx)).Equal("")
}

func TestCheckOutRepliesToCheckIn(t *testing.T) {
	ctx := context.Background()
	f := newCheckinFixture(t, configured)
	f.proxy.postTS = []string{"171.5", "172.0"}

	_, err := f.uc.Checkin.Send(ctx, usecase.SendInput{
		Type:     types.MessageTypeCheckIn,
		Location: types.LocationOffice,
		Target:   types.TargetSlack,
	})
	gt.NoError(t, err).Required()

	result, err := f.uc.Checkin.Send(ctx, usecase.SendInput{
		Type:     types.MessageTypeCheckOut,
		Location: types.LocationOffice,
		Target:   types.TargetSlack,
	})
	gt.NoError(t, err).Required()
	gt.Value(t, result.ThreadTS).Equal("172.0")

	posts := f.proxy.Posts()
	gt.Array(t, posts).Length(2).Required()
	gt.Value(t, posts[0].ThreadTS).Equal("")
	gt.Value(t, posts[1].ThreadTS).Equal("171.5")
	gt.Value(t, posts[1].Text).Equal("Check-Out Thursday January 1, 2026 at 10:30 AM - From Office")
	gt.Value(t, f.store.ThreadLink(ctx)).Equal("171.5")
}

func TestStaleThreadKept(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	store.SetThreadLink(ctx, "100.0")
	policy := usecase.NewThreadPolicy(store)

	// links do not expire across days
	gt.Value(t, policy.ResolveThreadContext(ctx, types.MessageTypeCheckOut)).Equal("100.0")
}

package safe_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/checkin/pkg/utils/safe"
)

type closer struct {
	closed bool
	err    error
}

func (c *closer) Close() error {
	c.closed = true
	return c.err
}

type brokenWriter struct{}

func (brokenWriter) Write(p []byte) (int, error) { return 0, errors.New("broken pipe") }

func TestClose(t *testing.T) {
	ctx := context.Background()

	c := &closer{}
	safe.Close(ctx, c)
	gt.Bool(t, c.closed).True()

	failing := &closer{err: errors.New("already closed")}
	safe.Close(ctx, failing)
	gt.Bool(t, failing.closed).True()

	safe.Close(ctx, nil)
}

func TestWrite(t *testing.T) {
	ctx := context.Background()

	var buf bytes.Buffer
	safe.Write(ctx, &buf, []byte("hello"))
	gt.Value(t, buf.String()).Equal("hello")

	safe.Write(ctx, brokenWriter{}, []byte("hello"))
	safe.Write(ctx, nil, []byte("hello"))
}

package notify_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/checkin/pkg/domain/types"
	"github.com/secmon-lab/checkin/pkg/service/notify"
)

func TestConsole(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsole(&buf, notify.WithNoColor())

	c.Notify(context.Background(), types.SeveritySuccess, "Sent to both email and Slack!")
	c.Notify(context.Background(), types.SeverityWarning, "Email sent, but Slack failed")

	gt.Value(t, buf.String()).Equal("✔ Sent to both email and Slack!\n! Email sent, but Slack failed\n")
}

func TestRecorder(t *testing.T) {
	var r notify.Recorder
	gt.Value(t, r.Last()).Equal(notify.Entry{})

	r.Notify(context.Background(), types.SeverityError, "Failed to send to both")
	gt.Array(t, r.Entries).Length(1)
	gt.Value(t, r.Last()).Equal(notify.Entry{Severity: types.SeverityError, Message: "Failed to send to both"})
}

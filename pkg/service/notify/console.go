package notify

import (
	"context"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/secmon-lab/checkin/pkg/domain/interfaces"
	"github.com/secmon-lab/checkin/pkg/domain/types"
	"github.com/secmon-lab/checkin/pkg/utils/logging"
)

// Console prints notifications as colored single lines
type Console struct {
	mu      sync.Mutex
	w       io.Writer
	noColor bool
}

var _ interfaces.Notifier = &Console{}

// Option configures Console
type Option func(*Console)

// WithNoColor disables ANSI colors regardless of the terminal
func WithNoColor() Option {
	return func(c *Console) {
		c.noColor = true
	}
}

func NewConsole(w io.Writer, opts ...Option) *Console {
	c := &Console{w: w}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var styles = map[types.Severity]struct {
	mark  string
	attrs []color.Attribute
}{
	types.SeveritySuccess: {"✔", []color.Attribute{color.FgGreen, color.Bold}},
	types.SeverityInfo:    {"•", []color.Attribute{color.FgCyan}},
	types.SeverityWarning: {"!", []color.Attribute{color.FgYellow, color.Bold}},
	types.SeverityError:   {"✘", []color.Attribute{color.FgRed, color.Bold}},
}

func (c *Console) Notify(ctx context.Context, severity types.Severity, msg string) {
	style, ok := styles[severity]
	if !ok {
		style = styles[types.SeverityInfo]
	}

	p := color.New(style.attrs...)
	if c.noColor {
		p.DisableColor()
	} else {
		p.EnableColor()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := p.Fprintf(c.w, "%s %s\n", style.mark, msg); err != nil {
		logging.From(ctx).Warn("Failed to print notification", "error", err)
	}
	logging.From(ctx).Debug("Notified user", "severity", severity, "message", msg)
}

// Recorder keeps notifications in memory
type Recorder struct {
	mu      sync.Mutex
	Entries []Entry
}

// Entry is one recorded notification
type Entry struct {
	Severity types.Severity
	Message  string
}

var _ interfaces.Notifier = &Recorder{}

func (r *Recorder) Notify(ctx context.Context, severity types.Severity, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Entries = append(r.Entries, Entry{Severity: severity, Message: msg})
}

// Last returns the most recent entry, or a zero Entry
func (r *Recorder) Last() Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Entries) == 0 {
		return Entry{}
	}
	return r.Entries[len(r.Entries)-1]
}

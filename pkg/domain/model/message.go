package model

import (
	"strings"
	"time"

	"github.com/secmon-lab/checkin/pkg/domain/types"
)

const subjectTimeLayout = "Monday January 2, 2006 at 3:04 PM"

// Message is a composed check-in or check-out status
type Message struct {
	Type              types.MessageType
	Location          types.Location
	Reason            string
	AdditionalMessage string
	SentAt            time.Time
}

// NewMessage trims free text input and stamps the message with now
func NewMessage(msgType types.MessageType, location types.Location, reason, additional string, now time.Time) *Message {
	return &Message{
		Type:              msgType,
		Location:          location,
		Reason:            strings.TrimSpace(reason),
		AdditionalMessage: strings.TrimSpace(additional),
		SentAt:            now,
	}
}

// Subject is the headline shared by every destination, e.g.
// "Check-In Thursday January 1, 2026 at 10:30 AM - From Home\nReason: Doctor appointment".
// The reason line is only present for Home.
func (m *Message) Subject() string {
	var b strings.Builder
	b.WriteString(m.Type.Label())
	b.WriteString(" ")
	b.WriteString(m.SentAt.Format(subjectTimeLayout))
	b.WriteString(" - From ")
	b.WriteString(m.Location.String())
	if m.Location == types.LocationHome && m.Reason != "" {
		b.WriteString("\nReason: ")
		b.WriteString(m.Reason)
	}
	return b.String()
}

// ChatText is the Slack message body
func (m *Message) ChatText() string {
	if m.AdditionalMessage == "" {
		return m.Subject()
	}
	return m.Subject() + "\n\n" + m.AdditionalMessage
}

// EmailSubject is Subject folded onto a single header line
func (m *Message) EmailSubject() string {
	s := strings.ReplaceAll(m.Subject(), "\r", "")
	return strings.ReplaceAll(s, "\n", " - ")
}

// EmailBody is the plain text email body
func (m *Message) EmailBody() string {
	return m.AdditionalMessage
}

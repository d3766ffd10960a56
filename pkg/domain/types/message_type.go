package types

import "fmt"

// MessageType is the kind of status message being sent
type MessageType string

const (
	MessageTypeCheckIn  MessageType = "check-in"
	MessageTypeCheckOut MessageType = "check-out"
)

// IsValid checks if the message type is known
func (t MessageType) IsValid() bool {
	switch t {
	case MessageTypeCheckIn, MessageTypeCheckOut:
		return true
	default:
		return false
	}
}

// Label returns the human readable prefix used in subjects ("Check-In" / "Check-Out")
func (t MessageType) Label() string {
	if t == MessageTypeCheckIn {
		return "Check-In"
	}
	return "Check-Out"
}

func (t MessageType) String() string {
	return string(t)
}

// ParseMessageType parses a string into a MessageType
func ParseMessageType(s string) (MessageType, error) {
	t := MessageType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid message type: %s", s)
	}
	return t, nil
}

package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/secmon-lab/checkin/pkg/domain/types"
)

// HistoryLimit is the maximum number of entries kept, newest first
const HistoryLimit = 100

// HistoryStatusSuccess is the only status recorded; failed sends are not kept
const HistoryStatusSuccess = "success"

// HistoryEntry is one completed send
type HistoryEntry struct {
	ID                string              `json:"id"`
	Timestamp         time.Time           `json:"timestamp"`
	Type              types.MessageType   `json:"type"`
	Location          types.Location      `json:"location"`
	Reason            string              `json:"reason,omitempty"`
	AdditionalMessage string              `json:"additionalMessage,omitempty"`
	SentTo            []types.Destination `json:"sentTo"`
	Status            string              `json:"status"`
	ChatThreadID      string              `json:"chatThreadId,omitempty"`
}

// NewHistoryID returns a time ordered unique ID
func NewHistoryID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// NewHistoryEntry builds a successful entry for msg
func NewHistoryEntry(msg *Message, sentTo []types.Destination, threadID string) *HistoryEntry {
	return &HistoryEntry{
		ID:                NewHistoryID(),
		Timestamp:         msg.SentAt.UTC(),
		Type:              msg.Type,
		Location:          msg.Location,
		Reason:            msg.Reason,
		AdditionalMessage: msg.AdditionalMessage,
		SentTo:            sentTo,
		Status:            HistoryStatusSuccess,
		ChatThreadID:      threadID,
	}
}

// Sent reports whether the entry went to d
func (e *HistoryEntry) Sent(d types.Destination) bool {
	for _, x := range e.SentTo {
		if x == d {
			return true
		}
	}
	return false
}

// PrependHistory inserts entry at the head and drops entries beyond HistoryLimit
func PrependHistory(history []*HistoryEntry, entry *HistoryEntry) []*HistoryEntry {
	n := len(history) + 1
	if n > HistoryLimit {
		n = HistoryLimit
	}
	result := make([]*HistoryEntry, 0, n)
	result = append(result, entry)
	for _, h := range history {
		if len(result) >= HistoryLimit {
			break
		}
		result = append(result, h)
	}
	return result
}

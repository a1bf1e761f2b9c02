// Package domain contains core concepts of the chat relay.
// This file defines Message and its read-state rules.
// Messages are immutable once created; only the reader set may grow.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message is one persisted chat message inside a conversation.
// Readers holds the users (never the sender) who acknowledged reading it.
type Message struct {
	ID        uuid.UUID
	Sender    UserID
	Body      string
	Readers   []UserID
	CreatedAt time.Time
}

// ReadBy reports whether user acknowledged this message.
func (m Message) ReadBy(user UserID) bool {
	for _, r := range m.Readers {
		if r == user {
			return true
		}
	}
	return false
}

// UnreadFor reports whether the message counts against user's unread total.
// Self-authored messages never do.
func (m Message) UnreadFor(user UserID) bool {
	return m.Sender != user && !m.ReadBy(user)
}

// WithReader returns the reader set extended by user, unchanged if the user
// already read the message or authored it.
func (m Message) WithReader(user UserID) []UserID {
	if user == m.Sender || m.ReadBy(user) {
		return m.Readers
	}
	return append(append([]UserID(nil), m.Readers...), user)
}

// Summary is the latest-message digest of one conversation for one reader.
// Field names follow the contact listing payload of the client protocol.
type Summary struct {
	LatestMessage          *string    `json:"latestMessage"`
	LatestMessageSender    *UserID    `json:"latestMessageSender"`
	LatestMessageUpdatedAt *time.Time `json:"latestMessageUpdatedAt"`
	UnreadCount            int        `json:"unreadCount"`
}

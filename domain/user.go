// Package domain contains core concepts of the chat relay.
// This file defines identities and presence entries.
// No runtime, network, or UI logic should be added here.
package domain

// UserID is the stable identifier of a person. Immutable once assigned.
type UserID string

// ConnectionID identifies one live transport session. It is created on
// connect and destroyed on disconnect; a user may reconnect under a new one.
type ConnectionID string

// OnlineEntry pairs a user with their current connection. The registry holds
// at most one entry per user: a reconnection overwrites the handle.
type OnlineEntry struct {
	UserID       UserID       `json:"userId"`
	ConnectionID ConnectionID `json:"socketId"`
}

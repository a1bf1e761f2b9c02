package domain

import "strings"

// ChatType discriminates the two conversation shapes on the wire.
// The values come from the client protocol and must not change.
type ChatType string

const (
	ChatTypeUser ChatType = "user"
	ChatTypeRoom ChatType = "room"
)

type RoomID string

// Conversation is an addressable thread: either the unordered pair of two
// users or a named room.
type Conversation struct {
	Type ChatType
	Room RoomID
	// Peers holds the two participants of a direct conversation, sorted.
	Peers [2]UserID
}

// DirectConversation builds a direct conversation. The pair is unordered:
// (a, b) and (b, a) address the same thread.
func DirectConversation(a, b UserID) Conversation {
	if b < a {
		a, b = b, a
	}
	return Conversation{Type: ChatTypeUser, Peers: [2]UserID{a, b}}
}

func RoomConversation(room RoomID) Conversation {
	return Conversation{Type: ChatTypeRoom, Room: room}
}

// ConversationFor resolves the wire addressing (type + sender + receiver)
// into a conversation. For rooms the receiver field carries the room id.
func ConversationFor(chatType ChatType, sender, receiver UserID) Conversation {
	if chatType == ChatTypeRoom {
		return RoomConversation(RoomID(receiver))
	}
	return DirectConversation(sender, receiver)
}

// Key returns the stable storage key of the conversation, usable as a
// lexicographic prefix.
func (c Conversation) Key() string {
	if c.Type == ChatTypeRoom {
		return "r:" + string(c.Room)
	}
	return "u:" + string(c.Peers[0]) + "|" + string(c.Peers[1])
}

func (c Conversation) String() string {
	if c.Type == ChatTypeRoom {
		return "room " + string(c.Room)
	}
	return strings.Join([]string{string(c.Peers[0]), string(c.Peers[1])}, "<->")
}

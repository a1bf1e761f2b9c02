// Package event defines the wire-level events exchanged with chat clients.
//
// Event identifiers and payload field names are part of the client protocol
// and must be preserved exactly; renaming any of them breaks deployed
// frontends.
package event

import (
	"encoding/json"

	"chat-relay/domain"
)

// Inbound event identifiers.
const (
	UserOnline           = "USER_ONLINE"
	UserOffline          = "USER_OFFLINE"
	SendMessage          = "SEND_MESSAGE"
	UpdateMessageStatus  = "UPDATE_MESSAGE_STATUS"
	UpdateMessageReaders = "UPDATE_MESSAGE_READERS"
	UserTyping           = "USER_TYPING"
	EnterChatRoom        = "ENTER_CHAT_ROOM"
	LeaveChatRoom        = "LEAVE_CHAT_ROOM"
	RoomCreated          = "ROOM_CREATED"
)

// Outbound event identifiers.
const (
	OnlineUserChanged = "ONLINE_USER_CHANGED"
	ReceiveMessage    = "RECEIVE_MESSAGE"
	MessageRead       = "MESSAGE_READ"
	TypingNotify      = "TYPING_NOTIFY"
	ChatRoomNotify    = "CHAT_ROOM_NOTIFY"
	InvitedToRoom     = "INVITED_TO_ROOM"
)

// Envelope frames every websocket message in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Outbound pairs an event identifier with its payload, ready for framing.
type Outbound struct {
	Event string
	Data  any
}

type OnlinePayload struct {
	UserID   domain.UserID `json:"userId" validate:"required"`
	SocketID string        `json:"socketId"`
}

type OfflinePayload struct {
	UserID domain.UserID `json:"userId" validate:"required"`
}

type MessagePayload struct {
	Type     domain.ChatType `json:"type" validate:"required,oneof=user room"`
	Sender   domain.UserID   `json:"sender" validate:"required"`
	Receiver domain.UserID   `json:"receiver" validate:"required"`
	Message  string          `json:"message"`
}

// ReceiveMessagePayload is the inbound message payload echoed back to the
// receiving side, enriched with the receiver's unread total. UnreadCount is
// a pointer so a degraded (store unavailable) delivery can omit it instead
// of reporting a wrong zero.
type ReceiveMessagePayload struct {
	MessagePayload
	UnreadCount *int `json:"unreadCount,omitempty"`
}

type MessageStatusPayload struct {
	Type          domain.ChatType `json:"type" validate:"required,oneof=user room"`
	ReaderID      domain.UserID   `json:"readerId" validate:"required"`
	MessageSender domain.UserID   `json:"messageSender" validate:"required"`
}

type MessageReadersPayload struct {
	Type     domain.ChatType `json:"type" validate:"required,oneof=user room"`
	ReaderID domain.UserID   `json:"readerId" validate:"required"`
	ToID     domain.UserID   `json:"toId" validate:"required"`
}

type TypingPayload struct {
	ChatType   domain.ChatType `json:"chatType" validate:"required,oneof=user room"`
	SenderID   domain.UserID   `json:"senderId" validate:"required"`
	ReceiverID domain.UserID   `json:"receiverId" validate:"required"`
	Typing     bool            `json:"typing"`
	Message    string          `json:"message"`
}

type RoomPayload struct {
	RoomID  domain.RoomID `json:"roomId" validate:"required"`
	Message string        `json:"message"`
}

type RoomCreatedPayload struct {
	Name        string          `json:"name" validate:"required"`
	Creator     string          `json:"creator" validate:"required"`
	InvitedUser []domain.UserID `json:"invitedUser" validate:"required"`
}

type InvitedPayload struct {
	Message string `json:"message"`
}

//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"chat-relay/domain"
	"chat-relay/domain/event"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// Emitter is the transport boundary the relay pushes outbound events
// through. Delivery is fire-and-forget: an unreachable target is dropped
// silently, never retried.
type Emitter interface {
	// Broadcast fans the event out to every live connection.
	Broadcast(evt event.Outbound)
	// Send delivers the event to each listed connection.
	Send(targets []domain.ConnectionID, evt event.Outbound)
}

// IRegistry is the shared presence and room-membership state. Both maps
// live behind a single lock so read-modify-write sequences (first
// appearance, implicit leave-then-join, disconnect teardown) stay atomic.
type IRegistry interface {
	MarkOnline(user domain.UserID, conn domain.ConnectionID) (announced bool)
	MarkOffline(user domain.UserID) (existed bool)
	Lookup(user domain.UserID) (domain.ConnectionID, bool)
	Snapshot() []domain.OnlineEntry
	JoinRoom(conn domain.ConnectionID, room domain.RoomID) (previous domain.RoomID, joined bool)
	LeaveRoom(conn domain.ConnectionID, room domain.RoomID) (left bool)
	RoomScope(room domain.RoomID) []domain.ConnectionID
	DropConnection(conn domain.ConnectionID) (user domain.UserID, hadUser bool, room domain.RoomID, hadRoom bool)
}

// IMessageStore is the gateway to persisted messages and reader markers.
// Calls may block on I/O; they must never be made under the registry lock.
type IMessageStore interface {
	FindMessages(conv domain.Conversation, excludeSender *domain.UserID) ([]domain.Message, error)
	CreateMessage(conv domain.Conversation, sender domain.UserID, body string) (domain.Message, error)
	UpdateReaderSet(conv domain.Conversation, messageID string, readers []domain.UserID) (domain.Message, error)
}

// IDirectory is the persisted user and room directory.
type IDirectory interface {
	SaveUser(profile domain.Profile) error
	FindUserAvatar(user domain.UserID) (string, error)
	ListUsers(exclude domain.UserID) ([]domain.Profile, error)
	SaveRoom(room domain.Room) error
	GetRoom(id domain.RoomID) (domain.Room, error)
	ListRoomsFor(user domain.UserID) ([]domain.Room, error)
}

// ISummaries computes unread counts and latest-message digests. The REST
// contact listing and the relay's message path share this single logic.
type ISummaries interface {
	ComputeSummary(conv domain.Conversation, user domain.UserID) (domain.Summary, error)
}

package runtime

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/errors"
)

// Relay is the entry point for inbound real-time events. It consults and
// updates the registry, asks the summaries service for unread enrichment,
// resolves targets through the router, and pushes outbound events through
// the emitter.
//
// Relay methods are safe for concurrent use: each connection's read loop
// calls Handle synchronously, which preserves per-connection ordering, and
// all shared state lives behind the registry's lock. A failure while
// handling one event is isolated to that event.
type Relay struct {
	log       *slog.Logger
	registry  contract.IRegistry
	router    *Router
	summaries contract.ISummaries
	emitter   contract.Emitter
	validate  *validator.Validate
}

func NewRelay(log *slog.Logger, registry contract.IRegistry, router *Router,
	summaries contract.ISummaries, emitter contract.Emitter) *Relay {
	return &Relay{
		log:       log,
		registry:  registry,
		router:    router,
		summaries: summaries,
		emitter:   emitter,
		validate:  validator.New(),
	}
}

// Handle dispatches one inbound envelope for the given connection. Unknown
// events and malformed payloads are dropped without touching any state.
func (r *Relay) Handle(conn domain.ConnectionID, env event.Envelope) error {
	switch env.Event {
	case event.UserOnline:
		return handle(r, conn, env.Data, r.userOnline)
	case event.UserOffline:
		return handle(r, conn, env.Data, r.userOffline)
	case event.SendMessage:
		return handle(r, conn, env.Data, r.sendMessage)
	case event.UpdateMessageStatus:
		return handle(r, conn, env.Data, r.updateMessageStatus)
	case event.UpdateMessageReaders:
		return handle(r, conn, env.Data, r.updateMessageReaders)
	case event.UserTyping:
		return handle(r, conn, env.Data, r.userTyping)
	case event.EnterChatRoom:
		return handle(r, conn, env.Data, r.enterChatRoom)
	case event.LeaveChatRoom:
		return handle(r, conn, env.Data, r.leaveChatRoom)
	case event.RoomCreated:
		return handle(r, conn, env.Data, r.roomCreated)
	default:
		r.log.Debug("Unknown inbound event dropped", "event", env.Event)
		return nil
	}
}

// handle decodes and validates the payload before invoking the typed
// handler. Validation happens before any state mutation.
func handle[P any](r *Relay, conn domain.ConnectionID, data json.RawMessage,
	fn func(domain.ConnectionID, P) error) error {
	var payload P
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrValidation, err)
	}
	if err := r.validate.Struct(&payload); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrValidation, err)
	}
	return fn(conn, payload)
}

// userOnline records presence. Only a first appearance is announced:
// a reconnection under a new handle swaps the connection silently.
func (r *Relay) userOnline(conn domain.ConnectionID, p event.OnlinePayload) error {
	if r.registry.MarkOnline(p.UserID, conn) {
		r.broadcastPresence()
	}
	return nil
}

func (r *Relay) userOffline(_ domain.ConnectionID, p event.OfflinePayload) error {
	if r.registry.MarkOffline(p.UserID) {
		r.broadcastPresence()
	}
	return nil
}

// sendMessage routes a just-persisted message to its live targets, enriched
// with the receiving side's unread total. The message itself was already
// persisted by the request-driven path; delivery here is best-effort, so a
// store failure only degrades the payload (unreadCount omitted) instead of
// blocking the notification.
func (r *Relay) sendMessage(conn domain.ConnectionID, p event.MessagePayload) error {
	targets := r.router.Resolve(conn, Address(p.Type, p.Receiver))
	if len(targets) == 0 {
		return nil
	}

	out := event.ReceiveMessagePayload{MessagePayload: p}
	conv := domain.ConversationFor(p.Type, p.Sender, p.Receiver)
	summary, err := r.summaries.ComputeSummary(conv, p.Receiver)
	if err != nil {
		r.log.Warn("Delivering without unread enrichment", "conversation", conv.String(), "error", err)
	} else {
		out.UnreadCount = &summary.UnreadCount
	}

	r.emitter.Send(targets, event.Outbound{Event: event.ReceiveMessage, Data: out})
	return nil
}

// updateMessageStatus notifies the original sender that a reader
// acknowledged their message. For rooms the messageSender field carries the
// room id and the notification fans out to the room scope.
func (r *Relay) updateMessageStatus(conn domain.ConnectionID, p event.MessageStatusPayload) error {
	targets := r.router.Resolve(conn, Address(p.Type, p.MessageSender))
	r.emitter.Send(targets, event.Outbound{Event: event.MessageRead, Data: p})
	return nil
}

func (r *Relay) updateMessageReaders(conn domain.ConnectionID, p event.MessageReadersPayload) error {
	targets := r.router.Resolve(conn, Address(p.Type, p.ToID))
	r.emitter.Send(targets, event.Outbound{Event: event.MessageRead, Data: p})
	return nil
}

func (r *Relay) userTyping(conn domain.ConnectionID, p event.TypingPayload) error {
	targets := r.router.Resolve(conn, Address(p.ChatType, p.ReceiverID))
	r.emitter.Send(targets, event.Outbound{Event: event.TypingNotify, Data: p})
	return nil
}

// enterChatRoom joins the connection to the room, leaving any previous room
// first. The members the connection left behind are notified before the new
// room is; both membership changes happen in one registry critical section.
func (r *Relay) enterChatRoom(conn domain.ConnectionID, p event.RoomPayload) error {
	previous, joined := r.registry.JoinRoom(conn, p.RoomID)
	if !joined {
		return nil
	}
	if previous != "" {
		r.notifyRoom(conn, previous, "")
	}
	r.notifyRoom(conn, p.RoomID, p.Message)
	return nil
}

func (r *Relay) leaveChatRoom(conn domain.ConnectionID, p event.RoomPayload) error {
	if !r.registry.LeaveRoom(conn, p.RoomID) {
		return nil
	}
	r.notifyRoom(conn, p.RoomID, p.Message)
	return nil
}

// roomCreated invites each listed user that is currently online. Offline
// invitees are skipped; they discover the room through the contact listing.
func (r *Relay) roomCreated(_ domain.ConnectionID, p event.RoomCreatedPayload) error {
	invite := event.InvitedPayload{
		Message: fmt.Sprintf("%s has added you to %s chat room", p.Creator, p.Name),
	}
	for _, user := range p.InvitedUser {
		target, ok := r.registry.Lookup(user)
		if !ok {
			continue
		}
		r.emitter.Send([]domain.ConnectionID{target},
			event.Outbound{Event: event.InvitedToRoom, Data: invite})
	}
	return nil
}

// ConnectionClosed tears down both registry entries for a dying connection
// atomically and announces the presence change when a user entry was
// dropped. The transport calls this for every closed socket, whether or not
// a USER_OFFLINE event was seen first.
func (r *Relay) ConnectionClosed(conn domain.ConnectionID) {
	_, hadUser, _, _ := r.registry.DropConnection(conn)
	if hadUser {
		r.broadcastPresence()
	}
}

func (r *Relay) broadcastPresence() {
	r.emitter.Broadcast(event.Outbound{
		Event: event.OnlineUserChanged,
		Data:  r.registry.Snapshot(),
	})
}

func (r *Relay) notifyRoom(origin domain.ConnectionID, room domain.RoomID, message string) {
	targets := r.router.Resolve(origin, ToRoom(room))
	r.emitter.Send(targets, event.Outbound{
		Event: event.ChatRoomNotify,
		Data:  event.RoomPayload{RoomID: room, Message: message},
	})
}

package runtime

import (
	"chat-relay/contract"
	"chat-relay/domain"
)

// Addressing names the destination of one outbound event: a specific user
// or a room scope.
type Addressing struct {
	chatType domain.ChatType
	user     domain.UserID
	room     domain.RoomID
}

func ToUser(user domain.UserID) Addressing {
	return Addressing{chatType: domain.ChatTypeUser, user: user}
}

func ToRoom(room domain.RoomID) Addressing {
	return Addressing{chatType: domain.ChatTypeRoom, room: room}
}

// Address resolves wire addressing where the receiver field carries either
// a user id or a room id depending on the chat type.
func Address(chatType domain.ChatType, receiver domain.UserID) Addressing {
	if chatType == domain.ChatTypeRoom {
		return ToRoom(domain.RoomID(receiver))
	}
	return ToUser(receiver)
}

// Router decides which live connections an event targets. It is a pure
// function of the registry's current state: no persistence, no retries.
type Router struct {
	registry contract.IRegistry
}

func NewRouter(registry contract.IRegistry) *Router {
	return &Router{registry: registry}
}

// Resolve returns the target connections for the addressing. A direct
// target that is offline resolves to an empty list; a room scope always
// excludes the originating connection.
func (r *Router) Resolve(origin domain.ConnectionID, a Addressing) []domain.ConnectionID {
	if a.chatType == domain.ChatTypeRoom {
		scope := r.registry.RoomScope(a.room)
		targets := scope[:0:0]
		for _, conn := range scope {
			if conn != origin {
				targets = append(targets, conn)
			}
		}
		return targets
	}

	conn, ok := r.registry.Lookup(a.user)
	if !ok {
		return nil
	}
	return []domain.ConnectionID{conn}
}

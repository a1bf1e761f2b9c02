// Package runtime owns the live-connection state and the event relay.
// It routes and orchestrates; business rules about messages live in domain
// and services.
package runtime

import (
	"sort"
	"sync"

	"chat-relay/domain"
)

type Set map[domain.ConnectionID]struct{}

// Registry is the single source of truth for "who is reachable and where".
// It holds two maps under one mutex:
//
//  1. online: user -> current connection (last writer wins, one entry per user)
//  2. activeRoom / roomConns: connection -> its single active room, plus the
//     reverse index used to fan room events out.
//
// Both maps share the lock on purpose. First-appearance detection and the
// implicit leave-then-join sequence are read-modify-write and must not
// interleave with a concurrent connect or join for the same user/connection.
type Registry struct {
	mu         sync.RWMutex
	online     map[domain.UserID]domain.ConnectionID
	activeRoom map[domain.ConnectionID]domain.RoomID
	roomConns  map[domain.RoomID]Set
}

func NewRegistry() *Registry {
	return &Registry{
		online:     make(map[domain.UserID]domain.ConnectionID),
		activeRoom: make(map[domain.ConnectionID]domain.RoomID),
		roomConns:  make(map[domain.RoomID]Set),
	}
}

// MarkOnline records the user's connection. It returns true only on first
// appearance: that is the only case the caller announces to everyone.
// A reconnection under a different handle overwrites silently, and an
// identical handle is a no-op.
func (r *Registry) MarkOnline(user domain.UserID, conn domain.ConnectionID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, existed := r.online[user]
	if existed && prev == conn {
		return false
	}
	r.online[user] = conn
	return !existed
}

// MarkOffline removes the user's entry. It returns whether an entry existed;
// the caller suppresses the presence broadcast when it did not.
func (r *Registry) MarkOffline(user domain.UserID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.online[user]; !ok {
		return false
	}
	delete(r.online, user)
	return true
}

// Lookup resolves the user's current connection. Read-only, never blocks.
func (r *Registry) Lookup(user domain.UserID) (domain.ConnectionID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.online[user]
	return conn, ok
}

// Snapshot returns all online entries sorted by user id, so broadcast
// payloads are deterministic regardless of map iteration order.
func (r *Registry) Snapshot() []domain.OnlineEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]domain.OnlineEntry, 0, len(r.online))
	for user, conn := range r.online {
		entries = append(entries, domain.OnlineEntry{UserID: user, ConnectionID: conn})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].UserID < entries[j].UserID })
	return entries
}

// JoinRoom subscribes the connection to room, enforcing at most one active
// room per connection. When the connection was in a different room, that
// room is left in the same critical section and returned so the caller can
// notify its remaining members. A re-join of the current room is a no-op
// (joined=false).
func (r *Registry) JoinRoom(conn domain.ConnectionID, room domain.RoomID) (domain.RoomID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	previous, inRoom := r.activeRoom[conn]
	if inRoom && previous == room {
		return "", false
	}
	if inRoom {
		r.removeFromRoom(conn, previous)
	} else {
		previous = ""
	}

	r.activeRoom[conn] = room
	if _, ok := r.roomConns[room]; !ok {
		r.roomConns[room] = make(Set)
	}
	r.roomConns[room][conn] = struct{}{}
	return previous, true
}

// LeaveRoom clears the connection's active room iff it equals room.
// Leaving a room the connection is not in is a no-op.
func (r *Registry) LeaveRoom(conn domain.ConnectionID, room domain.RoomID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.activeRoom[conn]
	if !ok || current != room {
		return false
	}
	delete(r.activeRoom, conn)
	r.removeFromRoom(conn, room)
	return true
}

// RoomScope lists the connections currently subscribed to room.
func (r *Registry) RoomScope(room domain.RoomID) []domain.ConnectionID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.roomConns[room]
	if !ok {
		return nil
	}
	conns := make([]domain.ConnectionID, 0, len(members))
	for conn := range members {
		conns = append(conns, conn)
	}
	sort.Slice(conns, func(i, j int) bool { return conns[i] < conns[j] })
	return conns
}

// DropConnection tears down everything the registry knows about a dying
// connection in one critical section, so no event can be routed to a stale
// handle between the presence removal and the room removal.
func (r *Registry) DropConnection(conn domain.ConnectionID) (domain.UserID, bool, domain.RoomID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var user domain.UserID
	var hadUser bool
	for u, c := range r.online {
		if c == conn {
			user, hadUser = u, true
			delete(r.online, u)
			break
		}
	}

	room, hadRoom := r.activeRoom[conn]
	if hadRoom {
		delete(r.activeRoom, conn)
		r.removeFromRoom(conn, room)
	}
	return user, hadUser, room, hadRoom
}

// removeFromRoom must be called with the write lock held. Empty sets are
// removed entirely to prevent the room map from leaking over time.
func (r *Registry) removeFromRoom(conn domain.ConnectionID, room domain.RoomID) {
	members, ok := r.roomConns[room]
	if !ok {
		return
	}
	delete(members, conn)
	if len(members) == 0 {
		delete(r.roomConns, room)
	}
}

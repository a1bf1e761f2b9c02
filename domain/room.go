package domain

// Room is a persistent named group owned by the store. Membership is part of
// the persisted entity; which connection is currently subscribed to the room
// scope is tracked separately by the runtime registry.
type Room struct {
	ID          RoomID
	Name        string
	Members     []UserID
	AvatarImage string
}

// HasMember reports whether user belongs to the room.
func (r Room) HasMember(user UserID) bool {
	for _, m := range r.Members {
		if m == user {
			return true
		}
	}
	return false
}

// Profile is a user directory entry. AvatarImage is an opaque blob
// (base64 in the reference client).
type Profile struct {
	ID          UserID
	Name        string
	AvatarImage string
}

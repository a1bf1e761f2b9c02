package runtime

import (
	"testing"

	"github.com/stretchr/testify/require"

	"chat-relay/domain"
)

func TestRouter_Direct_Online(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	router := NewRouter(registry)

	registry.MarkOnline("bob", "conn-bob")

	targets := router.Resolve("conn-alice", ToUser("bob"))
	req.Equal([]domain.ConnectionID{"conn-bob"}, targets)
}

func TestRouter_Direct_Offline_Resolves_Empty(t *testing.T) {
	req := require.New(t)
	router := NewRouter(NewRegistry())

	// An offline counterpart is not an error, just nobody to deliver to
	targets := router.Resolve("conn-alice", ToUser("bob"))
	req.Empty(targets)
}

func TestRouter_Room_Excludes_Origin(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	router := NewRouter(registry)

	registry.JoinRoom("conn-a", "lobby")
	registry.JoinRoom("conn-b", "lobby")
	registry.JoinRoom("conn-c", "lobby")

	targets := router.Resolve("conn-a", ToRoom("lobby"))
	req.ElementsMatch([]domain.ConnectionID{"conn-b", "conn-c"}, targets)
}

func TestRouter_Room_Empty_Scope(t *testing.T) {
	req := require.New(t)
	router := NewRouter(NewRegistry())

	req.Empty(router.Resolve("conn-a", ToRoom("ghost-town")))
}

func TestRouter_Address_Maps_ChatType(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	router := NewRouter(registry)

	registry.MarkOnline("bob", "conn-bob")
	registry.JoinRoom("conn-a", "lobby")
	registry.JoinRoom("conn-b", "lobby")

	// The receiver field carries a user id for direct chats
	req.Equal([]domain.ConnectionID{"conn-bob"},
		router.Resolve("conn-x", Address(domain.ChatTypeUser, "bob")))
	// and a room id for room chats
	req.ElementsMatch([]domain.ConnectionID{"conn-a", "conn-b"},
		router.Resolve("conn-x", Address(domain.ChatTypeRoom, "lobby")))
}

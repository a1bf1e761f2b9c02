package repositories

import (
	"log/slog"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"chat-relay/domain"
	"chat-relay/errors"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func Test_Create_And_Find_Messages_In_Creation_Order(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default())
	conv := domain.DirectConversation("alice", "bob")

	for _, body := range []string{"first", "second", "third"} {
		_, err := repository.CreateMessage(conv, "alice", body)
		req.NoError(err)
	}

	messages, err := repository.FindMessages(conv, nil)
	req.NoError(err)
	req.Equal([]string{"first", "second", "third"},
		lo.Map(messages, func(m domain.Message, _ int) string { return m.Body }))

	// A fresh message starts with an empty reader set
	for _, m := range messages {
		req.Empty(m.Readers)
	}
}

func Test_Find_Messages_Excluding_Sender(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default())
	conv := domain.DirectConversation("alice", "bob")

	_, err := repository.CreateMessage(conv, "alice", "from alice")
	req.NoError(err)
	_, err = repository.CreateMessage(conv, "bob", "from bob")
	req.NoError(err)

	messages, err := repository.FindMessages(conv, lo.ToPtr(domain.UserID("alice")))
	req.NoError(err)
	req.Len(messages, 1)
	req.Equal(domain.UserID("bob"), messages[0].Sender)
}

func Test_Conversations_Are_Isolated(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default())

	direct := domain.DirectConversation("alice", "bob")
	room := domain.RoomConversation("lobby")

	_, err := repository.CreateMessage(direct, "alice", "private")
	req.NoError(err)
	_, err = repository.CreateMessage(room, "alice", "public")
	req.NoError(err)

	directMessages, err := repository.FindMessages(direct, nil)
	req.NoError(err)
	req.Len(directMessages, 1)
	req.Equal("private", directMessages[0].Body)

	roomMessages, err := repository.FindMessages(room, nil)
	req.NoError(err)
	req.Len(roomMessages, 1)
	req.Equal("public", roomMessages[0].Body)
}

func Test_Direct_Conversation_Is_Unordered(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default())

	_, err := repository.CreateMessage(domain.DirectConversation("alice", "bob"), "alice", "hi")
	req.NoError(err)

	// The reversed pair addresses the same thread
	messages, err := repository.FindMessages(domain.DirectConversation("bob", "alice"), nil)
	req.NoError(err)
	req.Len(messages, 1)
}

func Test_Update_Reader_Set(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default())
	conv := domain.DirectConversation("alice", "bob")

	msg, err := repository.CreateMessage(conv, "alice", "read me")
	req.NoError(err)

	updated, err := repository.UpdateReaderSet(conv, msg.ID.String(), []domain.UserID{"bob"})
	req.NoError(err)
	req.Equal([]domain.UserID{"bob"}, updated.Readers)

	// The mutation is persisted, not just returned
	messages, err := repository.FindMessages(conv, nil)
	req.NoError(err)
	req.Len(messages, 1)
	req.True(messages[0].ReadBy("bob"))
}

func Test_Update_Reader_Set_Unknown_Message(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default())
	conv := domain.DirectConversation("alice", "bob")

	_, err := repository.UpdateReaderSet(conv, "no-such-id", []domain.UserID{"bob"})
	req.ErrorIs(err, errors.ErrNotFound)
}

package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"chat-relay/domain"
	"chat-relay/errors"
)

// fakeStore is an in-memory message store shared by the service tests.
type fakeStore struct {
	messages    map[string][]domain.Message
	unavailable bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{messages: map[string][]domain.Message{}}
}

func (s *fakeStore) add(conv domain.Conversation, sender domain.UserID, body string, readers ...domain.UserID) domain.Message {
	msg := domain.Message{
		ID:        uuid.New(),
		Sender:    sender,
		Body:      body,
		Readers:   append([]domain.UserID{}, readers...),
		CreatedAt: time.Now().UTC().Add(time.Duration(len(s.messages[conv.Key()])) * time.Second),
	}
	s.messages[conv.Key()] = append(s.messages[conv.Key()], msg)
	return msg
}

func (s *fakeStore) FindMessages(conv domain.Conversation, excludeSender *domain.UserID) ([]domain.Message, error) {
	if s.unavailable {
		return nil, errors.ErrStoreUnavailable
	}
	var out []domain.Message
	for _, msg := range s.messages[conv.Key()] {
		if excludeSender != nil && msg.Sender == *excludeSender {
			continue
		}
		out = append(out, msg)
	}
	return out, nil
}

func (s *fakeStore) CreateMessage(conv domain.Conversation, sender domain.UserID, body string) (domain.Message, error) {
	if s.unavailable {
		return domain.Message{}, errors.ErrStoreUnavailable
	}
	return s.add(conv, sender, body), nil
}

func (s *fakeStore) UpdateReaderSet(conv domain.Conversation, messageID string, readers []domain.UserID) (domain.Message, error) {
	if s.unavailable {
		return domain.Message{}, errors.ErrStoreUnavailable
	}
	msgs := s.messages[conv.Key()]
	for i, msg := range msgs {
		if msg.ID.String() == messageID {
			msgs[i].Readers = readers
			return msgs[i], nil
		}
	}
	return domain.Message{}, errors.ErrNotFound
}

func TestComputeSummary_Counts_Unread_From_Counterpart(t *testing.T) {
	req := require.New(t)
	store := newFakeStore()
	conv := domain.DirectConversation("alice", "bob")

	// Given three unread messages from alice and none from bob
	store.add(conv, "alice", "one")
	store.add(conv, "alice", "two")
	store.add(conv, "alice", "three")

	summary, err := NewSummaryService(store).ComputeSummary(conv, "bob")
	req.NoError(err)
	req.Equal(3, summary.UnreadCount)
	req.Equal("three", *summary.LatestMessage)
	req.Equal(domain.UserID("alice"), *summary.LatestMessageSender)
}

func TestComputeSummary_Read_Messages_Do_Not_Count(t *testing.T) {
	req := require.New(t)
	store := newFakeStore()
	conv := domain.DirectConversation("alice", "bob")

	store.add(conv, "alice", "one", "bob")
	store.add(conv, "alice", "two", "bob")

	summary, err := NewSummaryService(store).ComputeSummary(conv, "bob")
	req.NoError(err)
	req.Zero(summary.UnreadCount)
}

func TestComputeSummary_Never_Counts_Own_Messages(t *testing.T) {
	req := require.New(t)
	store := newFakeStore()
	conv := domain.DirectConversation("alice", "bob")

	// bob's own unacknowledged messages are not unread for bob
	store.add(conv, "bob", "mine")
	store.add(conv, "bob", "also mine")
	store.add(conv, "alice", "hers")

	summary, err := NewSummaryService(store).ComputeSummary(conv, "bob")
	req.NoError(err)
	req.Equal(1, summary.UnreadCount)

	// The latest fields ignore sender and read state entirely
	req.Equal("hers", *summary.LatestMessage)
}

func TestComputeSummary_Empty_Conversation(t *testing.T) {
	req := require.New(t)
	summary, err := NewSummaryService(newFakeStore()).ComputeSummary(
		domain.DirectConversation("alice", "bob"), "bob")
	req.NoError(err)
	req.Zero(summary.UnreadCount)
	req.Nil(summary.LatestMessage)
	req.Nil(summary.LatestMessageSender)
	req.Nil(summary.LatestMessageUpdatedAt)
}

func TestComputeSummary_Store_Unavailable(t *testing.T) {
	req := require.New(t)
	store := newFakeStore()
	store.unavailable = true

	_, err := NewSummaryService(store).ComputeSummary(
		domain.DirectConversation("alice", "bob"), "bob")
	req.ErrorIs(err, errors.ErrStoreUnavailable)
}

//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"chat-relay/domain"
	"chat-relay/errors"
)

// MessageRepository persists messages and their reader sets in BadgerDB.
// It is the only component allowed to mutate persisted chat state; the
// real-time relay only reads through it.
type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) MessageRepository {
	return MessageRepository{db: db, log: log}
}

// diskMessage is the stored representation of one message.
type diskMessage struct {
	ID      uuid.UUID       `json:"id"`
	Sender  domain.UserID   `json:"sender"`
	Body    string          `json:"body"`
	Readers []domain.UserID `json:"readers"`
	At      time.Time       `json:"at"`
}

// messageKey builds "msg:{conversation}:{timestamp_padded}:{uuid}".
// The 19-digit zero padding keeps lexicographic key order equal to
// chronological order; the UUID suffix disambiguates two messages created
// in the same nanosecond.
func messageKey(conv domain.Conversation, at time.Time, id uuid.UUID) []byte {
	return []byte(fmt.Sprintf("msg:%s:%019d:%s", conv.Key(), at.UnixNano(), id))
}

func messagePrefix(conv domain.Conversation) []byte {
	return []byte(fmt.Sprintf("msg:%s:", conv.Key()))
}

// CreateMessage persists a new message with an empty reader set.
func (m MessageRepository) CreateMessage(conv domain.Conversation, sender domain.UserID, body string) (domain.Message, error) {
	dm := diskMessage{
		ID:      uuid.New(),
		Sender:  sender,
		Body:    body,
		Readers: []domain.UserID{},
		At:      time.Now().UTC(),
	}
	bytes, err := json.Marshal(dm)
	if err != nil {
		return domain.Message{}, err
	}
	err = m.db.Update(func(txn *badger.Txn) error {
		return txn.Set(messageKey(conv, dm.At, dm.ID), bytes)
	})
	if err != nil {
		return domain.Message{}, fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}
	return toMessage(dm), nil
}

// FindMessages returns the conversation's messages in creation order
// (oldest first). Lexicographic iteration over the padded keys gives the
// chronological order for free. When excludeSender is set, messages
// authored by that user are filtered out.
func (m MessageRepository) FindMessages(conv domain.Conversation, excludeSender *domain.UserID) ([]domain.Message, error) {
	var raw [][]byte
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := messagePrefix(conv)
		options := badger.DefaultIteratorOptions
		options.Prefix = prefix
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(value []byte) error {
				raw = append(raw, append([]byte(nil), value...))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}

	var messages []domain.Message
	for _, b := range raw {
		var dm diskMessage
		if err = json.Unmarshal(b, &dm); err != nil {
			return nil, err
		}
		if excludeSender != nil && dm.Sender == *excludeSender {
			continue
		}
		messages = append(messages, toMessage(dm))
	}
	return messages, nil
}

// UpdateReaderSet replaces the reader set of one message. The message is
// located by scanning the conversation prefix; conversations are small
// enough that a secondary index is not worth its upkeep.
func (m MessageRepository) UpdateReaderSet(conv domain.Conversation, messageID string, readers []domain.UserID) (domain.Message, error) {
	var updated *diskMessage
	err := m.db.Update(func(txn *badger.Txn) error {
		prefix := messagePrefix(conv)
		options := badger.DefaultIteratorOptions
		options.Prefix = prefix
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			var dm diskMessage
			err := item.Value(func(value []byte) error {
				return json.Unmarshal(value, &dm)
			})
			if err != nil {
				return err
			}
			if dm.ID.String() != messageID {
				continue
			}
			dm.Readers = readers
			bytes, err := json.Marshal(dm)
			if err != nil {
				return err
			}
			updated = &dm
			return txn.Set(append([]byte(nil), item.Key()...), bytes)
		}
		return errors.ErrNotFound
	})
	if err != nil {
		if err == errors.ErrNotFound {
			return domain.Message{}, err
		}
		return domain.Message{}, fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}
	return toMessage(*updated), nil
}

func toMessage(dm diskMessage) domain.Message {
	return domain.Message{
		ID:        dm.ID,
		Sender:    dm.Sender,
		Body:      dm.Body,
		Readers:   lo.Ternary(dm.Readers != nil, dm.Readers, []domain.UserID{}),
		CreatedAt: dm.At,
	}
}

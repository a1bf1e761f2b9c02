package services

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/errors"
)

// Contact is one entry of the contact listing: another user or a room the
// requesting user belongs to, enriched with the conversation digest.
type Contact struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	AvatarImage string          `json:"avatarImage"`
	ChatType    domain.ChatType `json:"chatType"`
	Users       []domain.UserID `json:"users,omitempty"`
	domain.Summary
}

// MessageView is one conversation message joined with its sender's avatar.
type MessageView struct {
	ID          string          `json:"id"`
	Message     string          `json:"message"`
	Sender      domain.UserID   `json:"sender"`
	Readers     []domain.UserID `json:"readers"`
	CreatedAt   time.Time       `json:"createdAt"`
	AvatarImage string          `json:"avatarImage"`
}

type IChatService interface {
	Contacts(user domain.UserID) ([]Contact, error)
	Messages(user domain.UserID, chatType domain.ChatType, chatID string) ([]MessageView, error)
	PostMessage(user domain.UserID, chatType domain.ChatType, chatID, body string) (domain.Message, error)
	MarkConversationRead(user domain.UserID, chatType domain.ChatType, chatID string) error
	CreateRoom(creator domain.UserID, name string, members []domain.UserID, avatarImage string) (domain.Room, error)
}

// ChatService implements the request-driven paths: contact listing,
// conversation history, message creation, read acknowledgment, and room
// creation. It owns every persisted-state mutation; the real-time relay
// only reads.
type ChatService struct {
	log       *slog.Logger
	store     contract.IMessageStore
	directory contract.IDirectory
	summaries contract.ISummaries
}

func NewChatService(log *slog.Logger, store contract.IMessageStore,
	directory contract.IDirectory, summaries contract.ISummaries) *ChatService {
	return &ChatService{log: log, store: store, directory: directory, summaries: summaries}
}

// Contacts lists every other user plus the rooms the user belongs to, each
// carrying its unread count and latest-message fields.
func (s *ChatService) Contacts(user domain.UserID) ([]Contact, error) {
	profiles, err := s.directory.ListUsers(user)
	if err != nil {
		return nil, err
	}
	rooms, err := s.directory.ListRoomsFor(user)
	if err != nil {
		return nil, err
	}

	contacts := make([]Contact, 0, len(profiles)+len(rooms))
	for _, p := range profiles {
		summary, err := s.summaries.ComputeSummary(domain.DirectConversation(user, p.ID), user)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, Contact{
			ID:          string(p.ID),
			Name:        p.Name,
			AvatarImage: p.AvatarImage,
			ChatType:    domain.ChatTypeUser,
			Summary:     summary,
		})
	}
	for _, room := range rooms {
		summary, err := s.summaries.ComputeSummary(domain.RoomConversation(room.ID), user)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, Contact{
			ID:          string(room.ID),
			Name:        room.Name,
			AvatarImage: room.AvatarImage,
			ChatType:    domain.ChatTypeRoom,
			Users:       room.Members,
			Summary:     summary,
		})
	}
	return contacts, nil
}

// Messages returns the conversation history in creation order, each message
// joined with its sender's avatar. A sender without a stored profile gets an
// empty avatar rather than failing the whole listing.
func (s *ChatService) Messages(user domain.UserID, chatType domain.ChatType, chatID string) ([]MessageView, error) {
	conv := domain.ConversationFor(chatType, user, domain.UserID(chatID))
	messages, err := s.store.FindMessages(conv, nil)
	if err != nil {
		return nil, err
	}

	avatars := map[domain.UserID]string{}
	return lo.Map(messages, func(msg domain.Message, _ int) MessageView {
		avatar, cached := avatars[msg.Sender]
		if !cached {
			avatar, err = s.directory.FindUserAvatar(msg.Sender)
			if err != nil {
				avatar = ""
			}
			avatars[msg.Sender] = avatar
		}
		return MessageView{
			ID:          msg.ID.String(),
			Message:     msg.Body,
			Sender:      msg.Sender,
			Readers:     msg.Readers,
			CreatedAt:   msg.CreatedAt,
			AvatarImage: avatar,
		}
	}), nil
}

// PostMessage persists a new message with an empty reader set. Live
// delivery is a separate concern: the client announces the message on its
// socket after this call succeeds, and an offline counterpart simply finds
// it unread later.
func (s *ChatService) PostMessage(user domain.UserID, chatType domain.ChatType, chatID, body string) (domain.Message, error) {
	if body == "" {
		return domain.Message{}, errors.ErrValidation
	}
	conv := domain.ConversationFor(chatType, user, domain.UserID(chatID))
	return s.store.CreateMessage(conv, user, body)
}

// MarkConversationRead adds user to the reader set of every message in the
// conversation they did not author. Messages already acknowledged are left
// untouched.
func (s *ChatService) MarkConversationRead(user domain.UserID, chatType domain.ChatType, chatID string) error {
	conv := domain.ConversationFor(chatType, user, domain.UserID(chatID))
	messages, err := s.store.FindMessages(conv, lo.ToPtr(user))
	if err != nil {
		return err
	}
	for _, msg := range messages {
		if msg.ReadBy(user) {
			continue
		}
		if _, err := s.store.UpdateReaderSet(conv, msg.ID.String(), msg.WithReader(user)); err != nil {
			return fmt.Errorf("updating readers of %s: %w", msg.ID, err)
		}
	}
	return nil
}

// CreateRoom persists a new room whose membership is the invited users plus
// the creator. Socket-side invitations are relayed separately by the
// ROOM_CREATED event.
func (s *ChatService) CreateRoom(creator domain.UserID, name string, members []domain.UserID, avatarImage string) (domain.Room, error) {
	if name == "" || len(members) == 0 {
		return domain.Room{}, errors.ErrValidation
	}
	room := domain.Room{
		ID:          domain.RoomID(uuid.NewString()),
		Name:        name,
		Members:     append(append([]domain.UserID(nil), members...), creator),
		AvatarImage: avatarImage,
	}
	if err := s.directory.SaveRoom(room); err != nil {
		return domain.Room{}, err
	}
	return room, nil
}

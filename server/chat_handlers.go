package server

import (
	stderrors "errors"

	"github.com/gofiber/fiber/v2"

	"chat-relay/domain"
	"chat-relay/errors"
)

const missingInformation = "Missing required information."

type postMessageRequest struct {
	Type    domain.ChatType `json:"type"`
	Message string          `json:"message"`
}

type createRoomRequest struct {
	Name        string          `json:"name"`
	Users       []domain.UserID `json:"users"`
	AvatarImage string          `json:"avatarImage"`
}

type createUserRequest struct {
	ID          domain.UserID `json:"id"`
	Name        string        `json:"name"`
	AvatarImage string        `json:"avatarImage"`
}

// contacts lists every other user and the requesting user's rooms, each
// enriched with its unread count and latest message.
func (s *Server) contacts(c *fiber.Ctx) error {
	userID := domain.UserID(c.Params("userId"))
	if userID == "" {
		return badRequest(c)
	}
	contacts, err := s.chat.Contacts(userID)
	if err != nil {
		return serviceFailure(c, err)
	}
	return c.JSON(fiber.Map{"data": contacts})
}

func (s *Server) messages(c *fiber.Ctx) error {
	userID := domain.UserID(c.Params("userId"))
	chatType := domain.ChatType(c.Query("type"))
	chatID := c.Query("chatId")
	if userID == "" || chatType == "" || chatID == "" {
		return badRequest(c)
	}
	views, err := s.chat.Messages(userID, chatType, chatID)
	if err != nil {
		return serviceFailure(c, err)
	}
	return c.JSON(fiber.Map{"data": views})
}

func (s *Server) postMessage(c *fiber.Ctx) error {
	userID := domain.UserID(c.Params("userId"))
	chatID := c.Query("chatId")
	var req postMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c)
	}
	if userID == "" || chatID == "" || req.Message == "" {
		return badRequest(c)
	}
	if req.Type == "" {
		req.Type = domain.ChatTypeUser
	}
	msg, err := s.chat.PostMessage(userID, req.Type, chatID, req.Message)
	if err != nil {
		return serviceFailure(c, err)
	}
	return c.JSON(fiber.Map{"data": msg})
}

func (s *Server) markRead(c *fiber.Ctx) error {
	userID := domain.UserID(c.Params("userId"))
	chatType := domain.ChatType(c.Query("type"))
	chatID := c.Query("chatId")
	if userID == "" || chatType == "" || chatID == "" {
		return badRequest(c)
	}
	if err := s.chat.MarkConversationRead(userID, chatType, chatID); err != nil {
		return serviceFailure(c, err)
	}
	return c.JSON(fiber.Map{"data": nil, "message": "Successfully updated."})
}

func (s *Server) createRoom(c *fiber.Ctx) error {
	userID := domain.UserID(c.Params("userId"))
	var req createRoomRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c)
	}
	if userID == "" || req.Name == "" || len(req.Users) == 0 || req.AvatarImage == "" {
		return badRequest(c)
	}
	room, err := s.chat.CreateRoom(userID, req.Name, req.Users, req.AvatarImage)
	if err != nil {
		return serviceFailure(c, err)
	}
	return c.JSON(fiber.Map{"data": room, "message": "Successfully created a room."})
}

// createUser seeds the directory. Registration and authentication proper
// happen upstream; this only stores the profile the avatar join needs.
func (s *Server) createUser(c *fiber.Ctx) error {
	var req createUserRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c)
	}
	if req.ID == "" || req.Name == "" {
		return badRequest(c)
	}
	profile := domain.Profile{ID: req.ID, Name: req.Name, AvatarImage: req.AvatarImage}
	if err := s.directory.SaveUser(profile); err != nil {
		return serviceFailure(c, err)
	}
	return c.JSON(fiber.Map{"data": profile})
}

func badRequest(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": missingInformation})
}

func serviceFailure(c *fiber.Ctx, err error) error {
	switch {
	case stderrors.Is(err, errors.ErrValidation):
		return badRequest(c)
	case stderrors.Is(err, errors.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": err.Error()})
	case stderrors.Is(err, errors.ErrStoreUnavailable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"message": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
}

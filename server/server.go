// Package server exposes the HTTP surface: the websocket relay endpoint and
// the request-driven REST paths. Handlers validate and translate; all chat
// logic lives in services and runtime.
package server

import (
	"log/slog"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"chat-relay/contract"
	"chat-relay/runtime"
	"chat-relay/services"
	"chat-relay/transport"
)

type Server struct {
	log                  *slog.Logger
	chat                 services.IChatService
	directory            contract.IDirectory
	relay                *runtime.Relay
	hub                  *transport.Hub
	connectionBufferSize int
}

func New(log *slog.Logger, chat services.IChatService, directory contract.IDirectory,
	relay *runtime.Relay, hub *transport.Hub, connectionBufferSize int) *Server {
	return &Server{
		log:                  log,
		chat:                 chat,
		directory:            directory,
		relay:                relay,
		hub:                  hub,
		connectionBufferSize: connectionBufferSize,
	}
}

// Router mounts every route on the app.
func (s *Server) Router(app *fiber.App) {
	app.Get("/ws", websocket.New(s.relayHandler))

	api := app.Group("/api")
	api.Post("/users", s.createUser)
	api.Get("/users/:userId/contacts", s.contacts)
	api.Get("/users/:userId/messages", s.messages)
	api.Post("/users/:userId/messages", s.postMessage)
	api.Put("/users/:userId/read", s.markRead)
	api.Post("/users/:userId/rooms", s.createRoom)
}

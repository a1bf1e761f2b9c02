package server

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"

	"chat-relay/domain"
	"chat-relay/transport"
)

// relayHandler owns one websocket session. Each connection gets a fresh
// handle, a buffered sink registered with the hub, and a pair of pumps; the
// read pump runs on this goroutine and blocks until the socket dies, which
// is what keeps the fiber handler alive for the session's lifetime.
func (s *Server) relayHandler(c *websocket.Conn) {
	connID := domain.ConnectionID(uuid.NewString())
	sink := transport.NewSink(s.connectionBufferSize)
	s.hub.Register(connID, sink)

	client := transport.NewClient(s.log, connID, c, sink, s.hub, s.relay)
	go client.WritePump()
	client.ReadPump()
}

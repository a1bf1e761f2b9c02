package transport

import (
	"encoding/json"
	"log/slog"

	"github.com/gofiber/contrib/websocket"

	"chat-relay/domain"
	"chat-relay/domain/event"
)

// ConnLike is the subset of the websocket connection the pumps need.
// Narrowing the dependency keeps the pumps testable without a real socket.
type ConnLike interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(int, []byte) error
	Close() error
}

// Handler processes inbound envelopes and observes connection teardown.
// The runtime relay implements it.
type Handler interface {
	Handle(conn domain.ConnectionID, env event.Envelope) error
	ConnectionClosed(conn domain.ConnectionID)
}

// Client binds one websocket connection to the hub and the relay.
type Client struct {
	ID   domain.ConnectionID
	log  *slog.Logger
	conn ConnLike
	sink *Sink
	hub  *Hub
	h    Handler
}

func NewClient(log *slog.Logger, id domain.ConnectionID, conn ConnLike, sink *Sink, hub *Hub, h Handler) *Client {
	return &Client{ID: id, log: log, conn: conn, sink: sink, hub: hub, h: h}
}

// ReadPump reads envelopes until the socket dies, handing each one to the
// relay synchronously so events from this connection keep their order.
// On exit it unregisters from the hub and clears the connection's presence
// and room state, so nothing can be routed to the stale handle.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c.ID)
		c.h.ConnectionClosed(c.ID)
	}()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.log.Debug("Connection closed", "connection", c.ID, "error", err)
			return
		}
		var env event.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			c.log.Debug("Malformed frame dropped", "connection", c.ID, "error", err)
			continue
		}
		if err := c.h.Handle(c.ID, env); err != nil {
			// One bad event never tears the connection down.
			c.log.Warn("Inbound event rejected", "connection", c.ID, "event", env.Event, "error", err)
		}
	}
}

// WritePump drains the sink onto the socket until the hub closes it.
func (c *Client) WritePump() {
	for evt := range c.sink.Outbound {
		data, err := json.Marshal(evt.Data)
		if err != nil {
			c.log.Error("Failed to encode outbound event", "event", evt.Event, "error", err)
			continue
		}
		frame, err := json.Marshal(event.Envelope{Event: evt.Event, Data: data})
		if err != nil {
			continue
		}
		if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			c.log.Debug("Write failed", "connection", c.ID, "error", err)
			return
		}
	}
}

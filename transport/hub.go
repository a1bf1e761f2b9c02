package transport

import (
	"context"
	"log/slog"

	"chat-relay/domain"
	"chat-relay/domain/event"
)

type registration struct {
	conn domain.ConnectionID
	sink *Sink
}

type delivery struct {
	broadcast bool
	targets   []domain.ConnectionID
	evt       event.Outbound
}

// Hub owns the connection-to-sink table and fans outbound events out to it.
// It is a single-threaded worker: registrations, unregistrations, and
// deliveries all flow through its channels and are applied one at a time by
// Run, so the table needs no lock. The supervisor restarts the loop if it
// ever panics.
type Hub struct {
	log          *slog.Logger
	registerChan chan registration
	removeChan   chan domain.ConnectionID
	deliveries   chan delivery
	clients      map[domain.ConnectionID]*Sink
}

func NewHub(log *slog.Logger, bufferSize int) *Hub {
	return &Hub{
		log:          log,
		registerChan: make(chan registration),
		removeChan:   make(chan domain.ConnectionID),
		deliveries:   make(chan delivery, bufferSize),
		clients:      make(map[domain.ConnectionID]*Sink),
	}
}

// Register attaches a connection's sink to the hub.
func (h *Hub) Register(conn domain.ConnectionID, sink *Sink) {
	h.registerChan <- registration{conn: conn, sink: sink}
}

// Unregister detaches the connection and closes its sink, releasing the
// write pump.
func (h *Hub) Unregister(conn domain.ConnectionID) {
	h.removeChan <- conn
}

// Broadcast fans the event out to every live connection.
func (h *Hub) Broadcast(evt event.Outbound) {
	h.dispatch(delivery{broadcast: true, evt: evt})
}

// Send delivers the event to each listed connection. A target that is no
// longer registered, or whose sink is full, is skipped silently.
func (h *Hub) Send(targets []domain.ConnectionID, evt event.Outbound) {
	if len(targets) == 0 {
		return
	}
	h.dispatch(delivery{targets: targets, evt: evt})
}

func (h *Hub) dispatch(d delivery) {
	select {
	case h.deliveries <- d:
	default:
		h.log.Warn("Hub delivery queue full, dropping event", "event", d.evt.Event)
	}
}

// Run applies registrations and deliveries until the context is canceled.
func (h *Hub) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.log.Debug("Stopping hub")
			return nil
		case reg := <-h.registerChan:
			h.clients[reg.conn] = reg.sink
		case conn := <-h.removeChan:
			if sink, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				sink.Close()
			}
		case d := <-h.deliveries:
			h.deliver(d)
		}
	}
}

func (h *Hub) deliver(d delivery) {
	if d.broadcast {
		for conn, sink := range h.clients {
			if !sink.Push(d.evt) {
				h.log.Debug("Slow connection, event dropped", "connection", conn, "event", d.evt.Event)
			}
		}
		return
	}
	for _, conn := range d.targets {
		sink, ok := h.clients[conn]
		if !ok {
			continue
		}
		if !sink.Push(d.evt) {
			h.log.Debug("Slow connection, event dropped", "connection", conn, "event", d.evt.Event)
		}
	}
}

// Package transport carries outbound events from the relay to live
// websocket connections. It implements the pub/sub boundary the relay
// depends on: broadcast-to-all and send-to-connections, fire-and-forget.
package transport

import (
	"chat-relay/domain/event"
)

// Sink is the buffered outbound queue of one connection. The write pump
// drains it; Push never blocks the relay.
type Sink struct {
	Outbound chan event.Outbound
}

func NewSink(bufferSize int) *Sink {
	return &Sink{Outbound: make(chan event.Outbound, bufferSize)}
}

// Push enqueues the event for the connection's write pump. A full buffer
// means the connection cannot keep up; the event is dropped and Push
// reports false. Dropped deliveries are not an error condition.
func (s *Sink) Push(evt event.Outbound) bool {
	select {
	case s.Outbound <- evt:
		return true
	default:
		return false
	}
}

// Close releases the write pump draining the sink.
func (s *Sink) Close() {
	close(s.Outbound)
}

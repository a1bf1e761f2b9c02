package transport

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"chat-relay/domain"
	"chat-relay/domain/event"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(slog.Default(), 16)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func receive(t *testing.T, sink *Sink) event.Outbound {
	t.Helper()
	select {
	case evt := <-sink.Outbound:
		return evt
	case <-time.After(time.Second):
		t.Fatal("expected an event on the sink")
		return event.Outbound{}
	}
}

func expectNothing(t *testing.T, sink *Sink) {
	t.Helper()
	select {
	case evt := <-sink.Outbound:
		t.Fatalf("unexpected event %q on the sink", evt.Event)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_Broadcast_Reaches_Every_Connection(t *testing.T) {
	req := require.New(t)
	hub := startHub(t)

	first, second := NewSink(4), NewSink(4)
	hub.Register("c1", first)
	hub.Register("c2", second)

	hub.Broadcast(event.Outbound{Event: event.OnlineUserChanged, Data: "payload"})

	req.Equal(event.OnlineUserChanged, receive(t, first).Event)
	req.Equal(event.OnlineUserChanged, receive(t, second).Event)
}

func TestHub_Send_Targets_Only_Listed_Connections(t *testing.T) {
	req := require.New(t)
	hub := startHub(t)

	target, bystander := NewSink(4), NewSink(4)
	hub.Register("c1", target)
	hub.Register("c2", bystander)

	hub.Send([]domain.ConnectionID{"c1"}, event.Outbound{Event: event.ReceiveMessage})

	req.Equal(event.ReceiveMessage, receive(t, target).Event)
	expectNothing(t, bystander)
}

func TestHub_Send_Skips_Unknown_Connections(t *testing.T) {
	hub := startHub(t)

	sink := NewSink(4)
	hub.Register("c1", sink)

	// A stale handle in the target list must not disturb delivery
	hub.Send([]domain.ConnectionID{"ghost", "c1"}, event.Outbound{Event: event.TypingNotify})
	receive(t, sink)
}

func TestHub_Unregister_Closes_The_Sink(t *testing.T) {
	req := require.New(t)
	hub := startHub(t)

	sink := NewSink(4)
	hub.Register("c1", sink)
	hub.Unregister("c1")

	select {
	case _, open := <-sink.Outbound:
		req.False(open)
	case <-time.After(time.Second):
		req.Fail("sink should have been closed")
	}

	// Deliveries to the departed connection are dropped silently
	hub.Send([]domain.ConnectionID{"c1"}, event.Outbound{Event: event.ReceiveMessage})
}

func TestHub_Slow_Connection_Drops_Instead_Of_Blocking(t *testing.T) {
	req := require.New(t)
	hub := startHub(t)

	slow, healthy := NewSink(1), NewSink(4)
	hub.Register("slow", slow)
	hub.Register("healthy", healthy)

	// The slow sink holds one event and never drains
	hub.Broadcast(event.Outbound{Event: event.ReceiveMessage, Data: "first"})
	hub.Broadcast(event.Outbound{Event: event.ReceiveMessage, Data: "second"})

	req.Equal("first", receive(t, healthy).Data)
	req.Equal("second", receive(t, healthy).Data)

	// The slow connection kept the first event and lost the second
	req.Equal("first", receive(t, slow).Data)
	expectNothing(t, slow)
}

func TestSink_Push_Reports_Drop_When_Full(t *testing.T) {
	req := require.New(t)
	sink := NewSink(1)

	req.True(sink.Push(event.Outbound{Event: event.UserTyping}))
	req.False(sink.Push(event.Outbound{Event: event.UserTyping}))
}

package sse

import (
	"context"
	"log/slog"

	"github.com/osse101/marketsync/internal/event"
)

// Subscriber bridges the internal event bus to the SSE hub
type Subscriber struct {
	hub *Hub
	bus event.Bus
}

// NewSubscriber creates a new SSE subscriber
func NewSubscriber(hub *Hub, bus event.Bus) *Subscriber {
	return &Subscriber{
		hub: hub,
		bus: bus,
	}
}

// Subscribe forwards every streamable event type to the hub. The returned
// func removes all handlers.
func (s *Subscriber) Subscribe() (unsubscribe func()) {
	cancels := make([]func(), 0, len(event.StreamTypes))
	names := make([]string, 0, len(event.StreamTypes))
	for _, t := range event.StreamTypes {
		cancels = append(cancels, s.bus.Subscribe(t, s.handleEvent))
		names = append(names, string(t))
	}

	slog.Info(LogMsgSubscribed, "types", names)

	return func() {
		for _, cancel := range cancels {
			cancel()
		}
	}
}

// handleEvent rebroadcasts the bus payload unchanged under the bus type name.
func (s *Subscriber) handleEvent(_ context.Context, evt event.Event) error {
	s.hub.Broadcast(string(evt.Type), evt.Payload)
	slog.Debug(LogMsgEventBroadcast, "event_type", evt.Type)
	return nil
}

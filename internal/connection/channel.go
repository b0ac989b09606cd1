package connection

import (
	"context"

	"github.com/osse101/marketsync/internal/domain"
)

// Handler receives the raw JSON payload of one channel event.
type Handler func(payload []byte)

// EventChannel is a persistent bidirectional event connection. Callbacks are
// delivered on the channel's own goroutine.
type EventChannel interface {
	// Open starts connecting. It may return before the connection is up;
	// completion is reported through the connect or statusChange events.
	Open(ctx context.Context) error
	Close() error
	Emit(event string, payload any) error
	On(event string, h Handler)
	RemoveAllHandlers()
	Status() domain.ChannelStatus
}

// Attacher is the subscription side the Manager drives on session changes.
type Attacher interface {
	// SetLifecycleHook hands over a func that reinstalls the Manager's
	// lifecycle handlers after the channel's handlers were cleared.
	SetLifecycleHook(fn func())
	Attach(ch EventChannel)
	Detach()
}

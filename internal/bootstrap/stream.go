package bootstrap

import (
	"github.com/osse101/marketsync/internal/event"
	"github.com/osse101/marketsync/internal/feed"
	"github.com/osse101/marketsync/internal/sse"
)

// StreamInitialState returns the events a new stream client receives before
// live updates: the current items snapshot and the connection state. The
// payloads match what the bus delivers.
func StreamInitialState(coord *feed.Coordinator) sse.InitialState {
	return func() []sse.Event {
		snap := coord.Snapshot()
		state := coord.ConnectionState()
		initial := []event.Event{
			event.NewItemsSnapshotEvent(snap.Version, snap.Items),
			event.NewConnectionStateEvent(state, state),
		}

		out := make([]sse.Event, 0, len(initial))
		for _, evt := range initial {
			out = append(out, sse.NewEvent(string(evt.Type), evt.Payload))
		}
		return out
	}
}

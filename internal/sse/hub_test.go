package sse

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/marketsync/internal/testing/leaktest"
)

func receive(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case evt, ok := <-c.EventChannel:
		require.True(t, ok, "client channel closed")
		return evt
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func assertNoEvent(t *testing.T, c *Client) {
	t.Helper()
	select {
	case evt := <-c.EventChannel:
		t.Fatalf("unexpected event %q", evt.Type)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_BroadcastRespectsFilters(t *testing.T) {
	hub := NewHub()
	hub.Start()
	defer hub.Stop()

	all := hub.Register(nil)
	itemsOnly := hub.Register([]string{"items.snapshot", " "})
	assert.Equal(t, 2, hub.ClientCount())

	hub.Broadcast("connection.state", map[string]string{"state": "connected"})
	hub.Broadcast("items.snapshot", map[string]int{"count": 3})

	assert.Equal(t, "connection.state", receive(t, all).Type)
	assert.Equal(t, "items.snapshot", receive(t, all).Type)

	evt := receive(t, itemsOnly)
	assert.Equal(t, "items.snapshot", evt.Type)
	assert.NotEmpty(t, evt.ID)
	assertNoEvent(t, itemsOnly)
}

func TestHub_Unregister(t *testing.T) {
	hub := NewHub()
	hub.Start()
	defer hub.Stop()

	c := hub.Register(nil)
	hub.Unregister(c.ID)
	hub.Unregister(c.ID)
	hub.Unregister("unknown")

	_, ok := <-c.EventChannel
	assert.False(t, ok)
	assert.Equal(t, 0, hub.ClientCount())
}

func TestHub_StopClosesClientsAndIsIdempotent(t *testing.T) {
	checker := leaktest.NewGoroutineChecker(t)

	hub := NewHub()
	hub.Start()
	c := hub.Register(nil)

	hub.Stop()
	hub.Stop()

	_, ok := <-c.EventChannel
	assert.False(t, ok)

	late := hub.Register(nil)
	_, ok = <-late.EventChannel
	assert.False(t, ok, "register after stop returns a closed client")
	assert.Equal(t, 0, hub.ClientCount())

	// Unregistering after stop must not block or panic.
	hub.Unregister(c.ID)

	checker.Check(0)
}

func TestHub_SlowClientDoesNotBlock(t *testing.T) {
	hub := NewHub()
	hub.Start()
	defer hub.Stop()

	slow := hub.Register(nil)
	for i := 0; i < ClientEventBuffer*2; i++ {
		hub.Broadcast("items.snapshot", i)
	}

	assert.Eventually(t, func() bool {
		return len(slow.EventChannel) == ClientEventBuffer
	}, time.Second, 10*time.Millisecond)
}

func TestFormatSSEMessage(t *testing.T) {
	msg, err := FormatSSEMessage(Event{ID: "abc", Type: "items.snapshot", Timestamp: 1, Payload: map[string]int{"count": 2}})
	require.NoError(t, err)

	text := string(msg)
	assert.True(t, strings.HasPrefix(text, "id: abc\nevent: items.snapshot\ndata: {"))
	assert.Contains(t, text, `"payload":{"count":2}`)
	assert.True(t, strings.HasSuffix(text, "\n\n"))

	_, err = FormatSSEMessage(Event{Type: "bad", Payload: make(chan int)})
	assert.Error(t, err)
}

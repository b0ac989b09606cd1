package connection

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/osse101/marketsync/internal/domain"
)

// Emitted is one message sent through a FakeChannel.
type Emitted struct {
	Event   string
	Payload any
}

// FakeChannel is an in-memory EventChannel for tests. Nothing is delivered
// until the test calls Fire.
type FakeChannel struct {
	mu       sync.Mutex
	handlers map[string][]Handler
	status   domain.ChannelStatus
	emitted  []Emitted
	opens    int
	closes   int

	// OpenErr, when set, is returned by Open.
	OpenErr error
	// EmitErr, when set, is returned by Emit and nothing is recorded.
	EmitErr error
}

// NewFakeChannel returns a closed fake channel.
func NewFakeChannel() *FakeChannel {
	return &FakeChannel{
		handlers: make(map[string][]Handler),
		status:   domain.StatusNotConnected,
	}
}

func (f *FakeChannel) Open(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opens++
	if f.OpenErr != nil {
		f.status = domain.StatusNotConnected
		return f.OpenErr
	}
	f.status = domain.StatusConnecting
	return nil
}

func (f *FakeChannel) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closes++
	f.status = domain.StatusDisconnected
	return nil
}

func (f *FakeChannel) Emit(event string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.EmitErr != nil {
		return f.EmitErr
	}
	f.emitted = append(f.emitted, Emitted{Event: event, Payload: payload})
	return nil
}

func (f *FakeChannel) On(event string, h Handler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[event] = append(f.handlers[event], h)
}

func (f *FakeChannel) RemoveAllHandlers() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers = make(map[string][]Handler)
}

func (f *FakeChannel) Status() domain.ChannelStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

// Fire delivers payload to every handler registered for event. The handler
// list is captured before delivery, like a real read loop would.
func (f *FakeChannel) Fire(event string, payload []byte) {
	f.mu.Lock()
	handlers := append([]Handler(nil), f.handlers[event]...)
	f.mu.Unlock()

	for _, h := range handlers {
		h(payload)
	}
}

// FireConnect simulates the server accepting the session.
func (f *FakeChannel) FireConnect() {
	f.mu.Lock()
	f.status = domain.StatusConnected
	f.mu.Unlock()
	f.Fire(EventConnect, nil)
}

// FireDisconnect simulates the connection dropping.
func (f *FakeChannel) FireDisconnect() {
	f.mu.Lock()
	f.status = domain.StatusDisconnected
	f.mu.Unlock()
	f.Fire(EventDisconnect, nil)
}

// FireStatus delivers a statusChange event.
func (f *FakeChannel) FireStatus(status domain.ChannelStatus) {
	payload, _ := json.Marshal(string(status))
	f.Fire(EventStatusChange, payload)
}

// HandlerCount returns how many handlers are registered for event.
func (f *FakeChannel) HandlerCount(event string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.handlers[event])
}

// Emitted returns a copy of everything emitted so far.
func (f *FakeChannel) Emitted() []Emitted {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Emitted(nil), f.emitted...)
}

// ResetEmitted forgets recorded emits.
func (f *FakeChannel) ResetEmitted() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emitted = nil
}

// Opens returns how many times Open was called.
func (f *FakeChannel) Opens() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opens
}

// Closes returns how many times Close was called.
func (f *FakeChannel) Closes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closes
}

package event

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/osse101/marketsync/internal/domain"
)

// Type represents the type of an event
type Type string

// Metadata defines the type for event metadata
type Metadata map[string]interface{}

// Event represents a generic event in the system
type Event struct {
	Version   string    `json:"version"` // Event schema version (e.g., "1.0")
	Type      Type      `json:"type"`
	Payload   any       `json:"payload"`
	Metadata  Metadata  `json:"metadata,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// GetMetadataValue extracts a value from the event metadata safely
func (e Event) GetMetadataValue(key string) interface{} {
	if e.Metadata == nil {
		return nil
	}
	return e.Metadata[key]
}

// Event types produced by the sync engine
const (
	ItemsSnapshot        Type = "items.snapshot"
	ConnectionState      Type = "connection.state"
	ConnectionAlert      Type = "connection.alert"
	NetworkReachability  Type = "network.reachability"
	ReconnectPolicyState Type = "reconnect.state"
	TopicsChanged        Type = "subscription.topics"
)

// StreamTypes are the event types forwarded to streaming consumers.
var StreamTypes = []Type{ItemsSnapshot, ConnectionState, ConnectionAlert, NetworkReachability}

// Typed event payloads for type safety

// ItemsSnapshotPayloadV1 carries a full debounced copy of the store.
type ItemsSnapshotPayloadV1 struct {
	Version uint64        `json:"version"`
	Count   int           `json:"count"`
	Items   []domain.Item `json:"items"`
}

// ConnectionStatePayloadV1 describes one connection state transition.
type ConnectionStatePayloadV1 struct {
	State    domain.ConnectionState `json:"state"`
	Previous domain.ConnectionState `json:"previous"`
}

// ConnectionAlertPayloadV1 is raised when a connect intent cannot be honored.
type ConnectionAlertPayloadV1 struct {
	Reason string `json:"reason"`
}

// ReachabilityPayloadV1 reports a change in network reachability.
type ReachabilityPayloadV1 struct {
	Reachable bool `json:"reachable"`
}

// PolicyStatePayloadV1 reports a reconnect policy state change.
type PolicyStatePayloadV1 struct {
	State    string `json:"state"`
	Previous string `json:"previous"`
}

// TopicsPayloadV1 reports the new desired topic set.
type TopicsPayloadV1 struct {
	Topics []string `json:"topics"`
}

// Type-safe event constructors

func newEvent(t Type, payload any) Event {
	return Event{
		Version:   EventSchemaVersion,
		Type:      t,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// NewItemsSnapshotEvent creates an items snapshot event. The caller hands over
// ownership of items.
func NewItemsSnapshotEvent(version uint64, items []domain.Item) Event {
	return newEvent(ItemsSnapshot, ItemsSnapshotPayloadV1{
		Version: version,
		Count:   len(items),
		Items:   items,
	})
}

// NewConnectionStateEvent creates a connection state event
func NewConnectionStateEvent(state, previous domain.ConnectionState) Event {
	return newEvent(ConnectionState, ConnectionStatePayloadV1{State: state, Previous: previous})
}

// NewConnectionAlertEvent creates a no-connection alert event
func NewConnectionAlertEvent(reason string) Event {
	return newEvent(ConnectionAlert, ConnectionAlertPayloadV1{Reason: reason})
}

// NewReachabilityEvent creates a reachability event
func NewReachabilityEvent(reachable bool) Event {
	return newEvent(NetworkReachability, ReachabilityPayloadV1{Reachable: reachable})
}

// NewPolicyStateEvent creates a reconnect policy state event
func NewPolicyStateEvent(state, previous string) Event {
	return newEvent(ReconnectPolicyState, PolicyStatePayloadV1{State: state, Previous: previous})
}

// NewTopicsChangedEvent creates a topics changed event
func NewTopicsChangedEvent(topics domain.TopicSet, source string) Event {
	evt := newEvent(TopicsChanged, TopicsPayloadV1{Topics: topics.Strings()})
	if source != "" {
		evt.Metadata = Metadata{MetadataKeySource: source}
	}
	return evt
}

// Handler is a function that handles an event
type Handler func(ctx context.Context, event Event) error

// Bus defines the interface for an event bus
type Bus interface {
	Publish(ctx context.Context, event Event) error
	// Subscribe registers handler for eventType. The returned func removes it
	// and is safe to call more than once.
	Subscribe(eventType Type, handler Handler) (unsubscribe func())
}

type subscription struct {
	id      uint64
	handler Handler
}

// MemoryBus is an in-memory implementation of the Event Bus
type MemoryBus struct {
	handlers map[Type][]subscription
	nextID   uint64
	mu       sync.RWMutex
}

// NewMemoryBus creates a new MemoryBus
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		handlers: make(map[Type][]subscription),
	}
}

// Publish publishes an event to all subscribers. Handlers run synchronously on
// the caller's goroutine in subscription order; a handler may subscribe or
// unsubscribe without deadlocking.
func (b *MemoryBus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	subs := append([]subscription(nil), b.handlers[event.Type]...)
	b.mu.RUnlock()

	if len(subs) == 0 {
		return nil
	}

	var errs []error
	for _, sub := range subs {
		if err := sub.handler(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf(LogMsgHandlerErrorFormat, len(errs), event.Type, errs)
	}

	return nil
}

// Subscribe subscribes a handler to an event type
func (b *MemoryBus) Subscribe(eventType Type, handler Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.handlers[eventType] = append(b.handlers[eventType], subscription{id: id, handler: handler})

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(eventType, id) })
	}
}

func (b *MemoryBus) remove(eventType Type, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.handlers[eventType]
	for i, sub := range subs {
		if sub.id == id {
			next := make([]subscription, 0, len(subs)-1)
			next = append(next, subs[:i]...)
			next = append(next, subs[i+1:]...)
			if len(next) == 0 {
				delete(b.handlers, eventType)
			} else {
				b.handlers[eventType] = next
			}
			return
		}
	}
}

// SubscriberCount returns the number of handlers registered for eventType.
func (b *MemoryBus) SubscriberCount(eventType Type) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[eventType])
}

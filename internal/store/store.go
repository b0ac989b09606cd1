package store

import (
	"log/slog"
	"sync"
	"time"

	"github.com/osse101/marketsync/internal/domain"
	"github.com/osse101/marketsync/internal/metrics"
)

// Options tune the debounce stage.
type Options struct {
	DebounceWindow  time.Duration
	DebounceMaxWait time.Duration
}

// DefaultOptions returns the stock debounce settings.
func DefaultOptions() Options {
	return Options{
		DebounceWindow:  DefaultDebounceWindow,
		DebounceMaxWait: DefaultDebounceMaxWait,
	}
}

// Store is the ordered, ID-unique item collection. Every mutation produces
// one raw snapshot; subscribers get the debounced stream.
type Store struct {
	mu      sync.Mutex
	items   []domain.Item
	index   map[string]int
	version uint64

	rawMu sync.Mutex
	raw   listeners

	debouncer *Debouncer
	log       *slog.Logger
}

// New creates an empty store.
func New(opts Options) *Store {
	s := &Store{
		index:     make(map[string]int),
		debouncer: NewDebouncer(opts.DebounceWindow, opts.DebounceMaxWait),
		log:       slog.Default().With("component", "store"),
	}
	s.SubscribeRaw(s.debouncer.Notify)
	return s
}

// ApplyEvent applies one item event. Removing an unknown ID is a no-op and
// updating one inserts it; either way one raw snapshot is published.
func (s *Store) ApplyEvent(kind domain.ItemEventKind, item domain.Item) {
	if !kind.Valid() {
		s.log.Warn(LogMsgUnknownEventKind, "kind", string(kind))
		return
	}

	s.mu.Lock()
	switch kind {
	case domain.ItemCreated, domain.ItemUpdated:
		s.upsertLocked(item.Clone())
	case domain.ItemRemoved:
		s.removeLocked(item.ID)
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	metrics.ItemEventsApplied.WithLabelValues(string(kind)).Inc()
	metrics.StoreItems.Set(float64(len(snap.Items)))
	s.log.Debug(LogMsgItemEventApplied, "kind", kind.String(), "item_id", item.ID, "version", snap.Version)

	s.publishRaw(snap)
}

// Reset drops every item and publishes the empty snapshot.
func (s *Store) Reset() {
	s.mu.Lock()
	s.items = nil
	s.index = make(map[string]int)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	metrics.StoreItems.Set(0)
	s.log.Info(LogMsgStoreReset, "version", snap.Version)
	s.publishRaw(snap)
}

// Items returns a copy of the current items in order.
func (s *Store) Items() []domain.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.CloneItems(s.items)
}

// Snapshot returns the current items with their version.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{Version: s.version, Items: domain.CloneItems(s.items)}
}

// Len returns the number of items.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Get looks an item up by ID.
func (s *Store) Get(id string) (domain.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return domain.Item{}, false
	}
	return s.items[i].Clone(), true
}

// SubscribeRaw registers fn for every mutation, undebounced. Snapshots from
// concurrent mutations may arrive out of order; compare versions.
func (s *Store) SubscribeRaw(fn Listener) (cancel func()) {
	s.rawMu.Lock()
	id := s.raw.add(fn)
	s.rawMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.rawMu.Lock()
			defer s.rawMu.Unlock()
			s.raw.remove(id)
		})
	}
}

// Subscribe registers fn for debounced snapshots. Listeners share the
// snapshot's Items slice and must not modify it.
func (s *Store) Subscribe(fn Listener) (cancel func()) {
	return s.debouncer.Subscribe(fn)
}

// Flush delivers any pending debounced snapshot immediately.
func (s *Store) Flush() {
	s.debouncer.Flush()
}

// Close stops the debounce stage.
func (s *Store) Close() {
	s.debouncer.Close()
}

func (s *Store) upsertLocked(item domain.Item) {
	if i, ok := s.index[item.ID]; ok {
		s.items[i] = item
		return
	}
	s.index[item.ID] = len(s.items)
	s.items = append(s.items, item)
}

func (s *Store) removeLocked(id string) {
	i, ok := s.index[id]
	if !ok {
		return
	}
	copy(s.items[i:], s.items[i+1:])
	s.items[len(s.items)-1] = domain.Item{}
	s.items = s.items[:len(s.items)-1]
	delete(s.index, id)
	for j := i; j < len(s.items); j++ {
		s.index[s.items[j].ID] = j
	}
}

func (s *Store) snapshotLocked() Snapshot {
	s.version++
	return Snapshot{Version: s.version, Items: domain.CloneItems(s.items)}
}

func (s *Store) publishRaw(snap Snapshot) {
	metrics.RawNotifications.Inc()

	s.rawMu.Lock()
	subs := s.raw.snapshot()
	s.rawMu.Unlock()

	for _, sub := range subs {
		sub.fn(snap)
	}
}

package store

import "github.com/osse101/marketsync/internal/domain"

// Snapshot is a point-in-time copy of the store. Versions increase with
// every mutation, so a consumer can tell which of two snapshots is newer.
type Snapshot struct {
	Version uint64
	Items   []domain.Item
}

// Listener receives snapshots.
type Listener func(Snapshot)

type listenerEntry struct {
	id uint64
	fn Listener
}

// listeners is a small copy-on-write subscriber list. Callers provide locking.
type listeners struct {
	entries []listenerEntry
	nextID  uint64
}

func (l *listeners) add(fn Listener) uint64 {
	l.nextID++
	l.entries = append(l.entries, listenerEntry{id: l.nextID, fn: fn})
	return l.nextID
}

func (l *listeners) remove(id uint64) {
	for i, e := range l.entries {
		if e.id == id {
			l.entries = append(l.entries[:i:i], l.entries[i+1:]...)
			return
		}
	}
}

func (l *listeners) snapshot() []listenerEntry {
	return l.entries
}

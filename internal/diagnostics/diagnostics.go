package diagnostics

import (
	"errors"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/osse101/marketsync/internal/domain"
)

// Defaults for the decode failure ring.
const (
	DefaultSize = 100
	DefaultTTL  = time.Hour

	// MaxPayloadBytes bounds how much of an offending payload is kept.
	MaxPayloadBytes = 512
)

// Record describes one payload that failed to decode.
type Record struct {
	Seq     uint64               `json:"seq"`
	Kind    domain.ItemEventKind `json:"kind"`
	Field   string               `json:"field,omitempty"`
	Reason  string               `json:"reason"`
	Payload string               `json:"payload"`
	At      time.Time            `json:"at"`
}

// Recorder keeps the most recent decode failures in an LRU with time-based
// expiration. Entries are keyed by a monotonically increasing sequence, so
// eviction drops the oldest.
type Recorder struct {
	lru *expirable.LRU[uint64, Record]

	mu    sync.Mutex
	seq   uint64
	total uint64
}

// NewRecorder creates a recorder holding at most size records for ttl.
func NewRecorder(size int, ttl time.Duration) *Recorder {
	if size <= 0 {
		size = DefaultSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Recorder{
		lru: expirable.NewLRU[uint64, Record](size, nil, ttl),
	}
}

// RecordDecodeFailure stores a failure. It satisfies the subscription
// package's recorder interface.
func (r *Recorder) RecordDecodeFailure(kind domain.ItemEventKind, payload []byte, err error) {
	r.mu.Lock()
	r.seq++
	r.total++
	seq := r.seq
	r.mu.Unlock()

	rec := Record{
		Seq:     seq,
		Kind:    kind,
		Payload: truncate(payload),
		At:      time.Now(),
	}
	var decodeErr *domain.DecodeError
	if errors.As(err, &decodeErr) {
		rec.Field = decodeErr.Field
		rec.Reason = decodeErr.Reason
	} else if err != nil {
		rec.Reason = err.Error()
	}
	r.lru.Add(seq, rec)
}

// Recent returns up to limit records, newest first. limit <= 0 means all.
func (r *Recorder) Recent(limit int) []Record {
	keys := r.lru.Keys()
	out := make([]Record, 0, len(keys))
	for i := len(keys) - 1; i >= 0; i-- {
		if limit > 0 && len(out) >= limit {
			break
		}
		if rec, ok := r.lru.Peek(keys[i]); ok {
			out = append(out, rec)
		}
	}
	return out
}

// Len returns the number of retained records.
func (r *Recorder) Len() int {
	return r.lru.Len()
}

// Total returns how many failures were recorded since start, including
// evicted ones.
func (r *Recorder) Total() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.total
}

// Clear drops retained records. Total is unaffected.
func (r *Recorder) Clear() {
	r.lru.Purge()
}

func truncate(payload []byte) string {
	if len(payload) > MaxPayloadBytes {
		return string(payload[:MaxPayloadBytes]) + "..."
	}
	return string(payload)
}

package journal

import (
	"context"
	"encoding/json"
	"time"
)

// Entry is one journaled feed event.
type Entry struct {
	ID        int64                  `json:"id"`
	EventType string                 `json:"event_type"`
	Payload   json.RawMessage        `json:"payload"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// Filter narrows journal queries.
type Filter struct {
	EventType *string
	Since     *time.Time
	Limit     int
}

// Repository defines the interface for journal storage
type Repository interface {
	// Append stores an entry. ID is assigned by the store.
	Append(ctx context.Context, entry Entry) error

	// Recent returns entries newest first.
	Recent(ctx context.Context, filter Filter) ([]Entry, error)

	// CleanupOldEntries removes entries older than the specified number of days
	CleanupOldEntries(ctx context.Context, retentionDays int) (int64, error)
}

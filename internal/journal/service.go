package journal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/osse101/marketsync/internal/event"
	"github.com/osse101/marketsync/internal/logger"
	"github.com/osse101/marketsync/internal/metrics"
	"github.com/osse101/marketsync/internal/worker"
)

// JournaledTypes are the bus events written to the journal.
var JournaledTypes = []event.Type{
	event.ItemsSnapshot,
	event.ConnectionState,
	event.ConnectionAlert,
	event.NetworkReachability,
	event.ReconnectPolicyState,
	event.TopicsChanged,
}

// snapshotSummary replaces the full item list so snapshots stay small.
type snapshotSummary struct {
	Version uint64 `json:"version"`
	Count   int    `json:"count"`
}

// Service journals feed events and serves them back.
type Service interface {
	// Subscribe registers the journal on every journaled event type.
	Subscribe(bus event.Bus) (unsubscribe func())

	// Recent returns the newest entries, optionally filtered by type.
	Recent(ctx context.Context, eventType string, limit int) ([]Entry, error)

	// CleanupOldEntries removes entries older than retention period
	CleanupOldEntries(ctx context.Context, retentionDays int) (int64, error)

	// Close waits for queued writes.
	Close()
}

type service struct {
	repo Repository
	pool *worker.Pool
}

// NewService creates a journal service writing through a pool of workers so
// bus publishers never wait on the database.
func NewService(repo Repository, workers int) Service {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	pool := worker.NewPool(PoolName, workers, DefaultQueueSize)
	pool.Start()
	return &service{repo: repo, pool: pool}
}

// Subscribe registers event handlers for all journaled types
func (s *service) Subscribe(bus event.Bus) func() {
	cancels := make([]func(), 0, len(JournaledTypes))
	for _, eventType := range JournaledTypes {
		cancels = append(cancels, bus.Subscribe(eventType, s.handleEvent))
	}
	return func() {
		for _, cancel := range cancels {
			cancel()
		}
	}
}

// handleEvent encodes the event and queues the write.
func (s *service) handleEvent(ctx context.Context, evt event.Event) error {
	log := logger.FromContext(ctx)

	entry, err := entryFromEvent(evt)
	if err != nil {
		log.Warn(LogMsgFailedToEncode, LogFieldType, evt.Type, LogFieldError, err)
		metrics.JournalWrites.WithLabelValues(WriteStatusError).Inc()
		return nil
	}

	err = s.pool.EnqueueFunc(func(ctx context.Context) error {
		return s.write(ctx, entry)
	})
	if err != nil {
		log.Debug(LogMsgWriteDropped, LogFieldType, evt.Type)
		metrics.JournalWrites.WithLabelValues(WriteStatusDropped).Inc()
	}
	return nil
}

func (s *service) write(ctx context.Context, entry Entry) error {
	log := logger.FromContext(ctx)
	if err := s.repo.Append(ctx, entry); err != nil {
		log.Error(LogMsgFailedToLogEvent, LogFieldError, err, LogFieldType, entry.EventType)
		metrics.JournalWrites.WithLabelValues(WriteStatusError).Inc()
		return err
	}
	metrics.JournalWrites.WithLabelValues(WriteStatusOK).Inc()
	log.Debug(LogMsgEventLogged, LogFieldType, entry.EventType)
	return nil
}

func entryFromEvent(evt event.Event) (Entry, error) {
	var body any = evt.Payload
	if evt.Type == event.ItemsSnapshot {
		snap, err := event.DecodePayload[event.ItemsSnapshotPayloadV1](evt.Payload)
		if err != nil {
			return Entry{}, err
		}
		body = snapshotSummary{Version: snap.Version, Count: snap.Count}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return Entry{}, err
	}

	metadata := make(map[string]interface{}, len(evt.Metadata)+1)
	for k, v := range evt.Metadata {
		metadata[k] = v
	}
	metadata[MetadataKeySchemaVersion] = evt.Version

	createdAt := evt.Timestamp
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	return Entry{
		EventType: string(evt.Type),
		Payload:   payload,
		Metadata:  metadata,
		CreatedAt: createdAt.UTC(),
	}, nil
}

// Recent returns the newest entries, clamping limit to a sane range.
func (s *service) Recent(ctx context.Context, eventType string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > MaxRecentLimit {
		limit = MaxRecentLimit
	}
	filter := Filter{Limit: limit}
	if eventType != "" {
		filter.EventType = &eventType
	}
	return s.repo.Recent(ctx, filter)
}

// CleanupOldEntries removes entries older than the retention period
func (s *service) CleanupOldEntries(ctx context.Context, retentionDays int) (int64, error) {
	return s.repo.CleanupOldEntries(ctx, retentionDays)
}

func (s *service) Close() {
	s.pool.Stop()
}

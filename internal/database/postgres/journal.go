package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/marketsync/internal/journal"
)

type journalRepository struct {
	db *pgxpool.Pool
}

// NewJournalRepository creates a new PostgreSQL journal repository
func NewJournalRepository(db *pgxpool.Pool) journal.Repository {
	return &journalRepository{db: db}
}

// Append stores an entry in the database
func (r *journalRepository) Append(ctx context.Context, entry journal.Entry) error {
	query := `
		INSERT INTO feed_journal (event_type, payload, metadata, created_at)
		VALUES ($1, $2, $3, $4)
	`

	var metadataJSON []byte
	if entry.Metadata != nil {
		var err error
		metadataJSON, err = json.Marshal(entry.Metadata)
		if err != nil {
			return err
		}
	}

	_, err := r.db.Exec(ctx, query, entry.EventType, []byte(entry.Payload), metadataJSON, entry.CreatedAt)
	return err
}

// Recent retrieves entries newest first based on filter criteria
func (r *journalRepository) Recent(ctx context.Context, filter journal.Filter) ([]journal.Entry, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
		SELECT id, event_type, payload, metadata, created_at
		FROM feed_journal
		WHERE 1=1`)

	args := []interface{}{}
	argNum := 1

	if filter.EventType != nil {
		fmt.Fprintf(&queryBuilder, " AND event_type = $%d", argNum)
		args = append(args, *filter.EventType)
		argNum++
	}

	if filter.Since != nil {
		fmt.Fprintf(&queryBuilder, " AND created_at >= $%d", argNum)
		args = append(args, *filter.Since)
		argNum++
	}

	queryBuilder.WriteString(" ORDER BY created_at DESC, id DESC")

	if filter.Limit > 0 {
		fmt.Fprintf(&queryBuilder, " LIMIT $%d", argNum)
		args = append(args, filter.Limit)
	}

	rows, err := r.db.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEntries(rows)
}

// CleanupOldEntries removes entries older than the specified number of days
func (r *journalRepository) CleanupOldEntries(ctx context.Context, retentionDays int) (int64, error) {
	query := `
		DELETE FROM feed_journal
		WHERE created_at < NOW() - INTERVAL '1 day' * $1
	`

	result, err := r.db.Exec(ctx, query, retentionDays)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected(), nil
}

func scanEntries(rows pgx.Rows) ([]journal.Entry, error) {
	var entries []journal.Entry

	for rows.Next() {
		var entry journal.Entry
		var payloadJSON, metadataJSON []byte

		err := rows.Scan(
			&entry.ID,
			&entry.EventType,
			&payloadJSON,
			&metadataJSON,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		entry.Payload = json.RawMessage(payloadJSON)

		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &entry.Metadata); err != nil {
				return nil, err
			}
		}

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

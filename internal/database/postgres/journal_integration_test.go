package postgres

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/osse101/marketsync/internal/database"
	"github.com/osse101/marketsync/internal/journal"
)

func TestJournalRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	var pgContainer *postgres.PostgresContainer
	var err error

	func() {
		defer func() {
			if r := recover(); r != nil {
				t.Skipf("Skipping integration test due to panic (likely Docker issue): %v", r)
			}
		}()
		pgContainer, err = postgres.Run(ctx,
			"postgres:15-alpine",
			postgres.WithDatabase("testdb"),
			postgres.WithUsername("testuser"),
			postgres.WithPassword("testpass"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(30*time.Second)),
		)
	}()
	if err != nil {
		t.Skipf("Skipping integration test: failed to start postgres container: %v", err)
	}
	if pgContainer == nil {
		return
	}
	defer func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Errorf("failed to terminate container: %v", err)
		}
	}()

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := database.NewPool(ctx, connStr, database.DefaultPoolOptions())
	require.NoError(t, err)
	defer pool.Close()

	require.NoError(t, database.Migrate(ctx, pool))

	repo := NewJournalRepository(pool)
	base := time.Now().UTC().Truncate(time.Millisecond)

	entries := []journal.Entry{
		{EventType: "connection.state", Payload: json.RawMessage(`{"state":"connecting"}`), CreatedAt: base},
		{EventType: "connection.state", Payload: json.RawMessage(`{"state":"connected"}`), CreatedAt: base.Add(time.Second)},
		{EventType: "connection.alert", Payload: json.RawMessage(`{"reason":"network_unreachable"}`),
			Metadata: map[string]interface{}{"schema_version": "1.0"}, CreatedAt: base.Add(2 * time.Second)},
		{EventType: "items.snapshot", Payload: json.RawMessage(`{"version":1,"count":0}`), CreatedAt: base.AddDate(0, 0, -30)},
	}
	for _, e := range entries {
		require.NoError(t, repo.Append(ctx, e))
	}

	t.Run("Recent orders newest first", func(t *testing.T) {
		got, err := repo.Recent(ctx, journal.Filter{Limit: 3})
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "connection.alert", got[0].EventType)
		assert.Equal(t, "1.0", got[0].Metadata["schema_version"])
		assert.JSONEq(t, `{"state":"connected"}`, string(got[1].Payload))
		assert.Nil(t, got[1].Metadata)
	})

	t.Run("Recent filters by type", func(t *testing.T) {
		eventType := "connection.state"
		got, err := repo.Recent(ctx, journal.Filter{EventType: &eventType})
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("Recent filters by time", func(t *testing.T) {
		since := base.Add(time.Second)
		got, err := repo.Recent(ctx, journal.Filter{Since: &since})
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("Cleanup removes old entries", func(t *testing.T) {
		deleted, err := repo.CleanupOldEntries(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, int64(1), deleted)

		got, err := repo.Recent(ctx, journal.Filter{})
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})
}

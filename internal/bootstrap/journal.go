package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/marketsync/internal/config"
	"github.com/osse101/marketsync/internal/database"
	"github.com/osse101/marketsync/internal/database/postgres"
	"github.com/osse101/marketsync/internal/journal"
	"github.com/osse101/marketsync/internal/scheduler"
	"github.com/osse101/marketsync/internal/worker"
)

// Journal holds the persistence components that exist only when a database
// is configured.
type Journal struct {
	Pool      *pgxpool.Pool
	Service   journal.Service
	jobs      *worker.Pool
	scheduler *scheduler.Scheduler
}

// InitializeJournal connects to cfg.DatabaseURL, applies migrations and
// starts the writer service plus the periodic retention cleanup. It returns
// nil, nil when the journal is disabled.
func InitializeJournal(ctx context.Context, cfg *config.Config) (*Journal, error) {
	if !cfg.JournalEnabled() {
		slog.Info(LogMsgJournalDisabled)
		return nil, nil
	}

	pool, err := database.NewPool(ctx, cfg.DatabaseURL, database.DefaultPoolOptions())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedConnectDB, err)
	}

	if err := database.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedMigrate, err)
	}

	svc := journal.NewService(postgres.NewJournalRepository(pool), cfg.JournalWorkers)

	jobs := worker.NewPool(JobPoolName, 1, JobPoolQueueSize)
	jobs.Start()
	sched := scheduler.New(jobs)
	scheduleJournalCleanup(sched, svc, cfg.JournalRetentionDays)

	slog.Info(LogMsgJournalInitialized,
		"workers", cfg.JournalWorkers,
		"retention_days", cfg.JournalRetentionDays,
		"cleanup_interval", JournalCleanupInterval)

	return &Journal{Pool: pool, Service: svc, jobs: jobs, scheduler: sched}, nil
}

// scheduleJournalCleanup registers the daily retention job. A retention of
// zero keeps every entry, so nothing is scheduled.
func scheduleJournalCleanup(sched *scheduler.Scheduler, svc journal.Service, retentionDays int) bool {
	if retentionDays <= 0 {
		slog.Info(LogMsgJournalRetentionOff)
		return false
	}
	sched.Schedule(JournalCleanupInterval, journal.NewCleanupJob(svc, retentionDays))
	return true
}

// Reader returns the journal as a read interface, or nil when j is nil so
// callers never hold a typed nil.
func (j *Journal) Reader() journal.Service {
	if j == nil {
		return nil
	}
	return j.Service
}

// DBPool returns the pool for readiness checks, or nil when j is nil.
func (j *Journal) DBPool() database.Pool {
	if j == nil {
		return nil
	}
	return j.Pool
}

// Close stops scheduled cleanup, drains queued writes and closes the pool.
// It is safe on a nil Journal.
func (j *Journal) Close() {
	if j == nil {
		return
	}
	j.scheduler.Stop()
	j.jobs.Stop()
	j.Service.Close()
	j.Pool.Close()
}

package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/osse101/marketsync/internal/testing/leaktest"
	"github.com/osse101/marketsync/internal/worker"
)

// MockJob is a simple job for testing
type MockJob struct {
	RunCount atomic.Int32
	Done     chan struct{}
}

func (m *MockJob) Process(ctx context.Context) error {
	m.RunCount.Add(1)
	select {
	case m.Done <- struct{}{}:
	default:
	}
	return nil
}

func TestScheduler(t *testing.T) {
	pool := worker.NewPool("sched-test", 1, 10)
	pool.Start()
	defer pool.Stop()

	sched := New(pool)
	defer sched.Stop()

	job := &MockJob{
		Done: make(chan struct{}, 10),
	}

	sched.Schedule(10*time.Millisecond, job)

	timeout := time.After(time.Second)
	runCount := 0

	for runCount < 2 {
		select {
		case <-job.Done:
			runCount++
		case <-timeout:
			t.Fatal("Timeout waiting for job execution")
		}
	}

	assert.GreaterOrEqual(t, runCount, 2)
}

func TestScheduler_StopIsIdempotentAndLeakFree(t *testing.T) {
	checker := leaktest.NewGoroutineChecker(t)

	pool := worker.NewPool("sched-stop", 1, 10)
	pool.Start()
	sched := New(pool)
	sched.Schedule(time.Hour, &MockJob{Done: make(chan struct{}, 1)})

	sched.Stop()
	sched.Stop()
	pool.Stop()

	checker.Check(0)
}

func TestScheduler_StopsWhenPoolStopped(t *testing.T) {
	pool := worker.NewPool("sched-pool-stopped", 1, 10)
	pool.Start()
	pool.Stop()

	sched := New(pool)
	sched.Schedule(5*time.Millisecond, &MockJob{Done: make(chan struct{}, 1)})

	done := make(chan struct{})
	go func() {
		sched.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduled loop kept running after the pool stopped")
	}
	sched.Stop()
}

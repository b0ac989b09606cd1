package worker

import (
	"context"
	"log/slog"
	"sync"

	"github.com/osse101/marketsync/internal/logger"
)

// Job represents a task to be executed by a worker
type Job interface {
	Process(ctx context.Context) error
}

// JobFunc adapts a plain function to Job.
type JobFunc func(ctx context.Context) error

// Process implements Job
func (f JobFunc) Process(ctx context.Context) error {
	return f(ctx)
}

// Pool represents a worker pool. A pool with a single worker runs jobs in
// enqueue order.
type Pool struct {
	name     string
	workers  int
	jobQueue chan Job
	wg       sync.WaitGroup
	quit     chan struct{}
	ctx      context.Context
	cancel   context.CancelFunc
	log      *slog.Logger

	mu      sync.RWMutex
	started bool
	stopped bool
}

// NewPool creates a new worker pool
func NewPool(name string, workers int, queueSize int) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		name:     name,
		workers:  workers,
		jobQueue: make(chan Job, queueSize),
		quit:     make(chan struct{}),
		ctx:      ctx,
		cancel:   cancel,
		log:      slog.Default().With("pool", name),
	}
}

// Start starts the workers. Calling it more than once is a no-op.
func (p *Pool) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.stopped {
		return
	}
	p.started = true

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	p.log.Debug(LogMsgPoolStarted, "workers", p.workers)
}

// worker is the worker loop
func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case job := <-p.jobQueue:
			p.run(job)
		case <-p.quit:
			// Enqueue cannot add work once stopped is set, so this drains everything.
			for {
				select {
				case job := <-p.jobQueue:
					p.run(job)
				default:
					return
				}
			}
		}
	}
}

func (p *Pool) run(job Job) {
	ctx := logger.WithSessionID(p.ctx, p.name)
	defer func() {
		if r := recover(); r != nil {
			p.log.Error(LogMsgWorkerPanic, "panic", r)
		}
	}()
	if err := job.Process(ctx); err != nil {
		// Log error but don't crash worker
		p.log.Error(LogMsgWorkerJobFailed, "error", err)
	}
}

// Enqueue adds a job to the queue, blocking while the queue is full.
// It returns ErrPoolStopped after Stop.
func (p *Pool) Enqueue(job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrPoolStopped
	}
	p.jobQueue <- job
	return nil
}

// EnqueueFunc is Enqueue for a plain function.
func (p *Pool) EnqueueFunc(fn func(ctx context.Context) error) error {
	return p.Enqueue(JobFunc(fn))
}

// Stop stops the workers after the queued jobs finish and waits for them.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	started := p.started
	p.mu.Unlock()

	close(p.quit)
	if started {
		p.wg.Wait()
	}
	p.cancel()
	p.log.Debug(LogMsgPoolStopped)
}

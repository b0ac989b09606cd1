package feed

import (
	"context"

	"github.com/osse101/marketsync/internal/worker"
)

// Dispatcher decides where subscriber callbacks run.
type Dispatcher interface {
	Dispatch(fn func())
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(fn func())

// Dispatch implements Dispatcher
func (f DispatcherFunc) Dispatch(fn func()) { f(fn) }

// Inline runs callbacks on the publishing goroutine.
var Inline Dispatcher = DispatcherFunc(func(fn func()) { fn() })

// SubscribeOption customizes a subscription.
type SubscribeOption func(*subscribeOptions)

type subscribeOptions struct {
	dispatcher Dispatcher
}

// WithDispatcher delivers the subscription's callbacks through d.
func WithDispatcher(d Dispatcher) SubscribeOption {
	return func(o *subscribeOptions) {
		if d != nil {
			o.dispatcher = d
		}
	}
}

func resolveOptions(opts []SubscribeOption) subscribeOptions {
	o := subscribeOptions{dispatcher: Inline}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// SerialDispatcher runs callbacks one at a time, in order, on a dedicated
// worker. Use it to keep slow consumers off the feed's goroutines.
type SerialDispatcher struct {
	pool *worker.Pool
}

// NewSerialDispatcher starts a single-worker dispatcher.
func NewSerialDispatcher(name string, queueSize int) *SerialDispatcher {
	pool := worker.NewPool(name, 1, queueSize)
	pool.Start()
	return &SerialDispatcher{pool: pool}
}

// Dispatch queues fn. Callbacks queued after Close are dropped.
func (d *SerialDispatcher) Dispatch(fn func()) {
	_ = d.pool.EnqueueFunc(func(context.Context) error {
		fn()
		return nil
	})
}

// Close runs what is queued and stops the worker.
func (d *SerialDispatcher) Close() {
	d.pool.Stop()
}

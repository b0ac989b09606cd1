package reachability

import (
	"context"
	"sync"
)

// Monitor reports whether the network path to the feed is usable.
type Monitor interface {
	Start(ctx context.Context)
	Stop()
	IsReachable() bool
	// Subscribe registers fn for changes only. The returned func removes it.
	Subscribe(fn func(reachable bool)) (cancel func())
}

// notifier holds subscribers and the last published value.
type notifier struct {
	mu        sync.Mutex
	reachable bool
	subs      map[uint64]func(bool)
	order     []uint64
	nextID    uint64
	// deliverMu keeps deliveries in publish order.
	deliverMu sync.Mutex
}

func newNotifier(initial bool) *notifier {
	return &notifier{reachable: initial, subs: make(map[uint64]func(bool))}
}

func (n *notifier) get() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.reachable
}

func (n *notifier) subscribe(fn func(bool)) func() {
	n.mu.Lock()
	n.nextID++
	id := n.nextID
	n.subs[id] = fn
	n.order = append(n.order, id)
	n.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			delete(n.subs, id)
			for i, v := range n.order {
				if v == id {
					n.order = append(n.order[:i:i], n.order[i+1:]...)
					break
				}
			}
		})
	}
}

// set stores v and notifies subscribers when it changed.
func (n *notifier) set(v bool) bool {
	n.deliverMu.Lock()
	defer n.deliverMu.Unlock()

	n.mu.Lock()
	if n.reachable == v {
		n.mu.Unlock()
		return false
	}
	n.reachable = v
	fns := make([]func(bool), 0, len(n.order))
	for _, id := range n.order {
		fns = append(fns, n.subs[id])
	}
	n.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
	return true
}

// Static is a Monitor whose value is set by hand. It backs deployments
// without a probe target and tests.
type Static struct {
	n *notifier
}

// NewStatic returns a Static monitor with the given initial value.
func NewStatic(reachable bool) *Static {
	return &Static{n: newNotifier(reachable)}
}

func (s *Static) Start(context.Context) {}

func (s *Static) Stop() {}

func (s *Static) IsReachable() bool { return s.n.get() }

func (s *Static) Subscribe(fn func(bool)) func() { return s.n.subscribe(fn) }

// Set changes the value and notifies subscribers if it differs.
func (s *Static) Set(reachable bool) { s.n.set(reachable) }

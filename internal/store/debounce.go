package store

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of snapshots. It emits the newest pending
// snapshot once no notification arrived for Window, or once MaxWait passed
// since the first pending one, whichever comes first.
type Debouncer struct {
	window  time.Duration
	maxWait time.Duration

	// emitMu keeps deliveries from overlapping so listeners see versions in
	// increasing order.
	emitMu sync.Mutex

	mu          sync.Mutex
	pending     *Snapshot
	firstAt     time.Time
	timer       *time.Timer
	seq         uint64
	lastEmitted uint64
	hasEmitted  bool
	listeners   listeners
	closed      bool
}

// NewDebouncer creates a Debouncer. A maxWait smaller than window disables
// the cap.
func NewDebouncer(window, maxWait time.Duration) *Debouncer {
	if window <= 0 {
		window = DefaultDebounceWindow
	}
	if maxWait < window {
		maxWait = 0
	}
	return &Debouncer{window: window, maxWait: maxWait}
}

// Subscribe registers fn for debounced snapshots.
func (d *Debouncer) Subscribe(fn Listener) (cancel func()) {
	d.mu.Lock()
	id := d.listeners.add(fn)
	d.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			d.mu.Lock()
			defer d.mu.Unlock()
			d.listeners.remove(id)
		})
	}
}

// Notify records a raw snapshot and restarts the quiet-period timer.
func (d *Debouncer) Notify(s Snapshot) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}

	now := time.Now()
	if d.pending == nil {
		d.firstAt = now
		d.pending = &s
	} else if s.Version > d.pending.Version {
		d.pending = &s
	}

	delay := d.window
	if d.maxWait > 0 {
		if remaining := d.maxWait - now.Sub(d.firstAt); remaining < delay {
			delay = remaining
		}
		if delay < 0 {
			delay = 0
		}
	}

	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	seq := d.seq
	d.timer = time.AfterFunc(delay, func() { d.fire(seq) })
}

// Flush emits the pending snapshot now, if any.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	seq := d.seq
	d.mu.Unlock()
	d.fire(seq)
}

// Close stops the timer and drops anything pending.
func (d *Debouncer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	d.pending = nil
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
}

func (d *Debouncer) fire(seq uint64) {
	d.emitMu.Lock()
	defer d.emitMu.Unlock()

	d.mu.Lock()
	if seq != d.seq || d.pending == nil {
		d.mu.Unlock()
		return
	}
	snap := *d.pending
	d.pending = nil
	d.timer = nil
	if d.hasEmitted && snap.Version <= d.lastEmitted {
		d.mu.Unlock()
		return
	}
	d.hasEmitted = true
	d.lastEmitted = snap.Version
	subs := d.listeners.snapshot()
	d.mu.Unlock()

	for _, sub := range subs {
		sub.fn(snap)
	}
}

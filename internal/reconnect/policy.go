package reconnect

import (
	"log/slog"
	"sync"
	"time"

	"github.com/osse101/marketsync/internal/domain"
	"github.com/osse101/marketsync/internal/metrics"
)

// State is the policy's view of what the user asked for.
type State int

const (
	Idle State = iota
	ManuallyConnected
	AwaitingAutoReconnect
)

// String implements fmt.Stringer
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case ManuallyConnected:
		return "manually_connected"
	case AwaitingAutoReconnect:
		return "awaiting_auto_reconnect"
	}
	return "unknown"
}

// Connector is the connection side the policy drives.
type Connector interface {
	Connect()
	Disconnect()
	State() domain.ConnectionState
}

// Reachability reports whether the network is currently usable.
type Reachability interface {
	IsReachable() bool
}

// Options configure reconnect-on-drop.
type Options struct {
	ReconnectOnDrop bool
	InitialDelay    time.Duration
	MaxDelay        time.Duration
	MaxFailures     int
}

// DefaultOptions returns the stock backoff settings.
func DefaultOptions() Options {
	return Options{
		ReconnectOnDrop: true,
		InitialDelay:    DefaultInitialDelay,
		MaxDelay:        DefaultMaxDelay,
		MaxFailures:     DefaultMaxFailures,
	}
}

// Observer receives policy state changes.
type Observer func(state, previous State)

// AlertFunc receives "no connection" alerts.
type AlertFunc func(reason string)

type notification struct {
	isAlert  bool
	state    State
	previous State
	reason   string
}

// Policy decides when to connect and disconnect based on user intents,
// reachability and connection state. It never holds its lock while calling
// the Connector or its observers.
type Policy struct {
	conn  Connector
	reach Reachability
	opts  Options
	log   *slog.Logger

	mu        sync.Mutex
	state     State
	failures  int
	dormant   bool
	closed    bool
	timer     *time.Timer
	timerSeq  uint64
	observers []Observer
	alerts    []AlertFunc
	pending   []notification
	flushing  bool
}

// New creates an Idle policy.
func New(conn Connector, reach Reachability, opts Options) *Policy {
	if opts.InitialDelay <= 0 {
		opts.InitialDelay = DefaultInitialDelay
	}
	if opts.MaxDelay < opts.InitialDelay {
		opts.MaxDelay = opts.InitialDelay
	}
	if opts.MaxFailures <= 0 {
		opts.MaxFailures = DefaultMaxFailures
	}
	return &Policy{
		conn:  conn,
		reach: reach,
		opts:  opts,
		state: Idle,
		log:   slog.Default().With("component", "reconnect"),
	}
}

// State returns the current policy state.
func (p *Policy) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Dormant reports whether reconnect-on-drop gave up.
func (p *Policy) Dormant() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dormant
}

// Observe registers fn for state changes. Register before use; there is no
// removal since the policy lives as long as its owner.
func (p *Policy) Observe(fn Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, fn)
}

// OnAlert registers fn for "no connection" alerts.
func (p *Policy) OnAlert(fn AlertFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alerts = append(p.alerts, fn)
}

// Connect is the user's connect intent.
func (p *Policy) Connect() {
	active := p.conn.State().Active()
	reachable := p.reach.IsReachable()

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.resetBackoffLocked()
	if !active && !reachable {
		p.setStateLocked(Idle)
		p.alertLocked(AlertConnectWhileOffline)
		p.mu.Unlock()
		p.flush()
		return
	}
	p.setStateLocked(ManuallyConnected)
	p.mu.Unlock()

	if !active {
		p.conn.Connect()
	}
	p.flush()
}

// Disconnect is the user's disconnect intent. Auto-reconnect is disabled.
func (p *Policy) Disconnect() {
	p.mu.Lock()
	p.resetBackoffLocked()
	p.setStateLocked(Idle)
	p.mu.Unlock()

	if p.conn.State().Active() {
		p.conn.Disconnect()
	}
	p.flush()
}

// Suspend disconnects and arms auto-restore. It does nothing unless a
// session is active or the user asked for one.
func (p *Policy) Suspend() {
	active := p.conn.State().Active()

	p.mu.Lock()
	if !active && p.state != ManuallyConnected {
		p.mu.Unlock()
		return
	}
	p.resetBackoffLocked()
	p.setStateLocked(AwaitingAutoReconnect)
	p.mu.Unlock()

	if active {
		p.conn.Disconnect()
	}
	p.flush()
}

// Resume reconnects when auto-restore is armed and the network is up;
// otherwise it alerts and stays armed.
func (p *Policy) Resume() {
	reachable := p.reach.IsReachable()

	p.mu.Lock()
	if p.closed || p.state != AwaitingAutoReconnect {
		p.mu.Unlock()
		return
	}
	if !reachable {
		p.alertLocked(AlertResumeWhileOffline)
		p.mu.Unlock()
		p.flush()
		return
	}
	p.resetBackoffLocked()
	p.setStateLocked(ManuallyConnected)
	p.mu.Unlock()

	p.conn.Connect()
	p.flush()
}

// OnReachabilityChanged handles a reachability transition. Losing the
// network while connected disconnects and alerts without arming
// auto-restore; regaining it does not reconnect by itself.
func (p *Policy) OnReachabilityChanged(reachable bool) {
	if reachable {
		return
	}
	active := p.conn.State().Active()

	p.mu.Lock()
	if !active && p.state != ManuallyConnected {
		p.mu.Unlock()
		return
	}
	p.resetBackoffLocked()
	p.setStateLocked(Idle)
	p.alertLocked(AlertNetworkUnreachable)
	p.mu.Unlock()

	if active {
		p.conn.Disconnect()
	}
	p.flush()
}

// OnConnectionState observes the connection manager. A drop or failed open
// while the user wants to be connected schedules a backoff reconnect.
func (p *Policy) OnConnectionState(state, previous domain.ConnectionState) {
	switch state {
	case domain.Connected:
		p.mu.Lock()
		p.resetBackoffLocked()
		p.mu.Unlock()
	case domain.NotConnected:
		if previous != domain.Connecting && previous != domain.Disconnected {
			return
		}
		p.scheduleReconnect()
	}
}

func (p *Policy) scheduleReconnect() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || !p.opts.ReconnectOnDrop || p.state != ManuallyConnected || p.dormant {
		return
	}
	p.failures++
	if p.failures > p.opts.MaxFailures {
		p.dormant = true
		p.log.Warn(LogMsgGivingUp, "failures", p.failures-1)
		return
	}

	delay := p.backoffLocked()
	p.stopTimerLocked()
	p.timerSeq++
	seq := p.timerSeq
	p.timer = time.AfterFunc(delay, func() { p.attempt(seq) })
	p.log.Info(LogMsgScheduling, "attempt", p.failures, "backoff", delay)
}

func (p *Policy) attempt(seq uint64) {
	p.mu.Lock()
	if p.closed || seq != p.timerSeq || p.state != ManuallyConnected {
		p.mu.Unlock()
		return
	}
	p.timer = nil
	p.mu.Unlock()

	// An unreachable network counts as a failed attempt so the backoff
	// continues and eventually goes dormant.
	if !p.reach.IsReachable() {
		p.log.Info(LogMsgSkipUnreachable)
		p.scheduleReconnect()
		return
	}
	if p.conn.State().Active() {
		return
	}
	metrics.ReconnectAttempts.Inc()
	p.log.Info(LogMsgAttempting)
	p.conn.Connect()
}

func (p *Policy) backoffLocked() time.Duration {
	delay := p.opts.InitialDelay
	for i := 1; i < p.failures; i++ {
		delay = time.Duration(float64(delay) * BackoffMultiplier)
		if delay >= p.opts.MaxDelay {
			return p.opts.MaxDelay
		}
	}
	return delay
}

func (p *Policy) resetBackoffLocked() {
	p.stopTimerLocked()
	p.timerSeq++
	p.failures = 0
	p.dormant = false
}

func (p *Policy) stopTimerLocked() {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

// Close cancels any pending reconnect. A closed policy never schedules
// another one, whatever connection state it observes afterwards.
func (p *Policy) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.stopTimerLocked()
	p.timerSeq++
}

func (p *Policy) setStateLocked(next State) {
	prev := p.state
	if prev == next {
		return
	}
	p.state = next
	p.pending = append(p.pending, notification{state: next, previous: prev})
	p.log.Info(LogMsgPolicyTransition, "from", prev.String(), "to", next.String())
}

func (p *Policy) alertLocked(reason string) {
	p.pending = append(p.pending, notification{isAlert: true, reason: reason})
	p.log.Warn(LogMsgNoConnection, "reason", reason)
}

func (p *Policy) flush() {
	p.mu.Lock()
	if p.flushing {
		p.mu.Unlock()
		return
	}
	p.flushing = true
	for len(p.pending) > 0 {
		n := p.pending[0]
		p.pending = p.pending[1:]
		observers := append([]Observer(nil), p.observers...)
		alerts := append([]AlertFunc(nil), p.alerts...)
		p.mu.Unlock()

		if n.isAlert {
			for _, fn := range alerts {
				fn(n.reason)
			}
		} else {
			for _, fn := range observers {
				fn(n.state, n.previous)
			}
		}

		p.mu.Lock()
	}
	p.flushing = false
	p.mu.Unlock()
}

package connection

import (
	"context"
	"log/slog"
	"sync"

	"github.com/osse101/marketsync/internal/domain"
	"github.com/osse101/marketsync/internal/metrics"
)

// Observer is notified of every state transition, in order.
type Observer func(state, previous domain.ConnectionState)

type transition struct {
	state    domain.ConnectionState
	previous domain.ConnectionState
}

type observerEntry struct {
	id uint64
	fn Observer
}

// Manager owns the connection state machine for one EventChannel.
//
// Transitions are queued under mu and delivered by whichever goroutine is
// flushing, so an observer that triggers a new transition sees it delivered
// right after the current one instead of deadlocking or reordering.
type Manager struct {
	channel  EventChannel
	attacher Attacher
	log      *slog.Logger

	// opMu serializes Connect and Disconnect. It is never held while
	// observers run.
	opMu sync.Mutex

	mu        sync.Mutex
	state     domain.ConnectionState
	session   uint64
	observers []observerEntry
	nextID    uint64
	pending   []transition
	flushing  bool
}

// NewManager creates a Manager in the NotConnected state.
func NewManager(channel EventChannel, attacher Attacher) *Manager {
	m := &Manager{
		channel:  channel,
		attacher: attacher,
		state:    domain.NotConnected,
		log:      slog.Default().With("component", "connection"),
	}
	if attacher != nil {
		attacher.SetLifecycleHook(m.installLifecycleHandlers)
	}
	return m
}

// State returns the current connection state.
func (m *Manager) State() domain.ConnectionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Observe registers fn for state transitions. The returned func removes it.
func (m *Manager) Observe(fn Observer) (cancel func()) {
	m.mu.Lock()
	m.nextID++
	id := m.nextID
	m.observers = append(m.observers, observerEntry{id: id, fn: fn})
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			for i, o := range m.observers {
				if o.id == id {
					m.observers = append(m.observers[:i:i], m.observers[i+1:]...)
					return
				}
			}
		})
	}
}

// Connect starts a session unless one is already connecting or connected.
// It returns without waiting for the channel to come up.
func (m *Manager) Connect() {
	m.opMu.Lock()

	m.mu.Lock()
	if m.state.Active() {
		m.mu.Unlock()
		m.opMu.Unlock()
		m.log.Debug(LogMsgConnectIgnored, "state", m.State().String())
		return
	}
	m.session++
	session := m.session
	m.setStateLocked(domain.Connecting)
	m.mu.Unlock()

	m.channel.RemoveAllHandlers()
	m.installLifecycleHandlers()
	err := m.channel.Open(context.Background())
	m.opMu.Unlock()

	if err != nil {
		m.log.Warn(LogMsgOpenFailed, "error", err)
		m.openFailed(session)
	}
	m.flush()
}

// Disconnect tears the session down. Safe to call at any time.
func (m *Manager) Disconnect() {
	m.opMu.Lock()

	m.mu.Lock()
	if !m.state.Active() {
		m.mu.Unlock()
		m.opMu.Unlock()
		m.log.Debug(LogMsgDisconnectIgnored)
		return
	}
	// Bump the session first so a concurrent connect callback backs off.
	m.session++
	m.mu.Unlock()

	if m.attacher != nil {
		m.attacher.Detach()
	}
	m.channel.RemoveAllHandlers()
	if err := m.channel.Close(); err != nil {
		m.log.Warn(LogMsgCloseFailed, "error", err)
	}

	m.mu.Lock()
	if m.state.Active() {
		m.setStateLocked(domain.Disconnected)
		m.setStateLocked(domain.NotConnected)
	}
	m.mu.Unlock()
	m.opMu.Unlock()

	m.flush()
}

func (m *Manager) installLifecycleHandlers() {
	m.mu.Lock()
	session := m.session
	m.mu.Unlock()

	m.channel.On(EventConnect, func(_ []byte) { m.onOpen(session) })
	m.channel.On(EventDisconnect, func(_ []byte) { m.onClose(session) })
	m.channel.On(EventStatusChange, func(payload []byte) { m.onStatusChange(session, payload) })
}

func (m *Manager) onOpen(session uint64) {
	m.mu.Lock()
	if session != m.session || m.state != domain.Connecting {
		m.mu.Unlock()
		m.log.Debug(LogMsgStaleLifecycle, "event", EventConnect)
		return
	}
	m.setStateLocked(domain.Connected)
	m.mu.Unlock()

	if m.attacher != nil {
		m.attacher.Attach(m.channel)

		m.mu.Lock()
		ended := session != m.session
		m.mu.Unlock()
		if ended {
			m.log.Debug(LogMsgSessionAttachUndone)
			m.attacher.Detach()
		}
	}
	m.flush()
}

func (m *Manager) onClose(session uint64) {
	m.mu.Lock()
	if session != m.session || !m.state.Active() {
		m.mu.Unlock()
		m.log.Debug(LogMsgStaleLifecycle, "event", EventDisconnect)
		return
	}
	m.session++
	m.setStateLocked(domain.Disconnected)
	m.setStateLocked(domain.NotConnected)
	m.mu.Unlock()

	if m.attacher != nil {
		m.attacher.Detach()
	}
	m.flush()
}

func (m *Manager) onStatusChange(session uint64, payload []byte) {
	status, err := domain.ParseChannelStatus(payload)
	if err != nil {
		m.log.Warn(LogMsgBadStatusPayload, "error", err)
		return
	}
	m.log.Debug(LogMsgChannelStatus, "status", string(status))

	if status.Active() {
		return
	}
	m.openFailed(session)
	m.flush()
}

// openFailed moves a session that never came up straight to NotConnected.
func (m *Manager) openFailed(session uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if session != m.session || m.state != domain.Connecting {
		return
	}
	m.session++
	m.setStateLocked(domain.NotConnected)
}

// setStateLocked records a transition. Callers must hold mu and call flush
// after releasing it.
func (m *Manager) setStateLocked(next domain.ConnectionState) {
	prev := m.state
	m.state = next
	m.pending = append(m.pending, transition{state: next, previous: prev})

	label, _ := next.MarshalText()
	metrics.ConnectionTransitions.WithLabelValues(string(label)).Inc()
	m.log.Info(LogMsgStateTransition, "from", prev.String(), "to", next.String())
}

func (m *Manager) flush() {
	m.mu.Lock()
	if m.flushing {
		m.mu.Unlock()
		return
	}
	m.flushing = true
	for len(m.pending) > 0 {
		tr := m.pending[0]
		m.pending = m.pending[1:]
		observers := append([]observerEntry(nil), m.observers...)
		m.mu.Unlock()

		for _, o := range observers {
			o.fn(tr.state, tr.previous)
		}

		m.mu.Lock()
	}
	m.flushing = false
	m.mu.Unlock()
}

package feed

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/osse101/marketsync/internal/connection"
	"github.com/osse101/marketsync/internal/diagnostics"
	"github.com/osse101/marketsync/internal/domain"
	"github.com/osse101/marketsync/internal/event"
	"github.com/osse101/marketsync/internal/reachability"
	"github.com/osse101/marketsync/internal/reconnect"
	"github.com/osse101/marketsync/internal/store"
	"github.com/osse101/marketsync/internal/subscription"
)

// TopicPersister stores the desired topics between runs.
type TopicPersister interface {
	SaveTopics(topics domain.TopicSet) error
}

// Config describes what the coordinator syncs and how.
type Config struct {
	Topics            domain.TopicSet
	ItemKinds         []domain.ItemEventKind
	Store             store.Options
	Reconnect         reconnect.Options
	ClearOnDisconnect bool
	DiagnosticsSize   int
	DiagnosticsTTL    time.Duration
}

// DefaultConfig syncs every topic and every item event kind.
func DefaultConfig() Config {
	return Config{
		Topics:          domain.NewTopicSet(domain.AllTopics...),
		ItemKinds:       append([]domain.ItemEventKind(nil), domain.AllItemEventKinds...),
		Store:           store.DefaultOptions(),
		Reconnect:       reconnect.DefaultOptions(),
		DiagnosticsSize: diagnostics.DefaultSize,
		DiagnosticsTTL:  diagnostics.DefaultTTL,
	}
}

// Option customizes a Coordinator.
type Option func(*Coordinator)

// WithBus publishes outputs on bus instead of a private MemoryBus.
func WithBus(bus event.Bus) Option {
	return func(c *Coordinator) {
		if bus != nil {
			c.bus = bus
		}
	}
}

// WithTopicPersister saves topics passed to SetTopics.
func WithTopicPersister(p TopicPersister) Option {
	return func(c *Coordinator) { c.persister = p }
}

// Status is a point-in-time summary of the coordinator.
type Status struct {
	Connection     domain.ConnectionState `json:"connection"`
	Policy         string                 `json:"policy"`
	Dormant        bool                   `json:"dormant"`
	Reachable      bool                   `json:"reachable"`
	Topics         []string               `json:"topics"`
	ActiveTopics   []string               `json:"active_topics"`
	ItemCount      int                    `json:"item_count"`
	DecodeFailures uint64                 `json:"decode_failures"`
}

// Coordinator wires the connection, subscriptions, store, reconnect policy
// and reachability monitor together. It is the only type consumers use.
type Coordinator struct {
	cfg       Config
	monitor   reachability.Monitor
	bus       event.Bus
	persister TopicPersister
	log       *slog.Logger

	diagnostics *diagnostics.Recorder
	store       *store.Store
	registry    *subscription.Registry
	manager     *connection.Manager
	policy      *reconnect.Policy

	mu       sync.Mutex
	ctx      context.Context
	cleanups []func()
	started  bool
	closed   bool
}

// New builds a coordinator on top of channel and monitor. Nothing connects
// until Connect is called.
func New(channel connection.EventChannel, monitor reachability.Monitor, cfg Config, opts ...Option) (*Coordinator, error) {
	if channel == nil {
		return nil, ErrNilChannel
	}
	if monitor == nil {
		return nil, ErrNilMonitor
	}
	for _, t := range cfg.Topics {
		if !t.Valid() {
			return nil, fmt.Errorf("%w: %q", domain.ErrUnknownTopic, t)
		}
	}
	if len(cfg.ItemKinds) == 0 {
		cfg.ItemKinds = domain.AllItemEventKinds
	}
	for _, k := range cfg.ItemKinds {
		if !k.Valid() {
			return nil, fmt.Errorf("%w: %q", domain.ErrUnknownEventKind, k)
		}
	}

	c := &Coordinator{
		cfg:     cfg,
		monitor: monitor,
		bus:     event.NewMemoryBus(),
		ctx:     context.Background(),
		log:     slog.Default().With("component", "feed"),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.diagnostics = diagnostics.NewRecorder(cfg.DiagnosticsSize, cfg.DiagnosticsTTL)
	c.store = store.New(cfg.Store)
	c.registry = subscription.NewRegistry(c.store.ApplyEvent, c.diagnostics)
	c.registry.SetDesiredTopics(domain.NewTopicSet(cfg.Topics...))
	c.registry.RegisterItemHandlers(cfg.ItemKinds)
	c.manager = connection.NewManager(channel, c.registry)
	c.policy = reconnect.New(c.manager, monitor, cfg.Reconnect)

	c.cleanups = append(c.cleanups,
		c.manager.Observe(c.onConnectionState),
		c.store.Subscribe(c.onSnapshot),
	)
	c.policy.Observe(c.onPolicyState)
	c.policy.OnAlert(c.onAlert)

	return c, nil
}

// Start begins reachability monitoring. ctx bounds the monitor and is
// attached to every event the coordinator publishes.
func (c *Coordinator) Start(ctx context.Context) {
	c.mu.Lock()
	if c.started || c.closed {
		c.mu.Unlock()
		return
	}
	c.started = true
	c.ctx = ctx
	c.mu.Unlock()

	c.monitor.Start(ctx)
	cancel := c.monitor.Subscribe(c.onReachability)

	c.mu.Lock()
	c.cleanups = append(c.cleanups, cancel)
	c.mu.Unlock()

	c.log.Info(LogMsgCoordinatorStarted,
		"topics", c.registry.DesiredTopics().Strings(),
		"reachable", c.monitor.IsReachable())
}

// Close disconnects, stops the monitor and releases every subscription. A
// closed coordinator cannot be restarted.
func (c *Coordinator) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	cleanups := c.cleanups
	c.cleanups = nil
	c.mu.Unlock()

	c.policy.Close()
	c.policy.Disconnect()
	c.monitor.Stop()
	c.store.Close()
	for _, fn := range cleanups {
		fn()
	}
	c.log.Info(LogMsgCoordinatorStopped)
}

// Connect asks for a manual connection.
func (c *Coordinator) Connect() {
	c.policy.Connect()
}

// Disconnect asks for a manual disconnect and forgets any pending
// auto-restore.
func (c *Coordinator) Disconnect() {
	c.policy.Disconnect()
	if c.cfg.ClearOnDisconnect {
		c.store.Reset()
		c.log.Info(LogMsgStoreCleared)
	}
}

// SuspendWithAutoRestore disconnects but remembers to reconnect on Resume
// if the connection was up.
func (c *Coordinator) SuspendWithAutoRestore() {
	c.policy.Suspend()
}

// Resume restores a connection suspended by SuspendWithAutoRestore.
func (c *Coordinator) Resume() {
	c.policy.Resume()
}

// SetTopics replaces the desired topics. Subscriptions are reconciled
// immediately when connected and on the next connect otherwise.
func (c *Coordinator) SetTopics(topics domain.TopicSet) error {
	for _, t := range topics {
		if !t.Valid() {
			return fmt.Errorf("%w: %q", domain.ErrUnknownTopic, t)
		}
	}
	set := domain.NewTopicSet(topics...)
	c.registry.SetDesiredTopics(set)
	c.log.Info(LogMsgTopicsChanged, "topics", set.Strings())

	var persistErr error
	if c.persister != nil {
		if err := c.persister.SaveTopics(set); err != nil {
			c.log.Warn(LogMsgTopicsPersistFail, "error", err)
			persistErr = fmt.Errorf("failed to persist topics: %w", err)
		}
	}
	c.publish(event.NewTopicsChangedEvent(set, SourceAPI))
	return persistErr
}

// Items returns a copy of the current item list.
func (c *Coordinator) Items() []domain.Item {
	return c.store.Items()
}

// Snapshot returns the current items together with their store version.
func (c *Coordinator) Snapshot() store.Snapshot {
	return c.store.Snapshot()
}

// ConnectionState returns the current connection state.
func (c *Coordinator) ConnectionState() domain.ConnectionState {
	return c.manager.State()
}

// PolicyState returns the current reconnect policy state.
func (c *Coordinator) PolicyState() reconnect.State {
	return c.policy.State()
}

// Reachable reports the last known network reachability.
func (c *Coordinator) Reachable() bool {
	return c.monitor.IsReachable()
}

// Topics returns the desired topics.
func (c *Coordinator) Topics() domain.TopicSet {
	return c.registry.DesiredTopics()
}

// Diagnostics exposes recent decode failures.
func (c *Coordinator) Diagnostics() *diagnostics.Recorder {
	return c.diagnostics
}

// Bus returns the bus outputs are published on.
func (c *Coordinator) Bus() event.Bus {
	return c.bus
}

// Status summarizes the coordinator.
func (c *Coordinator) Status() Status {
	return Status{
		Connection:     c.manager.State(),
		Policy:         c.policy.State().String(),
		Dormant:        c.policy.Dormant(),
		Reachable:      c.monitor.IsReachable(),
		Topics:         c.registry.DesiredTopics().Strings(),
		ActiveTopics:   c.registry.ActiveTopics().Strings(),
		ItemCount:      c.store.Len(),
		DecodeFailures: c.diagnostics.Total(),
	}
}

// Flush pushes any pending debounced snapshot to subscribers now.
func (c *Coordinator) Flush() {
	c.store.Flush()
}

// OnItems delivers every debounced item snapshot. Each call gets its own copy.
func (c *Coordinator) OnItems(fn func(items []domain.Item), opts ...SubscribeOption) (unsubscribe func()) {
	o := resolveOptions(opts)
	return c.bus.Subscribe(event.ItemsSnapshot, func(_ context.Context, evt event.Event) error {
		payload, err := event.DecodePayload[event.ItemsSnapshotPayloadV1](evt.Payload)
		if err != nil {
			return err
		}
		items := domain.CloneItems(payload.Items)
		o.dispatcher.Dispatch(func() { fn(items) })
		return nil
	})
}

// OnConnectionState delivers connection state transitions in order.
func (c *Coordinator) OnConnectionState(fn func(state, previous domain.ConnectionState), opts ...SubscribeOption) (unsubscribe func()) {
	o := resolveOptions(opts)
	return c.bus.Subscribe(event.ConnectionState, func(_ context.Context, evt event.Event) error {
		payload, err := event.DecodePayload[event.ConnectionStatePayloadV1](evt.Payload)
		if err != nil {
			return err
		}
		o.dispatcher.Dispatch(func() { fn(payload.State, payload.Previous) })
		return nil
	})
}

// OnAlert delivers "no connection" alerts.
func (c *Coordinator) OnAlert(fn func(reason string), opts ...SubscribeOption) (unsubscribe func()) {
	o := resolveOptions(opts)
	return c.bus.Subscribe(event.ConnectionAlert, func(_ context.Context, evt event.Event) error {
		payload, err := event.DecodePayload[event.ConnectionAlertPayloadV1](evt.Payload)
		if err != nil {
			return err
		}
		o.dispatcher.Dispatch(func() { fn(payload.Reason) })
		return nil
	})
}

// OnReachability delivers reachability changes.
func (c *Coordinator) OnReachability(fn func(reachable bool), opts ...SubscribeOption) (unsubscribe func()) {
	o := resolveOptions(opts)
	return c.bus.Subscribe(event.NetworkReachability, func(_ context.Context, evt event.Event) error {
		payload, err := event.DecodePayload[event.ReachabilityPayloadV1](evt.Payload)
		if err != nil {
			return err
		}
		o.dispatcher.Dispatch(func() { fn(payload.Reachable) })
		return nil
	})
}

func (c *Coordinator) onConnectionState(state, previous domain.ConnectionState) {
	c.publish(event.NewConnectionStateEvent(state, previous))
	c.policy.OnConnectionState(state, previous)
}

func (c *Coordinator) onReachability(reachable bool) {
	c.publish(event.NewReachabilityEvent(reachable))
	c.policy.OnReachabilityChanged(reachable)
}

func (c *Coordinator) onPolicyState(state, previous reconnect.State) {
	c.publish(event.NewPolicyStateEvent(state.String(), previous.String()))
}

func (c *Coordinator) onAlert(reason string) {
	c.publish(event.NewConnectionAlertEvent(reason))
}

func (c *Coordinator) onSnapshot(snap store.Snapshot) {
	c.publish(event.NewItemsSnapshotEvent(snap.Version, snap.Items))
}

func (c *Coordinator) publish(evt event.Event) {
	c.mu.Lock()
	ctx := c.ctx
	c.mu.Unlock()
	if err := c.bus.Publish(ctx, evt); err != nil {
		c.log.Warn(LogMsgPublishFailed, "type", string(evt.Type), "error", err)
	}
}

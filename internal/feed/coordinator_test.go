package feed

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/marketsync/internal/connection"
	"github.com/osse101/marketsync/internal/domain"
	"github.com/osse101/marketsync/internal/event"
	"github.com/osse101/marketsync/internal/reachability"
	"github.com/osse101/marketsync/internal/reconnect"
	"github.com/osse101/marketsync/internal/store"
	"github.com/osse101/marketsync/internal/subscription"
)

type harness struct {
	coord   *Coordinator
	channel *connection.FakeChannel
	net     *reachability.Static
}

func testConfig() Config {
	cfg := DefaultConfig()
	// Snapshots only leave the store when a test flushes.
	cfg.Store = store.Options{DebounceWindow: time.Hour}
	cfg.Reconnect.ReconnectOnDrop = false
	return cfg
}

func newHarness(t *testing.T, cfg Config, opts ...Option) *harness {
	t.Helper()
	ch := connection.NewFakeChannel()
	net := reachability.NewStatic(true)
	coord, err := New(ch, net, cfg, opts...)
	require.NoError(t, err)
	coord.Start(context.Background())
	t.Cleanup(coord.Close)
	return &harness{coord: coord, channel: ch, net: net}
}

func (h *harness) connect(t *testing.T) {
	t.Helper()
	h.coord.Connect()
	h.channel.FireConnect()
	require.Equal(t, domain.Connected, h.coord.ConnectionState())
}

type recorder struct {
	mu     sync.Mutex
	items  [][]domain.Item
	states []domain.ConnectionState
	alerts []string
	reach  []bool
}

func (r *recorder) attach(c *Coordinator) {
	c.OnItems(func(items []domain.Item) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.items = append(r.items, items)
	})
	c.OnConnectionState(func(state, _ domain.ConnectionState) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.states = append(r.states, state)
	})
	c.OnAlert(func(reason string) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.alerts = append(r.alerts, reason)
	})
	c.OnReachability(func(reachable bool) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.reach = append(r.reach, reachable)
	})
}

func (r *recorder) snapshot() ([][]domain.Item, []domain.ConnectionState, []string, []bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.items, r.states, r.alerts, r.reach
}

func itemPayload(id, name string, price int) []byte {
	return []byte(`{"item_id":"` + id + `","game":"csgo","name":"` + name + `","price":` + strconv.Itoa(price) + `}`)
}

func ids(items []domain.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestNew_Validation(t *testing.T) {
	net := reachability.NewStatic(true)
	ch := connection.NewFakeChannel()

	_, err := New(nil, net, DefaultConfig())
	assert.ErrorIs(t, err, ErrNilChannel)

	_, err = New(ch, nil, DefaultConfig())
	assert.ErrorIs(t, err, ErrNilMonitor)

	cfg := DefaultConfig()
	cfg.Topics = domain.TopicSet{"minecraft"}
	_, err = New(ch, net, cfg)
	assert.ErrorIs(t, err, domain.ErrUnknownTopic)

	cfg = DefaultConfig()
	cfg.ItemKinds = []domain.ItemEventKind{"sold"}
	_, err = New(ch, net, cfg)
	assert.ErrorIs(t, err, domain.ErrUnknownEventKind)
}

func TestCoordinator_ConnectSubscribesAndSyncsItems(t *testing.T) {
	h := newHarness(t, testConfig())
	rec := &recorder{}
	rec.attach(h.coord)

	h.connect(t)

	var subscribed []string
	for _, e := range h.channel.Emitted() {
		if e.Event == subscription.MessageSubscribe {
			subscribed = append(subscribed, e.Payload.(subscription.TopicPayload).Name)
		}
	}
	assert.Equal(t, domain.NewTopicSet(domain.AllTopics...).Strings(), subscribed)

	h.channel.Fire(domain.ItemCreated.EventName(), itemPayload("A", "AK-47", 100))
	h.channel.Fire(domain.ItemCreated.EventName(), itemPayload("B", "AWP", 200))
	h.channel.Fire(domain.ItemCreated.EventName(), itemPayload("C", "M4A4", 300))
	h.channel.Fire(domain.ItemUpdated.EventName(), itemPayload("B", "AWP", 250))
	h.coord.Flush()

	items, states, _, _ := rec.snapshot()
	require.Len(t, items, 1, "mutations collapse into one snapshot")
	assert.Equal(t, []string{"A", "B", "C"}, ids(items[0]))
	assert.Equal(t, int64(250), items[0][1].Price)
	assert.Equal(t, []domain.ConnectionState{domain.Connecting, domain.Connected}, states)
	assert.Equal(t, reconnect.ManuallyConnected, h.coord.PolicyState())
	assert.Equal(t, items[0], h.coord.Items())
}

func TestCoordinator_SubscribersGetIndependentCopies(t *testing.T) {
	h := newHarness(t, testConfig())
	var first, second []domain.Item
	h.coord.OnItems(func(items []domain.Item) { first = items })
	h.coord.OnItems(func(items []domain.Item) { second = items })

	h.connect(t)
	h.channel.Fire(domain.ItemCreated.EventName(), itemPayload("A", "AK-47", 100))
	h.coord.Flush()

	require.Len(t, first, 1)
	first[0].Price = 1
	assert.Equal(t, int64(100), second[0].Price)
	assert.Equal(t, int64(100), h.coord.Items()[0].Price)
}

func TestCoordinator_MalformedPayloadIsDiagnosed(t *testing.T) {
	h := newHarness(t, testConfig())
	rec := &recorder{}
	rec.attach(h.coord)
	h.connect(t)

	require.NotPanics(t, func() {
		h.channel.Fire(domain.ItemCreated.EventName(), []byte(`{"item_id":"A","game":"csgo","name":"AK-47"}`))
	})
	h.coord.Flush()

	items, _, _, _ := rec.snapshot()
	assert.Empty(t, items)
	assert.Empty(t, h.coord.Items())

	recent := h.coord.Diagnostics().Recent(10)
	require.Len(t, recent, 1)
	assert.Equal(t, "price", recent[0].Field)
	assert.Equal(t, uint64(1), h.coord.Status().DecodeFailures)
}

func TestCoordinator_SuspendResume(t *testing.T) {
	h := newHarness(t, testConfig())
	h.connect(t)
	opens := h.channel.Opens()

	h.coord.SuspendWithAutoRestore()
	assert.Equal(t, reconnect.AwaitingAutoReconnect, h.coord.PolicyState())
	assert.Equal(t, domain.NotConnected, h.coord.ConnectionState())

	h.coord.Resume()
	assert.Equal(t, opens+1, h.channel.Opens(), "resume connects exactly once")
	assert.Equal(t, reconnect.ManuallyConnected, h.coord.PolicyState())

	h.coord.Resume()
	assert.Equal(t, opens+1, h.channel.Opens())
}

func TestCoordinator_NetworkLossWhileConnected(t *testing.T) {
	h := newHarness(t, testConfig())
	rec := &recorder{}
	rec.attach(h.coord)
	h.connect(t)
	closes := h.channel.Closes()

	h.net.Set(false)

	_, states, alerts, reach := rec.snapshot()
	assert.Equal(t, closes+1, h.channel.Closes(), "one disconnect")
	assert.Equal(t, []string{reconnect.AlertNetworkUnreachable}, alerts)
	assert.Equal(t, []bool{false}, reach)
	assert.Equal(t, domain.NotConnected, states[len(states)-1])
	assert.Equal(t, reconnect.Idle, h.coord.PolicyState(), "auto-restore not armed")
	assert.False(t, h.coord.Reachable())

	opens := h.channel.Opens()
	h.net.Set(true)
	assert.Equal(t, opens, h.channel.Opens(), "regaining the network does not connect")
}

func TestCoordinator_ConnectWhileOffline(t *testing.T) {
	h := newHarness(t, testConfig())
	rec := &recorder{}
	rec.attach(h.coord)
	h.net.Set(false)

	h.coord.Connect()

	_, _, alerts, _ := rec.snapshot()
	assert.Equal(t, []string{reconnect.AlertConnectWhileOffline}, alerts)
	assert.Zero(t, h.channel.Opens())
	assert.Equal(t, reconnect.Idle, h.coord.PolicyState())
}

func TestCoordinator_DisconnectKeepsItemsByDefault(t *testing.T) {
	h := newHarness(t, testConfig())
	h.connect(t)
	h.channel.Fire(domain.ItemCreated.EventName(), itemPayload("A", "AK-47", 100))

	h.coord.Disconnect()
	assert.Len(t, h.coord.Items(), 1)
	assert.Equal(t, reconnect.Idle, h.coord.PolicyState())
}

func TestCoordinator_ClearOnDisconnect(t *testing.T) {
	cfg := testConfig()
	cfg.ClearOnDisconnect = true
	h := newHarness(t, cfg)
	var last []domain.Item
	calls := 0
	h.coord.OnItems(func(items []domain.Item) {
		calls++
		last = items
	})
	h.connect(t)
	h.channel.Fire(domain.ItemCreated.EventName(), itemPayload("A", "AK-47", 100))
	h.coord.Flush()
	require.Equal(t, 1, calls)

	h.coord.Disconnect()
	h.coord.Flush()

	assert.Empty(t, h.coord.Items())
	assert.Equal(t, 2, calls)
	assert.Empty(t, last)
}

type memoryPersister struct {
	saved []domain.TopicSet
	err   error
}

func (m *memoryPersister) SaveTopics(topics domain.TopicSet) error {
	m.saved = append(m.saved, topics)
	return m.err
}

func TestCoordinator_SetTopics(t *testing.T) {
	p := &memoryPersister{}
	bus := event.NewMemoryBus()
	var published []event.TopicsPayloadV1
	bus.Subscribe(event.TopicsChanged, func(_ context.Context, evt event.Event) error {
		published = append(published, evt.Payload.(event.TopicsPayloadV1))
		return nil
	})
	h := newHarness(t, testConfig(), WithTopicPersister(p), WithBus(bus))
	h.connect(t)
	h.channel.ResetEmitted()

	require.NoError(t, h.coord.SetTopics(domain.TopicSet{domain.TopicRust, domain.TopicTF2}))
	assert.Equal(t, domain.TopicSet{domain.TopicRust, domain.TopicTF2}, h.coord.Topics())
	assert.Equal(t, []string{"rust", "tf2"}, h.coord.Status().ActiveTopics)
	require.Len(t, p.saved, 1)
	require.Len(t, published, 1)
	assert.Equal(t, []string{"rust", "tf2"}, published[0].Topics)

	var unsubscribed int
	for _, e := range h.channel.Emitted() {
		if e.Event == subscription.MessageUnsubscribe {
			unsubscribed++
		}
	}
	assert.Equal(t, 2, unsubscribed)

	err := h.coord.SetTopics(domain.TopicSet{"minecraft"})
	assert.ErrorIs(t, err, domain.ErrUnknownTopic)
	assert.Len(t, p.saved, 1)

	p.err = errors.New("disk full")
	err = h.coord.SetTopics(domain.TopicSet{domain.TopicCSGO})
	assert.Error(t, err)
	assert.Equal(t, domain.TopicSet{domain.TopicCSGO}, h.coord.Topics(), "topics apply even when saving fails")
}

func TestCoordinator_SerialDispatcher(t *testing.T) {
	h := newHarness(t, testConfig())
	d := NewSerialDispatcher("test-dispatch", 16)

	var mu sync.Mutex
	var got []domain.ConnectionState
	done := make(chan struct{})
	h.coord.OnConnectionState(func(state, _ domain.ConnectionState) {
		mu.Lock()
		got = append(got, state)
		n := len(got)
		mu.Unlock()
		if n == 2 {
			close(done)
		}
	}, WithDispatcher(d))

	h.connect(t)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("callbacks were not dispatched")
	}
	d.Close()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []domain.ConnectionState{domain.Connecting, domain.Connected}, got)
}

func TestCoordinator_UnsubscribeStopsDelivery(t *testing.T) {
	h := newHarness(t, testConfig())
	calls := 0
	unsubscribe := h.coord.OnConnectionState(func(domain.ConnectionState, domain.ConnectionState) { calls++ })
	unsubscribe()
	unsubscribe()

	h.connect(t)
	assert.Zero(t, calls)
}

func TestCoordinator_CloseIsIdempotent(t *testing.T) {
	ch := connection.NewFakeChannel()
	coord, err := New(ch, reachability.NewStatic(true), testConfig())
	require.NoError(t, err)
	coord.Start(context.Background())
	coord.Connect()
	ch.FireConnect()

	coord.Close()
	coord.Close()
	assert.Equal(t, domain.NotConnected, coord.ConnectionState())
}

func TestCoordinator_CloseDoesNotReconnect(t *testing.T) {
	cfg := testConfig()
	cfg.Reconnect = reconnect.Options{
		ReconnectOnDrop: true,
		InitialDelay:    10 * time.Millisecond,
		MaxDelay:        10 * time.Millisecond,
		MaxFailures:     5,
	}
	h := newHarness(t, cfg)
	h.connect(t)
	require.Equal(t, 1, h.channel.Opens())

	h.coord.Close()
	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, 1, h.channel.Opens(), "no socket may open after Close")
	assert.Equal(t, domain.NotConnected, h.coord.ConnectionState())
	assert.Equal(t, reconnect.Idle, h.coord.PolicyState())

	h.coord.Connect()
	assert.Equal(t, 1, h.channel.Opens(), "intents after Close are ignored")
}

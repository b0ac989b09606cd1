package subscription

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/marketsync/internal/connection"
	"github.com/osse101/marketsync/internal/domain"
)

type sinkRecord struct {
	kind domain.ItemEventKind
	item domain.Item
}

type recordingSink struct {
	mu      sync.Mutex
	records []sinkRecord
}

func (s *recordingSink) apply(kind domain.ItemEventKind, item domain.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, sinkRecord{kind: kind, item: item})
}

func (s *recordingSink) get() []sinkRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sinkRecord(nil), s.records...)
}

type failureRecord struct {
	kind domain.ItemEventKind
	err  error
}

type recordingRecorder struct {
	failures []failureRecord
}

func (r *recordingRecorder) RecordDecodeFailure(kind domain.ItemEventKind, _ []byte, err error) {
	r.failures = append(r.failures, failureRecord{kind: kind, err: err})
}

func topicMessages(emitted []connection.Emitted) []string {
	var out []string
	for _, e := range emitted {
		out = append(out, e.Event+":"+e.Payload.(TopicPayload).Name)
	}
	return out
}

const validPayload = `{"item_id":"42","game":"csgo","name":"AK-47 | Redline","price":1250}`

func TestRegistry_Defaults(t *testing.T) {
	r := NewRegistry(func(domain.ItemEventKind, domain.Item) {}, nil)

	assert.Equal(t, domain.NewTopicSet(domain.AllTopics...), r.DesiredTopics())
	assert.Equal(t, domain.AllItemEventKinds, r.DesiredKinds())
	assert.Empty(t, r.ActiveTopics())
}

func TestRegistry_SetDesiredTopicsWhileDetachedOnlyRecords(t *testing.T) {
	ch := connection.NewFakeChannel()
	r := NewRegistry(func(domain.ItemEventKind, domain.Item) {}, nil)

	r.SetDesiredTopics(domain.NewTopicSet(domain.TopicRust))

	assert.Equal(t, domain.NewTopicSet(domain.TopicRust), r.DesiredTopics())
	assert.Empty(t, ch.Emitted())
}

func TestRegistry_AttachSubscribesDesired(t *testing.T) {
	ch := connection.NewFakeChannel()
	r := NewRegistry(func(domain.ItemEventKind, domain.Item) {}, nil)
	r.SetDesiredTopics(domain.NewTopicSet(domain.TopicCSGO, domain.TopicTF2))

	r.Attach(ch)

	assert.Equal(t, []string{"subscribe:csgo", "subscribe:tf2"}, topicMessages(ch.Emitted()))
	assert.Equal(t, domain.NewTopicSet(domain.TopicCSGO, domain.TopicTF2), r.ActiveTopics())
	for _, kind := range domain.AllItemEventKinds {
		assert.Equal(t, 1, ch.HandlerCount(kind.EventName()))
	}
}

func TestRegistry_SetDesiredTopicsDiff(t *testing.T) {
	ch := connection.NewFakeChannel()
	r := NewRegistry(func(domain.ItemEventKind, domain.Item) {}, nil)
	r.SetDesiredTopics(domain.NewTopicSet(domain.TopicCSGO, domain.TopicRust))
	r.Attach(ch)
	ch.ResetEmitted()

	r.SetDesiredTopics(domain.NewTopicSet(domain.TopicRust, domain.TopicDota2))

	assert.Equal(t, []string{"unsubscribe:csgo", "subscribe:dota2"}, topicMessages(ch.Emitted()))
	assert.True(t, r.ActiveTopics().Equal(domain.NewTopicSet(domain.TopicRust, domain.TopicDota2)))
}

func TestRegistry_SetDesiredTopicsIsIdempotent(t *testing.T) {
	ch := connection.NewFakeChannel()
	r := NewRegistry(func(domain.ItemEventKind, domain.Item) {}, nil)
	r.SetDesiredTopics(nil)
	r.Attach(ch)
	require.Empty(t, ch.Emitted())

	topics := domain.NewTopicSet(domain.TopicCSGO, domain.TopicRust)
	r.SetDesiredTopics(topics)
	r.SetDesiredTopics(topics)

	assert.Equal(t, []string{"subscribe:csgo", "subscribe:rust"}, topicMessages(ch.Emitted()))
}

func TestRegistry_ReattachStartsFromScratch(t *testing.T) {
	ch := connection.NewFakeChannel()
	r := NewRegistry(func(domain.ItemEventKind, domain.Item) {}, nil)
	r.SetDesiredTopics(domain.NewTopicSet(domain.TopicCSGO))
	r.Attach(ch)
	r.Detach()
	assert.Empty(t, r.ActiveTopics())

	ch.ResetEmitted()
	r.Attach(ch)

	assert.Equal(t, []string{"subscribe:csgo"}, topicMessages(ch.Emitted()))
	assert.Equal(t, 1, ch.HandlerCount(domain.ItemCreated.EventName()), "re-attach must not duplicate handlers")
}

func TestRegistry_FailedEmitNotMarkedActive(t *testing.T) {
	ch := connection.NewFakeChannel()
	ch.EmitErr = domain.ErrNotConnected
	r := NewRegistry(func(domain.ItemEventKind, domain.Item) {}, nil)
	r.SetDesiredTopics(domain.NewTopicSet(domain.TopicCSGO))

	r.Attach(ch)
	assert.Empty(t, r.ActiveTopics())

	ch.EmitErr = nil
	r.SetDesiredTopics(domain.NewTopicSet(domain.TopicCSGO))
	assert.Equal(t, domain.NewTopicSet(domain.TopicCSGO), r.ActiveTopics())
}

func TestRegistry_ForwardsDecodedItems(t *testing.T) {
	ch := connection.NewFakeChannel()
	sink := &recordingSink{}
	r := NewRegistry(sink.apply, nil)
	r.Attach(ch)

	ch.Fire(domain.ItemCreated.EventName(), []byte(validPayload))
	ch.Fire(domain.ItemRemoved.EventName(), []byte(validPayload))

	records := sink.get()
	require.Len(t, records, 2)
	assert.Equal(t, domain.ItemCreated, records[0].kind)
	assert.Equal(t, "42", records[0].item.ID)
	assert.Equal(t, domain.ItemRemoved, records[1].kind)
}

func TestRegistry_DecodeFailureIsRecordedNotForwarded(t *testing.T) {
	ch := connection.NewFakeChannel()
	sink := &recordingSink{}
	recorder := &recordingRecorder{}
	r := NewRegistry(sink.apply, recorder)
	r.Attach(ch)

	ch.Fire(domain.ItemUpdated.EventName(), []byte(`{"item_id":"1","game":"csgo","name":"x"}`))

	assert.Empty(t, sink.get())
	require.Len(t, recorder.failures, 1)
	assert.Equal(t, domain.ItemUpdated, recorder.failures[0].kind)
	var decodeErr *domain.DecodeError
	require.True(t, errors.As(recorder.failures[0].err, &decodeErr))
	assert.Equal(t, "price", decodeErr.Field)
}

func TestRegistry_RegisterItemHandlersReplaces(t *testing.T) {
	ch := connection.NewFakeChannel()
	sink := &recordingSink{}
	r := NewRegistry(sink.apply, nil)

	lifecycleInstalls := 0
	r.SetLifecycleHook(func() {
		lifecycleInstalls++
		ch.On(connection.EventConnect, func([]byte) {})
	})
	r.Attach(ch)

	r.RegisterItemHandlers([]domain.ItemEventKind{domain.ItemUpdated})

	assert.Equal(t, 2, lifecycleInstalls)
	assert.Equal(t, 1, ch.HandlerCount(connection.EventConnect))
	assert.Equal(t, 0, ch.HandlerCount(domain.ItemCreated.EventName()))
	assert.Equal(t, 1, ch.HandlerCount(domain.ItemUpdated.EventName()))
	assert.Equal(t, []domain.ItemEventKind{domain.ItemUpdated}, r.DesiredKinds())

	ch.Fire(domain.ItemUpdated.EventName(), []byte(validPayload))
	assert.Len(t, sink.get(), 1)
}

func TestRegistry_LateCallbackAfterDetachIsDropped(t *testing.T) {
	ch := connection.NewFakeChannel()
	sink := &recordingSink{}
	r := NewRegistry(sink.apply, nil)
	r.Attach(ch)

	// A read loop may already hold this handler when the session is torn down.
	r.mu.Lock()
	gen := r.generation
	r.mu.Unlock()
	inFlight := r.itemHandler(domain.ItemCreated, gen)

	r.Detach()
	inFlight([]byte(validPayload))

	assert.Empty(t, sink.get())
}

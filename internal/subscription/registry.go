package subscription

import (
	"log/slog"
	"sync"

	"github.com/osse101/marketsync/internal/connection"
	"github.com/osse101/marketsync/internal/domain"
	"github.com/osse101/marketsync/internal/metrics"
)

// ItemSink receives decoded item events.
type ItemSink func(kind domain.ItemEventKind, item domain.Item)

// DecodeFailureRecorder keeps track of payloads that failed to decode.
type DecodeFailureRecorder interface {
	RecordDecodeFailure(kind domain.ItemEventKind, payload []byte, err error)
}

// TopicPayload is the body of subscribe and unsubscribe messages.
type TopicPayload struct {
	Name string `json:"name"`
}

// Registry tracks desired vs active topic subscriptions and the item
// handlers installed on the current channel.
type Registry struct {
	sink     ItemSink
	recorder DecodeFailureRecorder
	log      *slog.Logger

	// opMu serializes operations that talk to the channel so diffs never
	// interleave. mu guards the fields below and is never held across I/O.
	opMu sync.Mutex

	mu         sync.Mutex
	channel    connection.EventChannel
	lifecycle  func()
	desired    domain.TopicSet
	active     domain.TopicSet
	kinds      []domain.ItemEventKind
	generation uint64
}

// NewRegistry creates a detached registry that forwards decoded items to sink.
// recorder may be nil.
func NewRegistry(sink ItemSink, recorder DecodeFailureRecorder) *Registry {
	return &Registry{
		sink:     sink,
		recorder: recorder,
		desired:  domain.NewTopicSet(domain.AllTopics...),
		kinds:    append([]domain.ItemEventKind(nil), domain.AllItemEventKinds...),
		log:      slog.Default().With("component", "subscription"),
	}
}

// SetLifecycleHook implements connection.Attacher
func (r *Registry) SetLifecycleHook(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lifecycle = fn
}

// DesiredTopics returns the topics the consumer wants.
func (r *Registry) DesiredTopics() domain.TopicSet {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append(domain.TopicSet(nil), r.desired...)
}

// ActiveTopics returns the topics currently subscribed on the channel.
func (r *Registry) ActiveTopics() domain.TopicSet {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append(domain.TopicSet(nil), r.active...)
}

// DesiredKinds returns the item event kinds handlers are installed for.
func (r *Registry) DesiredKinds() []domain.ItemEventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.ItemEventKind(nil), r.kinds...)
}

// SetDesiredTopics records topics and, when attached, brings the channel in
// line by unsubscribing removed topics before subscribing added ones.
func (r *Registry) SetDesiredTopics(topics domain.TopicSet) {
	r.opMu.Lock()
	defer r.opMu.Unlock()

	topics = domain.NewTopicSet(topics...)

	r.mu.Lock()
	r.desired = topics
	ch := r.channel
	active := r.active
	r.mu.Unlock()

	if ch == nil {
		return
	}

	next := append(domain.TopicSet(nil), active...)
	for _, t := range active.Difference(topics) {
		if r.emit(ch, MessageUnsubscribe, t) {
			next = next.Difference(domain.TopicSet{t})
		}
	}
	for _, t := range topics.Difference(active) {
		if r.emit(ch, MessageSubscribe, t) {
			next = append(next, t)
		}
	}
	r.commitActive(ch, next)
}

// RegisterItemHandlers replaces the item handlers on the attached channel
// with exactly one per kind. Lifecycle handlers are reinstalled first.
func (r *Registry) RegisterItemHandlers(kinds []domain.ItemEventKind) {
	r.opMu.Lock()
	defer r.opMu.Unlock()

	r.mu.Lock()
	r.kinds = append([]domain.ItemEventKind(nil), kinds...)
	ch := r.channel
	r.mu.Unlock()

	if ch != nil {
		r.installHandlers(ch, kinds)
	}
}

// Attach implements connection.Attacher. It is called on every Connected
// transition and rebuilds the channel side from scratch.
func (r *Registry) Attach(ch connection.EventChannel) {
	r.opMu.Lock()
	defer r.opMu.Unlock()

	r.mu.Lock()
	r.channel = ch
	r.active = nil
	kinds := append([]domain.ItemEventKind(nil), r.kinds...)
	desired := append(domain.TopicSet(nil), r.desired...)
	r.mu.Unlock()

	r.installHandlers(ch, kinds)

	var next domain.TopicSet
	for _, t := range desired {
		if r.emit(ch, MessageSubscribe, t) {
			next = append(next, t)
		}
	}
	r.commitActive(ch, next)
}

// Detach implements connection.Attacher. Callbacks already in flight from
// the old channel are dropped.
func (r *Registry) Detach() {
	r.opMu.Lock()
	defer r.opMu.Unlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.channel = nil
	r.active = nil
	r.generation++
	metrics.ActiveTopics.Set(0)
}

func (r *Registry) installHandlers(ch connection.EventChannel, kinds []domain.ItemEventKind) {
	r.mu.Lock()
	r.generation++
	gen := r.generation
	lifecycle := r.lifecycle
	r.mu.Unlock()

	ch.RemoveAllHandlers()
	if lifecycle != nil {
		lifecycle()
	}
	for _, kind := range kinds {
		ch.On(kind.EventName(), r.itemHandler(kind, gen))
	}
	r.log.Debug(LogMsgHandlersInstalled, "kinds", len(kinds))
}

func (r *Registry) itemHandler(kind domain.ItemEventKind, gen uint64) connection.Handler {
	return func(payload []byte) {
		r.mu.Lock()
		current := r.generation
		r.mu.Unlock()
		if gen != current {
			r.log.Debug(LogMsgStaleItemCallback, "kind", kind.String())
			return
		}

		item, err := domain.DecodeItem(payload)
		if err != nil {
			r.log.Warn(LogMsgItemDecodeFailed, "kind", kind.String(), "error", err)
			metrics.ItemDecodeErrors.WithLabelValues(string(kind)).Inc()
			if r.recorder != nil {
				r.recorder.RecordDecodeFailure(kind, payload, err)
			}
			return
		}
		r.sink(kind, item)
	}
}

func (r *Registry) emit(ch connection.EventChannel, message string, topic domain.Topic) bool {
	if err := ch.Emit(message, TopicPayload{Name: string(topic)}); err != nil {
		r.log.Warn(LogMsgTopicEmitFailed, "message", message, "topic", string(topic), "error", err)
		return false
	}
	metrics.TopicMessages.WithLabelValues(message).Inc()
	return true
}

func (r *Registry) commitActive(ch connection.EventChannel, active domain.TopicSet) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.channel != ch {
		return
	}
	r.active = active
	metrics.ActiveTopics.Set(float64(len(active)))
	r.log.Debug(LogMsgTopicsReconciled, "active", active.Strings())
}

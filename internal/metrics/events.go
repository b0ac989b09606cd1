package metrics

import (
	"context"

	"github.com/osse101/marketsync/internal/event"
	"github.com/osse101/marketsync/internal/logger"
)

// EventMetricsCollector subscribes to bus events and records metrics
type EventMetricsCollector struct {
	unsubscribe []func()
}

// NewEventMetricsCollector creates a new event metrics collector
func NewEventMetricsCollector() *EventMetricsCollector {
	return &EventMetricsCollector{}
}

// Register subscribes to every event type the sync engine publishes
func (e *EventMetricsCollector) Register(bus event.Bus) {
	eventTypes := []event.Type{
		event.ItemsSnapshot,
		event.ConnectionState,
		event.ConnectionAlert,
		event.NetworkReachability,
		event.ReconnectPolicyState,
		event.TopicsChanged,
	}

	for _, eventType := range eventTypes {
		e.unsubscribe = append(e.unsubscribe, bus.Subscribe(eventType, e.HandleEvent))
	}
}

// Close removes all subscriptions made by Register
func (e *EventMetricsCollector) Close() {
	for _, fn := range e.unsubscribe {
		fn()
	}
	e.unsubscribe = nil
}

// HandleEvent processes events and updates metrics
func (e *EventMetricsCollector) HandleEvent(ctx context.Context, evt event.Event) error {
	EventsPublished.WithLabelValues(string(evt.Type)).Inc()

	switch evt.Type {
	case event.ItemsSnapshot:
		SnapshotsEmitted.Inc()

	case event.NetworkReachability:
		payload, err := event.DecodePayload[event.ReachabilityPayloadV1](evt.Payload)
		if err != nil {
			EventHandlerErrors.WithLabelValues(string(evt.Type)).Inc()
			return err
		}
		NetworkReachable.Set(BoolGauge(payload.Reachable))

	case event.ConnectionAlert:
		NoConnectionAlerts.Inc()
	}

	logger.FromContext(ctx).Debug(LogMsgMetricsRecorded, "type", evt.Type)
	return nil
}

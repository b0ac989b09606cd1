package bootstrap

import (
	"log/slog"

	"github.com/osse101/marketsync/internal/event"
	"github.com/osse101/marketsync/internal/journal"
	"github.com/osse101/marketsync/internal/metrics"
	"github.com/osse101/marketsync/internal/sse"
)

// EventHandlerDependencies holds the consumers hung off the feed bus. Hub
// and Journal are optional.
type EventHandlerDependencies struct {
	EventBus event.Bus
	Hub      *sse.Hub
	Journal  journal.Service
}

// RegisterEventHandlers subscribes the metrics collector, the SSE bridge and
// the journal writer to the bus. The returned func removes them all.
func RegisterEventHandlers(deps EventHandlerDependencies) (unregister func()) {
	var cleanups []func()

	collector := metrics.NewEventMetricsCollector()
	collector.Register(deps.EventBus)
	cleanups = append(cleanups, collector.Close)
	slog.Info(LogMsgMetricsCollectorRegistered)

	if deps.Hub != nil {
		cleanups = append(cleanups, sse.NewSubscriber(deps.Hub, deps.EventBus).Subscribe())
		slog.Info(LogMsgSSESubscriberRegistered)
	}

	if deps.Journal != nil {
		cleanups = append(cleanups, deps.Journal.Subscribe(deps.EventBus))
		slog.Info(LogMsgJournalSubscribed)
	}

	return func() {
		for _, fn := range cleanups {
			fn()
		}
	}
}

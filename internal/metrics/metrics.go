package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      MetricNameHTTPRequestsTotal,
			Help:      HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      MetricNameHTTPRequestDuration,
			Help:      HelpTextHTTPRequestDuration,
			Buckets:   HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      MetricNameHTTPRequestsInFlight,
			Help:      HelpTextHTTPRequestsInFlight,
		},
	)
)

// Event Metrics
var (
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      MetricNameEventsPublished,
			Help:      HelpTextEventsPublished,
		},
		[]string{LabelType},
	)

	EventHandlerErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      MetricNameEventHandlerErrors,
			Help:      HelpTextEventHandlerErrors,
		},
		[]string{LabelType},
	)
)

// Store Metrics
var (
	ItemEventsApplied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      MetricNameItemEventsApplied,
			Help:      HelpTextItemEventsApplied,
		},
		[]string{LabelKind},
	)

	ItemDecodeErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      MetricNameItemDecodeErrors,
			Help:      HelpTextItemDecodeErrors,
		},
		[]string{LabelKind},
	)

	StoreItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      MetricNameStoreItems,
			Help:      HelpTextStoreItems,
		},
	)

	RawNotifications = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      MetricNameRawNotifications,
			Help:      HelpTextRawNotifications,
		},
	)

	SnapshotsEmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      MetricNameSnapshotsEmitted,
			Help:      HelpTextSnapshotsEmitted,
		},
	)
)

// Connection Metrics
var (
	ConnectionTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      MetricNameConnectionTransitions,
			Help:      HelpTextConnectionTransitions,
		},
		[]string{LabelState},
	)

	ActiveTopics = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      MetricNameActiveTopics,
			Help:      HelpTextActiveTopics,
		},
	)

	TopicMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      MetricNameTopicMessages,
			Help:      HelpTextTopicMessages,
		},
		[]string{LabelAction},
	)

	ReconnectAttempts = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      MetricNameReconnectAttempts,
			Help:      HelpTextReconnectAttempts,
		},
	)

	NoConnectionAlerts = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      MetricNameNoConnectionAlerts,
			Help:      HelpTextNoConnectionAlerts,
		},
	)

	NetworkReachable = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      MetricNameNetworkReachable,
			Help:      HelpTextNetworkReachable,
		},
	)
)

// Journal Metrics
var (
	JournalWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      MetricNameJournalWrites,
			Help:      HelpTextJournalWrites,
		},
		[]string{LabelStatus},
	)
)

// BoolGauge converts a boolean into the 0/1 convention used by gauges.
func BoolGauge(v bool) float64 {
	if v {
		return 1
	}
	return 0
}

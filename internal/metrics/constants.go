package metrics

// ============================================================================
// Metric Names
// ============================================================================

// Namespace prefixes every metric exported by this process.
const Namespace = "marketsync"

// HTTP metric names
const (
	MetricNameHTTPRequestsTotal    = "http_requests_total"
	MetricNameHTTPRequestDuration  = "http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "http_requests_in_flight"
)

// Event bus metric names
const (
	MetricNameEventsPublished    = "events_published_total"
	MetricNameEventHandlerErrors = "event_handler_errors_total"
)

// Feed metric names
const (
	MetricNameItemEventsApplied     = "item_events_applied_total"
	MetricNameItemDecodeErrors      = "item_decode_errors_total"
	MetricNameStoreItems            = "store_items"
	MetricNameRawNotifications      = "store_raw_notifications_total"
	MetricNameSnapshotsEmitted      = "snapshots_emitted_total"
	MetricNameConnectionTransitions = "connection_transitions_total"
	MetricNameActiveTopics          = "subscription_active_topics"
	MetricNameTopicMessages         = "subscription_messages_total"
	MetricNameReconnectAttempts     = "reconnect_attempts_total"
	MetricNameNoConnectionAlerts    = "no_connection_alerts_total"
	MetricNameNetworkReachable      = "network_reachable"
	MetricNameJournalWrites         = "journal_writes_total"
)

// ============================================================================
// Metric Help Text
// ============================================================================

// HTTP metric help text
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Current number of HTTP requests being served"
)

// Event bus metric help text
const (
	HelpTextEventsPublished    = "Total number of events published on the internal bus"
	HelpTextEventHandlerErrors = "Total number of event handler errors"
)

// Feed metric help text
const (
	HelpTextItemEventsApplied     = "Item events applied to the store, by kind"
	HelpTextItemDecodeErrors      = "Item payloads dropped because they could not be decoded, by kind"
	HelpTextStoreItems            = "Number of items currently held in the store"
	HelpTextRawNotifications      = "Raw store change notifications produced by mutations"
	HelpTextSnapshotsEmitted      = "Debounced snapshots delivered to observers"
	HelpTextConnectionTransitions = "Connection state transitions, by target state"
	HelpTextActiveTopics          = "Number of topics currently subscribed on the channel"
	HelpTextTopicMessages         = "Topic subscribe/unsubscribe messages emitted, by action"
	HelpTextReconnectAttempts     = "Automatic reconnect attempts scheduled by the reconnect policy"
	HelpTextNoConnectionAlerts    = "No-connection alerts surfaced to the consumer"
	HelpTextNetworkReachable      = "1 when the feed host is reachable, 0 otherwise"
	HelpTextJournalWrites         = "Journal write attempts, by status"
)

// ============================================================================
// Metric Label Names
// ============================================================================

// Common label names used across metrics
const (
	LabelMethod = "method"
	LabelPath   = "path"
	LabelStatus = "status"
	LabelType   = "type"
	LabelKind   = "kind"
	LabelState  = "state"
	LabelAction = "action"
)

// Label values
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// ============================================================================
// Histogram Buckets
// ============================================================================

// HTTPLatencyBuckets defines the histogram buckets for HTTP request duration
// in seconds, from 1ms to 10s.
var HTTPLatencyBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// ============================================================================
// Log Messages
// ============================================================================

const (
	LogMsgMetricsRecorded = "Metrics recorded for event"
)

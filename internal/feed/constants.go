package feed

import "errors"

// Sources recorded on topic change events.
const (
	SourceConfig = "config"
	SourceAPI    = "api"
)

// Log messages
const (
	LogMsgCoordinatorStarted = "Sync coordinator started"
	LogMsgCoordinatorStopped = "Sync coordinator stopped"
	LogMsgPublishFailed      = "Failed to publish event"
	LogMsgTopicsChanged      = "Desired topics changed"
	LogMsgTopicsPersistFail  = "Failed to persist topics"
	LogMsgStoreCleared       = "Cleared items after manual disconnect"
)

// Construction errors
var (
	ErrNilChannel = errors.New("feed: event channel is required")
	ErrNilMonitor = errors.New("feed: reachability monitor is required")
)

package connection

// Lifecycle events every EventChannel raises.
const (
	EventConnect      = "connect"
	EventDisconnect   = "disconnect"
	EventStatusChange = "statusChange"
)

// Log messages
const (
	LogMsgStateTransition     = "Connection state changed"
	LogMsgConnectIgnored      = "Connect ignored, session already active"
	LogMsgDisconnectIgnored   = "Disconnect ignored, session not active"
	LogMsgOpenFailed          = "Failed to open event channel"
	LogMsgCloseFailed         = "Failed to close event channel"
	LogMsgChannelStatus       = "Event channel status changed"
	LogMsgBadStatusPayload    = "Ignoring malformed status payload"
	LogMsgStaleLifecycle      = "Ignoring lifecycle event for inactive session"
	LogMsgSessionAttachUndone = "Session ended during attach, detaching subscriptions"
)

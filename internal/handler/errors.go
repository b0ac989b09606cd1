package handler

// Generic HTTP error messages for client responses.
// These messages intentionally do not expose internal error details.
// Both handlers and tests should reference these constants.
const (
	// HTTP status messages
	ErrMsgInvalidRequest        = "Invalid request body"
	ErrMsgInvalidRequestSummary = "Invalid request"

	// Query parameter error messages
	ErrMsgInvalidLimit     = "Invalid limit parameter"
	ErrMsgInvalidEventType = "Invalid type parameter"

	// Feed error messages
	ErrMsgSetTopicsFailed   = "Failed to update topics"
	ErrMsgTopicsNotSaved    = "Topics applied but could not be saved"
	ErrMsgJournalDisabled   = "Journal is not configured"
	ErrMsgJournalReadFailed = "Failed to read journal"
)

// Success messages for API responses
const (
	MsgTopicsUpdated      = "Topics updated"
	MsgConnectRequested   = "Connect requested"
	MsgDisconnectComplete = "Disconnected"
	MsgSuspendRequested   = "Suspended until resume"
	MsgResumeRequested    = "Resume requested"
)

// Log messages
const (
	LogMsgIntentReceived  = "Feed intent received"
	LogMsgTopicsUpdated   = "Topics updated via API"
	LogMsgTopicsFailed    = "Failed to update topics"
	LogMsgJournalFailed   = "Failed to read journal"
	LogMsgReadinessFailed = "Readiness check failed"
	LogMsgEncodeFailed    = "Failed to encode JSON response"
	LogMsgWriteFailed     = "Failed to write response buffer"
)

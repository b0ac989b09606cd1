package subscription

// Channel messages used to manage topic membership.
const (
	MessageSubscribe   = "subscribe"
	MessageUnsubscribe = "unsubscribe"
)

// Log messages
const (
	LogMsgTopicEmitFailed   = "Failed to emit topic message"
	LogMsgTopicsReconciled  = "Topic subscriptions reconciled"
	LogMsgItemDecodeFailed  = "Dropping undecodable item payload"
	LogMsgStaleItemCallback = "Dropping item callback from a previous registration"
	LogMsgHandlersInstalled = "Item handlers installed"
)

package reconnect

import "time"

// Backoff defaults applied after an unexpected drop.
const (
	DefaultInitialDelay = 1 * time.Second
	DefaultMaxDelay     = 30 * time.Second
	DefaultMaxFailures  = 10
	BackoffMultiplier   = 2.0
)

// Alert reasons surfaced to the consumer.
const (
	AlertNetworkUnreachable  = "network unreachable"
	AlertConnectWhileOffline = "cannot connect while the network is unreachable"
	AlertResumeWhileOffline  = "cannot resume while the network is unreachable"
)

// Log messages
const (
	LogMsgPolicyTransition = "Reconnect policy state changed"
	LogMsgScheduling       = "Scheduling reconnect after drop"
	LogMsgAttempting       = "Attempting automatic reconnect"
	LogMsgGivingUp         = "Reconnect failed too many times, entering dormant mode"
	LogMsgSkipUnreachable  = "Skipping reconnect, network unreachable"
	LogMsgNoConnection     = "No connection"
)

package reachability

import "time"

// Probe defaults
const (
	DefaultProbeInterval = 5 * time.Second
	DefaultProbeTimeout  = 2 * time.Second
)

// Log messages
const (
	LogMsgReachabilityChanged = "Network reachability changed"
	LogMsgProbeFailed         = "Reachability probe failed"
	LogMsgMonitorStarted      = "Reachability monitor started"
	LogMsgMonitorStopped      = "Reachability monitor stopped"
)

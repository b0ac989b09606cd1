// Package ui is a plain status terminal for the market feed.
//
// The screen shows the connection and reconnect policy, network
// reachability, the desired topics and the newest items. Key bindings map
// onto the coordinator's intents:
//
//	c        connect
//	d        disconnect
//	s        suspend with auto-restore
//	r        resume
//	1-4      toggle a topic
//	?        help
//	q ctrl+c quit
//
// Coordinator outputs reach the Bubble Tea program through a serial
// dispatcher so a slow terminal never blocks the feed.
package ui

package store

import "time"

// Debounce defaults
const (
	DefaultDebounceWindow  = 5 * time.Millisecond
	DefaultDebounceMaxWait = 50 * time.Millisecond
)

// Log messages
const (
	LogMsgItemEventApplied = "Item event applied"
	LogMsgStoreReset       = "Item store reset"
	LogMsgUnknownEventKind = "Ignoring item event with unknown kind"
)

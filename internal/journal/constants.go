package journal

import "time"

// Defaults
const (
	DefaultWorkers     = 2
	DefaultQueueSize   = 256
	DefaultRecentLimit = 50
	MaxRecentLimit     = 500
	CleanupInterval    = 6 * time.Hour
	PoolName           = "journal"
)

// Metadata keys added to every entry.
const (
	MetadataKeySchemaVersion = "schema_version"
)

// Write outcomes for the journal metric.
const (
	WriteStatusOK      = "ok"
	WriteStatusError   = "error"
	WriteStatusDropped = "dropped"
)

// Log messages - service events
const (
	LogMsgFailedToEncode   = "Failed to encode journal payload"
	LogMsgFailedToLogEvent = "Failed to write journal entry"
	LogMsgEventLogged      = "Journal entry written"
	LogMsgWriteDropped     = "Journal write dropped, pool stopped"
)

// Log messages - cleanup job
const (
	LogMsgCleanupJobStarting  = "Starting journal cleanup job"
	LogMsgCleanupJobFailed    = "Journal cleanup failed"
	LogMsgCleanupJobCompleted = "Journal cleanup completed"
)

// Log field keys - structured logging fields
const (
	LogFieldType          = "type"
	LogFieldError         = "error"
	LogFieldRetentionDays = "retentionDays"
	LogFieldDuration      = "duration"
	LogFieldDeletedCount  = "deletedCount"
)

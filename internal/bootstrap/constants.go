package bootstrap

import "time"

// =============================================================================
// File System Permissions
// =============================================================================

const (
	// DirPermission is the standard permission for creating directories
	DirPermission = 0755

	// LogFilePermission is the permission for log files
	LogFilePermission = 0644
)

// =============================================================================
// Logger Configuration
// =============================================================================

const (
	// LogFileTimestampFormat is the timestamp format for log filenames (YYYY-MM-DD_HH-MM-SS)
	LogFileTimestampFormat = "2006-01-02_15-04-05"

	// LogFileNamePattern is the format string for log filenames
	LogFileNamePattern = "session_%s.log"

	// LogFileExtension is the file extension for log files
	LogFileExtension = ".log"

	// LogFileRetentionCount is the number of older log files kept next to the new one
	LogFileRetentionCount = 9

	// ServiceName is attached to every log line
	ServiceName = "marketsync"
)

// Log messages for logger initialization
const (
	LogMsgLoggingInitialized  = "Logging initialized"
	LogMsgStarting            = "Starting marketsync"
	LogMsgConfigurationLoaded = "Configuration loaded"
	LogMsgConfigWarning       = "Configuration warning"
	ErrMsgFailedCreateLogsDir = "failed to create logs directory"
	ErrMsgFailedOpenLogFile   = "failed to open log file"
	LogMsgFailedDeleteOldLog  = "Failed to delete old log file %s: %v\n"
)

// =============================================================================
// Feed Initialization
// =============================================================================

const (
	LogMsgFeedInitialized      = "Feed coordinator initialized"
	LogMsgPrefsApplied         = "Topic preferences applied"
	LogMsgPrefsIgnored         = "Topic preferences ignored, FEED_TOPICS is set"
	ErrMsgFailedCreateChannel  = "failed to create feed channel"
	ErrMsgFailedCreateFeed     = "failed to create feed coordinator"
	ErrMsgFailedLoadPrefs      = "failed to load preferences"
)

// =============================================================================
// Journal Initialization
// =============================================================================

const (
	// JournalCleanupInterval is how often old journal entries are purged
	JournalCleanupInterval = 6 * time.Hour

	// JobPoolName names the worker pool running scheduled jobs
	JobPoolName = "jobs"

	// JobPoolQueueSize bounds pending scheduled jobs
	JobPoolQueueSize = 4

	LogMsgJournalInitialized  = "Journal initialized"
	LogMsgJournalDisabled     = "Journal disabled, DATABASE_URL not set"
	LogMsgJournalRetentionOff = "Journal retention disabled, keeping all entries"
	ErrMsgFailedConnectDB     = "failed to connect to journal database"
	ErrMsgFailedMigrate       = "failed to migrate journal database"
)

// =============================================================================
// Event Handler Configuration
// =============================================================================

const (
	LogMsgMetricsCollectorRegistered = "Metrics collector registered"
	LogMsgSSESubscriberRegistered    = "SSE subscriber registered"
	LogMsgJournalSubscribed          = "Journal subscribed to feed events"
)

// =============================================================================
// Shutdown Messages
// =============================================================================

const (
	LogMsgShuttingDownServer   = "Shutting down server..."
	LogMsgShuttingDownFeed     = "Shutting down feed..."
	LogMsgShuttingDownJournal  = "Shutting down journal..."
	LogMsgServerStopped        = "Shutdown complete"
	LogMsgServerForcedShutdown = "Server forced to shutdown"
)

package config

import "time"

// Environment variable names
const (
	EnvFeedURL               = "FEED_URL"
	EnvFeedAPIKey            = "FEED_API_KEY"
	EnvFeedTopics            = "FEED_TOPICS"
	EnvFeedItemEvents        = "FEED_ITEM_EVENTS"
	EnvDebounceWindow        = "DEBOUNCE_WINDOW"
	EnvDebounceMaxWait       = "DEBOUNCE_MAX_WAIT"
	EnvReconnectOnDrop       = "RECONNECT_ON_DROP"
	EnvReconnectInitialDelay = "RECONNECT_INITIAL_DELAY"
	EnvReconnectMaxDelay     = "RECONNECT_MAX_DELAY"
	EnvReconnectMaxFailures  = "RECONNECT_MAX_FAILURES"
	EnvProbeAddr             = "REACHABILITY_PROBE_ADDR"
	EnvProbeInterval         = "REACHABILITY_PROBE_INTERVAL"
	EnvProbeTimeout          = "REACHABILITY_PROBE_TIMEOUT"
	EnvClearOnDisconnect     = "CLEAR_ON_DISCONNECT"
	EnvHTTPPort              = "HTTP_PORT"
	EnvAPIKey                = "API_KEY"
	EnvTrustedProxies        = "TRUSTED_PROXIES"
	EnvDatabaseURL           = "DATABASE_URL"
	EnvJournalWorkers        = "JOURNAL_WORKERS"
	EnvJournalRetentionDays  = "JOURNAL_RETENTION_DAYS"
	EnvDiagnosticsSize       = "DIAGNOSTICS_SIZE"
	EnvDiagnosticsTTL        = "DIAGNOSTICS_TTL"
	EnvLogLevel              = "LOG_LEVEL"
	EnvLogFormat             = "LOG_FORMAT"
	EnvLogDir                = "LOG_DIR"
	EnvEnvironment           = "ENVIRONMENT"
	EnvPrefsPath             = "PREFS_PATH"
)

// Defaults
const (
	DefaultFeedURL               = "wss://waxpeer.com/socket.io/?EIO=4&transport=websocket"
	DefaultDebounceWindow        = 5 * time.Millisecond
	DefaultDebounceMaxWait       = 50 * time.Millisecond
	DefaultReconnectInitialDelay = time.Second
	DefaultReconnectMaxDelay     = 30 * time.Second
	DefaultReconnectMaxFailures  = 10
	DefaultProbeInterval         = 5 * time.Second
	DefaultProbeTimeout          = 2 * time.Second
	DefaultHTTPPort              = 8080
	DefaultJournalWorkers        = 2
	DefaultJournalRetentionDays  = 7
	DefaultDiagnosticsSize       = 100
	DefaultDiagnosticsTTL        = time.Hour
	DefaultLogLevel              = "info"
	DefaultLogFormat             = "text"
	DefaultLogDir                = "logs"
	DefaultEnvironment           = "dev"
	DefaultPrefsPath             = "~/.config/marketsync/prefs.toml"
)

// Log messages
const (
	LogMsgEnvFileNotLoaded = "No .env file loaded"
)

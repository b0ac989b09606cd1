package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/osse101/marketsync/internal/domain"
)

// Config holds the application configuration
type Config struct {
	FeedURL    string `validate:"required,url"`
	FeedAPIKey string
	Topics     domain.TopicSet
	ItemKinds  []domain.ItemEventKind `validate:"min=1"`

	DebounceWindow  time.Duration `validate:"gt=0"`
	DebounceMaxWait time.Duration `validate:"gte=0"`

	ReconnectOnDrop       bool
	ReconnectInitialDelay time.Duration `validate:"gt=0"`
	ReconnectMaxDelay     time.Duration `validate:"gtefield=ReconnectInitialDelay"`
	ReconnectMaxFailures  int           `validate:"gte=1"`

	ProbeAddr     string        `validate:"required,hostname_port"`
	ProbeInterval time.Duration `validate:"gt=0"`
	ProbeTimeout  time.Duration `validate:"gt=0"`

	ClearOnDisconnect bool

	Port   int `validate:"gte=0,lte=65535"`
	APIKey string // API key for mutating HTTP routes; empty disables the check

	// TrustedProxies may set X-Forwarded-For for rate limiting
	TrustedProxies []string `validate:"dive,ip"`

	DatabaseURL          string // empty disables the journal
	JournalWorkers       int    `validate:"gte=1"`
	JournalRetentionDays int    `validate:"gte=0"`

	DiagnosticsSize int           `validate:"gte=1"`
	DiagnosticsTTL  time.Duration `validate:"gt=0"`

	LogLevel    string `validate:"oneof=debug info warn warning error"`
	LogFormat   string `validate:"oneof=text json"`
	LogDir      string
	Environment string
	PrefsPath   string
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists, but don't fail if it doesn't (could be real env vars)
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds and validates a Config from the current environment.
func FromEnv() (*Config, error) {
	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	cfg := &Config{
		FeedURL:     getEnv(EnvFeedURL, DefaultFeedURL),
		FeedAPIKey:  getEnv(EnvFeedAPIKey, ""),
		ProbeAddr:   getEnv(EnvProbeAddr, ""),
		APIKey:      getEnv(EnvAPIKey, ""),
		DatabaseURL: getEnv(EnvDatabaseURL, ""),
		LogLevel:    strings.ToLower(getEnv(EnvLogLevel, DefaultLogLevel)),
		LogFormat:   strings.ToLower(getEnv(EnvLogFormat, DefaultLogFormat)),
		LogDir:      getEnv(EnvLogDir, DefaultLogDir),
		Environment: getEnv(EnvEnvironment, DefaultEnvironment),
		PrefsPath:   getEnv(EnvPrefsPath, DefaultPrefsPath),
	}

	for _, proxy := range strings.Split(getEnv(EnvTrustedProxies, ""), ",") {
		if proxy = strings.TrimSpace(proxy); proxy != "" {
			cfg.TrustedProxies = append(cfg.TrustedProxies, proxy)
		}
	}

	var err error
	cfg.Topics, err = domain.ParseTopics(getEnv(EnvFeedTopics, ""))
	collect(wrapEnv(EnvFeedTopics, err))
	cfg.ItemKinds, err = domain.ParseItemEventKinds(getEnv(EnvFeedItemEvents, ""))
	collect(wrapEnv(EnvFeedItemEvents, err))

	cfg.DebounceWindow, err = getEnvAsDuration(EnvDebounceWindow, DefaultDebounceWindow)
	collect(err)
	cfg.DebounceMaxWait, err = getEnvAsDuration(EnvDebounceMaxWait, DefaultDebounceMaxWait)
	collect(err)
	cfg.ReconnectOnDrop, err = getEnvAsBool(EnvReconnectOnDrop, true)
	collect(err)
	cfg.ReconnectInitialDelay, err = getEnvAsDuration(EnvReconnectInitialDelay, DefaultReconnectInitialDelay)
	collect(err)
	cfg.ReconnectMaxDelay, err = getEnvAsDuration(EnvReconnectMaxDelay, DefaultReconnectMaxDelay)
	collect(err)
	cfg.ReconnectMaxFailures, err = getEnvAsInt(EnvReconnectMaxFailures, DefaultReconnectMaxFailures)
	collect(err)
	cfg.ProbeInterval, err = getEnvAsDuration(EnvProbeInterval, DefaultProbeInterval)
	collect(err)
	cfg.ProbeTimeout, err = getEnvAsDuration(EnvProbeTimeout, DefaultProbeTimeout)
	collect(err)
	cfg.ClearOnDisconnect, err = getEnvAsBool(EnvClearOnDisconnect, false)
	collect(err)
	cfg.Port, err = getEnvAsInt(EnvHTTPPort, DefaultHTTPPort)
	collect(err)
	cfg.JournalWorkers, err = getEnvAsInt(EnvJournalWorkers, DefaultJournalWorkers)
	collect(err)
	cfg.JournalRetentionDays, err = getEnvAsInt(EnvJournalRetentionDays, DefaultJournalRetentionDays)
	collect(err)
	cfg.DiagnosticsSize, err = getEnvAsInt(EnvDiagnosticsSize, DefaultDiagnosticsSize)
	collect(err)
	cfg.DiagnosticsTTL, err = getEnvAsDuration(EnvDiagnosticsTTL, DefaultDiagnosticsTTL)
	collect(err)

	if cfg.ProbeAddr == "" {
		cfg.ProbeAddr, err = ProbeAddrFromURL(cfg.FeedURL)
		collect(wrapEnv(EnvFeedURL, err))
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks struct constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// HTTPEnabled reports whether the HTTP surface should run.
func (c *Config) HTTPEnabled() bool {
	return c.Port > 0
}

// JournalEnabled reports whether a database is configured.
func (c *Config) JournalEnabled() bool {
	return c.DatabaseURL != ""
}

// ProbeAddrFromURL derives host:port from a feed URL, using the scheme's
// default port when none is given.
func ProbeAddrFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidFeedURL, err)
	}
	host := u.Hostname()
	if host == "" {
		return "", fmt.Errorf("%w: missing host in %q", domain.ErrInvalidFeedURL, raw)
	}
	port := u.Port()
	if port == "" {
		switch strings.ToLower(u.Scheme) {
		case "https", "wss":
			port = "443"
		case "http", "ws":
			port = "80"
		default:
			return "", fmt.Errorf("%w: unsupported scheme %q", domain.ErrInvalidFeedURL, u.Scheme)
		}
	}
	return net.JoinHostPort(host, port), nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return defaultValue, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return n, nil
}

func getEnvAsBool(key string, defaultValue bool) (bool, error) {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return defaultValue, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return b, nil
}

func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return defaultValue, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return d, nil
}

func wrapEnv(key string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("invalid %s value: %w", key, err)
}

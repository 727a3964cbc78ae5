package config

import "time"

// Config is the root configuration structure for linkgate.
// It contains all configuration sections for the HTTP server, rate limiter,
// redirect cache, URL store and telemetry.
type Config struct {
	// Server contains HTTP server configuration including listen address,
	// timeouts and TLS.
	Server ServerConfig `yaml:"server"`

	// RateLimit contains per-client token bucket configuration.
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	// Cache contains the redirect cache configuration.
	Cache CacheConfig `yaml:"cache"`

	// Store contains URL store backend selection and retention settings.
	Store StoreConfig `yaml:"store"`

	// Shortener contains short code generation settings.
	Shortener ShortenerConfig `yaml:"shortener"`

	// Telemetry contains configuration for logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// ConfigWatch controls live reload of the configuration file.
	ConfigWatch ConfigWatchConfig `yaml:"config_watch"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8000", "0.0.0.0:8000").
	// Default: "127.0.0.1:8000"
	ListenAddress string `yaml:"listen_address"`

	// BaseURL is the public prefix used to build short_url in responses.
	// When empty the scheme and Host of the incoming request are used.
	BaseURL string `yaml:"base_url"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body.
	// Default: 10s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response.
	// Default: 10s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for in-flight
	// requests during graceful shutdown.
	// Default: 15s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes limits request header size.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// MaxBodyBytes limits the POST /shorten body size.
	// Default: 65536 (64KB)
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// TLS enables HTTPS when both files are set.
	TLS TLSConfig `yaml:"tls"`
}

// TLSConfig contains TLS certificate configuration.
type TLSConfig struct {
	// CertFile is the path to the PEM certificate.
	CertFile string `yaml:"cert_file"`

	// KeyFile is the path to the PEM private key.
	KeyFile string `yaml:"key_file"`

	// ReloadInterval is how often the files are checked for a renewed
	// certificate.
	// Default: 5m
	ReloadInterval time.Duration `yaml:"reload_interval"`
}

// Enabled reports whether TLS is configured.
func (t TLSConfig) Enabled() bool {
	return t.CertFile != "" && t.KeyFile != ""
}

// RateLimitConfig configures the per-client token bucket limiter.
type RateLimitConfig struct {
	// Enabled turns the limiter on.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// RateLimit is the number of requests allowed per window, which is also
	// the burst size.
	// Default: 100
	RateLimit int `yaml:"rate_limit"`

	// WindowSeconds is the window length in seconds.
	// Default: 60
	WindowSeconds float64 `yaml:"window_seconds"`

	// TrustForwardedFor keys clients by the first X-Forwarded-For entry
	// when present. Disable when not behind a trusted proxy.
	// Default: true
	TrustForwardedFor bool `yaml:"trust_forwarded_for"`
}

// CacheConfig configures the redirect LRU cache.
type CacheConfig struct {
	// Capacity is the maximum number of cached codes.
	// Default: 1024
	Capacity int `yaml:"capacity"`
}

// StoreConfig selects and configures the URL store.
type StoreConfig struct {
	// Backend is the store backend.
	// Options: "memory", "sqlite", "redis"
	// Default: "memory"
	Backend string `yaml:"backend"`

	// SQLite contains SQLite backend settings.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// Redis contains Redis backend settings.
	Redis RedisConfig `yaml:"redis"`

	// Retention controls link expiry.
	Retention RetentionConfig `yaml:"retention"`
}

// SQLiteConfig contains SQLite store settings.
type SQLiteConfig struct {
	// Path is the database file path.
	// Default: "data/linkgate.db"
	Path string `yaml:"path"`

	// Driver is the database/sql driver.
	// Options: "sqlite" (pure Go), "sqlite3" (cgo)
	// Default: "sqlite"
	Driver string `yaml:"driver"`

	// WALMode enables write-ahead logging.
	// Default: true
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is how long to wait on a locked database.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// RedisConfig contains Redis store settings.
type RedisConfig struct {
	// Addr is the server address.
	// Default: "127.0.0.1:6379"
	Addr string `yaml:"addr"`

	// Password is the AUTH password.
	Password string `yaml:"password"`

	// DB is the logical database number.
	DB int `yaml:"db"`

	// KeyPrefix namespaces all keys.
	// Default: "linkgate:"
	KeyPrefix string `yaml:"key_prefix"`

	// DialTimeout bounds connection setup.
	// Default: 5s
	DialTimeout time.Duration `yaml:"dial_timeout"`

	// ReadTimeout bounds each command.
	// Default: 500ms
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// BreakerFailures is the consecutive failure count that opens the
	// circuit breaker.
	// Default: 5
	BreakerFailures uint32 `yaml:"breaker_failures"`

	// BreakerOpenTimeout is how long the breaker stays open.
	// Default: 30s
	BreakerOpenTimeout time.Duration `yaml:"breaker_open_timeout"`
}

// RetentionConfig controls link expiry and pruning.
type RetentionConfig struct {
	// Days is how long new links live. 0 keeps links forever and disables
	// pruning.
	// Default: 0
	Days int `yaml:"days"`

	// PruneSchedule is the cron expression for pruning expired links.
	// Default: "0 * * * *"
	PruneSchedule string `yaml:"prune_schedule"`
}

// ShortenerConfig contains short code generation settings.
type ShortenerConfig struct {
	// CodeLength is the generated code length.
	// Default: 7
	CodeLength int `yaml:"code_length"`

	// MaxAttempts bounds retries on code collisions.
	// Default: 10
	MaxAttempts int `yaml:"max_attempts"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains structured logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// DenialSampleInterval is the minimum spacing between rate limit
	// denial log lines. Denials in between are counted in metrics only.
	// Default: 1s
	DenialSampleInterval time.Duration `yaml:"denial_sample_interval"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "linkgate"
	Namespace string `yaml:"namespace"`

	// Subsystem is the optional second metric name component.
	Subsystem string `yaml:"subsystem"`

	// RequestDurationBuckets are the HTTP latency histogram buckets in
	// seconds.
	RequestDurationBuckets []float64 `yaml:"request_duration_buckets"`
}

// ConfigWatchConfig controls live configuration reload.
type ConfigWatchConfig struct {
	// Enabled watches the config file and applies changes that do not
	// require a restart (currently the log level).
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Debounce coalesces bursts of file events.
	// Default: 500ms
	Debounce time.Duration `yaml:"debounce"`
}

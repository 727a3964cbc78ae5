package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress     = "127.0.0.1:8000"
	DefaultReadTimeout       = 10 * time.Second
	DefaultWriteTimeout      = 10 * time.Second
	DefaultIdleTimeout       = 120 * time.Second
	DefaultShutdownTimeout   = 15 * time.Second
	DefaultMaxHeaderBytes    = 1048576 // 1MB
	DefaultMaxBodyBytes      = 65536   // 64KB
	DefaultTLSReloadInterval = 5 * time.Minute

	// Rate limit defaults
	DefaultRateLimitEnabled  = true
	DefaultRateLimit         = 100
	DefaultWindowSeconds     = 60.0
	DefaultTrustForwardedFor = true

	// Cache defaults
	DefaultCacheCapacity = 1024

	// Store defaults
	DefaultStoreBackend            = "memory"
	DefaultSQLitePath              = "data/linkgate.db"
	DefaultSQLiteDriver            = "sqlite"
	DefaultSQLiteWALMode           = true
	DefaultSQLiteBusyTimeout       = 5 * time.Second
	DefaultRedisAddr               = "127.0.0.1:6379"
	DefaultRedisKeyPrefix          = "linkgate:"
	DefaultRedisDialTimeout        = 5 * time.Second
	DefaultRedisReadTimeout        = 500 * time.Millisecond
	DefaultRedisBreakerFailures    = 5
	DefaultRedisBreakerOpenTimeout = 30 * time.Second
	DefaultRetentionDays           = 0
	DefaultPruneSchedule           = "0 * * * *"

	// Shortener defaults
	DefaultCodeLength  = 7
	DefaultMaxAttempts = 10

	// Telemetry defaults
	DefaultLoggingLevel         = "info"
	DefaultLoggingFormat        = "json"
	DefaultDenialSampleInterval = time.Second
	DefaultMetricsEnabled       = true
	DefaultMetricsPath          = "/metrics"
	DefaultMetricsNamespace     = "linkgate"

	// Config watch defaults
	DefaultConfigWatchDebounce = 500 * time.Millisecond
)

// DefaultRequestDurationBuckets covers sub-millisecond cache hits up to
// slow store round trips.
var DefaultRequestDurationBuckets = []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5}

// NewDefault returns a Config with every field at its default. Boolean
// options that default to true can only be switched off from a file when
// parsing starts from this value.
func NewDefault() *Config {
	cfg := &Config{
		RateLimit: RateLimitConfig{
			Enabled:           DefaultRateLimitEnabled,
			TrustForwardedFor: DefaultTrustForwardedFor,
		},
		Store: StoreConfig{
			SQLite: SQLiteConfig{WALMode: DefaultSQLiteWALMode},
		},
		Telemetry: TelemetryConfig{
			Metrics: MetricsConfig{Enabled: DefaultMetricsEnabled},
		},
	}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.Server.TLS.ReloadInterval == 0 {
		cfg.Server.TLS.ReloadInterval = DefaultTLSReloadInterval
	}

	// Rate limit defaults
	if cfg.RateLimit.RateLimit == 0 {
		cfg.RateLimit.RateLimit = DefaultRateLimit
	}
	if cfg.RateLimit.WindowSeconds == 0 {
		cfg.RateLimit.WindowSeconds = DefaultWindowSeconds
	}

	// Cache defaults
	if cfg.Cache.Capacity == 0 {
		cfg.Cache.Capacity = DefaultCacheCapacity
	}

	// Store defaults
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = DefaultStoreBackend
	}
	if cfg.Store.SQLite.Path == "" {
		cfg.Store.SQLite.Path = DefaultSQLitePath
	}
	if cfg.Store.SQLite.Driver == "" {
		cfg.Store.SQLite.Driver = DefaultSQLiteDriver
	}
	if cfg.Store.SQLite.BusyTimeout == 0 {
		cfg.Store.SQLite.BusyTimeout = DefaultSQLiteBusyTimeout
	}
	if cfg.Store.Redis.Addr == "" {
		cfg.Store.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Store.Redis.KeyPrefix == "" {
		cfg.Store.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}
	if cfg.Store.Redis.DialTimeout == 0 {
		cfg.Store.Redis.DialTimeout = DefaultRedisDialTimeout
	}
	if cfg.Store.Redis.ReadTimeout == 0 {
		cfg.Store.Redis.ReadTimeout = DefaultRedisReadTimeout
	}
	if cfg.Store.Redis.BreakerFailures == 0 {
		cfg.Store.Redis.BreakerFailures = DefaultRedisBreakerFailures
	}
	if cfg.Store.Redis.BreakerOpenTimeout == 0 {
		cfg.Store.Redis.BreakerOpenTimeout = DefaultRedisBreakerOpenTimeout
	}
	if cfg.Store.Retention.PruneSchedule == "" {
		cfg.Store.Retention.PruneSchedule = DefaultPruneSchedule
	}

	// Shortener defaults
	if cfg.Shortener.CodeLength == 0 {
		cfg.Shortener.CodeLength = DefaultCodeLength
	}
	if cfg.Shortener.MaxAttempts == 0 {
		cfg.Shortener.MaxAttempts = DefaultMaxAttempts
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Logging.DenialSampleInterval == 0 {
		cfg.Telemetry.Logging.DenialSampleInterval = DefaultDenialSampleInterval
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if len(cfg.Telemetry.Metrics.RequestDurationBuckets) == 0 {
		cfg.Telemetry.Metrics.RequestDurationBuckets = append([]float64(nil), DefaultRequestDurationBuckets...)
	}

	// Config watch defaults
	if cfg.ConfigWatch.Debounce == 0 {
		cfg.ConfigWatch.Debounce = DefaultConfigWatchDebounce
	}
}

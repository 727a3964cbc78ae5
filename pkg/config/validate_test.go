package config

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:      "listen address without port",
			mutate:    func(c *Config) { c.Server.ListenAddress = "localhost" },
			wantField: "server.listen_address",
		},
		{
			name:      "relative base url",
			mutate:    func(c *Config) { c.Server.BaseURL = "/short" },
			wantField: "server.base_url",
		},
		{
			name:      "negative read timeout",
			mutate:    func(c *Config) { c.Server.ReadTimeout = -time.Second },
			wantField: "server.read_timeout",
		},
		{
			name:      "excessive header bytes",
			mutate:    func(c *Config) { c.Server.MaxHeaderBytes = 11 * 1024 * 1024 },
			wantField: "server.max_header_bytes",
		},
		{
			name:      "cert without key",
			mutate:    func(c *Config) { c.Server.TLS.CertFile = "cert.pem" },
			wantField: "server.tls",
		},
		{
			name:      "negative cert reload interval",
			mutate:    func(c *Config) { c.Server.TLS.ReloadInterval = -time.Minute },
			wantField: "server.tls.reload_interval",
		},
		{
			name:      "zero rate limit",
			mutate:    func(c *Config) { c.RateLimit.RateLimit = 0 },
			wantField: "rate_limit.rate_limit",
		},
		{
			name:      "NaN window",
			mutate:    func(c *Config) { c.RateLimit.WindowSeconds = math.NaN() },
			wantField: "rate_limit.window_seconds",
		},
		{
			name:      "infinite window",
			mutate:    func(c *Config) { c.RateLimit.WindowSeconds = math.Inf(1) },
			wantField: "rate_limit.window_seconds",
		},
		{
			name:      "negative cache capacity",
			mutate:    func(c *Config) { c.Cache.Capacity = -1 },
			wantField: "cache.capacity",
		},
		{
			name:      "unknown backend",
			mutate:    func(c *Config) { c.Store.Backend = "etcd" },
			wantField: "store.backend",
		},
		{
			name: "unknown sqlite driver",
			mutate: func(c *Config) {
				c.Store.Backend = "sqlite"
				c.Store.SQLite.Driver = "pgx"
			},
			wantField: "store.sqlite.driver",
		},
		{
			name: "redis without address",
			mutate: func(c *Config) {
				c.Store.Backend = "redis"
				c.Store.Redis.Addr = ""
			},
			wantField: "store.redis.addr",
		},
		{
			name: "bad prune schedule",
			mutate: func(c *Config) {
				c.Store.Retention.Days = 7
				c.Store.Retention.PruneSchedule = "every hour"
			},
			wantField: "store.retention.prune_schedule",
		},
		{
			name: "bad prune schedule ignored without retention",
			mutate: func(c *Config) {
				c.Store.Retention.PruneSchedule = "every hour"
			},
		},
		{
			name:      "short codes too short",
			mutate:    func(c *Config) { c.Shortener.CodeLength = 2 },
			wantField: "shortener.code_length",
		},
		{
			name:      "unknown log level",
			mutate:    func(c *Config) { c.Telemetry.Logging.Level = "trace" },
			wantField: "telemetry.logging.level",
		},
		{
			name:      "relative metrics path",
			mutate:    func(c *Config) { c.Telemetry.Metrics.Path = "metrics" },
			wantField: "telemetry.metrics.path",
		},
		{
			name: "metrics path ignored when disabled",
			mutate: func(c *Config) {
				c.Telemetry.Metrics.Enabled = false
				c.Telemetry.Metrics.Path = "metrics"
			},
		},
		{
			name:      "unsorted buckets",
			mutate:    func(c *Config) { c.Telemetry.Metrics.RequestDurationBuckets = []float64{1, 0.5} },
			wantField: "telemetry.metrics.request_duration_buckets",
		},
		{
			name:      "negative debounce",
			mutate:    func(c *Config) { c.ConfigWatch.Debounce = -time.Millisecond },
			wantField: "config_watch.debounce",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefault()
			tt.mutate(cfg)

			err := Validate(cfg)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("expected valid config, got %v", err)
				}
				return
			}

			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			found := false
			for _, fe := range verr.Errors {
				if fe.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error for field %q, got %v", tt.wantField, verr.Errors)
			}
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	single := ValidationError{Errors: []FieldError{{Field: "cache.capacity", Message: "bad"}}}
	if got := single.Error(); got != "configuration validation failed: cache.capacity: bad" {
		t.Errorf("unexpected single error message: %q", got)
	}

	multi := ValidationError{Errors: []FieldError{
		{Field: "a", Message: "one"},
		{Field: "b", Message: "two"},
	}}
	got := multi.Error()
	if !strings.Contains(got, "with 2 errors") || !strings.Contains(got, "  - b: two") {
		t.Errorf("unexpected multi error message: %q", got)
	}

	if (ValidationError{}).Error() != "configuration validation failed" {
		t.Error("unexpected empty error message")
	}
}

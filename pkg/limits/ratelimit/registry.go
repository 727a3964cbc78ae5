package ratelimit

import (
	"math"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultRateLimit is the default number of requests allowed per window.
	DefaultRateLimit = 100

	// DefaultWindowSeconds is the default window length in seconds.
	DefaultWindowSeconds = 60.0

	// UnknownClient is the key used when no client address can be determined.
	UnknownClient = "unknown"
)

// RegistryConfig configures a Registry.
type RegistryConfig struct {
	// RateLimit is the bucket capacity and the number of requests that
	// refill over one window.
	RateLimit int

	// WindowSeconds is the window length. Refill rate is
	// RateLimit / WindowSeconds tokens per second.
	WindowSeconds float64

	// Clock overrides the monotonic clock. Nil uses the system clock.
	Clock Clock

	// IgnoreForwardedFor keys clients by connection address only. By
	// default the first X-Forwarded-For entry wins.
	IgnoreForwardedFor bool
}

// Decision is the outcome of a single Check.
type Decision struct {
	// Allowed reports whether the request may proceed.
	Allowed bool

	// Limit is the bucket capacity.
	Limit int

	// Remaining is the whole number of tokens left after this decision.
	Remaining int

	// RetryAfter is how long until one token is available again.
	// Zero when Remaining > 0.
	RetryAfter time.Duration
}

// Registry maps client keys to token buckets.
//
// Buckets are created lazily on first sight of a key and are never evicted;
// the number of tracked clients grows with the number of distinct keys.
type Registry struct {
	rateLimit     int
	windowSeconds float64
	refillRate    float64
	clock         Clock
	trustXFF      bool

	mu      sync.Mutex
	buckets map[string]*TokenBucket
}

// NewRegistry creates a registry. Zero values in cfg are replaced by the
// package defaults; negative or non-finite values are rejected with an
// *InvalidConfigurationError.
func NewRegistry(cfg RegistryConfig) (*Registry, error) {
	if cfg.RateLimit == 0 {
		cfg.RateLimit = DefaultRateLimit
	}
	if cfg.WindowSeconds == 0 {
		cfg.WindowSeconds = DefaultWindowSeconds
	}
	if cfg.RateLimit < 0 {
		return nil, &InvalidConfigurationError{Field: "rate_limit", Value: float64(cfg.RateLimit)}
	}
	if !positiveFinite(cfg.WindowSeconds) {
		return nil, &InvalidConfigurationError{Field: "window_seconds", Value: cfg.WindowSeconds}
	}
	if cfg.Clock == nil {
		cfg.Clock = defaultClock
	}

	refillRate := float64(cfg.RateLimit) / cfg.WindowSeconds
	if !positiveFinite(refillRate) {
		return nil, &InvalidConfigurationError{Field: "refill_rate", Value: refillRate}
	}

	return &Registry{
		rateLimit:     cfg.RateLimit,
		windowSeconds: cfg.WindowSeconds,
		refillRate:    refillRate,
		clock:         cfg.Clock,
		trustXFF:      !cfg.IgnoreForwardedFor,
		buckets:       make(map[string]*TokenBucket),
	}, nil
}

// GetOrCreate returns the bucket for key, creating a full one if needed.
// Concurrent first requests for the same key always receive the same bucket.
func (r *Registry) GetOrCreate(key string) *TokenBucket {
	r.mu.Lock()
	defer r.mu.Unlock()

	if b, ok := r.buckets[key]; ok {
		return b
	}

	// Parameters were validated in NewRegistry.
	b, _ := NewTokenBucketWithClock(float64(r.rateLimit), r.refillRate, r.clock)
	r.buckets[key] = b
	return b
}

// Allow consumes one token from key's bucket.
func (r *Registry) Allow(key string) bool {
	return r.GetOrCreate(key).Take()
}

// Check consumes one token from key's bucket and reports the resulting
// quota state for response headers.
func (r *Registry) Check(key string) Decision {
	bucket := r.GetOrCreate(key)

	d := Decision{
		Allowed: bucket.Take(),
		Limit:   r.rateLimit,
	}

	remaining := bucket.Tokens()
	d.Remaining = int(math.Floor(remaining))
	if remaining < 1 {
		d.RetryAfter = bucket.TimeUntilAvailable(1)
	}

	return d
}

// Len returns the number of tracked clients.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.buckets)
}

// Reset forgets every client. Subsequent requests start with full buckets.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buckets = make(map[string]*TokenBucket)
}

// RateLimit returns the configured requests per window.
func (r *Registry) RateLimit() int {
	return r.rateLimit
}

// WindowSeconds returns the configured window length.
func (r *Registry) WindowSeconds() float64 {
	return r.windowSeconds
}

// RefillRate returns the derived refill rate in tokens per second.
func (r *Registry) RefillRate() float64 {
	return r.refillRate
}

// RetryAfterSeconds is the whole-second hint sent in the Retry-After header
// of rejected requests: the window length truncated to an integer.
func (r *Registry) RetryAfterSeconds() int {
	return int(r.windowSeconds)
}

// ClientKey derives the rate limiting key for a request.
//
// Resolution order:
//  1. First comma-separated entry of X-Forwarded-For, trimmed, if non-empty
//     (skipped when the registry was built with IgnoreForwardedFor)
//  2. Host part of the connection's remote address
//  3. "unknown"
func (r *Registry) ClientKey(req *http.Request) string {
	return ClientKey(req, r.trustXFF)
}

// ClientKey derives the rate limiting key for a request. When
// trustForwardedFor is false the X-Forwarded-For header is ignored and only
// the connection's remote address is used.
func ClientKey(req *http.Request, trustForwardedFor bool) string {
	if trustForwardedFor {
		if xff := req.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if first = strings.TrimSpace(first); first != "" {
				return first
			}
		}
	}

	if host := RemoteHost(req.RemoteAddr); host != "" {
		return host
	}

	return UnknownClient
}

// RemoteHost strips the port from a RemoteAddr value. Addresses without a
// port are returned unchanged.
func RemoteHost(remoteAddr string) string {
	if remoteAddr == "" {
		return ""
	}
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return strings.TrimSpace(remoteAddr)
	}
	return host
}

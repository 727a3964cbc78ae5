package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"mercator-hq/linkgate/pkg/limits/ratelimit"
	"mercator-hq/linkgate/pkg/telemetry/logging"

	"golang.org/x/time/rate"
)

// RateLimitExceededDetail is the detail message of a 429 response.
const RateLimitExceededDetail = "Rate limit exceeded. Try again later."

// DecisionRecorder receives every allow/deny decision.
type DecisionRecorder interface {
	RecordRateLimitDecision(allowed bool)
}

type rateLimiter struct {
	registry *ratelimit.Registry
	recorder DecisionRecorder
	logger   *slog.Logger
	exempt   map[string]struct{}

	denialLog  *rate.Sometimes
	suppressed atomic.Int64
}

// RateLimitOption configures RateLimitMiddleware.
type RateLimitOption func(*rateLimiter)

// WithDecisionRecorder reports decisions to recorder.
func WithDecisionRecorder(recorder DecisionRecorder) RateLimitOption {
	return func(rl *rateLimiter) { rl.recorder = recorder }
}

// WithLogger sets the logger used for denial messages.
func WithLogger(logger *slog.Logger) RateLimitOption {
	return func(rl *rateLimiter) {
		if logger != nil {
			rl.logger = logger
		}
	}
}

// WithDenialLogInterval sets the minimum spacing between denial log
// lines. Zero logs every denial.
func WithDenialLogInterval(d time.Duration) RateLimitOption {
	return func(rl *rateLimiter) {
		if d <= 0 {
			rl.denialLog = &rate.Sometimes{Every: 1}
			return
		}
		rl.denialLog = &rate.Sometimes{Interval: d}
	}
}

// WithExemptPaths lets requests for the exact given paths through
// without consuming a token.
func WithExemptPaths(paths ...string) RateLimitOption {
	return func(rl *rateLimiter) {
		for _, p := range paths {
			rl.exempt[p] = struct{}{}
		}
	}
}

// RateLimitMiddleware gates every request through the client's token bucket.
//
// Each request consumes one token from the bucket keyed by
// registry.ClientKey, so X-Forwarded-For handling follows the registry's
// configuration. Allowed requests get X-RateLimit-Limit and
// X-RateLimit-Remaining headers and are passed on with the client key in
// the context. Denied requests receive:
//
//	HTTP/1.1 429 Too Many Requests
//	Content-Type: application/json
//	Retry-After: 60
//
//	{"detail": "Rate limit exceeded. Try again later."}
//
// and the downstream handler is not invoked. Protocol upgrade requests
// (e.g. WebSocket handshakes) and exempt paths bypass the gate.
//
// Example usage:
//
//	registry, _ := ratelimit.NewRegistry(ratelimit.RegistryConfig{RateLimit: 100, WindowSeconds: 60})
//	handler = RateLimitMiddleware(registry, WithDecisionRecorder(collector))(handler)
func RateLimitMiddleware(registry *ratelimit.Registry, opts ...RateLimitOption) func(http.Handler) http.Handler {
	rl := &rateLimiter{
		registry:  registry,
		logger:    slog.Default(),
		exempt:    make(map[string]struct{}),
		denialLog: &rate.Sometimes{Interval: time.Second},
	}
	for _, opt := range opts {
		opt(rl)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isUpgrade(r) {
				next.ServeHTTP(w, r)
				return
			}
			if _, ok := rl.exempt[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			client := rl.registry.ClientKey(r)
			ctx := logging.WithClientKey(r.Context(), client)

			d := rl.registry.Check(client)
			if rl.recorder != nil {
				rl.recorder.RecordRateLimitDecision(d.Allowed)
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))

			if !d.Allowed {
				rl.logDenial(r.WithContext(ctx))
				w.Header().Set("Retry-After", strconv.Itoa(rl.registry.RetryAfterSeconds()))
				WriteDetail(w, http.StatusTooManyRequests, RateLimitExceededDetail)
				return
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// logDenial logs at most one denial per interval and reports how many
// were skipped since the last line.
func (rl *rateLimiter) logDenial(r *http.Request) {
	logged := false
	rl.denialLog.Do(func() {
		logged = true
		rl.logger.WarnContext(r.Context(), "rate limit exceeded",
			"method", r.Method,
			"path", r.URL.Path,
			"suppressed", rl.suppressed.Swap(0),
		)
	})
	if !logged {
		rl.suppressed.Add(1)
	}
}

// isUpgrade reports whether r asks to switch protocols.
func isUpgrade(r *http.Request) bool {
	if r.Header.Get("Upgrade") == "" {
		return false
	}
	for _, v := range r.Header.Values("Connection") {
		for _, token := range strings.Split(v, ",") {
			if strings.EqualFold(strings.TrimSpace(token), "upgrade") {
				return true
			}
		}
	}
	return false
}

// WriteDetail writes a JSON body of the form {"detail": "..."}.
func WriteDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}

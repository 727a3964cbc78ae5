// Package metrics provides Prometheus metrics collection for linkgate.
//
// # Metrics Categories
//
//   - Request Metrics: HTTP request count by method and status, latency
//   - Rate Limit Metrics: allow/deny decisions and tracked client count
//   - Cache Metrics: redirect cache hits, misses, size and evictions,
//     plus expired links pruned from the store
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//
//	collector.RecordHTTPRequest("GET", 301, 800*time.Microsecond)
//	collector.RecordRateLimitDecision(false)
//	collector.RegisterClientGauge(func() float64 { return float64(registry.Len()) })
//
//	mux.Handle("/metrics", collector.Handler())
//
// The collector satisfies the shortener's MetricsRecorder, so it can be
// passed straight to the URL service.
//
// # Cardinality Management
//
// The HTTP method label passes through a CardinalityLimiter; unknown
// methods past the limit are folded into "other". Client keys and short
// codes are never used as labels.
package metrics

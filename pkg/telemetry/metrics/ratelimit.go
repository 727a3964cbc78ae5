package metrics

import (
	"sync"

	"mercator-hq/linkgate/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// RateLimitMetrics tracks rate limiter decisions.
//
// Metrics:
//   - linkgate_ratelimit_decisions_total: Decisions by outcome ("allowed", "denied")
//   - linkgate_ratelimit_clients: Number of clients with a token bucket
type RateLimitMetrics struct {
	decisionsTotal *prometheus.CounterVec

	gaugeOnce sync.Once
}

// NewRateLimitMetrics creates and registers rate limit metrics with the provided registry.
func NewRateLimitMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RateLimitMetrics {
	rm := &RateLimitMetrics{
		decisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "ratelimit_decisions_total",
				Help:      "Total number of rate limit decisions by outcome",
			},
			[]string{"decision"},
		),
	}

	registry.MustRegister(rm.decisionsTotal)

	// Both series exist from startup.
	rm.decisionsTotal.WithLabelValues("allowed")
	rm.decisionsTotal.WithLabelValues("denied")

	return rm
}

// RecordDecision increments the decision counter.
func (rm *RateLimitMetrics) RecordDecision(allowed bool) {
	if allowed {
		rm.decisionsTotal.WithLabelValues("allowed").Inc()
		return
	}
	rm.decisionsTotal.WithLabelValues("denied").Inc()
}

// RegisterClientGauge registers the client count gauge once. Later calls
// are ignored.
func (rm *RateLimitMetrics) RegisterClientGauge(cfg *config.MetricsConfig, registry *prometheus.Registry, fn func() float64) {
	rm.gaugeOnce.Do(func() {
		registry.MustRegister(prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "ratelimit_clients",
				Help:      "Number of distinct clients holding a token bucket",
			},
			fn,
		))
	})
}

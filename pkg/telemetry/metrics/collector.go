package metrics

import (
	"strconv"
	"sync"
	"time"

	"mercator-hq/linkgate/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// URLCache is the cache label used for the redirect cache.
const URLCache = "urls"

// Collector is the main orchestrator for all Prometheus metrics in linkgate.
// It manages metric registration and provides a unified interface for
// recording metrics from the HTTP layer, the rate limiter and the redirect
// cache.
//
// A disabled collector still registers its metrics but records nothing.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	// Request metrics
	requestMetrics *RequestMetrics

	// Rate limiter metrics
	rateLimitMetrics *RateLimitMetrics

	// Redirect cache and store maintenance metrics
	cacheMetrics *CacheMetrics

	// Cardinality tracking
	cardinalityLimiter *CardinalityLimiter
}

// NewCollector creates a new metrics collector with the specified configuration
// and Prometheus registry. If registry is nil, a fresh registry is created.
//
// Example:
//
//	cfg := &config.MetricsConfig{
//		Enabled:   true,
//		Namespace: "linkgate",
//	}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	// Set defaults if not specified
	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if len(cfg.RequestDurationBuckets) == 0 {
		cfg.RequestDurationBuckets = append([]float64(nil), config.DefaultRequestDurationBuckets...)
	}

	c := &Collector{
		config:   cfg,
		registry: registry,
		// Bounds distinct HTTP methods.
		cardinalityLimiter: NewCardinalityLimiter(64),
	}

	c.requestMetrics = NewRequestMetrics(cfg, registry)
	c.rateLimitMetrics = NewRateLimitMetrics(cfg, registry)
	c.cacheMetrics = NewCacheMetrics(cfg, registry)

	return c
}

// Enabled reports whether recording is active.
func (c *Collector) Enabled() bool {
	return c.config.Enabled
}

// RecordHTTPRequest records a completed HTTP request.
//
// Parameters:
//   - method: HTTP method
//   - status: response status code
//   - duration: time spent in the handler chain
//
// Methods beyond the cardinality limit are recorded as "other".
func (c *Collector) RecordHTTPRequest(method string, status int, duration time.Duration) {
	if !c.config.Enabled {
		return
	}

	if !c.cardinalityLimiter.Allow(method) {
		method = "other"
	}

	c.requestMetrics.RecordRequest(method, strconv.Itoa(status), duration)
}

// RecordRateLimitDecision records the outcome of a rate limit check.
func (c *Collector) RecordRateLimitDecision(allowed bool) {
	if !c.config.Enabled {
		return
	}

	c.rateLimitMetrics.RecordDecision(allowed)
}

// RegisterClientGauge exposes the number of tracked rate limit clients.
// fn is invoked on every scrape and must be safe for concurrent use.
func (c *Collector) RegisterClientGauge(fn func() float64) {
	c.rateLimitMetrics.RegisterClientGauge(c.config, c.registry, fn)
}

// RecordCacheHit records a redirect cache hit.
func (c *Collector) RecordCacheHit() {
	if !c.config.Enabled {
		return
	}

	c.cacheMetrics.RecordHit(URLCache)
}

// RecordCacheMiss records a redirect cache miss.
func (c *Collector) RecordCacheMiss() {
	if !c.config.Enabled {
		return
	}

	c.cacheMetrics.RecordMiss(URLCache)
}

// UpdateCacheSize updates the current number of cached redirects.
func (c *Collector) UpdateCacheSize(entries int) {
	if !c.config.Enabled {
		return
	}

	c.cacheMetrics.UpdateSize(URLCache, entries)
}

// RecordCacheEviction records a capacity eviction from the redirect cache.
func (c *Collector) RecordCacheEviction() {
	if !c.config.Enabled {
		return
	}

	c.cacheMetrics.RecordEviction(URLCache)
}

// RecordPruned records links removed by a retention sweep.
func (c *Collector) RecordPruned(count int) {
	if !c.config.Enabled || count <= 0 {
		return
	}

	c.cacheMetrics.RecordPruned(count)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label combinations per metric.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow checks if a label set is allowed. Returns true if the label set
// already exists or if we haven't reached the cardinality limit yet.
// Returns false if adding this label set would exceed the limit.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	// Double-check after acquiring write lock
	if _, exists := cl.current[labelSet]; exists {
		return true
	}

	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}

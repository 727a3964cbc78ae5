// Package telemetry groups the observability packages used by linkgate.
//
// # Components
//
//   - logging: slog setup with a runtime-adjustable level and request
//     context fields
//   - metrics: Prometheus collectors for HTTP traffic, the rate limiter
//     and the redirect cache
//   - health: /health, /ready and /version endpoints
//
// # Usage
//
//	logger, err := logging.New(logging.Config{Level: "info", Format: "json"})
//	if err != nil {
//		return err
//	}
//	logger.SetDefault()
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	collector.RecordRateLimitDecision(true)
//
//	checker := health.New(2 * time.Second)
//	checker.RegisterCheck("store", store.Ping)
//	checker.Register(mux, version, commit, buildTime)
//
// Short codes and client keys are never used as metric labels.
package telemetry

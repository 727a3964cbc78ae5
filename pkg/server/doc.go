// Package server provides the linkgate HTTP server.
//
// The server ties the shortener handlers, health endpoints and metrics
// endpoint to one mux, wraps it in the middleware chain and manages the
// listener lifecycle.
//
// # Routes
//
//	POST /shorten        create a short link
//	GET  /stats/{code}   click statistics
//	GET  /{code}         301 redirect
//	GET  /health         liveness
//	GET  /ready          readiness (store ping)
//	GET  /version        build information
//	GET  /metrics        Prometheus exposition (path configurable)
//
// # Middleware
//
//	Recovery -> RequestID -> Logging -> Metrics -> RateLimit -> mux
//
// The rate limiter is left out of the chain when rate_limit.enabled is
// false, and the metrics middleware when metrics are disabled. The metrics
// path is never rate limited.
//
// # Basic Usage
//
//	srv, err := server.NewServer(cfg, server.Dependencies{
//	    Shortener: svc,
//	    Registry:  registry,
//	    Metrics:   collector,
//	    Health:    checker,
//	})
//	if err != nil {
//	    return err
//	}
//
//	// Blocks until ctx is cancelled, then drains in-flight requests.
//	if err := srv.Start(ctx); err != nil {
//	    return err
//	}
//
// # TLS
//
// Setting server.tls.cert_file and key_file serves HTTPS (TLS 1.2+). The
// files are re-read every server.tls.reload_interval when their
// modification time changes, so renewed certificates are picked up
// without a restart. A renewal that fails to load is logged and the
// previous pair stays in service.
//
// # Graceful Shutdown
//
// When ctx is cancelled the server stops accepting connections and waits
// up to server.shutdown_timeout for in-flight requests. Signal handling is
// left to the caller (see pkg/cli).
package server

// Package health provides health check endpoints for linkgate.
//
// # Endpoints
//
//   - /health: Liveness, always {"status":"ok","service":"url-shortener"}
//     while the process serves requests
//   - /ready: Readiness, runs registered component checks (the URL store
//     ping) and returns 503 when any fails
//   - /version: Build information
//
// # Usage
//
//	checker := health.New(2 * time.Second)
//	checker.RegisterCheck("store", service.Ping)
//	checker.Register(mux, version, commit, buildTime)
//
// Checks run concurrently, each bounded by the checker timeout.
package health

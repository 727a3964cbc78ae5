// linkgate is a URL-shortener HTTP service with per-client rate limiting
// and an LRU-cached redirect path.
//
// It provides:
//   - POST /shorten, GET /{code} (301) and GET /stats/{code}
//   - Token-bucket rate limiting per client (100 requests / 60s by default)
//   - A bounded LRU cache in front of the URL store
//   - Memory, SQLite and Redis URL stores
//   - Prometheus metrics, health and readiness endpoints
//
// Usage:
//
//	# Start server with default configuration
//	linkgate run
//
//	# Start with custom configuration file
//	linkgate run --config /path/to/config.yaml
//
//	# Check a configuration file and print the effective settings
//	linkgate validate --config config.yaml --print
//
//	# Show version information
//	linkgate version
package main

func main() {
	Execute()
}

// Package handlers provides the HTTP handlers of the shortener API.
//
// # Endpoints
//
//	POST /shorten        {"url": "..."} -> 201 {"short_code", "original_url", "short_url"}
//	GET  /stats/{code}   -> 200 {"short_code", "original_url", "created_at", "click_count"}
//	GET  /{code}         -> 301 Location: <original_url>
//
// Health, readiness and version endpoints live in pkg/telemetry/health and
// the metrics endpoint in pkg/telemetry/metrics; the server mounts all of
// them on the same mux.
//
// # Request Flow
//
// Each handler follows the same pattern:
//
//  1. Parse the body or path value
//  2. Call the shortener service
//  3. Map errors with proxy.HandleError
//  4. Write a JSON body (or a bare 301)
//
// Codes that contain anything other than ASCII letters and digits are
// answered with 404 without touching the store.
package handlers

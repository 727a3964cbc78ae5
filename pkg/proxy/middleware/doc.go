// Package middleware provides HTTP middleware for cross-cutting concerns.
//
// # Middleware Chain
//
// The server assembles the chain outermost first:
//
//	handler = Chain(mux,
//	    RecoveryMiddleware,
//	    RequestIDMiddleware,
//	    LoggingMiddleware,
//	    MetricsMiddleware(collector),
//	    RateLimitMiddleware(registry, opts...),
//	)
//
// Recovery sits outside everything so a panic anywhere still produces a
// 500. Logging and metrics sit outside the rate limiter so rejected
// requests are observed too.
//
// # Rate Limiting
//
// RateLimitMiddleware consumes one token per request from the client's
// bucket. Clients are keyed by the first X-Forwarded-For entry, falling
// back to the remote address. Rejections are answered with 429, a
// Retry-After header and {"detail": "Rate limit exceeded. Try again later."}.
// Protocol upgrade requests and exempt paths (the metrics endpoint) are
// never gated.
//
// # Request ID
//
// RequestIDMiddleware reuses a client-supplied X-Request-ID or generates a
// UUID v4, echoes it in the response and stores it in the context where
// the logging handler picks it up.
package middleware

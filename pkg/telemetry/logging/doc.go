// Package logging configures structured logging on top of log/slog.
//
// # Overview
//
// The logging package provides:
//   - JSON or text output
//   - A level that can be changed at runtime (config reload)
//   - Request-scoped fields (request_id, client) pulled from the context
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//	logger.SetDefault()
//
//	ctx = logging.WithRequestID(ctx, "req-123")
//	slog.InfoContext(ctx, "link created", "code", code) // includes request_id
//
//	_ = logger.SetLevel("debug")
package logging

package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
)

// RecoveryMiddleware recovers from panics in HTTP handlers and returns a 500
// Internal Server Error with a JSON detail body. It logs the panic with a
// stack trace but does not expose internal details to clients.
//
// http.ErrAbortHandler is re-panicked so net/http can abort the response.
// A panic after the handler has started its response is logged and turned
// into http.ErrAbortHandler as well: the status line is already on the
// wire, so the connection is dropped instead of appending a JSON body to a
// partial response.
//
// Example usage:
//
//	handler = RecoveryMiddleware(handler)
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := newResponseWriter(w)

		defer func() {
			err := recover()
			if err == nil {
				return
			}
			if err == http.ErrAbortHandler {
				panic(err)
			}

			slog.ErrorContext(r.Context(), "panic in handler",
				"error", err,
				"method", r.Method,
				"path", r.URL.Path,
				"stack", string(debug.Stack()),
				"response_started", rw.written,
			)

			if rw.written {
				panic(http.ErrAbortHandler)
			}
			WriteDetail(rw, http.StatusInternalServerError, "Internal Server Error")
		}()

		next.ServeHTTP(rw, r)
	})
}

package logging

import (
	"context"
	"sync/atomic"
)

// Context keys for common log fields.
type contextKey string

const (
	// RequestIDKey is the context key for request IDs.
	RequestIDKey contextKey = "request_id"

	// ClientKeyKey is the context key for the rate limiting client key.
	ClientKeyKey contextKey = "client"

	clientSlotKey contextKey = "client_slot"
)

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithClientSlot returns a context that carries an empty client key slot.
// A WithClientKey call on any context derived from it also fills the slot,
// so middleware further out in the chain can log the client key once the
// inner handlers return.
func WithClientSlot(ctx context.Context) context.Context {
	return context.WithValue(ctx, clientSlotKey, new(atomic.Pointer[string]))
}

// WithClientKey adds the client key to the context.
func WithClientKey(ctx context.Context, client string) context.Context {
	if slot, ok := ctx.Value(clientSlotKey).(*atomic.Pointer[string]); ok {
		slot.Store(&client)
	}
	return context.WithValue(ctx, ClientKeyKey, client)
}

// GetClientKey retrieves the client key from the context, falling back to
// a slot filled by a derived context.
func GetClientKey(ctx context.Context) string {
	if client, ok := ctx.Value(ClientKeyKey).(string); ok {
		return client
	}
	if slot, ok := ctx.Value(clientSlotKey).(*atomic.Pointer[string]); ok {
		if client := slot.Load(); client != nil {
			return *client
		}
	}
	return ""
}

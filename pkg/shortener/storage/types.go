package storage

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Store is the authoritative mapping from short code to URL record.
// Implementations must be thread-safe and support concurrent access.
type Store interface {
	// Save inserts a new record. Returns ErrCodeExists if the code is
	// already taken. Existing records are never overwritten.
	Save(ctx context.Context, rec *URLRecord) error

	// Get returns the record for code. Returns ErrNotFound if the code is
	// unknown or its record has expired.
	Get(ctx context.Context, code string) (*URLRecord, error)

	// IncrementClicks adds one to the record's click counter.
	// Returns ErrNotFound if the code is unknown or expired.
	IncrementClicks(ctx context.Context, code string) error

	// DeleteExpired removes every record whose expiry is at or before now
	// and returns the removed codes.
	DeleteExpired(ctx context.Context, now time.Time) ([]string, error)

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}

// URLRecord is a single shortened URL.
type URLRecord struct {
	// Code is the short code, unique within a store.
	Code string

	// OriginalURL is the redirect target. Immutable after Save.
	OriginalURL string

	// CreatedAt is when the record was saved.
	CreatedAt time.Time

	// ExpiresAt is when the record stops resolving. Zero means never.
	ExpiresAt time.Time

	// ClickCount is the number of redirects served.
	ClickCount int64
}

// Expired reports whether the record has expired as of now.
func (r *URLRecord) Expired(now time.Time) bool {
	return !r.ExpiresAt.IsZero() && !now.Before(r.ExpiresAt)
}

// clone returns a copy safe to hand to callers.
func (r *URLRecord) clone() *URLRecord {
	c := *r
	return &c
}

func validateRecord(rec *URLRecord) error {
	if rec == nil {
		return fmt.Errorf("record cannot be nil")
	}
	if rec.Code == "" {
		return fmt.Errorf("code cannot be empty")
	}
	if rec.OriginalURL == "" {
		return fmt.Errorf("original url cannot be empty")
	}
	return nil
}

var (
	// ErrNotFound is returned when a code has no live record.
	ErrNotFound = errors.New("short code not found")

	// ErrCodeExists is returned by Save when the code is already taken.
	ErrCodeExists = errors.New("short code already exists")

	// ErrStoreUnavailable is returned when a remote backend is failing fast
	// because its circuit breaker is open.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// StoreError represents a failure inside a storage backend.
type StoreError struct {
	Backend   string // Backend type ("memory", "sqlite", "redis")
	Operation string // Operation that failed ("save", "get", ...)
	Cause     error  // Underlying error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error [backend=%s, operation=%s]: %v", e.Backend, e.Operation, e.Cause)
}

func (e *StoreError) Unwrap() error {
	return e.Cause
}

func newStoreError(backend, operation string, cause error) *StoreError {
	return &StoreError{Backend: backend, Operation: operation, Cause: cause}
}

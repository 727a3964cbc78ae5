package shortener

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"mercator-hq/linkgate/pkg/cache"
	"mercator-hq/linkgate/pkg/shortener/storage"
)

// DefaultMaxAttempts bounds code generation retries on collision.
const DefaultMaxAttempts = 10

// Config configures a Service.
type Config struct {
	// CodeLength is the length of generated codes.
	// Default: DefaultCodeLength
	CodeLength int

	// MaxAttempts is how many codes to try before giving up.
	// Default: DefaultMaxAttempts
	MaxAttempts int

	// Retention is how long a new link lives. Zero keeps links forever.
	Retention time.Duration
}

// Link is the cached form of a stored record. Both fields are immutable for
// the life of the record.
type Link struct {
	Target string
	// ExpiresAt is zero for links that never expire.
	ExpiresAt time.Time
}

// Expired reports whether the link no longer resolves at now.
func (l Link) Expired(now time.Time) bool {
	return !l.ExpiresAt.IsZero() && !now.Before(l.ExpiresAt)
}

// NewCache creates a redirect cache suitable for NewService.
func NewCache(capacity int, opts ...cache.Option[Link]) (*cache.LRU[Link], error) {
	return cache.New[Link](capacity, opts...)
}

// Service shortens URLs and resolves codes through a read-through cache.
//
// The store is authoritative. The cache only ever holds code -> Link pairs
// copied from the store; click counters are always read from and written
// to the store.
type Service struct {
	store   storage.Store
	urls    *cache.LRU[Link]
	config  Config
	metrics MetricsRecorder
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithMetrics sets the metrics recorder.
func WithMetrics(m MetricsRecorder) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService creates a Service over store and urls.
func NewService(store storage.Store, urls *cache.LRU[Link], cfg Config, opts ...Option) *Service {
	if cfg.CodeLength <= 0 {
		cfg.CodeLength = DefaultCodeLength
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}

	s := &Service{
		store:   store,
		urls:    urls,
		config:  cfg,
		metrics: NoOpMetricsRecorder{},
		logger:  slog.Default().With("component", "shortener"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Shorten validates rawURL, stores it under a fresh code and returns the
// new record.
func (s *Service) Shorten(ctx context.Context, rawURL string) (*storage.URLRecord, error) {
	target, err := NormalizeURL(rawURL)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	rec := &storage.URLRecord{
		OriginalURL: target,
		CreatedAt:   now,
	}
	if s.config.Retention > 0 {
		rec.ExpiresAt = now.Add(s.config.Retention)
	}

	for attempt := 1; attempt <= s.config.MaxAttempts; attempt++ {
		code, err := generateCode(s.config.CodeLength)
		if err != nil {
			return nil, fmt.Errorf("generate code: %w", err)
		}
		if Reserved(code) {
			continue
		}
		rec.Code = code

		err = s.store.Save(ctx, rec)
		if errors.Is(err, storage.ErrCodeExists) {
			s.logger.Debug("short code collision", "code", code, "attempt", attempt)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("save %s: %w", code, err)
		}

		s.urls.Put(code, Link{Target: target, ExpiresAt: rec.ExpiresAt})
		s.metrics.UpdateCacheSize(s.urls.Len())
		return rec, nil
	}

	return nil, ErrCodeSpaceExhausted
}

// Resolve returns the target URL for code.
//
// Lookup order: cache, then store. A store hit is copied into the cache;
// a store miss is returned as ErrNotFound and never cached. A cached link
// past its expiry is dropped and reported as ErrNotFound without waiting
// for the next prune.
func (s *Service) Resolve(ctx context.Context, code string) (string, error) {
	now := s.now()

	if link, ok := s.urls.Get(code); ok {
		if !link.Expired(now) {
			s.metrics.RecordCacheHit()
			return link.Target, nil
		}
		s.urls.Invalidate(code)
		s.metrics.UpdateCacheSize(s.urls.Len())
		return "", ErrNotFound
	}
	s.metrics.RecordCacheMiss()

	rec, err := s.store.Get(ctx, code)
	if err != nil {
		return "", err
	}
	if rec.Expired(now) {
		return "", ErrNotFound
	}

	s.urls.Put(code, Link{Target: rec.OriginalURL, ExpiresAt: rec.ExpiresAt})
	s.metrics.UpdateCacheSize(s.urls.Len())
	return rec.OriginalURL, nil
}

// Redirect resolves code and counts the click.
func (s *Service) Redirect(ctx context.Context, code string) (string, error) {
	target, err := s.Resolve(ctx, code)
	if err != nil {
		return "", err
	}

	if err := s.store.IncrementClicks(ctx, code); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// Expired or removed since it was cached.
			s.urls.Invalidate(code)
			s.metrics.UpdateCacheSize(s.urls.Len())
			return "", err
		}
		// The redirect still works without the counter.
		s.logger.Warn("failed to record click", "code", code, "error", err)
	}

	return target, nil
}

// Stats returns the authoritative record for code, click count included.
func (s *Service) Stats(ctx context.Context, code string) (*storage.URLRecord, error) {
	return s.store.Get(ctx, code)
}

// PruneExpired deletes expired records and evicts them from the cache.
// Returns the number of records removed.
func (s *Service) PruneExpired(ctx context.Context) (int, error) {
	removed, err := s.store.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("delete expired: %w", err)
	}

	for _, code := range removed {
		s.urls.Invalidate(code)
	}

	s.metrics.RecordPruned(len(removed))
	s.metrics.UpdateCacheSize(s.urls.Len())

	if len(removed) > 0 {
		s.logger.Info("pruned expired links", "count", len(removed))
	}
	return len(removed), nil
}

// Ping checks the store.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// NormalizeURL trims rawURL and checks it is an absolute http(s) URL with a
// host. The trimmed input is returned unchanged otherwise.
func NormalizeURL(rawURL string) (string, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return "", fmt.Errorf("%w: url must not be empty", ErrInvalidURL)
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: url must start with http:// or https://", ErrInvalidURL)
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("%w: url must have a host", ErrInvalidURL)
	}
	if strings.ContainsAny(trimmed, " \t\r\n") {
		return "", fmt.Errorf("%w: url must not contain whitespace", ErrInvalidURL)
	}

	return trimmed, nil
}

package storage

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	//go:embed lua/save.lua
	saveLua    string
	saveScript = redis.NewScript(saveLua)

	//go:embed lua/increment_clicks.lua
	incrementClicksLua    string
	incrementClicksScript = redis.NewScript(incrementClicksLua)
)

// Hash fields of a stored record. The scripts under lua/ use the same names.
const (
	fieldOriginalURL = "original_url"
	fieldCreatedAt   = "created_at"
	fieldExpiresAt   = "expires_at"
	fieldClickCount  = "click_count"
)

// RedisConfig contains configuration for the Redis store.
type RedisConfig struct {
	// Addr is the host:port of the Redis server.
	Addr string

	// Password for AUTH, if any.
	Password string

	// DB selects the logical database.
	DB int

	// KeyPrefix namespaces every key written by the store.
	// Default: "linkgate:"
	KeyPrefix string

	// DialTimeout bounds connection establishment.
	// Default: 5 seconds
	DialTimeout time.Duration

	// ReadTimeout bounds each command round trip.
	// Default: 500 milliseconds
	ReadTimeout time.Duration

	// Breaker tunes the circuit breaker around every command.
	Breaker BreakerConfig
}

// RedisStore implements Store on Redis.
//
// Each record is a hash at <prefix>url:<code>. Records with an expiry also
// carry a key TTL and are indexed in the sorted set <prefix>expiry, scored
// by expiry unix time, so DeleteExpired can report which codes it removed.
//
// Every command runs through a circuit breaker so an unreachable server
// fails requests fast instead of stacking up timeouts.
type RedisStore struct {
	client  *redis.Client
	prefix  string
	breaker *breaker
	logger  *slog.Logger
	now     func() time.Time
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	if cfg.Addr == "" {
		return nil, newStoreError("redis", "open", fmt.Errorf("addr cannot be empty"))
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = 5 * time.Second
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 500 * time.Millisecond
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.ReadTimeout,
	})

	s := NewRedisStoreWithClient(client, cfg.KeyPrefix, cfg.Breaker)
	if err := s.Ping(ctx); err != nil {
		client.Close()
		return nil, err
	}

	s.logger.Info("Redis store initialized", "addr", cfg.Addr, "db", cfg.DB, "prefix", s.prefix)
	return s, nil
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(client *redis.Client, prefix string, breakerCfg BreakerConfig) *RedisStore {
	if prefix == "" {
		prefix = "linkgate:"
	}
	logger := slog.Default().With("component", "shortener.storage.redis")

	return &RedisStore{
		client:  client,
		prefix:  prefix,
		breaker: newBreaker("redis-store", breakerCfg, logger),
		logger:  logger,
		now:     time.Now,
	}
}

func (s *RedisStore) recordKey(code string) string {
	return s.prefix + "url:" + code
}

func (s *RedisStore) expiryKey() string {
	return s.prefix + "expiry"
}

// Save inserts rec. Claiming the code, writing the remaining fields and
// setting the expiry run as one script, so readers never see a half-written
// record and a failure cannot leave one behind.
func (s *RedisStore) Save(ctx context.Context, rec *URLRecord) error {
	if err := validateRecord(rec); err != nil {
		return newStoreError("redis", "save", err)
	}

	return s.breaker.do(func() error {
		created, err := saveScript.Run(ctx, s.client,
			[]string{s.recordKey(rec.Code), s.expiryKey()},
			saveArgs(rec)...,
		).Int64()
		if err != nil {
			return newStoreError("redis", "save", err)
		}
		if created == 0 {
			return ErrCodeExists
		}
		return nil
	})
}

// saveArgs lays out ARGV for lua/save.lua.
func saveArgs(rec *URLRecord) []interface{} {
	var expiresAt, expiresAtMillis, score int64
	if !rec.ExpiresAt.IsZero() {
		expiresAt = rec.ExpiresAt.UnixNano()
		expiresAtMillis = rec.ExpiresAt.UnixMilli()
		score = rec.ExpiresAt.Unix()
	}
	return []interface{}{
		rec.OriginalURL,
		rec.CreatedAt.UnixNano(),
		expiresAt,
		rec.ClickCount,
		expiresAtMillis,
		rec.Code,
		score,
	}
}

// Get returns the live record for code.
func (s *RedisStore) Get(ctx context.Context, code string) (*URLRecord, error) {
	var rec *URLRecord

	err := s.breaker.do(func() error {
		fields, err := s.client.HGetAll(ctx, s.recordKey(code)).Result()
		if err != nil {
			return newStoreError("redis", "get", err)
		}
		if len(fields) == 0 {
			return ErrNotFound
		}

		rec, err = parseRecord(code, fields)
		if err != nil {
			return newStoreError("redis", "get", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if rec.Expired(s.now()) {
		return nil, ErrNotFound
	}
	return rec, nil
}

// IncrementClicks bumps the click counter of a live record. The existence
// check and the increment are atomic, so a record expiring in between is
// never recreated as a bare counter.
func (s *RedisStore) IncrementClicks(ctx context.Context, code string) error {
	return s.breaker.do(func() error {
		count, err := incrementClicksScript.Run(ctx, s.client,
			[]string{s.recordKey(code)},
			s.now().UnixNano(),
		).Int64()
		if err != nil {
			return newStoreError("redis", "increment_clicks", err)
		}
		if count < 0 {
			return ErrNotFound
		}
		return nil
	})
}

// DeleteExpired removes records indexed with an expiry at or before now.
// Redis usually drops the hashes itself via TTL; this also clears the index.
func (s *RedisStore) DeleteExpired(ctx context.Context, now time.Time) ([]string, error) {
	var codes []string

	err := s.breaker.do(func() error {
		var err error
		codes, err = s.client.ZRangeByScore(ctx, s.expiryKey(), &redis.ZRangeBy{
			Min: "-inf",
			Max: strconv.FormatInt(now.Unix(), 10),
		}).Result()
		if err != nil {
			return newStoreError("redis", "delete_expired", err)
		}
		if len(codes) == 0 {
			return nil
		}

		keys := make([]string, len(codes))
		members := make([]interface{}, len(codes))
		for i, code := range codes {
			keys[i] = s.recordKey(code)
			members[i] = code
		}

		if err := s.client.Del(ctx, keys...).Err(); err != nil {
			return newStoreError("redis", "delete_expired", err)
		}
		if err := s.client.ZRem(ctx, s.expiryKey(), members...).Err(); err != nil {
			return newStoreError("redis", "delete_expired", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(codes) == 0 {
		return nil, nil
	}
	return codes, nil
}

// Ping checks the server connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.breaker.do(func() error {
		if err := s.client.Ping(ctx).Err(); err != nil {
			return newStoreError("redis", "ping", err)
		}
		return nil
	})
}

// BreakerState returns "closed", "half-open" or "open".
func (s *RedisStore) BreakerState() string {
	return s.breaker.state()
}

// Close closes the client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func parseRecord(code string, fields map[string]string) (*URLRecord, error) {
	url, ok := fields[fieldOriginalURL]
	if !ok {
		return nil, errors.New("record missing original_url")
	}

	rec := &URLRecord{Code: code, OriginalURL: url}

	if v := fields[fieldCreatedAt]; v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", fieldCreatedAt, err)
		}
		rec.CreatedAt = time.Unix(0, n).UTC()
	}
	if v := fields[fieldExpiresAt]; v != "" && v != "0" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", fieldExpiresAt, err)
		}
		rec.ExpiresAt = time.Unix(0, n).UTC()
	}
	if v := fields[fieldClickCount]; v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", fieldClickCount, err)
		}
		rec.ClickCount = n
	}

	return rec, nil
}

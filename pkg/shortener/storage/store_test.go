package storage

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type storeFactory func(t *testing.T, now *time.Time) Store

func backends() map[string]storeFactory {
	return map[string]storeFactory{
		"memory": func(t *testing.T, now *time.Time) Store {
			s := NewMemoryStore()
			s.now = func() time.Time { return *now }
			return s
		},
		"sqlite": func(t *testing.T, now *time.Time) Store {
			s, err := NewSQLiteStore(&SQLiteConfig{
				Path:        filepath.Join(t.TempDir(), "test.db"),
				WALMode:     true,
				BusyTimeout: time.Second,
			})
			require.NoError(t, err)
			s.now = func() time.Time { return *now }
			t.Cleanup(func() { s.Close() })
			return s
		},
	}
}

// runStoreSuite runs fn against every local backend.
func runStoreSuite(t *testing.T, fn func(t *testing.T, s Store, now *time.Time)) {
	for name, factory := range backends() {
		t.Run(name, func(t *testing.T) {
			now := baseTime
			fn(t, factory(t, &now), &now)
		})
	}
}

func record(code, url string) *URLRecord {
	return &URLRecord{Code: code, OriginalURL: url, CreatedAt: baseTime}
}

func TestStore_SaveAndGet(t *testing.T) {
	runStoreSuite(t, func(t *testing.T, s Store, _ *time.Time) {
		ctx := context.Background()

		require.NoError(t, s.Save(ctx, record("abc1234", "https://example.com/a")))

		got, err := s.Get(ctx, "abc1234")
		require.NoError(t, err)
		assert.Equal(t, "abc1234", got.Code)
		assert.Equal(t, "https://example.com/a", got.OriginalURL)
		assert.True(t, got.CreatedAt.Equal(baseTime))
		assert.True(t, got.ExpiresAt.IsZero())
		assert.Zero(t, got.ClickCount)
	})
}

func TestStore_GetMissing(t *testing.T) {
	runStoreSuite(t, func(t *testing.T, s Store, _ *time.Time) {
		_, err := s.Get(context.Background(), "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestStore_SaveDuplicate(t *testing.T) {
	runStoreSuite(t, func(t *testing.T, s Store, _ *time.Time) {
		ctx := context.Background()

		require.NoError(t, s.Save(ctx, record("dup", "https://first.example")))
		err := s.Save(ctx, record("dup", "https://second.example"))
		assert.ErrorIs(t, err, ErrCodeExists)

		got, err := s.Get(ctx, "dup")
		require.NoError(t, err)
		assert.Equal(t, "https://first.example", got.OriginalURL)
	})
}

func TestStore_SaveInvalid(t *testing.T) {
	runStoreSuite(t, func(t *testing.T, s Store, _ *time.Time) {
		ctx := context.Background()

		var storeErr *StoreError
		assert.ErrorAs(t, s.Save(ctx, nil), &storeErr)
		assert.ErrorAs(t, s.Save(ctx, record("", "https://x.example")), &storeErr)
		assert.ErrorAs(t, s.Save(ctx, record("code", "")), &storeErr)
	})
}

func TestStore_IncrementClicks(t *testing.T) {
	runStoreSuite(t, func(t *testing.T, s Store, _ *time.Time) {
		ctx := context.Background()
		require.NoError(t, s.Save(ctx, record("clk", "https://example.com")))

		for i := 0; i < 3; i++ {
			require.NoError(t, s.IncrementClicks(ctx, "clk"))
		}

		got, err := s.Get(ctx, "clk")
		require.NoError(t, err)
		assert.Equal(t, int64(3), got.ClickCount)

		assert.ErrorIs(t, s.IncrementClicks(ctx, "missing"), ErrNotFound)
	})
}

func TestStore_ExpiredRecordsAreHidden(t *testing.T) {
	runStoreSuite(t, func(t *testing.T, s Store, now *time.Time) {
		ctx := context.Background()

		rec := record("exp", "https://example.com")
		rec.ExpiresAt = baseTime.Add(time.Hour)
		require.NoError(t, s.Save(ctx, rec))

		_, err := s.Get(ctx, "exp")
		require.NoError(t, err)

		*now = baseTime.Add(time.Hour)

		_, err = s.Get(ctx, "exp")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, s.IncrementClicks(ctx, "exp"), ErrNotFound)
	})
}

func TestStore_DeleteExpired(t *testing.T) {
	runStoreSuite(t, func(t *testing.T, s Store, _ *time.Time) {
		ctx := context.Background()

		for _, tc := range []struct {
			code    string
			expires time.Duration
		}{
			{"old1", time.Minute},
			{"old2", 2 * time.Minute},
			{"future", 48 * time.Hour},
			{"forever", 0},
		} {
			rec := record(tc.code, "https://example.com/"+tc.code)
			if tc.expires > 0 {
				rec.ExpiresAt = baseTime.Add(tc.expires)
			}
			require.NoError(t, s.Save(ctx, rec))
		}

		removed, err := s.DeleteExpired(ctx, baseTime.Add(time.Hour))
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"old1", "old2"}, removed)

		removed, err = s.DeleteExpired(ctx, baseTime.Add(time.Hour))
		require.NoError(t, err)
		assert.Empty(t, removed)

		_, err = s.Get(ctx, "forever")
		assert.NoError(t, err)
	})
}

func TestStore_ConcurrentSaveSameCode(t *testing.T) {
	runStoreSuite(t, func(t *testing.T, s Store, _ *time.Time) {
		ctx := context.Background()

		var wg sync.WaitGroup
		var mu sync.Mutex
		saved, conflicts := 0, 0

		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := s.Save(ctx, record("race", "https://example.com"))
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					saved++
				case errors.Is(err, ErrCodeExists):
					conflicts++
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, saved)
		assert.Equal(t, 19, conflicts)
	})
}

func TestStore_Ping(t *testing.T) {
	runStoreSuite(t, func(t *testing.T, s Store, _ *time.Time) {
		assert.NoError(t, s.Ping(context.Background()))
	})
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	rec := record("copy", "https://example.com")
	require.NoError(t, s.Save(ctx, rec))
	rec.OriginalURL = "https://mutated.example"

	got, err := s.Get(ctx, "copy")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", got.OriginalURL)

	got.ClickCount = 99
	again, _ := s.Get(ctx, "copy")
	assert.Zero(t, again.ClickCount)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Config{})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = Open(ctx, Config{
		Backend: BackendSQLite,
		SQLite:  &SQLiteConfig{Path: filepath.Join(t.TempDir(), "open.db")},
	})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open(ctx, Config{Backend: "cassandra"})
	assert.Error(t, err)

	_, err = Open(ctx, Config{Backend: BackendRedis})
	var storeErr *StoreError
	assert.ErrorAs(t, err, &storeErr)
}

func TestURLRecord_Expired(t *testing.T) {
	rec := &URLRecord{}
	assert.False(t, rec.Expired(baseTime), "zero expiry never expires")

	rec.ExpiresAt = baseTime
	assert.True(t, rec.Expired(baseTime))
	assert.False(t, rec.Expired(baseTime.Add(-time.Nanosecond)))
}

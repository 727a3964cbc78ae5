package storage

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore implements Store using an in-process map.
// This is the default backend. All data is lost when the process exits.
//
// MemoryStore is thread-safe and supports concurrent access using sync.RWMutex.
type MemoryStore struct {
	records map[string]*URLRecord
	mu      sync.RWMutex
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*URLRecord),
		now:     time.Now,
	}
}

// Save inserts rec unless its code is already taken.
func (m *MemoryStore) Save(ctx context.Context, rec *URLRecord) error {
	if err := validateRecord(rec); err != nil {
		return newStoreError("memory", "save", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.records[rec.Code]; exists {
		return ErrCodeExists
	}
	m.records[rec.Code] = rec.clone()
	return nil
}

// Get returns a copy of the live record for code.
func (m *MemoryStore) Get(ctx context.Context, code string) (*URLRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[code]
	if !ok || rec.Expired(m.now()) {
		return nil, ErrNotFound
	}
	return rec.clone(), nil
}

// IncrementClicks bumps the click counter for a live record.
func (m *MemoryStore) IncrementClicks(ctx context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[code]
	if !ok || rec.Expired(m.now()) {
		return ErrNotFound
	}
	rec.ClickCount++
	return nil
}

// DeleteExpired removes expired records and returns their codes in sorted
// order.
func (m *MemoryStore) DeleteExpired(ctx context.Context, now time.Time) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var removed []string
	for code, rec := range m.records {
		if rec.Expired(now) {
			delete(m.records, code)
			removed = append(removed, code)
		}
	}
	sort.Strings(removed)
	return removed, nil
}

// Len returns the number of stored records, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// Ping always succeeds.
func (m *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error {
	return nil
}

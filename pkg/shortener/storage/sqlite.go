package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // "sqlite3" driver (cgo)
	_ "modernc.org/sqlite"          // "sqlite" driver (pure Go)
)

const (
	// DriverModernc is the pure Go SQLite driver name.
	DriverModernc = "sqlite"

	// DriverMattn is the cgo SQLite driver name.
	DriverMattn = "sqlite3"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS short_urls (
	code         TEXT PRIMARY KEY,
	original_url TEXT NOT NULL,
	created_at   INTEGER NOT NULL,
	expires_at   INTEGER NOT NULL DEFAULT 0,
	click_count  INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_short_urls_expires_at ON short_urls(expires_at);
`

// liveClause restricts a query to records that have not expired as of the
// bound unix-nano timestamp.
const liveClause = `(expires_at = 0 OR expires_at > ?)`

// SQLiteConfig contains configuration for the SQLite store.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// Driver selects the database/sql driver: DriverModernc or DriverMattn.
	// Default: DriverModernc
	Driver string

	// WALMode enables Write-Ahead Logging mode.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:        "data/linkgate.db",
		Driver:      DriverModernc,
		WALMode:     true,
		BusyTimeout: 5 * time.Second,
	}
}

// SQLiteStore implements Store on top of SQLite through sqlx.
// A single connection is used since SQLite only supports one writer.
type SQLiteStore struct {
	db     *sqlx.DB
	config *SQLiteConfig
	logger *slog.Logger
	now    func() time.Time
}

// urlRow is the scanned form of a short_urls row.
type urlRow struct {
	Code        string `db:"code"`
	OriginalURL string `db:"original_url"`
	CreatedAt   int64  `db:"created_at"`
	ExpiresAt   int64  `db:"expires_at"`
	ClickCount  int64  `db:"click_count"`
}

func (r *urlRow) record() *URLRecord {
	rec := &URLRecord{
		Code:        r.Code,
		OriginalURL: r.OriginalURL,
		CreatedAt:   time.Unix(0, r.CreatedAt).UTC(),
		ClickCount:  r.ClickCount,
	}
	if r.ExpiresAt != 0 {
		rec.ExpiresAt = time.Unix(0, r.ExpiresAt).UTC()
	}
	return rec
}

// NewSQLiteStore opens (creating if needed) the database and its schema.
func NewSQLiteStore(config *SQLiteConfig) (*SQLiteStore, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}
	if config.Path == "" {
		return nil, newStoreError("sqlite", "open", fmt.Errorf("db path cannot be empty"))
	}
	if config.Driver == "" {
		config.Driver = DriverModernc
	}
	if config.BusyTimeout == 0 {
		config.BusyTimeout = 5 * time.Second
	}

	logger := slog.Default().With("component", "shortener.storage.sqlite")

	db, err := sqlx.Open(config.Driver, config.Path)
	if err != nil {
		return nil, newStoreError("sqlite", "open", err)
	}

	// Pragmas are per connection, so keep exactly one alive.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &SQLiteStore{
		db:     db,
		config: config,
		logger: logger,
		now:    time.Now,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite store initialized",
		"path", config.Path,
		"driver", config.Driver,
		"wal_mode", config.WALMode,
	)

	return s, nil
}

func (s *SQLiteStore) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return newStoreError("sqlite", "enable_wal", err)
		}
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return newStoreError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(sqliteSchema); err != nil {
		return newStoreError("sqlite", "create_schema", err)
	}
	return nil
}

// Save inserts rec unless its code is already taken.
func (s *SQLiteStore) Save(ctx context.Context, rec *URLRecord) error {
	if err := validateRecord(rec); err != nil {
		return newStoreError("sqlite", "save", err)
	}

	var expiresAt int64
	if !rec.ExpiresAt.IsZero() {
		expiresAt = rec.ExpiresAt.UnixNano()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO short_urls (code, original_url, created_at, expires_at, click_count)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (code) DO NOTHING`,
		rec.Code, rec.OriginalURL, rec.CreatedAt.UnixNano(), expiresAt, rec.ClickCount,
	)
	if err != nil {
		return newStoreError("sqlite", "save", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return newStoreError("sqlite", "save", err)
	}
	if n == 0 {
		return ErrCodeExists
	}
	return nil
}

// Get returns the live record for code.
func (s *SQLiteStore) Get(ctx context.Context, code string) (*URLRecord, error) {
	var row urlRow
	err := s.db.GetContext(ctx, &row, `
		SELECT code, original_url, created_at, expires_at, click_count
		FROM short_urls
		WHERE code = ? AND `+liveClause,
		code, s.now().UnixNano(),
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, newStoreError("sqlite", "get", err)
	}
	return row.record(), nil
}

// IncrementClicks bumps the click counter for a live record.
func (s *SQLiteStore) IncrementClicks(ctx context.Context, code string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE short_urls SET click_count = click_count + 1
		WHERE code = ? AND `+liveClause,
		code, s.now().UnixNano(),
	)
	if err != nil {
		return newStoreError("sqlite", "increment_clicks", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return newStoreError("sqlite", "increment_clicks", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteExpired removes expired records in one transaction and returns
// their codes.
func (s *SQLiteStore) DeleteExpired(ctx context.Context, now time.Time) ([]string, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, newStoreError("sqlite", "delete_expired", err)
	}
	defer tx.Rollback()

	cutoff := now.UnixNano()

	var codes []string
	if err := tx.SelectContext(ctx, &codes, `
		SELECT code FROM short_urls
		WHERE expires_at > 0 AND expires_at <= ?
		ORDER BY code`, cutoff); err != nil {
		return nil, newStoreError("sqlite", "delete_expired", err)
	}
	if len(codes) == 0 {
		return nil, nil
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM short_urls
		WHERE expires_at > 0 AND expires_at <= ?`, cutoff); err != nil {
		return nil, newStoreError("sqlite", "delete_expired", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, newStoreError("sqlite", "delete_expired", err)
	}

	s.logger.Debug("deleted expired records", "count", len(codes))
	return codes, nil
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return newStoreError("sqlite", "ping", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

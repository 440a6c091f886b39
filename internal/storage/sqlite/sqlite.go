// Package sqlite persists the graph cache in a local SQLite file for single-node deployments.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"portfolio-graphs/internal/domain"
	"portfolio-graphs/internal/storage"
	"portfolio-graphs/internal/storage/migrations"
)

// DB wraps the SQLite connection.
type DB struct {
	sql *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
// Use ":memory:" for a throwaway database.
func Open(ctx context.Context, path string) (*DB, error) {
	dsn := path
	if path != ":memory:" {
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// a single writer avoids SQLITE_BUSY under concurrent cache fills
	sqlDB.SetMaxOpenConns(1)

	if err := migrations.RunSQLiteMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return &DB{sql: sqlDB}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	return d.sql.Close()
}

// GraphCacheStore implements storage.GraphCacheStore using SQLite.
type GraphCacheStore struct {
	db *DB
}

// NewGraphCacheStore creates a new GraphCacheStore.
func NewGraphCacheStore(db *DB) *GraphCacheStore {
	return &GraphCacheStore{db: db}
}

// Compile-time interface check.
var _ storage.GraphCacheStore = (*GraphCacheStore)(nil)

// Get retrieves an entry. Returns ErrNotFound if not exists.
func (s *GraphCacheStore) Get(ctx context.Context, namespace, hash string) (*domain.CacheEntry, error) {
	var e domain.CacheEntry
	var createdAtMs int64
	err := s.db.sql.QueryRowContext(ctx,
		`SELECT namespace, hash, data, created_at FROM graph_cache WHERE namespace = ? AND hash = ?`,
		namespace, hash,
	).Scan(&e.Namespace, &e.Hash, &e.Data, &createdAtMs)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get graph cache entry: %w", err)
	}
	e.CreatedAt = time.UnixMilli(createdAtMs).UTC()
	return &e, nil
}

// Put stores an entry, replacing any previous entry with the same key wholesale.
func (s *GraphCacheStore) Put(ctx context.Context, e *domain.CacheEntry) error {
	if e == nil || e.Namespace == "" || e.Hash == "" {
		return storage.ErrInvalidInput
	}

	_, err := s.db.sql.ExecContext(ctx, `
		INSERT INTO graph_cache (namespace, hash, data, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (namespace, hash)
		DO UPDATE SET data = excluded.data, created_at = excluded.created_at
	`, e.Namespace, e.Hash, e.Data, e.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("put graph cache entry: %w", err)
	}
	return nil
}

// DeleteOlderThan removes entries created before cutoff.
func (s *GraphCacheStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.sql.ExecContext(ctx, `DELETE FROM graph_cache WHERE created_at < ?`, cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("purge graph cache: %w", err)
	}
	return res.RowsAffected()
}

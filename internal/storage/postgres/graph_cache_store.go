package postgres

import (
	"context"
	"fmt"
	"time"

	"portfolio-graphs/internal/domain"
	"portfolio-graphs/internal/storage"
)

// GraphCacheStore implements storage.GraphCacheStore using PostgreSQL.
type GraphCacheStore struct {
	pool *Pool
}

// NewGraphCacheStore creates a new GraphCacheStore.
func NewGraphCacheStore(pool *Pool) *GraphCacheStore {
	return &GraphCacheStore{pool: pool}
}

// Compile-time interface check.
var _ storage.GraphCacheStore = (*GraphCacheStore)(nil)

// Get retrieves an entry. Returns ErrNotFound if not exists.
func (s *GraphCacheStore) Get(ctx context.Context, namespace, hash string) (*domain.CacheEntry, error) {
	query := `
		SELECT namespace, hash, data, created_at
		FROM graph_cache
		WHERE namespace = $1 AND hash = $2
	`

	start := time.Now()
	var e domain.CacheEntry
	err := s.pool.QueryRow(ctx, query, namespace, hash).Scan(&e.Namespace, &e.Hash, &e.Data, &e.CreatedAt)
	if err != nil {
		if isNotFoundError(err) {
			observe("cache_get", start, nil)
			return nil, storage.ErrNotFound
		}
		observe("cache_get", start, err)
		return nil, fmt.Errorf("get graph cache entry: %w", err)
	}
	observe("cache_get", start, nil)
	return &e, nil
}

// Put stores an entry, replacing any previous entry with the same key wholesale.
func (s *GraphCacheStore) Put(ctx context.Context, e *domain.CacheEntry) error {
	query := `
		INSERT INTO graph_cache (namespace, hash, data, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (namespace, hash)
		DO UPDATE SET data = EXCLUDED.data, created_at = EXCLUDED.created_at
	`

	start := time.Now()
	_, err := s.pool.Exec(ctx, query, e.Namespace, e.Hash, e.Data, e.CreatedAt)
	observe("cache_put", start, err)
	if err != nil {
		return fmt.Errorf("put graph cache entry: %w", err)
	}
	return nil
}

// DeleteOlderThan removes entries created before cutoff.
func (s *GraphCacheStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM graph_cache WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge graph cache: %w", err)
	}
	return tag.RowsAffected(), nil
}

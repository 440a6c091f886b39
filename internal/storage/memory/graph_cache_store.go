package memory

import (
	"context"
	"sync"
	"time"

	"portfolio-graphs/internal/domain"
	"portfolio-graphs/internal/storage"
)

type cacheKey struct {
	namespace string
	hash      string
}

// GraphCacheStore is an in-memory implementation of storage.GraphCacheStore.
type GraphCacheStore struct {
	mu   sync.RWMutex
	data map[cacheKey]*domain.CacheEntry
}

// NewGraphCacheStore creates a new in-memory graph cache store.
func NewGraphCacheStore() *GraphCacheStore {
	return &GraphCacheStore{
		data: make(map[cacheKey]*domain.CacheEntry),
	}
}

// Get retrieves an entry. Returns ErrNotFound if not exists.
func (s *GraphCacheStore) Get(_ context.Context, namespace, hash string) (*domain.CacheEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.data[cacheKey{namespace, hash}]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return copyEntry(e), nil
}

// Put stores an entry, replacing any previous entry wholesale.
func (s *GraphCacheStore) Put(_ context.Context, e *domain.CacheEntry) error {
	if e == nil || e.Namespace == "" || e.Hash == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[cacheKey{e.Namespace, e.Hash}] = copyEntry(e)
	return nil
}

// DeleteOlderThan removes entries created before cutoff.
func (s *GraphCacheStore) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for k, e := range s.data {
		if e.CreatedAt.Before(cutoff) {
			delete(s.data, k)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of stored entries.
func (s *GraphCacheStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

func copyEntry(e *domain.CacheEntry) *domain.CacheEntry {
	entryCopy := *e
	entryCopy.Data = append([]byte(nil), e.Data...)
	return &entryCopy
}

var _ storage.GraphCacheStore = (*GraphCacheStore)(nil)

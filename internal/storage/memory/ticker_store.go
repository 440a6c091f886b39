package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"portfolio-graphs/internal/domain"
	"portfolio-graphs/internal/storage"
)

// TickerStore is an in-memory implementation of storage.TickerStore.
type TickerStore struct {
	mu   sync.RWMutex
	data map[string]*domain.TickerPoint // keyed by (exchange, pair, created_at)
}

// NewTickerStore creates a new in-memory ticker store.
func NewTickerStore() *TickerStore {
	return &TickerStore{
		data: make(map[string]*domain.TickerPoint),
	}
}

// tickerKey generates a unique key for a ticker point.
func tickerKey(exchange, pair string, createdAt time.Time) string {
	return fmt.Sprintf("%s|%s|%d", exchange, pair, createdAt.UnixMilli())
}

// InsertBulk adds multiple points. Fails entire batch on duplicate.
func (s *TickerStore) InsertBulk(_ context.Context, points []*domain.TickerPoint) error {
	if len(points) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Track keys in this batch to detect intra-batch duplicates
	batchKeys := make(map[string]struct{}, len(points))

	// First pass: check for duplicates (existing + intra-batch)
	for _, p := range points {
		if p == nil || p.Exchange == "" || p.Pair == "" {
			return storage.ErrInvalidInput
		}
		key := tickerKey(p.Exchange, p.Pair, p.CreatedAt)

		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	// Second pass: insert all
	for _, p := range points {
		pointCopy := *p
		s.data[tickerKey(p.Exchange, p.Pair, p.CreatedAt)] = &pointCopy
	}

	return nil
}

// GetSince retrieves points of an exchange pair created at or after since, ordered by created_at ASC.
func (s *TickerStore) GetSince(_ context.Context, exchange, pair string, since time.Time) ([]*domain.TickerPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.TickerPoint
	for _, p := range s.data {
		if p.Exchange == exchange && p.Pair == pair && !p.CreatedAt.Before(since) {
			pointCopy := *p
			result = append(result, &pointCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	return result, nil
}

var _ storage.TickerStore = (*TickerStore)(nil)

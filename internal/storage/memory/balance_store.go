package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"portfolio-graphs/internal/domain"
	"portfolio-graphs/internal/storage"
)

// BalanceStore is an in-memory implementation of storage.BalanceStore.
type BalanceStore struct {
	mu   sync.RWMutex
	data []*domain.BalancePoint
}

// NewBalanceStore creates a new in-memory balance store.
func NewBalanceStore() *BalanceStore {
	return &BalanceStore{}
}

// InsertBulk adds multiple balance points atomically.
func (s *BalanceStore) InsertBulk(_ context.Context, points []*domain.BalancePoint) error {
	if len(points) == 0 {
		return nil
	}

	// Validate the whole batch before inserting anything
	for _, p := range points {
		if p == nil || p.UserID == 0 || p.Exchange == "" || p.Currency == "" {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range points {
		pointCopy := *p
		s.data = append(s.data, &pointCopy)
	}
	return nil
}

// GetSince retrieves balances of a user currency created at or after since, ordered by created_at ASC.
func (s *BalanceStore) GetSince(_ context.Context, userID int64, currency string, since time.Time) ([]*domain.BalancePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.BalancePoint
	for _, p := range s.data {
		if p.UserID == userID && p.Currency == currency && !p.CreatedAt.Before(since) {
			pointCopy := *p
			result = append(result, &pointCopy)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	return result, nil
}

// GetLatest retrieves the most recent balance per exchange of a user currency, ordered by exchange.
func (s *BalanceStore) GetLatest(_ context.Context, userID int64, currency string) ([]*domain.BalancePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	latest := make(map[string]*domain.BalancePoint)
	for _, p := range s.data {
		if p.UserID != userID || p.Currency != currency {
			continue
		}
		if cur, ok := latest[p.Exchange]; !ok || !p.CreatedAt.Before(cur.CreatedAt) {
			latest[p.Exchange] = p
		}
	}

	result := make([]*domain.BalancePoint, 0, len(latest))
	for _, p := range latest {
		pointCopy := *p
		result = append(result, &pointCopy)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Exchange < result[j].Exchange
	})

	return result, nil
}

var _ storage.BalanceStore = (*BalanceStore)(nil)

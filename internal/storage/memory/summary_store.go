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

// SummaryStore is an in-memory implementation of storage.SummaryStore.
type SummaryStore struct {
	mu        sync.RWMutex
	instances map[string]*domain.SummaryInstance // keyed by (user_id, summary_type)
	points    []*domain.SummaryPoint
}

// NewSummaryStore creates a new in-memory summary store.
func NewSummaryStore() *SummaryStore {
	return &SummaryStore{
		instances: make(map[string]*domain.SummaryInstance),
	}
}

// instanceKey generates a unique key for a summary instance.
func instanceKey(userID int64, summaryType string) string {
	return fmt.Sprintf("%d|%s", userID, summaryType)
}

// InsertInstance enables a summary type for a user. Returns ErrDuplicateKey if already enabled.
func (s *SummaryStore) InsertInstance(_ context.Context, si *domain.SummaryInstance) error {
	if si == nil || si.UserID == 0 || si.SummaryType == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := instanceKey(si.UserID, si.SummaryType)
	if _, exists := s.instances[key]; exists {
		return storage.ErrDuplicateKey
	}
	instanceCopy := *si
	s.instances[key] = &instanceCopy
	return nil
}

// GetInstances retrieves the summary types a user has enabled, ordered by summary type.
func (s *SummaryStore) GetInstances(_ context.Context, userID int64) ([]*domain.SummaryInstance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.SummaryInstance
	for _, si := range s.instances {
		if si.UserID == userID {
			instanceCopy := *si
			result = append(result, &instanceCopy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].SummaryType < result[j].SummaryType
	})

	return result, nil
}

// InsertBulk adds multiple summary points atomically.
func (s *SummaryStore) InsertBulk(_ context.Context, points []*domain.SummaryPoint) error {
	if len(points) == 0 {
		return nil
	}

	for _, p := range points {
		if p == nil || p.UserID == 0 || p.SummaryType == "" {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range points {
		pointCopy := *p
		s.points = append(s.points, &pointCopy)
	}
	return nil
}

// GetSince retrieves summary points created at or after since, ordered by created_at ASC.
func (s *SummaryStore) GetSince(_ context.Context, userID int64, summaryType string, since time.Time) ([]*domain.SummaryPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.SummaryPoint
	for _, p := range s.points {
		if p.UserID == userID && p.SummaryType == summaryType && !p.CreatedAt.Before(since) {
			pointCopy := *p
			result = append(result, &pointCopy)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	return result, nil
}

var _ storage.SummaryStore = (*SummaryStore)(nil)

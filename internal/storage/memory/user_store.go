package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"portfolio-graphs/internal/domain"
	"portfolio-graphs/internal/storage"
)

// UserStore is an in-memory implementation of storage.UserStore.
type UserStore struct {
	mu   sync.RWMutex
	data map[int64]*domain.User
}

// NewUserStore creates a new in-memory user store.
func NewUserStore() *UserStore {
	return &UserStore{
		data: make(map[int64]*domain.User),
	}
}

// Insert adds a new user. Returns ErrDuplicateKey if the id exists.
func (s *UserStore) Insert(_ context.Context, u *domain.User) error {
	if u == nil || u.ID == 0 {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[u.ID]; exists {
		return storage.ErrDuplicateKey
	}

	userCopy := *u
	s.data[u.ID] = &userCopy
	return nil
}

// GetByID retrieves a user by id. Returns ErrNotFound if not exists.
func (s *UserStore) GetByID(_ context.Context, id int64) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.data[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	userCopy := *u
	return &userCopy, nil
}

// CountSignupsByDay returns users created per day since the given time, ordered by day ASC.
func (s *UserStore) CountSignupsByDay(_ context.Context, since time.Time) ([]domain.DailyCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[time.Time]int64)
	for _, u := range s.data {
		if u.CreatedAt.Before(since) {
			continue
		}
		counts[domain.TruncateDay(u.CreatedAt)]++
	}

	result := make([]domain.DailyCount, 0, len(counts))
	for day, n := range counts {
		result = append(result, domain.DailyCount{Day: day, Count: n})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Day.Before(result[j].Day)
	})

	return result, nil
}

var _ storage.UserStore = (*UserStore)(nil)

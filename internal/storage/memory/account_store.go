package memory

import (
	"context"
	"sort"
	"sync"

	"portfolio-graphs/internal/domain"
	"portfolio-graphs/internal/storage"
)

// AccountStore is an in-memory implementation of storage.AccountStore.
type AccountStore struct {
	mu     sync.RWMutex
	nextID int64
	data   []*domain.Account
}

// NewAccountStore creates a new in-memory account store.
func NewAccountStore() *AccountStore {
	return &AccountStore{nextID: 1}
}

// Insert adds a new account and assigns its id when unset.
func (s *AccountStore) Insert(_ context.Context, a *domain.Account) error {
	if a == nil || a.UserID == 0 || a.Exchange == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	accountCopy := *a
	if accountCopy.ID == 0 {
		accountCopy.ID = s.nextID
	}
	s.nextID = accountCopy.ID + 1
	s.data = append(s.data, &accountCopy)
	a.ID = accountCopy.ID
	return nil
}

// GetByUser retrieves all accounts of a user, ordered by exchange then id.
func (s *AccountStore) GetByUser(_ context.Context, userID int64) ([]*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Account
	for _, a := range s.data {
		if a.UserID == userID {
			accountCopy := *a
			result = append(result, &accountCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Exchange != result[j].Exchange {
			return result[i].Exchange < result[j].Exchange
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}

var _ storage.AccountStore = (*AccountStore)(nil)

package postgres

import (
	"context"
	"fmt"

	"portfolio-graphs/internal/domain"
	"portfolio-graphs/internal/storage"
)

// AccountStore implements storage.AccountStore using PostgreSQL.
type AccountStore struct {
	pool *Pool
}

// NewAccountStore creates a new AccountStore.
func NewAccountStore(pool *Pool) *AccountStore {
	return &AccountStore{pool: pool}
}

// Compile-time interface check.
var _ storage.AccountStore = (*AccountStore)(nil)

// Insert adds a new account and sets its generated id.
func (s *AccountStore) Insert(ctx context.Context, a *domain.Account) error {
	query := `
		INSERT INTO accounts (user_id, exchange, label, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := s.pool.QueryRow(ctx, query, a.UserID, a.Exchange, a.Label, a.CreatedAt).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// GetByUser retrieves all accounts of a user, ordered by exchange then id.
func (s *AccountStore) GetByUser(ctx context.Context, userID int64) ([]*domain.Account, error) {
	query := `
		SELECT id, user_id, exchange, label, created_at
		FROM accounts
		WHERE user_id = $1
		ORDER BY exchange ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query accounts by user: %w", err)
	}
	defer rows.Close()

	var result []*domain.Account
	for rows.Next() {
		var a domain.Account
		if err := rows.Scan(&a.ID, &a.UserID, &a.Exchange, &a.Label, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		result = append(result, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}
	return result, nil
}

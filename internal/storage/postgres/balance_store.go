package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"portfolio-graphs/internal/domain"
	"portfolio-graphs/internal/storage"
)

// BalanceStore implements storage.BalanceStore using PostgreSQL.
type BalanceStore struct {
	pool *Pool
}

// NewBalanceStore creates a new BalanceStore.
func NewBalanceStore(pool *Pool) *BalanceStore {
	return &BalanceStore{pool: pool}
}

// Compile-time interface check.
var _ storage.BalanceStore = (*BalanceStore)(nil)

// InsertBulk adds multiple balance points atomically.
func (s *BalanceStore) InsertBulk(ctx context.Context, points []*domain.BalancePoint) error {
	if len(points) == 0 {
		return nil
	}

	start := time.Now()
	b := &pgx.Batch{}
	for _, p := range points {
		b.Queue(`
			INSERT INTO balances (user_id, exchange, currency, balance, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`, p.UserID, p.Exchange, p.Currency, p.Balance, p.CreatedAt)
	}
	err := s.pool.sendBatch(ctx, b)
	observe("insert_balances", start, err)
	if err != nil {
		return fmt.Errorf("insert balances: %w", err)
	}
	return nil
}

// GetSince retrieves balances of a user currency created at or after since, ordered by created_at ASC.
func (s *BalanceStore) GetSince(ctx context.Context, userID int64, currency string, since time.Time) ([]*domain.BalancePoint, error) {
	query := `
		SELECT user_id, exchange, currency, balance, created_at
		FROM balances
		WHERE user_id = $1 AND currency = $2 AND created_at >= $3
		ORDER BY created_at ASC, id ASC
	`

	start := time.Now()
	rows, err := s.pool.Query(ctx, query, userID, currency, since)
	if err != nil {
		observe("get_balances", start, err)
		return nil, fmt.Errorf("query balances since: %w", err)
	}
	defer rows.Close()

	points, err := scanBalances(rows)
	observe("get_balances", start, err)
	return points, err
}

// GetLatest retrieves the most recent balance per exchange of a user currency, ordered by exchange.
func (s *BalanceStore) GetLatest(ctx context.Context, userID int64, currency string) ([]*domain.BalancePoint, error) {
	query := `
		SELECT DISTINCT ON (exchange) user_id, exchange, currency, balance, created_at
		FROM balances
		WHERE user_id = $1 AND currency = $2
		ORDER BY exchange ASC, created_at DESC, id DESC
	`

	rows, err := s.pool.Query(ctx, query, userID, currency)
	if err != nil {
		return nil, fmt.Errorf("query latest balances: %w", err)
	}
	defer rows.Close()

	return scanBalances(rows)
}

// scanBalances scans multiple rows.
func scanBalances(rows pgx.Rows) ([]*domain.BalancePoint, error) {
	var points []*domain.BalancePoint

	for rows.Next() {
		var p domain.BalancePoint
		if err := rows.Scan(&p.UserID, &p.Exchange, &p.Currency, &p.Balance, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan balance row: %w", err)
		}
		points = append(points, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate balance rows: %w", err)
	}

	return points, nil
}

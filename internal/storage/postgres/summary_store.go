package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"portfolio-graphs/internal/domain"
	"portfolio-graphs/internal/storage"
)

// SummaryStore implements storage.SummaryStore using PostgreSQL.
type SummaryStore struct {
	pool *Pool
}

// NewSummaryStore creates a new SummaryStore.
func NewSummaryStore(pool *Pool) *SummaryStore {
	return &SummaryStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SummaryStore = (*SummaryStore)(nil)

// InsertInstance enables a summary type for a user. Returns ErrDuplicateKey if already enabled.
func (s *SummaryStore) InsertInstance(ctx context.Context, si *domain.SummaryInstance) error {
	query := `
		INSERT INTO summary_instances (user_id, summary_type, created_at)
		VALUES ($1, $2, $3)
	`

	_, err := s.pool.Exec(ctx, query, si.UserID, si.SummaryType, si.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert summary instance: %w", err)
	}
	return nil
}

// GetInstances retrieves the summary types a user has enabled, ordered by summary type.
func (s *SummaryStore) GetInstances(ctx context.Context, userID int64) ([]*domain.SummaryInstance, error) {
	query := `
		SELECT user_id, summary_type, created_at
		FROM summary_instances
		WHERE user_id = $1
		ORDER BY summary_type ASC
	`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query summary instances: %w", err)
	}
	defer rows.Close()

	var result []*domain.SummaryInstance
	for rows.Next() {
		var si domain.SummaryInstance
		if err := rows.Scan(&si.UserID, &si.SummaryType, &si.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan summary instance: %w", err)
		}
		result = append(result, &si)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate summary instances: %w", err)
	}
	return result, nil
}

// InsertBulk adds multiple summary points atomically.
func (s *SummaryStore) InsertBulk(ctx context.Context, points []*domain.SummaryPoint) error {
	if len(points) == 0 {
		return nil
	}

	start := time.Now()
	b := &pgx.Batch{}
	for _, p := range points {
		b.Queue(`
			INSERT INTO summaries (user_id, summary_type, balance, created_at)
			VALUES ($1, $2, $3, $4)
		`, p.UserID, p.SummaryType, p.Balance, p.CreatedAt)
	}
	err := s.pool.sendBatch(ctx, b)
	observe("insert_summaries", start, err)
	if err != nil {
		return fmt.Errorf("insert summaries: %w", err)
	}
	return nil
}

// GetSince retrieves summary points created at or after since, ordered by created_at ASC.
func (s *SummaryStore) GetSince(ctx context.Context, userID int64, summaryType string, since time.Time) ([]*domain.SummaryPoint, error) {
	query := `
		SELECT user_id, summary_type, balance, created_at
		FROM summaries
		WHERE user_id = $1 AND summary_type = $2 AND created_at >= $3
		ORDER BY created_at ASC, id ASC
	`

	start := time.Now()
	rows, err := s.pool.Query(ctx, query, userID, summaryType, since)
	if err != nil {
		observe("get_summaries", start, err)
		return nil, fmt.Errorf("query summaries since: %w", err)
	}
	defer rows.Close()

	var points []*domain.SummaryPoint
	for rows.Next() {
		var p domain.SummaryPoint
		if err := rows.Scan(&p.UserID, &p.SummaryType, &p.Balance, &p.CreatedAt); err != nil {
			observe("get_summaries", start, err)
			return nil, fmt.Errorf("scan summary row: %w", err)
		}
		points = append(points, &p)
	}
	err = rows.Err()
	observe("get_summaries", start, err)
	if err != nil {
		return nil, fmt.Errorf("iterate summary rows: %w", err)
	}
	return points, nil
}

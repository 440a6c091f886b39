package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"portfolio-graphs/internal/domain"
	"portfolio-graphs/internal/storage"
)

// UserStore implements storage.UserStore using PostgreSQL.
type UserStore struct {
	pool *Pool
}

// NewUserStore creates a new UserStore.
func NewUserStore(pool *Pool) *UserStore {
	return &UserStore{pool: pool}
}

// Compile-time interface check.
var _ storage.UserStore = (*UserStore)(nil)

// Insert adds a new user. Returns ErrDuplicateKey if the id exists.
func (s *UserStore) Insert(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (
			id, email, is_admin, created_at, first_report_sent, last_account_change, last_sum_job
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.pool.Exec(ctx, query,
		u.ID,
		u.Email,
		u.IsAdmin,
		u.CreatedAt,
		u.FirstReportSent,
		u.LastAccountChange,
		u.LastSumJob,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by id. Returns ErrNotFound if not exists.
func (s *UserStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `
		SELECT id, email, is_admin, created_at, first_report_sent, last_account_change, last_sum_job
		FROM users
		WHERE id = $1
	`

	start := time.Now()
	u, err := scanUser(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if isNotFoundError(err) {
			observe("get_user", start, nil)
			return nil, storage.ErrNotFound
		}
		observe("get_user", start, err)
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	observe("get_user", start, nil)
	return u, nil
}

// CountSignupsByDay returns users created per day since the given time, ordered by day ASC.
func (s *UserStore) CountSignupsByDay(ctx context.Context, since time.Time) ([]domain.DailyCount, error) {
	query := `
		SELECT date_trunc('day', created_at AT TIME ZONE 'UTC') AS day, count(*)
		FROM users
		WHERE created_at >= $1
		GROUP BY day
		ORDER BY day ASC
	`

	rows, err := s.pool.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("count signups by day: %w", err)
	}
	defer rows.Close()

	var result []domain.DailyCount
	for rows.Next() {
		var c domain.DailyCount
		if err := rows.Scan(&c.Day, &c.Count); err != nil {
			return nil, fmt.Errorf("scan signup count: %w", err)
		}
		c.Day = domain.TruncateDay(c.Day)
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate signup counts: %w", err)
	}
	return result, nil
}

// scanUser scans a single row into User.
func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User

	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.IsAdmin,
		&u.CreatedAt,
		&u.FirstReportSent,
		&u.LastAccountChange,
		&u.LastSumJob,
	)
	if err != nil {
		return nil, err
	}

	return &u, nil
}

package storage

import (
	"context"
	"time"

	"portfolio-graphs/internal/domain"
)

// UserStore provides access to users storage.
type UserStore interface {
	// Insert adds a new user. Returns ErrDuplicateKey if the id exists.
	Insert(ctx context.Context, u *domain.User) error

	// GetByID retrieves a user by id. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	// CountSignupsByDay returns the number of users created per day since the given time, ordered by day ASC.
	CountSignupsByDay(ctx context.Context, since time.Time) ([]domain.DailyCount, error)
}

// AccountStore provides access to accounts storage.
type AccountStore interface {
	// Insert adds a new account.
	Insert(ctx context.Context, a *domain.Account) error

	// GetByUser retrieves all accounts of a user, ordered by exchange then id.
	GetByUser(ctx context.Context, userID int64) ([]*domain.Account, error)
}

// BalanceStore provides access to balances storage.
type BalanceStore interface {
	// InsertBulk adds multiple balance points atomically.
	InsertBulk(ctx context.Context, points []*domain.BalancePoint) error

	// GetSince retrieves balances of a user currency created at or after since, ordered by created_at ASC.
	GetSince(ctx context.Context, userID int64, currency string, since time.Time) ([]*domain.BalancePoint, error)

	// GetLatest retrieves the most recent balance per exchange of a user currency, ordered by exchange.
	GetLatest(ctx context.Context, userID int64, currency string) ([]*domain.BalancePoint, error)
}

// SummaryStore provides access to summary instances and summary history.
type SummaryStore interface {
	// InsertInstance enables a summary type for a user. Returns ErrDuplicateKey if already enabled.
	InsertInstance(ctx context.Context, si *domain.SummaryInstance) error

	// GetInstances retrieves the summary types a user has enabled, ordered by summary type.
	GetInstances(ctx context.Context, userID int64) ([]*domain.SummaryInstance, error)

	// InsertBulk adds multiple summary points atomically.
	InsertBulk(ctx context.Context, points []*domain.SummaryPoint) error

	// GetSince retrieves summary points created at or after since, ordered by created_at ASC.
	GetSince(ctx context.Context, userID int64, summaryType string, since time.Time) ([]*domain.SummaryPoint, error)
}

// TickerStore provides access to ticker_timeseries storage.
type TickerStore interface {
	// InsertBulk adds multiple points. Fails entire batch on duplicate (exchange, pair, created_at).
	InsertBulk(ctx context.Context, points []*domain.TickerPoint) error

	// GetSince retrieves points of an exchange pair created at or after since, ordered by created_at ASC.
	GetSince(ctx context.Context, exchange, pair string, since time.Time) ([]*domain.TickerPoint, error)
}

// GraphCacheStore persists serialized render results.
type GraphCacheStore interface {
	// Get retrieves an entry. Returns ErrNotFound if not exists. Freshness is decided by the caller.
	Get(ctx context.Context, namespace, hash string) (*domain.CacheEntry, error)

	// Put stores an entry, replacing any previous entry with the same (namespace, hash) wholesale.
	Put(ctx context.Context, e *domain.CacheEntry) error

	// DeleteOlderThan removes entries created before cutoff and returns how many were removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

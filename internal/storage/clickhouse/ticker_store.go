package clickhouse

import (
	"context"
	"fmt"
	"time"

	"portfolio-graphs/internal/domain"
	"portfolio-graphs/internal/storage"
)

// TickerStore implements storage.TickerStore using ClickHouse.
type TickerStore struct {
	conn *Conn
}

// NewTickerStore creates a new TickerStore.
func NewTickerStore(conn *Conn) *TickerStore {
	return &TickerStore{conn: conn}
}

// Compile-time interface check.
var _ storage.TickerStore = (*TickerStore)(nil)

// InsertBulk adds multiple points. Fails entire batch on duplicate (exchange, pair, created_at).
func (s *TickerStore) InsertBulk(ctx context.Context, points []*domain.TickerPoint) error {
	if len(points) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	type key struct {
		exchange    string
		pair        string
		createdAtMs int64
	}
	seen := make(map[key]struct{})
	for _, p := range points {
		if p == nil || p.Exchange == "" || p.Pair == "" {
			return storage.ErrInvalidInput
		}
		k := key{p.Exchange, p.Pair, p.CreatedAt.UnixMilli()}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	// MergeTree does not enforce uniqueness, so check existing rows explicitly
	for _, p := range points {
		exists, err := s.exists(ctx, p.Exchange, p.Pair, p.CreatedAt.UnixMilli())
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO ticker_timeseries (
			exchange, pair, created_at_ms, bid, ask, volume
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range points {
		err = batch.Append(
			p.Exchange, p.Pair, uint64(p.CreatedAt.UnixMilli()),
			p.Bid, p.Ask, p.Volume,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetSince retrieves points of an exchange pair created at or after since, ordered by created_at ASC.
func (s *TickerStore) GetSince(ctx context.Context, exchange, pair string, since time.Time) ([]*domain.TickerPoint, error) {
	query := `
		SELECT exchange, pair, created_at_ms, bid, ask, volume
		FROM ticker_timeseries
		WHERE exchange = ? AND pair = ? AND created_at_ms >= ?
		ORDER BY created_at_ms ASC
	`

	start := time.Now()
	rows, err := s.conn.Query(ctx, query, exchange, pair, uint64(since.UnixMilli()))
	if err != nil {
		observe("get_ticker", start, err)
		return nil, fmt.Errorf("query ticker since: %w", err)
	}
	defer rows.Close()

	points, err := scanTickers(rows)
	observe("get_ticker", start, err)
	return points, err
}

// exists checks if a point with the given key exists.
func (s *TickerStore) exists(ctx context.Context, exchange, pair string, createdAtMs int64) (bool, error) {
	query := `
		SELECT count(*) FROM ticker_timeseries
		WHERE exchange = ? AND pair = ? AND created_at_ms = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, exchange, pair, uint64(createdAtMs)).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// scanTickers scans multiple rows.
func scanTickers(rows chRows) ([]*domain.TickerPoint, error) {
	var points []*domain.TickerPoint

	for rows.Next() {
		var p domain.TickerPoint
		var createdAtMs uint64

		err := rows.Scan(&p.Exchange, &p.Pair, &createdAtMs, &p.Bid, &p.Ask, &p.Volume)
		if err != nil {
			return nil, fmt.Errorf("scan ticker row: %w", err)
		}

		p.CreatedAt = time.UnixMilli(int64(createdAtMs)).UTC()
		points = append(points, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ticker rows: %w", err)
	}

	return points, nil
}

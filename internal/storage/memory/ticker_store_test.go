package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"portfolio-graphs/internal/domain"
	"portfolio-graphs/internal/storage"
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestTickerStore_InsertBulkAndGet(t *testing.T) {
	store := NewTickerStore()
	ctx := context.Background()

	points := []*domain.TickerPoint{
		{Exchange: "bitstamp", Pair: "usdbtc", Bid: 100, Ask: 101, CreatedAt: t0.Add(2 * time.Hour)},
		{Exchange: "bitstamp", Pair: "usdbtc", Bid: 99, Ask: 100, CreatedAt: t0},
		{Exchange: "bitstamp", Pair: "usdltc", Bid: 5, Ask: 6, CreatedAt: t0},
		{Exchange: "kraken", Pair: "usdbtc", Bid: 98, Ask: 99, CreatedAt: t0},
	}

	if err := store.InsertBulk(ctx, points); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	result, err := store.GetSince(ctx, "bitstamp", "usdbtc", t0)
	if err != nil {
		t.Fatalf("GetSince failed: %v", err)
	}

	if len(result) != 2 {
		t.Fatalf("Expected 2 points, got %d", len(result))
	}
	if result[0].Bid != 99 || result[1].Bid != 100 {
		t.Errorf("Results not ordered by created_at: %v, %v", result[0].Bid, result[1].Bid)
	}

	result, _ = store.GetSince(ctx, "bitstamp", "usdbtc", t0.Add(time.Hour))
	if len(result) != 1 {
		t.Errorf("Expected 1 point after since, got %d", len(result))
	}
}

func TestTickerStore_IntraBatchDuplicate(t *testing.T) {
	store := NewTickerStore()
	ctx := context.Background()

	points := []*domain.TickerPoint{
		{Exchange: "bitstamp", Pair: "usdbtc", Bid: 1, CreatedAt: t0},
		{Exchange: "bitstamp", Pair: "usdbtc", Bid: 2, CreatedAt: t0},
	}

	err := store.InsertBulk(ctx, points)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey for intra-batch duplicate, got %v", err)
	}

	// Verify nothing was inserted
	result, _ := store.GetSince(ctx, "bitstamp", "usdbtc", time.Time{})
	if len(result) != 0 {
		t.Errorf("Expected 0 points (rollback), got %d", len(result))
	}
}

func TestTickerStore_InvalidInput(t *testing.T) {
	store := NewTickerStore()
	ctx := context.Background()

	err := store.InsertBulk(ctx, []*domain.TickerPoint{nil})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for nil point, got %v", err)
	}

	err = store.InsertBulk(ctx, []*domain.TickerPoint{{Exchange: "bitstamp"}})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for empty pair, got %v", err)
	}
}

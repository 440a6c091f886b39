package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"portfolio-graphs/internal/domain"
	"portfolio-graphs/internal/storage"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestGraphCacheStore_PutGet(t *testing.T) {
	ctx := context.Background()
	store := NewGraphCacheStore(openTestDB(t))
	t0 := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	if _, err := store.Get(ctx, "graph_ticker", "h1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := store.Put(ctx, &domain.CacheEntry{Namespace: "graph_ticker", Hash: "h1", Data: []byte("one"), CreatedAt: t0}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Put(ctx, &domain.CacheEntry{Namespace: "graph_ticker", Hash: "h1", Data: []byte("two"), CreatedAt: t0.Add(time.Minute)}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	got, err := store.Get(ctx, "graph_ticker", "h1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got.Data) != "two" {
		t.Errorf("expected overwritten data, got %q", got.Data)
	}
	if !got.CreatedAt.Equal(t0.Add(time.Minute)) {
		t.Errorf("unexpected created_at %v", got.CreatedAt)
	}

	if err := store.Put(ctx, &domain.CacheEntry{Hash: "x"}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestGraphCacheStore_DeleteOlderThan(t *testing.T) {
	ctx := context.Background()
	store := NewGraphCacheStore(openTestDB(t))
	t0 := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, h := range []string{"a", "b", "c"} {
		e := &domain.CacheEntry{Namespace: "graph_balances", Hash: h, Data: []byte("{}"), CreatedAt: t0.Add(time.Duration(i) * time.Hour)}
		if err := store.Put(ctx, e); err != nil {
			t.Fatalf("put %s: %v", h, err)
		}
	}

	n, err := store.DeleteOlderThan(ctx, t0.Add(90*time.Minute))
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 removed, got %d", n)
	}
	if _, err := store.Get(ctx, "graph_balances", "c"); err != nil {
		t.Errorf("newest entry should survive: %v", err)
	}
}

func TestOpen_ReappliesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	for i := 0; i < 2; i++ {
		db, err := Open(context.Background(), path)
		if err != nil {
			t.Fatalf("open #%d: %v", i, err)
		}
		db.Close()
	}
}

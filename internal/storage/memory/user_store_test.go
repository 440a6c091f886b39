package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"portfolio-graphs/internal/domain"
	"portfolio-graphs/internal/storage"
)

func TestUserStore_InsertAndGet(t *testing.T) {
	store := NewUserStore()
	ctx := context.Background()

	if err := store.Insert(ctx, &domain.User{ID: 7, Email: "a@example.com", CreatedAt: t0}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	u, err := store.GetByID(ctx, 7)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if u.Email != "a@example.com" {
		t.Errorf("Expected email a@example.com, got %s", u.Email)
	}

	if err := store.Insert(ctx, &domain.User{ID: 7}); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
	if _, err := store.GetByID(ctx, 8); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestUserStore_CountSignupsByDay(t *testing.T) {
	store := NewUserStore()
	ctx := context.Background()

	day2 := t0.Add(24 * time.Hour)
	for i, created := range []time.Time{t0, t0.Add(time.Hour), day2, t0.Add(-48 * time.Hour)} {
		if err := store.Insert(ctx, &domain.User{ID: int64(i + 1), CreatedAt: created}); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	counts, err := store.CountSignupsByDay(ctx, domain.TruncateDay(t0))
	if err != nil {
		t.Fatalf("CountSignupsByDay failed: %v", err)
	}
	if len(counts) != 2 {
		t.Fatalf("Expected 2 days, got %d", len(counts))
	}
	if counts[0].Count != 2 || counts[1].Count != 1 {
		t.Errorf("unexpected counts: %+v", counts)
	}
	if !counts[0].Day.Equal(domain.TruncateDay(t0)) {
		t.Errorf("Expected first day %v, got %v", domain.TruncateDay(t0), counts[0].Day)
	}
}

package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"bachat-planner/internal/core/wizard"
)

func newClockedStore(ttl time.Duration, maxSize int) (*MemoryStore, *time.Time) {
	now := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	s := NewMemoryStore(ttl, maxSize, 0)
	s.now = func() time.Time { return now }
	return s, &now
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, _ := newClockedStore(time.Hour, 10)

	state := wizard.New()
	state.Step = wizard.StepIngredients
	state.Preferences.Ingredients.Add("Rice")
	if err := s.Save(ctx, "a", state); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := s.Get(ctx, "a")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Step != wizard.StepIngredients {
		t.Errorf("step = %s, want ingredients", got.Step)
	}
	if !got.Preferences.Ingredients.Contains("Rice") {
		t.Errorf("ingredients = %v, want Rice", got.Preferences.Ingredients)
	}

	// 讀出的是副本
	got.Step = wizard.StepResult
	again, _ := s.Get(ctx, "a")
	if again.Step != wizard.StepIngredients {
		t.Errorf("stored step changed to %s", again.Step)
	}
}

func TestMemoryStoreExpires(t *testing.T) {
	ctx := context.Background()
	s, now := newClockedStore(time.Minute, 10)

	if err := s.Save(ctx, "a", wizard.New()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	*now = now.Add(30 * time.Second)
	if _, err := s.Get(ctx, "a"); err != nil {
		t.Fatalf("Get() before expiry error = %v", err)
	}

	*now = now.Add(2 * time.Minute)
	if _, err := s.Get(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after expiry = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreSaveRefreshesTTL(t *testing.T) {
	ctx := context.Background()
	s, now := newClockedStore(time.Minute, 10)

	_ = s.Save(ctx, "a", wizard.New())
	*now = now.Add(50 * time.Second)
	_ = s.Save(ctx, "a", wizard.New())
	*now = now.Add(50 * time.Second)

	if _, err := s.Get(ctx, "a"); err != nil {
		t.Errorf("Get() error = %v, want refreshed entry", err)
	}
}

func TestMemoryStoreEvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	s, now := newClockedStore(time.Hour, 2)

	_ = s.Save(ctx, "a", wizard.New())
	*now = now.Add(time.Second)
	_ = s.Save(ctx, "b", wizard.New())
	*now = now.Add(time.Second)
	if _, err := s.Get(ctx, "a"); err != nil {
		t.Fatalf("Get(a) error = %v", err)
	}
	*now = now.Add(time.Second)

	if err := s.Save(ctx, "c", wizard.New()); err != nil {
		t.Fatalf("Save(c) error = %v", err)
	}
	if _, err := s.Get(ctx, "b"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(b) = %v, want evicted", err)
	}
	for _, id := range []string{"a", "c"} {
		if _, err := s.Get(ctx, id); err != nil {
			t.Errorf("Get(%s) error = %v", id, err)
		}
	}
	if stats := s.GetStats(); stats["evictions"].(int64) != 1 {
		t.Errorf("evictions = %v, want 1", stats["evictions"])
	}
}

func TestMemoryStoreFull(t *testing.T) {
	s, _ := newClockedStore(time.Hour, 0)
	if err := s.Save(context.Background(), "a", wizard.New()); !errors.Is(err, ErrStoreFull) {
		t.Errorf("Save() = %v, want ErrStoreFull", err)
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	ctx := context.Background()
	s, _ := newClockedStore(time.Hour, 10)

	_ = s.Save(ctx, "a", wizard.New())
	if err := s.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := s.Delete(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() = %v, want ErrNotFound", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"travelwallet/internal/core"
	"travelwallet/internal/store"
)

func record(id string, amount float64) core.Expense {
	return core.Expense{
		ID:       id,
		Amount:   amount,
		Currency: "EUR",
		Category: core.CategoryFood,
		Date:     time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestInsertAndLoadAll(t *testing.T) {
	ctx := context.Background()
	s := New()
	if err := s.Insert(ctx, record("a", 1)); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := s.Insert(ctx, record("b", 2)); err != nil {
		t.Fatalf("insert: %v", err)
	}
	got, err := s.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
}

func TestLoadAllNormalizesLegacyCurrency(t *testing.T) {
	legacy := record("old", 9)
	legacy.Currency = ""
	s := Seed(legacy)
	got, err := s.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got[0].Currency != core.BaseCurrency {
		t.Fatalf("expected legacy record decoded as EUR, got %q", got[0].Currency)
	}
}

func TestReplace(t *testing.T) {
	ctx := context.Background()
	s := Seed(record("a", 1))

	updated := record("ignored", 5)
	if err := s.Replace(ctx, "a", updated); err != nil {
		t.Fatalf("replace: %v", err)
	}
	got, _ := s.LoadAll(ctx)
	if got[0].ID != "a" || got[0].Amount != 5 {
		t.Fatalf("expected full replacement keyed by id, got %+v", got[0])
	}

	if err := s.Replace(ctx, "missing", updated); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRemoveAndClear(t *testing.T) {
	ctx := context.Background()
	s := Seed(record("a", 1), record("b", 2))

	if err := s.Remove(ctx, "a"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := s.Remove(ctx, "a"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	got, _ := s.LoadAll(ctx)
	if len(got) != 1 || got[0].ID != "b" {
		t.Fatalf("expected only b left, got %+v", got)
	}

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	got, _ = s.LoadAll(ctx)
	if len(got) != 0 {
		t.Fatalf("expected empty store, got %d records", len(got))
	}
}

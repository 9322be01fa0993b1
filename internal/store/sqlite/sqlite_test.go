package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"travelwallet/internal/core"
	"travelwallet/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "wallet.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	e := core.Expense{
		ID:       "e1",
		Amount:   42.5,
		Currency: "USD",
		Category: core.CategoryHotel,
		Note:     "night one",
		Date:     time.Date(2025, 7, 3, 21, 15, 0, 0, time.UTC),
		Location: &core.LatLng{Lat: 48.8584, Lng: 2.2945},
		Address:  "Champ de Mars, Paris",
	}
	if err := s.Insert(ctx, e); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := s.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	r := got[0]
	if r.ID != e.ID || r.Amount != e.Amount || r.Currency != e.Currency ||
		r.Category != e.Category || r.Note != e.Note || r.Address != e.Address {
		t.Fatalf("record mismatch: %+v", r)
	}
	if !r.Date.Equal(e.Date) {
		t.Fatalf("expected date %v, got %v", e.Date, r.Date)
	}
	if r.Location == nil || r.Location.Lat != e.Location.Lat || r.Location.Lng != e.Location.Lng {
		t.Fatalf("location mismatch: %+v", r.Location)
	}
}

func TestRecordWithoutLocation(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	e := core.Expense{
		ID: "e1", Amount: 3, Currency: "EUR", Category: core.CategoryFood,
		Date: time.Date(2025, 7, 3, 9, 0, 0, 0, time.UTC),
	}
	if err := s.Insert(ctx, e); err != nil {
		t.Fatalf("insert: %v", err)
	}
	got, err := s.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got[0].Location != nil {
		t.Fatalf("expected nil location, got %+v", got[0].Location)
	}
}

func TestReplaceAndRemove(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	e := core.Expense{
		ID: "e1", Amount: 3, Currency: "EUR", Category: core.CategoryFood,
		Date: time.Date(2025, 7, 3, 9, 0, 0, 0, time.UTC),
	}
	if err := s.Insert(ctx, e); err != nil {
		t.Fatalf("insert: %v", err)
	}

	e.Amount = 7.25
	e.Category = core.CategoryShopping
	if err := s.Replace(ctx, "e1", e); err != nil {
		t.Fatalf("replace: %v", err)
	}
	got, _ := s.LoadAll(ctx)
	if got[0].Amount != 7.25 || got[0].Category != core.CategoryShopping {
		t.Fatalf("expected replaced record, got %+v", got[0])
	}

	if err := s.Replace(ctx, "nope", e); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Remove(ctx, "nope"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Remove(ctx, "e1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	got, _ = s.LoadAll(ctx)
	if len(got) != 0 {
		t.Fatalf("expected empty store, got %d records", len(got))
	}
}

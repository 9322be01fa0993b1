package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"travelwallet/internal/core"
	"travelwallet/internal/events"
	"travelwallet/internal/geo"
	"travelwallet/internal/store"
)

// ExpenseService orchestrates expense operations across the store, the
// reverse geocoder and the event feed. Geocoder and publisher are optional.
type ExpenseService struct {
	store     store.ExpenseStore
	geocoder  *geo.Client
	publisher *events.Publisher
}

func NewExpenseService(st store.ExpenseStore, geocoder *geo.Client, publisher *events.Publisher) *ExpenseService {
	return &ExpenseService{
		store:     st,
		geocoder:  geocoder,
		publisher: publisher,
	}
}

// List returns the filtered record set sorted newest-first by expense date,
// the order the list view renders in.
func (s *ExpenseService) List(ctx context.Context, category string, from, to time.Time) ([]core.Expense, error) {
	all, err := s.store.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load expenses: %w", err)
	}
	filtered := core.Filter(all, category, from, to)
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Date.After(filtered[j].Date)
	})
	return filtered, nil
}

// Breakdown aggregates the filtered record set into the display currency.
func (s *ExpenseService) Breakdown(ctx context.Context, category string, from, to time.Time, rates core.RateTable, display string) (core.Breakdown, error) {
	all, err := s.store.LoadAll(ctx)
	if err != nil {
		return core.Breakdown{}, fmt.Errorf("load expenses: %w", err)
	}
	return core.Aggregate(core.Filter(all, category, from, to), rates, display)
}

// Create validates and saves a new record. The service assigns the id and,
// when a location was captured without an address, resolves one.
func (s *ExpenseService) Create(ctx context.Context, e core.Expense) (core.Expense, error) {
	e = e.Normalized()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Date.IsZero() {
		e.Date = time.Now()
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	s.resolveAddress(ctx, &e)

	if err := s.store.Insert(ctx, e); err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}
	slog.InfoContext(ctx, "Expense saved",
		"id", e.ID,
		"amount", e.Amount,
		"currency", e.Currency,
		"category", e.Category)

	s.publish(ctx, events.ActionCreated, e.ID)
	return e, nil
}

// Update replaces the record with the given id in full.
func (s *ExpenseService) Update(ctx context.Context, id string, e core.Expense) (core.Expense, error) {
	e = e.Normalized()
	e.ID = id
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	s.resolveAddress(ctx, &e)

	if err := s.store.Replace(ctx, id, e); err != nil {
		return core.Expense{}, err
	}
	slog.InfoContext(ctx, "Expense replaced", "id", id)

	s.publish(ctx, events.ActionReplaced, id)
	return e, nil
}

// Delete removes the record with the given id.
func (s *ExpenseService) Delete(ctx context.Context, id string) error {
	if err := s.store.Remove(ctx, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Expense deleted", "id", id)

	s.publish(ctx, events.ActionDeleted, id)
	return nil
}

// Clear drops every record. Debug helper behind an explicit endpoint.
func (s *ExpenseService) Clear(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear expenses: %w", err)
	}
	slog.InfoContext(ctx, "Expense store cleared")
	return nil
}

func (s *ExpenseService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *ExpenseService) resolveAddress(ctx context.Context, e *core.Expense) {
	if e.Location == nil || e.Address != "" {
		return
	}
	if s.geocoder == nil {
		e.Address = geo.FallbackAddress(*e.Location)
		return
	}
	e.Address = s.geocoder.ReverseGeocode(ctx, *e.Location)
}

func (s *ExpenseService) publish(ctx context.Context, action, id string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, action, id); err != nil {
		// The record is already persisted; the feed is best-effort.
		slog.ErrorContext(ctx, "Failed to publish expense event",
			"action", action, "id", id, "error", err)
	}
}

// Close closes the store and the event publisher.
func (s *ExpenseService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("events: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close expense service: %v", errs)
	}
	return nil
}

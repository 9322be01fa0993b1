package store

import (
	"context"
	"errors"

	"travelwallet/internal/core"
)

// ErrNotFound is returned by Replace and Remove for an unknown record id.
var ErrNotFound = errors.New("expense not found")

// ExpenseStore is the outbound port for expense persistence. The record set
// is always read wholesale; ordering is the caller's concern.
type ExpenseStore interface {
	// LoadAll returns every stored record with legacy defaults applied.
	LoadAll(ctx context.Context) ([]core.Expense, error)

	// Insert stores a new record.
	Insert(ctx context.Context, e core.Expense) error

	// Replace swaps the record with the given id for e in full.
	Replace(ctx context.Context, id string, e core.Expense) error

	// Remove deletes the record with the given id.
	Remove(ctx context.Context, id string) error

	// Clear drops every record.
	Clear(ctx context.Context) error

	Ping(ctx context.Context) error
	Close() error
}

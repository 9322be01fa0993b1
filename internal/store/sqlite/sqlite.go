package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"travelwallet/internal/core"
	"travelwallet/internal/store"

	_ "modernc.org/sqlite"
)

// Store persists expenses in a local SQLite database.
type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) LoadAll(ctx context.Context) ([]core.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, amount, currency, category, note, date, lat, lng, address FROM expenses`)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		var (
			e        core.Expense
			date     string
			lat, lng sql.NullFloat64
		)
		if err := rows.Scan(&e.ID, &e.Amount, &e.Currency, &e.Category, &e.Note, &date, &lat, &lng, &e.Address); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		e.Date, err = time.Parse(time.RFC3339Nano, date)
		if err != nil {
			return nil, fmt.Errorf("parse expense date %q: %w", date, err)
		}
		if lat.Valid && lng.Valid {
			e.Location = &core.LatLng{Lat: lat.Float64, Lng: lng.Float64}
		}
		out = append(out, e.Normalized())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return out, nil
}

func (s *Store) Insert(ctx context.Context, e core.Expense) error {
	lat, lng := locationColumns(e.Location)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO expenses (id, amount, currency, category, note, date, lat, lng, address)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Amount, e.Currency, e.Category, e.Note, e.Date.Format(time.RFC3339Nano), lat, lng, e.Address)
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}
	return nil
}

func (s *Store) Replace(ctx context.Context, id string, e core.Expense) error {
	lat, lng := locationColumns(e.Location)
	res, err := s.db.ExecContext(ctx,
		`UPDATE expenses
		 SET amount = ?, currency = ?, category = ?, note = ?, date = ?, lat = ?, lng = ?, address = ?
		 WHERE id = ?`,
		e.Amount, e.Currency, e.Category, e.Note, e.Date.Format(time.RFC3339Nano), lat, lng, e.Address, id)
	if err != nil {
		return fmt.Errorf("replace expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("replace expense: rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("remove expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove expense: rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM expenses`); err != nil {
		return fmt.Errorf("clear expenses: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func locationColumns(p *core.LatLng) (lat, lng sql.NullFloat64) {
	if p == nil {
		return
	}
	return sql.NullFloat64{Float64: p.Lat, Valid: true}, sql.NullFloat64{Float64: p.Lng, Valid: true}
}

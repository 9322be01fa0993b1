package core

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	CategoryFood      = "Food"
	CategoryTransport = "Transport"
	CategoryShopping  = "Shopping"
	CategoryHotel     = "Hotel"
)

// BaseCurrency is the reference currency every rate-table entry is
// expressed against.
const BaseCurrency = "EUR"

// SupportedCurrencies is the fixed cycle order used by the
// tap-to-cycle display control.
var SupportedCurrencies = []string{"EUR", "USD", "JPY", "GBP", "CNY", "SEK"}

// Categories is the closed set accepted for new records.
var Categories = []string{CategoryFood, CategoryTransport, CategoryShopping, CategoryHotel}

var currencySymbols = map[string]string{
	"EUR": "€",
	"USD": "$",
	"GBP": "£",
	"JPY": "¥",
	"CNY": "¥",
	"SEK": "kr",
}

type (
	// LatLng is a GPS point captured when the expense was recorded.
	LatLng struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	}

	// Expense is a single recorded trip expense. Records are immutable once
	// created except for full replacement keyed by ID.
	Expense struct {
		ID       string    `json:"id"`
		Amount   float64   `json:"amount"`
		Currency string    `json:"currency"`
		Category string    `json:"category"`
		Note     string    `json:"note,omitempty"`
		Date     time.Time `json:"date"`
		Location *LatLng   `json:"location,omitempty"`
		Address  string    `json:"address,omitempty"`
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrUnknownCurrency = errors.New("unknown currency")
	ErrUnknownCategory = errors.New("unknown category")
	ErrZeroDate        = errors.New("date cannot be zero")
	ErrNoteTooLong     = errors.New("note too long (max 500 characters)")
)

// CurrencySymbol returns the display symbol for a currency code, or the code
// itself when no symbol is known.
func CurrencySymbol(code string) string {
	if s, ok := currencySymbols[code]; ok {
		return s
	}
	return code
}

// SupportedCurrency reports whether code is one of the supported set.
func SupportedCurrency(code string) bool {
	for _, c := range SupportedCurrencies {
		if c == code {
			return true
		}
	}
	return false
}

// KnownCategory reports whether name is one of the fixed category set.
func KnownCategory(name string) bool {
	for _, c := range Categories {
		if c == name {
			return true
		}
	}
	return false
}

// Validate checks a fully-populated record before it is saved. Legacy
// defaulting has already happened by this point, see Normalized.
func (e Expense) Validate() error {
	if e.Amount <= 0 || math.IsNaN(e.Amount) || math.IsInf(e.Amount, 0) {
		return ErrInvalidAmount
	}
	if !SupportedCurrency(e.Currency) {
		return ErrUnknownCurrency
	}
	if !KnownCategory(e.Category) {
		return ErrUnknownCategory
	}
	if e.Date.IsZero() {
		return ErrZeroDate
	}
	if len(e.Note) > 500 {
		return ErrNoteTooLong
	}
	return nil
}

// Normalized applies legacy-record defaults. Old records predate the
// currency field; an absent currency means the amount is in EUR.
func (e Expense) Normalized() Expense {
	if strings.TrimSpace(e.Currency) == "" {
		e.Currency = BaseCurrency
	}
	return e
}

// ParseAmount parses a user-entered decimal amount. Only positive, finite
// values are accepted.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

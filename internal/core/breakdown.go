package core

import (
	"errors"
	"sort"
	"time"
)

// ErrRatesUnavailable signals that no rate table has been fetched yet. A
// breakdown in that state must be reported as unavailable, never as a zero
// total.
var ErrRatesUnavailable = errors.New("exchange rates unavailable")

// RateTable maps a currency code to units of that currency per one unit of
// the base currency. It is rebuilt wholesale on every successful fetch.
type RateTable map[string]float64

// FilterAllCategories is the sentinel meaning "no category filtering".
const FilterAllCategories = "All"

type (
	// Bucket is the aggregated amount for one category, expressed in the
	// display currency, plus its share of the total and view hints.
	Bucket struct {
		Category   string  `json:"category"`
		Amount     float64 `json:"amount"`
		Percentage float64 `json:"percentage"`
		Color      string  `json:"color"`
		Emoji      string  `json:"emoji"`
	}

	// Breakdown is the aggregation result: a single total and the
	// per-category buckets sorted descending by amount.
	Breakdown struct {
		Total    float64  `json:"total"`
		Currency string   `json:"currency"`
		Buckets  []Bucket `json:"buckets"`
	}
)

var categoryColors = map[string]string{
	CategoryFood:      "#FF6384",
	CategoryTransport: "#36A2EB",
	CategoryShopping:  "#FFCE56",
	CategoryHotel:     "#4BC0C0",
}

var categoryEmojis = map[string]string{
	CategoryFood:      "🍔",
	CategoryTransport: "🚕",
	CategoryShopping:  "🛍️",
	CategoryHotel:     "🏨",
}

// CategoryColor returns the chart color hint for a category.
func CategoryColor(name string) string {
	if c, ok := categoryColors[name]; ok {
		return c
	}
	return "#999"
}

// CategoryEmoji returns the emoji hint for a category.
func CategoryEmoji(name string) string {
	if e, ok := categoryEmojis[name]; ok {
		return e
	}
	return "💰"
}

// DayStart returns t clamped to 00:00:00.000 in its own location.
func DayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DayEnd returns t clamped to 23:59:59.999 in its own location.
func DayEnd(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 999*int(time.Millisecond), t.Location())
}

// Filter returns the records matching the optional category and inclusive
// date range. An empty or "All" category keeps every category; zero start or
// end times leave that bound open. The input slice is not mutated.
func Filter(records []Expense, category string, start, end time.Time) []Expense {
	out := make([]Expense, 0, len(records))
	for _, e := range records {
		if category != "" && category != FilterAllCategories && e.Category != category {
			continue
		}
		if !start.IsZero() && e.Date.Before(DayStart(start)) {
			continue
		}
		if !end.IsZero() && e.Date.After(DayEnd(end)) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// NormalizeToBase converts the record amount into the base currency. Rate
// entries are units of currency per one base unit, so dividing brings the
// foreign amount back to base. A currency missing from the table falls back
// to rate 1, same-as-base.
func NormalizeToBase(e Expense, rates RateTable) float64 {
	e = e.Normalized()
	rate, ok := rates[e.Currency]
	if !ok || rate == 0 {
		rate = 1
	}
	return e.Amount / rate
}

// NextCurrency returns the cyclic successor of current in the supported
// list, wrapping from the last entry to the first. An unknown current code
// yields the first supported currency.
func NextCurrency(current string) string {
	for i, c := range SupportedCurrencies {
		if c == current {
			return SupportedCurrencies[(i+1)%len(SupportedCurrencies)]
		}
	}
	return SupportedCurrencies[0]
}

// Aggregate normalizes every record to base currency, accumulates
// per-category sums in first-encountered order, and re-expresses the total
// and buckets in the display currency. Buckets come back sorted descending
// by amount; ties keep encounter order. Amounts are full precision, rounding
// belongs to the presentation boundary.
//
// An empty record slice is a valid zero breakdown. An empty rate table with
// records present returns ErrRatesUnavailable.
func Aggregate(records []Expense, rates RateTable, display string) (Breakdown, error) {
	if len(records) == 0 {
		return Breakdown{Currency: display}, nil
	}
	if len(rates) == 0 {
		return Breakdown{}, ErrRatesUnavailable
	}

	var order []string
	sums := make(map[string]float64, len(categoryColors))
	var totalBase float64
	for _, e := range records {
		base := NormalizeToBase(e, rates)
		if _, seen := sums[e.Category]; !seen {
			order = append(order, e.Category)
		}
		sums[e.Category] += base
		totalBase += base
	}

	target, ok := rates[display]
	if !ok || target == 0 {
		target = 1
	}
	total := totalBase * target

	buckets := make([]Bucket, 0, len(order))
	for _, cat := range order {
		amount := sums[cat] * target
		var pct float64
		if total != 0 {
			pct = amount / total * 100
		}
		buckets = append(buckets, Bucket{
			Category:   cat,
			Amount:     amount,
			Percentage: pct,
			Color:      CategoryColor(cat),
			Emoji:      CategoryEmoji(cat),
		})
	}
	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].Amount > buckets[j].Amount
	})

	return Breakdown{Total: total, Currency: display, Buckets: buckets}, nil
}

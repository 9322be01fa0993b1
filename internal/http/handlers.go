package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"travelwallet/internal/core"
	"travelwallet/internal/store"
)

type expenseRequest struct {
	Amount   float64      `json:"amount"`
	Currency string       `json:"currency"`
	Category string       `json:"category"`
	Note     string       `json:"note"`
	Date     string       `json:"date"`
	Location *core.LatLng `json:"location"`
	Address  string       `json:"address"`
}

func (req expenseRequest) toExpense() (core.Expense, error) {
	e := core.Expense{
		Amount:   req.Amount,
		Currency: strings.ToUpper(strings.TrimSpace(req.Currency)),
		Category: strings.TrimSpace(req.Category),
		Note:     req.Note,
		Location: req.Location,
		Address:  strings.TrimSpace(req.Address),
	}
	if v := strings.TrimSpace(req.Date); v != "" {
		date, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return core.Expense{}, fmt.Errorf("invalid date %q, want RFC 3339", v)
		}
		e.Date = date
	}
	return e, nil
}

type (
	listPayload struct {
		Expenses []core.Expense `json:"expenses"`
		Count    int            `json:"count"`
	}

	bucketPayload struct {
		Category   string  `json:"category"`
		Amount     float64 `json:"amount"`
		Percentage float64 `json:"percentage"`
		Color      string  `json:"color"`
		Emoji      string  `json:"emoji"`
	}

	breakdownPayload struct {
		Total    float64         `json:"total"`
		Currency string          `json:"currency"`
		Symbol   string          `json:"symbol"`
		RatesAt  time.Time       `json:"rates_at"`
		Buckets  []bucketPayload `json:"buckets"`
	}

	ratesPayload struct {
		Base      string         `json:"base"`
		Rates     core.RateTable `json:"rates"`
		FetchedAt time.Time      `json:"fetched_at"`
	}

	currenciesPayload struct {
		Base      string            `json:"base"`
		Supported []string          `json:"supported"`
		Symbols   map[string]string `json:"symbols"`
		Next      map[string]string `json:"next"`
	}
)

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	fq, err := parseFilterQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, err := s.svc.List(r.Context(), fq.category, fq.from, fq.to)
	if err != nil {
		slog.ErrorContext(r.Context(), "List expenses failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not load expenses")
		return
	}
	if items == nil {
		items = []core.Expense{}
	}
	writeJSON(w, http.StatusOK, listPayload{Expenses: items, Count: len(items)})
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	e, err := req.toExpense()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	saved, err := s.svc.Create(r.Context(), e)
	if err != nil {
		s.writeExpenseError(w, r, err)
		return
	}
	s.breakdowns.Purge()
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleReplaceExpense(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	e, err := req.toExpense()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := s.svc.Update(r.Context(), id, e)
	if err != nil {
		s.writeExpenseError(w, r, err)
		return
	}
	s.breakdowns.Purge()
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeExpenseError(w, r, err)
		return
	}
	s.breakdowns.Purge()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearExpenses(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Clear(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "Clear expenses failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not clear expenses")
		return
	}
	s.breakdowns.Purge()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	fq, err := parseFilterQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	display := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("display")))
	if display == "" {
		display = core.BaseCurrency
	}
	if !core.SupportedCurrency(display) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported display currency %q", display))
		return
	}

	key := fq.cacheKey(display)
	if payload, ok := s.breakdowns.Get(key); ok {
		writeJSON(w, http.StatusOK, payload)
		return
	}

	table, fetchedAt := s.rates.Snapshot()
	bd, err := s.svc.Breakdown(r.Context(), fq.category, fq.from, fq.to, table, display)
	if err != nil {
		if errors.Is(err, core.ErrRatesUnavailable) {
			writeError(w, http.StatusServiceUnavailable, "exchange rates unavailable")
			return
		}
		slog.ErrorContext(r.Context(), "Breakdown failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not compute breakdown")
		return
	}

	payload := breakdownPayload{
		Total:    round2(bd.Total),
		Currency: display,
		Symbol:   core.CurrencySymbol(display),
		RatesAt:  fetchedAt,
		Buckets:  make([]bucketPayload, 0, len(bd.Buckets)),
	}
	for _, b := range bd.Buckets {
		payload.Buckets = append(payload.Buckets, bucketPayload{
			Category:   b.Category,
			Amount:     round2(b.Amount),
			Percentage: round2(b.Percentage),
			Color:      b.Color,
			Emoji:      b.Emoji,
		})
	}

	s.breakdowns.Set(key, payload)
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleRates(w http.ResponseWriter, r *http.Request) {
	table, fetchedAt := s.rates.Snapshot()
	if len(table) == 0 {
		writeError(w, http.StatusServiceUnavailable, "exchange rates unavailable")
		return
	}
	writeJSON(w, http.StatusOK, ratesPayload{Base: core.BaseCurrency, Rates: table, FetchedAt: fetchedAt})
}

func (s *Server) handleRefreshRates(w http.ResponseWriter, r *http.Request) {
	if err := s.rates.Refresh(r.Context()); err != nil {
		slog.WarnContext(r.Context(), "Manual rate refresh failed", "error", err)
		// A stale table may still be serving; report the fetch failure only.
		writeError(w, http.StatusBadGateway, "rate refresh failed")
		return
	}
	s.breakdowns.Purge()
	table, fetchedAt := s.rates.Snapshot()
	writeJSON(w, http.StatusOK, ratesPayload{Base: core.BaseCurrency, Rates: table, FetchedAt: fetchedAt})
}

func (s *Server) handleCurrencies(w http.ResponseWriter, r *http.Request) {
	symbols := make(map[string]string, len(core.SupportedCurrencies))
	next := make(map[string]string, len(core.SupportedCurrencies))
	for _, c := range core.SupportedCurrencies {
		symbols[c] = core.CurrencySymbol(c)
		next[c] = core.NextCurrency(c)
	}
	writeJSON(w, http.StatusOK, currenciesPayload{
		Base:      core.BaseCurrency,
		Supported: core.SupportedCurrencies,
		Symbols:   symbols,
		Next:      next,
	})
}

func (s *Server) writeExpenseError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "expense not found")
	case isValidationError(err):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		slog.ErrorContext(r.Context(), "Expense operation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func isValidationError(err error) bool {
	for _, sentinel := range []error{
		core.ErrInvalidAmount,
		core.ErrUnknownCurrency,
		core.ErrUnknownCategory,
		core.ErrZeroDate,
		core.ErrNoteTooLong,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

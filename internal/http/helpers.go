package http

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"travelwallet/internal/core"
)

// filterDateLayout is the wire format for the from/to query parameters.
// Bounds are day-granular; clamping to day start and end happens in core.
const filterDateLayout = "2006-01-02"

type errorPayload struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorPayload{Error: msg})
}

// round2 applies the two-decimal presentation rounding. Aggregation itself
// stays full precision.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

type filterQuery struct {
	category string
	from     time.Time
	to       time.Time
}

func parseFilterQuery(r *http.Request) (filterQuery, error) {
	var fq filterQuery
	fq.category = strings.TrimSpace(r.URL.Query().Get("category"))
	if fq.category != "" && fq.category != core.FilterAllCategories && !core.KnownCategory(fq.category) {
		return fq, fmt.Errorf("unknown category %q", fq.category)
	}

	var err error
	if v := strings.TrimSpace(r.URL.Query().Get("from")); v != "" {
		fq.from, err = time.ParseInLocation(filterDateLayout, v, time.Local)
		if err != nil {
			return fq, fmt.Errorf("invalid from date %q, want YYYY-MM-DD", v)
		}
	}
	if v := strings.TrimSpace(r.URL.Query().Get("to")); v != "" {
		fq.to, err = time.ParseInLocation(filterDateLayout, v, time.Local)
		if err != nil {
			return fq, fmt.Errorf("invalid to date %q, want YYYY-MM-DD", v)
		}
	}
	return fq, nil
}

func (fq filterQuery) cacheKey(display string) string {
	return fq.category + "|" + fq.from.Format(filterDateLayout) + "|" + fq.to.Format(filterDateLayout) + "|" + display
}

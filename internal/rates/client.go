// Package rates fetches the currency rate table the aggregator converts
// with. The table is keyed by currency code and expressed as units of that
// currency per one unit of the base currency.
package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"travelwallet/internal/core"
)

const DefaultURL = "https://api.exchangerate-api.com/v4"

type Client struct {
	baseURL    string
	base       string
	httpClient *http.Client
	maxElapsed time.Duration

	mu        sync.RWMutex
	table     core.RateTable
	fetchedAt time.Time
}

func NewClient(baseURL, baseCurrency string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	if baseCurrency == "" {
		baseCurrency = core.BaseCurrency
	}
	return &Client{
		baseURL:    baseURL,
		base:       baseCurrency,
		httpClient: &http.Client{Timeout: timeout},
		maxElapsed: 15 * time.Second,
	}
}

type latestResponse struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

// Refresh fetches the latest table and replaces the current one wholesale.
// On failure the previous table is kept, stale but available; before the
// first success the table is empty and breakdowns report unavailable.
func (c *Client) Refresh(ctx context.Context) error {
	var fetched core.RateTable

	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet,
			fmt.Sprintf("%s/latest/%s", c.baseURL, c.base), nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("rate API returned status %d", resp.StatusCode)
		}
		var body latestResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return fmt.Errorf("decode rate response: %w", err)
		}
		if len(body.Rates) == 0 {
			return fmt.Errorf("rate response contained no rates")
		}
		fetched = body.Rates
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = c.maxElapsed
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return fmt.Errorf("fetch rates: %w", err)
	}

	c.mu.Lock()
	c.table = fetched
	c.fetchedAt = time.Now()
	c.mu.Unlock()

	slog.InfoContext(ctx, "Rate table refreshed", "base", c.base, "currencies", len(fetched))
	return nil
}

// Snapshot returns a copy of the current table and its fetch time. The copy
// is safe to hand to the aggregator while refreshes continue.
func (c *Client) Snapshot() (core.RateTable, time.Time) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.table == nil {
		return core.RateTable{}, c.fetchedAt
	}
	table := make(core.RateTable, len(c.table))
	for k, v := range c.table {
		table[k] = v
	}
	return table, c.fetchedAt
}

// Run refreshes the table on an interval until the context ends. Failures
// are logged and the stale table stays in place.
func (c *Client) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping rate refresh loop", "reason", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
			if err := c.Refresh(ctx); err != nil {
				slog.WarnContext(ctx, "Rate refresh failed, keeping previous table", "error", err)
			}
		}
	}
}

// Package geo resolves a captured GPS point into a human-readable place
// string via a Nominatim-style reverse endpoint.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"travelwallet/internal/core"
)

const DefaultURL = "https://nominatim.openstreetmap.org"

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type reverseResponse struct {
	Address struct {
		Road       string `json:"road"`
		Pedestrian string `json:"pedestrian"`
		Suburb     string `json:"suburb"`
		City       string `json:"city"`
		Town       string `json:"town"`
		Village    string `json:"village"`
	} `json:"address"`
}

// ReverseGeocode returns a "street, city" style address for the point,
// falling back to a lat/lng string when the lookup fails or comes back
// empty. It never returns an error; a save must not fail on geocoding.
func (c *Client) ReverseGeocode(ctx context.Context, p core.LatLng) string {
	addr, err := c.lookup(ctx, p)
	if err != nil {
		slog.DebugContext(ctx, "Reverse geocode failed, using fallback", "error", err)
		return FallbackAddress(p)
	}
	if addr == "" {
		return FallbackAddress(p)
	}
	return addr
}

func (c *Client) lookup(ctx context.Context, p core.LatLng) (string, error) {
	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("lat", strconv.FormatFloat(p.Lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(p.Lng, 'f', -1, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "travelwallet/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("geocoder returned status %d", resp.StatusCode)
	}

	var body reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode geocoder response: %w", err)
	}

	street := firstNonEmpty(body.Address.Road, body.Address.Pedestrian)
	city := firstNonEmpty(body.Address.City, body.Address.Town, body.Address.Village, body.Address.Suburb)
	switch {
	case street != "" && city != "":
		return street + ", " + city, nil
	case street != "":
		return street, nil
	default:
		return city, nil
	}
}

// FallbackAddress is the place string used when no geocode result exists.
func FallbackAddress(p core.LatLng) string {
	return fmt.Sprintf("Lat: %.2f, Lng: %.2f", p.Lat, p.Lng)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

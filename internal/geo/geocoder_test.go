package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"travelwallet/internal/core"
)

func TestReverseGeocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("format"); got != "jsonv2" {
			t.Errorf("unexpected format %q", got)
		}
		w.Write([]byte(`{"address":{"road":"Champ de Mars","city":"Paris"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	got := c.ReverseGeocode(context.Background(), core.LatLng{Lat: 48.8584, Lng: 2.2945})
	if got != "Champ de Mars, Paris" {
		t.Fatalf("expected street and city, got %q", got)
	}
}

func TestReverseGeocodePartialAddress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"address":{"town":"Giverny"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	got := c.ReverseGeocode(context.Background(), core.LatLng{Lat: 49.0756, Lng: 1.5332})
	if got != "Giverny" {
		t.Fatalf("expected town only, got %q", got)
	}
}

func TestReverseGeocodeFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	got := c.ReverseGeocode(context.Background(), core.LatLng{Lat: 48.8584, Lng: 2.2945})
	if got != "Lat: 48.86, Lng: 2.29" {
		t.Fatalf("expected lat/lng fallback, got %q", got)
	}
}

func TestReverseGeocodeEmptyResultFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"address":{}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	got := c.ReverseGeocode(context.Background(), core.LatLng{Lat: -12.5, Lng: 130.84})
	if got != "Lat: -12.50, Lng: 130.84" {
		t.Fatalf("expected fallback, got %q", got)
	}
}

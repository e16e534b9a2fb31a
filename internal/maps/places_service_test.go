package maps

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"kainan/internal/modules/location"
	"kainan/internal/types"
)

func newTestPlaces(t *testing.T, body string) *PlacesService {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/textsearch/json") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("query") == "" {
			t.Errorf("missing query param: %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	svc, err := NewPlacesService("AIza-test-key", "PH", types.Point{Lat: 15.1450, Lng: 120.5887}, srv.Client(), srv.URL)
	if err != nil {
		t.Fatalf("NewPlacesService: %v", err)
	}
	return svc
}

func TestPlacesService_OK(t *testing.T) {
	svc := newTestPlaces(t, `{"status":"OK","results":[{"name":"Marquee Mall","formatted_address":"Angeles, Pampanga","geometry":{"location":{"lat":15.1626,"lng":120.6087}}}]}`)
	pt, err := svc.Geocode(context.Background(), "Marquee Mall")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pt.Lat != 15.1626 || pt.Lng != 120.6087 {
		t.Errorf("unexpected point %v", pt)
	}
}

func TestPlacesService_ZeroResults(t *testing.T) {
	svc := newTestPlaces(t, `{"status":"ZERO_RESULTS","results":[]}`)
	_, err := svc.Geocode(context.Background(), "nowhere")
	if !errors.Is(err, location.ErrNoResult) {
		t.Errorf("expected ErrNoResult, got %v", err)
	}
	if location.IsTransient(err) {
		t.Errorf("zero results must not be retried")
	}
}

package maps

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"kainan/internal/modules/location"
)

func newTestGeocoder(t *testing.T, body string) *GeocodeService {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("address") == "" {
			t.Errorf("missing address param: %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	svc, err := NewGeocodeService("AIza-test-key", "PH", srv.Client(), srv.URL)
	if err != nil {
		t.Fatalf("NewGeocodeService: %v", err)
	}
	return svc
}

func TestGeocodeService_OK(t *testing.T) {
	svc := newTestGeocoder(t, `{"status":"OK","results":[{"formatted_address":"Angeles, Pampanga","geometry":{"location":{"lat":15.145,"lng":120.5887}}}]}`)
	pt, err := svc.Geocode(context.Background(), "Angeles City")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pt.Lat != 15.145 || pt.Lng != 120.5887 {
		t.Errorf("unexpected point %v", pt)
	}
}

func TestGeocodeService_ZeroResults(t *testing.T) {
	svc := newTestGeocoder(t, `{"status":"ZERO_RESULTS","results":[]}`)
	_, err := svc.Geocode(context.Background(), "nowhere")
	if !errors.Is(err, location.ErrNoResult) {
		t.Errorf("expected ErrNoResult, got %v", err)
	}
}

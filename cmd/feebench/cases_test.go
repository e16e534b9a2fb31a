package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestQuoteCase(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("address") {
		case "Broken":
			_, _ = w.Write([]byte(`{"deliveryFee":99,"distance":5,"quotationId":"EST-3","isEstimate":true,"source":"default","priceBreakdown":{"baseFee":49,"distanceFee":40,"totalFee":99}}`))
		case "Florida Residences":
			_, _ = w.Write([]byte(`{"deliveryFee":71,"distance":2.2,"quotationId":"EST-1","isEstimate":true,"source":"override","priceBreakdown":{"baseFee":49,"distanceFee":22,"totalFee":71}}`))
		default:
			_, _ = w.Write([]byte(`{"deliveryFee":99,"distance":5,"quotationId":"EST-2","isEstimate":true,"source":"default","priceBreakdown":{"baseFee":49,"distanceFee":50,"totalFee":99}}`))
		}
	}))
	defer srv.Close()

	r := NewRunner(Config{BaseURL: srv.URL, Concurrency: 1, Duration: time.Millisecond})
	tests := []struct {
		address string
		wantKm  float64
		want    string
	}{
		{address: "Florida Residences", wantKm: 2.2, want: "PASS"},
		{address: "Somewhere", wantKm: -1, want: "PASS"},
		{address: "Somewhere", wantKm: 3.0, want: "FAIL"},
		{address: "Broken", wantKm: -1, want: "FAIL"},
	}
	for _, tt := range tests {
		res := quoteCase("q", srv.URL, tt.address, tt.wantKm).Run(context.Background(), r)
		if res.Status != tt.want {
			t.Errorf("%s/%v: got %s (%s), want %s", tt.address, tt.wantKm, res.Status, res.Note, tt.want)
		}
	}
}

func TestMigrationTables(t *testing.T) {
	tables, err := migrationTables()
	if err != nil {
		t.Fatalf("migrationTables: %v", err)
	}
	want := map[string]bool{"delivery_quotes": true, "orders": true, "order_state_events": true}
	if len(tables) != len(want) {
		t.Fatalf("tables = %v", tables)
	}
	for _, tb := range tables {
		if !want[tb] {
			t.Errorf("unexpected table %q", tb)
		}
	}
}

package location

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"kainan/internal/types"
)

var testPickup = PickupLocation{
	Point:   types.Point{Lat: 15.1450, Lng: 120.5887},
	Address: "Angeles City, Pampanga",
}

type countingChain struct {
	res   GeocodeResult
	err   error
	calls atomic.Int32
}

func (c *countingChain) Geocode(ctx context.Context, address string) (GeocodeResult, error) {
	c.calls.Add(1)
	return c.res, c.err
}

func newTestService(t *testing.T, chain GeocodeChain) *Service {
	t.Helper()
	rules, err := DefaultRules()
	if err != nil {
		t.Fatalf("DefaultRules: %v", err)
	}
	return NewService(testPickup, rules, chain, nil, Options{DefaultDistanceKm: 5})
}

func TestResolve_OverrideSkipsGeocoder(t *testing.T) {
	chain := &countingChain{err: errors.New("must not be called")}
	svc := newTestService(t, chain)

	cases := map[string]float64{
		"Florida Residences":                    2.2,
		"SM City Pampanga":                      13.1,
		"Lot 3, SM CITY PAMPANGA, San Fernando": 13.1,
		"Holy Angel University":                 1.4,
	}
	for addr, want := range cases {
		res := svc.Resolve(context.Background(), addr)
		if res.Source != SourceOverride || res.DistanceKm != want {
			t.Errorf("%q: got %+v, want override %v", addr, res, want)
		}
		if res.HasPoint {
			t.Errorf("%q: override must not carry a point", addr)
		}
	}
	if n := chain.calls.Load(); n != 0 {
		t.Errorf("geocoder called %d times for override addresses", n)
	}
}

func TestResolve_PlusCodeTable(t *testing.T) {
	chain := &countingChain{err: errors.New("must not be called")}
	svc := newTestService(t, chain)

	res := svc.Resolve(context.Background(), "2MQM+7Q San Fernando, Pampanga")
	if res.Source != SourcePlusCode || res.Provider != "PlusCode" || !res.HasPoint {
		t.Fatalf("expected plus code resolution, got %+v", res)
	}
	want := RoadDistanceKm(HaversineKm(testPickup.Point, types.Point{Lat: 15.0343, Lng: 120.6841}))
	if res.DistanceKm != want {
		t.Errorf("distance = %v, want %v", res.DistanceKm, want)
	}
	if chain.calls.Load() != 0 {
		t.Error("plus code hit must not geocode")
	}
}

func TestResolve_UntabulatedPlusCodeFallsThrough(t *testing.T) {
	chain := &countingChain{err: &StatusError{Provider: "x", Code: 500}}
	svc := newTestService(t, chain)

	res := svc.Resolve(context.Background(), "ABCD1234+XY")
	if res.Source != SourceDefault || res.DistanceKm != 5 {
		t.Errorf("expected default distance, got %+v", res)
	}
	if chain.calls.Load() != 1 {
		t.Errorf("expected geocoding to be attempted once, got %d", chain.calls.Load())
	}
}

func TestResolve_GeocodedAppliesRoadFactor(t *testing.T) {
	dest := types.Point{Lat: 15.1700, Lng: 120.5300}
	chain := &countingChain{res: GeocodeResult{Lat: dest.Lat, Lng: dest.Lng, Success: true, Provider: "Nominatim"}}
	svc := newTestService(t, chain)

	res := svc.Resolve(context.Background(), "Some street nobody curated")
	straight := HaversineKm(testPickup.Point, dest)
	if res.Source != SourceGeocoded || res.Provider != "Nominatim" {
		t.Fatalf("unexpected resolution %+v", res)
	}
	if want := RoundKm(straight * RoadFactor(straight)); res.DistanceKm != want {
		t.Errorf("distance = %v, want %v (straight %v)", res.DistanceKm, want, straight)
	}
}

func TestResolve_RejectsOutOfCountry(t *testing.T) {
	// Taipei: outside the box, heuristic keyword then takes over.
	chain := &countingChain{res: GeocodeResult{Lat: 25.0340, Lng: 121.5645, Success: true, Provider: "Photon"}}
	svc := newTestService(t, chain)

	res := svc.Resolve(context.Background(), "Balibago, Angeles City")
	if res.Source != SourceHeuristic || res.DistanceKm != 3.5 {
		t.Errorf("expected balibago heuristic, got %+v", res)
	}
	if res.HasPoint {
		t.Error("rejected point leaked into resolution")
	}
}

func TestResolve_RejectsImplausibleDistance(t *testing.T) {
	// Davao is inside the country box but ~1000km away.
	chain := &countingChain{res: GeocodeResult{Lat: 7.1907, Lng: 125.4553, Success: true, Provider: "Nominatim"}}
	svc := newTestService(t, chain)

	res := svc.Resolve(context.Background(), "Unknown Purok")
	if res.Source != SourceDefault || res.DistanceKm != 5 {
		t.Errorf("expected default fallback, got %+v", res)
	}
}

func TestResolve_AllProvidersFailUsesHeuristic(t *testing.T) {
	chain := &countingChain{err: fmt.Errorf("joined: %w", &StatusError{Provider: "Nominatim", Code: 500})}
	svc := newTestService(t, chain)

	res := svc.Resolve(context.Background(), "Purok 4, Magalang")
	if res.Source != SourceHeuristic || res.DistanceKm != 14.0 || res.Pattern != "magalang" {
		t.Errorf("expected magalang heuristic, got %+v", res)
	}
}

func TestResolve_EmptyAddressAndNilGeocoder(t *testing.T) {
	svc := newTestService(t, nil)
	if res := svc.Resolve(context.Background(), "   "); res.Source != SourceDefault {
		t.Errorf("empty address: got %+v", res)
	}
	if res := svc.Resolve(context.Background(), "Nowhere Street"); res.Source != SourceDefault || res.DistanceKm != 5 {
		t.Errorf("nil geocoder: got %+v", res)
	}
}

func TestResolve_Concurrent(t *testing.T) {
	chain := &countingChain{res: GeocodeResult{Lat: 15.16, Lng: 120.56, Success: true, Provider: "Nominatim"}}
	svc := newTestService(t, chain)

	done := make(chan Resolution, 20)
	for i := 0; i < 20; i++ {
		go func() { done <- svc.Resolve(context.Background(), "Friendship Highway") }()
	}
	first := <-done
	for i := 1; i < 20; i++ {
		if got := <-done; got != first {
			t.Fatalf("concurrent resolutions differ: %+v vs %+v", got, first)
		}
	}
}

func TestStore_GeocodeCache(t *testing.T) {
	redisAddr := os.Getenv("KAINAN_REDIS_ADDR")
	if redisAddr == "" {
		t.Skip("KAINAN_REDIS_ADDR not set; skipping integration test")
	}

	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer rdb.Close()

	store := NewStore(rdb)
	ctx := context.Background()
	addr := fmt.Sprintf("Cache Test St %d", time.Now().UnixNano())
	defer rdb.Del(ctx, geocodeKey(addr))

	if _, hit, err := store.GetGeocode(ctx, addr); err != nil || hit {
		t.Fatalf("expected miss, got hit=%v err=%v", hit, err)
	}
	want := GeocodeResult{Lat: 15.1372, Lng: 120.5901, Success: true, Provider: "Photon"}
	if err := store.PutGeocode(ctx, addr, want); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, hit, err := store.GetGeocode(ctx, "  cache test st "+addr[len("Cache Test St "):])
	if err != nil || !hit {
		t.Fatalf("expected hit on normalised address, got hit=%v err=%v", hit, err)
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}

	// The resolver must serve repeated lookups from the cache.
	chain := &countingChain{res: want}
	rules, _ := DefaultRules()
	svc := NewService(testPickup, rules, chain, store, Options{})
	svc.Resolve(ctx, addr)
	if chain.calls.Load() != 0 {
		t.Errorf("expected cache hit, geocoder called %d times", chain.calls.Load())
	}
}

func TestStore_RejectedPointNotCached(t *testing.T) {
	redisAddr := os.Getenv("KAINAN_REDIS_ADDR")
	if redisAddr == "" {
		t.Skip("KAINAN_REDIS_ADDR not set; skipping integration test")
	}

	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer rdb.Close()

	store := NewStore(rdb)
	ctx := context.Background()
	addr := fmt.Sprintf("Balibago Rejected %d", time.Now().UnixNano())
	defer rdb.Del(ctx, geocodeKey(addr))

	// Taipei: outside the service area.
	chain := &countingChain{res: GeocodeResult{Lat: 25.0340, Lng: 121.5645, Success: true, Provider: "Photon"}}
	rules, _ := DefaultRules()
	svc := NewService(testPickup, rules, chain, store, Options{})

	for i := 0; i < 2; i++ {
		if res := svc.Resolve(ctx, addr); res.Source != SourceHeuristic {
			t.Fatalf("call %d: got %+v, want heuristic", i+1, res)
		}
	}
	if _, hit, err := store.GetGeocode(ctx, addr); err != nil || hit {
		t.Errorf("rejected point was cached: hit=%v err=%v", hit, err)
	}
	if got := chain.calls.Load(); got != 2 {
		t.Errorf("geocoder calls = %d, want 2", got)
	}

	// A stale out-of-area entry is ignored and the providers are asked again.
	if err := store.PutGeocode(ctx, addr, GeocodeResult{Lat: 25.0340, Lng: 121.5645, Success: true, Provider: "Photon"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	good := &countingChain{res: GeocodeResult{Lat: 15.16, Lng: 120.56, Success: true, Provider: "Nominatim"}}
	svc = NewService(testPickup, rules, good, store, Options{})
	if res := svc.Resolve(ctx, addr); res.Source != SourceGeocoded || res.Provider != "Nominatim" {
		t.Errorf("got %+v, want fresh geocode", res)
	}
	if good.calls.Load() != 1 {
		t.Errorf("geocoder calls = %d, want 1", good.calls.Load())
	}
}

func TestStore_NilIsNoop(t *testing.T) {
	var store *Store
	if _, hit, err := store.GetGeocode(context.Background(), "x"); hit || err != nil {
		t.Errorf("nil store should miss silently")
	}
	if err := NewStore(nil).PutGeocode(context.Background(), "x", GeocodeResult{Success: true}); err != nil {
		t.Errorf("unexpected error %v", err)
	}
}

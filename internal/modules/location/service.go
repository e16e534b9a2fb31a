// README: Location service resolves a delivery address to a road distance from the pickup point.
package location

import (
	"context"
	"log"
	"strings"

	"kainan/internal/types"
)

// GeocodeChain is satisfied by *Chain; tests substitute counting fakes.
type GeocodeChain interface {
	Geocode(ctx context.Context, address string) (GeocodeResult, error)
}

type Options struct {
	Bounds            Bounds
	DefaultDistanceKm float64
}

// Service is safe for concurrent use: everything it holds is read-only
// after construction.
type Service struct {
	pickup    PickupLocation
	rules     RuleTable
	geocoder  GeocodeChain
	store     *Store
	bounds    Bounds
	defaultKm float64
}

func NewService(pickup PickupLocation, rules RuleTable, geocoder GeocodeChain, store *Store, opts Options) *Service {
	if opts.Bounds == (Bounds{}) {
		opts.Bounds = PhilippinesBounds
	}
	if opts.DefaultDistanceKm <= 0 {
		opts.DefaultDistanceKm = 5.0
	}
	return &Service{
		pickup:    pickup,
		rules:     rules,
		geocoder:  geocoder,
		store:     store,
		bounds:    opts.Bounds,
		defaultKm: RoundKm(opts.DefaultDistanceKm),
	}
}

func (s *Service) Pickup() PickupLocation {
	return s.pickup
}

// Resolve runs the precedence pipeline: tabulated Plus Code, curated
// override, geocoding, then the heuristic keyword table and the default
// distance. It never fails.
func (s *Service) Resolve(ctx context.Context, address string) Resolution {
	address = strings.TrimSpace(address)
	if address == "" {
		return s.fallback(address)
	}

	if pt, code, ok := s.rules.LookupPlusCode(address); ok {
		if res, ok := s.fromPoint(pt, "PlusCode", SourcePlusCode, address); ok {
			res.Pattern = code
			return res
		}
	}

	if r, ok := MatchRules(s.rules.Overrides, address); ok {
		return Resolution{DistanceKm: RoundKm(r.DistanceKm), Source: SourceOverride, Pattern: r.Pattern}
	}

	if res, ok := s.geocode(ctx, address); ok {
		return res
	}

	return s.fallback(address)
}

func (s *Service) fromPoint(pt types.Point, provider string, src Source, address string) (Resolution, bool) {
	if !s.bounds.Contains(pt) {
		log.Printf("location: %s point %.5f,%.5f for %q is outside the service area", provider, pt.Lat, pt.Lng, address)
		return Resolution{}, false
	}
	straight := HaversineKm(s.pickup.Point, pt)
	if straight > MaxPlausibleKm {
		log.Printf("location: %s point for %q is %.1fkm away, discarding", provider, address, straight)
		return Resolution{}, false
	}
	return Resolution{
		DistanceKm: RoadDistanceKm(straight),
		Source:     src,
		Provider:   provider,
		Point:      pt,
		HasPoint:   true,
	}, true
}

// geocode consults the cache, then the provider chain. Only points that pass
// the service-area and distance checks are cached.
func (s *Service) geocode(ctx context.Context, address string) (Resolution, bool) {
	cached, hit, err := s.store.GetGeocode(ctx, address)
	if err != nil {
		log.Printf("location: geocode cache read failed: %v", err)
	} else if hit {
		if res, ok := s.fromPoint(cached.Point(), cached.Provider, SourceGeocoded, address); ok {
			return res, true
		}
	}

	if s.geocoder == nil {
		return Resolution{}, false
	}
	gr, err := s.geocoder.Geocode(ctx, address)
	if err != nil || !gr.Success {
		log.Printf("location: geocoding %q failed: %v", address, err)
		return Resolution{}, false
	}
	res, ok := s.fromPoint(gr.Point(), gr.Provider, SourceGeocoded, address)
	if !ok {
		return Resolution{}, false
	}
	if err := s.store.PutGeocode(ctx, address, gr); err != nil {
		log.Printf("location: geocode cache write failed: %v", err)
	}
	return res, true
}

func (s *Service) fallback(address string) Resolution {
	if r, ok := MatchRules(s.rules.Fallback, address); ok {
		return Resolution{DistanceKm: RoundKm(r.DistanceKm), Source: SourceHeuristic, Pattern: r.Pattern}
	}
	return Resolution{DistanceKm: s.defaultKm, Source: SourceDefault}
}

package maps

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"googlemaps.github.io/maps"

	"kainan/internal/modules/location"
	"kainan/internal/types"
)

// GeocodeService handles interactions with the Google Geocoding API.
type GeocodeService struct {
	client  *maps.Client
	region  string
	country string
}

// NewGeocodeService creates a GeocodeService with the given API key, biased
// to the given ISO country code (e.g. "PH"). baseURL is only set in tests.
func NewGeocodeService(apiKey, country string, httpClient *http.Client, baseURL string) (*GeocodeService, error) {
	opts := []maps.ClientOption{maps.WithAPIKey(apiKey)}
	if httpClient != nil {
		opts = append(opts, maps.WithHTTPClient(httpClient))
	}
	if baseURL != "" {
		opts = append(opts, maps.WithBaseURL(baseURL))
	}
	client, err := maps.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GeocodeService{
		client:  client,
		region:  strings.ToLower(country),
		country: strings.ToUpper(country),
	}, nil
}

func (s *GeocodeService) Name() string { return "GoogleMaps" }

// Geocode returns the first result's location for address.
func (s *GeocodeService) Geocode(ctx context.Context, address string) (types.Point, error) {
	r := &maps.GeocodingRequest{
		Address: address,
		Region:  s.region,
	}
	if s.country != "" {
		r.Components = map[maps.Component]string{maps.ComponentCountry: s.country}
	}

	results, err := s.client.Geocode(ctx, r)
	if err != nil {
		if isZeroResults(err) {
			return types.Point{}, location.ErrNoResult
		}
		return types.Point{}, fmt.Errorf("maps api error: %w", err)
	}
	if len(results) == 0 {
		return types.Point{}, location.ErrNoResult
	}

	loc := results[0].Geometry.Location
	return types.Point{Lat: loc.Lat, Lng: loc.Lng}, nil
}

// isZeroResults matches the status text in the client's error message; the
// maps library does not export a typed status error.
func isZeroResults(err error) bool {
	return err != nil && strings.Contains(err.Error(), "ZERO_RESULTS")
}

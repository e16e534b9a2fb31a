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

// placesBiasRadiusM keeps text search around the pickup point.
const placesBiasRadiusM = 50000

// PlacesService resolves landmark names (malls, schools, subdivisions)
// through Google Places text search.
type PlacesService struct {
	client *maps.Client
	region string
	near   types.Point
}

// NewPlacesService creates a PlacesService biased towards near. baseURL is
// only set in tests.
func NewPlacesService(apiKey, country string, near types.Point, httpClient *http.Client, baseURL string) (*PlacesService, error) {
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
	return &PlacesService{client: client, region: strings.ToLower(country), near: near}, nil
}

func (s *PlacesService) Name() string { return "GooglePlaces" }

// Geocode returns the location of the top text search result.
func (s *PlacesService) Geocode(ctx context.Context, address string) (types.Point, error) {
	r := &maps.TextSearchRequest{
		Query:    address,
		Region:   s.region,
		Location: &maps.LatLng{Lat: s.near.Lat, Lng: s.near.Lng},
		Radius:   placesBiasRadiusM,
	}
	resp, err := s.client.TextSearch(ctx, r)
	if err != nil {
		if isZeroResults(err) {
			return types.Point{}, location.ErrNoResult
		}
		return types.Point{}, fmt.Errorf("places api error: %w", err)
	}
	if len(resp.Results) == 0 {
		return types.Point{}, location.ErrNoResult
	}
	loc := resp.Results[0].Geometry.Location
	return types.Point{Lat: loc.Lat, Lng: loc.Lng}, nil
}

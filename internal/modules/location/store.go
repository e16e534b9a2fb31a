// README: Geocode cache backed by Redis hashes.
package location

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	geocodeKeyPrefix = "location:geocode:"
	// Addresses do not move; a week keeps the free providers' load down.
	geocodeTTL = 7 * 24 * time.Hour
)

// Store caches successful geocodes. A Store without a client is a no-op.
type Store struct {
	redis *redis.Client
}

func NewStore(redis *redis.Client) *Store {
	return &Store{redis: redis}
}

func (s *Store) enabled() bool {
	return s != nil && s.redis != nil
}

// GetGeocode returns a cached geocode for address, if any.
func (s *Store) GetGeocode(ctx context.Context, address string) (GeocodeResult, bool, error) {
	if !s.enabled() {
		return GeocodeResult{}, false, nil
	}
	vals, err := s.redis.HGetAll(ctx, geocodeKey(address)).Result()
	if err != nil {
		return GeocodeResult{}, false, err
	}
	if len(vals) == 0 {
		return GeocodeResult{}, false, nil
	}
	lat, err := strconv.ParseFloat(vals["lat"], 64)
	if err != nil {
		return GeocodeResult{}, false, err
	}
	lng, err := strconv.ParseFloat(vals["lng"], 64)
	if err != nil {
		return GeocodeResult{}, false, err
	}
	return GeocodeResult{Lat: lat, Lng: lng, Success: true, Provider: vals["provider"]}, true, nil
}

// PutGeocode stores a successful geocode.
func (s *Store) PutGeocode(ctx context.Context, address string, res GeocodeResult) error {
	if !s.enabled() || !res.Success {
		return nil
	}
	key := geocodeKey(address)
	pipe := s.redis.Pipeline()
	pipe.HSet(ctx, key,
		"lat", strconv.FormatFloat(res.Lat, 'f', -1, 64),
		"lng", strconv.FormatFloat(res.Lng, 'f', -1, 64),
		"provider", res.Provider,
	)
	pipe.Expire(ctx, key, geocodeTTL)
	_, err := pipe.Exec(ctx)
	return err
}

func geocodeKey(address string) string {
	return geocodeKeyPrefix + normaliseAddress(address)
}

func normaliseAddress(address string) string {
	return strings.Join(strings.Fields(strings.ToLower(address)), " ")
}

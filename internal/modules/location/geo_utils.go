// README: Pure geographic helpers: haversine, road factor, rounding, service-area bounds.
package location

import (
	"math"

	"kainan/internal/types"
)

const earthRadiusKm = 6371.0

// MaxPlausibleKm is the straight-line distance above which a geocode is
// assumed to be a mis-geocode.
const MaxPlausibleKm = 200.0

// HaversineKm returns the great-circle distance in kilometres between two
// points specified in decimal degrees.
func HaversineKm(a, b types.Point) float64 {
	dLat := degreesToRadians(b.Lat - a.Lat)
	dLng := degreesToRadians(b.Lng - a.Lng)

	rLat1 := degreesToRadians(a.Lat)
	rLat2 := degreesToRadians(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// RoadFactor converts a straight-line distance into an estimated travel
// distance multiplier. Longer trips ride highways, short ones detour
// through local streets.
func RoadFactor(straightKm float64) float64 {
	switch {
	case straightKm > 15:
		return 1.0
	case straightKm > 8:
		return 1.1
	case straightKm > 3:
		return 1.2
	case straightKm > 1:
		return 1.15
	default:
		return 1.1
	}
}

// RoadDistanceKm applies RoadFactor and rounds to one decimal place.
func RoadDistanceKm(straightKm float64) float64 {
	return RoundKm(straightKm * RoadFactor(straightKm))
}

// RoundKm rounds to one decimal place and never returns a negative value.
func RoundKm(km float64) float64 {
	if km <= 0 {
		return 0
	}
	return math.Round(km*10) / 10
}

// Bounds is a lat/lng bounding box.
type Bounds struct {
	MinLat float64
	MaxLat float64
	MinLng float64
	MaxLng float64
}

// PhilippinesBounds covers the whole service country.
var PhilippinesBounds = Bounds{MinLat: 4.5, MaxLat: 21.5, MinLng: 116.0, MaxLng: 127.0}

func (b Bounds) Contains(p types.Point) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat && p.Lng >= b.MinLng && p.Lng <= b.MaxLng
}

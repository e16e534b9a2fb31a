// README: Address resolution model: pickup point, geocode results and resolved distances.
package location

import "kainan/internal/types"

// PickupLocation is the shop's fixed dispatch point. It is set once at
// construction and never mutated.
type PickupLocation struct {
	Point   types.Point
	Address string
}

// GeocodeResult is produced per lookup and never persisted except in the cache.
type GeocodeResult struct {
	Lat      float64
	Lng      float64
	Success  bool
	Provider string
}

func (r GeocodeResult) Point() types.Point {
	return types.Point{Lat: r.Lat, Lng: r.Lng}
}

// Source records which step of the pipeline produced a distance.
type Source string

const (
	SourcePlusCode  Source = "plus_code"
	SourceOverride  Source = "override"
	SourceGeocoded  Source = "geocoded"
	SourceHeuristic Source = "heuristic"
	SourceDefault   Source = "default"
)

// Resolution is the outcome of resolving one delivery address.
// Point is only meaningful when HasPoint is set (plus code or geocoder hit).
type Resolution struct {
	DistanceKm float64
	Source     Source
	Provider   string
	Pattern    string
	Point      types.Point
	HasPoint   bool
}

// Rule maps a lowercase substring pattern to a verified distance.
type Rule struct {
	Pattern    string  `yaml:"pattern"`
	DistanceKm float64 `yaml:"distance_km"`
}

// PlusCodeEntry is a previously verified Plus Code and its coordinate.
type PlusCodeEntry struct {
	Code string  `yaml:"code"`
	Lat  float64 `yaml:"lat"`
	Lng  float64 `yaml:"lng"`
}

// README: OpenStreetMap Nominatim geocoder (free, one request per second).
package location

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"kainan/internal/types"
)

const DefaultNominatimURL = "https://nominatim.openstreetmap.org"

type Nominatim struct {
	baseURL   string
	userAgent string
	country   string
	http      *http.Client
	limiter   *rate.Limiter
}

// NewNominatim builds a Nominatim client. minInterval spaces out requests
// from this process; zero disables the limiter.
func NewNominatim(baseURL, userAgent, country string, httpClient *http.Client, minInterval time.Duration) *Nominatim {
	if baseURL == "" {
		baseURL = DefaultNominatimURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	limit := rate.Inf
	if minInterval > 0 {
		limit = rate.Every(minInterval)
	}
	return &Nominatim{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		country:   strings.ToLower(country),
		http:      httpClient,
		limiter:   rate.NewLimiter(limit, 1),
	}
}

func (n *Nominatim) Name() string { return "Nominatim" }

type nominatimPlace struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

func (n *Nominatim) Geocode(ctx context.Context, address string) (types.Point, error) {
	if err := n.limiter.Wait(ctx); err != nil {
		return types.Point{}, fmt.Errorf("nominatim: rate limit: %w", err)
	}

	q := url.Values{}
	q.Set("q", address)
	q.Set("format", "json")
	q.Set("limit", "1")
	if n.country != "" {
		q.Set("countrycodes", n.country)
	}

	var places []nominatimPlace
	if err := getJSON(ctx, n.http, n.Name(), n.baseURL+"/search?"+q.Encode(), n.userAgent, &places); err != nil {
		return types.Point{}, err
	}
	if len(places) == 0 {
		return types.Point{}, ErrNoResult
	}
	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return types.Point{}, fmt.Errorf("nominatim: bad lat %q: %w", places[0].Lat, err)
	}
	lng, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return types.Point{}, fmt.Errorf("nominatim: bad lon %q: %w", places[0].Lon, err)
	}
	return types.Point{Lat: lat, Lng: lng}, nil
}

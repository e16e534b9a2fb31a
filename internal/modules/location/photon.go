// README: Komoot Photon geocoder returning GeoJSON point features.
package location

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"kainan/internal/types"
)

const DefaultPhotonURL = "https://photon.komoot.io"

type Photon struct {
	baseURL   string
	userAgent string
	http      *http.Client
}

func NewPhoton(baseURL, userAgent string, httpClient *http.Client) *Photon {
	if baseURL == "" {
		baseURL = DefaultPhotonURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Photon{baseURL: strings.TrimRight(baseURL, "/"), userAgent: userAgent, http: httpClient}
}

func (p *Photon) Name() string { return "Photon" }

type photonCollection struct {
	Features []struct {
		Geometry struct {
			Type        string    `json:"type"`
			Coordinates []float64 `json:"coordinates"` // [lon, lat]
		} `json:"geometry"`
	} `json:"features"`
}

func (p *Photon) Geocode(ctx context.Context, address string) (types.Point, error) {
	q := url.Values{}
	q.Set("q", address)
	q.Set("limit", "1")

	var fc photonCollection
	if err := getJSON(ctx, p.http, p.Name(), p.baseURL+"/api?"+q.Encode(), p.userAgent, &fc); err != nil {
		return types.Point{}, err
	}
	for _, f := range fc.Features {
		if f.Geometry.Type != "Point" || len(f.Geometry.Coordinates) < 2 {
			continue
		}
		return types.Point{Lat: f.Geometry.Coordinates[1], Lng: f.Geometry.Coordinates[0]}, nil
	}
	return types.Point{}, ErrNoResult
}

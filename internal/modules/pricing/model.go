// README: Delivery fee schedule, fee breakdown and quote definitions.
package pricing

import (
	"errors"
	"math"
	"time"

	"kainan/internal/modules/location"
)

var ErrNotFound = errors.New("quote not found")

// FeeSchedule is the two-tier per-kilometre tariff.
type FeeSchedule struct {
	BaseFee           float64
	FirstTierKm       float64
	FirstTierRate     float64
	SecondTierRate    float64
	DefaultDistanceKm float64
}

func DefaultFeeSchedule() FeeSchedule {
	return FeeSchedule{
		BaseFee:           49,
		FirstTierKm:       5,
		FirstTierRate:     10,
		SecondTierRate:    8,
		DefaultDistanceKm: 5,
	}
}

type FeeBreakdown struct {
	BaseFee            float64 `json:"baseFee"`
	DistanceFee        float64 `json:"distanceFee"`
	FirstTierDistance  float64 `json:"firstTierDistance"`
	SecondTierDistance float64 `json:"secondTierDistance"`
	FirstTierRate      float64 `json:"firstTierRate"`
	SecondTierRate     float64 `json:"secondTierRate"`
	TotalFee           float64 `json:"totalFee"`
}

// Compute prices a distance. Negative distances are treated as zero.
func (s FeeSchedule) Compute(distanceKm float64) FeeBreakdown {
	d := location.RoundKm(distanceKm)
	first := math.Min(d, s.FirstTierKm)
	second := location.RoundKm(d - first)

	distanceFee := roundCentavos(first*s.FirstTierRate + second*s.SecondTierRate)
	return FeeBreakdown{
		BaseFee:            s.BaseFee,
		DistanceFee:        distanceFee,
		FirstTierDistance:  first,
		SecondTierDistance: second,
		FirstTierRate:      s.FirstTierRate,
		SecondTierRate:     s.SecondTierRate,
		TotalFee:           s.BaseFee + distanceFee,
	}
}

func roundCentavos(v float64) float64 {
	return math.Round(v*100) / 100
}

// Quote is what checkout receives. IsEstimate is false only for quotes
// issued by the courier.
type Quote struct {
	DeliveryFee    float64         `json:"deliveryFee"`
	Distance       float64         `json:"distance"`
	PriceBreakdown FeeBreakdown    `json:"priceBreakdown"`
	QuotationID    string          `json:"quotationId"`
	Currency       string          `json:"currency"`
	IsEstimate     bool            `json:"isEstimate"`
	Message        string          `json:"message,omitempty"`
	Source         location.Source `json:"source"`
	Provider       string          `json:"provider,omitempty"`
	Address        string          `json:"address"`
	CreatedAt      time.Time       `json:"createdAt"`
}

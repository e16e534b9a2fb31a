// README: Pricing service turns a delivery address into a delivery fee quote.
package pricing

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"kainan/internal/modules/location"
	"kainan/internal/types"
)

// SourceCourier marks quotes issued by the paid courier API.
const SourceCourier location.Source = "courier"

// Locator resolves an address to a distance from the pickup point.
type Locator interface {
	Resolve(ctx context.Context, address string) location.Resolution
	Pickup() location.PickupLocation
}

type Service struct {
	locator  Locator
	schedule FeeSchedule
	courier  Courier
	store    *Store
	now      func() time.Time
}

// NewService wires the estimator. courier and store may be nil.
func NewService(locator Locator, schedule FeeSchedule, courier Courier, store *Store) *Service {
	return &Service{
		locator:  locator,
		schedule: schedule,
		courier:  courier,
		store:    store,
		now:      time.Now,
	}
}

// Estimate always produces a quote. Failures along the way degrade the
// quote to an estimate; they are never returned to the caller.
//
// The courier is asked only when the address resolved to a coordinate
// (Plus Code or geocoder). Override, heuristic and default resolutions have
// no dropoff point to send, so they keep the computed fee even when a
// courier is configured.
func (s *Service) Estimate(ctx context.Context, address string) Quote {
	address = strings.TrimSpace(address)
	res := s.locator.Resolve(ctx, address)

	courierFailed := false
	if s.courier != nil && res.HasPoint {
		cq, err := s.courier.Quote(ctx, CourierRequest{
			Pickup:         s.locator.Pickup(),
			Dropoff:        res.Point,
			DropoffAddress: address,
		})
		if err == nil {
			q := s.courierQuote(address, res, cq)
			s.save(ctx, q)
			return q
		}
		courierFailed = true
		log.Printf("pricing: courier quote for %q failed, falling back to estimate: %v", address, err)
	}

	q := s.estimateQuote(address, res, courierFailed)
	s.save(ctx, q)
	return q
}

// Get returns a previously issued quote.
func (s *Service) Get(ctx context.Context, quotationID string) (Quote, error) {
	if s.store == nil || quotationID == "" {
		return Quote{}, ErrNotFound
	}
	return s.store.GetQuote(ctx, quotationID)
}

func (s *Service) estimateQuote(address string, res location.Resolution, courierFailed bool) Quote {
	breakdown := s.schedule.Compute(res.DistanceKm)
	msg := estimateMessage(res.Source)
	if courierFailed {
		msg += " Courier quotation was unavailable."
	}
	return Quote{
		DeliveryFee:    breakdown.TotalFee,
		Distance:       location.RoundKm(res.DistanceKm),
		PriceBreakdown: breakdown,
		QuotationID:    "EST-" + uuid.NewString(),
		Currency:       types.CurrencyPHP,
		IsEstimate:     true,
		Message:        msg,
		Source:         res.Source,
		Provider:       res.Provider,
		Address:        address,
		CreatedAt:      s.now().UTC(),
	}
}

func (s *Service) courierQuote(address string, res location.Resolution, cq CourierQuote) Quote {
	distance := res.DistanceKm
	if cq.DistanceKm > 0 {
		distance = cq.DistanceKm
	}
	currency := cq.Currency
	if currency == "" {
		currency = types.CurrencyPHP
	}
	breakdown := FeeBreakdown{
		BaseFee:     cq.BaseFee,
		DistanceFee: cq.TotalFee - cq.BaseFee,
	}
	breakdown.TotalFee = breakdown.BaseFee + breakdown.DistanceFee
	return Quote{
		DeliveryFee:    breakdown.TotalFee,
		Distance:       location.RoundKm(distance),
		PriceBreakdown: breakdown,
		QuotationID:    cq.QuotationID,
		Currency:       currency,
		IsEstimate:     false,
		Message:        "Delivery fee quoted by the courier.",
		Source:         SourceCourier,
		Provider:       res.Provider,
		Address:        address,
		CreatedAt:      s.now().UTC(),
	}
}

func estimateMessage(src location.Source) string {
	switch src {
	case location.SourceOverride:
		return "Estimated fee based on a verified distance for this address."
	case location.SourcePlusCode:
		return "Estimated fee based on the Plus Code location."
	case location.SourceGeocoded:
		return "Estimated fee based on the approximate road distance."
	case location.SourceHeuristic:
		return "Estimated fee: the address could not be located exactly, distance is based on the area."
	default:
		return "Estimated fee: the address could not be located, a standard distance was used."
	}
}

func (s *Service) save(ctx context.Context, q Quote) {
	if s.store == nil {
		return
	}
	if err := s.store.SaveQuote(ctx, q); err != nil {
		log.Printf("pricing: saving quote %s failed: %v", q.QuotationID, err)
	}
}

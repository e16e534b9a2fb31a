// README: Order service implements checkout submission and status transitions.
package order

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"kainan/internal/modules/pricing"
	"kainan/internal/types"
)

var (
	ErrInvalidState = errors.New("invalid state transition")
	ErrNotFound     = errors.New("order not found")
	ErrConflict     = errors.New("order state conflict")
	ErrBadRequest   = errors.New("bad request")
)

// Quoter prices delivery to an address. It never fails.
type Quoter interface {
	Estimate(ctx context.Context, address string) pricing.Quote
}

// Repository persists orders. *Store and *MemoryStore implement it.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	Get(ctx context.Context, id types.ID) (*Order, error)
	UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int, reason *string) (bool, error)
	AppendEvent(ctx context.Context, e *Event) error
}

// MaxSubtotalPesos bounds a single checkout subtotal.
const MaxSubtotalPesos = 1_000_000

type Service struct {
	store  Repository
	quoter Quoter
	now    func() time.Time
}

func NewService(store Repository, quoter Quoter) *Service {
	return &Service{store: store, quoter: quoter, now: time.Now}
}

type SubmitCommand struct {
	CustomerName    string
	Phone           string
	DeliveryAddress string
	Notes           string
	SubtotalPesos   float64
}

type AdvanceCommand struct {
	OrderID   types.ID
	To        Status
	ActorType string
}

type CancelCommand struct {
	OrderID   types.ID
	ActorType string
	Reason    string
}

// Submit validates a checkout, prices the delivery and stores the order.
func (s *Service) Submit(ctx context.Context, cmd SubmitCommand) (*Order, error) {
	cmd.CustomerName = strings.TrimSpace(cmd.CustomerName)
	cmd.DeliveryAddress = strings.TrimSpace(cmd.DeliveryAddress)
	if cmd.CustomerName == "" || cmd.DeliveryAddress == "" || cmd.SubtotalPesos <= 0 || cmd.SubtotalPesos > MaxSubtotalPesos {
		return nil, ErrBadRequest
	}

	quote := s.quoter.Estimate(ctx, cmd.DeliveryAddress)
	now := s.now().UTC()
	o := &Order{
		ID:              types.ID(uuid.NewString()),
		CustomerName:    cmd.CustomerName,
		Phone:           strings.TrimSpace(cmd.Phone),
		DeliveryAddress: cmd.DeliveryAddress,
		Notes:           strings.TrimSpace(cmd.Notes),
		Subtotal:        types.PesosToMoney(cmd.SubtotalPesos),
		DeliveryFee:     types.PesosToMoney(quote.DeliveryFee),
		QuotationID:     quote.QuotationID,
		DistanceKm:      quote.Distance,
		FeeIsEstimate:   quote.IsEstimate,
		Status:          StatusPending,
		StatusVersion:   0,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.Create(ctx, o); err != nil {
		return nil, err
	}
	s.appendEvent(ctx, o.ID, StatusNone, StatusPending, "customer")
	log.Printf("order: %s submitted, delivery fee %.2f (%s, estimate=%v)", o.ID, quote.DeliveryFee, quote.Source, quote.IsEstimate)
	return o, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Order, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	return s.store.Get(ctx, id)
}

// Advance moves an order forward along the kitchen and delivery flow.
func (s *Service) Advance(ctx context.Context, cmd AdvanceCommand) (*Order, error) {
	if cmd.To == StatusCancelled {
		return s.Cancel(ctx, CancelCommand{OrderID: cmd.OrderID, ActorType: cmd.ActorType})
	}
	return s.transition(ctx, cmd.OrderID, cmd.To, actorOr(cmd.ActorType, "staff"), nil)
}

func (s *Service) Cancel(ctx context.Context, cmd CancelCommand) (*Order, error) {
	var reason *string
	if r := strings.TrimSpace(cmd.Reason); r != "" {
		reason = &r
	}
	return s.transition(ctx, cmd.OrderID, StatusCancelled, actorOr(cmd.ActorType, "customer"), reason)
}

func (s *Service) transition(ctx context.Context, id types.ID, to Status, actor string, reason *string) (*Order, error) {
	o, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(o.Status, to) {
		return nil, ErrInvalidState
	}
	ok, err := s.store.UpdateStatus(ctx, o.ID, o.Status, to, o.StatusVersion, reason)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConflict
	}
	s.appendEvent(ctx, o.ID, o.Status, to, actor)

	o.Status = to
	o.StatusVersion++
	o.UpdatedAt = s.now().UTC()
	if reason != nil {
		o.CancelReason = reason
	}
	return o, nil
}

func (s *Service) appendEvent(ctx context.Context, id types.ID, from, to Status, actor string) {
	err := s.store.AppendEvent(ctx, &Event{
		OrderID:    id,
		FromStatus: from,
		ToStatus:   to,
		ActorType:  actor,
		CreatedAt:  s.now().UTC(),
	})
	if err != nil {
		log.Printf("order: event %s -> %s for %s not recorded: %v", from, to, id, err)
	}
}

func actorOr(actor, fallback string) string {
	if actor == "" {
		return fallback
	}
	return actor
}

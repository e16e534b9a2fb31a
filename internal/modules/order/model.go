// README: Order aggregate and status definitions.
package order

import (
	"time"

	"kainan/internal/types"
)

type Status string

const (
	StatusNone           Status = "none"
	StatusPending        Status = "pending"
	StatusPreparing      Status = "preparing"
	StatusOutForDelivery Status = "out_for_delivery"
	StatusDelivered      Status = "delivered"
	StatusCancelled      Status = "cancelled"
)

type Order struct {
	ID              types.ID    `json:"id"`
	CustomerName    string      `json:"customerName"`
	Phone           string      `json:"phone"`
	DeliveryAddress string      `json:"deliveryAddress"`
	Notes           string      `json:"notes,omitempty"`
	Subtotal        types.Money `json:"-"`
	DeliveryFee     types.Money `json:"-"`
	QuotationID     string      `json:"quotationId"`
	DistanceKm      float64     `json:"distanceKm"`
	FeeIsEstimate   bool        `json:"feeIsEstimate"`
	Status          Status      `json:"status"`
	StatusVersion   int         `json:"statusVersion"`
	CancelReason    *string     `json:"cancelReason,omitempty"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// Total is subtotal plus delivery fee.
func (o *Order) Total() types.Money {
	return types.Money{Amount: o.Subtotal.Amount + o.DeliveryFee.Amount, Currency: o.Subtotal.Currency}
}

type Event struct {
	ID         int64
	OrderID    types.ID
	FromStatus Status
	ToStatus   Status
	ActorType  string
	CreatedAt  time.Time
}

// AllowedTransitions is the order status flow as code.
var AllowedTransitions = map[Status][]Status{
	StatusPending:        {StatusPreparing, StatusCancelled},
	StatusPreparing:      {StatusOutForDelivery, StatusCancelled},
	StatusOutForDelivery: {StatusDelivered},
}

func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

func ParseStatus(s string) (Status, bool) {
	switch st := Status(s); st {
	case StatusPending, StatusPreparing, StatusOutForDelivery, StatusDelivered, StatusCancelled:
		return st, true
	}
	return "", false
}

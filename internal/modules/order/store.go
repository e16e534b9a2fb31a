// README: Order store backed by PostgreSQL.
package order

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"kainan/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, o *Order) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO orders (
			id, customer_name, phone, delivery_address, notes,
			subtotal, delivery_fee, currency, quotation_id, distance_km, fee_is_estimate,
			status, status_version, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9, $10, $11,
			$12, $13, $14, $15
		)`,
		string(o.ID), o.CustomerName, o.Phone, o.DeliveryAddress, o.Notes,
		o.Subtotal.Amount, o.DeliveryFee.Amount, o.Subtotal.Currency, o.QuotationID, o.DistanceKm, o.FeeIsEstimate,
		string(o.Status), o.StatusVersion, o.CreatedAt, o.UpdatedAt,
	)
	return err
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Order, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, customer_name, phone, delivery_address, notes,
		       subtotal, delivery_fee, currency, quotation_id, distance_km, fee_is_estimate,
		       status, status_version, cancellation_reason, created_at, updated_at
		FROM orders
		WHERE id = $1`, string(id),
	)

	var o Order
	var currency string
	err := row.Scan(
		&o.ID, &o.CustomerName, &o.Phone, &o.DeliveryAddress, &o.Notes,
		&o.Subtotal.Amount, &o.DeliveryFee.Amount, &currency, &o.QuotationID, &o.DistanceKm, &o.FeeIsEstimate,
		&o.Status, &o.StatusVersion, &o.CancelReason, &o.CreatedAt, &o.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	o.Subtotal.Currency = currency
	o.DeliveryFee.Currency = currency
	return &o, nil
}

// UpdateStatus applies a transition only if the row still has the status and
// version the caller read.
func (s *Store) UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int, reason *string) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE orders
		SET status = $1,
		    status_version = status_version + 1,
		    cancellation_reason = COALESCE($2, cancellation_reason),
		    updated_at = NOW()
		WHERE id = $3 AND status = $4 AND status_version = $5`,
		string(to),
		reason,
		string(id),
		string(from),
		version,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) AppendEvent(ctx context.Context, e *Event) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO order_state_events (
			order_id, from_status, to_status, actor_type, created_at
		) VALUES ($1, $2, $3, $4, $5)`,
		string(e.OrderID),
		string(e.FromStatus),
		string(e.ToStatus),
		e.ActorType,
		e.CreatedAt,
	)
	return err
}

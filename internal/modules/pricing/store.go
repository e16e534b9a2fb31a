// README: Quote store backed by PostgreSQL.
package pricing

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"kainan/internal/modules/location"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) SaveQuote(ctx context.Context, q Quote) error {
	b := q.PriceBreakdown
	_, err := s.db.Exec(ctx, `
		INSERT INTO delivery_quotes (
			quotation_id, address, distance_km,
			base_fee, distance_fee, first_tier_distance, second_tier_distance,
			first_tier_rate, second_tier_rate, total_fee,
			currency, is_estimate, message, source, provider, created_at
		) VALUES (
			$1, $2, $3,
			$4, $5, $6, $7,
			$8, $9, $10,
			$11, $12, $13, $14, $15, $16
		)
		ON CONFLICT (quotation_id) DO NOTHING`,
		q.QuotationID, q.Address, q.Distance,
		b.BaseFee, b.DistanceFee, b.FirstTierDistance, b.SecondTierDistance,
		b.FirstTierRate, b.SecondTierRate, b.TotalFee,
		q.Currency, q.IsEstimate, q.Message, string(q.Source), q.Provider, q.CreatedAt,
	)
	return err
}

func (s *Store) GetQuote(ctx context.Context, id string) (Quote, error) {
	row := s.db.QueryRow(ctx, `
		SELECT quotation_id, address, distance_km,
		       base_fee, distance_fee, first_tier_distance, second_tier_distance,
		       first_tier_rate, second_tier_rate, total_fee,
		       currency, is_estimate, message, source, provider, created_at
		FROM delivery_quotes
		WHERE quotation_id = $1`, id,
	)

	var q Quote
	var source string
	b := &q.PriceBreakdown
	err := row.Scan(
		&q.QuotationID, &q.Address, &q.Distance,
		&b.BaseFee, &b.DistanceFee, &b.FirstTierDistance, &b.SecondTierDistance,
		&b.FirstTierRate, &b.SecondTierRate, &b.TotalFee,
		&q.Currency, &q.IsEstimate, &q.Message, &source, &q.Provider, &q.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Quote{}, ErrNotFound
	}
	if err != nil {
		return Quote{}, err
	}
	q.Source = location.Source(source)
	q.DeliveryFee = b.TotalFee
	return q, nil
}

package repository

import (
	"context"
	"fmt"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// discountRepository implements the DiscountRepository interface using
// PostgreSQL.
type discountRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewDiscountRepository creates a new PostgreSQL-backed discount repository.
func NewDiscountRepository(pool *pgxpool.Pool, logger zerolog.Logger) DiscountRepository {
	return &discountRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "discount").Logger(),
	}
}

// CountByOrder returns the number of discounts applied to an order.
func (r *discountRepository) CountByOrder(ctx context.Context, orderID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM discounts WHERE order_id = $1`

	var count int
	if err := r.pool.QueryRow(ctx, query, orderID).Scan(&count); err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to count discounts")
		return 0, fmt.Errorf("failed to count discounts: %w", err)
	}

	return count, nil
}

// Apply idempotently records that the coupon is applied to the order.
// The insert is guarded by the (order_id, coupon_id) unique constraint;
// on conflict the existing row is read back, so two concurrent attempts
// converge on the same discount.
func (r *discountRepository) Apply(ctx context.Context, orderID, couponID uuid.UUID) (*model.Discount, error) {
	insert := `
		INSERT INTO discounts (id, order_id, coupon_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (order_id, coupon_id) DO NOTHING
	`

	if _, err := r.pool.Exec(ctx, insert, uuid.New(), orderID, couponID); err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", orderID.String()).
			Str("coupon_id", couponID.String()).
			Msg("failed to insert discount")
		return nil, fmt.Errorf("failed to insert discount: %w", err)
	}

	query := `
		SELECT id, order_id, coupon_id, created_at
		FROM discounts
		WHERE order_id = $1 AND coupon_id = $2
	`

	var discount model.Discount
	err := r.pool.QueryRow(ctx, query, orderID, couponID).Scan(
		&discount.ID,
		&discount.OrderID,
		&discount.CouponID,
		&discount.CreatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", orderID.String()).
			Str("coupon_id", couponID.String()).
			Msg("failed to read back discount")
		return nil, fmt.Errorf("failed to read back discount: %w", err)
	}

	return &discount, nil
}

// ListByOrder returns the order's discounts joined with their coupons.
func (r *discountRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.AppliedDiscount, error) {
	query := `
		SELECT d.id, d.coupon_id, c.code, c.discount_type, c.value
		FROM discounts d
		JOIN coupons c ON c.id = d.coupon_id
		WHERE d.order_id = $1
		ORDER BY d.created_at
	`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to query discounts")
		return nil, fmt.Errorf("failed to query discounts: %w", err)
	}

	discounts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.AppliedDiscount, error) {
		var d model.AppliedDiscount
		err := row.Scan(&d.ID, &d.CouponID, &d.Code, &d.DiscountType, &d.Value)
		return d, err
	})
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to scan discount rows")
		return nil, fmt.Errorf("failed to scan discounts: %w", err)
	}

	return discounts, nil
}

// Delete removes a discount by id.
func (r *discountRepository) Delete(ctx context.Context, discountID uuid.UUID) error {
	query := `DELETE FROM discounts WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, discountID)
	if err != nil {
		r.logger.Error().Err(err).Str("discount_id", discountID.String()).Msg("failed to delete discount")
		return fmt.Errorf("failed to delete discount: %w", err)
	}
	if tag.RowsAffected() == 0 {
		r.logger.Debug().Str("discount_id", discountID.String()).Msg("discount not found")
		return model.ErrDiscountNotFound
	}

	r.logger.Debug().Str("discount_id", discountID.String()).Msg("discount removed")

	return nil
}

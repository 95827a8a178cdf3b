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

// couponRepository implements the CouponRepository interface using PostgreSQL.
type couponRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCouponRepository creates a new PostgreSQL-backed coupon repository.
func NewCouponRepository(pool *pgxpool.Pool, logger zerolog.Logger) CouponRepository {
	return &couponRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "coupon").Logger(),
	}
}

// FindByCode retrieves a coupon by its code, case-insensitively.
func (r *couponRepository) FindByCode(ctx context.Context, code string) (*model.Coupon, error) {
	query := `
		SELECT id, code, discount_type, value, valid_from, valid_until, recursive, created_at
		FROM coupons
		WHERE UPPER(code) = UPPER($1)
	`

	var coupon model.Coupon
	err := r.pool.QueryRow(ctx, query, code).Scan(
		&coupon.ID,
		&coupon.Code,
		&coupon.DiscountType,
		&coupon.Value,
		&coupon.ValidFrom,
		&coupon.ValidUntil,
		&coupon.Recursive,
		&coupon.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("code", code).Msg("coupon not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("code", code).Msg("failed to query coupon")
		return nil, fmt.Errorf("failed to query coupon: %w", err)
	}

	return &coupon, nil
}

// ProductScope returns the product ids the coupon is restricted to.
func (r *couponRepository) ProductScope(ctx context.Context, couponID uuid.UUID) ([]string, error) {
	query := `SELECT product_id FROM coupon_products WHERE coupon_id = $1`

	rows, err := r.pool.Query(ctx, query, couponID)
	if err != nil {
		r.logger.Error().Err(err).Str("coupon_id", couponID.String()).Msg("failed to query coupon product scope")
		return nil, fmt.Errorf("failed to query coupon product scope: %w", err)
	}

	products, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (string, error) {
		var id string
		err := row.Scan(&id)
		return id, err
	})
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to scan coupon product scope rows")
		return nil, fmt.Errorf("failed to scan coupon product scope: %w", err)
	}

	return products, nil
}

// ClientScope returns the user ids the coupon is restricted to.
func (r *couponRepository) ClientScope(ctx context.Context, couponID uuid.UUID) ([]uuid.UUID, error) {
	query := `SELECT user_id FROM coupon_clients WHERE coupon_id = $1`

	rows, err := r.pool.Query(ctx, query, couponID)
	if err != nil {
		r.logger.Error().Err(err).Str("coupon_id", couponID.String()).Msg("failed to query coupon client scope")
		return nil, fmt.Errorf("failed to query coupon client scope: %w", err)
	}

	clients, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (uuid.UUID, error) {
		var id uuid.UUID
		err := row.Scan(&id)
		return id, err
	})
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to scan coupon client scope rows")
		return nil, fmt.Errorf("failed to scan coupon client scope: %w", err)
	}

	return clients, nil
}

// Upsert inserts or replaces a coupon by code together with its scope sets.
// Used by the catalogue import tooling; scope sets are rewritten whole.
func (r *couponRepository) Upsert(ctx context.Context, coupon *model.Coupon, products []string, clients []uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	query := `
		INSERT INTO coupons (id, code, discount_type, value, valid_from, valid_until, recursive, created_at)
		VALUES ($1, UPPER($2), $3, $4, $5, $6, $7, $8)
		ON CONFLICT (code) DO UPDATE SET
			discount_type = EXCLUDED.discount_type,
			value = EXCLUDED.value,
			valid_from = EXCLUDED.valid_from,
			valid_until = EXCLUDED.valid_until,
			recursive = EXCLUDED.recursive
		RETURNING id
	`

	var couponID uuid.UUID
	err = tx.QueryRow(ctx, query,
		coupon.ID, coupon.Code, coupon.DiscountType, coupon.Value,
		coupon.ValidFrom, coupon.ValidUntil, coupon.Recursive, coupon.CreatedAt,
	).Scan(&couponID)
	if err != nil {
		r.logger.Error().Err(err).Str("code", coupon.Code).Msg("failed to upsert coupon")
		return fmt.Errorf("failed to upsert coupon: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM coupon_products WHERE coupon_id = $1`, couponID); err != nil {
		return fmt.Errorf("failed to clear coupon product scope: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM coupon_clients WHERE coupon_id = $1`, couponID); err != nil {
		return fmt.Errorf("failed to clear coupon client scope: %w", err)
	}

	batch := &pgx.Batch{}
	for _, productID := range products {
		batch.Queue(`INSERT INTO coupon_products (coupon_id, product_id) VALUES ($1, $2)`, couponID, productID)
	}
	for _, userID := range clients {
		batch.Queue(`INSERT INTO coupon_clients (coupon_id, user_id) VALUES ($1, $2)`, couponID, userID)
	}
	if batch.Len() > 0 {
		results := tx.SendBatch(ctx, batch)
		for i := 0; i < batch.Len(); i++ {
			if _, err := results.Exec(); err != nil {
				_ = results.Close()
				r.logger.Error().Err(err).Str("code", coupon.Code).Msg("failed to insert coupon scope")
				return fmt.Errorf("failed to insert coupon scope: %w", err)
			}
		}
		if err := results.Close(); err != nil {
			return fmt.Errorf("failed to close scope batch: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit coupon upsert: %w", err)
	}

	r.logger.Debug().
		Str("code", coupon.Code).
		Int("products", len(products)).
		Int("clients", len(clients)).
		Msg("coupon upserted")

	return nil
}

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

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// CreateOrder inserts a new order within the provided transaction.
func (r *orderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (id, user_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := tx.Exec(ctx, query, order.ID, order.UserID, order.Status, order.CreatedAt, order.UpdatedAt)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Msg("order created successfully")

	return nil
}

// UpdateOrder applies the typed field update within the provided transaction.
func (r *orderRepository) UpdateOrder(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, update model.OrderUpdate) error {
	query := `
		UPDATE orders
		SET status = COALESCE($2, status), updated_at = now()
		WHERE id = $1
	`

	var status *string
	if update.Status != nil {
		s := string(*update.Status)
		status = &s
	}

	tag, err := tx.Exec(ctx, query, orderID, status)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", orderID.String()).
			Msg("failed to update order")
		return fmt.Errorf("failed to update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to update order: no such order %s", orderID)
	}

	return nil
}

// GetByID retrieves an order scoped to its owning user.
func (r *orderRepository) GetByID(ctx context.Context, orderID, userID uuid.UUID) (*model.Order, error) {
	query := `
		SELECT id, user_id, status, created_at, updated_at
		FROM orders
		WHERE id = $1 AND user_id = $2
	`

	var order model.Order
	err := r.pool.QueryRow(ctx, query, orderID, userID).Scan(
		&order.ID,
		&order.UserID,
		&order.Status,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("order_id", orderID.String()).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	return &order, nil
}

// List retrieves a user's orders, newest first.
func (r *orderRepository) List(ctx context.Context, userID uuid.UUID, filter model.ListFilter) ([]model.Order, error) {
	query := `
		SELECT id, user_id, status, created_at, updated_at
		FROM orders
		WHERE user_id = $1 AND ($2 = '' OR id::text LIKE $2 || '%')
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4
	`

	rows, err := r.pool.Query(ctx, query, userID, filter.Number, filter.Limit, filter.Offset)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to query orders")
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}

	orders, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Order, error) {
		var o model.Order
		err := row.Scan(&o.ID, &o.UserID, &o.Status, &o.CreatedAt, &o.UpdatedAt)
		return o, err
	})
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to scan order rows")
		return nil, fmt.Errorf("failed to scan orders: %w", err)
	}

	return orders, nil
}

// CreateItems bulk-inserts order items within the provided transaction.
func (r *orderRepository) CreateItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_items (id, order_id, product_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4, $5)
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(query, item.ID, item.OrderID, item.ProductID, item.Quantity, item.UnitPrice)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(items); i++ {
		_, err := results.Exec()
		if err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", items[i].OrderID.String()).
				Str("product_id", items[i].ProductID).
				Msg("failed to create order item")
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	r.logger.Debug().
		Int("count", len(items)).
		Msg("order items created successfully")

	return nil
}

// DeleteItems removes all items of an order within the provided transaction.
func (r *orderRepository) DeleteItems(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) error {
	query := `DELETE FROM order_items WHERE order_id = $1`

	_, err := tx.Exec(ctx, query, orderID)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to delete order items")
		return fmt.Errorf("failed to delete order items: %w", err)
	}

	return nil
}

// DeleteItemsNotIn removes the order's items whose id is not in keep.
func (r *orderRepository) DeleteItemsNotIn(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, keep []uuid.UUID) error {
	query := `DELETE FROM order_items WHERE order_id = $1 AND NOT (id = ANY($2))`

	_, err := tx.Exec(ctx, query, orderID, keep)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to delete removed order items")
		return fmt.Errorf("failed to delete removed order items: %w", err)
	}

	return nil
}

// ItemsByIDs retrieves the subset of the order's items whose id is in ids.
func (r *orderRepository) ItemsByIDs(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, ids []uuid.UUID) ([]model.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, quantity, unit_price
		FROM order_items
		WHERE order_id = $1 AND id = ANY($2)
		ORDER BY id
	`

	rows, err := tx.Query(ctx, query, orderID, ids)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to query order items by id")
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}

	items, err := pgx.CollectRows(rows, scanOrderItem)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to scan order item rows")
		return nil, fmt.Errorf("failed to scan order items: %w", err)
	}

	return items, nil
}

// UpdateItem overwrites an item's mutable fields within the provided transaction.
func (r *orderRepository) UpdateItem(ctx context.Context, tx pgx.Tx, item *model.OrderItem) error {
	query := `
		UPDATE order_items
		SET product_id = $3, quantity = $4, unit_price = $5
		WHERE id = $1 AND order_id = $2
	`

	_, err := tx.Exec(ctx, query, item.ID, item.OrderID, item.ProductID, item.Quantity, item.UnitPrice)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("item_id", item.ID.String()).
			Str("order_id", item.OrderID.String()).
			Msg("failed to update order item")
		return fmt.Errorf("failed to update order item: %w", err)
	}

	return nil
}

// GetItems retrieves all items of an order.
func (r *orderRepository) GetItems(ctx context.Context, orderID uuid.UUID) ([]model.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, quantity, unit_price
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to query order items")
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}

	items, err := pgx.CollectRows(rows, scanOrderItem)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to scan order item rows")
		return nil, fmt.Errorf("failed to scan order items: %w", err)
	}

	return items, nil
}

// ProductIDsIn returns the order's product ids that appear in the given set.
func (r *orderRepository) ProductIDsIn(ctx context.Context, orderID uuid.UUID, productIDs []string) ([]string, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT DISTINCT product_id
		FROM order_items
		WHERE order_id = $1 AND product_id = ANY($2)
	`

	rows, err := r.pool.Query(ctx, query, orderID, productIDs)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to query matching products")
		return nil, fmt.Errorf("failed to query matching products: %w", err)
	}

	matched, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (string, error) {
		var id string
		err := row.Scan(&id)
		return id, err
	})
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to scan matching product rows")
		return nil, fmt.Errorf("failed to scan matching products: %w", err)
	}

	return matched, nil
}

func scanOrderItem(row pgx.CollectableRow) (model.OrderItem, error) {
	var item model.OrderItem
	err := row.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.UnitPrice)
	return item, err
}

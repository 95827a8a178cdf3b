package repository

import (
	"context"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// OrderRepository defines the interface for order data access operations.
// Methods that take a pgx.Tx run inside the caller's transaction scope;
// the caller owns the commit/rollback decision.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// UpdateOrder applies the typed field update to an order within the
	// provided transaction.
	UpdateOrder(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, update model.OrderUpdate) error

	// GetByID retrieves an order scoped to its owning user. Returns
	// (nil, nil) when no such order exists for that user.
	GetByID(ctx context.Context, orderID, userID uuid.UUID) (*model.Order, error)

	// List retrieves a user's orders, newest first, applying the filter.
	List(ctx context.Context, userID uuid.UUID, filter model.ListFilter) ([]model.Order, error)

	// CreateItems bulk-inserts order items within the provided transaction.
	CreateItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// DeleteItems removes all items of an order within the provided transaction.
	DeleteItems(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) error

	// DeleteItemsNotIn removes the order's items whose id is not in keep,
	// within the provided transaction. An empty keep set removes every item.
	DeleteItemsNotIn(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, keep []uuid.UUID) error

	// ItemsByIDs retrieves the subset of the order's items whose id is in
	// ids, within the provided transaction.
	ItemsByIDs(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, ids []uuid.UUID) ([]model.OrderItem, error)

	// UpdateItem overwrites an item's mutable fields within the provided
	// transaction.
	UpdateItem(ctx context.Context, tx pgx.Tx, item *model.OrderItem) error

	// GetItems retrieves all items of an order.
	GetItems(ctx context.Context, orderID uuid.UUID) ([]model.OrderItem, error)

	// ProductIDsIn returns the order's product ids that appear in the given
	// set (the intersection used for coupon product-scope matching).
	ProductIDsIn(ctx context.Context, orderID uuid.UUID, productIDs []string) ([]string, error)
}

// CouponRepository defines the interface for coupon data access operations.
// Coupons are referenced by the core, never mutated by it; Upsert exists
// for the catalogue import tooling.
type CouponRepository interface {
	// FindByCode retrieves a coupon by its code, case-insensitively.
	// Returns (nil, nil) when no coupon carries that code.
	FindByCode(ctx context.Context, code string) (*model.Coupon, error)

	// ProductScope returns the product ids the coupon is restricted to.
	// Empty means unrestricted on the product axis.
	ProductScope(ctx context.Context, couponID uuid.UUID) ([]string, error)

	// ClientScope returns the user ids the coupon is restricted to.
	// Empty means unrestricted on the client axis.
	ClientScope(ctx context.Context, couponID uuid.UUID) ([]uuid.UUID, error)

	// Upsert inserts or replaces a coupon by code together with its scope
	// sets.
	Upsert(ctx context.Context, coupon *model.Coupon, products []string, clients []uuid.UUID) error
}

// DiscountRepository defines the interface for discount data access
// operations.
type DiscountRepository interface {
	// CountByOrder returns the number of discounts applied to an order.
	CountByOrder(ctx context.Context, orderID uuid.UUID) (int, error)

	// Apply idempotently records that the coupon is applied to the order.
	// The (order_id, coupon_id) unique constraint makes a concurrent
	// duplicate insert collapse into the existing row.
	Apply(ctx context.Context, orderID, couponID uuid.UUID) (*model.Discount, error)

	// ListByOrder returns the order's discounts joined with their coupons.
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.AppliedDiscount, error)

	// Delete removes a discount by id. Returns model.ErrDiscountNotFound
	// when no such discount exists.
	Delete(ctx context.Context, discountID uuid.UUID) error
}

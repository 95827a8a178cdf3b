package service

import (
	"context"

	"storefront/internal/model"

	"github.com/google/uuid"
)

// OrderService coordinates order mutations. Each mutation runs as one
// transactional unit: it either commits whole or leaves no trace.
type OrderService interface {
	// Create persists a new order owned by userID, together with its items
	// when any are supplied.
	Create(ctx context.Context, userID uuid.UUID, items []model.ItemInput) (*model.OrderDetail, error)

	// Update merges the typed field changes and reconciles the order's
	// items against the desired set. A nil desired set leaves items alone.
	Update(ctx context.Context, orderID, userID uuid.UUID, update model.OrderUpdate, items []model.ItemInput) (*model.OrderDetail, error)

	// Get retrieves one order scoped to its owning user.
	Get(ctx context.Context, orderID, userID uuid.UUID) (*model.OrderDetail, error)

	// List retrieves the user's orders, newest first.
	List(ctx context.Context, userID uuid.UUID, filter model.ListFilter) ([]model.OrderDetail, error)
}

// DiscountService applies and removes coupon discounts on orders.
type DiscountService interface {
	// Apply evaluates the coupon against the order and records the
	// discount when eligible. A negative verdict is a normal outcome
	// carried in the result, not an error.
	Apply(ctx context.Context, userID, orderID uuid.UUID, code string) (*model.DiscountOutcome, error)

	// Remove deletes a discount by id.
	Remove(ctx context.Context, discountID uuid.UUID) error
}

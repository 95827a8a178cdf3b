package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusOpen      OrderStatus = "open"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
)

// ParseStatus validates a raw status string.
func ParseStatus(s string) (OrderStatus, error) {
	switch OrderStatus(s) {
	case StatusOpen, StatusCompleted, StatusCancelled:
		return OrderStatus(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// Order represents a customer order.
type Order struct {
	ID        uuid.UUID   `json:"id" db:"id"`
	UserID    uuid.UUID   `json:"userId" db:"user_id"`
	Status    OrderStatus `json:"status" db:"status"`
	CreatedAt time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time   `json:"updatedAt" db:"updated_at"`
}

// OrderItem represents a line item in an order. The unit price is a
// snapshot taken when the item was added, not a live product price.
type OrderItem struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	OrderID   uuid.UUID       `json:"-" db:"order_id"`
	ProductID string          `json:"productId" db:"product_id"`
	Quantity  int             `json:"quantity" db:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice" db:"unit_price"`
}

// ItemInput is a client-submitted desired line item. A zero ID means the
// entry does not reference an existing item.
type ItemInput struct {
	ID        uuid.UUID       `json:"id,omitempty"`
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// OrderUpdate enumerates the order fields a client may change. Nil fields
// are left untouched.
type OrderUpdate struct {
	Status *OrderStatus
}

// ListFilter narrows and pages an order listing.
type ListFilter struct {
	Number string // matches against the order id, prefix style
	Limit  int
	Offset int
}

// OrderSummary carries the metadata derived from an order's items and
// discounts at read time.
type OrderSummary struct {
	QtyItems int             `json:"qtyItems"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

// OrderDetail is an order with its items, applied discounts, and the
// derived summary.
type OrderDetail struct {
	Order
	Items     []OrderItem       `json:"items"`
	Discounts []AppliedDiscount `json:"discounts"`
	Summary   OrderSummary      `json:"summary"`
}

// Summarize computes the derived order metadata from items and applied
// discounts. The discount amount is capped so the total never goes
// negative.
func Summarize(items []OrderItem, discounts []AppliedDiscount) OrderSummary {
	subtotal := decimal.Zero
	qty := 0
	for _, item := range items {
		qty += item.Quantity
		subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	discount := decimal.Zero
	for _, d := range discounts {
		discount = discount.Add(d.Amount(subtotal))
	}
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}

	return OrderSummary{
		QtyItems: qty,
		Subtotal: subtotal.Round(2),
		Discount: discount.Round(2),
		Total:    subtotal.Sub(discount).Round(2),
	}
}

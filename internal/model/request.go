package model

import "github.com/google/uuid"

// CreateOrderRequest is the payload for creating an order. Items may be
// empty; the order is created without line items in that case.
type CreateOrderRequest struct {
	Items []ItemInput `json:"items"`
}

// UpdateOrderRequest is the payload for updating an order. Nil fields are
// left untouched; a present but empty items array removes every item.
type UpdateOrderRequest struct {
	Status *string      `json:"status,omitempty"`
	Items  *[]ItemInput `json:"items,omitempty"`
}

// ApplyDiscountRequest is the payload for applying a coupon to an order.
type ApplyDiscountRequest struct {
	Code string `json:"code"`
}

// RemoveDiscountRequest is the payload for removing a discount.
type RemoveDiscountRequest struct {
	DiscountID uuid.UUID `json:"discount_id"`
}

// ListOrdersResponse is the paged order listing payload.
type ListOrdersResponse struct {
	Orders []OrderDetail `json:"orders"`
	Page   int           `json:"page"`
	Limit  int           `json:"limit"`
}

package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Discount types supported by coupons.
const (
	DiscountPercent = "percent"
	DiscountFixed   = "fixed"
)

// Coupon is a discount template. Its product and client scope sets live in
// separate tables; an empty set means unrestricted on that axis. A
// recursive coupon may be layered on top of a prior discount on the same
// order.
type Coupon struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	Code         string          `json:"code" db:"code"`
	DiscountType string          `json:"discountType" db:"discount_type"`
	Value        decimal.Decimal `json:"value" db:"value"`
	ValidFrom    time.Time       `json:"validFrom" db:"valid_from"`
	ValidUntil   *time.Time      `json:"validUntil,omitempty" db:"valid_until"`
	Recursive    bool            `json:"recursive" db:"recursive"`
	CreatedAt    time.Time       `json:"createdAt" db:"created_at"`
}

// Discount records that a specific coupon has been applied to a specific
// order. At most one row exists per (order, coupon) pair.
type Discount struct {
	ID        uuid.UUID `json:"id" db:"id"`
	OrderID   uuid.UUID `json:"orderId" db:"order_id"`
	CouponID  uuid.UUID `json:"couponId" db:"coupon_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// AppliedDiscount is a discount joined with the coupon that produced it,
// as needed for computing order totals at read time.
type AppliedDiscount struct {
	ID           uuid.UUID       `json:"id"`
	CouponID     uuid.UUID       `json:"couponId"`
	Code         string          `json:"code"`
	DiscountType string          `json:"discountType"`
	Value        decimal.Decimal `json:"value"`
}

// Amount computes the monetary discount against the given subtotal.
func (d AppliedDiscount) Amount(subtotal decimal.Decimal) decimal.Decimal {
	if d.DiscountType == DiscountPercent {
		return subtotal.Mul(d.Value).Div(decimal.NewFromInt(100))
	}
	return d.Value
}

// DiscountOutcome is the result of a discount application attempt. A
// rejected application is a normal business outcome, not an error.
type DiscountOutcome struct {
	Success  bool         `json:"success"`
	Message  string       `json:"message"`
	Discount *Discount    `json:"discount,omitempty"`
	Order    *OrderDetail `json:"order,omitempty"`
}

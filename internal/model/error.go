package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON     = "INVALID_JSON"
	ErrCodeInvalidItems    = "INVALID_ITEMS"
	ErrCodeInvalidStatus   = "INVALID_STATUS"
	ErrCodeOrderNotFound   = "ORDER_NOT_FOUND"
	ErrCodeCouponNotFound  = "COUPON_NOT_FOUND"
	ErrCodeDiscountMissing = "DISCOUNT_NOT_FOUND"
	ErrCodeUnauthorised    = "UNAUTHORIZED"
	ErrCodeMutationFailed  = "MUTATION_FAILED"
	ErrCodeInternalError   = "INTERNAL_ERROR"
)

// DomainError is a client-visible error with a stable code.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	// NotFound family: the entity does not exist or is not owned by the
	// requesting user.
	ErrOrderNotFound    = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrCouponNotFound   = NewDomainError(ErrCodeCouponNotFound, "Coupon not found")
	ErrDiscountNotFound = NewDomainError(ErrCodeDiscountMissing, "Discount not found")

	// Validation family: malformed input, rejected before any write.
	ErrInvalidItems  = NewDomainError(ErrCodeInvalidItems, "Items must carry a product and a positive quantity")
	ErrInvalidStatus = NewDomainError(ErrCodeInvalidStatus, "Status must be open, completed or cancelled")

	// Transaction failures surface as a generic mutation error; the cause
	// stays in the logs.
	ErrCreateOrder = NewDomainError(ErrCodeMutationFailed, "Could not create the order right now")
	ErrUpdateOrder = NewDomainError(ErrCodeMutationFailed, "Could not update this order right now")
	ErrApplyCoupon = NewDomainError(ErrCodeMutationFailed, "Could not apply the coupon right now")
)

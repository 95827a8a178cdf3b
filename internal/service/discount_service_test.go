package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDiscountService(
	orderRepo *MockOrderRepository,
	couponRepo *MockCouponRepository,
	discountRepo *MockDiscountRepository,
	now time.Time,
) DiscountService {
	logger := zerolog.Nop()
	evaluator := newTestEvaluator(orderRepo, couponRepo, now)
	return NewDiscountService(orderRepo, couponRepo, discountRepo, evaluator, logger)
}

func TestDiscountService_Apply_Success(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	userID := uuid.New()
	orderID := uuid.New()

	coupon := activeCoupon(now)
	order := &model.Order{ID: orderID, UserID: userID, Status: model.StatusOpen}
	discount := &model.Discount{ID: uuid.New(), OrderID: orderID, CouponID: coupon.ID}

	mockOrderRepo := new(MockOrderRepository)
	mockCouponRepo := new(MockCouponRepository)
	mockDiscountRepo := new(MockDiscountRepository)

	service := newTestDiscountService(mockOrderRepo, mockCouponRepo, mockDiscountRepo, now)

	mockCouponRepo.On("FindByCode", ctx, "TEST10").Return(coupon, nil)
	mockOrderRepo.On("GetByID", ctx, orderID, userID).Return(order, nil)
	mockDiscountRepo.On("CountByOrder", ctx, orderID).Return(0, nil)
	mockCouponRepo.On("ProductScope", ctx, coupon.ID).Return([]string{}, nil)
	mockCouponRepo.On("ClientScope", ctx, coupon.ID).Return([]uuid.UUID{}, nil)
	mockDiscountRepo.On("Apply", ctx, orderID, coupon.ID).Return(discount, nil)

	outcome, err := service.Apply(ctx, userID, orderID, "TEST10")

	require.NoError(t, err)
	require.NotNil(t, outcome)
	assert.True(t, outcome.Success)
	assert.Equal(t, "Coupon applied successfully!", outcome.Message)
	require.NotNil(t, outcome.Discount)
	assert.Equal(t, discount.ID, outcome.Discount.ID)

	mockCouponRepo.AssertExpectations(t)
	mockOrderRepo.AssertExpectations(t)
	mockDiscountRepo.AssertExpectations(t)
}

func TestDiscountService_Apply_CouponNotFound(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	orderID := uuid.New()

	mockOrderRepo := new(MockOrderRepository)
	mockCouponRepo := new(MockCouponRepository)
	mockDiscountRepo := new(MockDiscountRepository)

	service := newTestDiscountService(mockOrderRepo, mockCouponRepo, mockDiscountRepo, time.Now())

	mockCouponRepo.On("FindByCode", ctx, "NOSUCH").Return(nil, nil)

	outcome, err := service.Apply(ctx, userID, orderID, "NOSUCH")

	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrCouponNotFound)
	assert.Nil(t, outcome)

	mockOrderRepo.AssertNotCalled(t, "GetByID")
	mockDiscountRepo.AssertNotCalled(t, "Apply")
}

func TestDiscountService_Apply_OrderNotFound(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	userID := uuid.New()
	orderID := uuid.New()

	coupon := activeCoupon(now)

	mockOrderRepo := new(MockOrderRepository)
	mockCouponRepo := new(MockCouponRepository)
	mockDiscountRepo := new(MockDiscountRepository)

	service := newTestDiscountService(mockOrderRepo, mockCouponRepo, mockDiscountRepo, now)

	mockCouponRepo.On("FindByCode", ctx, "TEST10").Return(coupon, nil)
	mockOrderRepo.On("GetByID", ctx, orderID, userID).Return(nil, nil)

	outcome, err := service.Apply(ctx, userID, orderID, "TEST10")

	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrOrderNotFound)
	assert.Nil(t, outcome)

	mockDiscountRepo.AssertNotCalled(t, "Apply")
}

func TestDiscountService_Apply_StackingBlocked(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	userID := uuid.New()
	orderID := uuid.New()

	// Non-recursive coupon against an order that already carries a discount.
	coupon := activeCoupon(now)
	coupon.Recursive = false
	order := &model.Order{ID: orderID, UserID: userID, Status: model.StatusOpen}

	mockOrderRepo := new(MockOrderRepository)
	mockCouponRepo := new(MockCouponRepository)
	mockDiscountRepo := new(MockDiscountRepository)

	service := newTestDiscountService(mockOrderRepo, mockCouponRepo, mockDiscountRepo, now)

	mockCouponRepo.On("FindByCode", ctx, "TEST10").Return(coupon, nil)
	mockOrderRepo.On("GetByID", ctx, orderID, userID).Return(order, nil)
	mockDiscountRepo.On("CountByOrder", ctx, orderID).Return(1, nil)

	outcome, err := service.Apply(ctx, userID, orderID, "TEST10")

	require.NoError(t, err)
	require.NotNil(t, outcome)
	assert.False(t, outcome.Success)
	assert.Equal(t, "This coupon cannot be applied to this order.", outcome.Message)
	assert.Nil(t, outcome.Discount)

	// A blocked stack never evaluates eligibility and never writes.
	mockCouponRepo.AssertNotCalled(t, "ProductScope")
	mockDiscountRepo.AssertNotCalled(t, "Apply")
}

func TestDiscountService_Apply_RecursiveCouponStacks(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	userID := uuid.New()
	orderID := uuid.New()

	coupon := activeCoupon(now)
	coupon.Code = "STACK5"
	coupon.DiscountType = model.DiscountFixed
	coupon.Value = decimal.NewFromInt(5)
	coupon.Recursive = true

	order := &model.Order{ID: orderID, UserID: userID, Status: model.StatusOpen}
	discount := &model.Discount{ID: uuid.New(), OrderID: orderID, CouponID: coupon.ID}

	mockOrderRepo := new(MockOrderRepository)
	mockCouponRepo := new(MockCouponRepository)
	mockDiscountRepo := new(MockDiscountRepository)

	service := newTestDiscountService(mockOrderRepo, mockCouponRepo, mockDiscountRepo, now)

	mockCouponRepo.On("FindByCode", ctx, "STACK5").Return(coupon, nil)
	mockOrderRepo.On("GetByID", ctx, orderID, userID).Return(order, nil)
	mockDiscountRepo.On("CountByOrder", ctx, orderID).Return(2, nil)
	mockCouponRepo.On("ProductScope", ctx, coupon.ID).Return([]string{}, nil)
	mockCouponRepo.On("ClientScope", ctx, coupon.ID).Return([]uuid.UUID{}, nil)
	mockDiscountRepo.On("Apply", ctx, orderID, coupon.ID).Return(discount, nil)

	outcome, err := service.Apply(ctx, userID, orderID, "STACK5")

	require.NoError(t, err)
	require.NotNil(t, outcome)
	assert.True(t, outcome.Success)

	mockDiscountRepo.AssertExpectations(t)
}

func TestDiscountService_Apply_IneligibleCouponRejected(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	userID := uuid.New()
	orderID := uuid.New()

	coupon := activeCoupon(now)
	order := &model.Order{ID: orderID, UserID: userID, Status: model.StatusOpen}

	mockOrderRepo := new(MockOrderRepository)
	mockCouponRepo := new(MockCouponRepository)
	mockDiscountRepo := new(MockDiscountRepository)

	service := newTestDiscountService(mockOrderRepo, mockCouponRepo, mockDiscountRepo, now)

	mockCouponRepo.On("FindByCode", ctx, "TEST10").Return(coupon, nil)
	mockOrderRepo.On("GetByID", ctx, orderID, userID).Return(order, nil)
	mockDiscountRepo.On("CountByOrder", ctx, orderID).Return(0, nil)
	// Client-scoped to a different user.
	mockCouponRepo.On("ProductScope", ctx, coupon.ID).Return([]string{}, nil)
	mockCouponRepo.On("ClientScope", ctx, coupon.ID).Return([]uuid.UUID{uuid.New()}, nil)

	outcome, err := service.Apply(ctx, userID, orderID, "TEST10")

	require.NoError(t, err)
	require.NotNil(t, outcome)
	assert.False(t, outcome.Success)
	assert.Nil(t, outcome.Discount)

	mockDiscountRepo.AssertNotCalled(t, "Apply")
}

func TestDiscountService_Apply_RepositoryError(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	orderID := uuid.New()

	mockOrderRepo := new(MockOrderRepository)
	mockCouponRepo := new(MockCouponRepository)
	mockDiscountRepo := new(MockDiscountRepository)

	service := newTestDiscountService(mockOrderRepo, mockCouponRepo, mockDiscountRepo, time.Now())

	mockCouponRepo.On("FindByCode", ctx, "TEST10").Return(nil, errors.New("database error"))

	outcome, err := service.Apply(ctx, userID, orderID, "TEST10")

	require.Error(t, err)
	assert.Nil(t, outcome)
}

func TestDiscountService_Remove(t *testing.T) {
	ctx := context.Background()
	discountID := uuid.New()

	tests := []struct {
		name      string
		mockError error
		expectErr error
	}{
		{
			name: "Success",
		},
		{
			name:      "Not found",
			mockError: model.ErrDiscountNotFound,
			expectErr: model.ErrDiscountNotFound,
		},
		{
			name:      "Repository error",
			mockError: errors.New("database error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockOrderRepo := new(MockOrderRepository)
			mockCouponRepo := new(MockCouponRepository)
			mockDiscountRepo := new(MockDiscountRepository)

			service := newTestDiscountService(mockOrderRepo, mockCouponRepo, mockDiscountRepo, time.Now())

			mockDiscountRepo.On("Delete", ctx, discountID).Return(tt.mockError)

			err := service.Remove(ctx, discountID)

			if tt.mockError == nil {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
				if tt.expectErr != nil {
					assert.ErrorIs(t, err, tt.expectErr)
				}
			}

			mockDiscountRepo.AssertExpectations(t)
		})
	}
}

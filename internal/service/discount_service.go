package service

import (
	"context"
	"fmt"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// User-facing messages for discount application outcomes.
const (
	msgCouponApplied  = "Coupon applied successfully!"
	msgCouponRejected = "This coupon cannot be applied to this order."
)

// discountService implements DiscountService. It gates applications on the
// stacking rule and the eligibility verdict, and records positive
// decisions idempotently.
type discountService struct {
	orderRepo    repository.OrderRepository
	couponRepo   repository.CouponRepository
	discountRepo repository.DiscountRepository
	evaluator    *EligibilityEvaluator
	logger       zerolog.Logger
}

// NewDiscountService creates a new discount service.
func NewDiscountService(
	orderRepo repository.OrderRepository,
	couponRepo repository.CouponRepository,
	discountRepo repository.DiscountRepository,
	evaluator *EligibilityEvaluator,
	logger zerolog.Logger,
) DiscountService {
	return &discountService{
		orderRepo:    orderRepo,
		couponRepo:   couponRepo,
		discountRepo: discountRepo,
		evaluator:    evaluator,
		logger:       logger.With().Str("service", "discount").Logger(),
	}
}

// Apply evaluates the coupon against the order and records the discount
// when eligible. Lookup failures surface as NotFound before any write; a
// negative verdict is a business outcome, not an error.
func (s *discountService) Apply(ctx context.Context, userID, orderID uuid.UUID, code string) (*model.DiscountOutcome, error) {
	coupon, err := s.couponRepo.FindByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to look up coupon: %w", err)
	}
	if coupon == nil {
		return nil, model.ErrCouponNotFound
	}

	order, err := s.orderRepo.GetByID(ctx, orderID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	applied, err := s.discountRepo.CountByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to count applied discounts: %w", err)
	}

	// Only one discount per order unless the coupon stacks. The unique
	// constraint on (order_id, coupon_id) backstops this check under
	// concurrent requests.
	canStack := applied < 1 || coupon.Recursive

	eligible := false
	if canStack {
		eligible, err = s.evaluator.IsEligible(ctx, order, coupon)
		if err != nil {
			return nil, fmt.Errorf("failed to evaluate eligibility: %w", err)
		}
	}

	outcome := &model.DiscountOutcome{}
	if canStack && eligible {
		discount, err := s.discountRepo.Apply(ctx, orderID, coupon.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to record discount: %w", err)
		}
		outcome.Success = true
		outcome.Message = msgCouponApplied
		outcome.Discount = discount

		s.logger.Info().
			Str("order_id", orderID.String()).
			Str("coupon", coupon.Code).
			Msg("discount applied")
	} else {
		outcome.Success = false
		outcome.Message = msgCouponRejected

		s.logger.Info().
			Str("order_id", orderID.String()).
			Str("coupon", coupon.Code).
			Bool("can_stack", canStack).
			Bool("eligible", eligible).
			Msg("discount rejected")
	}

	return outcome, nil
}

// Remove deletes a discount by id.
func (s *discountService) Remove(ctx context.Context, discountID uuid.UUID) error {
	if err := s.discountRepo.Delete(ctx, discountID); err != nil {
		if err == model.ErrDiscountNotFound {
			return err
		}
		return fmt.Errorf("failed to remove discount: %w", err)
	}

	s.logger.Info().Str("discount_id", discountID.String()).Msg("discount removed")

	return nil
}

package service

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/model"
	"storefront/internal/notify"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// orderService implements OrderService. It owns the transaction boundary
// for order mutations: field updates and item synchronization commit or
// roll back as one unit.
type orderService struct {
	orderRepo    repository.OrderRepository
	discountRepo repository.DiscountRepository
	sync         *ItemSynchronizer
	publisher    notify.Publisher // nil when no broker is configured
	logger       zerolog.Logger
}

// NewOrderService creates a new order service. publisher may be nil.
func NewOrderService(
	orderRepo repository.OrderRepository,
	discountRepo repository.DiscountRepository,
	sync *ItemSynchronizer,
	publisher notify.Publisher,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:    orderRepo,
		discountRepo: discountRepo,
		sync:         sync,
		publisher:    publisher,
		logger:       logger.With().Str("service", "order").Logger(),
	}
}

// Create persists a new order owned by userID, together with its items
// when any are supplied. Malformed items reject the whole call before the
// order is written; an empty item set still creates the order.
func (s *orderService) Create(ctx context.Context, userID uuid.UUID, items []model.ItemInput) (*model.OrderDetail, error) {
	if err := validateItems(items); err != nil {
		return nil, err
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, model.ErrCreateOrder
	}

	// Ensure nothing persists on any failure along the path.
	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	now := time.Now()
	order := &model.Order{
		ID:        uuid.New(),
		UserID:    userID,
		Status:    model.StatusOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to create order")
		return nil, model.ErrCreateOrder
	}

	if len(items) > 0 {
		if err := s.sync.ReplaceAll(ctx, tx, order, items); err != nil {
			s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to sync order items")
			return nil, model.ErrCreateOrder
		}
	}

	if err := tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return nil, model.ErrCreateOrder
	}
	committed = true

	detail, err := s.loadDetail(ctx, order)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("user_id", userID.String()).
		Int("item_count", len(detail.Items)).
		Msg("order created successfully")

	s.publishCreated(detail)

	return detail, nil
}

// Update merges the typed field changes and reconciles the order's items
// against the desired set inside one transaction. The order is loaded
// scoped to the requesting user first; a cross-user id fails with
// NotFound before any transaction opens.
func (s *orderService) Update(ctx context.Context, orderID, userID uuid.UUID, update model.OrderUpdate, items []model.ItemInput) (*model.OrderDetail, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	if items != nil {
		if err := validateItems(items); err != nil {
			return nil, err
		}
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, model.ErrUpdateOrder
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err := s.orderRepo.UpdateOrder(ctx, tx, order.ID, update); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to update order fields")
		return nil, model.ErrUpdateOrder
	}

	// A nil desired set means the request did not touch items.
	if items != nil {
		if err := s.sync.Reconcile(ctx, tx, order, items); err != nil {
			s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to reconcile order items")
			return nil, model.ErrUpdateOrder
		}
	}

	if err := tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return nil, model.ErrUpdateOrder
	}
	committed = true

	// Re-read after commit so the detail reflects the merged fields.
	order, err = s.orderRepo.GetByID(ctx, orderID, userID)
	if err != nil || order == nil {
		return nil, fmt.Errorf("failed to reload order: %w", err)
	}

	detail, err := s.loadDetail(ctx, order)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Msg("order updated successfully")

	return detail, nil
}

// Get retrieves one order scoped to its owning user.
func (s *orderService) Get(ctx context.Context, orderID, userID uuid.UUID) (*model.OrderDetail, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	return s.loadDetail(ctx, order)
}

// List retrieves the user's orders, newest first.
func (s *orderService) List(ctx context.Context, userID uuid.UUID, filter model.ListFilter) ([]model.OrderDetail, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	orders, err := s.orderRepo.List(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	details := make([]model.OrderDetail, 0, len(orders))
	for i := range orders {
		detail, err := s.loadDetail(ctx, &orders[i])
		if err != nil {
			return nil, err
		}
		details = append(details, *detail)
	}

	return details, nil
}

// loadDetail assembles an order with its items, discounts, and the
// summary derived from them.
func (s *orderService) loadDetail(ctx context.Context, order *model.Order) (*model.OrderDetail, error) {
	items, err := s.orderRepo.GetItems(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}

	discounts, err := s.discountRepo.ListByOrder(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order discounts: %w", err)
	}

	return &model.OrderDetail{
		Order:     *order,
		Items:     items,
		Discounts: discounts,
		Summary:   model.Summarize(items, discounts),
	}, nil
}

// publishCreated emits the new-order event when a publisher is wired.
// Publish failures are logged and swallowed: the order is already
// committed and the channel is best-effort.
func (s *orderService) publishCreated(detail *model.OrderDetail) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(notify.EventOrderCreated, detail.ID.String(), detail); err != nil {
		s.logger.Warn().
			Err(err).
			Str("order_id", detail.ID.String()).
			Msg("failed to publish order created event")
	}
}

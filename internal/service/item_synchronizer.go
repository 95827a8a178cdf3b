package service

import (
	"context"
	"fmt"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// ItemSynchronizer reconciles an order's persisted line items against a
// client-submitted desired set. All writes run inside the caller's
// transaction; the synchronizer never commits or rolls back itself.
type ItemSynchronizer struct {
	orderRepo repository.OrderRepository
	logger    zerolog.Logger
}

// NewItemSynchronizer creates a new item synchronizer.
func NewItemSynchronizer(orderRepo repository.OrderRepository, logger zerolog.Logger) *ItemSynchronizer {
	return &ItemSynchronizer{
		orderRepo: orderRepo,
		logger:    logger.With().Str("service", "item-sync").Logger(),
	}
}

// validateItems rejects malformed desired entries before any write.
func validateItems(items []model.ItemInput) error {
	for i, item := range items {
		if item.ProductID == "" || item.Quantity <= 0 {
			return fmt.Errorf("%w (entry %d)", model.ErrInvalidItems, i)
		}
	}
	return nil
}

// ReplaceAll deletes any existing items for the order and bulk-inserts the
// desired items. Used on the creation path only. An empty desired set is
// an explicit no-op; malformed entries fail the call with
// model.ErrInvalidItems before anything is written.
func (s *ItemSynchronizer) ReplaceAll(ctx context.Context, tx pgx.Tx, order *model.Order, items []model.ItemInput) error {
	if len(items) == 0 {
		return nil
	}
	if err := validateItems(items); err != nil {
		return err
	}

	if err := s.orderRepo.DeleteItems(ctx, tx, order.ID); err != nil {
		return fmt.Errorf("failed to clear order items: %w", err)
	}

	rows := make([]model.OrderItem, len(items))
	for i, item := range items {
		rows[i] = model.OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		}
	}

	if err := s.orderRepo.CreateItems(ctx, tx, rows); err != nil {
		return fmt.Errorf("failed to insert order items: %w", err)
	}

	s.logger.Debug().
		Str("order_id", order.ID.String()).
		Int("count", len(rows)).
		Msg("order items replaced")

	return nil
}

// Reconcile synchronizes the order's items with the desired set:
// items absent from the desired set are deleted, retained items have
// their mutable fields overwritten. Desired entries that carry no
// existing identity are dropped, not inserted; adding items after
// creation is not part of the update path.
func (s *ItemSynchronizer) Reconcile(ctx context.Context, tx pgx.Tx, order *model.Order, items []model.ItemInput) error {
	if err := validateItems(items); err != nil {
		return err
	}

	keep := make([]uuid.UUID, 0, len(items))
	desired := make(map[uuid.UUID]model.ItemInput, len(items))
	dropped := 0
	for _, item := range items {
		if item.ID == uuid.Nil {
			dropped++
			continue
		}
		keep = append(keep, item.ID)
		desired[item.ID] = item
	}
	if dropped > 0 {
		s.logger.Warn().
			Str("order_id", order.ID.String()).
			Int("dropped", dropped).
			Msg("ignoring desired items without an existing identity")
	}

	current, err := s.orderRepo.ItemsByIDs(ctx, tx, order.ID, keep)
	if err != nil {
		return fmt.Errorf("failed to load retained items: %w", err)
	}

	// Remove the items the user no longer wants.
	if err := s.orderRepo.DeleteItemsNotIn(ctx, tx, order.ID, keep); err != nil {
		return fmt.Errorf("failed to delete removed items: %w", err)
	}

	// Overwrite the retained items with the submitted fields.
	for _, item := range current {
		d, ok := desired[item.ID]
		if !ok {
			continue
		}
		item.ProductID = d.ProductID
		item.Quantity = d.Quantity
		item.UnitPrice = d.UnitPrice

		if err := s.orderRepo.UpdateItem(ctx, tx, &item); err != nil {
			return fmt.Errorf("failed to update item %s: %w", item.ID, err)
		}
	}

	s.logger.Debug().
		Str("order_id", order.ID.String()).
		Int("retained", len(current)).
		Msg("order items reconciled")

	return nil
}

package service

import (
	"context"
	"testing"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestItemSynchronizer_ReplaceAll_EmptySetIsNoOp(t *testing.T) {
	ctx := context.Background()
	order := &model.Order{ID: uuid.New()}

	mockOrderRepo := new(MockOrderRepository)
	mockTx := new(MockTx)

	sync := NewItemSynchronizer(mockOrderRepo, zerolog.Nop())

	err := sync.ReplaceAll(ctx, mockTx, order, nil)

	require.NoError(t, err)
	mockOrderRepo.AssertNotCalled(t, "DeleteItems")
	mockOrderRepo.AssertNotCalled(t, "CreateItems")
}

func TestItemSynchronizer_ReplaceAll_AssignsIdentities(t *testing.T) {
	ctx := context.Background()
	order := &model.Order{ID: uuid.New()}

	items := []model.ItemInput{
		{ProductID: "P001", Quantity: 2, UnitPrice: decimal.NewFromFloat(10.00)},
		{ProductID: "P002", Quantity: 1, UnitPrice: decimal.NewFromFloat(20.00)},
	}

	mockOrderRepo := new(MockOrderRepository)
	mockTx := new(MockTx)

	sync := NewItemSynchronizer(mockOrderRepo, zerolog.Nop())

	var inserted []model.OrderItem
	mockOrderRepo.On("DeleteItems", ctx, mockTx, order.ID).Return(nil)
	mockOrderRepo.On("CreateItems", ctx, mockTx, mock.AnythingOfType("[]model.OrderItem")).
		Run(func(args mock.Arguments) {
			inserted = args.Get(2).([]model.OrderItem)
		}).Return(nil)

	err := sync.ReplaceAll(ctx, mockTx, order, items)

	require.NoError(t, err)
	require.Len(t, inserted, 2)
	for _, row := range inserted {
		assert.NotEqual(t, uuid.Nil, row.ID)
		assert.Equal(t, order.ID, row.OrderID)
	}
	mockOrderRepo.AssertExpectations(t)
}

func TestItemSynchronizer_Reconcile_DropsUnidentifiedEntries(t *testing.T) {
	ctx := context.Background()
	order := &model.Order{ID: uuid.New()}
	keptID := uuid.New()

	// One retained entry with an identity, one without. The latter is
	// ignored: the update path never inserts new items.
	items := []model.ItemInput{
		{ID: keptID, ProductID: "P001", Quantity: 4, UnitPrice: decimal.NewFromFloat(10.00)},
		{ProductID: "P003", Quantity: 1, UnitPrice: decimal.NewFromFloat(7.50)},
	}

	existing := model.OrderItem{
		ID:        keptID,
		OrderID:   order.ID,
		ProductID: "P001",
		Quantity:  1,
		UnitPrice: decimal.NewFromFloat(10.00),
	}

	mockOrderRepo := new(MockOrderRepository)
	mockTx := new(MockTx)

	sync := NewItemSynchronizer(mockOrderRepo, zerolog.Nop())

	mockOrderRepo.On("ItemsByIDs", ctx, mockTx, order.ID, []uuid.UUID{keptID}).
		Return([]model.OrderItem{existing}, nil)
	mockOrderRepo.On("DeleteItemsNotIn", ctx, mockTx, order.ID, []uuid.UUID{keptID}).Return(nil)
	mockOrderRepo.On("UpdateItem", ctx, mockTx, mock.MatchedBy(func(item *model.OrderItem) bool {
		return item.ID == keptID && item.Quantity == 4
	})).Return(nil)

	err := sync.Reconcile(ctx, mockTx, order, items)

	require.NoError(t, err)
	mockOrderRepo.AssertNotCalled(t, "CreateItems")
	mockOrderRepo.AssertExpectations(t)
}

func TestItemSynchronizer_Reconcile_EmptySetDeletesEverything(t *testing.T) {
	ctx := context.Background()
	order := &model.Order{ID: uuid.New()}

	mockOrderRepo := new(MockOrderRepository)
	mockTx := new(MockTx)

	sync := NewItemSynchronizer(mockOrderRepo, zerolog.Nop())

	mockOrderRepo.On("ItemsByIDs", ctx, mockTx, order.ID, []uuid.UUID{}).
		Return([]model.OrderItem{}, nil)
	mockOrderRepo.On("DeleteItemsNotIn", ctx, mockTx, order.ID, []uuid.UUID{}).Return(nil)

	err := sync.Reconcile(ctx, mockTx, order, []model.ItemInput{})

	require.NoError(t, err)
	mockOrderRepo.AssertNotCalled(t, "UpdateItem")
	mockOrderRepo.AssertExpectations(t)
}

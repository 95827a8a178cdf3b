// Command seed-db populates the database with sample coupons and orders
// for local development.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/model"
	"storefront/internal/repository"
	"storefront/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("seeding database")

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	orderRepo := repository.NewOrderRepository(pool, logger)
	couponRepo := repository.NewCouponRepository(pool, logger)
	discountRepo := repository.NewDiscountRepository(pool, logger)
	itemSync := service.NewItemSynchronizer(orderRepo, logger)
	orderService := service.NewOrderService(orderRepo, discountRepo, itemSync, nil, logger)

	demoUser := uuid.MustParse("7a9e1c1e-3f14-4b92-8c51-0f2d6a9b4e01")
	demoClient := uuid.MustParse("c4b8d0f2-6a1e-4d3b-9e72-5b8c1f0a2d43")

	// Starts in the future so it is treated as currently active.
	openStart := time.Now().Add(30 * 24 * time.Hour)

	coupons := []struct {
		coupon   model.Coupon
		products []string
		clients  []uuid.UUID
	}{
		{
			coupon: model.Coupon{
				Code:         "WELCOME10",
				DiscountType: model.DiscountPercent,
				Value:        decimal.NewFromInt(10),
				ValidFrom:    openStart,
				Recursive:    false,
			},
		},
		{
			coupon: model.Coupon{
				Code:         "STACK5",
				DiscountType: model.DiscountFixed,
				Value:        decimal.NewFromInt(5),
				ValidFrom:    openStart,
				Recursive:    true,
			},
		},
		{
			coupon: model.Coupon{
				Code:         "COFFEE20",
				DiscountType: model.DiscountPercent,
				Value:        decimal.NewFromInt(20),
				ValidFrom:    openStart,
				Recursive:    false,
			},
			products: []string{"coffee-beans-1kg", "coffee-grinder"},
		},
		{
			coupon: model.Coupon{
				Code:         "VIP15",
				DiscountType: model.DiscountPercent,
				Value:        decimal.NewFromInt(15),
				ValidFrom:    openStart,
				Recursive:    false,
			},
			clients: []uuid.UUID{demoClient},
		},
	}

	for _, c := range coupons {
		coupon := c.coupon
		if err := couponRepo.Upsert(ctx, &coupon, c.products, c.clients); err != nil {
			return fmt.Errorf("failed to seed coupon %s: %w", coupon.Code, err)
		}
		logger.Info().Str("code", coupon.Code).Msg("seeded coupon")
	}

	orders := [][]model.ItemInput{
		{
			{ProductID: "coffee-beans-1kg", Quantity: 2, UnitPrice: decimal.NewFromFloat(18.50)},
			{ProductID: "coffee-grinder", Quantity: 1, UnitPrice: decimal.NewFromFloat(64.00)},
		},
		{
			{ProductID: "espresso-cups-set", Quantity: 1, UnitPrice: decimal.NewFromFloat(24.90)},
		},
	}

	for _, items := range orders {
		detail, err := orderService.Create(ctx, demoUser, items)
		if err != nil {
			return fmt.Errorf("failed to seed order: %w", err)
		}
		logger.Info().
			Str("order_id", detail.Order.ID.String()).
			Int("items", len(detail.Items)).
			Msg("seeded order")
	}

	logger.Info().Msg("seeding completed")
	return nil
}

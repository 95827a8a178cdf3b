// Command coupon-import loads a coupon catalogue (CSV, optionally
// gzip-compressed) from a local file or S3 and upserts it into the
// database. Existing coupons are matched by code and replaced together
// with their scope sets.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"storefront/internal/config"
	"storefront/internal/couponfile"
	"storefront/internal/database"
	"storefront/internal/repository"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		source = flag.String("source", "file", "catalogue source: file or s3")
		path   = flag.String("path", "", "file path, or object key when source is s3")
	)
	flag.Parse()

	if *path == "" {
		return fmt.Errorf("-path is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)
	logger.Info().
		Str("source", *source).
		Str("path", *path).
		Msg("starting coupon import")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	var loader couponfile.Loader
	switch *source {
	case "file":
		loader = couponfile.NewFileLoader(logger)
	case "s3":
		if cfg.S3.Bucket == "" {
			return fmt.Errorf("S3_BUCKET must be set when source is s3")
		}
		loader, err = couponfile.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 loader: %w", err)
		}
	default:
		return fmt.Errorf("unknown source %q (want file or s3)", *source)
	}

	records, err := loader.Load(ctx, *path)
	if err != nil {
		return fmt.Errorf("failed to load catalogue: %w", err)
	}

	couponRepo := repository.NewCouponRepository(pool, logger)

	imported := 0
	for _, rec := range records {
		coupon := rec.Coupon
		if err := couponRepo.Upsert(ctx, &coupon, rec.Products, rec.Clients); err != nil {
			logger.Error().
				Err(err).
				Str("code", coupon.Code).
				Msg("failed to upsert coupon")
			continue
		}
		imported++
	}

	logger.Info().
		Int("imported", imported).
		Int("total", len(records)).
		Msg("coupon import completed")

	if imported < len(records) {
		return fmt.Errorf("%d of %d coupons failed to import", len(records)-imported, len(records))
	}
	return nil
}

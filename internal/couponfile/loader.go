package couponfile

import (
	"compress/gzip"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// fileLoader implements Loader for catalogue files on the local file system.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new local file-based catalogue loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "file-coupon-loader").Logger(),
	}
}

// Load reads a catalogue file from disk, transparently decompressing
// gzipped files.
func (l *fileLoader) Load(ctx context.Context, path string) ([]Record, error) {
	l.logger.Info().Str("path", path).Msg("loading coupon catalogue from file")

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalogue file: %w", err)
	}
	defer f.Close()

	var records []Record
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer gz.Close()
		records, err = Parse(gz)
		if err != nil {
			return nil, fmt.Errorf("failed to parse catalogue %s: %w", path, err)
		}
	} else {
		records, err = Parse(f)
		if err != nil {
			return nil, fmt.Errorf("failed to parse catalogue %s: %w", path, err)
		}
	}

	l.logger.Info().
		Str("path", path).
		Int("coupons", len(records)).
		Msg("coupon catalogue loaded")

	return records, nil
}

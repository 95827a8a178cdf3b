// Package couponfile reads coupon catalogue files for import into the
// database. A catalogue is a CSV file, optionally gzipped, with one coupon
// per row:
//
//	code,discount_type,value,valid_from,valid_until,recursive,product_ids,client_ids
//
// valid_from and valid_until are RFC 3339 timestamps (valid_until may be
// empty); product_ids and client_ids are semicolon-separated scope sets,
// empty meaning unrestricted on that axis.
package couponfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Record is one parsed catalogue row: a coupon plus its scope sets.
type Record struct {
	Coupon   model.Coupon
	Products []string
	Clients  []uuid.UUID
}

// Loader reads a coupon catalogue from some source.
type Loader interface {
	// Load reads and parses the catalogue at the given path or key.
	Load(ctx context.Context, path string) ([]Record, error)
}

// Parse reads catalogue rows from a CSV stream.
func Parse(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 8
	reader.TrimLeadingSpace = true

	var records []Record
	line := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read catalogue row: %w", err)
		}
		line++

		// Skip a header row when present.
		if line == 1 && strings.EqualFold(row[0], "code") {
			continue
		}

		record, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		records = append(records, record)
	}

	return records, nil
}

func parseRow(row []string) (Record, error) {
	code := strings.ToUpper(strings.TrimSpace(row[0]))
	if code == "" {
		return Record{}, fmt.Errorf("coupon code is required")
	}

	discountType := strings.TrimSpace(row[1])
	if discountType != model.DiscountPercent && discountType != model.DiscountFixed {
		return Record{}, fmt.Errorf("invalid discount type %q", discountType)
	}

	value, err := decimal.NewFromString(strings.TrimSpace(row[2]))
	if err != nil || value.IsNegative() {
		return Record{}, fmt.Errorf("invalid discount value %q", row[2])
	}

	validFrom, err := time.Parse(time.RFC3339, strings.TrimSpace(row[3]))
	if err != nil {
		return Record{}, fmt.Errorf("invalid valid_from %q", row[3])
	}

	var validUntil *time.Time
	if raw := strings.TrimSpace(row[4]); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return Record{}, fmt.Errorf("invalid valid_until %q", raw)
		}
		validUntil = &t
	}

	recursive := false
	if raw := strings.TrimSpace(row[5]); raw != "" {
		recursive, err = strconv.ParseBool(raw)
		if err != nil {
			return Record{}, fmt.Errorf("invalid recursive flag %q", raw)
		}
	}

	products := splitSet(row[6])

	var clients []uuid.UUID
	for _, raw := range splitSet(row[7]) {
		id, err := uuid.Parse(raw)
		if err != nil {
			return Record{}, fmt.Errorf("invalid client id %q", raw)
		}
		clients = append(clients, id)
	}

	return Record{
		Coupon: model.Coupon{
			ID:           uuid.New(),
			Code:         code,
			DiscountType: discountType,
			Value:        value,
			ValidFrom:    validFrom,
			ValidUntil:   validUntil,
			Recursive:    recursive,
			CreatedAt:    time.Now(),
		},
		Products: products,
		Clients:  clients,
	}, nil
}

func splitSet(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ";") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

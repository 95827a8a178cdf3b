package couponfile

import (
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCatalogue = `code,discount_type,value,valid_from,valid_until,recursive,product_ids,client_ids
welcome10,percent,10,2026-06-01T00:00:00Z,,false,,
STACK5,fixed,5.50,2026-06-01T00:00:00Z,2026-12-31T00:00:00Z,true,,
COFFEE20,percent,20,2026-06-01T00:00:00Z,,false,coffee-beans-1kg;coffee-grinder,
VIP15,percent,15,2026-06-01T00:00:00Z,,false,,0f8fad5b-d9cb-469f-a165-70867728950e
`

func TestParse(t *testing.T) {
	records, err := Parse(strings.NewReader(sampleCatalogue))

	require.NoError(t, err)
	require.Len(t, records, 4)

	// Codes are upper-cased on the way in.
	assert.Equal(t, "WELCOME10", records[0].Coupon.Code)
	assert.Equal(t, model.DiscountPercent, records[0].Coupon.DiscountType)
	assert.True(t, records[0].Coupon.Value.Equal(decimal.NewFromInt(10)))
	assert.Nil(t, records[0].Coupon.ValidUntil)
	assert.False(t, records[0].Coupon.Recursive)
	assert.Empty(t, records[0].Products)
	assert.Empty(t, records[0].Clients)

	assert.Equal(t, "STACK5", records[1].Coupon.Code)
	assert.Equal(t, model.DiscountFixed, records[1].Coupon.DiscountType)
	assert.True(t, records[1].Coupon.Value.Equal(decimal.NewFromFloat(5.50)))
	require.NotNil(t, records[1].Coupon.ValidUntil)
	assert.Equal(t, time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC), records[1].Coupon.ValidUntil.UTC())
	assert.True(t, records[1].Coupon.Recursive)

	assert.Equal(t, []string{"coffee-beans-1kg", "coffee-grinder"}, records[2].Products)

	require.Len(t, records[3].Clients, 1)
	assert.Equal(t, uuid.MustParse("0f8fad5b-d9cb-469f-a165-70867728950e"), records[3].Clients[0])
}

func TestParse_WithoutHeader(t *testing.T) {
	records, err := Parse(strings.NewReader("SAVE5,fixed,5,2026-06-01T00:00:00Z,,false,,\n"))

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "SAVE5", records[0].Coupon.Code)
}

func TestParse_InvalidRows(t *testing.T) {
	tests := []struct {
		name string
		row  string
	}{
		{
			name: "Empty code",
			row:  ",percent,10,2026-06-01T00:00:00Z,,false,,",
		},
		{
			name: "Unknown discount type",
			row:  "SAVE,bogo,10,2026-06-01T00:00:00Z,,false,,",
		},
		{
			name: "Negative value",
			row:  "SAVE,percent,-10,2026-06-01T00:00:00Z,,false,,",
		},
		{
			name: "Malformed valid_from",
			row:  "SAVE,percent,10,yesterday,,false,,",
		},
		{
			name: "Malformed valid_until",
			row:  "SAVE,percent,10,2026-06-01T00:00:00Z,tomorrow,false,,",
		},
		{
			name: "Malformed recursive flag",
			row:  "SAVE,percent,10,2026-06-01T00:00:00Z,,maybe,,",
		},
		{
			name: "Malformed client id",
			row:  "SAVE,percent,10,2026-06-01T00:00:00Z,,false,,not-a-uuid",
		},
		{
			name: "Wrong column count",
			row:  "SAVE,percent,10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := Parse(strings.NewReader(tt.row + "\n"))

			require.Error(t, err)
			assert.Nil(t, records)
		})
	}
}

func TestFileLoader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "coupons.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCatalogue), 0o644))

	loader := NewFileLoader(zerolog.Nop())

	records, err := loader.Load(context.Background(), path)

	require.NoError(t, err)
	assert.Len(t, records, 4)
}

func TestFileLoader_Gzip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "coupons.csv.gz")

	f, err := os.Create(path)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte(sampleCatalogue))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	loader := NewFileLoader(zerolog.Nop())

	records, err := loader.Load(context.Background(), path)

	require.NoError(t, err)
	assert.Len(t, records, 4)
}

func TestFileLoader_MissingFile(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())

	records, err := loader.Load(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))

	require.Error(t, err)
	assert.Nil(t, records)
}

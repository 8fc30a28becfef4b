package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/your-org/footwear-storefront/internal/domain/product"
)

func intPtr(v int) *int { return &v }

func standardTiers() []product.PriceTier {
	return []product.PriceTier{
		{ID: 1, MinQuantity: 1, MaxQuantity: intPtr(9), UnitPrice: 10000},
		{ID: 2, MinQuantity: 10, MaxQuantity: intPtr(49), UnitPrice: 9000},
		{ID: 3, MinQuantity: 50, MaxQuantity: nil, UnitPrice: 8000},
	}
}

func TestResolveTierSelection(t *testing.T) {
	resolver := NewResolver()
	prod := &product.Product{Price: 12000, WholesalePrice: 9500}
	tiers := standardTiers()

	tests := []struct {
		name     string
		quantity int
		want     int64
		source   string
	}{
		{"first band", 5, 10000, "tier"},
		{"second band lower bound", 10, 9000, "tier"},
		{"second band upper bound", 49, 9000, "tier"},
		{"unbounded band", 100, 8000, "tier"},
		{"unbounded band lower bound", 50, 8000, "tier"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote := resolver.Resolve(prod, tiers, true, tt.quantity)
			assert.Equal(t, tt.want, quote.UnitPrice)
			assert.Equal(t, tt.source, quote.Source)
		})
	}
}

func TestResolveTierGapFallsBackToWholesale(t *testing.T) {
	resolver := NewResolver()
	prod := &product.Product{Price: 12000, WholesalePrice: 9500}

	// Coverage gap between 10 and 19.
	tiers := []product.PriceTier{
		{MinQuantity: 1, MaxQuantity: intPtr(9), UnitPrice: 10000},
		{MinQuantity: 20, MaxQuantity: nil, UnitPrice: 8000},
	}

	quote := resolver.Resolve(prod, tiers, true, 15)
	assert.Equal(t, int64(9500), quote.UnitPrice)
	assert.Equal(t, "wholesale", quote.Source)
}

func TestResolveTierGapWithoutWholesalePriceFallsBackToBase(t *testing.T) {
	resolver := NewResolver()
	prod := &product.Product{Price: 12000}

	tiers := []product.PriceTier{
		{MinQuantity: 20, MaxQuantity: nil, UnitPrice: 8000},
	}

	quote := resolver.Resolve(prod, tiers, true, 5)
	assert.Equal(t, int64(12000), quote.UnitPrice)
	assert.Equal(t, "base", quote.Source)
}

func TestResolveWholesaleFlatPriceWithoutTiers(t *testing.T) {
	resolver := NewResolver()
	prod := &product.Product{Price: 12000, SalePrice: 11000, WholesalePrice: 9500}

	quote := resolver.Resolve(prod, nil, true, 3)
	assert.Equal(t, int64(9500), quote.UnitPrice)
	assert.Equal(t, "wholesale", quote.Source)
}

func TestResolveRetailSalePrice(t *testing.T) {
	resolver := NewResolver()
	prod := &product.Product{Price: 12000, SalePrice: 11000, WholesalePrice: 9500}

	// Retail shoppers never see wholesale pricing, even with tiers present.
	quote := resolver.Resolve(prod, standardTiers(), false, 100)
	assert.Equal(t, int64(11000), quote.UnitPrice)
	assert.Equal(t, "sale", quote.Source)
}

func TestResolveRetailBasePrice(t *testing.T) {
	resolver := NewResolver()

	quote := resolver.Resolve(&product.Product{Price: 12000}, nil, false, 1)
	assert.Equal(t, int64(12000), quote.UnitPrice)
	assert.Equal(t, "base", quote.Source)
}

func TestResolveIgnoresSalePriceNotBelowBase(t *testing.T) {
	resolver := NewResolver()

	// A sale price at or above the base price is not a sale.
	quote := resolver.Resolve(&product.Product{Price: 12000, SalePrice: 12000}, nil, false, 1)
	assert.Equal(t, int64(12000), quote.UnitPrice)
	assert.Equal(t, "base", quote.Source)
}

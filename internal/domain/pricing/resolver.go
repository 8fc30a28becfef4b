// internal/domain/pricing/resolver.go
package pricing

import (
	"github.com/your-org/footwear-storefront/internal/domain/product"
)

// Resolver selects the unit price for a cart or order line. Priority:
// tier table for verified wholesale buyers, then the flat wholesale
// price, then the sale price for retail shoppers, then the base price.
type Resolver struct{}

// NewResolver creates a pricing resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// Quote describes which price was applied to a line.
type Quote struct {
	UnitPrice int64  `json:"unit_price"`
	Source    string `json:"source"` // tier, wholesale, sale, base
	TierID    uint   `json:"tier_id,omitempty"`
}

// Resolve computes the unit price for the given quantity. Tiers must be
// ordered by min_quantity; the first band containing the quantity wins.
// A quantity outside every band falls back to the flat wholesale price
// (or the base price) instead of failing.
func (r *Resolver) Resolve(prod *product.Product, tiers []product.PriceTier, wholesaleVerified bool, quantity int) Quote {
	if wholesaleVerified {
		if tier := matchTier(tiers, quantity); tier != nil {
			return Quote{UnitPrice: tier.UnitPrice, Source: "tier", TierID: tier.ID}
		}
		if prod.WholesalePrice > 0 {
			return Quote{UnitPrice: prod.WholesalePrice, Source: "wholesale"}
		}
		return Quote{UnitPrice: prod.Price, Source: "base"}
	}

	if prod.IsOnSale() {
		return Quote{UnitPrice: prod.SalePrice, Source: "sale"}
	}
	return Quote{UnitPrice: prod.Price, Source: "base"}
}

// UnitPrice is a convenience wrapper returning just the resolved price.
func (r *Resolver) UnitPrice(prod *product.Product, tiers []product.PriceTier, wholesaleVerified bool, quantity int) int64 {
	return r.Resolve(prod, tiers, wholesaleVerified, quantity).UnitPrice
}

// matchTier returns the first band whose [min, max] range contains the
// quantity, nil when no band matches. A nil MaxQuantity is unbounded.
func matchTier(tiers []product.PriceTier, quantity int) *product.PriceTier {
	for i := range tiers {
		t := &tiers[i]
		if quantity < t.MinQuantity {
			continue
		}
		if t.MaxQuantity != nil && quantity > *t.MaxQuantity {
			continue
		}
		return t
	}
	return nil
}

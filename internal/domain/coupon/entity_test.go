package coupon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func timePtr(t time.Time) *time.Time { return &t }

func TestCheckValidity(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		coupon   Coupon
		subtotal int64
		wantErr  string
	}{
		{
			name:     "valid coupon",
			coupon:   Coupon{IsActive: true, MinOrder: 5000},
			subtotal: 10000,
		},
		{
			name:     "inactive",
			coupon:   Coupon{IsActive: false},
			subtotal: 10000,
			wantErr:  "invalid coupon code",
		},
		{
			name: "not yet valid",
			coupon: Coupon{
				IsActive:  true,
				ValidFrom: timePtr(now.Add(time.Hour)),
			},
			subtotal: 10000,
			wantErr:  "coupon is not yet valid",
		},
		{
			name: "expired",
			coupon: Coupon{
				IsActive:   true,
				ValidUntil: timePtr(now.Add(-time.Hour)),
			},
			subtotal: 10000,
			wantErr:  "coupon has expired",
		},
		{
			name:     "minimum order not met",
			coupon:   Coupon{IsActive: true, MinOrder: 20000},
			subtotal: 10000,
			wantErr:  "minimum order amount of 200.00 required",
		},
		{
			name:     "usage limit reached",
			coupon:   Coupon{IsActive: true, UsageLimit: 3, UsageCount: 3},
			subtotal: 10000,
			wantErr:  "coupon usage limit reached",
		},
		{
			name:     "usage below limit",
			coupon:   Coupon{IsActive: true, UsageLimit: 3, UsageCount: 2},
			subtotal: 10000,
		},
		{
			name: "inside validity window",
			coupon: Coupon{
				IsActive:   true,
				ValidFrom:  timePtr(now.Add(-time.Hour)),
				ValidUntil: timePtr(now.Add(time.Hour)),
			},
			subtotal: 10000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.coupon.CheckValidity(now, tt.subtotal)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, err.Error())
			}
		})
	}
}

func TestComputeDiscountPercentageCappedAtMax(t *testing.T) {
	c := Coupon{
		DiscountType:  DiscountTypePercentage,
		DiscountValue: 50,
		MaxDiscount:   20000,
	}

	// 50% of 1000000 would be 500000; the cap wins.
	assert.Equal(t, int64(20000), c.ComputeDiscount(1000000))

	// Below the cap the raw percentage applies.
	assert.Equal(t, int64(5000), c.ComputeDiscount(10000))
}

func TestComputeDiscountPercentageUncapped(t *testing.T) {
	c := Coupon{DiscountType: DiscountTypePercentage, DiscountValue: 10}
	assert.Equal(t, int64(1000), c.ComputeDiscount(10000))
}

func TestComputeDiscountFlatClampedToSubtotal(t *testing.T) {
	c := Coupon{DiscountType: DiscountTypeFixedAmount, DiscountValue: 50000}

	assert.Equal(t, int64(50000), c.ComputeDiscount(80000))
	assert.Equal(t, int64(30000), c.ComputeDiscount(30000), "discount never exceeds subtotal")
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "SAVE10", NormalizeCode("  save10 "))
	assert.Equal(t, "SAVE10", NormalizeCode("Save10"))
	assert.Equal(t, "", NormalizeCode("   "))
}

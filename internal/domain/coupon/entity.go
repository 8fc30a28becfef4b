// internal/domain/coupon/entity.go
package coupon

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// DiscountType represents how a coupon discounts the subtotal
type DiscountType string

const (
	DiscountTypePercentage  DiscountType = "percentage"
	DiscountTypeFixedAmount DiscountType = "fixed_amount"
)

// Coupon represents a promotional code. Codes are stored upper-case and
// matched case-insensitively; validity is re-checked on every apply.
type Coupon struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Code          string         `gorm:"uniqueIndex;not null;size:50" json:"code"`
	Description   string         `gorm:"size:255" json:"description"`
	DiscountType  DiscountType   `gorm:"not null;size:20" json:"discount_type"`
	DiscountValue int64          `gorm:"not null" json:"discount_value"` // percent (0-100) or cents
	MinOrder      int64          `gorm:"default:0" json:"min_order"`     // cents
	MaxDiscount   int64          `gorm:"default:0" json:"max_discount"`  // cents, 0 = uncapped
	ValidFrom     *time.Time     `json:"valid_from"`
	ValidUntil    *time.Time     `json:"valid_until"`
	UsageLimit    int            `gorm:"default:0" json:"usage_limit"` // 0 = unlimited
	UsageCount    int            `gorm:"default:0" json:"usage_count"`
	IsActive      bool           `gorm:"default:true" json:"is_active"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (Coupon) TableName() string {
	return "coupons"
}

// NormalizeCode upper-cases and trims a user-supplied coupon code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// BeforeCreate normalizes the stored code
func (c *Coupon) BeforeCreate(tx *gorm.DB) error {
	c.Code = NormalizeCode(c.Code)
	return nil
}

// CheckValidity verifies the coupon against the clock, the order
// subtotal and its usage counters. Returns nil when the coupon can be
// applied; the error message is the user-facing failure reason.
func (c *Coupon) CheckValidity(now time.Time, subtotal int64) error {
	if !c.IsActive {
		return fmt.Errorf("invalid coupon code")
	}
	if c.ValidFrom != nil && now.Before(*c.ValidFrom) {
		return fmt.Errorf("coupon is not yet valid")
	}
	if c.ValidUntil != nil && now.After(*c.ValidUntil) {
		return fmt.Errorf("coupon has expired")
	}
	if subtotal < c.MinOrder {
		return fmt.Errorf("minimum order amount of %.2f required", float64(c.MinOrder)/100)
	}
	if c.UsageLimit > 0 && c.UsageCount >= c.UsageLimit {
		return fmt.Errorf("coupon usage limit reached")
	}
	return nil
}

// ComputeDiscount calculates the discount for a subtotal. Percentage
// discounts are capped at MaxDiscount; any discount is clamped so it
// never exceeds the subtotal itself.
func (c *Coupon) ComputeDiscount(subtotal int64) int64 {
	var discount int64
	switch c.DiscountType {
	case DiscountTypePercentage:
		discount = subtotal * c.DiscountValue / 100
		if c.MaxDiscount > 0 && discount > c.MaxDiscount {
			discount = c.MaxDiscount
		}
	case DiscountTypeFixedAmount:
		discount = c.DiscountValue
	}
	if discount > subtotal {
		discount = subtotal
	}
	if discount < 0 {
		discount = 0
	}
	return discount
}

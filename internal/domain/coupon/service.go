// internal/domain/coupon/service.go
package coupon

import (
	"fmt"
	"time"

	"github.com/your-org/footwear-storefront/internal/config"
	"gorm.io/gorm"
)

// Service handles coupon business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new coupon service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// Application represents the result of validating a code against a subtotal
type Application struct {
	Code           string       `json:"code"`
	DiscountType   DiscountType `json:"discount_type"`
	DiscountValue  int64        `json:"discount_value"`
	DiscountAmount int64        `json:"discount_amount"`
	MinOrder       int64        `json:"min_order"`
	MaxDiscount    int64        `json:"max_discount"`
	AppliedAt      time.Time    `json:"applied_at"`
}

// CreateCouponRequest represents admin coupon creation data
type CreateCouponRequest struct {
	Code          string       `json:"code" binding:"required"`
	Description   string       `json:"description"`
	DiscountType  DiscountType `json:"discount_type" binding:"required,oneof=percentage fixed_amount"`
	DiscountValue int64        `json:"discount_value" binding:"required,min=1"`
	MinOrder      int64        `json:"min_order"`
	MaxDiscount   int64        `json:"max_discount"`
	ValidFrom     *time.Time   `json:"valid_from"`
	ValidUntil    *time.Time   `json:"valid_until"`
	UsageLimit    int          `json:"usage_limit"`
	IsActive      bool         `json:"is_active"`
}

// Validate looks up a code and checks it against the subtotal. Every
// apply attempt hits the database; nothing is cached so activation,
// expiry and usage limits take effect immediately.
func (s *Service) Validate(code string, subtotal int64) (*Application, error) {
	normalized := NormalizeCode(code)
	if normalized == "" {
		return nil, fmt.Errorf("invalid coupon code")
	}

	var c Coupon
	err := s.db.Where("code = ?", normalized).First(&c).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("invalid coupon code")
		}
		return nil, fmt.Errorf("failed to look up coupon: %w", err)
	}

	if err := c.CheckValidity(time.Now().UTC(), subtotal); err != nil {
		return nil, err
	}

	return &Application{
		Code:           c.Code,
		DiscountType:   c.DiscountType,
		DiscountValue:  c.DiscountValue,
		DiscountAmount: c.ComputeDiscount(subtotal),
		MinOrder:       c.MinOrder,
		MaxDiscount:    c.MaxDiscount,
		AppliedAt:      time.Now().UTC(),
	}, nil
}

// RedeemTx increments the usage counter inside an order-placement
// transaction. The guarded UPDATE keeps concurrent placements from
// overshooting the limit.
func (s *Service) RedeemTx(tx *gorm.DB, code string) error {
	normalized := NormalizeCode(code)

	result := tx.Model(&Coupon{}).
		Where("code = ? AND is_active = ? AND (usage_limit = 0 OR usage_count < usage_limit)", normalized, true).
		Update("usage_count", gorm.Expr("usage_count + 1"))
	if result.Error != nil {
		return fmt.Errorf("failed to redeem coupon: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("coupon usage limit reached")
	}
	return nil
}

// CreateCoupon creates a coupon (admin)
func (s *Service) CreateCoupon(req *CreateCouponRequest) (*Coupon, error) {
	c := Coupon{
		Code:          NormalizeCode(req.Code),
		Description:   req.Description,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		MinOrder:      req.MinOrder,
		MaxDiscount:   req.MaxDiscount,
		ValidFrom:     req.ValidFrom,
		ValidUntil:    req.ValidUntil,
		UsageLimit:    req.UsageLimit,
		IsActive:      req.IsActive,
	}

	if err := s.db.Create(&c).Error; err != nil {
		return nil, fmt.Errorf("failed to create coupon: %w", err)
	}
	return &c, nil
}

// ListCoupons returns all coupons (admin)
func (s *Service) ListCoupons() ([]Coupon, error) {
	var coupons []Coupon
	if err := s.db.Order("created_at DESC").Find(&coupons).Error; err != nil {
		return nil, fmt.Errorf("failed to list coupons: %w", err)
	}
	return coupons, nil
}

// DeactivateCoupon disables a coupon without deleting its usage history (admin)
func (s *Service) DeactivateCoupon(id uint) error {
	result := s.db.Model(&Coupon{}).Where("id = ?", id).Update("is_active", false)
	if result.Error != nil {
		return fmt.Errorf("failed to deactivate coupon: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("coupon not found")
	}
	return nil
}

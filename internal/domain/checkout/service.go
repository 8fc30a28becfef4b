// internal/domain/checkout/service.go
package checkout

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/your-org/footwear-storefront/internal/config"
	"github.com/your-org/footwear-storefront/internal/domain/cart"
	"github.com/your-org/footwear-storefront/internal/domain/user"
	"gorm.io/gorm"
)

// Service handles checkout preparation: shipping options, order summary
// and pre-flight validation. Coupons are owned by the cart service, so
// the summary simply reflects whatever discount the cart already carries.
type Service struct {
	db          *gorm.DB
	config      *config.Config
	cartService *cart.Service
	addresses   *user.AddressService
	log         *logrus.Logger
}

// NewService creates a new checkout service
func NewService(db *gorm.DB, cfg *config.Config, cartService *cart.Service) *Service {
	return &Service{
		db:          db,
		config:      cfg,
		cartService: cartService,
		addresses:   user.NewAddressService(db, cfg),
		log:         logrus.StandardLogger(),
	}
}

// ShippingMethod represents an available shipping option
type ShippingMethod struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Price         int64  `json:"price"`
	EstimatedDays string `json:"estimated_days"`
}

// PaymentMethodInfo represents an available payment method
type PaymentMethodInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Enabled     bool   `json:"enabled"`
}

// CheckoutSummaryRequest selects the address and shipping method the
// summary should be priced against.
type CheckoutSummaryRequest struct {
	ShippingAddressID *uint  `json:"shipping_address_id"`
	ShippingMethod    string `json:"shipping_method" binding:"required"`
}

// CheckoutSummary is the priced view of the cart ready for order placement
type CheckoutSummary struct {
	Cart            *cart.CartResponse  `json:"cart"`
	ShippingAddress *user.Address       `json:"shipping_address,omitempty"`
	ShippingMethod  *ShippingMethod     `json:"shipping_method"`
	SubTotal        int64               `json:"sub_total"`
	DiscountAmount  int64               `json:"discount_amount"`
	ShippingCost    int64               `json:"shipping_cost"`
	TotalAmount     int64               `json:"total_amount"`
	Currency        string              `json:"currency"`
	PaymentMethods  []PaymentMethodInfo `json:"payment_methods"`
}

// ValidateCheckoutRequest carries the buyer's checkout selections
type ValidateCheckoutRequest struct {
	ShippingAddressID *uint  `json:"shipping_address_id"`
	ShippingMethod    string `json:"shipping_method" binding:"required"`
	PaymentMethod     string `json:"payment_method" binding:"required"`
}

// CheckoutValidation reports whether checkout can proceed
type CheckoutValidation struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// GetShippingMethods returns the shipping options priced for the given
// subtotal. Standard shipping is free above the configured threshold.
func (s *Service) GetShippingMethods(subtotal int64) []ShippingMethod {
	standard := int64(999)
	if subtotal >= s.config.Storefront.FreeShippingThreshold {
		standard = 0
	}

	return []ShippingMethod{
		{
			ID:            "standard",
			Name:          "Standard Shipping",
			Description:   "Delivered by ground carrier",
			Price:         standard,
			EstimatedDays: "5-7 business days",
		},
		{
			ID:            "express",
			Name:          "Express Shipping",
			Description:   "Priority handling and delivery",
			Price:         1999,
			EstimatedDays: "2-3 business days",
		},
		{
			ID:            "overnight",
			Name:          "Overnight Shipping",
			Description:   "Next business day delivery",
			Price:         2999,
			EstimatedDays: "1 business day",
		},
	}
}

// GetCheckoutSummary builds the priced order preview for the current cart
func (s *Service) GetCheckoutSummary(userID *uint, sessionID string, req *CheckoutSummaryRequest) (*CheckoutSummary, error) {
	cartResponse, err := s.cartService.GetCart(userID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	if len(cartResponse.Items) == 0 {
		return nil, fmt.Errorf("cart is empty")
	}

	method := s.findShippingMethod(req.ShippingMethod, cartResponse.Totals.SubTotal)
	if method == nil {
		return nil, fmt.Errorf("unknown shipping method: %s", req.ShippingMethod)
	}

	summary := &CheckoutSummary{
		Cart:           cartResponse,
		ShippingMethod: method,
		SubTotal:       cartResponse.Totals.SubTotal,
		DiscountAmount: cartResponse.Totals.DiscountAmount,
		ShippingCost:   method.Price,
		Currency:       s.config.Storefront.Currency,
		PaymentMethods: s.GetAvailablePaymentMethods(),
	}
	summary.TotalAmount = summary.SubTotal - summary.DiscountAmount + summary.ShippingCost
	if summary.TotalAmount < 0 {
		summary.TotalAmount = 0
	}

	if userID != nil && req.ShippingAddressID != nil {
		address, err := s.addresses.GetAddress(*userID, *req.ShippingAddressID)
		if err != nil {
			return nil, fmt.Errorf("shipping address not found: %w", err)
		}
		summary.ShippingAddress = address
	}

	return summary, nil
}

// ValidateCheckout runs the pre-flight checks for order placement:
// non-empty cart, stock availability per line, a known shipping method,
// an enabled payment method and, for signed-in buyers, address ownership.
func (s *Service) ValidateCheckout(userID *uint, sessionID string, req *ValidateCheckoutRequest) (*CheckoutValidation, error) {
	validation := &CheckoutValidation{Valid: true}

	cartResponse, err := s.cartService.GetCart(userID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	if len(cartResponse.Items) == 0 {
		validation.Valid = false
		validation.Errors = append(validation.Errors, "cart is empty")
		return validation, nil
	}

	for _, item := range cartResponse.Items {
		if item.Product == nil {
			validation.Valid = false
			validation.Errors = append(validation.Errors,
				fmt.Sprintf("product %d is no longer available", item.ProductID))
			continue
		}
		available := item.Product.AvailableQuantity(item.Size, item.Color)
		if available < item.Quantity {
			validation.Valid = false
			validation.Errors = append(validation.Errors,
				fmt.Sprintf("%s (size %s, %s): only %d in stock, %d requested",
					item.Product.Name, item.Size, item.Color, available, item.Quantity))
		} else if available <= item.Product.LowStockThreshold {
			validation.Warnings = append(validation.Warnings,
				fmt.Sprintf("%s (size %s, %s): low stock, order soon",
					item.Product.Name, item.Size, item.Color))
		}
	}

	if s.findShippingMethod(req.ShippingMethod, cartResponse.Totals.SubTotal) == nil {
		validation.Valid = false
		validation.Errors = append(validation.Errors,
			fmt.Sprintf("unknown shipping method: %s", req.ShippingMethod))
	}

	if !s.isPaymentMethodEnabled(req.PaymentMethod) {
		validation.Valid = false
		validation.Errors = append(validation.Errors,
			fmt.Sprintf("payment method not available: %s", req.PaymentMethod))
	}

	if userID != nil {
		if req.ShippingAddressID == nil {
			validation.Valid = false
			validation.Errors = append(validation.Errors, "shipping address is required")
		} else if _, err := s.addresses.GetAddress(*userID, *req.ShippingAddressID); err != nil {
			validation.Valid = false
			validation.Errors = append(validation.Errors, "shipping address not found")
		}
	}

	return validation, nil
}

// GetAvailablePaymentMethods lists payment methods; card payments require
// a configured gateway key.
func (s *Service) GetAvailablePaymentMethods() []PaymentMethodInfo {
	return []PaymentMethodInfo{
		{
			ID:          "card",
			Name:        "Credit / Debit Card",
			Description: "Pay securely with your card",
			Enabled:     s.config.External.Payment.GatewayKeyID != "",
		},
		{
			ID:          "wallet",
			Name:        "Wallet",
			Description: "Pay with your stored wallet balance",
			Enabled:     s.config.External.Payment.GatewayKeyID != "",
		},
		{
			ID:          "cod",
			Name:        "Cash on Delivery",
			Description: "Pay when your order arrives",
			Enabled:     true,
		},
	}
}

func (s *Service) findShippingMethod(id string, subtotal int64) *ShippingMethod {
	for _, method := range s.GetShippingMethods(subtotal) {
		if method.ID == id {
			return &method
		}
	}
	return nil
}

func (s *Service) isPaymentMethodEnabled(id string) bool {
	for _, method := range s.GetAvailablePaymentMethods() {
		if method.ID == id && method.Enabled {
			return true
		}
	}
	return false
}

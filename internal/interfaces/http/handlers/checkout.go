// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/your-org/footwear-storefront/internal/config"
	"github.com/your-org/footwear-storefront/internal/domain/cart"
	"github.com/your-org/footwear-storefront/internal/domain/checkout"
	"github.com/your-org/footwear-storefront/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// CheckoutHandler handles checkout preparation endpoints. Guests can
// preview and validate checkout; order placement decides whether an
// account is required.
type CheckoutHandler struct {
	checkoutService *checkout.Service
	config          *config.Config
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *CheckoutHandler {
	cartService := cart.NewService(db, redisClient, cfg)
	return &CheckoutHandler{
		checkoutService: checkout.NewService(db, cfg, cartService),
		config:          cfg,
	}
}

// GetShippingMethods handles GET /checkout/shipping-methods
func (h *CheckoutHandler) GetShippingMethods(c *gin.Context) {
	var subtotal int64
	if subtotalParam := c.Query("subtotal"); subtotalParam != "" {
		if v, err := strconv.ParseInt(subtotalParam, 10, 64); err == nil && v >= 0 {
			subtotal = v
		}
	}

	methods := h.checkoutService.GetShippingMethods(subtotal)

	c.JSON(http.StatusOK, gin.H{
		"message": "Shipping methods retrieved successfully",
		"data":    methods,
	})
}

// GetPaymentMethods handles GET /checkout/payment-methods
func (h *CheckoutHandler) GetPaymentMethods(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Payment methods retrieved successfully",
		"data":    h.checkoutService.GetAvailablePaymentMethods(),
	})
}

// GetCheckoutSummary handles GET /checkout/summary
func (h *CheckoutHandler) GetCheckoutSummary(c *gin.Context) {
	userID := middleware.GetOptionalUserID(c)
	sessionID := getOrCreateSessionID(c)

	req := checkout.CheckoutSummaryRequest{
		ShippingMethod: c.DefaultQuery("shipping_method", "standard"),
	}
	if addressIDParam := c.Query("address_id"); addressIDParam != "" {
		if id, err := strconv.ParseUint(addressIDParam, 10, 32); err == nil {
			addr := uint(id)
			req.ShippingAddressID = &addr
		}
	}

	summary, err := h.checkoutService.GetCheckoutSummary(userID, sessionID, &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Checkout summary retrieved successfully",
		"data":    summary,
	})
}

// ValidateCheckout handles POST /checkout/validate
func (h *CheckoutHandler) ValidateCheckout(c *gin.Context) {
	userID := middleware.GetOptionalUserID(c)
	sessionID := getOrCreateSessionID(c)

	var req checkout.ValidateCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	validation, err := h.checkoutService.ValidateCheckout(userID, sessionID, &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	if !validation.Valid {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "Checkout validation failed",
			"validation_errors": validation.Errors,
			"data":              validation,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Checkout validation successful",
		"data":    validation,
	})
}

// internal/interfaces/http/handlers/payment.go
package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/footwear-storefront/internal/config"
	"github.com/your-org/footwear-storefront/internal/domain/order"
	"github.com/your-org/footwear-storefront/internal/domain/payment"
	"github.com/your-org/footwear-storefront/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// PaymentHandler handles payment endpoints
type PaymentHandler struct {
	paymentService *payment.Service
	config         *config.Config
	db             *gorm.DB
	log            *logrus.Logger
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *PaymentHandler {
	return &PaymentHandler{
		paymentService: payment.NewService(db, cfg),
		config:         cfg,
		db:             db,
		log:            logrus.StandardLogger(),
	}
}

// InitiatePayment handles POST /payment/initiate
func (h *PaymentHandler) InitiatePayment(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	var req struct {
		OrderID uint `json:"order_id" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	// Verify order exists and belongs to user
	var orderRecord order.Order
	result := h.db.Where("id = ? AND user_id = ?", req.OrderID, userID).First(&orderRecord)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Order not found or access denied",
			})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to retrieve order",
			})
		}
		return
	}

	if orderRecord.TotalAmount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Order amount must be greater than 0",
		})
		return
	}

	paymentResponse, err := h.paymentService.InitiatePayment(req.OrderID)
	if err != nil {
		h.log.WithError(err).WithField("order_id", req.OrderID).Warn("Payment initiation failed")
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Payment initiated successfully",
		"data":    paymentResponse,
	})
}

// VerifyPayment handles POST /payment/verify
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	var req payment.PaymentVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	// Verify order belongs to user
	var orderRecord order.Order
	result := h.db.Where("id = ? AND user_id = ?", req.OrderID, userID).First(&orderRecord)
	if result.Error != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Order not found or access denied",
		})
		return
	}

	if err := h.paymentService.VerifyPayment(&req, userID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Payment verified successfully",
		"data": gin.H{
			"order_id":           req.OrderID,
			"gateway_order_id":   req.GatewayOrderID,
			"gateway_payment_id": req.GatewayPaymentID,
			"status":             "verified",
		},
	})
}

// HandlePaymentFailure handles POST /payment/failure
func (h *PaymentHandler) HandlePaymentFailure(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	var req struct {
		OrderID uint   `json:"order_id" binding:"required"`
		Reason  string `json:"reason"`
		Code    string `json:"code"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	var orderRecord order.Order
	result := h.db.Where("id = ? AND user_id = ?", req.OrderID, userID).First(&orderRecord)
	if result.Error != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Order not found or access denied",
		})
		return
	}

	if err := h.paymentService.HandlePaymentFailure(req.OrderID, req.Reason, req.Code); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Payment failure recorded successfully",
		"data": gin.H{
			"order_id": req.OrderID,
			"status":   "failed",
			"reason":   req.Reason,
		},
	})
}

// GetPaymentStatus handles GET /payment/status/:order_id
func (h *PaymentHandler) GetPaymentStatus(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	orderID, err := strconv.ParseUint(c.Param("order_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid order ID",
		})
		return
	}

	var orderRecord order.Order
	result := h.db.Where("id = ? AND user_id = ?", uint(orderID), userID).First(&orderRecord)
	if result.Error != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Order not found or access denied",
		})
		return
	}

	paymentRecord, err := h.paymentService.GetPaymentStatus(uint(orderID))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Payment status not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Payment status retrieved successfully",
		"data":    paymentRecord,
	})
}

// GatewayWebhook handles POST /webhooks/payment
func (h *PaymentHandler) GatewayWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Failed to read request body",
		})
		return
	}

	signature := c.GetHeader("X-Gateway-Signature")
	if signature == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Missing signature header",
		})
		return
	}

	if !h.verifyWebhookSignature(string(body), signature) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Invalid signature",
		})
		return
	}

	var webhookData map[string]interface{}
	if err := json.Unmarshal(body, &webhookData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid JSON payload",
		})
		return
	}

	eventType, ok := webhookData["event"].(string)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Missing event type",
		})
		return
	}

	switch eventType {
	case "payment.captured":
		h.handlePaymentCaptured(webhookData)
	case "payment.failed":
		h.handlePaymentFailed(webhookData)
	default:
		h.log.WithField("event", eventType).Debug("Ignoring unhandled webhook event")
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "received",
	})
}

// --- ADMIN ENDPOINTS ---

// AdminGetPayments handles GET /admin/payments
func (h *PaymentHandler) AdminGetPayments(c *gin.Context) {
	page := 1
	if pageStr := c.Query("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}

	limit := 20
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	status := c.Query("status")
	orderID := c.Query("order_id")

	var payments []order.Payment
	var total int64

	query := h.db.Model(&order.Payment{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if orderID != "" {
		query = query.Where("order_id = ?", orderID)
	}

	query.Count(&total)

	offset := (page - 1) * limit
	if err := query.Offset(offset).Limit(limit).Order("created_at DESC").Find(&payments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve payments",
		})
		return
	}

	totalPages := (int(total) + limit - 1) / limit

	c.JSON(http.StatusOK, gin.H{
		"data": payments,
		"pagination": gin.H{
			"page":        page,
			"limit":       limit,
			"total":       total,
			"total_pages": totalPages,
			"has_next":    page < totalPages,
			"has_prev":    page > 1,
		},
	})
}

// AdminGetPaymentDetails handles GET /admin/payments/:id
func (h *PaymentHandler) AdminGetPaymentDetails(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid payment ID",
		})
		return
	}

	var paymentRecord order.Payment
	if err := h.db.Where("id = ?", id).First(&paymentRecord).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Payment not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": paymentRecord,
	})
}

// --- WEBHOOK EVENT HANDLERS ---

func (h *PaymentHandler) handlePaymentCaptured(data map[string]interface{}) {
	entity := extractWebhookPayment(data)
	if entity == nil {
		return
	}

	gatewayOrderID, _ := entity["order_id"].(string)
	if gatewayOrderID == "" {
		return
	}

	var paymentRecord order.Payment
	if err := h.db.Where("payment_provider_id = ?", gatewayOrderID).First(&paymentRecord).Error; err != nil {
		return
	}

	rawEntity, _ := json.Marshal(entity)
	h.db.Model(&paymentRecord).Updates(map[string]interface{}{
		"status":           order.PaymentStatusPaid,
		"gateway_response": string(rawEntity),
		"processed_at":     time.Now().UTC(),
	})

	h.db.Model(&order.Order{}).Where("id = ?", paymentRecord.OrderID).Updates(map[string]interface{}{
		"status":         order.OrderStatusConfirmed,
		"payment_status": order.PaymentStatusPaid,
	})
}

func (h *PaymentHandler) handlePaymentFailed(data map[string]interface{}) {
	entity := extractWebhookPayment(data)
	if entity == nil {
		return
	}

	gatewayOrderID, _ := entity["order_id"].(string)
	if gatewayOrderID == "" {
		return
	}

	var paymentRecord order.Payment
	if err := h.db.Where("payment_provider_id = ?", gatewayOrderID).First(&paymentRecord).Error; err != nil {
		return
	}

	h.db.Model(&paymentRecord).Update("status", order.PaymentStatusFailed)

	h.db.Model(&order.Order{}).Where("id = ?", paymentRecord.OrderID).Updates(map[string]interface{}{
		"status":         order.OrderStatusPending,
		"payment_status": order.PaymentStatusFailed,
	})
}

// extractWebhookPayment digs the payment entity out of a gateway webhook
// payload without panicking on malformed input.
func extractWebhookPayment(data map[string]interface{}) map[string]interface{} {
	payload, ok := data["payload"].(map[string]interface{})
	if !ok {
		return nil
	}
	wrapper, ok := payload["payment"].(map[string]interface{})
	if !ok {
		return nil
	}
	entity, ok := wrapper["entity"].(map[string]interface{})
	if !ok {
		return nil
	}
	return entity
}

// verifyWebhookSignature checks the HMAC signature the gateway attaches
// to webhook deliveries.
func (h *PaymentHandler) verifyWebhookSignature(body, signature string) bool {
	secret := h.config.External.Payment.WebhookSecret
	if secret == "" {
		// Without a configured secret, only accept webhooks in development.
		return h.config.IsDevelopment()
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	expectedSignature := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(signature), []byte(expectedSignature))
}

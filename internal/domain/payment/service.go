// internal/domain/payment/service.go
package payment

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/footwear-storefront/internal/config"
	"github.com/your-org/footwear-storefront/internal/domain/order"
	"gorm.io/gorm"
)

const (
	sandboxBaseURL = "https://api.sandbox.payments.example.com/v1"
	liveBaseURL    = "https://api.payments.example.com/v1"
)

// Service handles card payment processing through the configured gateway.
// Cash-on-delivery orders never reach this service; their payment record
// stays pending until the order is delivered.
type Service struct {
	db         *gorm.DB
	config     *config.Config
	keyID      string
	keySecret  string
	baseURL    string
	httpClient *http.Client
	log        *logrus.Logger
}

// NewService creates a new payment service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	baseURL := sandboxBaseURL
	if cfg.External.Payment.Environment == "live" {
		baseURL = liveBaseURL
	}

	return &Service{
		db:        db,
		config:    cfg,
		keyID:     cfg.External.Payment.GatewayKeyID,
		keySecret: cfg.External.Payment.GatewayKeySecret,
		baseURL:   baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: logrus.StandardLogger(),
	}
}

// GatewayOrder is the payment intent created at the gateway
type GatewayOrder struct {
	ID        string            `json:"id"`
	Amount    int64             `json:"amount"`
	Currency  string            `json:"currency"`
	Receipt   string            `json:"receipt"`
	Status    string            `json:"status"`
	Notes     map[string]string `json:"notes"`
	CreatedAt int64             `json:"created_at"`
}

type createGatewayOrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

// PaymentInitiationResponse carries what the client needs to open the
// gateway's payment flow.
type PaymentInitiationResponse struct {
	GatewayOrderID string       `json:"gateway_order_id"`
	Amount         int64        `json:"amount"`
	Currency       string       `json:"currency"`
	Receipt        string       `json:"receipt"`
	KeyID          string       `json:"key_id"`
	OrderDetails   *order.Order `json:"order_details"`
}

// PaymentVerificationRequest is the client callback after the gateway
// flow completes.
type PaymentVerificationRequest struct {
	GatewayOrderID   string `json:"gateway_order_id" binding:"required"`
	GatewayPaymentID string `json:"gateway_payment_id" binding:"required"`
	Signature        string `json:"signature" binding:"required"`
	OrderID          uint   `json:"order_id" binding:"required"`
}

// InitiatePayment creates a payment intent at the gateway for a pending
// order and records the provider ID on the order's payment row.
func (s *Service) InitiatePayment(orderID uint) (*PaymentInitiationResponse, error) {
	if s.keyID == "" || s.keySecret == "" {
		return nil, fmt.Errorf("payment gateway is not configured")
	}

	var orderDetails order.Order
	err := s.db.Preload("Items").Where("id = ?", orderID).First(&orderDetails).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if orderDetails.Status != order.OrderStatusPending && orderDetails.Status != order.OrderStatusPaymentProcessing {
		return nil, fmt.Errorf("order is not awaiting payment, current status: %s", orderDetails.Status)
	}
	if orderDetails.PaymentStatus == order.PaymentStatusPaid {
		return nil, fmt.Errorf("order is already paid")
	}

	gatewayOrder, err := s.createGatewayOrder(createGatewayOrderRequest{
		Amount:   orderDetails.TotalAmount,
		Currency: orderDetails.Currency,
		Receipt:  orderDetails.OrderNumber,
		Notes:    map[string]string{"order_id": fmt.Sprintf("%d", orderID)},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gateway order: %w", err)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&order.Payment{}).
			Where("order_id = ? AND status = ?", orderID, order.PaymentStatusPending).
			Updates(map[string]interface{}{
				"payment_provider_id": gatewayOrder.ID,
				"status":              order.PaymentStatusProcessing,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("no pending payment found for order %d", orderID)
		}

		return tx.Model(&order.Order{}).Where("id = ?", orderID).Updates(map[string]interface{}{
			"status":         order.OrderStatusPaymentProcessing,
			"payment_status": order.PaymentStatusProcessing,
		}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record payment initiation: %w", err)
	}

	return &PaymentInitiationResponse{
		GatewayOrderID: gatewayOrder.ID,
		Amount:         orderDetails.TotalAmount,
		Currency:       orderDetails.Currency,
		Receipt:        orderDetails.OrderNumber,
		KeyID:          s.keyID,
		OrderDetails:   &orderDetails,
	}, nil
}

// VerifyPayment checks the gateway's callback signature and, on success,
// marks the payment paid and confirms the order.
func (s *Service) VerifyPayment(req *PaymentVerificationRequest, userID uint) error {
	if !s.verifySignature(req.GatewayOrderID, req.GatewayPaymentID, req.Signature) {
		return fmt.Errorf("invalid payment signature")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var payment order.Payment
		err := tx.Where("order_id = ? AND payment_provider_id = ?", req.OrderID, req.GatewayOrderID).
			First(&payment).Error
		if err != nil {
			return fmt.Errorf("payment record not found: %w", err)
		}
		if payment.Status == order.PaymentStatusPaid {
			return nil // already verified, idempotent
		}

		now := time.Now()
		err = tx.Model(&payment).Updates(map[string]interface{}{
			"status":           order.PaymentStatusPaid,
			"gateway_response": s.structToJSON(req),
			"processed_at":     &now,
		}).Error
		if err != nil {
			return fmt.Errorf("failed to update payment: %w", err)
		}

		err = tx.Model(&order.Order{}).Where("id = ?", req.OrderID).Updates(map[string]interface{}{
			"status":         order.OrderStatusConfirmed,
			"payment_status": order.PaymentStatusPaid,
			"processed_at":   &now,
		}).Error
		if err != nil {
			return fmt.Errorf("failed to update order: %w", err)
		}

		history := order.OrderStatusHistory{
			OrderID:   req.OrderID,
			Status:    order.OrderStatusConfirmed,
			Comment:   fmt.Sprintf("Payment verified (gateway payment %s)", req.GatewayPaymentID),
			CreatedBy: userID,
		}
		return tx.Create(&history).Error
	})
}

// HandlePaymentFailure records a failed gateway payment attempt. The
// order stays pending so the buyer can retry.
func (s *Service) HandlePaymentFailure(orderID uint, reason, code string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		failureInfo := s.structToJSON(map[string]string{"reason": reason, "code": code})

		err := tx.Model(&order.Payment{}).
			Where("order_id = ? AND status IN ?", orderID,
				[]order.PaymentStatus{order.PaymentStatusPending, order.PaymentStatusProcessing}).
			Updates(map[string]interface{}{
				"status":           order.PaymentStatusFailed,
				"gateway_response": failureInfo,
			}).Error
		if err != nil {
			return fmt.Errorf("failed to update payment: %w", err)
		}

		return tx.Model(&order.Order{}).Where("id = ?", orderID).Updates(map[string]interface{}{
			"status":         order.OrderStatusPending,
			"payment_status": order.PaymentStatusFailed,
		}).Error
	})
}

// GetPaymentStatus returns the most recent payment attempt for an order
func (s *Service) GetPaymentStatus(orderID uint) (*order.Payment, error) {
	var payment order.Payment
	err := s.db.Where("order_id = ?", orderID).Order("created_at DESC").First(&payment).Error
	if err != nil {
		return nil, fmt.Errorf("payment not found: %w", err)
	}
	return &payment, nil
}

// CreateRefund refunds a captured payment at the gateway and marks the
// payment record refunded.
func (s *Service) CreateRefund(orderID uint, amount int64, reason string) error {
	payment, err := s.GetPaymentStatus(orderID)
	if err != nil {
		return err
	}
	if payment.Status != order.PaymentStatusPaid {
		return fmt.Errorf("cannot refund payment with status %s", payment.Status)
	}
	if amount <= 0 || amount > payment.Amount {
		return fmt.Errorf("invalid refund amount")
	}

	endpoint := fmt.Sprintf("/payments/%s/refunds", payment.PaymentProviderID)
	response, err := s.makeAPICall("POST", endpoint, map[string]interface{}{
		"amount": amount,
		"notes":  map[string]string{"reason": reason},
	})
	if err != nil {
		return fmt.Errorf("gateway refund failed: %w", err)
	}

	return s.db.Model(payment).Updates(map[string]interface{}{
		"status":           order.PaymentStatusRefunded,
		"gateway_response": string(response),
	}).Error
}

func (s *Service) createGatewayOrder(req createGatewayOrderRequest) (*GatewayOrder, error) {
	response, err := s.makeAPICall("POST", "/orders", req)
	if err != nil {
		return nil, err
	}

	var gatewayOrder GatewayOrder
	if err := json.Unmarshal(response, &gatewayOrder); err != nil {
		return nil, fmt.Errorf("failed to parse gateway response: %w", err)
	}
	return &gatewayOrder, nil
}

func (s *Service) makeAPICall(method, endpoint string, data interface{}) ([]byte, error) {
	var reqBody []byte
	var err error
	if data != nil {
		reqBody, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request data: %w", err)
		}
	}

	req, err := http.NewRequest(method, s.baseURL+endpoint, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(s.keyID, s.keySecret)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	var respBody bytes.Buffer
	if _, err := respBody.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("failed to read gateway response: %w", err)
	}

	if resp.StatusCode >= 400 {
		s.log.WithFields(logrus.Fields{
			"status":   resp.StatusCode,
			"endpoint": endpoint,
		}).Error("Payment gateway returned error")
		return nil, fmt.Errorf("gateway call failed with status %d", resp.StatusCode)
	}

	return respBody.Bytes(), nil
}

// verifySignature checks the HMAC-SHA256 signature the gateway computes
// over "<gateway order id>|<gateway payment id>".
func (s *Service) verifySignature(gatewayOrderID, gatewayPaymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(s.keySecret))
	mac.Write([]byte(gatewayOrderID + "|" + gatewayPaymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	provided, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	expectedBytes, _ := hex.DecodeString(expected)
	return hmac.Equal(provided, expectedBytes)
}

func (s *Service) structToJSON(data interface{}) string {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return ""
	}
	return string(jsonData)
}

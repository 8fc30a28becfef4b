// internal/domain/order/service.go
package order

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/footwear-storefront/internal/config"
	"github.com/your-org/footwear-storefront/internal/domain/cart"
	"github.com/your-org/footwear-storefront/internal/domain/coupon"
	"github.com/your-org/footwear-storefront/internal/domain/inventory"
	"github.com/your-org/footwear-storefront/internal/domain/pricing"
	"github.com/your-org/footwear-storefront/internal/domain/product"
	"github.com/your-org/footwear-storefront/internal/domain/user"
	"github.com/your-org/footwear-storefront/internal/pkg/email"
	"gorm.io/gorm"
)

// Service handles order business logic
type Service struct {
	db           *gorm.DB
	config       *config.Config
	cartService  *cart.Service
	coupons      *coupon.Service
	inventory    *inventory.Service
	resolver     *pricing.Resolver
	emailService *email.EmailService
}

// NewService creates a new order service
func NewService(db *gorm.DB, cfg *config.Config, cartService *cart.Service) *Service {
	return &Service{
		db:           db,
		config:       cfg,
		cartService:  cartService,
		coupons:      coupon.NewService(db, cfg),
		inventory:    inventory.NewService(db, cfg),
		resolver:     pricing.NewResolver(),
		emailService: email.NewEmailService(cfg),
	}
}

// CreateOrderRequest represents order creation data
type CreateOrderRequest struct {
	ShippingAddress      Address  `json:"shipping_address" binding:"required"`
	BillingAddress       *Address `json:"billing_address,omitempty"` // Optional, defaults to shipping
	ShippingMethod       string   `json:"shipping_method" binding:"required"`
	PaymentMethod        string   `json:"payment_method" binding:"required"`
	Notes                string   `json:"notes,omitempty"`
	UseShippingAsBilling bool     `json:"use_shipping_as_billing"`
}

// OrderListRequest represents order list query parameters
type OrderListRequest struct {
	Page      int         `form:"page,default=1"`
	Limit     int         `form:"limit,default=20"`
	Status    OrderStatus `form:"status"`
	UserID    uint        `form:"user_id"`
	SortBy    string      `form:"sort_by,default=created_at"`
	SortOrder string      `form:"sort_order,default=desc"`
	DateFrom  string      `form:"date_from"`
	DateTo    string      `form:"date_to"`
}

// OrderResponse represents order response with pagination
type OrderResponse struct {
	Orders     []Order    `json:"orders"`
	Pagination Pagination `json:"pagination"`
}

// Pagination represents pagination information
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// CreateOrder places an order from the user's cart. Stock deduction,
// coupon redemption and order creation commit or fail as one
// transaction; prices and the coupon are re-validated inside it, never
// trusted from the cart snapshot.
func (s *Service) CreateOrder(userID uint, sessionID string, req *CreateOrderRequest) (*Order, error) {
	cartResponse, err := s.cartService.GetCart(&userID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve cart: %w", err)
	}

	if len(cartResponse.Items) == 0 {
		return nil, fmt.Errorf("cart is empty")
	}

	switch req.PaymentMethod {
	case "card", "wallet", "cod":
	default:
		return nil, fmt.Errorf("unsupported payment method: %s", req.PaymentMethod)
	}

	var buyer user.User
	if err := s.db.Where("id = ? AND is_active = ?", userID, true).First(&buyer).Error; err != nil {
		return nil, fmt.Errorf("user not found")
	}
	wholesale := buyer.IsWholesaleVerified()

	billingAddress := req.ShippingAddress
	if !req.UseShippingAsBilling && req.BillingAddress != nil {
		billingAddress = *req.BillingAddress
	}

	var order Order

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var subtotal int64
		items := make([]OrderItem, 0, len(cartResponse.Items))

		for _, cartItem := range cartResponse.Items {
			var prod product.Product
			err := tx.Preload("Variants").Preload("PriceTiers", func(db *gorm.DB) *gorm.DB {
				return db.Order("min_quantity ASC")
			}).Where("id = ? AND is_active = ?", cartItem.ProductID, true).First(&prod).Error
			if err != nil {
				return fmt.Errorf("product %d is no longer available", cartItem.ProductID)
			}

			if len(prod.Variants) > 0 && prod.FindVariant(cartItem.Size, cartItem.Color) == nil {
				return fmt.Errorf("size %s in %s is no longer available for '%s'",
					cartItem.Size, cartItem.Color, prod.Name)
			}

			quote := s.resolver.Resolve(&prod, prod.PriceTiers, wholesale, cartItem.Quantity)
			lineTotal := quote.UnitPrice * int64(cartItem.Quantity)
			subtotal += lineTotal

			items = append(items, OrderItem{
				ProductID:   prod.ID,
				SKU:         prod.SKU,
				Name:        prod.Name,
				Size:        cartItem.Size,
				Color:       cartItem.Color,
				Quantity:    cartItem.Quantity,
				Price:       quote.UnitPrice,
				PriceSource: quote.Source,
				TotalPrice:  lineTotal,
			})
		}

		// Re-validate and redeem the coupon against the fresh subtotal
		var discountAmount int64
		couponCode := cartResponse.CouponCode
		if couponCode != "" {
			app, err := s.coupons.Validate(couponCode, subtotal)
			if err != nil {
				return fmt.Errorf("coupon validation failed: %w", err)
			}
			if err := s.coupons.RedeemTx(tx, couponCode); err != nil {
				return fmt.Errorf("failed to redeem coupon: %w", err)
			}
			discountAmount = app.DiscountAmount
		}

		shippingCost := s.calculateShipping(req.ShippingMethod, subtotal)
		totalAmount := subtotal + shippingCost - discountAmount
		if totalAmount < 0 {
			totalAmount = 0
		}

		order = Order{
			UserID:          &userID,
			Email:           buyer.Email,
			Status:          OrderStatusPending,
			PaymentStatus:   PaymentStatusPending,
			SubtotalAmount:  subtotal,
			ShippingAmount:  shippingCost,
			DiscountAmount:  discountAmount,
			TotalAmount:     totalAmount,
			ShippingAddress: req.ShippingAddress,
			BillingAddress:  billingAddress,
			Currency:        s.config.Storefront.Currency,
			Notes:           req.Notes,
			CouponCode:      couponCode,
			IsWholesale:     wholesale,
			ShippingMethod:  req.ShippingMethod,
		}

		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		order.OrderNumber = s.generateOrderNumber(order.ID)
		if err := tx.Model(&order).Update("order_number", order.OrderNumber).Error; err != nil {
			return fmt.Errorf("failed to update order number: %w", err)
		}

		for i := range items {
			items[i].OrderID = order.ID
			if err := tx.Create(&items[i]).Error; err != nil {
				return fmt.Errorf("failed to create order item: %w", err)
			}

			if err := s.inventory.DeductStockTx(tx, items[i].ProductID, items[i].Size,
				items[i].Color, items[i].Quantity, order.ID); err != nil {
				return err
			}
		}

		payment := Payment{
			OrderID:       order.ID,
			PaymentMethod: req.PaymentMethod,
			Amount:        totalAmount,
			Currency:      s.config.Storefront.Currency,
			Status:        PaymentStatusPending,
			Gateway:       req.PaymentMethod,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return fmt.Errorf("failed to create payment record: %w", err)
		}

		statusHistory := OrderStatusHistory{
			OrderID:   order.ID,
			Status:    OrderStatusPending,
			Comment:   "Order created",
			CreatedBy: userID,
			CreatedAt: time.Now().UTC(),
		}
		return tx.Create(&statusHistory).Error
	})
	if err != nil {
		return nil, err
	}

	// The order exists; a cart clear failure must not undo it
	if err := s.cartService.ClearCart(&userID, sessionID); err != nil {
		logrus.WithField("order", order.OrderNumber).WithError(err).Warn("failed to clear cart after order")
	}

	if err := s.db.Preload("Items").Preload("Payments").Preload("StatusHistory").
		First(&order, order.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to load complete order: %w", err)
	}

	s.sendConfirmationEmail(&order, &buyer)

	return &order, nil
}

// GetOrders retrieves orders with filtering and pagination
func (s *Service) GetOrders(req *OrderListRequest) (*OrderResponse, error) {
	var orders []Order
	var total int64

	query := s.db.Model(&Order{}).
		Preload("Items").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		})

	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	if req.UserID > 0 {
		query = query.Where("user_id = ?", req.UserID)
	}
	if req.DateFrom != "" {
		query = query.Where("created_at >= ?", req.DateFrom)
	}
	if req.DateTo != "" {
		query = query.Where("created_at <= ?", req.DateTo)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	orderClause := s.buildOrderClause(req.SortBy, req.SortOrder)
	query = query.Order(orderClause)

	offset := (req.Page - 1) * req.Limit
	if err := query.Offset(offset).Limit(req.Limit).Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve orders: %w", err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	pagination := Pagination{
		Page:       req.Page,
		Limit:      req.Limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    req.Page < totalPages,
		HasPrev:    req.Page > 1,
	}

	return &OrderResponse{
		Orders:     orders,
		Pagination: pagination,
	}, nil
}

// GetOrder retrieves a single order by ID
func (s *Service) GetOrder(id uint) (*Order, error) {
	var order Order
	result := s.db.
		Preload("Items").
		Preload("Payments").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Where("id = ?", id).
		First(&order)

	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("order not found")
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", result.Error)
	}

	return &order, nil
}

// GetUserOrder retrieves an order only if it belongs to the user
func (s *Service) GetUserOrder(userID, orderID uint) (*Order, error) {
	order, err := s.GetOrder(orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID == nil || *order.UserID != userID {
		return nil, fmt.Errorf("order not found")
	}
	return order, nil
}

// GetOrderByNumber retrieves a single order by order number
func (s *Service) GetOrderByNumber(orderNumber string) (*Order, error) {
	var order Order
	result := s.db.
		Preload("Items").
		Preload("Payments").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Where("order_number = ?", orderNumber).
		First(&order)

	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("order not found")
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", result.Error)
	}

	return &order, nil
}

// UpdateOrderStatus updates order status
func (s *Service) UpdateOrderStatus(orderID uint, status OrderStatus, comment string, updatedBy uint) error {
	var order Order
	if err := s.db.First(&order, orderID).Error; err != nil {
		return fmt.Errorf("order not found: %w", err)
	}

	if !s.isValidStatusTransition(order.Status, status) {
		return fmt.Errorf("invalid status transition from %s to %s", order.Status, status)
	}

	updates := map[string]interface{}{
		"status": status,
	}

	now := time.Now().UTC()
	switch status {
	case OrderStatusProcessing:
		updates["processed_at"] = now
	case OrderStatusShipped:
		updates["shipped_at"] = now
	case OrderStatusDelivered:
		updates["delivered_at"] = now
	}

	if err := s.db.Model(&order).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	statusHistory := OrderStatusHistory{
		OrderID:   orderID,
		Status:    status,
		Comment:   comment,
		CreatedBy: updatedBy,
		CreatedAt: now,
	}

	if err := s.db.Create(&statusHistory).Error; err != nil {
		return fmt.Errorf("failed to create status history: %w", err)
	}

	s.sendStatusUpdateEmail(&order, status, comment)

	return nil
}

func (s *Service) sendStatusUpdateEmail(order *Order, status OrderStatus, comment string) {
	if order.UserID == nil {
		return
	}

	var buyer user.User
	if err := s.db.First(&buyer, *order.UserID).Error; err != nil {
		return
	}

	data := email.OrderStatusUpdateData{
		OrderNumber:    order.OrderNumber,
		Status:         string(status),
		StatusMessage:  comment,
		TrackingNumber: order.TrackingNumber,
	}
	data.UserName = buyer.GetDisplayName()
	data.UserEmail = buyer.Email

	go func() {
		if err := s.emailService.SendOrderStatusUpdateEmail(context.Background(), data); err != nil {
			logrus.WithField("order", order.OrderNumber).WithError(err).Warn("failed to send status update email")
		}
	}()
}

// CancelOrder cancels an order and restores its stock
func (s *Service) CancelOrder(orderID uint, reason string, cancelledBy uint) error {
	var order Order
	if err := s.db.First(&order, orderID).Error; err != nil {
		return fmt.Errorf("order not found: %w", err)
	}

	if !order.CanBeCancelled() {
		return fmt.Errorf("order cannot be cancelled in current status: %s", order.Status)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var orderItems []OrderItem
		if err := tx.Where("order_id = ?", orderID).Find(&orderItems).Error; err != nil {
			return fmt.Errorf("failed to get order items: %w", err)
		}

		for _, item := range orderItems {
			if err := s.inventory.RestoreStockTx(tx, item.ProductID, item.Size,
				item.Color, item.Quantity, orderID); err != nil {
				return err
			}
		}

		if err := tx.Model(&order).Update("status", OrderStatusCancelled).Error; err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}

		statusHistory := OrderStatusHistory{
			OrderID:   orderID,
			Status:    OrderStatusCancelled,
			Comment:   fmt.Sprintf("Order cancelled: %s", reason),
			CreatedBy: cancelledBy,
			CreatedAt: time.Now().UTC(),
		}
		return tx.Create(&statusHistory).Error
	})
}

// GetUserOrders retrieves orders for a specific user
func (s *Service) GetUserOrders(userID uint, page, limit int) (*OrderResponse, error) {
	req := &OrderListRequest{
		Page:   page,
		Limit:  limit,
		UserID: userID,
	}
	return s.GetOrders(req)
}

// Private helper methods

// calculateShipping prices the chosen method; orders over the free
// shipping threshold ship standard for free.
func (s *Service) calculateShipping(method string, subtotal int64) int64 {
	if method == "standard" && subtotal >= s.config.Storefront.FreeShippingThreshold {
		return 0
	}

	switch method {
	case "standard":
		return 999
	case "express":
		return 1999
	case "overnight":
		return 2999
	default:
		return 999
	}
}

func (s *Service) generateOrderNumber(orderID uint) string {
	// Format: ORD-YYYYMMDD-XXXXX
	return fmt.Sprintf("ORD-%s-%05d", time.Now().Format("20060102"), orderID)
}

func (s *Service) sendConfirmationEmail(order *Order, buyer *user.User) {
	data := email.OrderConfirmationData{
		OrderNumber:    order.OrderNumber,
		OrderDate:      order.CreatedAt.Format("January 2, 2006"),
		OrderTotal:     order.GetFormattedTotal(),
		ShippingMethod: order.ShippingMethod,
	}
	data.UserName = buyer.GetDisplayName()
	data.UserEmail = buyer.Email
	for _, item := range order.Items {
		data.Items = append(data.Items, email.OrderItem{
			Name:     item.Name,
			SKU:      item.SKU,
			Size:     item.Size,
			Color:    item.Color,
			Quantity: item.Quantity,
			Price:    float64(item.Price) / 100,
			Total:    float64(item.TotalPrice) / 100,
		})
	}

	if err := s.emailService.SendOrderConfirmationEmail(context.Background(), data); err != nil {
		logrus.WithField("order", order.OrderNumber).WithError(err).Warn("failed to send order confirmation")
	}
}

func (s *Service) isValidStatusTransition(from, to OrderStatus) bool {
	validTransitions := map[OrderStatus][]OrderStatus{
		OrderStatusPending: {
			OrderStatusPaymentProcessing,
			OrderStatusConfirmed,
			OrderStatusCancelled,
		},
		OrderStatusPaymentProcessing: {
			OrderStatusConfirmed,
			OrderStatusCancelled,
		},
		OrderStatusConfirmed: {
			OrderStatusProcessing,
			OrderStatusCancelled,
		},
		OrderStatusProcessing: {
			OrderStatusShipped,
			OrderStatusCancelled,
		},
		OrderStatusShipped: {
			OrderStatusOutForDelivery,
			OrderStatusDelivered,
		},
		OrderStatusOutForDelivery: {
			OrderStatusDelivered,
		},
		OrderStatusDelivered: {
			OrderStatusCompleted,
			OrderStatusRefunded,
		},
	}

	allowedStatuses, exists := validTransitions[from]
	if !exists {
		return false
	}

	for _, status := range allowedStatuses {
		if status == to {
			return true
		}
	}
	return false
}

func (s *Service) buildOrderClause(sortBy, sortOrder string) string {
	validSortFields := map[string]bool{
		"created_at":   true,
		"updated_at":   true,
		"total_amount": true,
		"status":       true,
		"order_number": true,
	}

	if !validSortFields[sortBy] {
		sortBy = "created_at"
	}

	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}

	return fmt.Sprintf("%s %s", sortBy, sortOrder)
}

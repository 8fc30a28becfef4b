// internal/domain/cart/service.go
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/footwear-storefront/internal/config"
	"github.com/your-org/footwear-storefront/internal/domain/coupon"
	"github.com/your-org/footwear-storefront/internal/domain/pricing"
	"github.com/your-org/footwear-storefront/internal/domain/product"
	"github.com/your-org/footwear-storefront/internal/domain/user"
	"gorm.io/gorm"
)

// Redis key namespaces. Versioned so a payload shape change can roll
// out without reading stale sessions.
const (
	guestCartKeyPrefix   = "cart:session:v1:"
	userCouponKeyPrefix  = "cart:coupon:v1:user:"
	guestCouponKeyPrefix = "cart:coupon:v1:session:"
)

// Service handles cart business logic
type Service struct {
	db          *gorm.DB
	redisClient *redis.Client
	config      *config.Config
	resolver    *pricing.Resolver
	coupons     *coupon.Service
	couponStore couponStore
	log         *logrus.Logger
}

// NewService creates a new cart service
func NewService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *Service {
	return &Service{
		db:          db,
		redisClient: redisClient,
		config:      cfg,
		resolver:    pricing.NewResolver(),
		coupons:     coupon.NewService(db, cfg),
		couponStore: &redisCouponStore{client: redisClient},
		log:         logrus.StandardLogger(),
	}
}

// CartItemResponse represents a cart line with product details and the
// freshly resolved unit price.
type CartItemResponse struct {
	ProductID   uint             `json:"product_id"`
	Size        string           `json:"size"`
	Color       string           `json:"color"`
	Quantity    int              `json:"quantity"`
	Price       int64            `json:"price"`        // Resolved unit price
	PriceSource string           `json:"price_source"` // tier, wholesale, sale, base
	AddedPrice  int64            `json:"added_price"`  // Unit price when the line was created
	Product     *product.Product `json:"product,omitempty"`
	AddedAt     time.Time        `json:"added_at"`
}

// CartResponse represents a shopping cart with items, totals and the
// currently applied coupon
type CartResponse struct {
	SessionID  string             `json:"session_id,omitempty"`
	UserID     *uint              `json:"user_id,omitempty"`
	Items      []CartItemResponse `json:"items"`
	Totals     CartTotals         `json:"totals"`
	CouponCode string             `json:"coupon_code,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// AddToCartRequest represents add to cart request
type AddToCartRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Size      string `json:"size" binding:"required"`
	Color     string `json:"color" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// UpdateCartItemRequest represents update cart item request
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"min=0"`
}

// GetCart retrieves cart for user or session, recomputing prices,
// discount and totals from scratch.
func (s *Service) GetCart(userID *uint, sessionID string) (*CartResponse, error) {
	var cartItems []CartItemResponse
	var createdAt, updatedAt time.Time

	if userID != nil {
		var dbItems []CartItem
		err := s.db.Where("user_id = ?", *userID).Order("created_at ASC").Find(&dbItems).Error
		if err != nil {
			return nil, fmt.Errorf("failed to retrieve user cart: %w", err)
		}

		cartItems = make([]CartItemResponse, len(dbItems))
		for i, item := range dbItems {
			cartItems[i] = CartItemResponse{
				ProductID:  item.ProductID,
				Size:       item.Size,
				Color:      item.Color,
				Quantity:   item.Quantity,
				AddedPrice: item.Price,
				AddedAt:    item.CreatedAt,
			}
		}

		if len(dbItems) > 0 {
			createdAt = dbItems[0].CreatedAt
			updatedAt = dbItems[0].UpdatedAt
		} else {
			createdAt = time.Now().UTC()
			updatedAt = time.Now().UTC()
		}
	} else {
		sessionCart, err := s.getGuestCart(sessionID)
		if err != nil {
			return nil, err
		}

		cartItems = make([]CartItemResponse, len(sessionCart.Items))
		for i, item := range sessionCart.Items {
			cartItems[i] = CartItemResponse{
				ProductID:  item.ProductID,
				Size:       item.Size,
				Color:      item.Color,
				Quantity:   item.Quantity,
				AddedPrice: item.Price,
				AddedAt:    item.AddedAt,
			}
		}

		createdAt = sessionCart.CreatedAt
		updatedAt = sessionCart.UpdatedAt
	}

	// Load product details and resolve unit prices for the caller's role
	wholesale := s.isWholesaleVerified(userID)
	if err := s.loadProductDetails(cartItems, wholesale); err != nil {
		return nil, err
	}

	subtotal := subTotal(cartItems)

	// Re-validate any stored coupon against the current subtotal; a
	// coupon that no longer passes is dropped rather than surfaced.
	couponCode := ""
	var discount int64
	if app := s.getStoredCoupon(userID, sessionID); app != nil {
		fresh, err := s.coupons.Validate(app.Code, subtotal)
		if err != nil {
			s.log.WithField("coupon", app.Code).WithError(err).Info("dropping stale coupon")
			s.clearCoupon(userID, sessionID)
		} else {
			couponCode = fresh.Code
			discount = fresh.DiscountAmount
		}
	}

	totals := calculateTotals(cartItems, discount)

	return &CartResponse{
		SessionID:  sessionID,
		UserID:     userID,
		Items:      cartItems,
		Totals:     totals,
		CouponCode: couponCode,
		CreatedAt:  createdAt,
		UpdatedAt:  updatedAt,
	}, nil
}

// AddToCart adds an item to the cart. Any applied coupon is cleared,
// forcing re-validation against the new subtotal.
func (s *Service) AddToCart(userID *uint, sessionID string, req *AddToCartRequest) (*CartResponse, error) {
	prod, err := s.loadActiveProduct(req.ProductID)
	if err != nil {
		return nil, err
	}

	if len(prod.Variants) > 0 && prod.FindVariant(req.Size, req.Color) == nil {
		return nil, fmt.Errorf("size %s in %s is not available for this product", req.Size, req.Color)
	}

	available := prod.AvailableQuantity(req.Size, req.Color)
	if prod.TrackQuantity && available < req.Quantity {
		return nil, fmt.Errorf("insufficient inventory. Available: %d", available)
	}

	wholesale := s.isWholesaleVerified(userID)
	quote := s.resolver.Resolve(prod, prod.PriceTiers, wholesale, req.Quantity)

	if userID != nil {
		err = s.addToUserCart(*userID, prod, req, quote.UnitPrice, available, wholesale)
	} else {
		err = s.addToGuestCart(sessionID, prod, req, quote.UnitPrice, available, wholesale)
	}
	if err != nil {
		return nil, err
	}

	s.clearCoupon(userID, sessionID)

	return s.GetCart(userID, sessionID)
}

// UpdateCartItem updates quantity of a cart line; 0 removes it.
func (s *Service) UpdateCartItem(userID *uint, sessionID string, productID uint, size, color string, req *UpdateCartItemRequest) (*CartResponse, error) {
	if req.Quantity < 0 {
		return nil, fmt.Errorf("quantity cannot be negative")
	}

	if req.Quantity > 0 {
		prod, err := s.loadActiveProduct(productID)
		if err != nil {
			return nil, err
		}

		available := prod.AvailableQuantity(size, color)
		if prod.TrackQuantity && available < req.Quantity {
			return nil, fmt.Errorf("insufficient inventory. Available: %d", available)
		}

		if !meetsMinOrder(prod, s.isWholesaleVerified(userID), req.Quantity) {
			return nil, fmt.Errorf("minimum order quantity for this product is %d", prod.MinOrderQuantity)
		}
	}

	var err error
	if userID != nil {
		err = s.updateUserCartItem(*userID, productID, size, color, req.Quantity)
	} else {
		err = s.updateGuestCartItem(sessionID, productID, size, color, req.Quantity)
	}
	if err != nil {
		return nil, err
	}

	s.clearCoupon(userID, sessionID)

	return s.GetCart(userID, sessionID)
}

// RemoveFromCart removes a line from the cart
func (s *Service) RemoveFromCart(userID *uint, sessionID string, productID uint, size, color string) (*CartResponse, error) {
	return s.UpdateCartItem(userID, sessionID, productID, size, color, &UpdateCartItemRequest{Quantity: 0})
}

// ClearCart removes all lines and any applied coupon
func (s *Service) ClearCart(userID *uint, sessionID string) error {
	s.clearCoupon(userID, sessionID)

	if userID != nil {
		return s.db.Where("user_id = ?", *userID).Delete(&CartItem{}).Error
	}

	ctx := context.Background()
	return s.redisClient.Del(ctx, guestCartKeyPrefix+sessionID).Err()
}

// GetCartItemCount returns the total quantity across all lines
func (s *Service) GetCartItemCount(userID *uint, sessionID string) (int, error) {
	cartResponse, err := s.GetCart(userID, sessionID)
	if err != nil {
		return 0, nil // Treat a missing cart as empty
	}

	totalItems := 0
	for _, item := range cartResponse.Items {
		totalItems += item.Quantity
	}

	return totalItems, nil
}

// ApplyCoupon validates a code against the current subtotal and stores
// the application. Validation runs fresh on every attempt.
func (s *Service) ApplyCoupon(userID *uint, sessionID, code string) (*coupon.Application, error) {
	cartResponse, err := s.GetCart(userID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve cart: %w", err)
	}
	if len(cartResponse.Items) == 0 {
		return nil, fmt.Errorf("cart is empty")
	}

	app, err := s.coupons.Validate(code, cartResponse.Totals.SubTotal)
	if err != nil {
		return nil, err
	}

	if err := s.couponStore.Set(s.couponKey(userID, sessionID), app, s.config.Storefront.GuestSessionTTL); err != nil {
		return nil, fmt.Errorf("failed to store coupon application: %w", err)
	}

	return app, nil
}

// RemoveCoupon drops the applied coupon
func (s *Service) RemoveCoupon(userID *uint, sessionID string) error {
	return s.couponStore.Clear(s.couponKey(userID, sessionID))
}

// MergeGuestCartToUser merges guest cart lines into the user's cart
// when the user signs in. Matching rows accumulate quantity, the rest
// are inserted, then the guest session is cleared.
func (s *Service) MergeGuestCartToUser(userID uint, sessionID string) error {
	guestCart, err := s.getGuestCart(sessionID)
	if err != nil || len(guestCart.Items) == 0 {
		return nil // No guest cart to merge
	}

	var existing []CartItem
	if err := s.db.Where("user_id = ?", userID).Find(&existing).Error; err != nil {
		return fmt.Errorf("failed to load user cart for merge: %w", err)
	}

	plan := PlanMerge(userID, guestCart.Items, existing)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for i := range plan.Creates {
			if err := tx.Create(&plan.Creates[i]).Error; err != nil {
				return err
			}
		}
		for i := range plan.Updates {
			row := plan.Updates[i]
			if err := tx.Model(&CartItem{}).Where("id = ?", row.ID).
				Update("quantity", row.Quantity).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to merge guest cart: %w", err)
	}

	// Guest session state is gone after the merge; the applied coupon
	// does not survive the subtotal change either.
	return s.ClearCart(nil, sessionID)
}

// Private helper methods

func (s *Service) loadActiveProduct(productID uint) (*product.Product, error) {
	var prod product.Product
	err := s.db.Preload("Variants").Preload("PriceTiers", func(db *gorm.DB) *gorm.DB {
		return db.Order("min_quantity ASC")
	}).Where("id = ? AND is_active = ?", productID, true).First(&prod).Error
	if err != nil {
		return nil, fmt.Errorf("product not found or inactive")
	}
	return &prod, nil
}

func (s *Service) addToUserCart(userID uint, prod *product.Product, req *AddToCartRequest, price int64, available int, wholesale bool) error {
	var existingItem CartItem
	result := s.db.Where("user_id = ? AND product_id = ? AND size = ? AND color = ?",
		userID, req.ProductID, req.Size, req.Color).First(&existingItem)

	if result.Error == gorm.ErrRecordNotFound {
		if !meetsMinOrder(prod, wholesale, req.Quantity) {
			return fmt.Errorf("minimum order quantity for this product is %d", prod.MinOrderQuantity)
		}
		newItem := CartItem{
			UserID:    userID,
			ProductID: req.ProductID,
			Size:      req.Size,
			Color:     req.Color,
			Quantity:  req.Quantity,
			Price:     price,
		}
		return s.db.Create(&newItem).Error
	}

	newQuantity := existingItem.Quantity + req.Quantity
	if prod.TrackQuantity && available < newQuantity {
		return fmt.Errorf("insufficient inventory for total quantity. Available: %d", available)
	}

	existingItem.Quantity = newQuantity
	existingItem.Price = price // Refresh in case the quote changed
	return s.db.Save(&existingItem).Error
}

func (s *Service) addToGuestCart(sessionID string, prod *product.Product, req *AddToCartRequest, price int64, available int, wholesale bool) error {
	sessionCart, err := s.getGuestCart(sessionID)
	if err != nil {
		return err
	}

	// Inventory check against the combined quantity
	existingLine := false
	for _, item := range sessionCart.Items {
		if item.SameLine(req.ProductID, req.Size, req.Color) {
			existingLine = true
			if prod.TrackQuantity && available < item.Quantity+req.Quantity {
				return fmt.Errorf("insufficient inventory for total quantity. Available: %d", available)
			}
		}
	}

	if !existingLine && !meetsMinOrder(prod, wholesale, req.Quantity) {
		return fmt.Errorf("minimum order quantity for this product is %d", prod.MinOrderQuantity)
	}

	sessionCart.Upsert(SessionCartItem{
		ProductID: req.ProductID,
		Size:      req.Size,
		Color:     req.Color,
		Quantity:  req.Quantity,
		Price:     price,
		AddedAt:   time.Now().UTC(),
	})

	sessionCart.UpdatedAt = time.Now().UTC()
	return s.saveGuestCart(sessionID, sessionCart)
}

func (s *Service) updateUserCartItem(userID, productID uint, size, color string, quantity int) error {
	query := s.db.Where("user_id = ? AND product_id = ? AND size = ? AND color = ?",
		userID, productID, size, color)

	if quantity == 0 {
		result := query.Delete(&CartItem{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("item not found in cart")
		}
		return nil
	}

	result := query.Model(&CartItem{}).Update("quantity", quantity)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("item not found in cart")
	}
	return nil
}

func (s *Service) updateGuestCartItem(sessionID string, productID uint, size, color string, quantity int) error {
	sessionCart, err := s.getGuestCart(sessionID)
	if err != nil {
		return err
	}

	if !sessionCart.SetQuantity(productID, size, color, quantity) {
		return fmt.Errorf("item not found in cart")
	}

	sessionCart.UpdatedAt = time.Now().UTC()
	return s.saveGuestCart(sessionID, sessionCart)
}

func (s *Service) getGuestCart(sessionID string) (*SessionCart, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session ID required for guest cart")
	}

	ctx := context.Background()
	cartData, err := s.redisClient.Get(ctx, guestCartKeyPrefix+sessionID).Result()
	if err == redis.Nil {
		now := time.Now().UTC()
		return &SessionCart{
			SessionID: sessionID,
			Items:     []SessionCartItem{},
			CreatedAt: now,
			UpdatedAt: now,
			ExpiresAt: now.Add(s.config.Storefront.GuestSessionTTL),
		}, nil
	} else if err != nil {
		return nil, err
	}

	var sessionCart SessionCart
	if err := json.Unmarshal([]byte(cartData), &sessionCart); err != nil {
		return nil, err
	}

	return &sessionCart, nil
}

func (s *Service) saveGuestCart(sessionID string, sc *SessionCart) error {
	ctx := context.Background()
	cartData, err := json.Marshal(sc)
	if err != nil {
		return err
	}
	return s.redisClient.Set(ctx, guestCartKeyPrefix+sessionID, cartData, s.config.Storefront.GuestSessionTTL).Err()
}

// loadProductDetails attaches product records and resolves the unit
// price of each line for the caller's role.
func (s *Service) loadProductDetails(cartItems []CartItemResponse, wholesale bool) error {
	for i := range cartItems {
		var prod product.Product
		err := s.db.Preload("Category").Preload("Brand").Preload("Variants").
			Preload("PriceTiers", func(db *gorm.DB) *gorm.DB {
				return db.Order("min_quantity ASC")
			}).
			Where("id = ?", cartItems[i].ProductID).First(&prod).Error
		if err != nil {
			continue // Skip if product not found
		}
		cartItems[i].Product = &prod

		quote := s.resolver.Resolve(&prod, prod.PriceTiers, wholesale, cartItems[i].Quantity)
		cartItems[i].Price = quote.UnitPrice
		cartItems[i].PriceSource = quote.Source
	}

	return nil
}

// meetsMinOrder reports whether a new wholesale line satisfies the
// product's minimum order quantity. Retail lines have no minimum.
func meetsMinOrder(prod *product.Product, wholesale bool, quantity int) bool {
	return !wholesale || quantity >= prod.MinOrderQuantity
}

func (s *Service) isWholesaleVerified(userID *uint) bool {
	if userID == nil {
		return false
	}
	var u user.User
	if err := s.db.Select("wholesale_status").Where("id = ?", *userID).First(&u).Error; err != nil {
		return false
	}
	return u.IsWholesaleVerified()
}

func (s *Service) couponKey(userID *uint, sessionID string) string {
	if userID != nil {
		return fmt.Sprintf("%s%d", userCouponKeyPrefix, *userID)
	}
	return guestCouponKeyPrefix + sessionID
}

func (s *Service) clearCoupon(userID *uint, sessionID string) {
	if err := s.couponStore.Clear(s.couponKey(userID, sessionID)); err != nil {
		s.log.WithError(err).Warn("failed to clear applied coupon")
	}
}

func (s *Service) getStoredCoupon(userID *uint, sessionID string) *coupon.Application {
	return s.couponStore.Get(s.couponKey(userID, sessionID))
}

func subTotal(cartItems []CartItemResponse) int64 {
	var subtotal int64
	for _, item := range cartItems {
		subtotal += item.Price * int64(item.Quantity)
	}
	return subtotal
}

// calculateTotals recomputes totals from scratch for the given lines
// and discount.
func calculateTotals(cartItems []CartItemResponse, discount int64) CartTotals {
	var totals CartTotals

	totals.ItemCount = len(cartItems)
	for _, item := range cartItems {
		totals.TotalQuantity += item.Quantity
		totals.SubTotal += item.Price * int64(item.Quantity)
	}

	if discount > totals.SubTotal {
		discount = totals.SubTotal
	}
	totals.DiscountAmount = discount
	totals.TotalAmount = totals.SubTotal - totals.DiscountAmount

	return totals
}

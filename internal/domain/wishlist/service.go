package wishlist

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/your-org/footwear-storefront/internal/config"
	"github.com/your-org/footwear-storefront/internal/domain/cart"
	"github.com/your-org/footwear-storefront/internal/domain/product"
	"gorm.io/gorm"
)

const guestWishlistKeyPrefix = "wishlist:session:v1:"

// Service handles wishlist business logic
type Service struct {
	db          *gorm.DB
	redisClient *redis.Client
	config      *config.Config
	cartService *cart.Service
}

// NewService creates a new wishlist service
func NewService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *Service {
	return &Service{
		db:          db,
		redisClient: redisClient,
		config:      cfg,
		cartService: cart.NewService(db, redisClient, cfg),
	}
}

// WishlistItemResponse represents a wishlist item with product details
type WishlistItemResponse struct {
	ID           uint             `json:"id,omitempty"`
	ProductID    uint             `json:"product_id"`
	Size         string           `json:"size,omitempty"`
	Color        string           `json:"color,omitempty"`
	Product      *product.Product `json:"product,omitempty"`
	AddedAt      time.Time        `json:"added_at"`
	IsAvailable  bool             `json:"is_available"`
	CurrentPrice int64            `json:"current_price"`
	OnSale       bool             `json:"on_sale"`
}

// WishlistResponse represents a wishlist with items and pagination
type WishlistResponse struct {
	Items      []WishlistItemResponse `json:"items"`
	Count      int                    `json:"count"`
	Pagination Pagination             `json:"pagination"`
	Summary    WishlistSummary        `json:"summary"`
}

// WishlistSummary provides summary information
type WishlistSummary struct {
	TotalItems       int   `json:"total_items"`
	AvailableItems   int   `json:"available_items"`
	UnavailableItems int   `json:"unavailable_items"`
	TotalValue       int64 `json:"total_value"`
	OnSaleItems      int   `json:"on_sale_items"`
}

// Pagination represents pagination information
type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// AddToWishlistRequest represents add to wishlist request
type AddToWishlistRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

// GetWishlist retrieves the wishlist for a user or guest session
func (s *Service) GetWishlist(userID *uint, sessionID string, page, limit int) (*WishlistResponse, error) {
	var responses []WishlistItemResponse
	var total int

	if userID != nil {
		var items []WishlistItem
		var count int64

		query := s.db.Where("user_id = ?", *userID)
		if err := query.Model(&WishlistItem{}).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("failed to count wishlist items: %w", err)
		}
		total = int(count)

		offset := (page - 1) * limit
		if err := query.Order("added_at DESC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
			return nil, fmt.Errorf("failed to retrieve wishlist items: %w", err)
		}

		responses = make([]WishlistItemResponse, len(items))
		for i, item := range items {
			responses[i] = WishlistItemResponse{
				ID:        item.ID,
				ProductID: item.ProductID,
				Size:      item.Size,
				Color:     item.Color,
				AddedAt:   item.AddedAt,
			}
		}
	} else {
		sw, err := s.getGuestWishlist(sessionID)
		if err != nil {
			return nil, err
		}
		total = len(sw.Items)

		// Paginate the in-memory guest list
		start := (page - 1) * limit
		if start > len(sw.Items) {
			start = len(sw.Items)
		}
		end := start + limit
		if end > len(sw.Items) {
			end = len(sw.Items)
		}

		pageItems := sw.Items[start:end]
		responses = make([]WishlistItemResponse, len(pageItems))
		for i, item := range pageItems {
			responses[i] = WishlistItemResponse{
				ProductID: item.ProductID,
				Size:      item.Size,
				Color:     item.Color,
				AddedAt:   item.AddedAt,
			}
		}
	}

	if err := s.loadProductDetails(responses); err != nil {
		return nil, err
	}

	totalPages := (total + limit - 1) / limit

	return &WishlistResponse{
		Items: responses,
		Count: len(responses),
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
			HasPrev:    page > 1,
		},
		Summary: summarize(responses, total),
	}, nil
}

// AddToWishlist adds an item to the wishlist. Duplicates are rejected.
func (s *Service) AddToWishlist(userID *uint, sessionID string, req *AddToWishlistRequest) (*WishlistItemResponse, error) {
	var prod product.Product
	result := s.db.Where("id = ? AND is_active = ?", req.ProductID, true).First(&prod)
	if result.Error != nil {
		return nil, fmt.Errorf("product not found or inactive")
	}

	if req.Size != "" || req.Color != "" {
		if len(prod.Variants) == 0 {
			if err := s.db.Model(&prod).Association("Variants").Find(&prod.Variants); err != nil {
				return nil, fmt.Errorf("failed to load variants: %w", err)
			}
		}
		if len(prod.Variants) > 0 && prod.FindVariant(req.Size, req.Color) == nil {
			return nil, fmt.Errorf("size %s in %s is not available for this product", req.Size, req.Color)
		}
	}

	now := time.Now().UTC()

	if userID != nil {
		var existing WishlistItem
		err := s.db.Where("user_id = ? AND product_id = ? AND size = ? AND color = ?",
			*userID, req.ProductID, req.Size, req.Color).First(&existing).Error
		if err == nil {
			return nil, fmt.Errorf("item already exists in wishlist")
		}

		item := WishlistItem{
			UserID:    *userID,
			ProductID: req.ProductID,
			Size:      req.Size,
			Color:     req.Color,
			AddedAt:   now,
		}
		if err := s.db.Create(&item).Error; err != nil {
			return nil, fmt.Errorf("failed to add item to wishlist: %w", err)
		}

		responses := []WishlistItemResponse{{
			ID:        item.ID,
			ProductID: item.ProductID,
			Size:      item.Size,
			Color:     item.Color,
			AddedAt:   item.AddedAt,
		}}
		if err := s.loadProductDetails(responses); err != nil {
			return nil, err
		}
		return &responses[0], nil
	}

	sw, err := s.getGuestWishlist(sessionID)
	if err != nil {
		return nil, err
	}

	if !sw.Add(SessionWishlistItem{
		ProductID: req.ProductID,
		Size:      req.Size,
		Color:     req.Color,
		AddedAt:   now,
	}) {
		return nil, fmt.Errorf("item already exists in wishlist")
	}

	if err := s.saveGuestWishlist(sessionID, sw); err != nil {
		return nil, err
	}

	responses := []WishlistItemResponse{{
		ProductID: req.ProductID,
		Size:      req.Size,
		Color:     req.Color,
		AddedAt:   now,
	}}
	if err := s.loadProductDetails(responses); err != nil {
		return nil, err
	}
	return &responses[0], nil
}

// RemoveFromWishlist removes an item from the wishlist
func (s *Service) RemoveFromWishlist(userID *uint, sessionID string, productID uint, size, color string) error {
	if userID != nil {
		result := s.db.Where("user_id = ? AND product_id = ? AND size = ? AND color = ?",
			*userID, productID, size, color).Delete(&WishlistItem{})
		if result.Error != nil {
			return fmt.Errorf("failed to remove item from wishlist: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("item not found in wishlist")
		}
		return nil
	}

	sw, err := s.getGuestWishlist(sessionID)
	if err != nil {
		return err
	}
	if !sw.Remove(productID, size, color) {
		return fmt.Errorf("item not found in wishlist")
	}
	return s.saveGuestWishlist(sessionID, sw)
}

// ClearWishlist removes all items from the wishlist
func (s *Service) ClearWishlist(userID *uint, sessionID string) error {
	if userID != nil {
		return s.db.Where("user_id = ?", *userID).Delete(&WishlistItem{}).Error
	}
	ctx := context.Background()
	return s.redisClient.Del(ctx, guestWishlistKeyPrefix+sessionID).Err()
}

// GetWishlistCount returns the number of items in the wishlist
func (s *Service) GetWishlistCount(userID *uint, sessionID string) (int64, error) {
	if userID != nil {
		var count int64
		err := s.db.Model(&WishlistItem{}).Where("user_id = ?", *userID).Count(&count).Error
		return count, err
	}
	sw, err := s.getGuestWishlist(sessionID)
	if err != nil {
		return 0, err
	}
	return int64(len(sw.Items)), nil
}

// IsInWishlist checks if a product is in the wishlist
func (s *Service) IsInWishlist(userID *uint, sessionID string, productID uint, size, color string) (bool, error) {
	if userID != nil {
		var count int64
		err := s.db.Model(&WishlistItem{}).
			Where("user_id = ? AND product_id = ? AND size = ? AND color = ?", *userID, productID, size, color).
			Count(&count).Error
		return count > 0, err
	}
	sw, err := s.getGuestWishlist(sessionID)
	if err != nil {
		return false, err
	}
	return sw.Contains(productID, size, color), nil
}

// MoveToCart moves an item from wishlist to cart. A size and color must
// be chosen by this point.
func (s *Service) MoveToCart(userID *uint, sessionID string, productID uint, size, color string, quantity int) error {
	if size == "" || color == "" {
		return fmt.Errorf("size and color are required to add to cart")
	}

	inWishlist, err := s.IsInWishlist(userID, sessionID, productID, size, color)
	if err != nil {
		return err
	}
	if !inWishlist {
		return fmt.Errorf("item not found in wishlist")
	}

	_, err = s.cartService.AddToCart(userID, sessionID, &cart.AddToCartRequest{
		ProductID: productID,
		Size:      size,
		Color:     color,
		Quantity:  quantity,
	})
	if err != nil {
		return fmt.Errorf("failed to add item to cart: %w", err)
	}

	return s.RemoveFromWishlist(userID, sessionID, productID, size, color)
}

// MergeGuestWishlistToUser merges guest wishlist lines into the user's
// wishlist on sign-in, dropping duplicates, then clears the session.
func (s *Service) MergeGuestWishlistToUser(userID uint, sessionID string) error {
	sw, err := s.getGuestWishlist(sessionID)
	if err != nil || len(sw.Items) == 0 {
		return nil
	}

	var existing []WishlistItem
	if err := s.db.Where("user_id = ?", userID).Find(&existing).Error; err != nil {
		return fmt.Errorf("failed to load wishlist for merge: %w", err)
	}

	creates := PlanMerge(userID, sw.Items, existing)
	if len(creates) > 0 {
		if err := s.db.Create(&creates).Error; err != nil {
			return fmt.Errorf("failed to merge guest wishlist: %w", err)
		}
	}

	ctx := context.Background()
	return s.redisClient.Del(ctx, guestWishlistKeyPrefix+sessionID).Err()
}

// Private helper methods

func (s *Service) getGuestWishlist(sessionID string) (*SessionWishlist, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session ID required for guest wishlist")
	}

	ctx := context.Background()
	data, err := s.redisClient.Get(ctx, guestWishlistKeyPrefix+sessionID).Result()
	if err == redis.Nil {
		return &SessionWishlist{SessionID: sessionID, UpdatedAt: time.Now().UTC()}, nil
	} else if err != nil {
		return nil, err
	}

	var sw SessionWishlist
	if err := json.Unmarshal([]byte(data), &sw); err != nil {
		return nil, err
	}
	return &sw, nil
}

func (s *Service) saveGuestWishlist(sessionID string, sw *SessionWishlist) error {
	sw.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(sw)
	if err != nil {
		return err
	}
	ctx := context.Background()
	return s.redisClient.Set(ctx, guestWishlistKeyPrefix+sessionID, data, s.config.Storefront.GuestSessionTTL).Err()
}

func (s *Service) loadProductDetails(items []WishlistItemResponse) error {
	for i := range items {
		var prod product.Product
		err := s.db.Preload("Category").Preload("Brand").Preload("Images").
			Where("id = ?", items[i].ProductID).First(&prod).Error
		if err != nil {
			items[i].IsAvailable = false
			continue
		}
		items[i].Product = &prod
		items[i].IsAvailable = prod.IsActive
		items[i].CurrentPrice = prod.RetailPrice()
		items[i].OnSale = prod.IsOnSale()
	}
	return nil
}

func summarize(items []WishlistItemResponse, total int) WishlistSummary {
	summary := WishlistSummary{TotalItems: total}

	for _, item := range items {
		if item.IsAvailable {
			summary.AvailableItems++
			summary.TotalValue += item.CurrentPrice
		} else {
			summary.UnavailableItems++
		}
		if item.OnSale {
			summary.OnSaleItems++
		}
	}

	return summary
}

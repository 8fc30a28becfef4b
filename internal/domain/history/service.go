// internal/domain/history/service.go
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/your-org/footwear-storefront/internal/config"
	"github.com/your-org/footwear-storefront/internal/domain/product"
	"gorm.io/gorm"
)

const guestHistoryKeyPrefix = "history:v1:session:"

// Service tracks recently viewed products. Signed-in users get durable
// rows in Postgres; guests get a Redis list that expires with the
// session.
type Service struct {
	db          *gorm.DB
	redisClient *redis.Client
	config      *config.Config
}

// NewService creates a new view history service
func NewService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *Service {
	return &Service{
		db:          db,
		redisClient: redisClient,
		config:      cfg,
	}
}

// ViewedProduct is a history entry with product details attached
type ViewedProduct struct {
	ProductID uint             `json:"product_id"`
	Product   *product.Product `json:"product,omitempty"`
	ViewedAt  time.Time        `json:"viewed_at"`
}

// RecordView notes that the viewer looked at a product. Unknown or
// inactive products are ignored silently.
func (s *Service) RecordView(userID *uint, sessionID string, productID uint) error {
	var count int64
	s.db.Model(&product.Product{}).Where("id = ? AND is_active = ?", productID, true).Count(&count)
	if count == 0 {
		return nil
	}

	now := time.Now().UTC()

	if userID != nil {
		return s.recordUserView(*userID, productID, now)
	}

	h, err := s.loadGuestHistory(sessionID)
	if err != nil {
		return err
	}

	h.Push(ViewEvent{ProductID: productID, ViewedAt: now}, s.config.Storefront.ViewHistoryLimit)
	return s.saveGuestHistory(sessionID, h)
}

// GetHistory returns the viewer's recently seen products, newest first
func (s *Service) GetHistory(userID *uint, sessionID string) ([]ViewedProduct, error) {
	events, err := s.loadEvents(userID, sessionID)
	if err != nil {
		return nil, err
	}

	viewed := make([]ViewedProduct, 0, len(events))
	for _, e := range events {
		vp := ViewedProduct{ProductID: e.ProductID, ViewedAt: e.ViewedAt}

		var prod product.Product
		if err := s.db.Preload("Brand").Preload("Images").
			Where("id = ? AND is_active = ?", e.ProductID, true).First(&prod).Error; err == nil {
			vp.Product = &prod
		}
		viewed = append(viewed, vp)
	}

	return viewed, nil
}

// ClearHistory drops the viewer's history
func (s *Service) ClearHistory(userID *uint, sessionID string) error {
	if userID != nil {
		return s.db.Where("user_id = ?", *userID).Delete(&ProductView{}).Error
	}

	ctx := context.Background()
	return s.redisClient.Del(ctx, guestHistoryKeyPrefix+sessionID).Err()
}

// MergeGuestHistoryToUser folds the guest session's history into the
// user's rows on sign-in, keeping each product's most recent view.
func (s *Service) MergeGuestHistoryToUser(userID uint, sessionID string) error {
	guest, err := s.loadGuestHistory(sessionID)
	if err != nil || len(guest.Events) == 0 {
		return nil
	}

	own, err := s.loadEvents(&userID, "")
	if err != nil {
		return err
	}

	merged := Merge(own, guest.Events, s.config.Storefront.ViewHistoryLimit)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&ProductView{}).Error; err != nil {
			return err
		}
		for _, e := range merged {
			row := ProductView{UserID: userID, ProductID: e.ProductID, ViewedAt: e.ViewedAt}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to merge view history: %w", err)
	}

	ctx := context.Background()
	return s.redisClient.Del(ctx, guestHistoryKeyPrefix+sessionID).Err()
}

func (s *Service) recordUserView(userID, productID uint, viewedAt time.Time) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := upsertView(tx, userID, productID, viewedAt); err != nil {
			return err
		}
		return trimUserViews(tx, userID, s.config.Storefront.ViewHistoryLimit)
	})
}

// upsertView refreshes the (user, product) row's view time, creating
// the row on first view.
func upsertView(tx *gorm.DB, userID, productID uint, viewedAt time.Time) error {
	var existing ProductView
	err := tx.Where("user_id = ? AND product_id = ?", userID, productID).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return tx.Create(&ProductView{UserID: userID, ProductID: productID, ViewedAt: viewedAt}).Error
	}
	if err != nil {
		return err
	}

	if viewedAt.After(existing.ViewedAt) {
		return tx.Model(&existing).Update("viewed_at", viewedAt).Error
	}
	return nil
}

// trimUserViews deletes rows beyond the history limit, oldest first
func trimUserViews(tx *gorm.DB, userID uint, limit int) error {
	if limit <= 0 {
		return nil
	}

	var overflow []ProductView
	if err := tx.Where("user_id = ?", userID).
		Order("viewed_at DESC").Offset(limit).Find(&overflow).Error; err != nil {
		return err
	}
	if len(overflow) == 0 {
		return nil
	}

	ids := make([]uint, len(overflow))
	for i, v := range overflow {
		ids[i] = v.ID
	}
	return tx.Delete(&ProductView{}, ids).Error
}

func (s *Service) loadEvents(userID *uint, sessionID string) ([]ViewEvent, error) {
	if userID != nil {
		var rows []ProductView
		err := s.db.Where("user_id = ?", *userID).
			Order("viewed_at DESC").Limit(s.config.Storefront.ViewHistoryLimit).
			Find(&rows).Error
		if err != nil {
			return nil, fmt.Errorf("failed to load view history: %w", err)
		}

		events := make([]ViewEvent, len(rows))
		for i, row := range rows {
			events[i] = ViewEvent{ProductID: row.ProductID, ViewedAt: row.ViewedAt}
		}
		return events, nil
	}

	h, err := s.loadGuestHistory(sessionID)
	if err != nil {
		return nil, err
	}
	return h.Events, nil
}

func (s *Service) loadGuestHistory(sessionID string) (*ViewHistory, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session ID required for guest history")
	}

	ctx := context.Background()
	data, err := s.redisClient.Get(ctx, guestHistoryKeyPrefix+sessionID).Result()
	if err == redis.Nil {
		return &ViewHistory{}, nil
	} else if err != nil {
		return nil, err
	}

	var h ViewHistory
	if err := json.Unmarshal([]byte(data), &h); err != nil {
		return nil, err
	}
	return &h, nil
}

func (s *Service) saveGuestHistory(sessionID string, h *ViewHistory) error {
	h.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(h)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return s.redisClient.Set(ctx, guestHistoryKeyPrefix+sessionID, data, s.config.Storefront.GuestSessionTTL).Err()
}

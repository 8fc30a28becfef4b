package wishlist

import (
	"time"
)

// WishlistItem represents a saved product for a signed-in user. Size
// and color are optional; empty values mean "no preference yet".
// Removal hard-deletes the row so the same line can be saved again
// later without tripping the unique index.
type WishlistItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_wishlist_line" json:"user_id"`
	ProductID uint      `gorm:"not null;index;uniqueIndex:idx_wishlist_line" json:"product_id"`
	Size      string    `gorm:"size:10;uniqueIndex:idx_wishlist_line" json:"size"`
	Color     string    `gorm:"size:50;uniqueIndex:idx_wishlist_line" json:"color"`
	AddedAt   time.Time `json:"added_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the table name
func (WishlistItem) TableName() string {
	return "wishlist_items"
}

// SessionWishlistItem is a guest wishlist entry stored in Redis
type SessionWishlistItem struct {
	ProductID uint      `json:"product_id"`
	Size      string    `json:"size"`
	Color     string    `json:"color"`
	AddedAt   time.Time `json:"added_at"`
}

// SessionWishlist is the Redis payload for a guest wishlist
type SessionWishlist struct {
	SessionID string                `json:"session_id"`
	Items     []SessionWishlistItem `json:"items"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// Contains reports whether the wishlist already holds the given line
func (sw *SessionWishlist) Contains(productID uint, size, color string) bool {
	for _, item := range sw.Items {
		if item.ProductID == productID && item.Size == size && item.Color == color {
			return true
		}
	}
	return false
}

// Add appends a line if it is not already present. Returns false when
// the line was a duplicate.
func (sw *SessionWishlist) Add(item SessionWishlistItem) bool {
	if sw.Contains(item.ProductID, item.Size, item.Color) {
		return false
	}
	sw.Items = append(sw.Items, item)
	return true
}

// Remove drops a line, reporting whether it existed
func (sw *SessionWishlist) Remove(productID uint, size, color string) bool {
	for i, item := range sw.Items {
		if item.ProductID == productID && item.Size == size && item.Color == color {
			sw.Items = append(sw.Items[:i], sw.Items[i+1:]...)
			return true
		}
	}
	return false
}

// PlanMerge returns the guest lines missing from the user's wishlist.
// Duplicates are dropped rather than doubled.
func PlanMerge(userID uint, guest []SessionWishlistItem, existing []WishlistItem) []WishlistItem {
	type line struct {
		productID uint
		size      string
		color     string
	}

	seen := make(map[line]bool, len(existing))
	for _, item := range existing {
		seen[line{item.ProductID, item.Size, item.Color}] = true
	}

	var creates []WishlistItem
	for _, item := range guest {
		key := line{item.ProductID, item.Size, item.Color}
		if seen[key] {
			continue
		}
		seen[key] = true
		creates = append(creates, WishlistItem{
			UserID:    userID,
			ProductID: item.ProductID,
			Size:      item.Size,
			Color:     item.Color,
			AddedAt:   item.AddedAt,
		})
	}
	return creates
}

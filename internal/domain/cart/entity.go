// internal/domain/cart/entity.go
package cart

import (
	"time"
)

// CartItem represents a cart line stored in database for authenticated
// users. Line identity is (user_id, product_id, size, color). Lines are
// hard-deleted on removal so the unique index never blocks re-adding a
// previously removed line.
type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index:idx_cart_line,unique" json:"user_id"`
	ProductID uint      `gorm:"not null;index:idx_cart_line,unique" json:"product_id"`
	Size      string    `gorm:"not null;size:20;index:idx_cart_line,unique" json:"size"`
	Color     string    `gorm:"not null;size:50;index:idx_cart_line,unique" json:"color"`
	Quantity  int       `gorm:"not null;default:1" json:"quantity"`
	Price     int64     `gorm:"not null" json:"price"` // Unit price at time of adding
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the table name
func (CartItem) TableName() string {
	return "cart_items"
}

// SessionCart represents a cart for guest users (stored in Redis as JSON)
type SessionCart struct {
	SessionID string            `json:"session_id"`
	Items     []SessionCartItem `json:"items"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	ExpiresAt time.Time         `json:"expires_at"`
}

// SessionCartItem represents a cart line for guest users
type SessionCartItem struct {
	ProductID uint      `json:"product_id"`
	Size      string    `json:"size"`
	Color     string    `json:"color"`
	Quantity  int       `json:"quantity"`
	Price     int64     `json:"price"`
	AddedAt   time.Time `json:"added_at"`
}

// CartTotals represents calculated cart totals
type CartTotals struct {
	ItemCount      int   `json:"item_count"`     // Number of unique lines
	TotalQuantity  int   `json:"total_quantity"` // Sum of all quantities
	SubTotal       int64 `json:"sub_total"`      // Σ(unit price × quantity)
	DiscountAmount int64 `json:"discount_amount"`
	TotalAmount    int64 `json:"total_amount"` // SubTotal - DiscountAmount
}

// SameLine reports whether the session item carries the given line identity.
func (i *SessionCartItem) SameLine(productID uint, size, color string) bool {
	return i.ProductID == productID && i.Size == size && i.Color == color
}

// Upsert adds quantity to an existing line or appends a new one. The
// line identity is (product_id, size, color); price is refreshed on
// increments so a line always carries the latest quote.
func (sc *SessionCart) Upsert(item SessionCartItem) {
	for i := range sc.Items {
		if sc.Items[i].SameLine(item.ProductID, item.Size, item.Color) {
			sc.Items[i].Quantity += item.Quantity
			sc.Items[i].Price = item.Price
			return
		}
	}
	sc.Items = append(sc.Items, item)
}

// SetQuantity replaces a line's quantity; 0 removes the line. Returns
// false when the line is not present.
func (sc *SessionCart) SetQuantity(productID uint, size, color string, quantity int) bool {
	for i := range sc.Items {
		if sc.Items[i].SameLine(productID, size, color) {
			if quantity == 0 {
				sc.Items = append(sc.Items[:i], sc.Items[i+1:]...)
			} else {
				sc.Items[i].Quantity = quantity
			}
			return true
		}
	}
	return false
}

// MergePlan describes how a guest cart folds into the user's rows:
// lines without a matching row become creates, matching rows get their
// quantity incremented.
type MergePlan struct {
	Creates []CartItem
	Updates []CartItem
}

// PlanMerge computes the merge of guest lines into existing user rows.
// Matching is by (product_id, size, color); quantities accumulate.
func PlanMerge(userID uint, guest []SessionCartItem, existing []CartItem) MergePlan {
	byLine := make(map[lineKey]*CartItem, len(existing))
	for i := range existing {
		it := &existing[i]
		byLine[lineKey{it.ProductID, it.Size, it.Color}] = it
	}

	var plan MergePlan
	for _, g := range guest {
		if row, ok := byLine[lineKey{g.ProductID, g.Size, g.Color}]; ok {
			updated := *row
			updated.Quantity += g.Quantity
			plan.Updates = append(plan.Updates, updated)
			continue
		}
		plan.Creates = append(plan.Creates, CartItem{
			UserID:    userID,
			ProductID: g.ProductID,
			Size:      g.Size,
			Color:     g.Color,
			Quantity:  g.Quantity,
			Price:     g.Price,
		})
	}
	return plan
}

type lineKey struct {
	productID uint
	size      string
	color     string
}

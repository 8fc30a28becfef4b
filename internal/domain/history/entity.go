// internal/domain/history/entity.go
package history

import "time"

// ProductView is a signed-in user's view of a product. One row per
// (user, product); a repeat view updates ViewedAt instead of adding a
// row.
type ProductView struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_product_view" json:"user_id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_product_view" json:"product_id"`
	ViewedAt  time.Time `gorm:"not null;index" json:"viewed_at"`
}

// TableName overrides the table name
func (ProductView) TableName() string {
	return "product_views"
}

// ViewEvent records a single product view
type ViewEvent struct {
	ProductID uint      `json:"product_id"`
	ViewedAt  time.Time `json:"viewed_at"`
}

// ViewHistory is the Redis payload for a guest's recently seen
// products, most recent first
type ViewHistory struct {
	Events    []ViewEvent `json:"events"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Push records a view at the front of the list. A repeat view of the
// same product moves it to the front instead of duplicating it. The
// list never grows past limit.
func (h *ViewHistory) Push(event ViewEvent, limit int) {
	for i, e := range h.Events {
		if e.ProductID == event.ProductID {
			h.Events = append(h.Events[:i], h.Events[i+1:]...)
			break
		}
	}

	h.Events = append([]ViewEvent{event}, h.Events...)
	if limit > 0 && len(h.Events) > limit {
		h.Events = h.Events[:limit]
	}
}

// Merge combines two histories into one, keeping each product's most
// recent view, ordered newest first and capped at limit.
func Merge(a, b []ViewEvent, limit int) []ViewEvent {
	latest := make(map[uint]ViewEvent)
	for _, e := range append(append([]ViewEvent{}, a...), b...) {
		if cur, ok := latest[e.ProductID]; !ok || e.ViewedAt.After(cur.ViewedAt) {
			latest[e.ProductID] = e
		}
	}

	merged := make([]ViewEvent, 0, len(latest))
	for _, e := range latest {
		merged = append(merged, e)
	}

	// Newest first
	for i := 1; i < len(merged); i++ {
		for j := i; j > 0 && merged[j].ViewedAt.After(merged[j-1].ViewedAt); j-- {
			merged[j], merged[j-1] = merged[j-1], merged[j]
		}
	}

	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

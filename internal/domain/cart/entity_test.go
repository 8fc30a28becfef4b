// internal/domain/cart/entity_test.go
package cart

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionItem(productID uint, size, color string, qty int, price int64) SessionCartItem {
	return SessionCartItem{
		ProductID: productID,
		Size:      size,
		Color:     color,
		Quantity:  qty,
		Price:     price,
		AddedAt:   time.Now().UTC(),
	}
}

func TestSessionCartUpsert(t *testing.T) {
	sc := &SessionCart{SessionID: "sess-1"}

	sc.Upsert(sessionItem(1, "42", "black", 2, 10000))
	require.Len(t, sc.Items, 1)
	assert.Equal(t, 2, sc.Items[0].Quantity)

	// Same line accumulates quantity instead of appending
	sc.Upsert(sessionItem(1, "42", "black", 3, 10000))
	require.Len(t, sc.Items, 1)
	assert.Equal(t, 5, sc.Items[0].Quantity)

	// Different size is a separate line
	sc.Upsert(sessionItem(1, "43", "black", 1, 10000))
	require.Len(t, sc.Items, 2)

	// Different color is a separate line too
	sc.Upsert(sessionItem(1, "42", "white", 1, 10000))
	require.Len(t, sc.Items, 3)
}

func TestSessionCartUpsertRefreshesPrice(t *testing.T) {
	sc := &SessionCart{SessionID: "sess-1"}

	sc.Upsert(sessionItem(7, "40", "tan", 1, 12000))
	sc.Upsert(sessionItem(7, "40", "tan", 1, 9000))

	require.Len(t, sc.Items, 1)
	assert.Equal(t, 2, sc.Items[0].Quantity)
	assert.Equal(t, int64(9000), sc.Items[0].Price)
}

func TestSessionCartSetQuantity(t *testing.T) {
	sc := &SessionCart{SessionID: "sess-1"}
	sc.Upsert(sessionItem(1, "42", "black", 2, 10000))
	sc.Upsert(sessionItem(2, "38", "red", 1, 15000))

	found := sc.SetQuantity(1, "42", "black", 5)
	assert.True(t, found)
	assert.Equal(t, 5, sc.Items[0].Quantity)

	// Zero removes the line
	found = sc.SetQuantity(1, "42", "black", 0)
	assert.True(t, found)
	require.Len(t, sc.Items, 1)
	assert.Equal(t, uint(2), sc.Items[0].ProductID)

	// Unknown line reports not found
	found = sc.SetQuantity(99, "42", "black", 1)
	assert.False(t, found)
}

func TestPlanMerge(t *testing.T) {
	guest := []SessionCartItem{
		sessionItem(1, "42", "black", 2, 10000), // matches an existing row
		sessionItem(3, "44", "brown", 1, 20000), // new line
	}
	existing := []CartItem{
		{UserID: 9, ProductID: 1, Size: "42", Color: "black", Quantity: 3, Price: 10000},
		{UserID: 9, ProductID: 2, Size: "38", Color: "red", Quantity: 1, Price: 15000},
	}
	existing[0].ID = 101
	existing[1].ID = 102

	plan := PlanMerge(9, guest, existing)

	require.Len(t, plan.Updates, 1)
	assert.Equal(t, uint(101), plan.Updates[0].ID)
	assert.Equal(t, 5, plan.Updates[0].Quantity)

	require.Len(t, plan.Creates, 1)
	assert.Equal(t, uint(9), plan.Creates[0].UserID)
	assert.Equal(t, uint(3), plan.Creates[0].ProductID)
	assert.Equal(t, 1, plan.Creates[0].Quantity)
	assert.Equal(t, int64(20000), plan.Creates[0].Price)
}

func TestPlanMergeEmptyGuestCart(t *testing.T) {
	existing := []CartItem{
		{UserID: 9, ProductID: 1, Size: "42", Color: "black", Quantity: 3, Price: 10000},
	}

	plan := PlanMerge(9, nil, existing)
	assert.Empty(t, plan.Creates)
	assert.Empty(t, plan.Updates)
}

func TestCalculateTotals(t *testing.T) {
	items := []CartItemResponse{
		{ProductID: 1, Quantity: 2, Price: 10000},
		{ProductID: 2, Quantity: 1, Price: 15000},
	}

	totals := calculateTotals(items, 0)
	assert.Equal(t, 2, totals.ItemCount)
	assert.Equal(t, 3, totals.TotalQuantity)
	assert.Equal(t, int64(35000), totals.SubTotal)
	assert.Equal(t, int64(35000), totals.TotalAmount)

	totals = calculateTotals(items, 5000)
	assert.Equal(t, int64(5000), totals.DiscountAmount)
	assert.Equal(t, int64(30000), totals.TotalAmount)

	// Discount never drives the total negative
	totals = calculateTotals(items, 99999999)
	assert.Equal(t, int64(35000), totals.DiscountAmount)
	assert.Equal(t, int64(0), totals.TotalAmount)
}

func TestCalculateTotalsEmptyCart(t *testing.T) {
	totals := calculateTotals(nil, 0)
	assert.Equal(t, 0, totals.ItemCount)
	assert.Equal(t, int64(0), totals.SubTotal)
	assert.Equal(t, int64(0), totals.TotalAmount)
}

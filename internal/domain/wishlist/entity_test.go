package wishlist

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func guestItem(productID uint, size, color string) SessionWishlistItem {
	return SessionWishlistItem{ProductID: productID, Size: size, Color: color, AddedAt: time.Now().UTC()}
}

func TestSessionWishlistAddRejectsDuplicates(t *testing.T) {
	sw := &SessionWishlist{SessionID: "sess-1"}

	assert.True(t, sw.Add(guestItem(1, "42", "black")))
	assert.False(t, sw.Add(guestItem(1, "42", "black")))
	assert.True(t, sw.Add(guestItem(1, "43", "black")))
	assert.Len(t, sw.Items, 2)
}

func TestSessionWishlistRemove(t *testing.T) {
	sw := &SessionWishlist{SessionID: "sess-1"}
	sw.Add(guestItem(1, "42", "black"))
	sw.Add(guestItem(2, "", ""))

	assert.True(t, sw.Remove(1, "42", "black"))
	assert.False(t, sw.Remove(1, "42", "black"))
	assert.Len(t, sw.Items, 1)
}

func TestPlanMergeDropsDuplicates(t *testing.T) {
	guest := []SessionWishlistItem{
		guestItem(1, "42", "black"), // already saved
		guestItem(2, "", ""),        // new
		guestItem(2, "", ""),        // duplicate within the guest list itself
	}
	existing := []WishlistItem{
		{UserID: 7, ProductID: 1, Size: "42", Color: "black"},
	}

	creates := PlanMerge(7, guest, existing)
	require.Len(t, creates, 1)
	assert.Equal(t, uint(2), creates[0].ProductID)
	assert.Equal(t, uint(7), creates[0].UserID)
}

package product

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheReturnsStoredProductWithinTTL(t *testing.T) {
	current := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	cache := NewCache(5 * time.Minute)
	cache.now = func() time.Time { return current }

	cache.Set(&Product{ID: 42, Name: "Trail Runner X"})

	got := cache.Get(42)
	require.NotNil(t, got)
	assert.Equal(t, "Trail Runner X", got.Name)

	// Just under the TTL the entry is still served.
	current = current.Add(5*time.Minute - time.Second)
	assert.NotNil(t, cache.Get(42))
}

func TestCacheExpiresAfterTTL(t *testing.T) {
	current := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	cache := NewCache(5 * time.Minute)
	cache.now = func() time.Time { return current }

	cache.Set(&Product{ID: 7})

	current = current.Add(5 * time.Minute)
	assert.Nil(t, cache.Get(7), "entry at exactly TTL age should read as a miss")
}

func TestCacheMissForUnknownID(t *testing.T) {
	cache := NewCache(5 * time.Minute)
	assert.Nil(t, cache.Get(999))
}

func TestCacheSetOverwritesAndRestamps(t *testing.T) {
	current := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	cache := NewCache(5 * time.Minute)
	cache.now = func() time.Time { return current }

	cache.Set(&Product{ID: 1, Name: "old"})
	current = current.Add(4 * time.Minute)
	cache.Set(&Product{ID: 1, Name: "new"})

	// 4m + 2m after refresh: original stamp would have expired, refreshed one has not.
	current = current.Add(2 * time.Minute)
	got := cache.Get(1)
	require.NotNil(t, got)
	assert.Equal(t, "new", got.Name)
}

func TestCacheInvalidateAndClear(t *testing.T) {
	cache := NewCache(5 * time.Minute)
	cache.Set(&Product{ID: 1})
	cache.Set(&Product{ID: 2})

	cache.Invalidate(1)
	assert.Nil(t, cache.Get(1))
	assert.NotNil(t, cache.Get(2))

	cache.Clear()
	assert.Zero(t, cache.Len())
	assert.Nil(t, cache.Get(2))
}

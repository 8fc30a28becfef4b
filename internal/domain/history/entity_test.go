package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(sec int) time.Time {
	return time.Date(2025, 6, 1, 12, 0, sec, 0, time.UTC)
}

func TestPushMovesRepeatViewToFront(t *testing.T) {
	h := &ViewHistory{}
	h.Push(ViewEvent{ProductID: 1, ViewedAt: at(0)}, 10)
	h.Push(ViewEvent{ProductID: 2, ViewedAt: at(1)}, 10)
	h.Push(ViewEvent{ProductID: 1, ViewedAt: at(2)}, 10)

	require.Len(t, h.Events, 2)
	assert.Equal(t, uint(1), h.Events[0].ProductID)
	assert.Equal(t, at(2), h.Events[0].ViewedAt)
	assert.Equal(t, uint(2), h.Events[1].ProductID)
}

func TestPushEnforcesLimit(t *testing.T) {
	h := &ViewHistory{}
	for i := 1; i <= 6; i++ {
		h.Push(ViewEvent{ProductID: uint(i), ViewedAt: at(i)}, 4)
	}

	require.Len(t, h.Events, 4)
	assert.Equal(t, uint(6), h.Events[0].ProductID)
	assert.Equal(t, uint(3), h.Events[3].ProductID)
}

func TestMergeKeepsMostRecentViewPerProduct(t *testing.T) {
	user := []ViewEvent{
		{ProductID: 1, ViewedAt: at(5)},
		{ProductID: 2, ViewedAt: at(1)},
	}
	guest := []ViewEvent{
		{ProductID: 2, ViewedAt: at(7)},
		{ProductID: 3, ViewedAt: at(3)},
	}

	merged := Merge(user, guest, 10)
	require.Len(t, merged, 3)
	assert.Equal(t, uint(2), merged[0].ProductID)
	assert.Equal(t, at(7), merged[0].ViewedAt)
	assert.Equal(t, uint(1), merged[1].ProductID)
	assert.Equal(t, uint(3), merged[2].ProductID)
}

func TestMergeCapsAtLimit(t *testing.T) {
	var a, b []ViewEvent
	for i := 1; i <= 5; i++ {
		a = append(a, ViewEvent{ProductID: uint(i), ViewedAt: at(i)})
		b = append(b, ViewEvent{ProductID: uint(i + 10), ViewedAt: at(i + 20)})
	}

	merged := Merge(a, b, 3)
	require.Len(t, merged, 3)
	// The newest three are all from b
	assert.Equal(t, uint(15), merged[0].ProductID)
	assert.Equal(t, uint(14), merged[1].ProductID)
	assert.Equal(t, uint(13), merged[2].ProductID)
}

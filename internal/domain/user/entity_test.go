// internal/domain/user/entity_test.go
package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsWholesaleVerified(t *testing.T) {
	tests := []struct {
		status   string
		verified bool
	}{
		{WholesaleStatusNone, false},
		{WholesaleStatusPending, false},
		{WholesaleStatusApproved, true},
		{WholesaleStatusRejected, false},
	}

	for _, tt := range tests {
		u := User{WholesaleStatus: tt.status}
		assert.Equal(t, tt.verified, u.IsWholesaleVerified(), "status %s", tt.status)
	}
}

func TestCanApplyForWholesale(t *testing.T) {
	tests := []struct {
		status   string
		canApply bool
	}{
		{WholesaleStatusNone, true},
		{WholesaleStatusPending, false},
		{WholesaleStatusApproved, false},
		{WholesaleStatusRejected, true},
	}

	for _, tt := range tests {
		u := User{WholesaleStatus: tt.status}
		assert.Equal(t, tt.canApply, u.CanApplyForWholesale(), "status %s", tt.status)
	}
}

func TestGetDisplayName(t *testing.T) {
	u := User{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}
	assert.Equal(t, "Ada Lovelace", u.GetDisplayName())

	u = User{Email: "ada@example.com"}
	assert.Equal(t, "ada@example.com", u.GetDisplayName())
}

// internal/domain/order/entity_test.go
package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/your-org/footwear-storefront/internal/config"
)

func TestCanBeCancelled(t *testing.T) {
	cancellable := []OrderStatus{OrderStatusPending, OrderStatusPaymentProcessing, OrderStatusConfirmed}
	for _, st := range cancellable {
		o := Order{Status: st}
		assert.True(t, o.CanBeCancelled(), "status %s", st)
	}

	frozen := []OrderStatus{OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled, OrderStatusCompleted}
	for _, st := range frozen {
		o := Order{Status: st}
		assert.False(t, o.CanBeCancelled(), "status %s", st)
	}
}

func TestStatusTransitions(t *testing.T) {
	s := &Service{}

	tests := []struct {
		from, to OrderStatus
		valid    bool
	}{
		{OrderStatusPending, OrderStatusConfirmed, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusConfirmed, OrderStatusProcessing, true},
		{OrderStatusProcessing, OrderStatusShipped, true},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusDelivered, OrderStatusCompleted, true},
		{OrderStatusShipped, OrderStatusPending, false},
		{OrderStatusDelivered, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusConfirmed, false},
		{OrderStatusCompleted, OrderStatusRefunded, false},
	}

	for _, tt := range tests {
		got := s.isValidStatusTransition(tt.from, tt.to)
		assert.Equal(t, tt.valid, got, "%s -> %s", tt.from, tt.to)
	}
}

func TestCalculateShipping(t *testing.T) {
	s := &Service{config: &config.Config{
		Storefront: config.StorefrontConfig{FreeShippingThreshold: 299900},
	}}

	assert.Equal(t, int64(999), s.calculateShipping("standard", 100000))
	assert.Equal(t, int64(0), s.calculateShipping("standard", 299900))
	// Express never qualifies for free shipping
	assert.Equal(t, int64(1999), s.calculateShipping("express", 500000))
	assert.Equal(t, int64(2999), s.calculateShipping("overnight", 10000))
	assert.Equal(t, int64(999), s.calculateShipping("unknown", 10000))
}

// internal/domain/cart/coupon_store.go
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/your-org/footwear-storefront/internal/domain/coupon"
)

// couponStore persists the currently applied coupon per cart owner.
type couponStore interface {
	Get(key string) *coupon.Application
	Set(key string, app *coupon.Application, ttl time.Duration) error
	Clear(key string) error
}

// redisCouponStore keeps coupon applications in Redis alongside the
// guest session state.
type redisCouponStore struct {
	client *redis.Client
}

func (r *redisCouponStore) Get(key string) *coupon.Application {
	data, err := r.client.Get(context.Background(), key).Result()
	if err != nil {
		return nil
	}

	var app coupon.Application
	if err := json.Unmarshal([]byte(data), &app); err != nil {
		return nil
	}
	return &app
}

func (r *redisCouponStore) Set(key string, app *coupon.Application, ttl time.Duration) error {
	data, err := json.Marshal(app)
	if err != nil {
		return fmt.Errorf("failed to serialize coupon application: %w", err)
	}
	return r.client.Set(context.Background(), key, data, ttl).Err()
}

func (r *redisCouponStore) Clear(key string) error {
	return r.client.Del(context.Background(), key).Err()
}

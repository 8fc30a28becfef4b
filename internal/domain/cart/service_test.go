// internal/domain/cart/service_test.go
package cart

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/footwear-storefront/internal/config"
	"github.com/your-org/footwear-storefront/internal/domain/coupon"
	"github.com/your-org/footwear-storefront/internal/domain/pricing"
	"github.com/your-org/footwear-storefront/internal/domain/product"
	"github.com/your-org/footwear-storefront/internal/domain/user"
	"gorm.io/gorm"
)

// fakeCouponStore keeps coupon applications in a map so mutation paths
// can run without Redis.
type fakeCouponStore struct {
	apps map[string]*coupon.Application
}

func newFakeCouponStore() *fakeCouponStore {
	return &fakeCouponStore{apps: make(map[string]*coupon.Application)}
}

func (f *fakeCouponStore) Get(key string) *coupon.Application {
	return f.apps[key]
}

func (f *fakeCouponStore) Set(key string, app *coupon.Application, ttl time.Duration) error {
	f.apps[key] = app
	return nil
}

func (f *fakeCouponStore) Clear(key string) error {
	delete(f.apps, key)
	return nil
}

func openCartTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&user.User{},
		&product.Category{},
		&product.Brand{},
		&product.Product{},
		&product.ProductImage{},
		&product.ProductVariant{},
		&product.PriceTier{},
		&coupon.Coupon{},
		&CartItem{},
	))
	return db
}

func newCartTestService(t *testing.T, db *gorm.DB, store couponStore) *Service {
	t.Helper()

	cfg := &config.Config{}
	cfg.Storefront.GuestSessionTTL = time.Hour

	return &Service{
		db:          db,
		config:      cfg,
		resolver:    pricing.NewResolver(),
		coupons:     coupon.NewService(db, cfg),
		couponStore: store,
		log:         logrus.New(),
	}
}

func seedCartTestUser(t *testing.T, db *gorm.DB) uint {
	t.Helper()

	u := user.User{Email: "buyer@example.com", Password: "x", IsActive: true}
	require.NoError(t, db.Create(&u).Error)
	return u.ID
}

func seedCartTestProduct(t *testing.T, db *gorm.DB) *product.Product {
	t.Helper()

	cat := product.Category{Name: "Sneakers", Slug: "sneakers", IsActive: true}
	require.NoError(t, db.Create(&cat).Error)

	prod := product.Product{
		SKU:           "SNK-001",
		Name:          "Court Classic",
		Slug:          "court-classic",
		Price:         12000,
		CategoryID:    cat.ID,
		IsActive:      true,
		TrackQuantity: false,
	}
	require.NoError(t, db.Create(&prod).Error)
	return &prod
}

func TestReAddRemovedCartLine(t *testing.T) {
	db := openCartTestDB(t)
	svc := newCartTestService(t, db, newFakeCouponStore())
	userID := seedCartTestUser(t, db)
	prod := seedCartTestProduct(t, db)

	req := &AddToCartRequest{ProductID: prod.ID, Size: "42", Color: "black", Quantity: 2}
	_, err := svc.AddToCart(&userID, "", req)
	require.NoError(t, err)

	_, err = svc.RemoveFromCart(&userID, "", prod.ID, "42", "black")
	require.NoError(t, err)

	// The same line must be addable again after removal
	resp, err := svc.AddToCart(&userID, "", req)
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 2, resp.Items[0].Quantity)
}

func TestReAddCartLineAfterClear(t *testing.T) {
	db := openCartTestDB(t)
	svc := newCartTestService(t, db, newFakeCouponStore())
	userID := seedCartTestUser(t, db)
	prod := seedCartTestProduct(t, db)

	req := &AddToCartRequest{ProductID: prod.ID, Size: "43", Color: "white", Quantity: 1}
	_, err := svc.AddToCart(&userID, "", req)
	require.NoError(t, err)

	require.NoError(t, svc.db.Where("user_id = ?", userID).Delete(&CartItem{}).Error)

	resp, err := svc.AddToCart(&userID, "", req)
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
}

func TestCartMutationClearsCoupon(t *testing.T) {
	db := openCartTestDB(t)
	store := newFakeCouponStore()
	svc := newCartTestService(t, db, store)
	userID := seedCartTestUser(t, db)
	prod := seedCartTestProduct(t, db)

	c := coupon.Coupon{
		Code:          "SAVE10",
		DiscountType:  coupon.DiscountTypePercentage,
		DiscountValue: 10,
		IsActive:      true,
	}
	require.NoError(t, db.Create(&c).Error)

	_, err := svc.AddToCart(&userID, "", &AddToCartRequest{ProductID: prod.ID, Size: "42", Color: "black", Quantity: 1})
	require.NoError(t, err)

	_, err = svc.ApplyCoupon(&userID, "", "save10")
	require.NoError(t, err)
	require.NotNil(t, store.Get(svc.couponKey(&userID, "")))

	// Adding again is a mutation and must drop the applied coupon
	_, err = svc.AddToCart(&userID, "", &AddToCartRequest{ProductID: prod.ID, Size: "42", Color: "black", Quantity: 1})
	require.NoError(t, err)
	assert.Nil(t, store.Get(svc.couponKey(&userID, "")))

	// Re-apply, then mutate through a quantity change
	_, err = svc.ApplyCoupon(&userID, "", "SAVE10")
	require.NoError(t, err)
	_, err = svc.UpdateCartItem(&userID, "", prod.ID, "42", "black", &UpdateCartItemRequest{Quantity: 1})
	require.NoError(t, err)
	assert.Nil(t, store.Get(svc.couponKey(&userID, "")))

	// Re-apply, then remove the line
	_, err = svc.ApplyCoupon(&userID, "", "SAVE10")
	require.NoError(t, err)
	_, err = svc.RemoveFromCart(&userID, "", prod.ID, "42", "black")
	require.NoError(t, err)
	assert.Nil(t, store.Get(svc.couponKey(&userID, "")))
}

func TestMeetsMinOrder(t *testing.T) {
	prod := &product.Product{MinOrderQuantity: 6}

	// Retail buyers have no minimum
	assert.True(t, meetsMinOrder(prod, false, 1))

	// Wholesale buyers must meet the product's minimum on a new line
	assert.False(t, meetsMinOrder(prod, true, 5))
	assert.True(t, meetsMinOrder(prod, true, 6))
	assert.True(t, meetsMinOrder(prod, true, 10))
}

// internal/domain/wishlist/service_test.go
package wishlist

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"github.com/your-org/footwear-storefront/internal/config"
	"github.com/your-org/footwear-storefront/internal/domain/product"
	"github.com/your-org/footwear-storefront/internal/domain/user"
	"gorm.io/gorm"
)

func openWishlistTestDB(t *testing.T) *gorm.DB {
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
		&WishlistItem{},
	))
	return db
}

func seedWishlistTestProduct(t *testing.T, db *gorm.DB) *product.Product {
	t.Helper()

	cat := product.Category{Name: "Boots", Slug: "boots", IsActive: true}
	require.NoError(t, db.Create(&cat).Error)

	prod := product.Product{
		SKU:        "BT-001",
		Name:       "Trail Boot",
		Slug:       "trail-boot",
		Price:      18000,
		CategoryID: cat.ID,
		IsActive:   true,
	}
	require.NoError(t, db.Create(&prod).Error)
	return &prod
}

func TestReAddRemovedWishlistLine(t *testing.T) {
	db := openWishlistTestDB(t)
	svc := &Service{db: db, config: &config.Config{}}

	u := user.User{Email: "saver@example.com", Password: "x", IsActive: true}
	require.NoError(t, db.Create(&u).Error)
	prod := seedWishlistTestProduct(t, db)

	req := &AddToWishlistRequest{ProductID: prod.ID, Size: "41", Color: "brown"}
	_, err := svc.AddToWishlist(&u.ID, "", req)
	require.NoError(t, err)

	require.NoError(t, svc.RemoveFromWishlist(&u.ID, "", prod.ID, "41", "brown"))

	// The same line must be saveable again after removal
	_, err = svc.AddToWishlist(&u.ID, "", req)
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&WishlistItem{}).Where("user_id = ?", u.ID).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

// internal/domain/history/service_test.go
package history

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/footwear-storefront/internal/config"
	"github.com/your-org/footwear-storefront/internal/domain/product"
	"github.com/your-org/footwear-storefront/internal/domain/user"
	"gorm.io/gorm"
)

func openHistoryTestDB(t *testing.T) *gorm.DB {
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
		&ProductView{},
	))
	return db
}

func newHistoryTestService(t *testing.T, db *gorm.DB, limit int) *Service {
	t.Helper()

	cfg := &config.Config{}
	cfg.Storefront.ViewHistoryLimit = limit
	cfg.Storefront.GuestSessionTTL = time.Hour

	return &Service{db: db, config: cfg}
}

func seedHistoryTestProducts(t *testing.T, db *gorm.DB, n int) []product.Product {
	t.Helper()

	cat := product.Category{Name: "Loafers", Slug: "loafers", IsActive: true}
	require.NoError(t, db.Create(&cat).Error)

	products := make([]product.Product, n)
	for i := range products {
		products[i] = product.Product{
			SKU:        fmt.Sprintf("LF-%03d", i+1),
			Name:       fmt.Sprintf("Loafer %d", i+1),
			Slug:       fmt.Sprintf("loafer-%d", i+1),
			Price:      9000,
			CategoryID: cat.ID,
			IsActive:   true,
		}
		require.NoError(t, db.Create(&products[i]).Error)
	}
	return products
}

func TestRecordUserViewPersistsRows(t *testing.T) {
	db := openHistoryTestDB(t)
	svc := newHistoryTestService(t, db, 10)
	products := seedHistoryTestProducts(t, db, 3)

	u := user.User{Email: "viewer@example.com", Password: "x", IsActive: true}
	require.NoError(t, db.Create(&u).Error)

	for _, p := range products {
		require.NoError(t, svc.RecordView(&u.ID, "", p.ID))
	}

	var count int64
	require.NoError(t, db.Model(&ProductView{}).Where("user_id = ?", u.ID).Count(&count).Error)
	assert.Equal(t, int64(3), count)

	viewed, err := svc.GetHistory(&u.ID, "")
	require.NoError(t, err)
	require.Len(t, viewed, 3)
}

func TestRecordUserViewDeduplicatesByProduct(t *testing.T) {
	db := openHistoryTestDB(t)
	svc := newHistoryTestService(t, db, 10)
	products := seedHistoryTestProducts(t, db, 2)

	u := user.User{Email: "viewer@example.com", Password: "x", IsActive: true}
	require.NoError(t, db.Create(&u).Error)

	require.NoError(t, svc.RecordView(&u.ID, "", products[0].ID))
	require.NoError(t, svc.RecordView(&u.ID, "", products[1].ID))

	// A repeat view refreshes the existing row instead of adding one
	require.NoError(t, svc.RecordView(&u.ID, "", products[0].ID))

	var count int64
	require.NoError(t, db.Model(&ProductView{}).Where("user_id = ?", u.ID).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestRecordUserViewEnforcesLimit(t *testing.T) {
	db := openHistoryTestDB(t)
	svc := newHistoryTestService(t, db, 2)
	products := seedHistoryTestProducts(t, db, 4)

	u := user.User{Email: "viewer@example.com", Password: "x", IsActive: true}
	require.NoError(t, db.Create(&u).Error)

	base := time.Now().UTC().Add(-time.Hour)
	for i, p := range products {
		require.NoError(t, db.Create(&ProductView{
			UserID:    u.ID,
			ProductID: p.ID,
			ViewedAt:  base.Add(time.Duration(i) * time.Minute),
		}).Error)
	}

	require.NoError(t, svc.RecordView(&u.ID, "", products[3].ID))

	var rows []ProductView
	require.NoError(t, db.Where("user_id = ?", u.ID).Order("viewed_at DESC").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, products[3].ID, rows[0].ProductID)
	assert.Equal(t, products[2].ID, rows[1].ProductID)
}

func TestClearUserHistory(t *testing.T) {
	db := openHistoryTestDB(t)
	svc := newHistoryTestService(t, db, 10)
	products := seedHistoryTestProducts(t, db, 2)

	u := user.User{Email: "viewer@example.com", Password: "x", IsActive: true}
	require.NoError(t, db.Create(&u).Error)

	for _, p := range products {
		require.NoError(t, svc.RecordView(&u.ID, "", p.ID))
	}

	require.NoError(t, svc.ClearHistory(&u.ID, ""))

	var count int64
	require.NoError(t, db.Model(&ProductView{}).Where("user_id = ?", u.ID).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestUserHistoryNewestFirst(t *testing.T) {
	db := openHistoryTestDB(t)
	svc := newHistoryTestService(t, db, 10)
	products := seedHistoryTestProducts(t, db, 3)

	u := user.User{Email: "viewer@example.com", Password: "x", IsActive: true}
	require.NoError(t, db.Create(&u).Error)

	base := time.Now().UTC().Add(-time.Hour)
	for i, p := range products {
		require.NoError(t, db.Create(&ProductView{
			UserID:    u.ID,
			ProductID: p.ID,
			ViewedAt:  base.Add(time.Duration(i) * time.Minute),
		}).Error)
	}

	viewed, err := svc.GetHistory(&u.ID, "")
	require.NoError(t, err)
	require.Len(t, viewed, 3)
	assert.Equal(t, products[2].ID, viewed[0].ProductID)
	assert.Equal(t, products[1].ID, viewed[1].ProductID)
	assert.Equal(t, products[0].ID, viewed[2].ProductID)
}

// internal/domain/inventory/service_test.go
package inventory

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/footwear-storefront/internal/config"
	"github.com/your-org/footwear-storefront/internal/domain/product"
	"gorm.io/gorm"
)

func openInventoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&product.Category{},
		&product.Product{},
		&product.ProductVariant{},
		&InventoryMovement{},
	))
	return db
}

func seedInventoryTestProduct(t *testing.T, db *gorm.DB, trackQuantity bool, quantity int) *product.Product {
	t.Helper()

	cat := product.Category{Name: "Runners", Slug: "runners", IsActive: true}
	require.NoError(t, db.Create(&cat).Error)

	prod := product.Product{
		SKU:           "RN-001",
		Name:          "Road Runner",
		Slug:          "road-runner",
		Price:         14000,
		CategoryID:    cat.ID,
		IsActive:      true,
		TrackQuantity: trackQuantity,
		Quantity:      quantity,
	}
	require.NoError(t, db.Create(&prod).Error)
	return &prod
}

func TestDeductStockTxWithVariant(t *testing.T) {
	db := openInventoryTestDB(t)
	svc := NewService(db, &config.Config{})
	prod := seedInventoryTestProduct(t, db, true, 10)

	variant := product.ProductVariant{
		ProductID: prod.ID, SKU: "RN-001-42-BLK", Size: "42", Color: "black",
		Quantity: 10, IsActive: true,
	}
	require.NoError(t, db.Create(&variant).Error)

	require.NoError(t, svc.DeductStockTx(db, prod.ID, "42", "black", 3, 1))

	var v product.ProductVariant
	require.NoError(t, db.First(&v, variant.ID).Error)
	assert.Equal(t, 7, v.Quantity)

	var p product.Product
	require.NoError(t, db.First(&p, prod.ID).Error)
	assert.Equal(t, 7, p.Quantity)

	var movement InventoryMovement
	require.NoError(t, db.Where("product_id = ?", prod.ID).First(&movement).Error)
	assert.Equal(t, -3, movement.Quantity)
	assert.Equal(t, 10, movement.PreviousQuantity)
	assert.Equal(t, 7, movement.NewQuantity)
}

func TestDeductStockTxVariantlessProduct(t *testing.T) {
	db := openInventoryTestDB(t)
	svc := NewService(db, &config.Config{})
	prod := seedInventoryTestProduct(t, db, true, 5)

	// No variant rows: stock is deducted at the product level
	require.NoError(t, svc.DeductStockTx(db, prod.ID, "42", "black", 2, 1))

	var p product.Product
	require.NoError(t, db.First(&p, prod.ID).Error)
	assert.Equal(t, 3, p.Quantity)

	// Overselling the product-level stock still fails
	err := svc.DeductStockTx(db, prod.ID, "42", "black", 4, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient inventory")
}

func TestDeductStockTxUntrackedProduct(t *testing.T) {
	db := openInventoryTestDB(t)
	svc := NewService(db, &config.Config{})
	prod := seedInventoryTestProduct(t, db, false, 0)

	// Untracked products never block a sale; only the ledger is written
	require.NoError(t, svc.DeductStockTx(db, prod.ID, "40", "tan", 8, 1))

	var p product.Product
	require.NoError(t, db.First(&p, prod.ID).Error)
	assert.Equal(t, 0, p.Quantity)

	var movement InventoryMovement
	require.NoError(t, db.Where("product_id = ?", prod.ID).First(&movement).Error)
	assert.Equal(t, -8, movement.Quantity)
	assert.Equal(t, MovementTypeSale, movement.MovementType)
}

func TestRestoreStockTxVariantlessProduct(t *testing.T) {
	db := openInventoryTestDB(t)
	svc := NewService(db, &config.Config{})
	prod := seedInventoryTestProduct(t, db, true, 3)

	require.NoError(t, svc.RestoreStockTx(db, prod.ID, "42", "black", 2, 1))

	var p product.Product
	require.NoError(t, db.First(&p, prod.ID).Error)
	assert.Equal(t, 5, p.Quantity)

	var movement InventoryMovement
	require.NoError(t, db.Where("product_id = ?", prod.ID).First(&movement).Error)
	assert.Equal(t, MovementTypeCancellation, movement.MovementType)
	assert.Equal(t, 2, movement.Quantity)
}

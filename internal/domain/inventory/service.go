// internal/domain/inventory/service.go
package inventory

import (
	"fmt"
	"time"

	"github.com/your-org/footwear-storefront/internal/config"
	"github.com/your-org/footwear-storefront/internal/domain/product"
	"gorm.io/gorm"
)

// Service handles stock levels and the movement ledger
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new inventory service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// RestockRequest represents a manual stock adjustment
type RestockRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Size      string `json:"size" binding:"required"`
	Color     string `json:"color" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
	Notes     string `json:"notes"`
}

// MovementListRequest represents movement ledger query parameters
type MovementListRequest struct {
	Page         int          `form:"page,default=1"`
	Limit        int          `form:"limit,default=20"`
	ProductID    uint         `form:"product_id"`
	MovementType MovementType `form:"movement_type"`
}

// LowStockVariant is a variant at or below its product's low stock
// threshold
type LowStockVariant struct {
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	SKU         string `json:"sku"`
	Size        string `json:"size"`
	Color       string `json:"color"`
	Quantity    int    `json:"quantity"`
	Threshold   int    `json:"threshold"`
}

// DeductStockTx removes stock for a sold line inside an existing
// transaction. Stock lives on the variant row when the product carries
// variants, on the product row otherwise; products that don't track
// quantity only get a ledger entry. The guarded update makes
// overselling impossible under concurrent checkouts: the row only
// changes when enough stock remains.
func (s *Service) DeductStockTx(tx *gorm.DB, productID uint, size, color string, quantity int, referenceID uint) error {
	var prod product.Product
	if err := tx.Select("id", "quantity", "track_quantity").First(&prod, productID).Error; err != nil {
		return fmt.Errorf("product %d not found: %w", productID, err)
	}

	var variant product.ProductVariant
	err := tx.Where("product_id = ? AND size = ? AND LOWER(color) = LOWER(?) AND is_active = ?",
		productID, size, color, true).First(&variant).Error
	hasVariant := err == nil

	previous := prod.Quantity
	if hasVariant {
		previous = variant.Quantity
	}

	if prod.TrackQuantity {
		if hasVariant {
			result := tx.Model(&product.ProductVariant{}).
				Where("id = ? AND quantity >= ?", variant.ID, quantity).
				UpdateColumn("quantity", gorm.Expr("quantity - ?", quantity))
			if result.Error != nil {
				return fmt.Errorf("failed to deduct stock: %w", result.Error)
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("insufficient inventory for %s size %s in %s", variant.SKU, size, color)
			}

			// Keep the product-level aggregate in step
			if err := tx.Model(&product.Product{}).
				Where("id = ? AND quantity >= ?", productID, quantity).
				UpdateColumn("quantity", gorm.Expr("quantity - ?", quantity)).Error; err != nil {
				return fmt.Errorf("failed to update product stock: %w", err)
			}
		} else {
			result := tx.Model(&product.Product{}).
				Where("id = ? AND quantity >= ?", productID, quantity).
				UpdateColumn("quantity", gorm.Expr("quantity - ?", quantity))
			if result.Error != nil {
				return fmt.Errorf("failed to deduct stock: %w", result.Error)
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("insufficient inventory for product %d size %s in %s", productID, size, color)
			}
		}
	}

	newQuantity := previous
	if prod.TrackQuantity {
		newQuantity = previous - quantity
	}

	movement := InventoryMovement{
		ProductID:        productID,
		Size:             size,
		Color:            color,
		MovementType:     MovementTypeSale,
		Quantity:         -quantity,
		PreviousQuantity: previous,
		NewQuantity:      newQuantity,
		ReferenceType:    "order",
		ReferenceID:      referenceID,
		CreatedAt:        time.Now().UTC(),
	}
	if err := tx.Create(&movement).Error; err != nil {
		return fmt.Errorf("failed to record stock movement: %w", err)
	}

	return nil
}

// RestoreStockTx returns stock for a cancelled order line inside an
// existing transaction, mirroring the deduction rules.
func (s *Service) RestoreStockTx(tx *gorm.DB, productID uint, size, color string, quantity int, referenceID uint) error {
	var prod product.Product
	if err := tx.Select("id", "quantity", "track_quantity").First(&prod, productID).Error; err != nil {
		return fmt.Errorf("product %d not found: %w", productID, err)
	}

	var variant product.ProductVariant
	err := tx.Where("product_id = ? AND size = ? AND LOWER(color) = LOWER(?)",
		productID, size, color).First(&variant).Error
	hasVariant := err == nil

	previous := prod.Quantity
	if hasVariant {
		previous = variant.Quantity
	}

	if prod.TrackQuantity {
		if hasVariant {
			if err := tx.Model(&product.ProductVariant{}).
				Where("id = ?", variant.ID).
				UpdateColumn("quantity", gorm.Expr("quantity + ?", quantity)).Error; err != nil {
				return fmt.Errorf("failed to restore stock: %w", err)
			}
		}

		if err := tx.Model(&product.Product{}).
			Where("id = ?", productID).
			UpdateColumn("quantity", gorm.Expr("quantity + ?", quantity)).Error; err != nil {
			return fmt.Errorf("failed to update product stock: %w", err)
		}
	}

	newQuantity := previous
	if prod.TrackQuantity {
		newQuantity = previous + quantity
	}

	movement := InventoryMovement{
		ProductID:        productID,
		Size:             size,
		Color:            color,
		MovementType:     MovementTypeCancellation,
		Quantity:         quantity,
		PreviousQuantity: previous,
		NewQuantity:      newQuantity,
		ReferenceType:    "order",
		ReferenceID:      referenceID,
		CreatedAt:        time.Now().UTC(),
	}
	return tx.Create(&movement).Error
}

// Restock adds stock to a variant and records the movement
func (s *Service) Restock(req *RestockRequest, userID uint) (*InventoryMovement, error) {
	var movement InventoryMovement

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var variant product.ProductVariant
		err := tx.Where("product_id = ? AND size = ? AND LOWER(color) = LOWER(?)",
			req.ProductID, req.Size, req.Color).First(&variant).Error
		if err != nil {
			return fmt.Errorf("variant not found")
		}

		if err := tx.Model(&product.ProductVariant{}).
			Where("id = ?", variant.ID).
			UpdateColumn("quantity", gorm.Expr("quantity + ?", req.Quantity)).Error; err != nil {
			return fmt.Errorf("failed to restock variant: %w", err)
		}

		if err := tx.Model(&product.Product{}).
			Where("id = ?", req.ProductID).
			UpdateColumn("quantity", gorm.Expr("quantity + ?", req.Quantity)).Error; err != nil {
			return fmt.Errorf("failed to update product stock: %w", err)
		}

		movement = InventoryMovement{
			ProductID:        req.ProductID,
			Size:             req.Size,
			Color:            req.Color,
			MovementType:     MovementTypeRestock,
			Quantity:         req.Quantity,
			PreviousQuantity: variant.Quantity,
			NewQuantity:      variant.Quantity + req.Quantity,
			ReferenceType:    "manual",
			Notes:            req.Notes,
			CreatedBy:        userID,
			CreatedAt:        time.Now().UTC(),
		}
		return tx.Create(&movement).Error
	})
	if err != nil {
		return nil, err
	}

	return &movement, nil
}

// GetMovements retrieves the movement ledger with filtering
func (s *Service) GetMovements(req *MovementListRequest) ([]InventoryMovement, int64, error) {
	var movements []InventoryMovement
	var total int64

	query := s.db.Model(&InventoryMovement{})
	if req.ProductID > 0 {
		query = query.Where("product_id = ?", req.ProductID)
	}
	if req.MovementType != "" {
		query = query.Where("movement_type = ?", req.MovementType)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count movements: %w", err)
	}

	offset := (req.Page - 1) * req.Limit
	if err := query.Order("created_at DESC").Offset(offset).Limit(req.Limit).Find(&movements).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve movements: %w", err)
	}

	return movements, total, nil
}

// GetLowStockVariants lists variants at or below their product's low
// stock threshold
func (s *Service) GetLowStockVariants() ([]LowStockVariant, error) {
	var results []LowStockVariant

	err := s.db.Raw(`
		SELECT
			p.id AS product_id,
			p.name AS product_name,
			v.sku,
			v.size,
			v.color,
			v.quantity,
			p.low_stock_threshold AS threshold
		FROM product_variants v
		JOIN products p ON p.id = v.product_id
		WHERE v.is_active = true
		  AND p.is_active = true
		  AND p.track_quantity = true
		  AND v.quantity <= p.low_stock_threshold
		ORDER BY v.quantity ASC
	`).Scan(&results).Error

	if err != nil {
		return nil, fmt.Errorf("failed to query low stock variants: %w", err)
	}

	return results, nil
}

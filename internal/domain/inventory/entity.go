// internal/domain/inventory/entity.go
package inventory

import (
	"time"
)

// MovementType represents the type of inventory movement
type MovementType string

const (
	MovementTypeSale         MovementType = "sale"
	MovementTypeRestock      MovementType = "restock"
	MovementTypeReturn       MovementType = "return"
	MovementTypeAdjustment   MovementType = "adjustment"
	MovementTypeCancellation MovementType = "cancellation"
)

// InventoryMovement is a ledger entry for a stock change on one
// size/color variant. Quantity is signed: negative for deductions.
type InventoryMovement struct {
	ID               uint         `gorm:"primaryKey" json:"id"`
	ProductID        uint         `gorm:"not null;index" json:"product_id"`
	Size             string       `gorm:"not null;size:10" json:"size"`
	Color            string       `gorm:"not null;size:50" json:"color"`
	MovementType     MovementType `gorm:"not null;size:20;index" json:"movement_type"`
	Quantity         int          `gorm:"not null" json:"quantity"`
	PreviousQuantity int          `gorm:"not null" json:"previous_quantity"`
	NewQuantity      int          `gorm:"not null" json:"new_quantity"`
	ReferenceType    string       `gorm:"size:50" json:"reference_type"` // order, manual
	ReferenceID      uint         `json:"reference_id"`
	Notes            string       `gorm:"type:text" json:"notes"`
	CreatedBy        uint         `gorm:"index" json:"created_by"`
	CreatedAt        time.Time    `json:"created_at"`
}

// TableName overrides the table name
func (InventoryMovement) TableName() string {
	return "inventory_movements"
}

// internal/domain/product/entity.go
package product

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Product represents a footwear product
type Product struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	SKU         string `gorm:"uniqueIndex;not null;size:100" json:"sku"`
	Name        string `gorm:"not null;size:255" json:"name"`
	Slug        string `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Description string `gorm:"type:text" json:"description"`
	ShortDesc   string `gorm:"size:500" json:"short_description"`

	// Prices in cents. SalePrice and WholesalePrice are optional (0 = unset).
	Price          int64 `gorm:"not null" json:"price"`
	SalePrice      int64 `json:"sale_price"`
	WholesalePrice int64 `json:"wholesale_price"`

	CategoryID uint   `gorm:"not null;index" json:"category_id"`
	BrandID    *uint  `gorm:"index" json:"brand_id"`
	Gender     string `gorm:"size:20;default:'unisex'" json:"gender"` // men, women, kids, unisex
	Material   string `gorm:"size:100" json:"material"`

	IsActive   bool `gorm:"default:true" json:"is_active"`
	IsFeatured bool `gorm:"default:false" json:"is_featured"`

	TrackQuantity     bool `gorm:"default:true" json:"track_quantity"`
	Quantity          int  `gorm:"default:0" json:"quantity"`
	LowStockThreshold int  `gorm:"default:5" json:"low_stock_threshold"`

	// Minimum units per order line for wholesale buyers; retail lines use 1.
	MinOrderQuantity int `gorm:"default:1" json:"min_order_quantity"`

	Tags      string         `gorm:"size:500" json:"tags"` // Comma-separated tags
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Category   Category         `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"category"`
	Brand      *Brand           `gorm:"foreignKey:BrandID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"brand,omitempty"`
	Images     []ProductImage   `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"images,omitempty"`
	Variants   []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"variants,omitempty"`
	PriceTiers []PriceTier      `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"price_tiers,omitempty"`
}

// Category represents product categories (sneakers, boots, sandals, ...)
type Category struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"not null;size:255" json:"name"`
	Slug        string         `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Description string         `gorm:"size:500" json:"description"`
	Image       string         `gorm:"size:500" json:"image"`
	ParentID    *uint          `gorm:"index" json:"parent_id"`
	SortOrder   int            `gorm:"default:0" json:"sort_order"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Parent   *Category  `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
	Children []Category `gorm:"foreignKey:ParentID" json:"children,omitempty"`
	Products []Product  `gorm:"foreignKey:CategoryID" json:"products,omitempty"`
}

// Brand represents footwear brands
type Brand struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"not null;size:255" json:"name"`
	Slug        string         `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Description string         `gorm:"size:500" json:"description"`
	Logo        string         `gorm:"size:500" json:"logo"`
	Website     string         `gorm:"size:255" json:"website"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Products []Product `gorm:"foreignKey:BrandID" json:"products,omitempty"`
}

// ProductImage represents product images (plain URLs, no processing pipeline)
type ProductImage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"not null;index" json:"product_id"`
	URL       string    `gorm:"not null;size:500" json:"url"`
	AltText   string    `gorm:"size:255" json:"alt_text"`
	Color     string    `gorm:"size:50" json:"color"` // image belongs to a colorway, optional
	SortOrder int       `gorm:"default:0" json:"sort_order"`
	IsPrimary bool      `gorm:"default:false" json:"is_primary"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProductVariant represents one size/color combination and its stock.
// (product_id, size, color) is the variant identity, mirrored by the cart line key.
type ProductVariant struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	ProductID uint           `gorm:"not null;index:idx_variant_identity,unique" json:"product_id"`
	SKU       string         `gorm:"uniqueIndex;not null;size:100" json:"sku"`
	Size      string         `gorm:"not null;size:20;index:idx_variant_identity,unique" json:"size"`
	Color     string         `gorm:"not null;size:50;index:idx_variant_identity,unique" json:"color"`
	Quantity  int            `gorm:"default:0" json:"quantity"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// PriceTier represents one quantity band of a wholesale price table.
// MaxQuantity nil means the band is unbounded above.
type PriceTier struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ProductID   uint      `gorm:"not null;index" json:"product_id"`
	MinQuantity int       `gorm:"not null" json:"min_quantity"`
	MaxQuantity *int      `json:"max_quantity"`
	UnitPrice   int64     `gorm:"not null" json:"unit_price"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName overrides
func (Product) TableName() string        { return "products" }
func (Category) TableName() string       { return "categories" }
func (Brand) TableName() string          { return "brands" }
func (ProductImage) TableName() string   { return "product_images" }
func (ProductVariant) TableName() string { return "product_variants" }
func (PriceTier) TableName() string      { return "price_tiers" }

// Business methods for Product

func (p *Product) IsInStock() bool {
	return p.Quantity > 0 || !p.TrackQuantity
}

func (p *Product) IsLowStock() bool {
	return p.TrackQuantity && p.Quantity <= p.LowStockThreshold
}

// IsOnSale reports whether a sale price undercuts the base price.
func (p *Product) IsOnSale() bool {
	return p.SalePrice > 0 && p.SalePrice < p.Price
}

// RetailPrice returns the price a retail shopper pays right now.
func (p *Product) RetailPrice() int64 {
	if p.IsOnSale() {
		return p.SalePrice
	}
	return p.Price
}

func (p *Product) GetFormattedPrice() float64 {
	return float64(p.RetailPrice()) / 100
}

func (p *Product) GetDiscountPercentage() int {
	if p.IsOnSale() {
		return int(((p.Price - p.SalePrice) * 100) / p.Price)
	}
	return 0
}

// FindVariant locates the size/color combination, nil if the product
// doesn't carry it. Matching is case-insensitive on color.
func (p *Product) FindVariant(size, color string) *ProductVariant {
	for i := range p.Variants {
		v := &p.Variants[i]
		if v.Size == size && strings.EqualFold(v.Color, color) {
			return v
		}
	}
	return nil
}

// AvailableQuantity returns the purchasable stock for a size/color,
// falling back to product-level stock when no variants are defined.
func (p *Product) AvailableQuantity(size, color string) int {
	if len(p.Variants) == 0 {
		return p.Quantity
	}
	if v := p.FindVariant(size, color); v != nil && v.IsActive {
		return v.Quantity
	}
	return 0
}

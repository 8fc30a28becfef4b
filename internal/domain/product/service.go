// internal/domain/product/service.go
package product

import (
	"fmt"
	"strings"

	"github.com/your-org/footwear-storefront/internal/config"
	"gorm.io/gorm"
)

// Service handles product business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
	cache  *Cache
}

// NewService creates a new product service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
		cache:  NewCache(cfg.Storefront.ProductCacheTTL),
	}
}

// ProductListRequest represents product list query parameters
type ProductListRequest struct {
	Page       int    `form:"page,default=1"`
	Limit      int    `form:"limit,default=20"`
	CategoryID uint   `form:"category_id"`
	BrandID    uint   `form:"brand_id"`
	Gender     string `form:"gender"`
	Size       string `form:"size"`
	Color      string `form:"color"`
	Search     string `form:"search"`
	SortBy     string `form:"sort_by,default=created_at"`
	SortOrder  string `form:"sort_order,default=desc"`
	MinPrice   int64  `form:"min_price"`
	MaxPrice   int64  `form:"max_price"`
	OnSale     *bool  `form:"on_sale"`
	IsActive   *bool  `form:"is_active"`
	IsFeatured *bool  `form:"is_featured"`
}

// ProductCreateRequest represents product creation data
type ProductCreateRequest struct {
	SKU              string             `json:"sku" binding:"required"`
	Name             string             `json:"name" binding:"required"`
	Description      string             `json:"description"`
	ShortDesc        string             `json:"short_description"`
	Price            int64              `json:"price" binding:"required"`
	SalePrice        int64              `json:"sale_price"`
	WholesalePrice   int64              `json:"wholesale_price"`
	CategoryID       uint               `json:"category_id" binding:"required"`
	BrandID          *uint              `json:"brand_id"`
	Gender           string             `json:"gender"`
	Material         string             `json:"material"`
	IsActive         bool               `json:"is_active"`
	IsFeatured       bool               `json:"is_featured"`
	TrackQuantity    bool               `json:"track_quantity"`
	Quantity         int                `json:"quantity"`
	MinOrderQuantity int                `json:"min_order_quantity"`
	Tags             string             `json:"tags"`
	Variants         []VariantRequest   `json:"variants"`
	PriceTiers       []PriceTierRequest `json:"price_tiers"`
}

// VariantRequest represents one size/color combination in create/update payloads
type VariantRequest struct {
	SKU      string `json:"sku" binding:"required"`
	Size     string `json:"size" binding:"required"`
	Color    string `json:"color" binding:"required"`
	Quantity int    `json:"quantity"`
	IsActive bool   `json:"is_active"`
}

// PriceTierRequest represents one wholesale quantity band
type PriceTierRequest struct {
	MinQuantity int   `json:"min_quantity" binding:"required,min=1"`
	MaxQuantity *int  `json:"max_quantity"`
	UnitPrice   int64 `json:"unit_price" binding:"required"`
}

// ProductUpdateRequest represents product update data
type ProductUpdateRequest struct {
	Name             *string `json:"name"`
	Description      *string `json:"description"`
	ShortDesc        *string `json:"short_description"`
	Price            *int64  `json:"price"`
	SalePrice        *int64  `json:"sale_price"`
	WholesalePrice   *int64  `json:"wholesale_price"`
	CategoryID       *uint   `json:"category_id"`
	BrandID          *uint   `json:"brand_id"`
	Gender           *string `json:"gender"`
	Material         *string `json:"material"`
	IsActive         *bool   `json:"is_active"`
	IsFeatured       *bool   `json:"is_featured"`
	TrackQuantity    *bool   `json:"track_quantity"`
	Quantity         *int    `json:"quantity"`
	MinOrderQuantity *int    `json:"min_order_quantity"`
	Tags             *string `json:"tags"`
}

// ProductResponse represents product response with pagination
type ProductResponse struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
}

// Pagination represents pagination information
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// GetProducts retrieves products with filtering and pagination
func (s *Service) GetProducts(req *ProductListRequest) (*ProductResponse, error) {
	var products []Product
	var total int64

	query := s.db.Model(&Product{}).
		Preload("Category").
		Preload("Brand").
		Preload("Variants").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("is_primary DESC, sort_order ASC, id ASC")
		})

	if req.CategoryID > 0 {
		query = query.Where("category_id = ?", req.CategoryID)
	}

	if req.BrandID > 0 {
		query = query.Where("brand_id = ?", req.BrandID)
	}

	if req.Gender != "" {
		query = query.Where("gender = ?", req.Gender)
	}

	if req.Search != "" {
		search := "%" + strings.ToLower(req.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(tags) LIKE ?", search, search, search)
	}

	if req.Size != "" || req.Color != "" {
		sub := s.db.Model(&ProductVariant{}).Select("product_id").Where("is_active = ?", true)
		if req.Size != "" {
			sub = sub.Where("size = ?", req.Size)
		}
		if req.Color != "" {
			sub = sub.Where("LOWER(color) = LOWER(?)", req.Color)
		}
		query = query.Where("id IN (?)", sub)
	}

	if req.MinPrice > 0 {
		query = query.Where("price >= ?", req.MinPrice)
	}

	if req.MaxPrice > 0 {
		query = query.Where("price <= ?", req.MaxPrice)
	}

	if req.OnSale != nil && *req.OnSale {
		query = query.Where("sale_price > 0 AND sale_price < price")
	}

	if req.IsActive != nil {
		query = query.Where("is_active = ?", *req.IsActive)
	}

	if req.IsFeatured != nil {
		query = query.Where("is_featured = ?", *req.IsFeatured)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	// Sorting
	sortBy := req.SortBy
	validSortFields := map[string]bool{
		"created_at": true, "price": true, "name": true, "updated_at": true,
	}
	if !validSortFields[sortBy] {
		sortBy = "created_at"
	}
	sortOrder := req.SortOrder
	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}
	query = query.Order(fmt.Sprintf("%s %s", sortBy, sortOrder))

	// Pagination
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}
	offset := (req.Page - 1) * req.Limit

	if err := query.Offset(offset).Limit(req.Limit).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	return &ProductResponse{
		Products: products,
		Pagination: Pagination{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    req.Page < totalPages,
			HasPrev:    req.Page > 1,
		},
	}, nil
}

// GetProduct retrieves a single product by ID, serving from the
// in-memory cache while the entry is fresh.
func (s *Service) GetProduct(id uint) (*Product, error) {
	if cached := s.cache.Get(id); cached != nil {
		return cached, nil
	}

	var prod Product
	err := s.db.
		Preload("Category").
		Preload("Brand").
		Preload("Variants").
		Preload("PriceTiers", func(db *gorm.DB) *gorm.DB {
			return db.Order("min_quantity ASC")
		}).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("is_primary DESC, sort_order ASC, id ASC")
		}).
		Where("id = ?", id).First(&prod).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("product not found")
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", err)
	}

	s.cache.Set(&prod)
	return &prod, nil
}

// GetProductBySlug retrieves a single product by slug
func (s *Service) GetProductBySlug(slug string) (*Product, error) {
	var prod Product
	err := s.db.
		Preload("Category").
		Preload("Brand").
		Preload("Variants").
		Preload("PriceTiers", func(db *gorm.DB) *gorm.DB {
			return db.Order("min_quantity ASC")
		}).
		Preload("Images").
		Where("slug = ?", slug).First(&prod).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("product not found")
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", err)
	}

	s.cache.Set(&prod)
	return &prod, nil
}

// GetPriceTiers returns the quantity bands for a product ordered by
// min_quantity, the order tier selection walks them in.
func (s *Service) GetPriceTiers(productID uint) ([]PriceTier, error) {
	var tiers []PriceTier
	err := s.db.Where("product_id = ?", productID).
		Order("min_quantity ASC").Find(&tiers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve price tiers: %w", err)
	}
	return tiers, nil
}

// CreateProduct creates a product with variants and price tiers
func (s *Service) CreateProduct(req *ProductCreateRequest) (*Product, error) {
	slug := GenerateSlug(req.Name)

	var count int64
	s.db.Model(&Product{}).Where("sku = ? OR slug = ?", req.SKU, slug).Count(&count)
	if count > 0 {
		return nil, fmt.Errorf("product with this SKU or name already exists")
	}

	minQty := req.MinOrderQuantity
	if minQty < 1 {
		minQty = 1
	}

	prod := Product{
		SKU:              req.SKU,
		Name:             req.Name,
		Slug:             slug,
		Description:      req.Description,
		ShortDesc:        req.ShortDesc,
		Price:            req.Price,
		SalePrice:        req.SalePrice,
		WholesalePrice:   req.WholesalePrice,
		CategoryID:       req.CategoryID,
		BrandID:          req.BrandID,
		Gender:           req.Gender,
		Material:         req.Material,
		IsActive:         req.IsActive,
		IsFeatured:       req.IsFeatured,
		TrackQuantity:    req.TrackQuantity,
		Quantity:         req.Quantity,
		MinOrderQuantity: minQty,
		Tags:             req.Tags,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&prod).Error; err != nil {
			return err
		}

		for _, v := range req.Variants {
			variant := ProductVariant{
				ProductID: prod.ID,
				SKU:       v.SKU,
				Size:      v.Size,
				Color:     v.Color,
				Quantity:  v.Quantity,
				IsActive:  v.IsActive,
			}
			if err := tx.Create(&variant).Error; err != nil {
				return err
			}
		}

		for _, t := range req.PriceTiers {
			tier := PriceTier{
				ProductID:   prod.ID,
				MinQuantity: t.MinQuantity,
				MaxQuantity: t.MaxQuantity,
				UnitPrice:   t.UnitPrice,
			}
			if err := tx.Create(&tier).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return s.GetProduct(prod.ID)
}

// UpdateProduct applies a partial update and invalidates the cache entry
func (s *Service) UpdateProduct(id uint, req *ProductUpdateRequest) (*Product, error) {
	var prod Product
	if err := s.db.Where("id = ?", id).First(&prod).Error; err != nil {
		return nil, fmt.Errorf("product not found")
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
		updates["slug"] = GenerateSlug(*req.Name)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.ShortDesc != nil {
		updates["short_desc"] = *req.ShortDesc
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.SalePrice != nil {
		updates["sale_price"] = *req.SalePrice
	}
	if req.WholesalePrice != nil {
		updates["wholesale_price"] = *req.WholesalePrice
	}
	if req.CategoryID != nil {
		updates["category_id"] = *req.CategoryID
	}
	if req.BrandID != nil {
		updates["brand_id"] = *req.BrandID
	}
	if req.Gender != nil {
		updates["gender"] = *req.Gender
	}
	if req.Material != nil {
		updates["material"] = *req.Material
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.IsFeatured != nil {
		updates["is_featured"] = *req.IsFeatured
	}
	if req.TrackQuantity != nil {
		updates["track_quantity"] = *req.TrackQuantity
	}
	if req.Quantity != nil {
		updates["quantity"] = *req.Quantity
	}
	if req.MinOrderQuantity != nil {
		updates["min_order_quantity"] = *req.MinOrderQuantity
	}
	if req.Tags != nil {
		updates["tags"] = *req.Tags
	}

	if len(updates) > 0 {
		if err := s.db.Model(&prod).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update product: %w", err)
		}
	}

	s.cache.Invalidate(id)
	return s.GetProduct(id)
}

// DeleteProduct soft-deletes a product
func (s *Service) DeleteProduct(id uint) error {
	result := s.db.Delete(&Product{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("product not found")
	}
	s.cache.Invalidate(id)
	return nil
}

// GenerateSlug turns a product name into a URL slug
func GenerateSlug(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ', r == '-', r == '_':
			return '-'
		default:
			return -1
		}
	}, slug)
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	return strings.Trim(slug, "-")
}

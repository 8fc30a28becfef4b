// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/footwear-storefront/internal/domain/cart"
	"github.com/your-org/footwear-storefront/internal/domain/coupon"
	"github.com/your-org/footwear-storefront/internal/domain/history"
	"github.com/your-org/footwear-storefront/internal/domain/inventory"
	"github.com/your-org/footwear-storefront/internal/domain/order"
	"github.com/your-org/footwear-storefront/internal/domain/product"
	"github.com/your-org/footwear-storefront/internal/domain/user"
	"github.com/your-org/footwear-storefront/internal/domain/wishlist"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db  *gorm.DB
	log *logrus.Logger
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB) *Migration {
	return &Migration{
		db:  db,
		log: logrus.StandardLogger(),
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	m.log.Info("Running database auto-migrations")

	// Dependency order: referenced tables first
	models := []interface{}{
		&user.User{},
		&user.Address{},

		&product.Category{},
		&product.Brand{},
		&product.Product{},
		&product.ProductImage{},
		&product.ProductVariant{},
		&product.PriceTier{},

		&coupon.Coupon{},

		&cart.CartItem{},
		&wishlist.WishlistItem{},
		&history.ProductView{},

		&order.Order{},
		&order.OrderItem{},
		&order.Payment{},
		&order.OrderStatusHistory{},

		&inventory.InventoryMovement{},
	}

	for _, model := range models {
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	m.log.Info("Database auto-migrations completed")
	return nil
}

// CreateIndexes creates additional indexes for better performance
func (m *Migration) CreateIndexes() error {
	m.log.Info("Creating additional database indexes")

	indexes := []string{
		// User indexes
		"CREATE INDEX IF NOT EXISTS idx_users_email_active ON users(email, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_users_wholesale_pending ON users(wholesale_status, wholesale_applied_at) WHERE wholesale_status = 'pending'",
		"CREATE INDEX IF NOT EXISTS idx_users_created_at ON users(created_at DESC)",

		// Product indexes
		"CREATE INDEX IF NOT EXISTS idx_products_category_active ON products(category_id, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_products_brand_active ON products(brand_id, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_products_featured ON products(is_featured, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_products_gender ON products(gender)",
		"CREATE INDEX IF NOT EXISTS idx_products_price ON products(price)",
		"CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at DESC)",

		// Category and brand indexes
		"CREATE INDEX IF NOT EXISTS idx_categories_parent_active ON categories(parent_id, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_categories_sort_order ON categories(sort_order)",
		"CREATE INDEX IF NOT EXISTS idx_brands_active ON brands(is_active)",

		// Variant and price tier indexes
		"CREATE INDEX IF NOT EXISTS idx_product_variants_product_active ON product_variants(product_id, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_price_tiers_product_min ON price_tiers(product_id, min_quantity)",

		// Product image indexes
		"CREATE INDEX IF NOT EXISTS idx_product_images_product_primary ON product_images(product_id, is_primary)",
		"CREATE INDEX IF NOT EXISTS idx_product_images_sort_order ON product_images(product_id, sort_order)",

		// Cart indexes
		"CREATE INDEX IF NOT EXISTS idx_cart_items_user ON cart_items(user_id)",
		"CREATE INDEX IF NOT EXISTS idx_cart_items_created_at ON cart_items(created_at DESC)",

		// Coupon indexes
		"CREATE INDEX IF NOT EXISTS idx_coupons_active_valid ON coupons(is_active, valid_until)",

		// Order indexes
		"CREATE INDEX IF NOT EXISTS idx_orders_user_status ON orders(user_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_orders_status_created ON orders(status, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_payment_status ON orders(payment_status)",
		"CREATE INDEX IF NOT EXISTS idx_orders_email ON orders(email)",
		"CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at DESC)",

		// Order items indexes
		"CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id)",
		"CREATE INDEX IF NOT EXISTS idx_order_items_product ON order_items(product_id)",

		// Payment indexes
		"CREATE INDEX IF NOT EXISTS idx_payments_order_id ON payments(order_id)",
		"CREATE INDEX IF NOT EXISTS idx_payments_provider_id ON payments(payment_provider_id)",
		"CREATE INDEX IF NOT EXISTS idx_payments_order_status ON payments(order_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_payments_created_at ON payments(created_at DESC)",

		// Order status history indexes
		"CREATE INDEX IF NOT EXISTS idx_order_status_history_order ON order_status_history(order_id, created_at DESC)",

		// Address indexes
		"CREATE INDEX IF NOT EXISTS idx_addresses_user_type ON addresses(user_id, type)",
		"CREATE INDEX IF NOT EXISTS idx_addresses_user_default ON addresses(user_id, is_default)",

		// Wishlist indexes
		"CREATE INDEX IF NOT EXISTS idx_wishlist_items_user ON wishlist_items(user_id)",

		// View history indexes
		"CREATE INDEX IF NOT EXISTS idx_product_views_user_viewed ON product_views(user_id, viewed_at DESC)",

		// Inventory movement indexes
		"CREATE INDEX IF NOT EXISTS idx_inventory_movements_product ON inventory_movements(product_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_inventory_movements_reference ON inventory_movements(reference_type, reference_id)",
	}

	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			m.log.WithError(err).Warn("Failed to create index")
		}
	}

	m.log.Info("Database indexes created")
	return nil
}

// SeedInitialData inserts initial data into the database
func (m *Migration) SeedInitialData() error {
	m.log.Info("Seeding initial data")

	if err := m.seedCategories(); err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}
	if err := m.seedBrands(); err != nil {
		return fmt.Errorf("failed to seed brands: %w", err)
	}
	if err := m.seedAdminUser(); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}
	if err := m.seedProducts(); err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}
	if err := m.seedCoupons(); err != nil {
		return fmt.Errorf("failed to seed coupons: %w", err)
	}

	m.log.Info("Initial data seeded")
	return nil
}

func (m *Migration) seedCategories() error {
	categories := []product.Category{
		{Name: "Sneakers", Slug: "sneakers", Description: "Everyday and lifestyle sneakers", SortOrder: 1, IsActive: true},
		{Name: "Running", Slug: "running", Description: "Road and trail running shoes", SortOrder: 2, IsActive: true},
		{Name: "Boots", Slug: "boots", Description: "Work, hiking and fashion boots", SortOrder: 3, IsActive: true},
		{Name: "Sandals", Slug: "sandals", Description: "Sandals and slides", SortOrder: 4, IsActive: true},
		{Name: "Dress Shoes", Slug: "dress-shoes", Description: "Formal and office footwear", SortOrder: 5, IsActive: true},
	}

	for _, category := range categories {
		var existing product.Category
		if err := m.db.Where("slug = ?", category.Slug).First(&existing).Error; err != nil {
			if err := m.db.Create(&category).Error; err != nil {
				return err
			}
			m.log.WithField("category", category.Name).Info("Created category")
		}
	}
	return nil
}

func (m *Migration) seedBrands() error {
	brands := []product.Brand{
		{Name: "Stride Co", Slug: "stride-co", Description: "Performance running footwear", IsActive: true},
		{Name: "Urban Sole", Slug: "urban-sole", Description: "Street style sneakers", IsActive: true},
		{Name: "Trailhead", Slug: "trailhead", Description: "Outdoor boots and hiking shoes", IsActive: true},
	}

	for _, brand := range brands {
		var existing product.Brand
		if err := m.db.Where("slug = ?", brand.Slug).First(&existing).Error; err != nil {
			if err := m.db.Create(&brand).Error; err != nil {
				return err
			}
			m.log.WithField("brand", brand.Name).Info("Created brand")
		}
	}
	return nil
}

func (m *Migration) seedAdminUser() error {
	var existing user.User
	if err := m.db.Where("email = ?", "admin@example.com").First(&existing).Error; err == nil {
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	adminUser := user.User{
		Email:         "admin@example.com",
		Password:      string(hashedPassword),
		FirstName:     "Admin",
		LastName:      "User",
		IsActive:      true,
		IsAdmin:       true,
		EmailVerified: true,
	}
	if err := m.db.Create(&adminUser).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	m.log.Info("Created admin user: admin@example.com")
	return nil
}

func (m *Migration) seedProducts() error {
	var productCount int64
	m.db.Model(&product.Product{}).Count(&productCount)
	if productCount > 0 {
		return nil
	}

	brandID := func(slug string) *uint {
		var b product.Brand
		if err := m.db.Where("slug = ?", slug).First(&b).Error; err != nil {
			return nil
		}
		return &b.ID
	}
	categoryID := func(slug string) uint {
		var c product.Category
		m.db.Where("slug = ?", slug).First(&c)
		return c.ID
	}

	intPtr := func(v int) *int { return &v }

	products := []product.Product{
		{
			SKU:               "RUN-VELOCITY-01",
			Name:              "Velocity Road Runner",
			Slug:              "velocity-road-runner",
			Description:       "Lightweight neutral road running shoe with responsive foam midsole and engineered mesh upper.",
			ShortDesc:         "Lightweight neutral road runner",
			Price:             12999,
			SalePrice:         0,
			WholesalePrice:    8999,
			CategoryID:        categoryID("running"),
			BrandID:           brandID("stride-co"),
			Gender:            "unisex",
			Material:          "engineered mesh",
			IsActive:          true,
			IsFeatured:        true,
			TrackQuantity:     true,
			Quantity:          120,
			LowStockThreshold: 10,
			MinOrderQuantity:  6,
			Tags:              "running,road,lightweight",
			Variants: []product.ProductVariant{
				{SKU: "RUN-VELOCITY-01-9-BLK", Size: "9", Color: "Black", Quantity: 40, IsActive: true},
				{SKU: "RUN-VELOCITY-01-10-BLK", Size: "10", Color: "Black", Quantity: 40, IsActive: true},
				{SKU: "RUN-VELOCITY-01-9-WHT", Size: "9", Color: "White", Quantity: 40, IsActive: true},
			},
			PriceTiers: []product.PriceTier{
				{MinQuantity: 6, MaxQuantity: intPtr(23), UnitPrice: 9999},
				{MinQuantity: 24, MaxQuantity: intPtr(99), UnitPrice: 8999},
				{MinQuantity: 100, MaxQuantity: nil, UnitPrice: 7999},
			},
		},
		{
			SKU:               "SNK-COURTLINE-01",
			Name:              "Courtline Classic",
			Slug:              "courtline-classic",
			Description:       "Retro court sneaker with full-grain leather upper and cupsole construction.",
			ShortDesc:         "Retro leather court sneaker",
			Price:             8999,
			SalePrice:         6999,
			WholesalePrice:    0,
			CategoryID:        categoryID("sneakers"),
			BrandID:           brandID("urban-sole"),
			Gender:            "unisex",
			Material:          "leather",
			IsActive:          true,
			IsFeatured:        true,
			TrackQuantity:     true,
			Quantity:          80,
			LowStockThreshold: 8,
			MinOrderQuantity:  1,
			Tags:              "sneakers,classic,leather",
			Variants: []product.ProductVariant{
				{SKU: "SNK-COURTLINE-01-8-WHT", Size: "8", Color: "White", Quantity: 40, IsActive: true},
				{SKU: "SNK-COURTLINE-01-9-WHT", Size: "9", Color: "White", Quantity: 40, IsActive: true},
			},
		},
		{
			SKU:               "BOOT-RIDGE-01",
			Name:              "Ridgeline Hiker",
			Slug:              "ridgeline-hiker",
			Description:       "Waterproof hiking boot with aggressive lug outsole and padded ankle collar.",
			ShortDesc:         "Waterproof hiking boot",
			Price:             15999,
			SalePrice:         0,
			WholesalePrice:    11999,
			CategoryID:        categoryID("boots"),
			BrandID:           brandID("trailhead"),
			Gender:            "men",
			Material:          "nubuck leather",
			IsActive:          true,
			TrackQuantity:     true,
			Quantity:          60,
			LowStockThreshold: 6,
			MinOrderQuantity:  4,
			Tags:              "boots,hiking,waterproof",
			Variants: []product.ProductVariant{
				{SKU: "BOOT-RIDGE-01-10-BRN", Size: "10", Color: "Brown", Quantity: 30, IsActive: true},
				{SKU: "BOOT-RIDGE-01-11-BRN", Size: "11", Color: "Brown", Quantity: 30, IsActive: true},
			},
		},
	}

	for _, prod := range products {
		if err := m.db.Create(&prod).Error; err != nil {
			return fmt.Errorf("failed to create product %s: %w", prod.SKU, err)
		}
		m.log.WithField("sku", prod.SKU).Info("Created product")
	}
	return nil
}

func (m *Migration) seedCoupons() error {
	var couponCount int64
	m.db.Model(&coupon.Coupon{}).Count(&couponCount)
	if couponCount > 0 {
		return nil
	}

	validUntil := time.Now().AddDate(1, 0, 0)
	coupons := []coupon.Coupon{
		{
			Code:          "WELCOME10",
			Description:   "10% off your first order",
			DiscountType:  coupon.DiscountTypePercentage,
			DiscountValue: 10,
			MinOrder:      5000,
			MaxDiscount:   2000,
			ValidUntil:    &validUntil,
			IsActive:      true,
		},
		{
			Code:          "FREESHIP25",
			Description:   "Flat discount on orders over $250",
			DiscountType:  coupon.DiscountTypeFixedAmount,
			DiscountValue: 2500,
			MinOrder:      25000,
			ValidUntil:    &validUntil,
			IsActive:      true,
		},
	}

	for _, c := range coupons {
		if err := m.db.Create(&c).Error; err != nil {
			return fmt.Errorf("failed to create coupon %s: %w", c.Code, err)
		}
		m.log.WithField("code", c.Code).Info("Created coupon")
	}
	return nil
}

// DropAllTables drops all tables (use with extreme caution)
func (m *Migration) DropAllTables() error {
	m.log.Warn("Dropping all database tables")

	// Reverse dependency order
	tables := []string{
		"inventory_movements",
		"order_status_history",
		"payments",
		"order_items",
		"orders",
		"wishlist_items",
		"cart_items",
		"coupons",
		"price_tiers",
		"product_variants",
		"product_images",
		"products",
		"brands",
		"categories",
		"addresses",
		"users",
	}

	for _, table := range tables {
		if err := m.db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)).Error; err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}

	m.log.Warn("All tables dropped")
	return nil
}

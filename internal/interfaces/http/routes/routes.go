// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/your-org/footwear-storefront/internal/config"
	"github.com/your-org/footwear-storefront/internal/interfaces/http/handlers"
	"github.com/your-org/footwear-storefront/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// SetupRoutes wires every route group onto the API router
func SetupRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	SetupAuthRoutes(rg, db, redisClient, cfg)
	SetupUserRoutes(rg, db, redisClient, cfg)
	SetupProductRoutes(rg, db, redisClient, cfg)
	SetupCartRoutes(rg, db, redisClient, cfg)
	SetupWishlistRoutes(rg, db, redisClient, cfg)
	SetupHistoryRoutes(rg, db, redisClient, cfg)
	SetupCheckoutRoutes(rg, db, redisClient, cfg)
	SetupOrderRoutes(rg, db, redisClient, cfg)
	SetupPaymentRoutes(rg, db, redisClient, cfg)
	SetupAdminRoutes(rg, db, redisClient, cfg)
}

// SetupAuthRoutes sets up authentication related routes
func SetupAuthRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	authHandler := handlers.NewAuthHandler(db, redisClient, cfg)

	auth := rg.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.RefreshToken)

		protected := auth.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			protected.GET("/validate", authHandler.ValidateToken)
			protected.POST("/logout", authHandler.Logout)
			protected.GET("/me", authHandler.GetCurrentUser)
			protected.PUT("/change-password", authHandler.ChangePassword)
		}
	}
}

// SetupUserRoutes sets up user profile, address, and wholesale routes
func SetupUserRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	profileHandler := handlers.NewUserProfileHandler(db, cfg)
	addressHandler := handlers.NewUserAddressHandler(db, cfg)

	users := rg.Group("/users")
	users.Use(middleware.AuthMiddleware(cfg))
	{
		users.GET("/profile", profileHandler.GetProfile)
		users.PUT("/profile", profileHandler.UpdateProfile)
		users.GET("/account", profileHandler.GetAccount)
		users.GET("/dashboard", profileHandler.GetDashboard)
		users.PUT("/change-password", profileHandler.ChangePassword)

		users.GET("/wholesale/status", profileHandler.GetWholesaleStatus)
		users.POST("/wholesale/apply", profileHandler.ApplyForWholesale)

		users.GET("/addresses", addressHandler.GetAddresses)
		users.POST("/addresses", addressHandler.CreateAddress)
		users.GET("/addresses/:id", addressHandler.GetAddress)
		users.PUT("/addresses/:id", addressHandler.UpdateAddress)
		users.DELETE("/addresses/:id", addressHandler.DeleteAddress)
		users.PUT("/addresses/:id/default", addressHandler.SetDefaultAddress)
	}
}

// SetupProductRoutes sets up product catalog routes
func SetupProductRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	productHandler := handlers.NewProductHandler(db, cfg)
	catalogHandler := handlers.NewCatalogHandler(db, cfg)

	products := rg.Group("/products")
	products.Use(middleware.OptionalAuthMiddleware(cfg)) // Wholesale pricing needs the viewer when present
	{
		products.GET("", productHandler.GetProducts)
		products.GET("/search", productHandler.SearchProducts)
		products.GET("/categories", catalogHandler.GetCategories)
		products.GET("/categories/:slug", catalogHandler.GetCategoryBySlug)
		products.GET("/brands", catalogHandler.GetBrands)
		products.GET("/slug/:slug", productHandler.GetProductBySlug)
		products.GET("/:id", productHandler.GetProduct)
		products.GET("/:id/price-tiers", productHandler.GetPriceTiers)
	}
}

// SetupCartRoutes sets up cart routes (guest and signed-in)
func SetupCartRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	cartHandler := handlers.NewCartHandler(db, redisClient, cfg)

	cart := rg.Group("/cart")
	cart.Use(middleware.OptionalAuthMiddleware(cfg))
	{
		cart.GET("", cartHandler.GetCart)
		cart.POST("/items", cartHandler.AddToCart)
		cart.PUT("/items/:id", cartHandler.UpdateCartItem)
		cart.DELETE("/items/:id", cartHandler.RemoveFromCart)
		cart.DELETE("", cartHandler.ClearCart)
		cart.GET("/count", cartHandler.GetCartCount)
		cart.GET("/validate", cartHandler.ValidateCart)
		cart.POST("/coupon", cartHandler.ApplyCoupon)
		cart.DELETE("/coupon", cartHandler.RemoveCoupon)

		// Explicit merge for clients that track their own guest session
		merge := cart.Group("")
		merge.Use(middleware.AuthMiddleware(cfg))
		{
			merge.POST("/merge", cartHandler.MergeGuestCart)
		}
	}
}

// SetupWishlistRoutes sets up wishlist routes (guest and signed-in)
func SetupWishlistRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	wishlistHandler := handlers.NewWishlistHandler(db, redisClient, cfg)

	wishlist := rg.Group("/wishlist")
	wishlist.Use(middleware.OptionalAuthMiddleware(cfg))
	{
		wishlist.GET("", wishlistHandler.GetWishlist)
		wishlist.POST("/items", wishlistHandler.AddToWishlist)
		wishlist.DELETE("/items/:id", wishlistHandler.RemoveFromWishlist)
		wishlist.DELETE("", wishlistHandler.ClearWishlist)
		wishlist.GET("/count", wishlistHandler.GetWishlistCount)
		wishlist.GET("/contains/:id", wishlistHandler.CheckItemInWishlist)
		wishlist.POST("/items/:id/move-to-cart", wishlistHandler.MoveToCart)

		merge := wishlist.Group("")
		merge.Use(middleware.AuthMiddleware(cfg))
		{
			merge.POST("/merge", wishlistHandler.MergeGuestWishlist)
		}
	}
}

// SetupHistoryRoutes sets up recently-viewed history routes
func SetupHistoryRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	historyHandler := handlers.NewHistoryHandler(db, redisClient, cfg)

	history := rg.Group("/history")
	history.Use(middleware.OptionalAuthMiddleware(cfg))
	{
		history.POST("/views/:id", historyHandler.RecordView)
		history.GET("/views", historyHandler.GetHistory)
		history.DELETE("/views", historyHandler.ClearHistory)
	}
}

// SetupCheckoutRoutes sets up checkout routes
func SetupCheckoutRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	checkoutHandler := handlers.NewCheckoutHandler(db, redisClient, cfg)

	checkout := rg.Group("/checkout")
	checkout.Use(middleware.OptionalAuthMiddleware(cfg))
	{
		checkout.GET("/shipping-methods", checkoutHandler.GetShippingMethods)
		checkout.GET("/payment-methods", checkoutHandler.GetPaymentMethods)
		checkout.GET("/summary", checkoutHandler.GetCheckoutSummary)
		checkout.POST("/validate", checkoutHandler.ValidateCheckout)
	}
}

// SetupOrderRoutes sets up order routes
func SetupOrderRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	orderHandler := handlers.NewOrderHandler(db, redisClient, cfg)
	invoiceHandler := handlers.NewInvoiceHandler(db, cfg)

	orders := rg.Group("/orders")
	orders.Use(middleware.AuthMiddleware(cfg))
	{
		orders.POST("", orderHandler.CreateOrder)
		orders.GET("", orderHandler.GetOrders)
		orders.GET("/number/:orderNumber", orderHandler.GetOrderByNumber)
		orders.GET("/:id", orderHandler.GetOrder)
		orders.GET("/:id/track", orderHandler.TrackOrder)
		orders.PUT("/:id/cancel", orderHandler.CancelOrder)
		orders.GET("/:id/invoice", invoiceHandler.GenerateInvoice)
		orders.GET("/:id/invoice/data", invoiceHandler.GetInvoiceData)
	}
}

// SetupPaymentRoutes sets up payment routes
func SetupPaymentRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	paymentHandler := handlers.NewPaymentHandler(db, redisClient, cfg)

	payment := rg.Group("/payment")
	payment.Use(middleware.AuthMiddleware(cfg))
	{
		payment.POST("/initiate", paymentHandler.InitiatePayment)
		payment.POST("/verify", paymentHandler.VerifyPayment)
		payment.POST("/failure", paymentHandler.HandlePaymentFailure)
		payment.GET("/status/:order_id", paymentHandler.GetPaymentStatus)
	}

	// Gateway callbacks authenticate via HMAC signature, not JWT
	rg.POST("/webhooks/payment", paymentHandler.GatewayWebhook)
}

// SetupAdminRoutes sets up admin routes
func SetupAdminRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	productHandler := handlers.NewProductHandler(db, cfg)
	orderHandler := handlers.NewOrderHandler(db, redisClient, cfg)
	paymentHandler := handlers.NewPaymentHandler(db, redisClient, cfg)
	inventoryHandler := handlers.NewInventoryHandler(db, cfg)
	userAdminHandler := handlers.NewUserAdminHandler(db, cfg)

	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware(cfg))
	admin.Use(middleware.AdminMiddleware())
	{
		products := admin.Group("/products")
		{
			products.GET("", productHandler.AdminGetProducts)
			products.POST("", productHandler.AdminCreateProduct)
			products.GET("/:id", productHandler.AdminGetProduct)
			products.PUT("/:id", productHandler.AdminUpdateProduct)
			products.DELETE("/:id", productHandler.AdminDeleteProduct)
		}

		orders := admin.Group("/orders")
		{
			orders.GET("", orderHandler.AdminGetOrders)
			orders.GET("/:id", orderHandler.AdminGetOrder)
			orders.PUT("/:id/status", orderHandler.AdminUpdateOrderStatus)
			orders.PUT("/:id/cancel", orderHandler.AdminCancelOrder)
			orders.POST("/:id/refund", orderHandler.AdminRefundOrder)
		}

		payments := admin.Group("/payments")
		{
			payments.GET("", paymentHandler.AdminGetPayments)
			payments.GET("/:id", paymentHandler.AdminGetPaymentDetails)
		}

		inventory := admin.Group("/inventory")
		{
			inventory.POST("/restock", inventoryHandler.Restock)
			inventory.GET("/movements", inventoryHandler.GetMovements)
			inventory.GET("/low-stock", inventoryHandler.GetLowStock)
		}

		users := admin.Group("/users")
		{
			users.GET("", userAdminHandler.GetUsers)
			users.GET("/:id", userAdminHandler.GetUser)
			users.PUT("/:id/status", userAdminHandler.UpdateUserStatus)
		}

		wholesale := admin.Group("/wholesale")
		{
			wholesale.GET("/applications", userAdminHandler.ListWholesaleApplications)
			wholesale.PUT("/applications/:id", userAdminHandler.ReviewWholesaleApplication)
		}
	}
}

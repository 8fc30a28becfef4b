// internal/interfaces/http/handlers/inventory.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/footwear-storefront/internal/config"
	"github.com/your-org/footwear-storefront/internal/domain/inventory"
	"github.com/your-org/footwear-storefront/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// InventoryHandler handles admin inventory endpoints
type InventoryHandler struct {
	inventoryService *inventory.Service
	config           *config.Config
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(db *gorm.DB, cfg *config.Config) *InventoryHandler {
	return &InventoryHandler{
		inventoryService: inventory.NewService(db, cfg),
		config:           cfg,
	}
}

// Restock handles POST /admin/inventory/restock
func (h *InventoryHandler) Restock(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	var req inventory.RestockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	movement, err := h.inventoryService.Restock(&req, userID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Stock added successfully",
		"data":    movement,
	})
}

// GetMovements handles GET /admin/inventory/movements
func (h *InventoryHandler) GetMovements(c *gin.Context) {
	var req inventory.MovementListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid query parameters",
			"details": err.Error(),
		})
		return
	}

	if req.Page <= 0 {
		req.Page = 1
	}
	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 20
	}

	movements, total, err := h.inventoryService.GetMovements(&req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve inventory movements",
		})
		return
	}

	totalPages := (int(total) + req.Limit - 1) / req.Limit

	c.JSON(http.StatusOK, gin.H{
		"message": "Inventory movements retrieved successfully",
		"data": gin.H{
			"movements": movements,
			"pagination": gin.H{
				"page":        req.Page,
				"limit":       req.Limit,
				"total":       total,
				"total_pages": totalPages,
				"has_next":    req.Page < totalPages,
				"has_prev":    req.Page > 1,
			},
		},
	})
}

// GetLowStock handles GET /admin/inventory/low-stock
func (h *InventoryHandler) GetLowStock(c *gin.Context) {
	variants, err := h.inventoryService.GetLowStockVariants()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve low stock variants",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Low stock variants retrieved successfully",
		"data": gin.H{
			"variants": variants,
			"count":    len(variants),
		},
	})
}

// internal/interfaces/http/handlers/history.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/your-org/footwear-storefront/internal/config"
	"github.com/your-org/footwear-storefront/internal/domain/history"
	"github.com/your-org/footwear-storefront/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// HistoryHandler handles recently-viewed-product endpoints
type HistoryHandler struct {
	historyService *history.Service
	config         *config.Config
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *HistoryHandler {
	return &HistoryHandler{
		historyService: history.NewService(db, redisClient, cfg),
		config:         cfg,
	}
}

// RecordView handles POST /history/views/:id
func (h *HistoryHandler) RecordView(c *gin.Context) {
	userID := middleware.GetOptionalUserID(c)
	sessionID := getOrCreateSessionID(c)

	productID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid product ID",
		})
		return
	}

	if err := h.historyService.RecordView(userID, sessionID, uint(productID)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to record view",
		})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

// GetHistory handles GET /history/views
func (h *HistoryHandler) GetHistory(c *gin.Context) {
	userID := middleware.GetOptionalUserID(c)
	sessionID := getOrCreateSessionID(c)

	viewed, err := h.historyService.GetHistory(userID, sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve view history",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "View history retrieved successfully",
		"data":    viewed,
	})
}

// ClearHistory handles DELETE /history/views
func (h *HistoryHandler) ClearHistory(c *gin.Context) {
	userID := middleware.GetOptionalUserID(c)
	sessionID := getOrCreateSessionID(c)

	if err := h.historyService.ClearHistory(userID, sessionID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to clear view history",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "View history cleared successfully",
	})
}

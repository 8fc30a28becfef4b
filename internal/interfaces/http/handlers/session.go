// internal/interfaces/http/handlers/session.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/your-org/footwear-storefront/internal/interfaces/http/middleware"
)

// getOrCreateSessionID reads the guest session ID from the X-Session-ID
// header or the session cookie, minting a new one when absent. The same
// ID keys the guest cart, wishlist and view history in Redis.
func getOrCreateSessionID(c *gin.Context) string {
	if sessionID := middleware.GetSessionID(c); sessionID != "" {
		return sessionID
	}

	sessionID, err := c.Cookie("session_id")
	if err != nil || sessionID == "" {
		sessionID = uuid.New().String()
		c.SetCookie("session_id", sessionID, 86400, "/", "", false, true)
	}

	return sessionID
}

// internal/interfaces/http/middleware/session.go
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/your-org/cart-engine/internal/config"
	"github.com/your-org/cart-engine/internal/pkg/session"
)

const sessionCookie = "cart_session"

// Session binds each client to a cart session via a signed token cookie.
// Requests without a valid token get a fresh session.
func Session(cfg *config.Config) gin.HandlerFunc {
	manager := session.NewManager(cfg)

	return func(c *gin.Context) {
		var sessionID string

		if token, err := c.Cookie(sessionCookie); err == nil && token != "" {
			sessionID, _ = manager.Validate(token)
		}

		if sessionID == "" {
			sessionID = uuid.New().String()
			if signed, err := manager.Generate(sessionID); err == nil {
				maxAge := int(cfg.JWT.SessionExpiry.Seconds())
				c.SetCookie(sessionCookie, signed, maxAge, "/", "", false, true)
			}
		}

		c.Set("session_id", sessionID)
		c.Next()
	}
}

// GetSessionID returns the cart session id bound to this request
func GetSessionID(c *gin.Context) string {
	if sessionID, exists := c.Get("session_id"); exists {
		if id, ok := sessionID.(string); ok {
			return id
		}
	}
	return ""
}

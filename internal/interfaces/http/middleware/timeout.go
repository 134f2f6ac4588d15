package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/your-org/cart-engine/internal/config"
)

// Timeout aborts requests that outlive the server's write timeout. Cart
// mutations are quick; anything hitting this limit is stuck on the
// product source or redis.
func Timeout(cfg *config.Config) gin.HandlerFunc {
	limit := cfg.Server.WriteTimeout
	if limit <= 0 {
		limit = 30 * time.Second
	}

	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), limit)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)

		done := make(chan struct{})
		go func() {
			defer close(done)
			c.Next()
		}()

		select {
		case <-done:
			// Request completed normally
		case <-ctx.Done():
			// Request timed out
			c.JSON(http.StatusRequestTimeout, gin.H{
				"error": "Request timeout",
			})
			c.Abort()
		}
	}
}

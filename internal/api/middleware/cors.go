// Package middleware provides cross-cutting gin handlers for the admin API,
// adapted from the crawler's security middleware's CORS handling, narrowed
// to the allowed-origins list this service's config carries.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CORS builds a handler that reflects the request's Origin header back when
// it appears in allowed (or allowed contains "*"), and answers preflight
// OPTIONS requests directly.
func CORS(allowed []string) gin.HandlerFunc {
	allowedSet := make(map[string]bool, len(allowed))
	wildcard := false
	for _, o := range allowed {
		if o == "*" {
			wildcard = true
		}
		allowedSet[o] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && (wildcard || allowedSet[origin]) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Header("Vary", "Origin")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware проверяет API-ключ в заголовке X-API-Key.
// Пустой apiKey отключает проверку (локальная разработка).
func AuthMiddleware(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			c.Next()
			return
		}

		if c.GetHeader("X-API-Key") != apiKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthorized"})
			return
		}

		c.Next()
	}
}

package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware validates credentials on incoming requests. Accepted
// forms: "Authorization: Bearer <jwt|api-key>", an X-API-Key header, or an
// api_key query parameter for clients that cannot set headers.
func (a *AuthService) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractCredentials(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "missing credentials",
			})
			c.Abort()
			return
		}

		if err := a.ValidateToken(token); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "invalid or expired token",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

func extractCredentials(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
	}

	if key := c.GetHeader("X-API-Key"); key != "" {
		return key
	}

	return c.Query("api_key")
}

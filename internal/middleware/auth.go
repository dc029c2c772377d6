package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/xjinkx/license-gateway/internal/service"
)

// RequireSession validates the bearer session token on storefront routes.
// Missing or invalid sessions get a 401 so the client can re-authenticate.
func RequireSession(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseBearer(c, authService)
		if !ok {
			return
		}

		userID, err := uuid.Parse(strClaim(claims["user_id"]))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Set("discord_id", strClaim(claims["discord_id"]))
		c.Set("role", strClaim(claims["role"]))

		c.Next()
	}
}

// RequireAdmin additionally requires the admin role claim.
func RequireAdmin(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseBearer(c, authService)
		if !ok {
			return
		}

		if strClaim(claims["role"]) != "admin" {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			c.Abort()
			return
		}

		c.Set("admin_id", strClaim(claims["user_id"]))
		c.Set("email", strClaim(claims["email"]))

		c.Next()
	}
}

func parseBearer(c *gin.Context, authService *service.AuthService) (map[string]interface{}, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		c.Abort()
		return nil, false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format. Use: Bearer <token>"})
		c.Abort()
		return nil, false
	}

	claims, err := authService.ValidateToken(parts[1])
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		c.Abort()
		return nil, false
	}

	return claims, true
}

func strClaim(v interface{}) string {
	s, _ := v.(string)
	return s
}

// UserID pulls the authenticated user's ID out of the request context.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, false
	}

	id, ok := v.(uuid.UUID)
	return id, ok
}

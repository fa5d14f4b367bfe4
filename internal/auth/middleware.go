package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"marketplace-portal/internal/models"
)

// Context keys set by the middleware.
const (
	ContextUserID = "userID"
	ContextRole   = "role"
)

// Middleware validates the Authorization header and stores the caller's
// identity in the Gin context.
func Middleware(issuer *TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Authorization header required",
			})
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		if tokenString == header {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Authorization header must be a Bearer token",
			})
			return
		}

		claims, err := issuer.Parse(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Invalid or expired token",
			})
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

// OptionalMiddleware parses the Authorization header when present but never
// rejects the request. Public listing routes use it so "mine" filters work
// for logged-in callers.
func OptionalMiddleware(issuer *TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenString := strings.TrimPrefix(header, "Bearer ")
		if header == "" || tokenString == header {
			c.Next()
			return
		}
		if claims, err := issuer.Parse(tokenString); err == nil {
			c.Set(ContextUserID, claims.UserID)
			c.Set(ContextRole, claims.Role)
		}
		c.Next()
	}
}

// AdminOnly rejects callers whose token does not carry the admin role.
// Must run after Middleware.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := c.Get(ContextRole)
		if !ok || role.(models.UserRole) != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "Admin access required",
			})
			return
		}
		c.Next()
	}
}

// UserID extracts the authenticated user's ID from the Gin context.
func UserID(c *gin.Context) uint {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return 0
	}
	return v.(uint)
}

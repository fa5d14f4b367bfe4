package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace-portal/internal/auth"
	"marketplace-portal/internal/database"
	"marketplace-portal/internal/models"
)

// respondOK wraps a successful payload in the standard envelope
func respondOK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

// respondMessage wraps a successful payload with a human-readable message
func respondMessage(c *gin.Context, status int, data interface{}, message string) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
		"message": message,
	})
}

// respondError maps a domain error to its HTTP status and envelope.
// Unknown errors are logged and returned as 500 without leaking details.
func respondError(c *gin.Context, err error) {
	var invalidTransition *models.InvalidTransitionError
	var validation *models.ValidationError

	switch {
	case errors.Is(err, database.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": "Resource not found",
		})
	case errors.As(err, &invalidTransition):
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"message": invalidTransition.Error(),
		})
	case errors.Is(err, models.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"message": "You are not allowed to perform this action",
		})
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": validation.Msg,
		})
	case errors.Is(err, database.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"message": "The resource was modified concurrently, retry the request",
		})
	default:
		log.Printf("[API] internal error method=%s path=%s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Internal server error",
		})
	}
}

// respondBadRequest reports a malformed request body or parameter
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"message": message,
	})
}

// currentUserID returns the authenticated caller's ID
func currentUserID(c *gin.Context) uint {
	return auth.UserID(c)
}

// callerIsAdmin reports whether the authenticated caller has the admin role
func callerIsAdmin(c *gin.Context) bool {
	v, ok := c.Get(auth.ContextRole)
	if !ok {
		return false
	}
	role, ok := v.(models.UserRole)
	return ok && role == models.RoleAdmin
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace-portal/internal/ratelimit"
)

// RateLimitHandler exposes the caller's rate limit usage
type RateLimitHandler struct {
	limiter *ratelimit.RateLimiter
}

// NewRateLimitHandler creates a new rate limit handler
func NewRateLimitHandler(limiter *ratelimit.RateLimiter) *RateLimitHandler {
	return &RateLimitHandler{limiter: limiter}
}

// GetStats returns the current windows and remaining quota for the
// calling client
func (h *RateLimitHandler) GetStats(c *gin.Context) {
	respondOK(c, http.StatusOK, h.limiter.GetStats(c.ClientIP()))
}

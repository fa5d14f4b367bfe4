package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-portal/internal/ratelimit"
)

func TestRateLimitStatsEndpoint(t *testing.T) {
	limiter := ratelimit.NewRateLimiter(30, 600, true)
	h := NewRateLimitHandler(limiter)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/ratelimit/stats", h.GetStats)

	require.True(t, limiter.AllowRequest("192.0.2.1"))

	req := httptest.NewRequest(http.MethodGet, "/api/ratelimit/stats", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeEnvelope(t, rec)
	stats := resp["data"].(map[string]any)
	assert.Equal(t, true, stats["enabled"])
	assert.Equal(t, float64(1), stats["requests_last_minute"])
	assert.Equal(t, float64(30), stats["limit_per_minute"])
	assert.Equal(t, float64(29), stats["remaining_this_minute"])
}

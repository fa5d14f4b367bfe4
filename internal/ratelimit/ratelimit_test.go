package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowRequestMinuteLimit(t *testing.T) {
	rl := NewRateLimiter(3, 100, true)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.AllowRequest("1.2.3.4"), "request %d should pass", i+1)
	}
	assert.False(t, rl.AllowRequest("1.2.3.4"))
}

func TestAllowRequestHourLimit(t *testing.T) {
	rl := NewRateLimiter(0, 2, true)

	assert.True(t, rl.AllowRequest("1.2.3.4"))
	assert.True(t, rl.AllowRequest("1.2.3.4"))
	assert.False(t, rl.AllowRequest("1.2.3.4"))
}

func TestClientsAreIsolated(t *testing.T) {
	rl := NewRateLimiter(1, 100, true)

	assert.True(t, rl.AllowRequest("1.2.3.4"))
	assert.False(t, rl.AllowRequest("1.2.3.4"))
	assert.True(t, rl.AllowRequest("5.6.7.8"))
}

func TestDisabledLimiterAllowsEverything(t *testing.T) {
	rl := NewRateLimiter(1, 1, false)

	for i := 0; i < 10; i++ {
		assert.True(t, rl.AllowRequest("1.2.3.4"))
	}
}

func TestGetStats(t *testing.T) {
	rl := NewRateLimiter(10, 100, true)

	stats := rl.GetStats("1.2.3.4")
	assert.True(t, stats.Enabled)
	assert.Equal(t, 0, stats.RequestsLastMinute)
	assert.Equal(t, 10, stats.RemainingThisMinute)

	require.True(t, rl.AllowRequest("1.2.3.4"))
	require.True(t, rl.AllowRequest("1.2.3.4"))

	stats = rl.GetStats("1.2.3.4")
	assert.Equal(t, 2, stats.RequestsLastMinute)
	assert.Equal(t, 2, stats.RequestsLastHour)
	assert.Equal(t, 8, stats.RemainingThisMinute)
	assert.Equal(t, 98, stats.RemainingThisHour)
}

func TestGetStatsDisabled(t *testing.T) {
	rl := NewRateLimiter(10, 100, false)
	stats := rl.GetStats("1.2.3.4")
	assert.False(t, stats.Enabled)
}

func TestPruneDropsIdleClients(t *testing.T) {
	rl := NewRateLimiter(10, 100, true)

	require.True(t, rl.AllowRequest("1.2.3.4"))
	stale := time.Now().Add(-2 * time.Hour)
	rl.clients["9.9.9.9"] = &clientWindows{
		minuteWindow: []time.Time{stale},
		hourWindow:   []time.Time{stale},
	}

	pruned := rl.Prune()
	assert.Equal(t, 1, pruned)

	_, active := rl.clients["1.2.3.4"]
	assert.True(t, active)
	_, idle := rl.clients["9.9.9.9"]
	assert.False(t, idle)
}

func TestReset(t *testing.T) {
	rl := NewRateLimiter(1, 1, true)

	require.True(t, rl.AllowRequest("1.2.3.4"))
	require.False(t, rl.AllowRequest("1.2.3.4"))

	rl.Reset()
	assert.True(t, rl.AllowRequest("1.2.3.4"))
}

package ratelimit

import (
	"sync"
	"time"
)

// RateLimiter enforces per-client sliding-window request limits. Each client
// (keyed by IP) gets independent minute and hour windows.
type RateLimiter struct {
	requestsPerMinute int
	requestsPerHour   int
	enabled           bool

	// Request tracking per client key
	clients map[string]*clientWindows
	mu      sync.Mutex
}

type clientWindows struct {
	minuteWindow []time.Time
	hourWindow   []time.Time
}

// NewRateLimiter creates a new rate limiter with the given limits
func NewRateLimiter(requestsPerMinute, requestsPerHour int, enabled bool) *RateLimiter {
	return &RateLimiter{
		requestsPerMinute: requestsPerMinute,
		requestsPerHour:   requestsPerHour,
		enabled:           enabled,
		clients:           make(map[string]*clientWindows),
	}
}

// AllowRequest checks if a request from the given client is allowed.
// Returns true if allowed, false if a rate limit is exceeded.
func (rl *RateLimiter) AllowRequest(key string) bool {
	if !rl.enabled {
		return true
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()

	cw, ok := rl.clients[key]
	if !ok {
		cw = &clientWindows{}
		rl.clients[key] = cw
	}

	// Clean up old entries
	cw.cleanup(now)

	// Check limits
	if rl.requestsPerMinute > 0 && len(cw.minuteWindow) >= rl.requestsPerMinute {
		return false
	}
	if rl.requestsPerHour > 0 && len(cw.hourWindow) >= rl.requestsPerHour {
		return false
	}

	// Record the request
	cw.minuteWindow = append(cw.minuteWindow, now)
	cw.hourWindow = append(cw.hourWindow, now)

	return true
}

// cleanup removes expired entries from the time windows
func (cw *clientWindows) cleanup(now time.Time) {
	cw.minuteWindow = filterTimes(cw.minuteWindow, now.Add(-1*time.Minute))
	cw.hourWindow = filterTimes(cw.hourWindow, now.Add(-1*time.Hour))
}

// filterTimes keeps only times after the cutoff
func filterTimes(times []time.Time, cutoff time.Time) []time.Time {
	result := make([]time.Time, 0, len(times))
	for _, t := range times {
		if t.After(cutoff) {
			result = append(result, t)
		}
	}
	return result
}

// Stats contains rate limiter statistics for one client
type Stats struct {
	Enabled             bool `json:"enabled"`
	RequestsLastMinute  int  `json:"requests_last_minute"`
	RequestsLastHour    int  `json:"requests_last_hour"`
	LimitPerMinute      int  `json:"limit_per_minute"`
	LimitPerHour        int  `json:"limit_per_hour"`
	RemainingThisMinute int  `json:"remaining_this_minute"`
	RemainingThisHour   int  `json:"remaining_this_hour"`
}

// GetStats returns the current statistics for a client key
func (rl *RateLimiter) GetStats(key string) Stats {
	if !rl.enabled {
		return Stats{Enabled: false}
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	cw, ok := rl.clients[key]
	if !ok {
		return Stats{
			Enabled:             true,
			LimitPerMinute:      rl.requestsPerMinute,
			LimitPerHour:        rl.requestsPerHour,
			RemainingThisMinute: rl.requestsPerMinute,
			RemainingThisHour:   rl.requestsPerHour,
		}
	}

	cw.cleanup(time.Now())

	return Stats{
		Enabled:             true,
		RequestsLastMinute:  len(cw.minuteWindow),
		RequestsLastHour:    len(cw.hourWindow),
		LimitPerMinute:      rl.requestsPerMinute,
		LimitPerHour:        rl.requestsPerHour,
		RemainingThisMinute: maxInt(0, rl.requestsPerMinute-len(cw.minuteWindow)),
		RemainingThisHour:   maxInt(0, rl.requestsPerHour-len(cw.hourWindow)),
	}
}

// Prune drops clients with no requests inside the hour window. Called
// periodically so idle clients do not accumulate.
func (rl *RateLimiter) Prune() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	pruned := 0
	for key, cw := range rl.clients {
		cw.cleanup(now)
		if len(cw.hourWindow) == 0 {
			delete(rl.clients, key)
			pruned++
		}
	}
	return pruned
}

// Reset clears all tracked requests (useful for testing)
func (rl *RateLimiter) Reset() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.clients = make(map[string]*clientWindows)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"marketplace-portal/internal/config"
)

func TestParseDailyRunTime(t *testing.T) {
	s := NewScheduler(nil, nil, nil, nil, config.DefaultConfig())

	assert.Equal(t, "0 2 * * *", s.parseDailyRunTime("02:00"))
	assert.Equal(t, "30 4 * * *", s.parseDailyRunTime("04:30"))
	assert.Equal(t, "0 0 * * *", s.parseDailyRunTime("00:00"))
	assert.Equal(t, "0 2 * * *", s.parseDailyRunTime("not a time"))
	assert.Equal(t, "0 2 * * *", s.parseDailyRunTime(""))
}

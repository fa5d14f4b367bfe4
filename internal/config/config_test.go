package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 72, cfg.Auth.TokenTTLHours)
	assert.Equal(t, 72*time.Hour, cfg.Auth.TokenTTL())
	assert.Equal(t, "marketplace.events", cfg.Events.Exchange)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 90, cfg.Cleanup.RetentionDays)
	assert.Equal(t, "03:00", cfg.Scheduler.DailyRunTime)
}

func TestLoadConfigMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Server.Port, cfg.Server.Port)
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9090
auth:
  token_ttl_hours: 24
rate_limit:
  enabled: false
scheduler:
  daily_run_time: "04:30"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 24, cfg.Auth.TokenTTLHours)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, "04:30", cfg.Scheduler.DailyRunTime)

	// untouched sections keep their defaults
	assert.Equal(t, 90, cfg.Cleanup.RetentionDays)
}

func TestLoadConfigRejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0o644))

	_, err := LoadConfig(path)
	require.Error(t, err)
}

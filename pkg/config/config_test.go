package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 30*time.Minute, cfg.Signaling.SessionTTL)
}

func TestLoad_FromYAML(t *testing.T) {
	content := `
server:
  address: ":9999"
signaling:
  session_ttl: 10m
  peer_idle_ttl: 2m
screen_share:
  idle_timeout: 3m
recording:
  retention_days: 7
logging:
  level: debug
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Server.Address)
	assert.Equal(t, 10*time.Minute, cfg.Signaling.SessionTTL)
	assert.Equal(t, 2*time.Minute, cfg.Signaling.PeerIdleTTL)
	assert.Equal(t, 3*time.Minute, cfg.ScreenShare.IdleTimeout)
	assert.Equal(t, 7, cfg.Recording.RetentionDays)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// untouched defaults survive
	assert.Equal(t, time.Minute, cfg.Signaling.CleanupInterval)
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty server address", func(c *Config) { c.Server.Address = "" }},
		{"zero session ttl", func(c *Config) { c.Signaling.SessionTTL = 0 }},
		{"peer idle ttl above session ttl", func(c *Config) {
			c.Signaling.SessionTTL = time.Minute
			c.Signaling.PeerIdleTTL = time.Hour
		}},
		{"zero share idle timeout", func(c *Config) { c.ScreenShare.IdleTimeout = 0 }},
		{"zero retention days", func(c *Config) { c.Recording.RetentionDays = 0 }},
		{"auth enabled without secret", func(c *Config) { c.Auth.Enabled = true }},
		{"events enabled without address", func(c *Config) {
			c.Events.RedisEnabled = true
			c.Events.RedisAddress = ""
		}},
		{"rate limiting enabled without rps", func(c *Config) {
			c.RateLimiting.Enabled = true
			c.RateLimiting.HTTP.RequestsPerSecond = 0
		}},
		{"tracing sample rate out of range", func(c *Config) {
			c.Tracing.Enabled = true
			c.Tracing.SampleRate = 1.5
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("COLLABCORE_SERVER_ADDRESS", ":7070")
	t.Setenv("COLLABCORE_LOG_LEVEL", "warn")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Address)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

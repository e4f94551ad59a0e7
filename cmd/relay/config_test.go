package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, "RELAY_") {
			key := strings.SplitN(kv, "=", 2)[0]
			t.Setenv(key, "")
			os.Unsetenv(key)
		}
	}
}

// =============================================================================
// Config Loading Tests
// =============================================================================

func TestLoadConfig_DefaultValues(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "./data/relay.db", cfg.Database.DSN)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 10*time.Second, cfg.Pipeline.RequestTimeout)
	assert.Empty(t, cfg.Notify.WebhookURL)
	assert.Equal(t, 3, cfg.Notify.RetryMax)
	assert.Equal(t, 5, cfg.Notify.BreakerThreshold)
	assert.Equal(t, 30*time.Second, cfg.Notify.BreakerCooldown)
}

func TestLoadConfig_FromFile(t *testing.T) {
	clearEnv(t)

	configContent := `
server:
  host: "127.0.0.1"
  port: 9000
  read_timeout: 60s
  write_timeout: 60s
  shutdown_timeout: 15s

database:
  dsn: "/tmp/test.db"

log:
  level: "debug"
  format: "text"

pipeline:
  request_timeout: 2s

notify:
  webhook_url: "http://hooks.internal/orders"
  retry_max: 5
  retry_wait_min: 100ms
  retry_wait_max: 2s
  breaker_threshold: 10
  breaker_cooldown: 1m
`
	tmpFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(tmpFile, []byte(configContent), 0644))

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Address())
	assert.Equal(t, 15*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "/tmp/test.db", cfg.Database.DSN)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 2*time.Second, cfg.Pipeline.RequestTimeout)
	assert.Equal(t, "http://hooks.internal/orders", cfg.Notify.WebhookURL)
	assert.Equal(t, 5, cfg.Notify.RetryMax)
	assert.Equal(t, 100*time.Millisecond, cfg.Notify.RetryWaitMin)
	assert.Equal(t, 2*time.Second, cfg.Notify.RetryWaitMax)
	assert.Equal(t, 10, cfg.Notify.BreakerThreshold)
	assert.Equal(t, time.Minute, cfg.Notify.BreakerCooldown)
}

func TestLoadConfig_EnvironmentOverride(t *testing.T) {
	clearEnv(t)

	t.Setenv("RELAY_SERVER_HOST", "192.168.1.1")
	t.Setenv("RELAY_SERVER_PORT", "3000")
	t.Setenv("RELAY_DATABASE_DSN", "/custom/path.db")
	t.Setenv("RELAY_LOG_LEVEL", "warn")
	t.Setenv("RELAY_PIPELINE_REQUEST_TIMEOUT", "5s")
	t.Setenv("RELAY_NOTIFY_WEBHOOK_URL", "http://hooks.example/orders")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "192.168.1.1", cfg.Server.Host)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "/custom/path.db", cfg.Database.DSN)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 5*time.Second, cfg.Pipeline.RequestTimeout)
	assert.Equal(t, "http://hooks.example/orders", cfg.Notify.WebhookURL)
}

func TestLoadConfig_InvalidFileFails(t *testing.T) {
	clearEnv(t)

	tmpFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(tmpFile, []byte("server: [not: valid"), 0644))

	_, err := LoadConfig(tmpFile)
	assert.Error(t, err)
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
}

// =============================================================================
// Logger Setup Tests
// =============================================================================

func TestSetupLogger_Levels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "bogus"} {
		cfg := &Config{Log: LogConfig{Level: level, Format: "json"}}
		assert.NotNil(t, SetupLogger(cfg))
	}
}

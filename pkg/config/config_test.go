package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, ":8081", cfg.Relay.Address)
	assert.False(t, cfg.Database.Enabled)
	assert.False(t, cfg.RateLimiting.Enabled)
}

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Address)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
server:
  address: ":9090"
relay:
  ping_interval: 10s
auth:
  jwt_secret: "file-secret"
rate_limiting:
  enabled: true
  http:
    window_requests: 5
    window: 1m
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, 10*time.Second, cfg.Relay.PingInterval)
	assert.Equal(t, "file-secret", cfg.Auth.JWTSecret)
	assert.True(t, cfg.RateLimiting.Enabled)
	assert.Equal(t, 5, cfg.RateLimiting.HTTP.WindowRequests)

	// Fields the file does not mention keep their defaults.
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
}

func TestLoad_InvalidConfigRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
auth:
  jwt_secret: ""
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CHATWIRE_SERVER_ADDRESS", ":7070")
	t.Setenv("CHATWIRE_JWT_SECRET", "env-secret")
	t.Setenv("CHATWIRE_DATABASE_URL", "postgres://example/db")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Address)
	assert.Equal(t, "env-secret", cfg.Auth.JWTSecret)
	assert.True(t, cfg.Database.Enabled)
	assert.Equal(t, "postgres://example/db", cfg.Database.URL)
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty server address", func(c *Config) { c.Server.Address = "" }},
		{"zero ping interval", func(c *Config) { c.Relay.PingInterval = 0 }},
		{"zero send buffer", func(c *Config) { c.Relay.SendBufferSize = 0 }},
		{"database enabled without url", func(c *Config) {
			c.Database.Enabled = true
			c.Database.URL = ""
		}},
		{"redis enabled without address", func(c *Config) {
			c.Redis.Enabled = true
			c.Redis.Address = ""
		}},
		{"empty jwt secret", func(c *Config) { c.Auth.JWTSecret = "" }},
		{"rate limiting without window", func(c *Config) {
			c.RateLimiting.Enabled = true
			c.RateLimiting.HTTP.Window = 0
		}},
		{"tracing sample rate out of range", func(c *Config) {
			c.Tracing.Enabled = true
			c.Tracing.SampleRate = 2.0
		}},
		{"empty log level", func(c *Config) { c.Logging.Level = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

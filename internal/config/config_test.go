package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the file lookup at an empty temp dir so a stray
// config.yaml never leaks into a test.
func isolate(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv(ConfigPathEnvVar, "")
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, "http://localhost:8080", cfg.App.BaseURL)
	assert.Equal(t, 3, cfg.ShortLink.Length)
	assert.Equal(t, 5, cfg.ShortLink.MaxAttempts)
	assert.False(t, cfg.Redis.Enabled)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "development", cfg.Log.Environment)
}

func TestLoad_Environment(t *testing.T) {
	isolate(t)
	t.Setenv("PORT", "9000")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_DSN", "postgres://foodgram@localhost/foodgram?sslmode=disable")
	t.Setenv("BASE_URL", "https://foodgram.example/")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_TTL", "1h")
	t.Setenv("RATE_LIMIT_RATE", "2.5")
	t.Setenv("SHORT_LINK_MAX_ATTEMPTS", "8")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "https://foodgram.example", cfg.App.BaseURL)
	assert.True(t, cfg.IsProduction())
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, time.Hour, cfg.Redis.TTL)
	assert.InDelta(t, 2.5, cfg.RateLimit.Rate, 0.0001)
	assert.Equal(t, 8, cfg.ShortLink.MaxAttempts)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_YAMLFileBelowEnvironment(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "foodgram.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "7000"
log:
  level: debug
short_link:
  length: 4
`), 0o644))
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("PORT", "7100")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "7100", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 4, cfg.ShortLink.Length)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{"bad port", func(c *Config) { c.Server.Port = "0" }, "invalid port"},
		{"bad driver", func(c *Config) { c.Database.Driver = "mysql" }, "invalid database driver"},
		{"empty dsn", func(c *Config) { c.Database.DSN = "" }, "dsn cannot be empty"},
		{"bad environment", func(c *Config) { c.App.Environment = "staging" }, "invalid environment"},
		{"bad log level", func(c *Config) { c.Log.Level = "trace" }, "invalid log level"},
		{"zero token length", func(c *Config) { c.ShortLink.Length = 0 }, "short link length"},
		{"token length over max", func(c *Config) { c.ShortLink.Length = 17 }, "short link length"},
		{"zero attempts", func(c *Config) { c.ShortLink.MaxAttempts = 0 }, "max attempts"},
		{"rate limit without burst", func(c *Config) { c.RateLimit.Burst = 0 }, "rate limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}

	cfg := defaultConfig()
	assert.NoError(t, cfg.Validate())
}

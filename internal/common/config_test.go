package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, "Ideas Matter", cfg.App.Name)
	assert.Equal(t, "/api/v1", cfg.App.APIPrefix)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Progress.Backend)
	assert.Equal(t, 60, cfg.AI.RateLimitPerMinute)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFiles_MergesInOrder(t *testing.T) {
	dir := t.TempDir()

	base := filepath.Join(dir, "base.toml")
	override := filepath.Join(dir, "override.toml")

	require.NoError(t, os.WriteFile(base, []byte(`
[server]
port = 9000
host = "0.0.0.0"

[ai]
default_provider = "claude"
`), 0644))
	require.NoError(t, os.WriteFile(override, []byte(`
[server]
port = 9100

[progress]
backend = "badger"
`), 0644))

	cfg, err := LoadFromFiles(base, override)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, AIProviderClaude, cfg.AI.DefaultProvider)
	assert.Equal(t, "badger", cfg.Progress.Backend)
	// Untouched defaults survive
	assert.Equal(t, "gpt-4-turbo-preview", cfg.AI.OpenAI.Model)
}

func TestLoadFromFiles_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[server\nport = "), 0644))

	_, err := LoadFromFiles(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file 1 of 1")
}

func TestLoadFromFiles_MissingFile(t *testing.T) {
	_, err := LoadFromFiles(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("IDEAS_SERVER_PORT", "7777")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")
	t.Setenv("REDIS_HOST", "cache.internal")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("IDEAS_LOG_OUTPUT", "stdout, file")

	cfg, err := LoadFromFiles()
	require.NoError(t, err)

	assert.Equal(t, 7777, cfg.Server.Port)
	assert.Equal(t, "sk-ant-test", cfg.AI.Claude.APIKey)
	assert.Equal(t, "cache.internal:6380", cfg.Progress.Redis.Addr())
	assert.Equal(t, []string{"stdout", "file"}, cfg.Logging.Output)
}

func TestApplyFlagOverrides(t *testing.T) {
	cfg := NewDefaultConfig()
	ApplyFlagOverrides(cfg, 0, "")
	assert.Equal(t, 8000, cfg.Server.Port)

	ApplyFlagOverrides(cfg, 8123, "127.0.0.1")
	assert.Equal(t, 8123, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"redis backend", func(c *Config) { c.Progress.Backend = "redis" }, false},
		{"unknown backend", func(c *Config) { c.Progress.Backend = "postgres" }, true},
		{"unknown provider", func(c *Config) { c.AI.DefaultProvider = "watson" }, true},
		{"bad schedule", func(c *Config) { c.Strategy.ReaperSchedule = "every minute" }, true},
		{"empty schedule", func(c *Config) { c.Strategy.ReaperSchedule = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 2*time.Second, ParseDuration("2s", time.Minute))
	assert.Equal(t, time.Minute, ParseDuration("", time.Minute))
	assert.Equal(t, time.Minute, ParseDuration("soon", time.Minute))
}

func TestNewID(t *testing.T) {
	a := NewID(PrefixSession)
	b := NewID(PrefixSession)
	assert.NotEqual(t, a, b)
	assert.Contains(t, a, "ses_")
}

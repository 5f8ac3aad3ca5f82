package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "flipcalc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadSettings_Defaults(t *testing.T) {
	path := writeSettings(t, "{}\n")

	s, err := LoadSettings(path)
	require.NoError(t, err)

	assert.Equal(t, "info", s.Logging.Level)
	assert.Equal(t, "console", s.Logging.Format)
	assert.Equal(t, "memory", s.Cache.Type)
	assert.Equal(t, 5*time.Minute, s.Cache.TTL)
	assert.Equal(t, ":8080", s.Server.Addr)
	assert.Equal(t, 10.0, s.Server.RateLimit)
	assert.Equal(t, 20, s.Server.RateBurst)
	assert.Equal(t, 1200, s.Engine.MaxMonthsToSell)
	assert.Equal(t, "mean", s.Engine.SuggestionMethod)
	assert.Equal(t, path, s.File())
}

func TestLoadSettings_FileValues(t *testing.T) {
	path := writeSettings(t, `
logging:
  level: debug
  format: json
backend:
  url: http://backend.local/api
  timeout: 3s
cache:
  type: redis
  redis_addr: redis:6379
engine:
  suggestion_method: median
active_analysis: an-7
`)

	s, err := LoadSettings(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", s.Logging.Level)
	assert.Equal(t, "json", s.Logging.Format)
	assert.Equal(t, "http://backend.local/api", s.Backend.URL)
	assert.Equal(t, 3*time.Second, s.Backend.Timeout)
	assert.Equal(t, "redis", s.Cache.Type)
	assert.Equal(t, "redis:6379", s.Cache.RedisAddr)
	assert.Equal(t, "median", s.Engine.SuggestionMethod)
	assert.Equal(t, "an-7", s.ActiveAnalysis)
}

func TestLoadSettings_EnvironmentOverrides(t *testing.T) {
	path := writeSettings(t, "backend:\n  url: http://from-file\n")
	t.Setenv("FLIPCALC_BACKEND_URL", "http://from-env")
	t.Setenv("FLIPCALC_SERVER_RATE_BURST", "5")

	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, "http://from-env", s.Backend.URL)
	assert.Equal(t, 5, s.Server.RateBurst)
}

func TestLoadSettings_MissingExplicitFile(t *testing.T) {
	_, err := LoadSettings(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoadSettings_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{"log format", "logging:\n  format: xml\n", "invalid log format"},
		{"log level", "logging:\n  level: loud\n", "invalid log level"},
		{"cache type", "cache:\n  type: disk\n", "invalid cache type"},
		{"suggestion", "engine:\n  suggestion_method: mode\n", "invalid suggestion method"},
		{"months cap", "engine:\n  max_months_to_sell: 0\n", "max_months_to_sell must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSettings(writeSettings(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expected)
		})
	}
}

func TestSettings_SaveActiveAnalysis(t *testing.T) {
	path := writeSettings(t, "logging:\n  level: warn\n")

	s, err := LoadSettings(path)
	require.NoError(t, err)

	written, err := s.SaveActiveAnalysis("an-42")
	require.NoError(t, err)
	assert.Equal(t, path, written)
	assert.Equal(t, "an-42", s.ActiveAnalysis)

	reloaded, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, "an-42", reloaded.ActiveAnalysis)
	assert.Equal(t, "warn", reloaded.Logging.Level, "Existing keys should be preserved")
}

func TestLoadDotEnv_MissingFileIsFine(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(filepath.Join(dir)))
	defer os.Chdir(wd)

	assert.NoError(t, LoadDotEnv())
}

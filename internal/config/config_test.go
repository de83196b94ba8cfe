package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chtemp(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chtemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "https://nominatim.openstreetmap.org", cfg.Geocode.BaseURL)
	assert.Contains(t, cfg.Geocode.UserAgent, "pindrop")
	assert.InDelta(t, 1.0, cfg.Geocode.RateLimit, 0.001)
	assert.InDelta(t, 3.0, cfg.Notion.RateLimit, 0.001)
	assert.Empty(t, cfg.Notion.Token)
}

func TestLoadFromYAML(t *testing.T) {
	chtemp(t)

	yaml := `
notion:
  token: secret-token
  database: abc123
geocode:
  base_url: http://localhost:9999
log:
  level: debug
  format: console
server:
  port: 9090
`
	dir, _ := os.Getwd()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "secret-token", cfg.Notion.Token)
	assert.Equal(t, "abc123", cfg.Notion.Database)
	assert.Equal(t, "http://localhost:9999", cfg.Geocode.BaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoadFromEnv(t *testing.T) {
	chtemp(t)
	t.Setenv("PINDROP_NOTION_TOKEN", "env-token")
	t.Setenv("PINDROP_SERVER_PORT", "7070")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "env-token", cfg.Notion.Token)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.NotNil(t, zap.L())

	require.Error(t, InitLogger(LogConfig{Level: "not-a-level", Format: "json"}))
}

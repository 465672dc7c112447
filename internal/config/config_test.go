package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 3, cfg.Strategy.CampaignCount)
	assert.Equal(t, 45*time.Second, cfg.Scraper.Timeout)
	assert.False(t, cfg.Renderer.VideoEnabled)
}

func TestLoadOverlaysFileOnDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"port: \"9090\"\nstrategy:\n  model: gemini-2.5-pro\n  campaign_count: 5\nrenderer:\n  video_enabled: true\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "gemini-2.5-pro", cfg.Strategy.Model)
	assert.Equal(t, 5, cfg.Strategy.CampaignCount)
	assert.True(t, cfg.Renderer.VideoEnabled)
	// Untouched sections keep their defaults.
	assert.Equal(t, "https://app.scrapingbee.com/api/v1/", cfg.Scraper.BaseURL)
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: [broken"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestPortEnvOverride(t *testing.T) {
	t.Setenv("PORT", "3000")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "3000", cfg.Port)
}

func TestLoadSecretsRequiresBothKeys(t *testing.T) {
	t.Setenv("SCRAPINGBEE_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")
	_, err := LoadSecrets()
	require.Error(t, err)

	t.Setenv("SCRAPINGBEE_API_KEY", "sb-key")
	_, err = LoadSecrets()
	require.Error(t, err)

	t.Setenv("GOOGLE_API_KEY", "g-key")
	secrets, err := LoadSecrets()
	require.NoError(t, err)
	assert.Equal(t, "sb-key", secrets.ScrapingBeeKey)
	assert.Equal(t, "g-key", secrets.GoogleAPIKey)
}

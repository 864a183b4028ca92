package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, 3000, cfg.DefaultRadius)
	assert.Equal(t, 60*time.Second, cfg.PollInterval)
	assert.Equal(t, 10*time.Second, cfg.NotificationTTL)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoadNormalizesPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("env: weird\ngeoapify:\n  api_key: abc\npoll_interval: 5s\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "abc", cfg.Geoapify.APIKey)
	assert.Equal(t, "https://api.geoapify.com", cfg.Geoapify.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.PollInterval)
	assert.Equal(t, "127.0.0.1:8787", cfg.Listen)
	assert.False(t, cfg.HasHome())
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("env: [unterminated"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTripKeepsHome(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	lat, lon := 40.7128, -74.006
	cfg := DefaultConfig()
	cfg.Home = HomeConfig{Lat: &lat, Lon: &lon}
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.True(t, loaded.HasHome())
	assert.InDelta(t, lat, *loaded.Home.Lat, 1e-9)
	assert.InDelta(t, lon, *loaded.Home.Lon, 1e-9)
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("GONEXT_GEOAPIFY_API_KEY", "from-env")
	t.Setenv("GONEXT_ENV", "development")
	t.Setenv("GONEXT_DEFAULT_RADIUS", "1500")
	t.Setenv("GONEXT_POLL_INTERVAL", "200ms")

	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplyEnv())
	assert.Equal(t, "from-env", cfg.Geoapify.APIKey)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 1500, cfg.DefaultRadius)
	// Sub-second intervals fall back to the default.
	assert.Equal(t, 60*time.Second, cfg.PollInterval)
}

func TestApplyEnvRejectsBadRadius(t *testing.T) {
	t.Setenv("GONEXT_DEFAULT_RADIUS", "far")

	cfg := DefaultConfig()
	assert.Error(t, cfg.ApplyEnv())
}

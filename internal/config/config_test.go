package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, key := range []string{"HTTP_PORT", "REFRESH_INTERVAL", "STORE_PATH", "LOCATION_LAT", "LOCATION_LON", "NOTIFY_URLS", "MAX_RETRIES"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8087", cfg.Server.Port)
	assert.Equal(t, "https://api.open-meteo.com/v1", cfg.WeatherAPI.OpenMeteoURL)
	assert.Equal(t, "https://geocoding-api.open-meteo.com/v1", cfg.WeatherAPI.GeocodingURL)
	assert.Zero(t, cfg.WeatherAPI.ClientTimeout)
	assert.Equal(t, 30*time.Minute, cfg.Scheduler.RefreshInterval)
	assert.Equal(t, 260*time.Millisecond, cfg.Search.Debounce)
	assert.Equal(t, "weather-buddy.db", cfg.Store.Path)
	assert.Nil(t, cfg.Location)
	assert.Empty(t, cfg.Notify.URLs)
	assert.Equal(t, 2, cfg.Retry.MaxRetries)
	assert.InDelta(t, 2.0, cfg.Retry.Multiplier, 0)
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("REFRESH_INTERVAL", "0s")
	t.Setenv("STORE_PATH", MemoryStorePath)
	t.Setenv("LOCATION_LAT", "45.35")
	t.Setenv("LOCATION_LON", "-75.9")
	t.Setenv("NOTIFY_URLS", "logger://, ,generic://example.com/hook")
	t.Setenv("MAX_RETRIES", "zero")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Zero(t, cfg.Scheduler.RefreshInterval)
	assert.Equal(t, MemoryStorePath, cfg.Store.Path)
	require.NotNil(t, cfg.Location)
	assert.InDelta(t, 45.35, cfg.Location.Latitude, 0)
	assert.InDelta(t, -75.9, cfg.Location.Longitude, 0)
	assert.Equal(t, []string{"logger://", "generic://example.com/hook"}, cfg.Notify.URLs)
	assert.Zero(t, cfg.Retry.MaxRetries)
}

func TestLoadConfig_HalfLocationIgnored(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LOCATION_LAT", "45.35")
	t.Setenv("LOCATION_LON", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Nil(t, cfg.Location)
}

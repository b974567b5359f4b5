package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// MemoryStorePath selects the in-memory store instead of a sqlite file.
const MemoryStorePath = ":memory:"

type Config struct {
	Server struct {
		Port         string
		ReadTimeout  time.Duration
		WriteTimeout time.Duration
		LogLevel     string
	}

	WeatherAPI struct {
		OpenMeteoURL  string
		GeocodingURL  string
		NominatimURL  string
		UserAgent     string
		ClientTimeout time.Duration
	}

	Scheduler struct {
		RefreshInterval time.Duration
	}

	Search struct {
		Debounce time.Duration
		CacheTTL time.Duration
	}

	Store struct {
		Path string
	}

	// Location is nil unless both coordinates are configured.
	Location *struct {
		Latitude  float64
		Longitude float64
	}

	Notify struct {
		URLs    []string
		Timeout time.Duration
	}

	CircuitBreaker struct {
		Threshold int
		Timeout   time.Duration
	}

	Retry struct {
		MaxRetries int
		Delay      time.Duration
		Multiplier float64
	}
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if err := godotenv.Load(); err != nil {
		zap.L().Info("No .env file found, using environment variables")
	}

	cfg := &Config{}

	// Server configuration
	cfg.Server.Port = getEnv("HTTP_PORT", "8087")
	cfg.Server.ReadTimeout = parseDuration(getEnv("HTTP_READ_TIMEOUT", "10s"))
	cfg.Server.WriteTimeout = parseDuration(getEnv("HTTP_WRITE_TIMEOUT", "10s"))
	cfg.Server.LogLevel = getEnv("LOG_LEVEL", "info")

	// Weather API configuration
	cfg.WeatherAPI.OpenMeteoURL = getEnv("OPENMETEO_URL", "https://api.open-meteo.com/v1")
	cfg.WeatherAPI.GeocodingURL = getEnv("GEOCODING_URL", "https://geocoding-api.open-meteo.com/v1")
	cfg.WeatherAPI.NominatimURL = getEnv("NOMINATIM_URL", "https://nominatim.openstreetmap.org")
	cfg.WeatherAPI.UserAgent = getEnv("HTTP_USER_AGENT", "weather-buddy/1.0")
	cfg.WeatherAPI.ClientTimeout = parseDuration(getEnv("HTTP_CLIENT_TIMEOUT", "0s"))

	// Scheduler configuration
	cfg.Scheduler.RefreshInterval = parseDuration(getEnv("REFRESH_INTERVAL", "30m"))

	// Search configuration
	cfg.Search.Debounce = parseDuration(getEnv("SEARCH_DEBOUNCE", "260ms"))
	cfg.Search.CacheTTL = parseDuration(getEnv("SEARCH_CACHE_TTL", "5m"))

	cfg.Store.Path = getEnv("STORE_PATH", "weather-buddy.db")

	// Device location
	lat, lon := os.Getenv("LOCATION_LAT"), os.Getenv("LOCATION_LON")
	if lat != "" && lon != "" {
		cfg.Location = &struct {
			Latitude  float64
			Longitude float64
		}{
			Latitude:  parseFloat(lat),
			Longitude: parseFloat(lon),
		}
	}

	// Notification configuration
	cfg.Notify.URLs = splitList(getEnv("NOTIFY_URLS", ""))
	cfg.Notify.Timeout = parseDuration(getEnv("NOTIFY_TIMEOUT", "10s"))

	// Circuit breaker configuration
	cfg.CircuitBreaker.Threshold = parseInt(getEnv("CIRCUIT_BREAKER_THRESHOLD", "3"))
	cfg.CircuitBreaker.Timeout = parseDuration(getEnv("CIRCUIT_BREAKER_TIMEOUT", "30s"))

	// Retry configuration
	cfg.Retry.MaxRetries = parseInt(getEnv("MAX_RETRIES", "2"))
	cfg.Retry.Delay = parseDuration(getEnv("RETRY_DELAY", "500ms"))
	cfg.Retry.Multiplier = parseFloat(getEnv("RETRY_MULTIPLIER", "2"))

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseDuration(value string) time.Duration {
	duration, err := time.ParseDuration(value)
	if err != nil {
		zap.L().Warn("Failed to parse duration", zap.String("value", value), zap.Error(err))
		return 0
	}
	return duration
}

func parseInt(value string) int {
	intValue, err := strconv.Atoi(value)
	if err != nil {
		zap.L().Warn("Failed to parse int", zap.String("value", value), zap.Error(err))
		return 0
	}
	return intValue
}

func parseFloat(value string) float64 {
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		zap.L().Warn("Failed to parse float", zap.String("value", value), zap.Error(err))
		return 0
	}
	return floatValue
}

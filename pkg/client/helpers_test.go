package client

import (
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"go.uber.org/zap"
)

func setupHTTPMock(t *testing.T) {
	t.Helper()
	httpmock.Activate()
	t.Cleanup(httpmock.DeactivateAndReset)
}

func testConfig() ClientConfig {
	return ClientConfig{
		Timeout:        time.Second,
		UserAgent:      "weather-buddy-test",
		MaxRetries:     0,
		RetryDelay:     time.Millisecond,
		Multiplier:     2,
		BreakerTimeout: time.Second,
	}
}

func newTestOpenMeteo(t *testing.T) *OpenMeteoClient {
	t.Helper()
	c := NewOpenMeteoClient("", "", testConfig(), zap.NewNop())
	c.now = func() time.Time { return time.UnixMilli(1717236000000) }
	return c
}

const geocodeOttawaResponse = `{
  "results": [
    {"id": 6094817, "name": "Ottawa", "latitude": 45.41117, "longitude": -75.69812,
     "country": "Canada", "admin1": "Ontario", "timezone": "America/Toronto"},
    {"id": 4401242, "name": "Ottawa", "latitude": 41.34559, "longitude": -88.84258,
     "country": "United States", "admin1": "Illinois", "timezone": "America/Chicago"}
  ],
  "generationtime_ms": 0.6
}`

const forecastResponseJSON = `{
  "latitude": 45.42, "longitude": -75.7, "timezone": "America/Toronto",
  "current": {
    "time": "2024-06-01T10:30", "interval": 900,
    "temperature_2m": 18.4, "apparent_temperature": 17.1,
    "relative_humidity_2m": 64, "is_day": 1, "weather_code": 61,
    "wind_speed_10m": 12.3, "snowfall": 0
  },
  "hourly": {
    "time": ["2024-06-01T09:00", "2024-06-01T10:00", "2024-06-01T11:00", "2024-06-01T12:00"],
    "precipitation_probability": [10, 20, 70, 40],
    "uv_index": [2.1, 3.5, 4.75, null],
    "snowfall": [0, 0, 0, 0]
  },
  "daily": {
    "time": ["2024-06-01", "2024-06-02"],
    "weather_code": [61, 3],
    "temperature_2m_max": [21.5, 24],
    "temperature_2m_min": [11.2, 13],
    "precipitation_probability_max": [80, 15],
    "uv_index_max": [6.2, 7.1],
    "sunrise": ["2024-06-01T05:17", "2024-06-02T05:16"],
    "sunset": ["2024-06-01T20:43", "2024-06-02T20:44"],
    "wind_speed_10m_max": [22.4, 18],
    "snowfall_sum": [0, 0]
  }
}`

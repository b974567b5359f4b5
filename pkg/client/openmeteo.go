package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-buddy/internal/cities"
	"github.com/bobby-s-dev/weather-buddy/internal/models"
)

const (
	DefaultForecastURL  = "https://api.open-meteo.com/v1"
	DefaultGeocodingURL = "https://geocoding-api.open-meteo.com/v1"
	DefaultGeocodeCount = 8

	currentFields = "temperature_2m,apparent_temperature,relative_humidity_2m,is_day,weather_code,wind_speed_10m,snowfall"
	hourlyFields  = "precipitation_probability,uv_index,snowfall"
	dailyFields   = "weather_code,temperature_2m_max,temperature_2m_min,precipitation_probability_max,uv_index_max,sunrise,sunset,wind_speed_10m_max,snowfall_sum"
)

type OpenMeteoClient struct {
	*BaseClient
	forecastURL  string
	geocodingURL string
	now          func() time.Time
}

type geocodeResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Admin1    string  `json:"admin1"`
		Country   string  `json:"country"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Timezone  string  `json:"timezone"`
	} `json:"results"`
}

// Every value is a pointer or a slice of pointers: the API omits fields and
// sends nulls, and neither may fail the parse.
type forecastResponse struct {
	Current struct {
		Time                string   `json:"time"`
		Temperature2M       *float64 `json:"temperature_2m"`
		ApparentTemperature *float64 `json:"apparent_temperature"`
		RelativeHumidity2M  *float64 `json:"relative_humidity_2m"`
		IsDay               *float64 `json:"is_day"`
		WeatherCode         *float64 `json:"weather_code"`
		WindSpeed10M        *float64 `json:"wind_speed_10m"`
	} `json:"current"`
	Hourly struct {
		Time                     []string   `json:"time"`
		PrecipitationProbability []*float64 `json:"precipitation_probability"`
		UVIndex                  []*float64 `json:"uv_index"`
		Snowfall                 []*float64 `json:"snowfall"`
	} `json:"hourly"`
	Daily struct {
		Time                        []string   `json:"time"`
		WeatherCode                 []*float64 `json:"weather_code"`
		Temperature2MMax            []*float64 `json:"temperature_2m_max"`
		Temperature2MMin            []*float64 `json:"temperature_2m_min"`
		PrecipitationProbabilityMax []*float64 `json:"precipitation_probability_max"`
		UVIndexMax                  []*float64 `json:"uv_index_max"`
		Sunrise                     []*string  `json:"sunrise"`
		Sunset                      []*string  `json:"sunset"`
		WindSpeed10MMax             []*float64 `json:"wind_speed_10m_max"`
		SnowfallSum                 []*float64 `json:"snowfall_sum"`
	} `json:"daily"`
}

func NewOpenMeteoClient(forecastURL, geocodingURL string, config ClientConfig, logger *zap.Logger) *OpenMeteoClient {
	if forecastURL == "" {
		forecastURL = DefaultForecastURL
	}
	if geocodingURL == "" {
		geocodingURL = DefaultGeocodingURL
	}
	return &OpenMeteoClient{
		BaseClient:   NewBaseClient("openmeteo", config, logger),
		forecastURL:  strings.TrimRight(forecastURL, "/"),
		geocodingURL: strings.TrimRight(geocodingURL, "/"),
		now:          time.Now,
	}
}

// GeocodeCities searches cities by name. A blank query returns no cities
// without touching the network.
func (c *OpenMeteoClient) GeocodeCities(ctx context.Context, query string, count int) ([]models.City, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return []models.City{}, nil
	}
	if count <= 0 {
		count = DefaultGeocodeCount
	}

	params := url.Values{}
	params.Set("name", q)
	params.Set("count", strconv.Itoa(count))
	params.Set("language", "en")
	params.Set("format", "json")

	data, err := c.Get(ctx, c.geocodingURL+"/search?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %w", models.ErrGeocodeFailed, models.ErrNetwork, err)
	}

	var response geocodeResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, fmt.Errorf("%w: failed to parse response: %w", models.ErrGeocodeFailed, err)
	}

	found := make([]models.City, 0, len(response.Results))
	for _, r := range response.Results {
		found = append(found, models.City{
			ID:        cities.IDFromLatLon(r.Latitude, r.Longitude),
			Name:      r.Name,
			Admin1:    r.Admin1,
			Country:   r.Country,
			Latitude:  r.Latitude,
			Longitude: r.Longitude,
			Timezone:  r.Timezone,
		})
	}

	c.logger.Debug("Geocode search completed",
		zap.String("query", q),
		zap.Int("results", len(found)))

	return found, nil
}

// FirstCity returns the best geocoding match, or ErrNoResults.
func (c *OpenMeteoClient) FirstCity(ctx context.Context, query string) (models.City, error) {
	found, err := c.GeocodeCities(ctx, query, 1)
	if err != nil {
		return models.City{}, err
	}
	if len(found) == 0 {
		return models.City{}, fmt.Errorf("%w: %q", models.ErrNoResults, query)
	}
	return found[0], nil
}

func (c *OpenMeteoClient) FetchForecast(ctx context.Context, city models.City) (*models.ForecastData, error) {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(city.Latitude, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(city.Longitude, 'f', -1, 64))
	params.Set("current", currentFields)
	params.Set("hourly", hourlyFields)
	params.Set("daily", dailyFields)
	params.Set("timezone", "auto")

	data, err := c.Get(ctx, c.forecastURL+"/forecast?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %w", models.ErrForecastFailed, models.ErrNetwork, err)
	}

	var response forecastResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, fmt.Errorf("%w: failed to parse forecast response: %w", models.ErrForecastFailed, err)
	}

	forecast := parseForecast(&response, city)
	forecast.FetchedAt = c.now().UnixMilli()
	return forecast, nil
}

func parseForecast(r *forecastResponse, city models.City) *models.ForecastData {
	idx := NearestHourIndex(r.Hourly.Time, r.Current.Time)

	forecast := &models.ForecastData{
		City: city,
		Current: models.CurrentForecast{
			TimeISO:          r.Current.Time,
			TemperatureC:     deref(r.Current.Temperature2M),
			FeelsLikeC:       deref(r.Current.ApparentTemperature),
			HumidityPct:      deref(r.Current.RelativeHumidity2M),
			WindKph:          deref(r.Current.WindSpeed10M),
			WeatherCode:      int(deref(r.Current.WeatherCode)),
			IsDay:            deref(r.Current.IsDay) != 0,
			RainChancePctNow: valueAt(r.Hourly.PrecipitationProbability, idx),
			UVNow:            valueAt(r.Hourly.UVIndex, idx),
			SnowfallCmNow:    valueAt(r.Hourly.Snowfall, idx),
		},
		Daily: make([]models.DailyForecast, 0, len(r.Daily.Time)),
	}

	d := &r.Daily
	for i, date := range d.Time {
		forecast.Daily = append(forecast.Daily, models.DailyForecast{
			DateISO:       date,
			WeatherCode:   int(numberAt(d.WeatherCode, i)),
			TempMaxC:      numberAt(d.Temperature2MMax, i),
			TempMinC:      numberAt(d.Temperature2MMin, i),
			RainChancePct: numberAt(d.PrecipitationProbabilityMax, i),
			UVMax:         numberAt(d.UVIndexMax, i),
			WindMaxKph:    numberAt(d.WindSpeed10MMax, i),
			SunriseISO:    stringAt(d.Sunrise, i),
			SunsetISO:     stringAt(d.Sunset, i),
			SnowfallCmSum: numberAt(d.SnowfallSum, i),
		})
	}

	return forecast
}

// NearestHourIndex returns the first hourly slot at or after current. ISO-8601
// local times sort lexically, so plain string comparison is enough. When every
// slot is earlier the last one is used; an empty series yields -1.
func NearestHourIndex(times []string, current string) int {
	if len(times) == 0 {
		return -1
	}
	for i, t := range times {
		if t >= current {
			return i
		}
	}
	return len(times) - 1
}

func valueAt(values []*float64, i int) *float64 {
	if i < 0 || i >= len(values) || values[i] == nil {
		return nil
	}
	v := *values[i]
	return &v
}

func numberAt(values []*float64, i int) float64 {
	return deref(valueAt(values, i))
}

func stringAt(values []*string, i int) string {
	if i < 0 || i >= len(values) || values[i] == nil {
		return ""
	}
	return *values[i]
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-buddy/internal/models"
)

const DefaultNominatimURL = "https://nominatim.openstreetmap.org"

// NominatimClient reverse-geocodes coordinates through OpenStreetMap.
// The public instance requires an identifying User-Agent.
type NominatimClient struct {
	*BaseClient
	baseURL string
}

type nominatimResponse struct {
	Error   string `json:"error"`
	Address struct {
		City         string `json:"city"`
		Town         string `json:"town"`
		Village      string `json:"village"`
		Municipality string `json:"municipality"`
		County       string `json:"county"`
		State        string `json:"state"`
		Country      string `json:"country"`
	} `json:"address"`
}

func NewNominatimClient(baseURL string, config ClientConfig, logger *zap.Logger) *NominatimClient {
	if baseURL == "" {
		baseURL = DefaultNominatimURL
	}
	return &NominatimClient{
		BaseClient: NewBaseClient("nominatim", config, logger),
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

func (c *NominatimClient) ReverseGeocode(ctx context.Context, lat, lon float64) ([]models.Place, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("format", "jsonv2")
	params.Set("zoom", "10")
	params.Set("accept-language", "en")

	data, err := c.Get(ctx, c.baseURL+"/reverse?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrNetwork, err)
	}

	var response nominatimResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, fmt.Errorf("failed to parse reverse geocode response: %w", err)
	}

	// Nominatim answers 200 with an error field for open water and the like.
	if response.Error != "" {
		return []models.Place{}, nil
	}

	a := response.Address
	place := models.Place{
		City:      firstNonEmpty(a.City, a.Town, a.Village, a.Municipality),
		Subregion: a.County,
		Region:    a.State,
		Country:   a.Country,
	}

	c.logger.Debug("Reverse geocode completed",
		zap.Float64("lat", lat),
		zap.Float64("lon", lon),
		zap.String("city", place.City))

	return []models.Place{place}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Package location answers where the device is. On a server there is no GPS,
// so the position comes from configuration and only the name is looked up.
package location

import (
	"context"
	"fmt"

	"github.com/bobby-s-dev/weather-buddy/internal/cities"
	"github.com/bobby-s-dev/weather-buddy/internal/models"
)

// FallbackName is shown when reverse geocoding yields nothing usable.
const FallbackName = "My Place"

type Position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Locator is permission-gated: callers must get true from
// RequestPermission before asking for a position.
type Locator interface {
	RequestPermission(ctx context.Context) (bool, error)
	CurrentPosition(ctx context.Context) (Position, error)
	ReverseGeocode(ctx context.Context, pos Position) ([]models.Place, error)
}

type ReverseGeocoder interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) ([]models.Place, error)
}

// Static reports a fixed, configured position. Without one, permission is
// denied.
type Static struct {
	pos      *Position
	geocoder ReverseGeocoder
}

func NewStatic(pos *Position, geocoder ReverseGeocoder) *Static {
	return &Static{pos: pos, geocoder: geocoder}
}

func (s *Static) RequestPermission(_ context.Context) (bool, error) {
	return s.pos != nil, nil
}

func (s *Static) CurrentPosition(_ context.Context) (Position, error) {
	if s.pos == nil {
		return Position{}, fmt.Errorf("current position: %w", models.ErrPermissionDenied)
	}
	return *s.pos, nil
}

func (s *Static) ReverseGeocode(ctx context.Context, pos Position) ([]models.Place, error) {
	if s.geocoder == nil {
		return []models.Place{}, nil
	}
	return s.geocoder.ReverseGeocode(ctx, pos.Latitude, pos.Longitude)
}

// CityFromPlace names a position after the first place, preferring the most
// specific level available.
func CityFromPlace(pos Position, places []models.Place) models.City {
	city := models.City{
		Name:      FallbackName,
		Latitude:  pos.Latitude,
		Longitude: pos.Longitude,
	}
	if len(places) > 0 {
		p := places[0]
		switch {
		case p.City != "":
			city.Name = p.City
		case p.Subregion != "":
			city.Name = p.Subregion
		case p.Region != "":
			city.Name = p.Region
		}
		city.Admin1 = p.Region
		city.Country = p.Country
	}
	return cities.WithID(city)
}

package location

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobby-s-dev/weather-buddy/internal/models"
)

type fakeGeocoder struct {
	places []models.Place
	lat    float64
	lon    float64
}

func (f *fakeGeocoder) ReverseGeocode(_ context.Context, lat, lon float64) ([]models.Place, error) {
	f.lat, f.lon = lat, lon
	return f.places, nil
}

func TestStatic_WithoutPositionIsDenied(t *testing.T) {
	s := NewStatic(nil, nil)

	ok, err := s.RequestPermission(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.CurrentPosition(context.Background())
	assert.ErrorIs(t, err, models.ErrPermissionDenied)
}

func TestStatic_ReportsConfiguredPosition(t *testing.T) {
	geo := &fakeGeocoder{places: []models.Place{{City: "Kanata"}}}
	s := NewStatic(&Position{Latitude: 45.35, Longitude: -75.9}, geo)

	ok, err := s.RequestPermission(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)

	pos, err := s.CurrentPosition(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Position{Latitude: 45.35, Longitude: -75.9}, pos)

	places, err := s.ReverseGeocode(context.Background(), pos)
	require.NoError(t, err)
	assert.Equal(t, "Kanata", places[0].City)
	assert.InDelta(t, 45.35, geo.lat, 0)
	assert.InDelta(t, -75.9, geo.lon, 0)
}

func TestCityFromPlace(t *testing.T) {
	pos := Position{Latitude: 45.35, Longitude: -75.9}

	tests := []struct {
		name   string
		places []models.Place
		want   string
	}{
		{"city", []models.Place{{City: "Kanata", Subregion: "Ottawa", Region: "Ontario"}}, "Kanata"},
		{"subregion", []models.Place{{Subregion: "Ottawa", Region: "Ontario"}}, "Ottawa"},
		{"region", []models.Place{{Region: "Ontario"}}, "Ontario"},
		{"empty place", []models.Place{{}}, FallbackName},
		{"no places", nil, FallbackName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			city := CityFromPlace(pos, tt.places)
			assert.Equal(t, tt.want, city.Name)
			assert.Equal(t, "45.3500,-75.9000", city.ID)
		})
	}

	city := CityFromPlace(pos, []models.Place{{City: "Kanata", Region: "Ontario", Country: "Canada"}})
	assert.Equal(t, "Ontario", city.Admin1)
	assert.Equal(t, "Canada", city.Country)
}

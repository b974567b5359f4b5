package dresstip

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bobby-s-dev/weather-buddy/internal/models"
)

func TestFor_Buckets(t *testing.T) {
	tests := []struct {
		feelsLike float64
		want      string
	}{
		{-20, "Big coat"},
		{-5, "Big coat"},
		{-4.9, "Coat"},
		{5, "Coat"},
		{15, "Jacket"},
		{25, "T-shirt"},
		{25.1, "Shorts"},
	}

	for _, tt := range tests {
		tip := For(models.CurrentForecast{FeelsLikeC: tt.feelsLike}, nil)
		assert.Equal(t, tt.want, tip.Short, "feels like %v", tt.feelsLike)
	}
}

func TestFor_UsesFeelsLikeNotTemperature(t *testing.T) {
	tip := For(models.CurrentForecast{TemperatureC: 2, FeelsLikeC: -6}, nil)

	assert.Equal(t, "Big coat", tip.Short)
	assert.Equal(t, "Big coat 🧥", tip.Text)
	assert.Empty(t, tip.Extras)
}

func TestFor_Extras(t *testing.T) {
	current := models.CurrentForecast{
		FeelsLikeC:       20,
		WindKph:          30,
		RainChancePctNow: models.Float(55),
		UVNow:            models.Float(8),
	}

	tip := For(current, nil)

	assert.Equal(t, []string{Umbrella, Cap, Sunscreen}, tip.Extras)
	assert.Equal(t, "T-shirt 👕 + ☂️🧢🧴", tip.Text)
}

func TestFor_FallsBackToToday(t *testing.T) {
	today := &models.DailyForecast{RainChancePct: 70, UVMax: 9}

	tip := For(models.CurrentForecast{FeelsLikeC: 30}, today)
	assert.Equal(t, []string{Umbrella, Sunscreen}, tip.Extras)

	current := models.CurrentForecast{FeelsLikeC: 30, RainChancePctNow: models.Float(10), UVNow: models.Float(2)}
	tip = For(current, today)
	assert.Empty(t, tip.Extras)
	assert.Equal(t, "Shorts 🩳", tip.Text)
}

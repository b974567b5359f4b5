package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFriendlyErrorFrom(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"geocode failure", fmt.Errorf("%w: %w: timeout", ErrGeocodeFailed, ErrNetwork), "I can't find that city. Try another!"},
		{"no results", ErrNoResults, "I can't find that city. Try another!"},
		{"forecast failure", fmt.Errorf("%w: %w: HTTP 503", ErrForecastFailed, ErrNetwork), "Clouds got in the way. Try again!"},
		{"anything else", errors.New("boom"), "Clouds got in the way. Try again!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FriendlyErrorFrom(tt.err)
			assert.Equal(t, "Oops!", got.Title)
			assert.Equal(t, tt.want, got.Message)
		})
	}
}

func TestPreferencesClone(t *testing.T) {
	p := Preferences{
		Favorites:      []City{{ID: "a"}},
		AlertRules:     []AlertRule{{ID: AlertRain, Enabled: true}},
		AlertLastFired: map[string]int64{"k": 1},
	}

	c := p.Clone()
	c.Favorites[0].ID = "b"
	c.AlertRules[0].Enabled = false
	c.AlertLastFired["k"] = 2

	assert.Equal(t, "a", p.Favorites[0].ID)
	assert.True(t, p.AlertRules[0].Enabled)
	assert.Equal(t, int64(1), p.AlertLastFired["k"])
}

func TestThemeChoiceValid(t *testing.T) {
	assert.True(t, ThemeAuto.Valid())
	assert.True(t, ThemeChoice("night").Valid())
	assert.False(t, ThemeChoice("plaid").Valid())
	assert.True(t, Fahrenheit.Valid())
	assert.False(t, TemperatureUnit("K").Valid())
	assert.True(t, AlertUV.Valid())
	assert.False(t, AlertID("hail").Valid())
}

// Package dresstip suggests what to wear from the current conditions.
package dresstip

import (
	"strings"

	"github.com/bobby-s-dev/weather-buddy/internal/models"
)

const (
	Umbrella  = "☂️"
	Cap       = "🧢"
	Sunscreen = "🧴"
)

type Tip struct {
	Short  string   `json:"short"`
	Text   string   `json:"text"`
	Emoji  string   `json:"emoji"`
	Extras []string `json:"extras"`
}

var buckets = []struct {
	maxFeelsLikeC float64
	base          string
	emoji         string
}{
	{-5, "Big coat", "🧥"},
	{5, "Coat", "🧥"},
	{15, "Jacket", "🧥"},
	{25, "T-shirt", "👕"},
}

// For picks the clothing bucket from the feels-like temperature only. Rain
// and UV prefer the now-cast and fall back to today's aggregate.
func For(current models.CurrentForecast, today *models.DailyForecast) Tip {
	tip := Tip{Short: "Shorts", Emoji: "🩳", Extras: []string{}}
	for _, b := range buckets {
		if current.FeelsLikeC <= b.maxFeelsLikeC {
			tip.Short, tip.Emoji = b.base, b.emoji
			break
		}
	}

	rain := current.RainChancePctNow
	if rain == nil && today != nil {
		rain = &today.RainChancePct
	}
	uv := current.UVNow
	if uv == nil && today != nil {
		uv = &today.UVMax
	}

	if rain != nil && *rain >= 50 {
		tip.Extras = append(tip.Extras, Umbrella)
	}
	if current.WindKph >= 25 {
		tip.Extras = append(tip.Extras, Cap)
	}
	if uv != nil && *uv >= 7 {
		tip.Extras = append(tip.Extras, Sunscreen)
	}

	tip.Text = tip.Short + " " + tip.Emoji
	if len(tip.Extras) > 0 {
		tip.Text += " + " + strings.Join(tip.Extras, "")
	}
	return tip
}

// Package alerts evaluates the fixed weather alert rules against a forecast
// and rate-limits how often each alert may fire.
package alerts

import (
	"fmt"

	"github.com/bobby-s-dev/weather-buddy/internal/format"
	"github.com/bobby-s-dev/weather-buddy/internal/models"
)

// FixedThresholds are applied regardless of the threshold stored on a rule.
// TODO: honor AlertRule.Threshold once the settings screen can edit it.
var FixedThresholds = map[models.AlertID]float64{
	models.AlertRain: 60, // % precipitation probability
	models.AlertWind: 35, // kph
	models.AlertCold: 0,  // °C
	models.AlertHeat: 30, // °C daily max
	models.AlertUV:   6,  // UV index
}

func DefaultRules() []models.AlertRule {
	rules := make([]models.AlertRule, 0, len(models.AlertIDs))
	for _, id := range models.AlertIDs {
		rules = append(rules, models.AlertRule{ID: id, Enabled: true, Threshold: FixedThresholds[id]})
	}
	return rules
}

// Evaluate returns one hit per enabled rule whose metric crosses its
// threshold. Rain, wind and cold prefer the current reading and fall back to
// today's aggregate; heat and UV only look at today's maximum.
func Evaluate(f *models.ForecastData, rules []models.AlertRule) []models.AlertHit {
	if f == nil {
		return nil
	}
	today := f.Today()
	var hits []models.AlertHit

	for _, r := range rules {
		if !r.Enabled {
			continue
		}
		threshold, ok := FixedThresholds[r.ID]
		if !ok {
			continue
		}

		switch r.ID {
		case models.AlertRain:
			rain := f.Current.RainChancePctNow
			if rain == nil && today != nil {
				rain = &today.RainChancePct
			}
			if rain != nil && *rain >= threshold {
				hits = append(hits, models.AlertHit{
					ID:    models.AlertRain,
					Title: "🌧️ Rain Alert!",
					Body:  fmt.Sprintf("%d%% chance of rain. Umbrella time! ☔", format.Round(*rain)),
				})
			}
		case models.AlertWind:
			wind := f.Current.WindKph
			if wind >= threshold {
				hits = append(hits, models.AlertHit{
					ID:    models.AlertWind,
					Title: "💨 Wind Alert!",
					Body:  fmt.Sprintf("Windy day ahead (%d kph). Hold onto your hat! 🎩", format.Round(wind)),
				})
			}
		case models.AlertCold:
			temp := f.Current.TemperatureC
			if temp <= threshold {
				hits = append(hits, models.AlertHit{
					ID:    models.AlertCold,
					Title: "❄️ Cold Alert!",
					Body:  fmt.Sprintf("Brrr! It's %d°C. Bundle up warm! 🧣", format.Round(temp)),
				})
			}
		case models.AlertHeat:
			if today != nil && today.TempMaxC >= threshold {
				hits = append(hits, models.AlertHit{
					ID:    models.AlertHeat,
					Title: "🥵 Heat Alert!",
					Body:  fmt.Sprintf("Hot day! High of %d°C. Stay cool! 💧", format.Round(today.TempMaxC)),
				})
			}
		case models.AlertUV:
			if today != nil && today.UVMax >= threshold {
				hits = append(hits, models.AlertHit{
					ID:    models.AlertUV,
					Title: "☀️ UV Alert!",
					Body:  fmt.Sprintf("Strong sun (UV %d). Wear sunscreen! 🧴", format.Round(today.UVMax)),
				})
			}
		}
	}

	return hits
}

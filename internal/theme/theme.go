// Package theme classifies the current weather into the visual mode that
// drives backgrounds and the buddy character.
package theme

import (
	"strings"

	"github.com/bobby-s-dev/weather-buddy/internal/models"
)

// WindyKph is the wind speed at which a dry day turns into a wind day.
const WindyKph = 28

type Palette struct {
	Label    string `json:"label"`
	BgTop    string `json:"bgTop"`
	BgBottom string `json:"bgBottom"`
	Text     string `json:"text"`
	Accent   string `json:"accent"`
}

var palettes = map[models.ThemeKey]Palette{
	models.ThemeSunny: {Label: "Sun", BgTop: "#FFE07A", BgBottom: "#FFB703", Text: "#1F2937", Accent: "#F97316"},
	models.ThemeRain:  {Label: "Rain", BgTop: "#BFE6FF", BgBottom: "#5DADE2", Text: "#102A43", Accent: "#2563EB"},
	models.ThemeSnow:  {Label: "Snow", BgTop: "#EAF7FF", BgBottom: "#BBDFF3", Text: "#0B2545", Accent: "#38BDF8"},
	models.ThemeWind:  {Label: "Wind", BgTop: "#D7FFE7", BgBottom: "#66D19E", Text: "#064E3B", Accent: "#059669"},
	models.ThemeNight: {Label: "Night", BgTop: "#1B2559", BgBottom: "#0B102D", Text: "#F9FAFB", Accent: "#A78BFA"},
	models.ThemeCloud: {Label: "Cloud", BgTop: "#E5E7EB", BgBottom: "#9CA3AF", Text: "#111827", Accent: "#64748B"},
}

// Freezing drizzle and freezing rain count as snow.
func isSnowCode(code int) bool {
	switch {
	case code >= 71 && code <= 77:
		return true
	case code == 85, code == 86, code == 56, code == 57, code == 66, code == 67:
		return true
	}
	return false
}

func isRainCode(code int) bool {
	switch {
	case code >= 51 && code <= 55, code >= 61 && code <= 65, code >= 80 && code <= 82:
		return true
	case code == 95, code == 96, code == 99:
		return true
	}
	return false
}

// KeyFrom classifies a WMO weather code. Precipitation wins over wind, so a
// thunderstorm is always rain. windKph may be nil when unknown.
func KeyFrom(code int, isDay bool, windKph *float64) models.ThemeKey {
	switch {
	case !isDay:
		return models.ThemeNight
	case isSnowCode(code):
		return models.ThemeSnow
	case isRainCode(code):
		return models.ThemeRain
	case windKph != nil && *windKph >= WindyKph:
		return models.ThemeWind
	case code == 0 || code == 1:
		return models.ThemeSunny
	default:
		return models.ThemeCloud
	}
}

// Resolve returns the forced key for a non-auto choice, otherwise the key
// classified from the current forecast. Without a forecast auto yields cloud.
func Resolve(choice models.ThemeChoice, f *models.ForecastData) models.ThemeKey {
	if choice != models.ThemeAuto && choice.Valid() {
		return models.ThemeKey(choice)
	}
	if f == nil {
		return models.ThemeCloud
	}
	wind := f.Current.WindKph
	return KeyFrom(f.Current.WeatherCode, f.Current.IsDay, &wind)
}

func Emoji(k models.ThemeKey) string {
	switch k {
	case models.ThemeSunny:
		return "☀️"
	case models.ThemeRain:
		return "🌧️"
	case models.ThemeSnow:
		return "❄️"
	case models.ThemeWind:
		return "💨"
	case models.ThemeNight:
		return "🌙"
	default:
		return "☁️"
	}
}

func BuddyEmoji(k models.ThemeKey) string {
	switch k {
	case models.ThemeSunny:
		return "😎"
	case models.ThemeRain:
		return "☂️"
	case models.ThemeSnow:
		return "🧣"
	case models.ThemeWind:
		return "🍃"
	case models.ThemeNight:
		return "😴"
	default:
		return "☁️"
	}
}

func Label(k models.ThemeKey) string {
	return PaletteFor(k).Label
}

func PaletteFor(k models.ThemeKey) Palette {
	if p, ok := palettes[k]; ok {
		return p
	}
	return palettes[models.ThemeCloud]
}

var cityEmojis = []struct {
	match []string
	emoji string
}{
	{[]string{"ottawa"}, "🦫"},
	{[]string{"toronto"}, "🦉"},
	{[]string{"montreal", "montréal"}, "🍁"},
	{[]string{"vancouver"}, "🐳"},
	{[]string{"calgary"}, "🐴"},
	{[]string{"edmonton"}, "🛷"},
	{[]string{"new york"}, "🗽"},
	{[]string{"london"}, "🎡"},
}

// CityEmoji picks a mascot for well-known city names.
func CityEmoji(name string) string {
	n := strings.ToLower(name)
	for _, c := range cityEmojis {
		for _, m := range c.match {
			if strings.Contains(n, m) {
				return c.emoji
			}
		}
	}
	return "🏙️"
}

var descriptions = map[int]string{
	0:  "Clear sky",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Foggy",
	48: "Depositing rime fog",
	51: "Light drizzle",
	53: "Moderate drizzle",
	55: "Dense drizzle",
	56: "Light freezing drizzle",
	57: "Dense freezing drizzle",
	61: "Slight rain",
	63: "Moderate rain",
	65: "Heavy rain",
	66: "Light freezing rain",
	67: "Heavy freezing rain",
	71: "Slight snow fall",
	73: "Moderate snow fall",
	75: "Heavy snow fall",
	77: "Snow grains",
	80: "Slight rain showers",
	81: "Moderate rain showers",
	82: "Violent rain showers",
	85: "Slight snow showers",
	86: "Heavy snow showers",
	95: "Thunderstorm",
	96: "Thunderstorm with slight hail",
	99: "Thunderstorm with heavy hail",
}

// Describe maps a WMO weather interpretation code to English text.
func Describe(code int) string {
	if desc, ok := descriptions[code]; ok {
		return desc
	}
	return "Unknown"
}

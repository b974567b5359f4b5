// Package format renders readings for display. Absent values render as "--".
package format

import (
	"math"
	"strconv"

	"github.com/bobby-s-dev/weather-buddy/internal/models"
)

const missing = "--"

// Round rounds half up, matching how the readings are shown to children.
func Round(v float64) int {
	return int(math.Floor(v + 0.5))
}

func CelsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}

func Temp(c float64, unit models.TemperatureUnit) string {
	if unit == models.Fahrenheit {
		return strconv.Itoa(Round(CelsiusToFahrenheit(c))) + "°"
	}
	return strconv.Itoa(Round(c)) + "°"
}

func Pct(p *float64) string {
	if p == nil {
		return missing
	}
	return strconv.Itoa(Round(*p)) + "%"
}

func Kph(kph *float64) string {
	if kph == nil {
		return missing
	}
	return strconv.Itoa(Round(*kph)) + " kph"
}

func UV(index *float64) string {
	if index == nil {
		return missing
	}
	return strconv.Itoa(Round(*index))
}

func Snowfall(cm *float64) string {
	switch {
	case cm == nil:
		return missing
	case *cm <= 0:
		return "0 cm"
	case *cm < 1:
		return strconv.Itoa(Round(*cm*10)) + " mm"
	default:
		return strconv.FormatFloat(*cm, 'f', 1, 64) + " cm"
	}
}

func Clamp(v, lo, hi int) int {
	return min(hi, max(lo, v))
}

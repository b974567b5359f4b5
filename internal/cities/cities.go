// Package cities derives city identities from coordinates.
//
// Two identities exist and must not be mixed up. Key rounds to whole degrees
// (~111km cells) and is used to decide whether a GPS fix, a search result and
// a stored favorite are the same place. ID rounds to four decimals (~11m) and
// is the storage key of a city record and its forecast cache.
package cities

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/bobby-s-dev/weather-buddy/internal/models"
)

// KeyDecimals is the rounding applied to coordinates in Key.
const KeyDecimals = 0

// IDDecimals is the rounding applied to coordinates in IDFromLatLon.
const IDDecimals = 4

// Default is shown on first run and whenever the favorites list empties.
func Default() models.City {
	return models.City{
		ID:        IDFromLatLon(45.4215, -75.6972),
		Name:      "Ottawa",
		Admin1:    "Ontario",
		Country:   "Canada",
		Latitude:  45.4215,
		Longitude: -75.6972,
		Timezone:  "America/Toronto",
	}
}

func IDFromLatLon(lat, lon float64) string {
	return strconv.FormatFloat(lat, 'f', IDDecimals, 64) + "," + strconv.FormatFloat(lon, 'f', IDDecimals, 64)
}

// WithID fills in the storage id when the caller did not provide one.
func WithID(c models.City) models.City {
	if c.ID == "" {
		c.ID = IDFromLatLon(c.Latitude, c.Longitude)
	}
	return c
}

// Key ignores the name: reverse geocoding may return a suburb where search
// returns the metro area.
func Key(c models.City) string {
	return roundCoord(c.Latitude) + "|" + roundCoord(c.Longitude)
}

// roundCoord rounds half up, so -75.5 becomes -75 and 45.5 becomes 46.
func roundCoord(v float64) string {
	r := math.Floor(v + 0.5)
	if r == 0 {
		return "0"
	}
	return strconv.FormatFloat(r, 'f', KeyDecimals, 64)
}

func IsSame(a, b models.City) bool {
	return Key(a) == Key(b)
}

// FindByKey returns the index of the first city sharing target's key, or -1.
func FindByKey(list []models.City, target models.City) int {
	key := Key(target)
	for i, c := range list {
		if Key(c) == key {
			return i
		}
	}
	return -1
}

func ExistsIn(list []models.City, target models.City) bool {
	return FindByKey(list, target) >= 0
}

var (
	spaces      = regexp.MustCompile(`\s+`)
	punctuation = regexp.MustCompile(`[.,'"()-]`)
)

// Normalize lowercases, trims, collapses whitespace and drops punctuation.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = spaces.ReplaceAllString(s, " ")
	return punctuation.ReplaceAllString(s, "")
}

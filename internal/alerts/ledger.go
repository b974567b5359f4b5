package alerts

import (
	"strings"
	"time"

	"github.com/bobby-s-dev/weather-buddy/internal/models"
)

const (
	// Cooldown blocks an alert that fired recently even on a new date.
	Cooldown = 6 * time.Hour
	// Retention bounds how long fired entries are remembered.
	Retention = 14 * 24 * time.Hour
)

// LedgerKey is cityID|date|alertID. City ids never contain '|'.
func LedgerKey(cityID, date string, id models.AlertID) string {
	return cityID + "|" + date + "|" + string(id)
}

func splitKey(key string) (cityID, date string, id models.AlertID, ok bool) {
	parts := strings.Split(key, "|")
	if len(parts) != 3 {
		return "", "", "", false
	}
	return parts[0], parts[1], models.AlertID(parts[2]), true
}

// ShouldFire reports whether the alert may fire for cityID on date. An alert
// fires at most once per city per date, and never within Cooldown of its
// previous firing for the same city.
func ShouldFire(fired map[string]int64, cityID, date string, id models.AlertID, now time.Time) bool {
	if _, done := fired[LedgerKey(cityID, date, id)]; done {
		return false
	}
	for key, at := range fired {
		c, _, alertID, ok := splitKey(key)
		if !ok || c != cityID || alertID != id {
			continue
		}
		if now.Sub(time.UnixMilli(at)) < Cooldown {
			return false
		}
	}
	return true
}

func MarkFired(fired map[string]int64, cityID, date string, id models.AlertID, now time.Time) {
	fired[LedgerKey(cityID, date, id)] = now.UnixMilli()
}

// Prune drops entries older than Retention and returns how many were removed.
func Prune(fired map[string]int64, now time.Time) int {
	removed := 0
	for key, at := range fired {
		if now.Sub(time.UnixMilli(at)) > Retention {
			delete(fired, key)
			removed++
		}
	}
	return removed
}

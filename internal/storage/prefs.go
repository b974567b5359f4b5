package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-buddy/internal/alerts"
	"github.com/bobby-s-dev/weather-buddy/internal/cities"
	"github.com/bobby-s-dev/weather-buddy/internal/models"
)

const (
	PrefsKey       = "wbk_prefs_v2"
	LegacyPrefsKey = "wbk_prefs_v1"
	PrefsVersion   = 2

	MaxFavorites = 5

	DefaultReminderHour   = 7
	DefaultReminderMinute = 30
)

func ForecastKey(cityID string) string {
	return "wbk_forecast_" + cityID
}

func DefaultPreferences() models.Preferences {
	def := cities.Default()
	return models.Preferences{
		Version:              PrefsVersion,
		SelectedCity:         def,
		Favorites:            []models.City{def},
		KidMode:              true,
		ThemeChoice:          models.ThemeAuto,
		TemperatureUnit:      models.Celsius,
		NotificationsEnabled: true,
		NotificationSound:    true,
		AlertRules:           alerts.DefaultRules(),
		AlertLastFired:       map[string]int64{},
		DailyReminder: models.DailyReminder{
			Hour:   DefaultReminderHour,
			Minute: DefaultReminderMinute,
		},
	}
}

// Reconcile repairs a decoded preferences value so every invariant holds:
// favorites are unique by id, capped, and never empty; rules cover every
// alert in canonical order; enums and the reminder time are in range.
func Reconcile(p models.Preferences) models.Preferences {
	p = p.Clone()
	p.Version = PrefsVersion

	seen := make(map[string]bool, len(p.Favorites))
	favorites := make([]models.City, 0, MaxFavorites)
	for _, c := range p.Favorites {
		c = cities.WithID(c)
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		favorites = append(favorites, c)
		if len(favorites) == MaxFavorites {
			break
		}
	}
	if len(favorites) == 0 {
		favorites = append(favorites, cities.Default())
	}
	p.Favorites = favorites

	if p.SelectedCity.Name == "" && p.SelectedCity.Latitude == 0 && p.SelectedCity.Longitude == 0 {
		p.SelectedCity = cities.Default()
	}
	p.SelectedCity = cities.WithID(p.SelectedCity)

	enabled := make(map[models.AlertID]bool, len(p.AlertRules))
	for _, r := range p.AlertRules {
		if r.ID.Valid() {
			if _, dup := enabled[r.ID]; !dup {
				enabled[r.ID] = r.Enabled
			}
		}
	}
	rules := alerts.DefaultRules()
	for i := range rules {
		if on, ok := enabled[rules[i].ID]; ok {
			rules[i].Enabled = on
		}
	}
	p.AlertRules = rules

	if !p.TemperatureUnit.Valid() {
		p.TemperatureUnit = models.Celsius
	}
	if !p.ThemeChoice.Valid() {
		p.ThemeChoice = models.ThemeAuto
	}

	p.DailyReminder.Hour = clampInt(p.DailyReminder.Hour, 0, 23)
	p.DailyReminder.Minute = clampInt(p.DailyReminder.Minute, 0, 59)

	return p
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Repository reads and writes the two record kinds the app persists.
type Repository struct {
	kv     KV
	logger *zap.Logger
}

func NewRepository(kv KV, logger *zap.Logger) *Repository {
	return &Repository{kv: kv, logger: logger}
}

// LoadPrefs returns the reconciled preferences, or nil when nothing is
// stored. A legacy record is migrated to the current key. Undecodable JSON
// yields an error wrapping models.ErrStorageCorrupt.
func (r *Repository) LoadPrefs(ctx context.Context) (*models.Preferences, error) {
	raw, ok, err := r.kv.Get(ctx, PrefsKey)
	if err != nil {
		return nil, err
	}
	if ok {
		prefs, err := decodePrefs(PrefsKey, raw)
		if err != nil {
			return nil, err
		}
		return &prefs, nil
	}

	raw, ok, err = r.kv.Get(ctx, LegacyPrefsKey)
	if err != nil || !ok {
		return nil, err
	}
	prefs, err := decodePrefs(LegacyPrefsKey, raw)
	if err != nil {
		return nil, err
	}

	if err := r.SavePrefs(ctx, prefs); err != nil {
		r.logger.Warn("Failed to save migrated preferences", zap.Error(err))
		return &prefs, nil
	}
	if err := r.kv.Delete(ctx, LegacyPrefsKey); err != nil {
		r.logger.Warn("Failed to delete legacy preferences", zap.Error(err))
	}
	r.logger.Info("Migrated legacy preferences",
		zap.String("from", LegacyPrefsKey),
		zap.String("to", PrefsKey))

	return &prefs, nil
}

// decodePrefs lays the stored JSON over the defaults, so fields an older
// version never wrote keep their default values. City and rule values are
// cleared first: decoding into a populated struct would keep default fields
// that the stored JSON omits.
func decodePrefs(key string, raw []byte) (models.Preferences, error) {
	prefs := DefaultPreferences()
	prefs.SelectedCity = models.City{}
	prefs.Favorites = nil
	prefs.AlertRules = nil
	if err := json.Unmarshal(raw, &prefs); err != nil {
		return models.Preferences{}, fmt.Errorf("%w: %s: %w", models.ErrStorageCorrupt, key, err)
	}
	return Reconcile(prefs), nil
}

func (r *Repository) SavePrefs(ctx context.Context, p models.Preferences) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}
	return r.kv.Set(ctx, PrefsKey, data)
}

// LoadForecast returns the cached forecast for cityID, or nil when absent.
func (r *Repository) LoadForecast(ctx context.Context, cityID string) (*models.ForecastData, error) {
	key := ForecastKey(cityID)
	raw, ok, err := r.kv.Get(ctx, key)
	if err != nil || !ok {
		return nil, err
	}

	var f models.ForecastData
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", models.ErrStorageCorrupt, key, err)
	}
	return &f, nil
}

func (r *Repository) SaveForecast(ctx context.Context, cityID string, f *models.ForecastData) error {
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to encode forecast: %w", err)
	}
	return r.kv.Set(ctx, ForecastKey(cityID), data)
}

func (r *Repository) ClearForecast(ctx context.Context, cityID string) error {
	return r.kv.Delete(ctx, ForecastKey(cityID))
}

package storage

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-buddy/internal/cities"
	"github.com/bobby-s-dev/weather-buddy/internal/models"
)

var (
	toronto   = models.City{ID: "43.6532,-79.3832", Name: "Toronto", Admin1: "Ontario", Country: "Canada", Latitude: 43.6532, Longitude: -79.3832}
	vancouver = models.City{ID: "49.2827,-123.1207", Name: "Vancouver", Country: "Canada", Latitude: 49.2827, Longitude: -123.1207}
)

func newRepo(t *testing.T) (*Repository, *MemoryKV) {
	t.Helper()
	kv := NewMemoryKV(zap.NewNop())
	return NewRepository(kv, zap.NewNop()), kv
}

func sampleForecast() *models.ForecastData {
	return &models.ForecastData{
		City:      toronto,
		FetchedAt: 1717236000123,
		Current: models.CurrentForecast{
			TimeISO:          "2024-06-01T10:30",
			TemperatureC:     18.4,
			FeelsLikeC:       17.1,
			HumidityPct:      64,
			WindKph:          12.3,
			WeatherCode:      61,
			IsDay:            true,
			RainChancePctNow: models.Float(70),
			UVNow:            models.Float(4.75),
		},
		Daily: []models.DailyForecast{
			{DateISO: "2024-06-01", WeatherCode: 61, TempMaxC: 21.5, TempMinC: 11.2, RainChancePct: 80, UVMax: 6.2,
				WindMaxKph: 22.4, SunriseISO: "2024-06-01T05:17", SunsetISO: "2024-06-01T20:43"},
			{DateISO: "2024-06-02", WeatherCode: 3, TempMaxC: 24, TempMinC: 13, SnowfallCmSum: 0.4},
		},
	}
}

func TestForecastCache_RoundTrip(t *testing.T) {
	ctx := context.Background()

	for name, kv := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			repo := NewRepository(kv, zap.NewNop())
			want := sampleForecast()

			require.NoError(t, repo.SaveForecast(ctx, toronto.ID, want))
			got, err := repo.LoadForecast(ctx, toronto.ID)

			require.NoError(t, err)
			assert.Equal(t, want, got)

			require.NoError(t, repo.ClearForecast(ctx, toronto.ID))
			got, err = repo.LoadForecast(ctx, toronto.ID)
			require.NoError(t, err)
			assert.Nil(t, got)
		})
	}
}

func TestForecastCache_Corrupt(t *testing.T) {
	ctx := context.Background()
	repo, kv := newRepo(t)
	require.NoError(t, kv.Set(ctx, ForecastKey("x"), []byte(`{"city":`)))

	got, err := repo.LoadForecast(ctx, "x")

	assert.Nil(t, got)
	assert.ErrorIs(t, err, models.ErrStorageCorrupt)
}

func TestLoadPrefs_Absent(t *testing.T) {
	repo, _ := newRepo(t)

	prefs, err := repo.LoadPrefs(context.Background())

	require.NoError(t, err)
	assert.Nil(t, prefs)
}

func TestLoadPrefs_Corrupt(t *testing.T) {
	ctx := context.Background()
	repo, kv := newRepo(t)
	require.NoError(t, kv.Set(ctx, PrefsKey, []byte(`not json`)))

	prefs, err := repo.LoadPrefs(ctx)

	assert.Nil(t, prefs)
	assert.ErrorIs(t, err, models.ErrStorageCorrupt)
}

func TestPrefs_SaveLoad(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t)

	want := DefaultPreferences()
	want.SelectedCity = toronto
	want.Favorites = []models.City{toronto, cities.Default()}
	want.KidMode = false
	want.TemperatureUnit = models.Fahrenheit
	want.ThemeChoice = models.ThemeChoice("snow")
	want.AlertRules[1].Enabled = false
	want.AlertLastFired["43.6532,-79.3832|2024-06-01|rain"] = 1717236000000
	want.DailyReminder = models.DailyReminder{Enabled: true, Hour: 6, Minute: 45, NotificationID: "abc"}

	require.NoError(t, repo.SavePrefs(ctx, want))
	got, err := repo.LoadPrefs(ctx)

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want, *got)
}

func TestLoadPrefs_OmittedFieldsAreNotInherited(t *testing.T) {
	ctx := context.Background()
	repo, kv := newRepo(t)
	raw, err := json.Marshal(map[string]any{
		"version":      2,
		"selectedCity": vancouver,
		"favorites":    []models.City{vancouver},
	})
	require.NoError(t, err)
	require.NoError(t, kv.Set(ctx, PrefsKey, raw))

	got, err := repo.LoadPrefs(ctx)

	require.NoError(t, err)
	assert.Equal(t, vancouver, got.SelectedCity)
	assert.Equal(t, []models.City{vancouver}, got.Favorites)
	assert.Empty(t, got.SelectedCity.Admin1)
	assert.True(t, got.NotificationSound)
}

func TestLoadPrefs_MigratesLegacy(t *testing.T) {
	ctx := context.Background()
	repo, kv := newRepo(t)
	legacy := `{"selectedCity":` + mustJSON(t, toronto) + `,"favorites":[` + mustJSON(t, toronto) + `],"kidMode":false}`
	require.NoError(t, kv.Set(ctx, LegacyPrefsKey, []byte(legacy)))

	got, err := repo.LoadPrefs(ctx)

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, PrefsVersion, got.Version)
	assert.Equal(t, toronto, got.SelectedCity)
	assert.Equal(t, []models.City{toronto}, got.Favorites)
	assert.False(t, got.KidMode)
	assert.Equal(t, models.Celsius, got.TemperatureUnit)
	assert.Len(t, got.AlertRules, len(models.AlertIDs))

	_, ok, _ := kv.Get(ctx, LegacyPrefsKey)
	assert.False(t, ok)
	_, ok, _ = kv.Get(ctx, PrefsKey)
	assert.True(t, ok)
}

func TestReconcile(t *testing.T) {
	noID := models.City{Name: "Montreal", Country: "Canada", Latitude: 45.5017, Longitude: -73.5673}
	in := models.Preferences{
		Favorites: []models.City{
			toronto, toronto, noID, vancouver,
			{ID: "1", Name: "A", Latitude: 1, Longitude: 1},
			{ID: "2", Name: "B", Latitude: 2, Longitude: 2},
			{ID: "3", Name: "C", Latitude: 3, Longitude: 3},
		},
		ThemeChoice:     "lava",
		TemperatureUnit: "K",
		AlertRules: []models.AlertRule{
			{ID: "uv", Enabled: false, Threshold: 1},
			{ID: "hail", Enabled: true},
			{ID: "rain", Enabled: false},
			{ID: "rain", Enabled: true},
		},
		DailyReminder: models.DailyReminder{Hour: 31, Minute: -4},
	}

	out := Reconcile(in)

	assert.Equal(t, PrefsVersion, out.Version)
	require.Len(t, out.Favorites, MaxFavorites)
	assert.Equal(t, toronto, out.Favorites[0])
	assert.Equal(t, "45.5017,-73.5673", out.Favorites[1].ID)
	assert.Equal(t, "2", out.Favorites[4].ID)
	assert.Equal(t, cities.Default(), out.SelectedCity)
	assert.Equal(t, models.ThemeAuto, out.ThemeChoice)
	assert.Equal(t, models.Celsius, out.TemperatureUnit)
	assert.Equal(t, 23, out.DailyReminder.Hour)
	assert.Equal(t, 0, out.DailyReminder.Minute)
	assert.NotNil(t, out.AlertLastFired)

	require.Len(t, out.AlertRules, len(models.AlertIDs))
	for i, id := range models.AlertIDs {
		assert.Equal(t, id, out.AlertRules[i].ID)
	}
	assert.False(t, out.AlertRules[0].Enabled, "first stored rain rule wins")
	assert.True(t, out.AlertRules[1].Enabled)
	assert.False(t, out.AlertRules[4].Enabled)
	assert.InDelta(t, 6, out.AlertRules[4].Threshold, 0)

	// input untouched
	assert.Len(t, in.Favorites, 7)
}

func TestReconcile_EmptyFavorites(t *testing.T) {
	out := Reconcile(models.Preferences{SelectedCity: toronto})

	assert.Equal(t, []models.City{cities.Default()}, out.Favorites)
	assert.Equal(t, toronto, out.SelectedCity)
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

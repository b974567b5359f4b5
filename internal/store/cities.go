package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-buddy/internal/cities"
	"github.com/bobby-s-dev/weather-buddy/internal/location"
	"github.com/bobby-s-dev/weather-buddy/internal/models"
	"github.com/bobby-s-dev/weather-buddy/internal/storage"
)

var noLocationNotice = models.FriendlyError{Title: "Oops!", Message: "No location. Showing Ottawa!"}

// SelectCity switches the selection, paints that city's cached forecast if
// there is one, persists, and refreshes.
func (s *Store) SelectCity(ctx context.Context, city models.City) error {
	city = cities.WithID(city)

	s.mu.Lock()
	s.prefs.SelectedCity = city
	s.lastErr = nil
	// Invalidate any fetch already in flight for the previous city.
	s.gen++
	s.mu.Unlock()

	cached := s.loadCache(ctx, city.ID)

	s.mu.Lock()
	if s.prefs.SelectedCity.ID == city.ID {
		switch {
		case cached != nil:
			s.forecast = cached
			s.status = models.StatusCached
		case s.forecast != nil && s.forecast.City.ID != city.ID:
			s.forecast = nil
		}
	}
	s.mu.Unlock()

	s.persistPrefs(ctx)

	return s.refreshCity(ctx, city)
}

// AddFavorite pins city and selects it. A city matching an existing favorite
// or the current selection by coarse key is re-selected instead of being
// added twice.
func (s *Store) AddFavorite(ctx context.Context, city models.City) error {
	city = cities.WithID(city)

	s.mu.Lock()
	target := city
	duplicate := true
	if idx := cities.FindByKey(s.prefs.Favorites, city); idx >= 0 {
		target = s.prefs.Favorites[idx]
		s.prefs.Favorites = moveToFront(s.prefs.Favorites, idx)
	} else if cities.IsSame(s.prefs.SelectedCity, city) {
		target = s.prefs.SelectedCity
	} else {
		duplicate = false
		s.prefs.Favorites = append([]models.City{city}, s.prefs.Favorites...)
		if len(s.prefs.Favorites) > storage.MaxFavorites {
			s.prefs.Favorites = s.prefs.Favorites[:storage.MaxFavorites]
		}
	}
	if duplicate {
		s.pushToast(models.ToastNotice, "Already added!", fmt.Sprintf("%s is already in your cities.", target.Name))
	}
	favorites := len(s.prefs.Favorites)
	s.mu.Unlock()

	s.metrics.SetFavorites(favorites)
	s.logger.Info("Favorite added",
		zap.String("city_id", target.ID),
		zap.String("city", target.Name),
		zap.Bool("duplicate", duplicate))

	return s.SelectCity(ctx, target)
}

func moveToFront(list []models.City, idx int) []models.City {
	out := make([]models.City, 0, len(list))
	out = append(out, list[idx])
	out = append(out, list[:idx]...)
	return append(out, list[idx+1:]...)
}

// RemoveFavorite unpins the city with exactly this id. The list never
// empties: the default city takes the last slot. When the removed city was
// selected, the city now at its position is selected instead.
func (s *Store) RemoveFavorite(ctx context.Context, cityID string) error {
	s.mu.Lock()
	idx := -1
	for i, c := range s.prefs.Favorites {
		if c.ID == cityID {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return nil
	}

	remaining := make([]models.City, 0, len(s.prefs.Favorites)-1)
	remaining = append(remaining, s.prefs.Favorites[:idx]...)
	remaining = append(remaining, s.prefs.Favorites[idx+1:]...)

	var next *models.City
	if len(remaining) == 0 {
		def := cities.Default()
		remaining = []models.City{def}
		next = &def
	} else if s.prefs.SelectedCity.ID == cityID {
		c := remaining[min(idx, len(remaining)-1)]
		next = &c
	}
	s.prefs.Favorites = remaining
	favorites := len(remaining)
	s.mu.Unlock()

	s.metrics.SetFavorites(favorites)
	s.logger.Info("Favorite removed", zap.String("city_id", cityID))

	if next != nil {
		return s.SelectCity(ctx, *next)
	}
	s.persistPrefs(ctx)
	return nil
}

// UseMyLocation adds the device's position as a favorite. Without a locator,
// permission, or a position fix it shows the default city instead.
func (s *Store) UseMyLocation(ctx context.Context) error {
	if s.locator == nil {
		return s.locationFallback(ctx, fmt.Errorf("no locator: %w", models.ErrPermissionDenied))
	}

	granted, err := s.locator.RequestPermission(ctx)
	if err != nil {
		return s.locationFallback(ctx, err)
	}
	if !granted {
		return s.locationFallback(ctx, models.ErrPermissionDenied)
	}

	pos, err := s.locator.CurrentPosition(ctx)
	if err != nil {
		return s.locationFallback(ctx, err)
	}

	places, err := s.locator.ReverseGeocode(ctx, pos)
	if err != nil {
		s.logger.Warn("Reverse geocoding failed, using a generic name", zap.Error(err))
		places = nil
	}

	return s.AddFavorite(ctx, location.CityFromPlace(pos, places))
}

func (s *Store) locationFallback(ctx context.Context, reason error) error {
	s.logger.Warn("Location unavailable, showing default city", zap.Error(reason))

	err := s.SelectCity(ctx, cities.Default())

	s.mu.Lock()
	if s.lastErr == nil {
		e := noLocationNotice
		s.lastErr = &e
	}
	s.mu.Unlock()
	return err
}

package store

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bobby-s-dev/weather-buddy/internal/alerts"
	"github.com/bobby-s-dev/weather-buddy/internal/models"
	"github.com/bobby-s-dev/weather-buddy/internal/notify"
)

const dispatchTimeout = 30 * time.Second

// Refresh fetches the selected city's forecast. On failure the cached
// forecast is shown if there is one; the returned error is informational
// and the state already reflects it.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	city := s.prefs.SelectedCity
	s.mu.Unlock()
	return s.refreshCity(ctx, city)
}

func (s *Store) refreshCity(ctx context.Context, city models.City) error {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.status = models.StatusLoading
	s.lastErr = nil
	s.mu.Unlock()

	start := s.now()
	data, err := s.client.FetchForecast(ctx, city)
	if err != nil {
		s.applyFailure(ctx, gen, city, err, start)
		return err
	}
	s.applyForecast(ctx, gen, city, data, start)
	return nil
}

func (s *Store) applyFailure(ctx context.Context, gen uint64, city models.City, fetchErr error, start time.Time) {
	cached := s.loadCache(ctx, city.ID)
	friendly := models.FriendlyErrorFrom(fetchErr)

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		s.dropStale(city)
		return
	}
	s.lastErr = &friendly
	if cached != nil {
		s.forecast = cached
		s.status = models.StatusCached
	} else {
		s.forecast = nil
		s.status = models.StatusError
	}
	status := s.status
	s.mu.Unlock()

	s.metrics.RecordRefresh(string(status), s.now().Sub(start))
	s.logger.Warn("Forecast refresh failed",
		zap.String("city_id", city.ID),
		zap.String("status", string(status)),
		zap.Error(fetchErr))
}

func (s *Store) applyForecast(ctx context.Context, gen uint64, city models.City, data *models.ForecastData, start time.Time) {
	data.City = city
	now := s.now()

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		s.dropStale(city)
		return
	}
	s.forecast = data
	s.status = models.StatusReady
	s.lastErr = nil

	fired := s.recordAlerts(data, now)
	notificationsOn := s.prefs.NotificationsEnabled
	soundOn := s.prefs.NotificationSound
	s.mu.Unlock()

	s.metrics.RecordRefresh(string(models.StatusReady), now.Sub(start))
	s.metrics.SetTemperature(data.Current.TemperatureC)
	s.logger.Info("Forecast refreshed",
		zap.String("city_id", city.ID),
		zap.String("city", city.Name),
		zap.Int("alerts", len(fired)))

	s.saveCache(ctx, data)
	s.persistPrefs(ctx)

	if len(fired) > 0 {
		s.dispatchAlerts(fired, notificationsOn, soundOn)
	}
}

func (s *Store) dropStale(city models.City) {
	s.metrics.RecordStaleResult()
	s.logger.Debug("Discarding stale forecast result", zap.String("city_id", city.ID))
}

// recordAlerts evaluates the rules, fires each hit at most once per city per
// forecast date and queues a toast for it. It requires s.mu.
func (s *Store) recordAlerts(data *models.ForecastData, now time.Time) []models.AlertHit {
	date := now.Format(time.DateOnly)
	if today := data.Today(); today != nil && today.DateISO != "" {
		date = today.DateISO
	}

	if s.prefs.AlertLastFired == nil {
		s.prefs.AlertLastFired = map[string]int64{}
	}
	alerts.Prune(s.prefs.AlertLastFired, now)

	var fired []models.AlertHit
	for _, hit := range alerts.Evaluate(data, s.prefs.AlertRules) {
		if !alerts.ShouldFire(s.prefs.AlertLastFired, data.City.ID, date, hit.ID, now) {
			continue
		}
		alerts.MarkFired(s.prefs.AlertLastFired, data.City.ID, date, hit.ID, now)
		s.pushToast(models.ToastAlert, hit.Title, hit.Body)
		s.metrics.RecordAlertFired(string(hit.ID))
		fired = append(fired, hit)
	}
	return fired
}

// dispatchAlerts notifies and plays the alert chime concurrently in the
// background. Failures are logged only.
func (s *Store) dispatchAlerts(hits []models.AlertHit, notificationsOn, soundOn bool) {
	if (!notificationsOn || s.notifier == nil) && (!soundOn || s.sound == nil) {
		return
	}
	if s.ctx.Err() != nil {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(s.ctx, dispatchTimeout)
		defer cancel()

		var g errgroup.Group
		if notificationsOn && s.notifier != nil {
			g.Go(func() error {
				for _, hit := range hits {
					if _, err := s.notifier.Notify(ctx, notify.AlertMessage(hit, soundOn)); err != nil {
						s.metrics.RecordNotification("alert", "error")
						s.logger.Warn("Alert notification failed",
							zap.String("alert", string(hit.ID)),
							zap.Error(err))
						continue
					}
					s.metrics.RecordNotification("alert", "success")
				}
				return nil
			})
		}
		if soundOn && s.sound != nil {
			g.Go(func() error {
				return s.sound.Play(ctx, notify.SoundSuccess)
			})
		}
		if err := g.Wait(); err != nil {
			s.logger.Warn("Alert sound failed", zap.Error(err))
		}
	}()
}

// Package store owns the application state: the selected city, favorites,
// settings, the current forecast and the pending toasts. Every mutation
// updates memory first and then persists the full preferences snapshot on a
// best-effort basis.
package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-buddy/internal/location"
	"github.com/bobby-s-dev/weather-buddy/internal/metrics"
	"github.com/bobby-s-dev/weather-buddy/internal/models"
	"github.com/bobby-s-dev/weather-buddy/internal/notify"
	"github.com/bobby-s-dev/weather-buddy/internal/storage"
)

// MaxToasts bounds the toast queue; the oldest toast is dropped first.
const MaxToasts = 20

var ErrInvalidSetting = errors.New("invalid setting")

type ForecastClient interface {
	FetchForecast(ctx context.Context, city models.City) (*models.ForecastData, error)
}

// Options carries the optional collaborators. A nil Notifier, Sound or
// Locator turns the matching feature off.
type Options struct {
	Notifier notify.Notifier
	Sound    notify.SoundPlayer
	Locator  location.Locator
	Metrics  *metrics.BuddyMetrics
	Now      func() time.Time
}

// State is a deep copy of the store for readers.
type State struct {
	Inited    bool                  `json:"inited"`
	Status    models.Status         `json:"status"`
	Prefs     models.Preferences    `json:"prefs"`
	Forecast  *models.ForecastData  `json:"forecast,omitempty"`
	LastError *models.FriendlyError `json:"lastError,omitempty"`
	Toasts    []models.Toast        `json:"toasts"`
}

type Store struct {
	client   ForecastClient
	repo     *storage.Repository
	logger   *zap.Logger
	notifier notify.Notifier
	sound    notify.SoundPlayer
	locator  location.Locator
	metrics  *metrics.BuddyMetrics
	now      func() time.Time

	initOnce sync.Once

	// mu guards the fields below and is never held across I/O.
	mu       sync.Mutex
	inited   bool
	status   models.Status
	prefs    models.Preferences
	forecast *models.ForecastData
	lastErr  *models.FriendlyError
	toasts   []models.Toast
	gen      uint64

	// persistMu orders preference writes so the newest snapshot lands last.
	persistMu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(client ForecastClient, repo *storage.Repository, opts Options, logger *zap.Logger) *Store {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Store{
		client:   client,
		repo:     repo,
		logger:   logger,
		notifier: opts.Notifier,
		sound:    opts.Sound,
		locator:  opts.Locator,
		metrics:  opts.Metrics,
		now:      now,
		status:   models.StatusIdle,
		prefs:    storage.DefaultPreferences(),
		toasts:   []models.Toast{},
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Init loads persisted preferences, paints the cached forecast of the
// selected city, and refreshes it. Only the first call does anything.
func (s *Store) Init(ctx context.Context) {
	s.initOnce.Do(func() {
		s.init(ctx)
	})
}

func (s *Store) init(ctx context.Context) {
	prefs, err := s.repo.LoadPrefs(ctx)
	if err != nil {
		s.logger.Warn("Failed to load preferences, using defaults", zap.Error(err))
		s.metrics.RecordPersistenceError("load_prefs")
	}
	if prefs == nil {
		def := storage.DefaultPreferences()
		prefs = &def
	}

	s.mu.Lock()
	s.prefs = *prefs
	s.inited = true
	s.status = models.StatusLoading
	selected := s.prefs.SelectedCity
	favorites := len(s.prefs.Favorites)
	s.mu.Unlock()

	s.metrics.SetFavorites(favorites)
	s.logger.Info("Store initialized",
		zap.String("city_id", selected.ID),
		zap.String("city", selected.Name),
		zap.Int("favorites", favorites))

	if cached := s.loadCache(ctx, selected.ID); cached != nil {
		s.mu.Lock()
		if s.gen == 0 {
			s.forecast = cached
			s.status = models.StatusCached
		}
		s.mu.Unlock()
	}

	s.rescheduleReminder(ctx)

	_ = s.refreshCity(ctx, selected)
}

func (s *Store) Inited() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inited
}

func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		Inited: s.inited,
		Status: s.status,
		Prefs:  s.prefs.Clone(),
		Toasts: append([]models.Toast{}, s.toasts...),
	}
	if s.forecast != nil {
		st.Forecast = cloneForecast(s.forecast)
	}
	if s.lastErr != nil {
		e := *s.lastErr
		st.LastError = &e
	}
	return st
}

// DrainToasts returns and clears the pending toasts.
func (s *Store) DrainToasts() []models.Toast {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.toasts
	s.toasts = []models.Toast{}
	return out
}

// Close waits for background alert deliveries and cancels them if needed.
func (s *Store) Close() {
	s.cancel()
	s.wg.Wait()
}

// pushToast requires s.mu.
func (s *Store) pushToast(kind models.ToastKind, title, body string) {
	s.toasts = append(s.toasts, models.Toast{
		ID:        uuid.NewString(),
		Kind:      kind,
		Title:     title,
		Body:      body,
		CreatedAt: s.now().UnixMilli(),
	})
	if over := len(s.toasts) - MaxToasts; over > 0 {
		s.toasts = append([]models.Toast{}, s.toasts[over:]...)
	}
}

// persistPrefs writes the latest preferences. Failures are logged and
// swallowed; the caller's cancellation does not abort the write.
func (s *Store) persistPrefs(ctx context.Context) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	prefs := s.prefs.Clone()
	s.mu.Unlock()

	if err := s.repo.SavePrefs(context.WithoutCancel(ctx), prefs); err != nil {
		s.logger.Warn("Failed to persist preferences", zap.Error(err))
		s.metrics.RecordPersistenceError("save_prefs")
	}
}

func (s *Store) saveCache(ctx context.Context, f *models.ForecastData) {
	if err := s.repo.SaveForecast(context.WithoutCancel(ctx), f.City.ID, f); err != nil {
		s.logger.Warn("Failed to cache forecast",
			zap.String("city_id", f.City.ID),
			zap.Error(err))
		s.metrics.RecordPersistenceError("save_forecast")
	}
}

// loadCache treats unreadable or corrupt entries as absent.
func (s *Store) loadCache(ctx context.Context, cityID string) *models.ForecastData {
	f, err := s.repo.LoadForecast(ctx, cityID)
	if err != nil {
		s.logger.Warn("Ignoring unreadable forecast cache",
			zap.String("city_id", cityID),
			zap.Error(err))
		s.metrics.RecordPersistenceError("load_forecast")
		return nil
	}
	return f
}

func cloneForecast(f *models.ForecastData) *models.ForecastData {
	out := *f
	out.Daily = append([]models.DailyForecast(nil), f.Daily...)
	out.Current.RainChancePctNow = cloneFloat(f.Current.RainChancePctNow)
	out.Current.UVNow = cloneFloat(f.Current.UVNow)
	out.Current.SnowfallCmNow = cloneFloat(f.Current.SnowfallCmNow)
	return &out
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

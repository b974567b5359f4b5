package api

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-buddy/internal/dresstip"
	"github.com/bobby-s-dev/weather-buddy/internal/format"
	"github.com/bobby-s-dev/weather-buddy/internal/models"
	"github.com/bobby-s-dev/weather-buddy/internal/scheduler"
	"github.com/bobby-s-dev/weather-buddy/internal/search"
	"github.com/bobby-s-dev/weather-buddy/internal/store"
	"github.com/bobby-s-dev/weather-buddy/internal/theme"
)

type Handler struct {
	store     *store.Store
	searcher  *search.Searcher
	scheduler *scheduler.Scheduler
	logger    *zap.Logger
}

// NewHandler wires the store and its companions. searcher and sched may be
// nil; the search routes then answer 503 and health omits the schedule.
func NewHandler(st *store.Store, searcher *search.Searcher, sched *scheduler.Scheduler, logger *zap.Logger) *Handler {
	return &Handler{
		store:     st,
		searcher:  searcher,
		scheduler: sched,
		logger:    logger,
	}
}

type searchRequest struct {
	Query     string `json:"query"`
	Immediate bool   `json:"immediate"`
}

type settingsRequest struct {
	KidMode              *bool                   `json:"kidMode"`
	ThemeChoice          *models.ThemeChoice     `json:"themeChoice"`
	TemperatureUnit      *models.TemperatureUnit `json:"temperatureUnit"`
	NotificationsEnabled *bool                   `json:"notificationsEnabled"`
	NotificationSound    *bool                   `json:"notificationSound"`
}

type alertRequest struct {
	Enabled bool `json:"enabled"`
}

type reminderRequest struct {
	Enabled bool `json:"enabled"`
	Hour    int  `json:"hour"`
	Minute  int  `json:"minute"`
}

// TodayView is everything the home screen renders, already formatted.
type TodayView struct {
	City        models.City     `json:"city"`
	CityEmoji   string          `json:"cityEmoji"`
	Status      models.Status   `json:"status"`
	Theme       models.ThemeKey `json:"theme"`
	ThemeEmoji  string          `json:"themeEmoji"`
	BuddyEmoji  string          `json:"buddyEmoji"`
	Palette     theme.Palette   `json:"palette"`
	Condition   string          `json:"condition"`
	Temperature string          `json:"temperature"`
	FeelsLike   string          `json:"feelsLike"`
	High        string          `json:"high"`
	Low         string          `json:"low"`
	Rain        string          `json:"rain"`
	Wind        string          `json:"wind"`
	UV          string          `json:"uv"`
	Snowfall    string          `json:"snowfall"`
	DressTip    dresstip.Tip    `json:"dressTip"`
	KidMode     bool            `json:"kidMode"`
	FetchedAt   int64           `json:"fetchedAt"`
}

// GetHealth handles GET /api/v1/health
func (h *Handler) GetHealth(c *fiber.Ctx) error {
	st := h.store.Snapshot()

	resp := fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now(),
		"uptime":    time.Since(startTime).String(),
		"inited":    st.Inited,
		"forecast":  st.Status,
	}
	if h.scheduler != nil {
		resp["scheduler"] = h.scheduler.GetStatus()
	}
	return c.JSON(resp)
}

// GetState handles GET /api/v1/state
func (h *Handler) GetState(c *fiber.Ctx) error {
	return c.JSON(h.store.Snapshot())
}

// Refresh handles POST /api/v1/refresh. A failed fetch is reported through
// the returned state, not the HTTP status. With ?background=true the
// scheduler runs the refresh and the call returns 202 at once.
func (h *Handler) Refresh(c *fiber.Ctx) error {
	if c.QueryBool("background") && h.scheduler != nil {
		h.scheduler.ForceRun()
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "refresh triggered"})
	}

	if err := h.store.Refresh(c.UserContext()); err != nil {
		h.logger.Info("Refresh finished with error", zap.Error(err))
	}
	return c.JSON(h.store.Snapshot())
}

// SelectCity handles POST /api/v1/cities/select
func (h *Handler) SelectCity(c *fiber.Ctx) error {
	city, err := parseCity(c)
	if err != nil {
		return err
	}

	h.logger.Info("Selecting city", zap.String("city", city.Name))

	if err := h.store.SelectCity(c.UserContext(), city); err != nil {
		h.logger.Info("City selected with fetch error",
			zap.String("city", city.Name),
			zap.Error(err))
	}
	return c.JSON(h.store.Snapshot())
}

// AddFavorite handles POST /api/v1/favorites
func (h *Handler) AddFavorite(c *fiber.Ctx) error {
	city, err := parseCity(c)
	if err != nil {
		return err
	}

	h.logger.Info("Adding favorite", zap.String("city", city.Name))

	if err := h.store.AddFavorite(c.UserContext(), city); err != nil {
		h.logger.Info("Favorite added with fetch error",
			zap.String("city", city.Name),
			zap.Error(err))
	}
	return c.JSON(h.store.Snapshot())
}

// RemoveFavorite handles DELETE /api/v1/favorites/:id
func (h *Handler) RemoveFavorite(c *fiber.Ctx) error {
	id, err := url.PathUnescape(c.Params("id"))
	if err != nil || id == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid city id")
	}

	if err := h.store.RemoveFavorite(c.UserContext(), id); err != nil {
		h.logger.Info("Favorite removed with fetch error",
			zap.String("city_id", id),
			zap.Error(err))
	}
	return c.JSON(h.store.Snapshot())
}

// UseMyLocation handles POST /api/v1/location
func (h *Handler) UseMyLocation(c *fiber.Ctx) error {
	if err := h.store.UseMyLocation(c.UserContext()); err != nil {
		h.logger.Info("Location lookup finished with error", zap.Error(err))
	}
	return c.JSON(h.store.Snapshot())
}

// SetSearchQuery handles PUT /api/v1/search
func (h *Handler) SetSearchQuery(c *fiber.Ctx) error {
	if h.searcher == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "Search is not available")
	}

	var req searchRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	h.searcher.SetQuery(req.Query)
	if req.Immediate {
		h.searcher.Run()
	}
	return c.JSON(h.searcher.State())
}

// GetSearch handles GET /api/v1/search
func (h *Handler) GetSearch(c *fiber.Ctx) error {
	if h.searcher == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "Search is not available")
	}
	return c.JSON(h.searcher.State())
}

// UpdateSettings handles PATCH /api/v1/settings. Fields left out of the body
// keep their value.
func (h *Handler) UpdateSettings(c *fiber.Ctx) error {
	var req settingsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	ctx := c.UserContext()
	if req.ThemeChoice != nil {
		if err := h.store.SetThemeChoice(ctx, *req.ThemeChoice); err != nil {
			return storeError(err)
		}
	}
	if req.TemperatureUnit != nil {
		if err := h.store.SetTemperatureUnit(ctx, *req.TemperatureUnit); err != nil {
			return storeError(err)
		}
	}
	if req.KidMode != nil {
		h.store.SetKidMode(ctx, *req.KidMode)
	}
	if req.NotificationSound != nil {
		h.store.SetNotificationSound(ctx, *req.NotificationSound)
	}
	if req.NotificationsEnabled != nil {
		if err := h.store.SetNotificationsEnabled(ctx, *req.NotificationsEnabled); err != nil {
			return storeError(err)
		}
	}

	return c.JSON(h.store.Snapshot().Prefs)
}

// SetAlertRule handles PUT /api/v1/alerts/:id
func (h *Handler) SetAlertRule(c *fiber.Ctx) error {
	var req alertRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	id := models.AlertID(c.Params("id"))
	if err := h.store.SetAlertRule(c.UserContext(), id, req.Enabled); err != nil {
		return storeError(err)
	}
	return c.JSON(h.store.Snapshot().Prefs.AlertRules)
}

// SetReminder handles PUT /api/v1/reminder
func (h *Handler) SetReminder(c *fiber.Ctx) error {
	var req reminderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := h.store.SetDailyReminder(c.UserContext(), req.Enabled, req.Hour, req.Minute); err != nil {
		h.logger.Warn("Failed to set daily reminder",
			zap.Int("hour", req.Hour),
			zap.Int("minute", req.Minute),
			zap.Error(err))
		return storeError(err)
	}
	return c.JSON(h.store.Snapshot().Prefs.DailyReminder)
}

// DrainToasts handles GET /api/v1/toasts. Each toast is returned once.
func (h *Handler) DrainToasts(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"toasts": h.store.DrainToasts(),
	})
}

// GetToday handles GET /api/v1/today
func (h *Handler) GetToday(c *fiber.Ctx) error {
	st := h.store.Snapshot()
	if st.Forecast == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":  "No forecast available",
			"status": st.Status,
			"detail": st.LastError,
		})
	}
	return c.JSON(NewTodayView(st))
}

// NewTodayView formats a snapshot that has a forecast.
func NewTodayView(st store.State) TodayView {
	f := st.Forecast
	unit := st.Prefs.TemperatureUnit
	key := theme.Resolve(st.Prefs.ThemeChoice, f)
	today := f.Today()

	view := TodayView{
		City:        f.City,
		CityEmoji:   theme.CityEmoji(f.City.Name),
		Status:      st.Status,
		Theme:       key,
		ThemeEmoji:  theme.Emoji(key),
		BuddyEmoji:  theme.BuddyEmoji(key),
		Palette:     theme.PaletteFor(key),
		Condition:   theme.Describe(f.Current.WeatherCode),
		Temperature: format.Temp(f.Current.TemperatureC, unit),
		FeelsLike:   format.Temp(f.Current.FeelsLikeC, unit),
		High:        "--",
		Low:         "--",
		Rain:        format.Pct(f.Current.RainChancePctNow),
		Wind:        format.Kph(&f.Current.WindKph),
		UV:          format.UV(f.Current.UVNow),
		Snowfall:    format.Snowfall(f.Current.SnowfallCmNow),
		DressTip:    dresstip.For(f.Current, today),
		KidMode:     st.Prefs.KidMode,
		FetchedAt:   f.FetchedAt,
	}
	if today != nil {
		view.High = format.Temp(today.TempMaxC, unit)
		view.Low = format.Temp(today.TempMinC, unit)
		if f.Current.RainChancePctNow == nil {
			view.Rain = format.Pct(&today.RainChancePct)
		}
		if f.Current.UVNow == nil {
			view.UV = format.UV(&today.UVMax)
		}
	}
	return view
}

func parseCity(c *fiber.Ctx) (models.City, error) {
	var city models.City
	if err := c.BodyParser(&city); err != nil {
		return city, fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if strings.TrimSpace(city.Name) == "" {
		return city, fiber.NewError(fiber.StatusBadRequest, "City name is required")
	}
	if city.Latitude < -90 || city.Latitude > 90 || city.Longitude < -180 || city.Longitude > 180 {
		return city, fiber.NewError(fiber.StatusBadRequest, "City coordinates are out of range")
	}
	return city, nil
}

func storeError(err error) error {
	switch {
	case errors.Is(err, store.ErrInvalidSetting):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrPermissionDenied):
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	default:
		return err
	}
}

// ErrorHandler renders every error as JSON with the fiber status code, or
// 500 for anything else.
func ErrorHandler(c *fiber.Ctx, err error) error {
	zap.L().Error("HTTP error",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err))

	code := fiber.StatusInternalServerError

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   err.Error(),
		"success": false,
	})
}

var startTime = time.Now()

package models

type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusCached  Status = "cached"
	StatusError   Status = "error"
)

type ThemeKey string

const (
	ThemeSunny ThemeKey = "sunny"
	ThemeRain  ThemeKey = "rain"
	ThemeSnow  ThemeKey = "snow"
	ThemeWind  ThemeKey = "wind"
	ThemeNight ThemeKey = "night"
	ThemeCloud ThemeKey = "cloud"
)

var ThemeKeys = []ThemeKey{ThemeSunny, ThemeRain, ThemeSnow, ThemeWind, ThemeNight, ThemeCloud}

// ThemeChoice is either ThemeAuto or one of the ThemeKeys.
type ThemeChoice string

const ThemeAuto ThemeChoice = "auto"

func (c ThemeChoice) Valid() bool {
	if c == ThemeAuto {
		return true
	}
	for _, k := range ThemeKeys {
		if ThemeKey(c) == k {
			return true
		}
	}
	return false
}

type TemperatureUnit string

const (
	Celsius    TemperatureUnit = "C"
	Fahrenheit TemperatureUnit = "F"
)

func (u TemperatureUnit) Valid() bool {
	return u == Celsius || u == Fahrenheit
}

type AlertID string

const (
	AlertRain AlertID = "rain"
	AlertWind AlertID = "wind"
	AlertCold AlertID = "cold"
	AlertHeat AlertID = "heat"
	AlertUV   AlertID = "uv"
)

// AlertIDs lists every alert in display order.
var AlertIDs = []AlertID{AlertRain, AlertWind, AlertCold, AlertHeat, AlertUV}

func (id AlertID) Valid() bool {
	for _, known := range AlertIDs {
		if id == known {
			return true
		}
	}
	return false
}

type AlertRule struct {
	ID        AlertID `json:"id"`
	Enabled   bool    `json:"enabled"`
	Threshold float64 `json:"threshold"`
}

type AlertHit struct {
	ID    AlertID `json:"id"`
	Title string  `json:"title"`
	Body  string  `json:"body"`
}

type DailyReminder struct {
	Enabled        bool   `json:"enabled"`
	Hour           int    `json:"hour"`
	Minute         int    `json:"minute"`
	NotificationID string `json:"notificationId,omitempty"`
}

// Preferences is the whole persisted user state.
type Preferences struct {
	Version              int              `json:"version"`
	SelectedCity         City             `json:"selectedCity"`
	Favorites            []City           `json:"favorites"`
	KidMode              bool             `json:"kidMode"`
	ThemeChoice          ThemeChoice      `json:"themeChoice"`
	TemperatureUnit      TemperatureUnit  `json:"temperatureUnit"`
	NotificationsEnabled bool             `json:"notificationsEnabled"`
	NotificationSound    bool             `json:"notificationSound"`
	AlertRules           []AlertRule      `json:"alertRules"`
	AlertLastFired       map[string]int64 `json:"alertLastFired"`
	DailyReminder        DailyReminder    `json:"dailyReminder"`
}

// Clone returns a deep copy.
func (p Preferences) Clone() Preferences {
	out := p
	out.Favorites = append([]City(nil), p.Favorites...)
	out.AlertRules = append([]AlertRule(nil), p.AlertRules...)
	out.AlertLastFired = make(map[string]int64, len(p.AlertLastFired))
	for k, v := range p.AlertLastFired {
		out.AlertLastFired[k] = v
	}
	return out
}

type ToastKind string

const (
	ToastAlert  ToastKind = "alert"
	ToastNotice ToastKind = "notice"
)

type Toast struct {
	ID        string    `json:"id"`
	Kind      ToastKind `json:"kind"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt int64     `json:"createdAt"`
}

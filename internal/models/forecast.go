package models

type City struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Admin1    string  `json:"admin1,omitempty"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone,omitempty"`
}

// Place is a reverse-geocoded location as reported by the device.
type Place struct {
	City      string `json:"city,omitempty"`
	Subregion string `json:"subregion,omitempty"`
	Region    string `json:"region,omitempty"`
	Country   string `json:"country,omitempty"`
}

type CurrentForecast struct {
	TimeISO      string  `json:"timeISO"`
	TemperatureC float64 `json:"temperatureC"`
	FeelsLikeC   float64 `json:"feelsLikeC"`
	HumidityPct  float64 `json:"humidityPct"`
	WindKph      float64 `json:"windKph"`
	WeatherCode  int     `json:"weatherCode"`
	IsDay        bool    `json:"isDay"`

	// Now-casts read from the hourly series; nil when the series is empty.
	RainChancePctNow *float64 `json:"rainChancePctNow,omitempty"`
	UVNow            *float64 `json:"uvNow,omitempty"`
	SnowfallCmNow    *float64 `json:"snowfallCm,omitempty"`
}

type DailyForecast struct {
	DateISO       string  `json:"dateISO"`
	WeatherCode   int     `json:"weatherCode"`
	TempMaxC      float64 `json:"tempMaxC"`
	TempMinC      float64 `json:"tempMinC"`
	RainChancePct float64 `json:"rainChancePct"`
	UVMax         float64 `json:"uvMax"`
	WindMaxKph    float64 `json:"windMaxKph"`
	SunriseISO    string  `json:"sunriseISO"`
	SunsetISO     string  `json:"sunsetISO"`
	SnowfallCmSum float64 `json:"snowfallCmSum"`
}

// ForecastData is replaced wholesale on every fetch. Daily[0] is today.
type ForecastData struct {
	City      City            `json:"city"`
	FetchedAt int64           `json:"fetchedAt"` // unix millis
	Current   CurrentForecast `json:"current"`
	Daily     []DailyForecast `json:"daily"`
}

// Today returns the first daily summary, or nil when the API sent none.
func (f *ForecastData) Today() *DailyForecast {
	if f == nil || len(f.Daily) == 0 {
		return nil
	}
	return &f.Daily[0]
}

func Float(v float64) *float64 {
	return &v
}

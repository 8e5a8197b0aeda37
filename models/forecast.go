package models

// Forecast wraps the ordered forecast days of a record
type Forecast struct {
	ForecastDay []ForecastDay `json:"forecastday"`
}

// ForecastDay represents one day of forecast with its hourly breakdown
type ForecastDay struct {
	Date      string         `json:"date"`       // YYYY-MM-DD
	DateEpoch int64          `json:"date_epoch"` // unix seconds
	Day       DaySummary     `json:"day"`
	Astro     Astro          `json:"astro"`
	Hour      []HourForecast `json:"hour"`
}

// DaySummary aggregates the conditions of a forecast day
type DaySummary struct {
	MaxTempC          float64   `json:"maxtemp_c"`
	MaxTempF          float64   `json:"maxtemp_f"`
	MinTempC          float64   `json:"mintemp_c"`
	MinTempF          float64   `json:"mintemp_f"`
	AvgTempC          float64   `json:"avgtemp_c"`
	AvgTempF          float64   `json:"avgtemp_f"`
	Condition         Condition `json:"condition"`
	DailyChanceOfRain int       `json:"daily_chance_of_rain"` // percentage
	DailyChanceOfSnow int       `json:"daily_chance_of_snow"` // percentage
	UV                float64   `json:"uv"`
}

// Astro holds sunrise and sunset as reported by the API ("05:02 AM")
type Astro struct {
	Sunrise string `json:"sunrise"`
	Sunset  string `json:"sunset"`
}

// HourForecast represents a single forecast hour
type HourForecast struct {
	Time         string    `json:"time"` // "2006-01-02 15:04" local time
	TempC        float64   `json:"temp_c"`
	TempF        float64   `json:"temp_f"`
	Condition    Condition `json:"condition"`
	ChanceOfRain int       `json:"chance_of_rain"`
	ChanceOfSnow int       `json:"chance_of_snow"`
}

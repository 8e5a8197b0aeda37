package models

import "fmt"

// Condition is the textual and iconic description of the sky
type Condition struct {
	Text string `json:"text"`
	Icon string `json:"icon"`
	Code int    `json:"code"`
}

// Location identifies where a weather record applies
type Location struct {
	Name      string  `json:"name"`
	Country   string  `json:"country"`
	Region    string  `json:"region"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Localtime string  `json:"localtime"`
}

// CurrentConditions holds the observed weather at the location
type CurrentConditions struct {
	TempC      float64   `json:"temp_c"`
	TempF      float64   `json:"temp_f"`
	Condition  Condition `json:"condition"`
	Humidity   float64   `json:"humidity"`
	WindKph    float64   `json:"wind_kph"`
	WindMph    float64   `json:"wind_mph"`
	WindDir    string    `json:"wind_dir"`
	PressureMb float64   `json:"pressure_mb"`
	PressureIn float64   `json:"pressure_in"`
	FeelslikeC float64   `json:"feelslike_c"`
	FeelslikeF float64   `json:"feelslike_f"`
	UV         float64   `json:"uv"`
}

// WeatherRecord is a validated lookup result. Forecast is nil when the
// payload carried no forecast days.
type WeatherRecord struct {
	Location Location          `json:"location"`
	Current  CurrentConditions `json:"current"`
	Forecast *Forecast         `json:"forecast,omitempty"`
}

// Days returns the forecast days of the record, or nil
func (r *WeatherRecord) Days() []ForecastDay {
	if r == nil || r.Forecast == nil {
		return nil
	}
	return r.Forecast.ForecastDay
}

// Place is a coarse location as returned by IP based detection
type Place struct {
	City    string `json:"city"`
	Country string `json:"country"`
}

// Query formats the place as a lookup query ("London, UK")
func (p Place) Query() string {
	return fmt.Sprintf("%s, %s", p.City, p.Country)
}

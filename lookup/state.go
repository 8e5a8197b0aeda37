package lookup

import (
	"fmt"

	"weather-lookup/models"
)

// Status is the lifecycle position of the controller
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Tab selects which view of the record is presented
type Tab string

const (
	TabCurrent  Tab = "current"
	TabForecast Tab = "forecast"
	TabHourly   Tab = "hourly"
)

// Valid reports whether t is one of the known tabs
func (t Tab) Valid() bool {
	switch t {
	case TabCurrent, TabForecast, TabHourly:
		return true
	}
	return false
}

// ParseTab converts a tab name
func ParseTab(s string) (Tab, error) {
	t := Tab(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown tab %q, want current, forecast or hourly", s)
	}
	return t, nil
}

// State is a snapshot of the controller. Record and the slices are shared
// with the controller and must be treated as read-only.
type State struct {
	Status  Status
	Input   string
	Loading bool
	// Error is the user facing message or normalizer reason of the last
	// failed lookup, empty otherwise.
	Error        string
	Record       *models.WeatherRecord
	ForecastDays []models.ForecastDay
	SelectedDay  int
	Hourly       []models.HourForecast
	ActiveTab    Tab
	Metric       bool
}

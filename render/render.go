// Package render prints a lookup.State to a terminal
package render

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"weather-lookup/lookup"
	"weather-lookup/models"
)

// State writes the view selected by st.ActiveTab
func State(w io.Writer, st lookup.State) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	switch {
	case st.Loading:
		fmt.Fprintf(tw, "Loading weather for %s...\n", st.Input)
	case st.Error != "":
		fmt.Fprintf(tw, "Error: %s\n", st.Error)
	case st.Record == nil:
		fmt.Fprintln(tw, "No weather data.")
	default:
		header(tw, st.Record)
		switch st.ActiveTab {
		case lookup.TabForecast:
			forecast(tw, st.ForecastDays, st.Metric)
		case lookup.TabHourly:
			hourly(tw, st, st.Metric)
		default:
			current(tw, st.Record.Current, st.Metric)
		}
	}

	return tw.Flush()
}

func header(w io.Writer, r *models.WeatherRecord) {
	loc := r.Location
	if loc.Region != "" {
		fmt.Fprintf(w, "%s, %s, %s\n", loc.Name, loc.Region, loc.Country)
	} else {
		fmt.Fprintf(w, "%s, %s\n", loc.Name, loc.Country)
	}
	fmt.Fprintf(w, "Local time: %s\n\n", loc.Localtime)
}

func current(w io.Writer, c models.CurrentConditions, metric bool) {
	fmt.Fprintf(w, "Condition\t%s\n", c.Condition.Text)
	fmt.Fprintf(w, "Temperature\t%s\n", Temperature(c.TempC, c.TempF, metric))
	fmt.Fprintf(w, "Feels like\t%s\n", Temperature(c.FeelslikeC, c.FeelslikeF, metric))
	fmt.Fprintf(w, "Humidity\t%.0f%%\n", c.Humidity)
	if metric {
		fmt.Fprintf(w, "Wind\t%.1f km/h %s\n", c.WindKph, c.WindDir)
		fmt.Fprintf(w, "Pressure\t%.0f mb\n", c.PressureMb)
	} else {
		fmt.Fprintf(w, "Wind\t%.1f mph %s\n", c.WindMph, c.WindDir)
		fmt.Fprintf(w, "Pressure\t%.2f in\n", c.PressureIn)
	}
	fmt.Fprintf(w, "UV index\t%.1f\n", c.UV)
}

func forecast(w io.Writer, days []models.ForecastDay, metric bool) {
	if len(days) == 0 {
		fmt.Fprintln(w, "No forecast available.")
		return
	}
	fmt.Fprintln(w, "DAY\tDATE\tHIGH\tLOW\tCONDITION\tRAIN\tSNOW\tSUNRISE\tSUNSET")
	for _, d := range days {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d%%\t%d%%\t%s\t%s\n",
			FormatDay(d.Date),
			d.Date,
			Temperature(d.Day.MaxTempC, d.Day.MaxTempF, metric),
			Temperature(d.Day.MinTempC, d.Day.MinTempF, metric),
			d.Day.Condition.Text,
			d.Day.DailyChanceOfRain,
			d.Day.DailyChanceOfSnow,
			d.Astro.Sunrise,
			d.Astro.Sunset,
		)
	}
}

func hourly(w io.Writer, st lookup.State, metric bool) {
	if len(st.Hourly) == 0 {
		fmt.Fprintln(w, "No hourly forecast available.")
		return
	}
	if st.SelectedDay < len(st.ForecastDays) {
		d := st.ForecastDays[st.SelectedDay]
		fmt.Fprintf(w, "%s %s\n", FormatDay(d.Date), d.Date)
	}
	fmt.Fprintln(w, "TIME\tTEMP\tCONDITION\tRAIN\tSNOW")
	for _, h := range st.Hourly {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d%%\t%d%%\n",
			FormatHour(h.Time),
			Temperature(h.TempC, h.TempF, metric),
			h.Condition.Text,
			h.ChanceOfRain,
			h.ChanceOfSnow,
		)
	}
}

// Temperature formats the value for the selected unit system
func Temperature(c, f float64, metric bool) string {
	if metric {
		return fmt.Sprintf("%.1f°C", c)
	}
	return fmt.Sprintf("%.1f°F", f)
}

// FormatDay returns the short weekday of a YYYY-MM-DD date ("Mon"). Dates
// that do not parse are returned unchanged.
func FormatDay(date string) string {
	t, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return date
	}
	return t.Format("Mon")
}

// FormatHour extracts HH:MM from a "YYYY-MM-DD HH:MM" timestamp
func FormatHour(ts string) string {
	t, err := time.Parse("2006-01-02 15:04", ts)
	if err != nil {
		return ts
	}
	return t.Format("15:04")
}

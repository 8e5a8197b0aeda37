package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestLoad_MissingAPIKey(t *testing.T) {
	t.Setenv("WEATHER_API_KEY", "")

	_, err := Load(nil)
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("Load() error = %v, want ErrMissingAPIKey", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("WEATHER_API_KEY", "abc123")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load() unexpected error = %v", err)
	}

	if cfg.WeatherAPI.APIKey != "abc123" {
		t.Errorf("APIKey = %q, want abc123", cfg.WeatherAPI.APIKey)
	}
	if cfg.WeatherAPI.BaseURL != "https://api.weatherapi.com/v1" {
		t.Errorf("BaseURL = %q", cfg.WeatherAPI.BaseURL)
	}
	if cfg.HTTP.Timeout != 10*time.Second {
		t.Errorf("Timeout = %v, want 10s", cfg.HTTP.Timeout)
	}
	if cfg.HTTP.Retries != 2 {
		t.Errorf("Retries = %d, want 2", cfg.HTTP.Retries)
	}
	if !cfg.RateLimit.Enabled || cfg.RateLimit.Burst != 3 {
		t.Errorf("RateLimit = %+v, want enabled with burst 3", cfg.RateLimit)
	}
	if cfg.App.ForecastDays != 5 {
		t.Errorf("ForecastDays = %d, want 5", cfg.App.ForecastDays)
	}
	if cfg.App.FallbackCity != "London" || cfg.App.FallbackCountry != "UK" {
		t.Errorf("fallback = %s, %s, want London, UK", cfg.App.FallbackCity, cfg.App.FallbackCountry)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Errorf("Log = %+v, want info/text", cfg.Log)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("WEATHER_API_KEY", "abc123")
	t.Setenv("WEATHER_HTTP_TIMEOUT", "3s")
	t.Setenv("WEATHER_HTTP_RETRIES", "0")
	t.Setenv("WEATHER_RATELIMIT_ENABLED", "false")
	t.Setenv("WEATHER_LOG_FORMAT", "json")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load() unexpected error = %v", err)
	}
	if cfg.HTTP.Timeout != 3*time.Second {
		t.Errorf("Timeout = %v, want 3s", cfg.HTTP.Timeout)
	}
	if cfg.HTTP.Retries != 0 {
		t.Errorf("Retries = %d, want 0", cfg.HTTP.Retries)
	}
	if cfg.RateLimit.Enabled {
		t.Error("RateLimit.Enabled = true, want false")
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want json", cfg.Log.Format)
	}
}

func TestLoad_ConfigFileAndFlags(t *testing.T) {
	t.Setenv("WEATHER_API_KEY", "")

	dir := t.TempDir()
	path := filepath.Join(dir, "weather.yaml")
	content := `weatherapi:
  apikey: from-file
app:
  forecastdays: 3
  fallbackcity: Madrid
  fallbackcountry: Spain
log:
  level: warn
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("config", "", "")
	flags.Int("days", 5, "")
	flags.String("log-level", "info", "")
	if err := flags.Parse([]string{"--config", path, "--days", "7"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(flags)
	if err != nil {
		t.Fatalf("Load() unexpected error = %v", err)
	}
	if cfg.WeatherAPI.APIKey != "from-file" {
		t.Errorf("APIKey = %q, want from-file", cfg.WeatherAPI.APIKey)
	}
	if cfg.App.ForecastDays != 7 {
		t.Errorf("ForecastDays = %d, want 7 from the flag", cfg.App.ForecastDays)
	}
	if cfg.App.FallbackCity != "Madrid" {
		t.Errorf("FallbackCity = %q, want Madrid", cfg.App.FallbackCity)
	}
	// unchanged flags do not override the file
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want warn", cfg.Log.Level)
	}
}

func TestLoad_MissingConfigFile(t *testing.T) {
	t.Setenv("WEATHER_API_KEY", "abc123")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("config", "", "")
	if err := flags.Parse([]string{"--config", filepath.Join(t.TempDir(), "absent.yaml")}); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(flags); err == nil {
		t.Error("Load() error = nil, want an error for an explicit missing file")
	}
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name       string
		cfg        LogConfig
		wantPrefix string
		wantDebug  bool
	}{
		{"json debug", LogConfig{Level: "debug", Format: "json"}, "{", true},
		{"text info", LogConfig{Level: "info", Format: "text"}, "time=", false},
		{"unknown falls back", LogConfig{Level: "verbose", Format: "xml"}, "time=", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			cfg := &Config{Log: tt.cfg}
			logger := cfg.newLogger(&buf)

			logger.Debug("debug line")
			logger.Warn("warn line")

			out := buf.String()
			if !strings.HasPrefix(out, tt.wantPrefix) {
				t.Errorf("output %q does not start with %q", out, tt.wantPrefix)
			}
			if got := strings.Contains(out, "debug line"); got != tt.wantDebug {
				t.Errorf("debug line logged = %v, want %v", got, tt.wantDebug)
			}
			if !strings.Contains(out, "warn line") {
				t.Error("warn line missing")
			}
		})
	}
}

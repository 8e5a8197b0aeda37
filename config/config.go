// Package config loads the application configuration and builds the logger
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ErrMissingAPIKey is returned by Load when no WeatherAPI key is configured
var ErrMissingAPIKey = errors.New("missing required setting: WEATHER_API_KEY")

// Config holds all configuration for the application
type Config struct {
	WeatherAPI WeatherAPIConfig
	HTTP       HTTPConfig
	RateLimit  RateLimitConfig
	App        AppConfig
	Log        LogConfig
}

// WeatherAPIConfig holds the upstream API settings
type WeatherAPIConfig struct {
	APIKey  string
	BaseURL string
}

// HTTPConfig holds transport settings
type HTTPConfig struct {
	Timeout time.Duration // per attempt
	Retries int           // extra attempts on network errors, timeouts and 5xx
}

// RateLimitConfig holds client side rate limiting settings
type RateLimitConfig struct {
	Enabled   bool
	RPS       float64
	DetectRPS float64
	Burst     int
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	ForecastDays    int // Number of days to forecast
	FallbackCity    string
	FallbackCountry string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, text
}

// flag name -> config key
var flagKeys = map[string]string{
	"days":       "app.forecastdays",
	"log-level":  "log.level",
	"log-format": "log.format",
	"timeout":    "http.timeout",
	"retries":    "http.retries",
}

// Load reads configuration from defaults, an optional config file, the
// environment and flags, in increasing order of precedence. flags may be nil.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("$HOME/.weather-lookup")

	v.SetDefault("weatherapi.apikey", "")
	v.SetDefault("weatherapi.baseurl", "https://api.weatherapi.com/v1")
	v.SetDefault("http.timeout", 10*time.Second)
	v.SetDefault("http.retries", 2)
	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.rps", 0.4)
	v.SetDefault("ratelimit.detectrps", 0.2)
	v.SetDefault("ratelimit.burst", 3)
	v.SetDefault("app.forecastdays", 5)
	v.SetDefault("app.fallbackcity", "London")
	v.SetDefault("app.fallbackcountry", "UK")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetEnvPrefix("WEATHER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("weatherapi.apikey", "WEATHER_API_KEY", "WEATHER_WEATHERAPI_APIKEY"); err != nil {
		return nil, fmt.Errorf("failed to bind env: %w", err)
	}

	if flags != nil {
		if f := flags.Lookup("config"); f != nil && f.Value.String() != "" {
			v.SetConfigFile(f.Value.String())
		}
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		// It's okay if config file doesn't exist, we have defaults
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.WeatherAPI.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	return &cfg, nil
}

// NewLogger creates a new slog.Logger based on the configuration. Output goes
// to stderr, stdout carries the rendered weather.
func (c *Config) NewLogger() *slog.Logger {
	return c.newLogger(os.Stderr)
}

func (c *Config) newLogger(w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	switch strings.ToLower(c.Log.Format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default: // "text" or anything else
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

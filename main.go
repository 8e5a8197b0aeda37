package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"weather-lookup/config"
	"weather-lookup/datasource"
	"weather-lookup/lookup"
	"weather-lookup/models"
	"weather-lookup/providers/weatherapi"
	"weather-lookup/render"
)

const (
	exitOK = iota
	exitConfig
	exitLookupFailed
	exitInvalidInput
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	flags := pflag.NewFlagSet("weather", pflag.ContinueOnError)
	flags.String("config", "", "Path to configuration file (yaml, json or toml)")
	location := flags.StringP("location", "l", "", "Location to look up; detected from the IP address when empty")
	tab := flags.StringP("tab", "t", string(lookup.TabCurrent), "View to show: current, forecast or hourly")
	day := flags.IntP("day", "d", 0, "Forecast day shown by the hourly view")
	imperial := flags.Bool("imperial", false, "Show imperial units")
	flags.Int("days", lookup.DefaultForecastDays, "Number of forecast days (1-14)")
	flags.Duration("timeout", datasource.DefaultTimeout, "Timeout of a single request attempt")
	flags.Int("retries", datasource.DefaultRetries, "Extra attempts on network errors, timeouts and 5xx")
	flags.String("log-level", "info", "Log level: debug, info, warn or error")
	flags.String("log-format", "text", "Log format: text or json")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		return exitConfig
	}

	cfg, err := config.Load(flags)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		return exitConfig
	}

	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	activeTab, err := lookup.ParseTab(*tab)
	if err != nil {
		logger.Error("invalid flag", "flag", "tab", "error", err)
		return exitInvalidInput
	}

	client := datasource.NewClient(cfg.HTTP.Timeout, cfg.HTTP.Retries, logger)
	wapi := weatherapi.NewProvider(cfg.WeatherAPI.APIKey, client,
		weatherapi.WithBaseURL(cfg.WeatherAPI.BaseURL),
		weatherapi.WithFallbackPlace(models.Place{City: cfg.App.FallbackCity, Country: cfg.App.FallbackCountry}),
		weatherapi.WithLogger(logger),
	)

	source, detector := limitSources(wapi, cfg.RateLimit, *location != "")
	if cfg.RateLimit.Enabled {
		logger.Debug("applied rate limiting",
			"source", source.Name(),
			"rps", cfg.RateLimit.RPS,
			"burst", cfg.RateLimit.Burst,
		)
	}

	ctrl := lookup.New(source, detector,
		lookup.WithForecastDays(cfg.App.ForecastDays),
		lookup.WithLogger(logger),
	)
	ctrl.SwitchTab(activeTab)
	if *imperial {
		ctrl.ToggleUnits()
	}

	if *location != "" {
		ctrl.SetInput(*location)
		if err := lookup.ValidateLocation(*location); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid location %q: %v\n", *location, err)
			return exitInvalidInput
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	if err := lookupOnce(ctx, ctrl, *location == ""); err != nil {
		logger.Warn("lookup interrupted", "error", err)
		return exitLookupFailed
	}
	ctrl.Close()

	if *day != 0 && !ctrl.UpdateHourlyForecast(*day) {
		logger.Warn("forecast day out of range, showing the first day", "day", *day)
	}

	st := ctrl.State()
	logger.Debug("lookup finished", "status", st.Status.String(), "duration", time.Since(start))
	if err := render.State(os.Stdout, st); err != nil {
		logger.Error("failed to render", "error", err)
	}

	if st.Status != lookup.StatusSuccess {
		return exitLookupFailed
	}
	return exitOK
}

// limitSources applies the configured rate limits to provider. A lookup of an
// explicit location makes no detection call, so only its forecasts are limited.
func limitSources(provider datasource.Provider, rl config.RateLimitConfig, explicit bool) (datasource.ForecastSource, datasource.LocationDetector) {
	if !rl.Enabled {
		return provider, provider
	}
	// WeatherAPI free tier allows ~23 calls/minute = 0.4 calls per second
	if explicit {
		return datasource.NewRateLimitedForecastSource(provider, rl.RPS, rl.Burst), provider
	}
	limited := datasource.NewRateLimitedProvider(provider, rl.RPS, rl.DetectRPS, rl.Burst)
	return limited, limited
}

// lookupOnce runs a single lookup and tears the controller down when ctx is
// cancelled first.
func lookupOnce(ctx context.Context, ctrl *lookup.Controller, detect bool) error {
	g, gctx := errgroup.WithContext(ctx)
	done := make(chan struct{})

	g.Go(func() error {
		defer close(done)
		if detect {
			ctrl.DetectLocation(gctx)
		} else {
			ctrl.GetWeather(gctx)
		}
		return nil
	})

	g.Go(func() error {
		select {
		case <-done:
			return nil
		case <-gctx.Done():
			ctrl.Close()
			return gctx.Err()
		}
	})

	return g.Wait()
}

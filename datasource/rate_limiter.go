package datasource

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"weather-lookup/models"
)

// RateLimitedForecastSource wraps a ForecastSource with rate limiting
type RateLimitedForecastSource struct {
	source  ForecastSource
	limiter *rate.Limiter
	name    string
}

// NewRateLimitedForecastSource creates a new rate limited forecast source
// rps is the maximum requests per second allowed (can be fractional for less than 1 request per second)
// burst is the maximum burst size allowed
func NewRateLimitedForecastSource(source ForecastSource, rps float64, burst int) *RateLimitedForecastSource {
	return &RateLimitedForecastSource{
		source:  source,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		name:    fmt.Sprintf("%s [Rate Limited]", source.Name()),
	}
}

// FetchForecast fetches forecast data, respecting rate limits
func (r *RateLimitedForecastSource) FetchForecast(ctx context.Context, location string, days int) (any, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, waitError(ctx, r.limiter, err)
	}
	return r.source.FetchForecast(ctx, location, days)
}

// Name returns the source name
func (r *RateLimitedForecastSource) Name() string {
	return r.name
}

// RateLimitedProvider limits forecast fetches and location detection with
// separate limiters, so detection never eats into the forecast budget.
type RateLimitedProvider struct {
	provider        Provider
	forecastLimiter *rate.Limiter
	detectLimiter   *rate.Limiter
	name            string
}

// NewRateLimitedProvider creates a provider with rate limiting on both calls.
// forecastRPS and detectRPS are the maximum requests per second for each API.
func NewRateLimitedProvider(provider Provider, forecastRPS, detectRPS float64, burst int) *RateLimitedProvider {
	return &RateLimitedProvider{
		provider:        provider,
		forecastLimiter: rate.NewLimiter(rate.Limit(forecastRPS), burst),
		detectLimiter:   rate.NewLimiter(rate.Limit(detectRPS), burst),
		name:            fmt.Sprintf("%s [Rate Limited]", provider.Name()),
	}
}

// FetchForecast implements ForecastSource with rate limiting
func (r *RateLimitedProvider) FetchForecast(ctx context.Context, location string, days int) (any, error) {
	if err := r.forecastLimiter.Wait(ctx); err != nil {
		return nil, waitError(ctx, r.forecastLimiter, err)
	}
	return r.provider.FetchForecast(ctx, location, days)
}

// DetectLocation implements LocationDetector with rate limiting
func (r *RateLimitedProvider) DetectLocation(ctx context.Context) (models.Place, error) {
	if err := r.detectLimiter.Wait(ctx); err != nil {
		return models.Place{}, waitError(ctx, r.detectLimiter, err)
	}
	return r.provider.DetectLocation(ctx)
}

// Name returns the provider name
func (r *RateLimitedProvider) Name() string {
	return r.name
}

// waitError wraps a failed limiter wait. Wait refuses up front when the next
// token lies past the ctx deadline; that refusal is reported as
// context.DeadlineExceeded like an expired wait.
func waitError(ctx context.Context, limiter *rate.Limiter, err error) error {
	if _, ok := ctx.Deadline(); ok && ctx.Err() == nil && limiter.Burst() > 0 {
		return fmt.Errorf("rate limit wait canceled: %w: %w", context.DeadlineExceeded, err)
	}
	return fmt.Errorf("rate limit wait canceled: %w", err)
}

// Verify that our rate limited types implement the required interfaces
var (
	_ ForecastSource = (*RateLimitedForecastSource)(nil)
	_ Provider       = (*RateLimitedProvider)(nil)
)

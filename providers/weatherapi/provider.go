// Package weatherapi implements datasource.Provider on top of WeatherAPI.com
package weatherapi

import (
	"context"
	"errors"
	"log/slog"
	"net/url"

	"weather-lookup/datasource"
	"weather-lookup/models"
)

// DefaultBaseURL is the WeatherAPI.com v1 root
const DefaultBaseURL = "https://api.weatherapi.com/v1"

// Fetcher performs a JSON GET. *datasource.Client is the production implementation.
type Fetcher interface {
	FetchJSON(ctx context.Context, endpoint string, params url.Values) (any, error)
}

// Provider fetches forecasts and detects the caller's location via WeatherAPI.com
type Provider struct {
	apiKey   string
	baseURL  string
	client   Fetcher
	fallback models.Place
	logger   *slog.Logger
}

// Ensure Provider implements datasource.Provider
var _ datasource.Provider = (*Provider)(nil)

// Option configures a Provider
type Option func(*Provider)

// WithBaseURL overrides DefaultBaseURL
func WithBaseURL(baseURL string) Option {
	return func(p *Provider) {
		p.baseURL = baseURL
	}
}

// WithFallbackPlace sets the place returned when detection fails
func WithFallbackPlace(place models.Place) Option {
	return func(p *Provider) {
		p.fallback = place
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) {
		p.logger = logger
	}
}

// NewProvider creates a new WeatherAPI provider
func NewProvider(apiKey string, client Fetcher, opts ...Option) *Provider {
	p := &Provider{
		apiKey:   apiKey,
		baseURL:  DefaultBaseURL,
		client:   client,
		fallback: models.Place{City: "London", Country: "UK"},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("component", "weatherapi")
	return p
}

// Name returns the provider name
func (p *Provider) Name() string {
	return "WeatherAPI"
}

// DetectLocation resolves the caller's city and country from their IP. Any
// failure other than a cancelled context yields the fallback place.
func (p *Provider) DetectLocation(ctx context.Context) (models.Place, error) {
	params := url.Values{}
	params.Set("key", p.apiKey)
	params.Set("q", "auto:ip")

	data, err := p.client.FetchJSON(ctx, p.baseURL+"/ip.json", params)
	if err != nil {
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			return models.Place{}, err
		}
		p.logger.Warn("location detection failed, using fallback",
			"error", err,
			"fallback", p.fallback.Query(),
		)
		return p.fallback, nil
	}

	body, _ := data.(map[string]any)
	city, _ := body["city"].(string)
	country, _ := body["country_name"].(string)
	if city == "" || country == "" {
		p.logger.Warn("location detection returned no place, using fallback",
			"fallback", p.fallback.Query(),
		)
		return p.fallback, nil
	}

	place := models.Place{City: city, Country: country}
	p.logger.Debug("location detected", "place", place.Query())
	return place, nil
}

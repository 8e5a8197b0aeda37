package datasource

import (
	"context"

	"weather-lookup/models"
)

// ForecastSource fetches the raw forecast payload for a location. The
// payload is untrusted and must go through normalize.Normalize.
type ForecastSource interface {
	// FetchForecast fetches forecast for a location for the specified number of days
	FetchForecast(ctx context.Context, location string, days int) (any, error)

	// Name returns the source's name
	Name() string
}

// LocationDetector resolves the caller's approximate location
type LocationDetector interface {
	DetectLocation(ctx context.Context) (models.Place, error)
}

// Provider is a source that can also detect the caller's location
type Provider interface {
	ForecastSource
	LocationDetector
}

package weatherapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"weather-lookup/datasource"
)

const (
	// DefaultDays is the forecast length used when none is requested
	DefaultDays = 5
	// MaxDays is the longest forecast the API serves
	MaxDays = 14
)

// FetchForecast fetches the forecast payload for location. The result is the
// decoded JSON body, unvalidated.
func (p *Provider) FetchForecast(ctx context.Context, location string, days int) (any, error) {
	days = ClampDays(days)

	params := url.Values{}
	params.Set("key", p.apiKey)
	params.Set("q", location)
	params.Set("days", strconv.Itoa(days))
	params.Set("aqi", "no")
	params.Set("alerts", "no")

	data, err := p.client.FetchJSON(ctx, p.baseURL+"/forecast.json", params)
	if err != nil {
		return nil, p.handleError(err, location)
	}
	return data, nil
}

// ClampDays returns DefaultDays for a non-positive value and caps at MaxDays
func ClampDays(days int) int {
	switch {
	case days <= 0:
		return DefaultDays
	case days > MaxDays:
		return MaxDays
	}
	return days
}

// handleError turns HTTP status failures into API errors with a user facing
// message. Network, timeout and parse failures pass through unchanged.
func (p *Provider) handleError(err error, location string) error {
	var rerr *datasource.RequestError
	if !errors.As(err, &rerr) || rerr.Kind != datasource.KindHTTP {
		return err
	}

	p.logger.Error("backend returned an error",
		"status", rerr.StatusCode,
		"body", rerr.Body,
		"location", location,
	)

	return &datasource.RequestError{
		Kind:       datasource.KindAPI,
		StatusCode: rerr.StatusCode,
		Message:    statusMessage(rerr.StatusCode, location),
		Body:       rerr.Body,
		Err:        rerr,
	}
}

func statusMessage(status int, location string) string {
	switch {
	case status == http.StatusBadRequest:
		return "Invalid location. Please check the spelling and try again."
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return "API key error. Please check your API credentials."
	case status == http.StatusNotFound:
		return "Location not found. Please try a different location."
	case status == http.StatusTooManyRequests:
		return "Too many requests. Please try again later."
	case status >= 500:
		return "Weather service is currently unavailable. Please try again later."
	default:
		return fmt.Sprintf("Failed to fetch forecast data for %s", location)
	}
}

package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"weather-lookup/datasource"
)

const (
	msgAPIKey      = "API key error. Please check your API credentials."
	msgRateLimited = "Too many requests. Please try again later."
	msgUnavailable = "Weather service is currently unavailable. Please try again later."
	msgTimeout     = "Timeout"
	msgParse       = "Unable to parse weather data."
	msgFallback    = "An error occurred while fetching weather data"
)

// describeError maps a transport failure to the message stored in State.Error.
// The first matching rule wins.
func describeError(err error) string {
	var rerr *datasource.RequestError
	isReq := errors.As(err, &rerr)
	var syntaxErr *json.SyntaxError

	switch {
	case isReq && rerr.Kind == datasource.KindAPI && rerr.Message != "":
		return rerr.Message
	case isReq && (rerr.StatusCode == http.StatusUnauthorized || rerr.StatusCode == http.StatusForbidden):
		return msgAPIKey
	case isReq && rerr.StatusCode == http.StatusTooManyRequests:
		return msgRateLimited
	case isReq && rerr.StatusCode >= http.StatusInternalServerError:
		return msgUnavailable
	case (isReq && rerr.Timeout()) || errors.Is(err, context.DeadlineExceeded):
		return msgTimeout
	case (isReq && rerr.Kind == datasource.KindParse) || errors.As(err, &syntaxErr):
		return msgParse
	case isReq && rerr.BodyMessage() != "":
		return rerr.BodyMessage()
	}
	return msgFallback
}

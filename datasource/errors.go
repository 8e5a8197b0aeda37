package datasource

import (
	"fmt"
)

// Kind classifies a transport failure
type Kind int

const (
	// KindNetwork covers connection and read failures
	KindNetwork Kind = iota
	// KindTimeout means the attempt exceeded its deadline
	KindTimeout
	// KindHTTP is a response with a non-2xx status
	KindHTTP
	// KindParse is a 2xx response whose body was not valid JSON
	KindParse
	// KindAPI is a provider level error carrying a user facing message
	KindAPI
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	case KindHTTP:
		return "http"
	case KindParse:
		return "parse"
	case KindAPI:
		return "api"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// RequestError is the single error type returned by Client and the providers.
// Body holds the decoded JSON error body when the server sent one.
type RequestError struct {
	Kind       Kind
	StatusCode int
	Message    string
	Body       any
	Err        error
}

func (e *RequestError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s error: %s (status %d)", e.Kind, msg, e.StatusCode)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, msg)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the failure was a deadline
func (e *RequestError) Timeout() bool {
	return e.Kind == KindTimeout
}

// Retryable reports whether another attempt may succeed
func (e *RequestError) Retryable() bool {
	switch e.Kind {
	case KindNetwork, KindTimeout:
		return true
	case KindHTTP:
		return e.StatusCode >= 500
	}
	return false
}

// BodyMessage returns the server supplied message, looking at error.message
// first and then at a top-level message.
func (e *RequestError) BodyMessage() string {
	body, ok := e.Body.(map[string]any)
	if !ok {
		return ""
	}
	if nested, ok := body["error"].(map[string]any); ok {
		if msg, ok := nested["message"].(string); ok && msg != "" {
			return msg
		}
	}
	if msg, ok := body["message"].(string); ok {
		return msg
	}
	return ""
}

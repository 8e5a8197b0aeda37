package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"
)

const (
	// DefaultTimeout bounds a single attempt
	DefaultTimeout = 10 * time.Second
	// DefaultRetries is the number of extra attempts after a retryable failure
	DefaultRetries = 2
	// MaxBodyBytes caps the response body read per attempt
	MaxBodyBytes = 8 << 20
)

// Client performs JSON GET requests with a per-attempt timeout and a bounded
// number of retries. It has no knowledge of the payload it returns.
type Client struct {
	httpClient *http.Client
	retries    int
	maxBody    int64
	logger     *slog.Logger
}

// NewClient creates a transport client. A non-positive timeout selects
// DefaultTimeout, a negative retries value disables retrying.
func NewClient(timeout time.Duration, retries int, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if retries < 0 {
		retries = 0
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		retries: retries,
		maxBody: MaxBodyBytes,
		logger:  logger.With("component", "transport"),
	}
}

// FetchJSON issues GET endpoint?params and returns the decoded JSON body.
// Network failures, timeouts and 5xx responses are retried; every failure is
// returned as a *RequestError. Cancelling ctx stops further attempts.
func (c *Client) FetchJSON(ctx context.Context, endpoint string, params url.Values) (any, error) {
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, classify(err)
		}

		start := time.Now()
		data, rerr := c.fetchOnce(ctx, endpoint, params)
		if rerr == nil {
			c.logger.Debug("request succeeded", "endpoint", endpoint, "attempt", attempt+1, "duration", time.Since(start))
			return data, nil
		}
		lastErr = rerr

		if !rerr.Retryable() || ctx.Err() != nil {
			break
		}
		if attempt < c.retries {
			// the query string carries the API key and is never logged
			c.logger.Warn("request failed, retrying",
				"endpoint", endpoint,
				"attempt", attempt+1,
				"kind", rerr.Kind.String(),
				"status", rerr.StatusCode,
			)
		}
	}
	return nil, lastErr
}

func (c *Client) fetchOnce(ctx context.Context, endpoint string, params url.Values) (any, *RequestError) {
	target := endpoint
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &RequestError{Kind: KindNetwork, Message: "failed to create request", Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classify(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, classify(err)
	}
	if int64(len(body)) > c.maxBody {
		return nil, &RequestError{
			Kind:       KindParse,
			StatusCode: resp.StatusCode,
			Message:    "response body too large",
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var decoded any
		if len(body) > 0 {
			// best effort, error bodies are not always JSON
			_ = json.Unmarshal(body, &decoded)
		}
		return nil, &RequestError{
			Kind:       KindHTTP,
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Body:       decoded,
		}
	}

	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, &RequestError{
			Kind:       KindParse,
			StatusCode: resp.StatusCode,
			Message:    "failed to parse response body",
			Err:        err,
		}
	}
	return data, nil
}

// classify maps an error from the HTTP round trip onto a RequestError
func classify(err error) *RequestError {
	var nerr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &nerr) && nerr.Timeout()) {
		return &RequestError{Kind: KindTimeout, Message: "request timed out", Err: err}
	}
	return &RequestError{Kind: KindNetwork, Message: "failed to execute request", Err: err}
}

package datasource

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestClient_FetchJSON_Success(t *testing.T) {
	var gotQuery url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"location": {"name": "Paris"}, "values": [1, 2]}`))
	}))
	defer server.Close()

	client := NewClient(time.Second, 2, discardLogger())
	params := url.Values{}
	params.Set("q", "Paris")
	params.Set("days", "3")

	data, err := client.FetchJSON(context.Background(), server.URL+"/forecast.json", params)
	if err != nil {
		t.Fatalf("FetchJSON() unexpected error = %v", err)
	}

	want := map[string]any{
		"location": map[string]any{"name": "Paris"},
		"values":   []any{1.0, 2.0},
	}
	if diff := cmp.Diff(want, data); diff != "" {
		t.Errorf("FetchJSON() mismatch (-want +got):\n%s", diff)
	}
	if gotQuery.Get("q") != "Paris" || gotQuery.Get("days") != "3" {
		t.Errorf("query = %v, want q=Paris days=3", gotQuery)
	}
}

func TestClient_FetchJSON_Retries(t *testing.T) {
	tests := []struct {
		name         string
		retries      int
		statuses     []int
		wantAttempts int32
		wantErr      bool
		wantKind     Kind
		wantStatus   int
	}{
		{
			name:         "5xx then success",
			retries:      2,
			statuses:     []int{http.StatusInternalServerError, http.StatusOK},
			wantAttempts: 2,
		},
		{
			name:         "5xx exhausts retries",
			retries:      2,
			statuses:     []int{http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusInternalServerError},
			wantAttempts: 3,
			wantErr:      true,
			wantKind:     KindHTTP,
			wantStatus:   http.StatusInternalServerError,
		},
		{
			name:         "4xx is not retried",
			retries:      2,
			statuses:     []int{http.StatusNotFound},
			wantAttempts: 1,
			wantErr:      true,
			wantKind:     KindHTTP,
			wantStatus:   http.StatusNotFound,
		},
		{
			name:         "429 is not retried",
			retries:      2,
			statuses:     []int{http.StatusTooManyRequests},
			wantAttempts: 1,
			wantErr:      true,
			wantKind:     KindHTTP,
			wantStatus:   http.StatusTooManyRequests,
		},
		{
			name:         "retries disabled",
			retries:      0,
			statuses:     []int{http.StatusInternalServerError},
			wantAttempts: 1,
			wantErr:      true,
			wantKind:     KindHTTP,
			wantStatus:   http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var attempts atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				n := int(attempts.Add(1)) - 1
				status := tt.statuses[min(n, len(tt.statuses)-1)]
				w.WriteHeader(status)
				_, _ = w.Write([]byte(`{"ok": true}`))
			}))
			defer server.Close()

			client := NewClient(time.Second, tt.retries, discardLogger())
			_, err := client.FetchJSON(context.Background(), server.URL, nil)

			if got := attempts.Load(); got != tt.wantAttempts {
				t.Errorf("attempts = %d, want %d", got, tt.wantAttempts)
			}
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("FetchJSON() unexpected error = %v", err)
				}
				return
			}

			var rerr *RequestError
			if !errors.As(err, &rerr) {
				t.Fatalf("FetchJSON() error = %v, want *RequestError", err)
			}
			if rerr.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", rerr.Kind, tt.wantKind)
			}
			if rerr.StatusCode != tt.wantStatus {
				t.Errorf("StatusCode = %d, want %d", rerr.StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestClient_FetchJSON_ErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": {"code": 1006, "message": "No matching location found."}}`))
	}))
	defer server.Close()

	client := NewClient(time.Second, 2, discardLogger())
	_, err := client.FetchJSON(context.Background(), server.URL, nil)

	var rerr *RequestError
	if !errors.As(err, &rerr) {
		t.Fatalf("FetchJSON() error = %v, want *RequestError", err)
	}
	if got := rerr.BodyMessage(); got != "No matching location found." {
		t.Errorf("BodyMessage() = %q, want %q", got, "No matching location found.")
	}
}

func TestClient_FetchJSON_ParseError(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		_, _ = w.Write([]byte(`<html>maintenance</html>`))
	}))
	defer server.Close()

	client := NewClient(time.Second, 2, discardLogger())
	_, err := client.FetchJSON(context.Background(), server.URL, nil)

	var rerr *RequestError
	if !errors.As(err, &rerr) {
		t.Fatalf("FetchJSON() error = %v, want *RequestError", err)
	}
	if rerr.Kind != KindParse {
		t.Errorf("Kind = %v, want %v", rerr.Kind, KindParse)
	}
	if attempts.Load() != 1 {
		t.Errorf("attempts = %d, want 1", attempts.Load())
	}
}

func TestClient_FetchJSON_BodyTooLarge(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		_, _ = w.Write([]byte(`{"location": {"name": "London", "country": "United Kingdom"}}`))
	}))
	defer server.Close()

	client := NewClient(time.Second, 2, discardLogger())
	client.maxBody = 16
	_, err := client.FetchJSON(context.Background(), server.URL, nil)

	var rerr *RequestError
	if !errors.As(err, &rerr) {
		t.Fatalf("FetchJSON() error = %v, want *RequestError", err)
	}
	if rerr.Kind != KindParse || rerr.Message != "response body too large" {
		t.Errorf("error = %v %q, want %v %q", rerr.Kind, rerr.Message, KindParse, "response body too large")
	}
	if attempts.Load() != 1 {
		t.Errorf("attempts = %d, want 1", attempts.Load())
	}
}

func TestClient_FetchJSON_BodyAtLimit(t *testing.T) {
	body := `{"a": 1}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer server.Close()

	client := NewClient(time.Second, 0, discardLogger())
	client.maxBody = int64(len(body))
	data, err := client.FetchJSON(context.Background(), server.URL, nil)
	if err != nil {
		t.Fatalf("FetchJSON() unexpected error = %v", err)
	}
	if diff := cmp.Diff(map[string]any{"a": 1.0}, data); diff != "" {
		t.Errorf("FetchJSON() mismatch (-want +got):\n%s", diff)
	}
}

func TestClient_FetchJSON_Timeout(t *testing.T) {
	var attempts atomic.Int32
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(50*time.Millisecond, 1, discardLogger())
	_, err := client.FetchJSON(context.Background(), server.URL, nil)

	var rerr *RequestError
	if !errors.As(err, &rerr) {
		t.Fatalf("FetchJSON() error = %v, want *RequestError", err)
	}
	if !rerr.Timeout() {
		t.Errorf("Kind = %v, want %v", rerr.Kind, KindTimeout)
	}
	if attempts.Load() != 2 {
		t.Errorf("attempts = %d, want 2", attempts.Load())
	}
}

func TestClient_FetchJSON_Canceled(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(time.Second, 2, discardLogger())
	_, err := client.FetchJSON(ctx, server.URL, nil)

	if !errors.Is(err, context.Canceled) {
		t.Errorf("FetchJSON() error = %v, want context.Canceled", err)
	}
	if attempts.Load() != 0 {
		t.Errorf("attempts = %d, want 0", attempts.Load())
	}
}

func TestRequestError_BodyMessage(t *testing.T) {
	tests := []struct {
		name string
		body any
		want string
	}{
		{"nested message", map[string]any{"error": map[string]any{"message": "Country not found"}}, "Country not found"},
		{"top-level message", map[string]any{"message": "Quota exceeded"}, "Quota exceeded"},
		{"nested wins", map[string]any{"error": map[string]any{"message": "inner"}, "message": "outer"}, "inner"},
		{"empty nested falls back", map[string]any{"error": map[string]any{"message": ""}, "message": "outer"}, "outer"},
		{"no body", nil, ""},
		{"non-object body", "Bad Gateway", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &RequestError{Kind: KindHTTP, Body: tt.body}
			if got := err.BodyMessage(); got != tt.want {
				t.Errorf("BodyMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRequestError_Error(t *testing.T) {
	err := &RequestError{Kind: KindHTTP, StatusCode: 503, Message: "Service Unavailable"}
	if got, want := err.Error(), "http error: Service Unavailable (status 503)"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	wrapped := &RequestError{Kind: KindNetwork, Err: io.ErrUnexpectedEOF}
	if !errors.Is(wrapped, io.ErrUnexpectedEOF) {
		t.Error("errors.Is() did not reach the wrapped error")
	}
	if got, want := wrapped.Error(), "network error: unexpected EOF"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

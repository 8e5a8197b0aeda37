package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"weather-lookup/datasource"
	"weather-lookup/lookup"
	"weather-lookup/models"
)

// MockProvider simulates WeatherAPI latency and counts calls
type MockProvider struct {
	callCount int
	mutex     sync.Mutex
	latency   time.Duration
}

func NewMockProvider(latency time.Duration) *MockProvider {
	return &MockProvider{latency: latency}
}

func (m *MockProvider) FetchForecast(ctx context.Context, location string, days int) (any, error) {
	m.mutex.Lock()
	m.callCount++
	currentCount := m.callCount
	m.mutex.Unlock()

	fmt.Printf("%s - Processing request #%d for %s\n", time.Now().Format("15:04:05.000"), currentCount, location)

	select {
	case <-time.After(m.latency):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	return map[string]any{
		"location": map[string]any{
			"name": location, "country": "Testland", "region": "",
			"lat": 0.0, "lon": 0.0, "localtime": time.Now().Format("2006-01-02 15:04"),
		},
		"current": map[string]any{
			"temp_c": 22.5, "temp_f": 72.5, "humidity": 60.0,
			"wind_kph": 19.8, "wind_mph": 12.3, "wind_dir": "W",
			"pressure_mb": 1013.0, "pressure_in": 29.91,
			"feelslike_c": 22.5, "feelslike_f": 72.5, "uv": 4.0,
			"condition": map[string]any{"text": "Mocked weather data", "icon": "", "code": 1000.0},
		},
	}, nil
}

func (m *MockProvider) DetectLocation(ctx context.Context) (models.Place, error) {
	return models.Place{City: "Testville", Country: "Testland"}, nil
}

func (m *MockProvider) Name() string {
	return "MockProvider"
}

func (m *MockProvider) GetCallCount() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.callCount
}

func main() {
	requestsPerSecond := pflag.Float64("rps", 1.0, "Rate limit in requests per second")
	burstSize := pflag.Int("burst", 3, "Maximum burst size")
	totalRequests := pflag.Int("requests", 10, "Total number of requests to make")
	concurrentRequests := pflag.Int("concurrent", 5, "Number of concurrent lookups")
	pflag.Parse()

	if *concurrentRequests < 1 || *requestsPerSecond <= 0 {
		fmt.Fprintln(os.Stderr, "--concurrent must be at least 1 and --rps positive")
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	mockProvider := NewMockProvider(200 * time.Millisecond)
	rateLimited := datasource.NewRateLimitedProvider(mockProvider, *requestsPerSecond, *requestsPerSecond, *burstSize)

	fmt.Printf("Testing rate limiter with:\n")
	fmt.Printf("- Rate limit: %.2f requests/second\n", *requestsPerSecond)
	fmt.Printf("- Burst size: %d\n", *burstSize)
	fmt.Printf("- Total requests: %d\n", *totalRequests)
	fmt.Printf("- Concurrent workers: %d\n", *concurrentRequests)
	fmt.Println("Starting test...")

	var succeeded, failed atomic.Int32
	startTime := time.Now()

	// one controller per worker, each running its lookups one after another
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < *concurrentRequests; i++ {
		g.Go(func() error {
			ctrl := lookup.New(rateLimited, rateLimited, lookup.WithLogger(logger))
			defer ctrl.Close()

			requestsPerWorker := *totalRequests / *concurrentRequests
			if i < *totalRequests%*concurrentRequests {
				requestsPerWorker++
			}

			for j := 0; j < requestsPerWorker; j++ {
				ctrl.SetInput(fmt.Sprintf("TestLocation-%d-%d", i, j))
				before := time.Now()
				ctrl.GetWeather(gctx)
				elapsed := time.Since(before)

				st := ctrl.State()
				if st.Status != lookup.StatusSuccess {
					failed.Add(1)
					fmt.Printf("Worker %d - Request %d failed: %s\n", i, j, st.Error)
				} else {
					succeeded.Add(1)
					fmt.Printf("Worker %d - Request %d completed in %v (%s, %.1f°C)\n",
						i, j, elapsed, st.Record.Location.Name, st.Record.Current.TempC)
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	elapsed := time.Since(startTime)
	fmt.Printf("\n%d lookups in %v: %d succeeded, %d failed, %d forecast calls, %.2f calls/s (limit %.2f, burst %d)\n",
		*totalRequests, elapsed.Round(time.Millisecond),
		succeeded.Load(), failed.Load(),
		mockProvider.GetCallCount(),
		float64(mockProvider.GetCallCount())/elapsed.Seconds(),
		*requestsPerSecond, *burstSize,
	)
}

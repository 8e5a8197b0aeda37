// Package lookup owns the state of a weather lookup: the location input, the
// loading flag, the last record or error and the presentation toggles.
package lookup

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"weather-lookup/datasource"
	"weather-lookup/normalize"
)

// DefaultForecastDays is the number of days requested per lookup
const DefaultForecastDays = 5

// Controller runs lookups against a forecast source and keeps the resulting
// state. Only the most recent lookup may change the state: starting a new one
// cancels the previous request and its result is dropped.
type Controller struct {
	source   datasource.ForecastSource
	detector datasource.LocationDetector
	days     int
	logger   *slog.Logger

	// lifetime is cancelled by Close
	lifetime context.Context
	shutdown context.CancelFunc

	mu       sync.RWMutex
	state    State
	input    inputControl
	inflight *lookup
	closed   bool
}

type lookup struct {
	id       uuid.UUID
	ctx      context.Context
	cancel   context.CancelFunc
	detach   func() bool
	location string
}

// Option configures a Controller
type Option func(*Controller)

// WithForecastDays sets the number of forecast days requested
func WithForecastDays(days int) Option {
	return func(c *Controller) {
		c.days = days
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// New creates a controller in the idle state with metric units and the
// current tab selected.
func New(source datasource.ForecastSource, detector datasource.LocationDetector, opts ...Option) *Controller {
	c := &Controller{
		source:   source,
		detector: detector,
		days:     DefaultForecastDays,
		logger:   slog.Default(),
		state: State{
			Status:    StatusIdle,
			ActiveTab: TabCurrent,
			Metric:    true,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "lookup")
	c.lifetime, c.shutdown = context.WithCancel(context.Background())
	return c
}

// State returns a snapshot of the current state
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// SetInput replaces the location input as a user edit would
func (c *Controller) SetInput(value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Input = value
	c.input.dirty = true
}

// Touch marks the location input as visited
func (c *Controller) Touch() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.input.touched = true
}

// InputInvalid reports whether the input fails validation and the user has
// interacted with it, which is when a validation hint should be shown.
func (c *Controller) InputInvalid() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.input.showsError(c.state.Input)
}

// GetWeather looks up the forecast for the current input. It does nothing
// when the input is invalid. It blocks until the lookup completes, is
// superseded, or ctx is done.
func (c *Controller) GetWeather(ctx context.Context) {
	location := c.State().Input
	if err := ValidateLocation(location); err != nil {
		c.logger.Debug("lookup skipped", "input", location, "reason", err)
		return
	}

	l, ok := c.begin(ctx, location)
	if !ok {
		return
	}
	c.fetch(l)
}

// DetectLocation asks the detector for the caller's place, writes it into
// the input as "city, country" and looks up its forecast.
func (c *Controller) DetectLocation(ctx context.Context) {
	l, ok := c.begin(ctx, "")
	if !ok {
		return
	}

	place, err := c.detector.DetectLocation(l.ctx)
	if err != nil {
		c.fail(l, err)
		return
	}

	l.location = place.Query()
	if !c.update(l, func(s *State) { s.Input = l.location }) {
		c.end(l)
		return
	}
	c.logger.Info("location detected", "lookup_id", l.id, "location", l.location)
	c.fetch(l)
}

// UpdateHourlyForecast exposes the hourly forecast of the given day. It
// returns false and leaves the state unchanged when day is out of range.
func (c *Controller) UpdateHourlyForecast(day int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return selectDay(&c.state, day)
}

// SwitchTab selects the presented view; unknown tabs are ignored
func (c *Controller) SwitchTab(tab Tab) {
	if !tab.Valid() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.ActiveTab = tab
}

// ToggleUnits switches between metric and imperial units
func (c *Controller) ToggleUnits() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Metric = !c.state.Metric
}

// Close cancels any in-flight lookup. Results arriving afterwards are
// discarded and later lookups are ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.shutdown()
}

// begin supersedes the in-flight lookup, if any, and resets the state for a
// new one.
func (c *Controller) begin(ctx context.Context, location string) (*lookup, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, false
	}
	if prev := c.inflight; prev != nil {
		c.logger.Debug("superseding lookup", "lookup_id", prev.id)
		prev.cancel()
	}

	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	lctx, cancel := context.WithCancel(ctx)
	l := &lookup{
		id:       id,
		ctx:      lctx,
		cancel:   cancel,
		detach:   context.AfterFunc(c.lifetime, cancel),
		location: location,
	}
	c.inflight = l

	c.state.Status = StatusLoading
	c.state.Loading = true
	c.state.Error = ""
	c.state.Record = nil
	c.state.ForecastDays = nil
	c.state.SelectedDay = 0
	c.state.Hourly = nil
	return l, true
}

func (c *Controller) fetch(l *lookup) {
	c.logger.Debug("fetching forecast", "lookup_id", l.id, "location", l.location, "days", c.days)

	raw, err := c.source.FetchForecast(l.ctx, l.location, c.days)
	if err != nil {
		c.fail(l, err)
		return
	}

	record, err := normalize.Normalize(raw)
	if err != nil {
		reason, _ := normalize.ReasonOf(err)
		c.logger.Error("invalid weather payload",
			"lookup_id", l.id,
			"location", l.location,
			"error", err,
		)
		c.finish(l, func(s *State) {
			s.Status = StatusFailed
			s.Error = reason.String()
		})
		return
	}

	stored := c.finish(l, func(s *State) {
		s.Status = StatusSuccess
		s.Record = record
		s.ForecastDays = record.Days()
		selectDay(s, 0)
	})
	if stored {
		c.logger.Info("lookup succeeded",
			"lookup_id", l.id,
			"location", record.Location.Name,
			"country", record.Location.Country,
			"forecast_days", len(record.Days()),
		)
	}
}

func (c *Controller) fail(l *lookup, err error) {
	// cancelled by the caller, not superseded or closed: back to idle
	if errors.Is(err, context.Canceled) && l.ctx.Err() != nil {
		if c.finish(l, func(s *State) { s.Status = StatusIdle }) {
			c.logger.Info("lookup cancelled", "lookup_id", l.id, "location", l.location)
		}
		return
	}

	msg := describeError(err)
	if c.finish(l, func(s *State) {
		s.Status = StatusFailed
		s.Error = msg
	}) {
		c.logger.Error("lookup failed",
			"lookup_id", l.id,
			"location", l.location,
			"message", msg,
			"error", err,
		)
	}
}

// update applies fn while l is still the current lookup
func (c *Controller) update(l *lookup, fn func(*State)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.inflight != l {
		return false
	}
	fn(&c.state)
	return true
}

// finish completes l, applying fn and clearing the loading flag when l is
// still current. It reports whether the state was changed.
func (c *Controller) finish(l *lookup, fn func(*State)) bool {
	defer c.end(l)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.inflight != l {
		c.logger.Debug("discarding stale result", "lookup_id", l.id)
		return false
	}
	c.inflight = nil
	fn(&c.state)
	c.state.Loading = false
	return true
}

func (c *Controller) end(l *lookup) {
	l.detach()
	l.cancel()
}

func selectDay(s *State, day int) bool {
	if day < 0 || day >= len(s.ForecastDays) {
		return false
	}
	s.SelectedDay = day
	s.Hourly = s.ForecastDays[day].Hour
	return true
}

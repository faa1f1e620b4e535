package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"trip-map-service/internal/config"
	"trip-map-service/internal/domain"
	"trip-map-service/internal/ports"
)

// Phase is the controller's externally visible state.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseReady   Phase = "ready"
)

// DaySelectionController supervises the whole pipeline cycle for one
// map view. Selecting a day (or resetting to all days) cancels any
// in-flight work tied to the previous selection, clears its visuals,
// and starts a fresh run. There is no terminal state; the controller
// stays active until Close.
type DaySelectionController struct {
	itinerary *domain.Itinerary
	records   []*domain.LocationRecord

	batcher  *GeocodeBatcher
	computer *RouteComputer
	markers  *SequenceMarkerManager
	surface  ports.RenderSurface
	events   ports.EventSink
	tuning   config.Pipeline

	mu      sync.Mutex
	phase   Phase
	day     int
	current *RunContext
	closed  bool
}

// NewDaySelectionController extracts the itinerary's locations once and
// prepares an idle controller. A malformed itinerary (no days or no
// destination) returns ErrNothingToShow; no pipeline run is attempted.
func NewDaySelectionController(
	it *domain.Itinerary,
	geocoder ports.Geocoder,
	geocodeCache ports.GeocodeCache,
	directions ports.DirectionsProvider,
	routeCache ports.RouteCache,
	surface ports.RenderSurface,
	events ports.EventSink,
	tuning config.Pipeline,
) (*DaySelectionController, error) {
	if !it.Renderable() {
		return nil, ErrNothingToShow
	}

	return &DaySelectionController{
		itinerary: it,
		records:   ExtractLocations(it),
		batcher: &GeocodeBatcher{
			Geocoder: geocoder,
			Cache:    geocodeCache,
			Events:   events,
			Tuning:   tuning,
		},
		computer: &RouteComputer{
			Provider: directions,
			Cache:    routeCache,
			Tuning:   tuning,
		},
		markers: NewSequenceMarkerManager(surface, tuning),
		surface: surface,
		events:  events,
		tuning:  tuning,
		phase:   PhaseIdle,
	}, nil
}

// SelectDay switches the view to one day, or to every scheduled day
// when day is DayAll. The outgoing run is cancelled and its visuals
// cleared before the new run starts, so at most one run's visuals are
// ever on the surface.
func (c *DaySelectionController) SelectDay(day int) error {
	if day != DayAll && day < 1 {
		return fmt.Errorf("select day: invalid day %d", day)
	}
	if day != DayAll && !c.hasDay(day) {
		return fmt.Errorf("select day: itinerary has no day %d", day)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return errors.New("select day: controller is closed")
	}

	if c.current != nil {
		c.current.TearDown(c.surface)
	}
	c.markers.ClearAll()

	rc := newRunContext(context.Background(), day)
	c.current = rc
	c.phase = PhaseLoading
	c.day = day
	c.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.run(rc)
	}()
	go c.watch(rc, done)

	return nil
}

// Reset re-renders every scheduled day, the view's initial state.
func (c *DaySelectionController) Reset() error { return c.SelectDay(DayAll) }

// Close cancels the active run and clears all visuals. The controller
// accepts no further selections.
func (c *DaySelectionController) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.current != nil {
		c.current.TearDown(c.surface)
		c.current = nil
	}
	c.markers.ClearAll()
	c.phase = PhaseIdle
}

// State returns the current phase and selected day.
func (c *DaySelectionController) State() (Phase, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase, c.day
}

// Unplaced lists the names of selected records that never resolved to
// a coordinate. They are excluded from routes but still reported so
// the presentation layer can list them.
func (c *DaySelectionController) Unplaced() []string {
	c.mu.Lock()
	day := c.day
	c.mu.Unlock()

	var names []string
	for _, r := range c.selection(day) {
		if !r.Located() {
			names = append(names, r.Name)
		}
	}
	return names
}

// watch bounds how long the loading indicator may stay up. When the
// run outlives the timeout, Ready is reported with a degraded toast
// while the run keeps applying late results until cancelled.
func (c *DaySelectionController) watch(rc *RunContext, done <-chan struct{}) {
	timer := time.NewTimer(c.tuning.RouteWaitTimeout)
	defer timer.Stop()

	select {
	case <-done:
		if rc.Cancelled() {
			return
		}
	case <-timer.C:
		if rc.Cancelled() {
			return
		}
		if c.events != nil {
			c.events.Toast("some routes may still be loading")
		}
	}

	c.mu.Lock()
	if c.current == rc && !c.closed {
		c.phase = PhaseReady
	}
	c.mu.Unlock()

	if c.events != nil {
		c.events.Ready(rc.Day)
	}
}

// run executes one full pipeline cycle for the run's selection.
// Individual geocode and route failures are recovered locally and
// never abort the run; only cancellation stops it.
func (c *DaySelectionController) run(rc *RunContext) {
	selected := c.selection(rc.Day)
	log.Printf("pipeline run id=%s day=%d records=%d", rc.ID, rc.Day, len(selected))
	if len(selected) == 0 {
		return
	}

	queue := NewGeocodeQueue(selected)
	if _, err := c.batcher.Resolve(rc, queue, c.itinerary.Destination); err != nil {
		// Cancelled mid-geocode: the successor owns the surface now.
		return
	}

	var bounds []domain.Coordinates
	for _, day := range c.selectedDays(rc.Day) {
		if rc.Cancelled() {
			return
		}

		located := locatedForDay(selected, day)
		c.markers.Assign(located)
		if err := c.markers.Render(rc, day, located); err != nil {
			return
		}

		for _, r := range located {
			bounds = append(bounds, *r.Position)
		}

		c.routeDay(rc, day, located)
	}

	if rc.Cancelled() {
		return
	}
	switch {
	case len(bounds) == 1:
		c.surface.PanTo(bounds[0])
	case len(bounds) > 1:
		c.surface.FitBounds(bounds)
	}
}

// routeDay computes (or falls back to) the day's route and draws it.
func (c *DaySelectionController) routeDay(rc *RunContext, day int, located []*domain.LocationRecord) {
	stops := make([]domain.Coordinates, 0, len(located))
	for _, r := range located {
		stops = append(stops, *r.Position)
	}

	route, err := c.computer.ComputeRoute(rc.Context(), day, stops)
	if errors.Is(err, ErrNoRoute) || errors.Is(err, ErrCancelled) {
		return
	}
	if errors.Is(err, ErrRouteFailed) {
		log.Printf("route day=%d failed, using fallback: %v", day, err)
		route, err = c.computer.BuildFallback(rc.Context(), day, stops)
		if err == nil && c.events != nil {
			c.events.Toast(fmt.Sprintf("showing direct path for day %d", day))
		}
	}
	if err != nil {
		return
	}

	if rc.Cancelled() {
		return
	}

	style := ports.RouteStyle{Color: "#1967d2"}
	if route.Source == domain.RouteSourceFallback {
		style = ports.RouteStyle{Color: "#5f6368", Dashed: true}
	}
	rc.Track(c.surface.DrawRoute(day, route.Geometry, style))
}

// hasDay reports whether the itinerary schedules the given day number.
// Day numbers need not be contiguous.
func (c *DaySelectionController) hasDay(day int) bool {
	for _, d := range c.itinerary.Days {
		if d.Day == day {
			return true
		}
	}
	return false
}

// selection returns the records in scope for a day choice. Unscheduled
// records participate only in the all-days view, and never in routing.
func (c *DaySelectionController) selection(day int) []*domain.LocationRecord {
	if day == DayAll {
		return c.records
	}
	var out []*domain.LocationRecord
	for _, r := range c.records {
		if r.Day == day {
			out = append(out, r)
		}
	}
	return out
}

// selectedDays lists the scheduled days the run must route.
func (c *DaySelectionController) selectedDays(day int) []int {
	if day != DayAll {
		return []int{day}
	}
	var days []int
	for _, d := range c.itinerary.Days {
		if d.Day >= 1 {
			days = append(days, d.Day)
		}
	}
	return days
}

// locatedForDay filters one day's located records, preserving order.
func locatedForDay(records []*domain.LocationRecord, day int) []*domain.LocationRecord {
	var out []*domain.LocationRecord
	for _, r := range records {
		if r.Day == day && r.Located() {
			out = append(out, r)
		}
	}
	return out
}

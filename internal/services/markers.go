package services

import (
	"fmt"
	"math"
	"sync"

	"trip-map-service/internal/config"
	"trip-map-service/internal/domain"
	"trip-map-service/internal/ports"
)

// Marker colors keyed by entry category. Unknown categories get a
// distinct neutral color rather than failing.
var categoryColors = map[domain.Category]string{
	domain.CategoryLodging:    "#7b1fa2",
	domain.CategoryMeal:       "#ef6c00",
	domain.CategoryAttraction: "#1976d2",
	domain.CategoryTransport:  "#455a64",
	domain.CategoryActivity:   "#2e7d32",
	domain.CategoryUnknown:    "#9e9e9e",
}

// Angular offset applied to repeat visits of the same coordinate so
// overlapping markers stay individually clickable. Roughly 20 meters
// per revisit step at the equator.
const (
	revisitRadiusDeg = 0.00018
	revisitAngleStep = math.Pi / 4
)

// SequenceMarkerManager assigns the 1-based visiting order for a day's
// stops and renders the numbered markers, nudging repeat visits to the
// same coordinate apart. Markers are tracked per day so one day can be
// cleared without touching another's.
type SequenceMarkerManager struct {
	Surface ports.RenderSurface
	Tuning  config.Pipeline

	mu    sync.Mutex
	byDay map[int][]ports.Handle
}

func NewSequenceMarkerManager(surface ports.RenderSurface, tuning config.Pipeline) *SequenceMarkerManager {
	return &SequenceMarkerManager{
		Surface: surface,
		Tuning:  tuning,
		byDay:   make(map[int][]ports.Handle),
	}
}

// Assign numbers the records 1..n in visiting order and computes each
// record's revisit index. Revisits share a rounded coordinate key;
// offsetting changes rendering position only, never sequence numbers.
func (m *SequenceMarkerManager) Assign(records []*domain.LocationRecord) {
	visits := make(map[string]int)
	for i, r := range records {
		r.SequenceNumber = i + 1
		if !r.Located() {
			continue
		}
		key := r.Position.Key(m.precision())
		r.RevisitIndex = visits[key]
		visits[key]++
	}
}

// Render places one numbered marker per located record under the given
// run. The run context is checked immediately before each surface
// mutation; a cancelled run places nothing further.
func (m *SequenceMarkerManager) Render(rc *RunContext, day int, records []*domain.LocationRecord) error {
	for _, r := range records {
		if rc.Cancelled() {
			return ErrCancelled
		}
		if !r.Located() {
			continue
		}

		style := ports.MarkerStyle{Color: colorFor(r.Category), Category: r.Category}
		label := fmt.Sprintf("%d. %s", r.SequenceNumber, r.Name)
		h := m.Surface.PlaceMarker(displayPosition(r), label, style)

		rc.Track(h)
		m.mu.Lock()
		m.byDay[day] = append(m.byDay[day], h)
		m.mu.Unlock()
	}
	return nil
}

// Clear removes only the markers created for the given day. Days are
// toggled independently; another day's markers must survive.
func (m *SequenceMarkerManager) Clear(day int) {
	m.mu.Lock()
	handles := m.byDay[day]
	delete(m.byDay, day)
	m.mu.Unlock()

	if len(handles) > 0 {
		m.Surface.RemoveAll(handles)
	}
}

// ClearAll removes every marker the manager has placed.
func (m *SequenceMarkerManager) ClearAll() {
	m.mu.Lock()
	var handles []ports.Handle
	for day, hs := range m.byDay {
		handles = append(handles, hs...)
		delete(m.byDay, day)
	}
	m.mu.Unlock()

	if len(handles) > 0 {
		m.Surface.RemoveAll(handles)
	}
}

func (m *SequenceMarkerManager) precision() int {
	if m.Tuning.CoordinatePrecision > 0 {
		return m.Tuning.CoordinatePrecision
	}
	return 5
}

func colorFor(cat domain.Category) string {
	if c, ok := categoryColors[cat]; ok {
		return c
	}
	return categoryColors[domain.CategoryUnknown]
}

// displayPosition returns the true coordinate for a first visit and a
// small angular offset for revisits, with radius growing per visit and
// a fixed angle step between them.
func displayPosition(r *domain.LocationRecord) domain.Coordinates {
	pos := *r.Position
	k := r.RevisitIndex
	if k == 0 {
		return pos
	}

	angle := float64(k) * revisitAngleStep
	radius := float64(k) * revisitRadiusDeg
	return domain.Coordinates{
		Lat: pos.Lat + radius*math.Sin(angle),
		Lon: pos.Lon + radius*math.Cos(angle),
	}
}

package render

import (
	"strconv"
	"sync"

	"trip-map-service/internal/domain"
	"trip-map-service/internal/ports"
)

// Marker is one placed marker as the presentation layer sees it.
type Marker struct {
	Handle   ports.Handle       `json:"handle"`
	Position domain.Coordinates `json:"position"`
	Label    string             `json:"label"`
	Color    string             `json:"color"`
	Category domain.Category    `json:"category"`
}

// Route is one drawn route polyline.
type Route struct {
	Handle   ports.Handle         `json:"handle"`
	Day      int                  `json:"day"`
	Geometry domain.RouteGeometry `json:"geometry"`
	Color    string               `json:"color"`
	Dashed   bool                 `json:"dashed"`
}

// Viewport is the camera hint derived from PanTo / FitBounds calls.
type Viewport struct {
	Center *domain.Coordinates  `json:"center,omitempty"`
	Bounds []domain.Coordinates `json:"bounds,omitempty"`
}

// Snapshot is a consistent copy of everything currently drawn.
type Snapshot struct {
	Markers  []Marker `json:"markers"`
	Routes   []Route  `json:"routes"`
	Viewport Viewport `json:"viewport"`
}

// StateSurface is an in-memory rendering surface. The pipeline issues
// draw/remove commands against it and the HTTP layer serves its
// snapshot; an actual map canvas on the client mirrors this state.
type StateSurface struct {
	mu      sync.Mutex
	next    int
	markers map[ports.Handle]Marker
	routes  map[ports.Handle]Route
	order   []ports.Handle
	view    Viewport
}

func NewStateSurface() *StateSurface {
	return &StateSurface{
		markers: make(map[ports.Handle]Marker),
		routes:  make(map[ports.Handle]Route),
	}
}

func (s *StateSurface) PlaceMarker(pos domain.Coordinates, label string, style ports.MarkerStyle) ports.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := s.handle("m")
	s.markers[h] = Marker{
		Handle:   h,
		Position: pos,
		Label:    label,
		Color:    style.Color,
		Category: style.Category,
	}
	s.order = append(s.order, h)
	return h
}

func (s *StateSurface) DrawRoute(day int, geometry domain.RouteGeometry, style ports.RouteStyle) ports.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := s.handle("r")
	s.routes[h] = Route{
		Handle:   h,
		Day:      day,
		Geometry: geometry,
		Color:    style.Color,
		Dashed:   style.Dashed,
	}
	s.order = append(s.order, h)
	return h
}

// RemoveAll deletes the given visuals. Unknown handles are ignored, so
// removal stays idempotent when a run context and the marker manager
// both tear down the same marker.
func (s *StateSurface) RemoveAll(handles []ports.Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()

	drop := make(map[ports.Handle]struct{}, len(handles))
	for _, h := range handles {
		drop[h] = struct{}{}
		delete(s.markers, h)
		delete(s.routes, h)
	}

	kept := s.order[:0]
	for _, h := range s.order {
		if _, gone := drop[h]; !gone {
			kept = append(kept, h)
		}
	}
	s.order = kept
}

func (s *StateSurface) PanTo(pos domain.Coordinates) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := pos
	s.view.Center = &p
}

func (s *StateSurface) FitBounds(positions []domain.Coordinates) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bounds := make([]domain.Coordinates, len(positions))
	copy(bounds, positions)
	s.view.Bounds = bounds
}

// Snapshot copies the current state in draw order.
func (s *StateSurface) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Markers:  make([]Marker, 0, len(s.markers)),
		Routes:   make([]Route, 0, len(s.routes)),
		Viewport: s.view,
	}
	for _, h := range s.order {
		if m, ok := s.markers[h]; ok {
			snap.Markers = append(snap.Markers, m)
		}
		if r, ok := s.routes[h]; ok {
			snap.Routes = append(snap.Routes, r)
		}
	}
	return snap
}

func (s *StateSurface) handle(prefix string) ports.Handle {
	s.next++
	return ports.Handle(prefix + strconv.Itoa(s.next))
}

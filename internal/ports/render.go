package ports

import "trip-map-service/internal/domain"

// Handle identifies one visual created on the rendering surface.
type Handle string

// MarkerStyle carries the presentation hints for one marker.
type MarkerStyle struct {
	Color    string
	Category domain.Category
}

// RouteStyle carries the presentation hints for one drawn route.
type RouteStyle struct {
	Color  string
	Dashed bool // fallback polylines render dashed
}

// RenderSurface is the map canvas capability. The pipeline only issues
// draw and remove commands against it; rendering itself is out of
// scope. Calls are made exclusively from the currently active pipeline
// run, never from two runs at once.
type RenderSurface interface {
	PlaceMarker(pos domain.Coordinates, label string, style MarkerStyle) Handle
	DrawRoute(day int, geometry domain.RouteGeometry, style RouteStyle) Handle
	RemoveAll(handles []Handle)
	PanTo(pos domain.Coordinates)
	FitBounds(positions []domain.Coordinates)
}

package ports

import (
	"context"

	"trip-map-service/internal/domain"
)

// RouteRequest asks for a driving route through the given stops in the
// given order. The order reflects the itinerary's intended visiting
// sequence; providers must not reorder it.
type RouteRequest struct {
	Origin      domain.Coordinates
	Destination domain.Coordinates
	Waypoints   []domain.Coordinates
}

// Contract for retrieving drivable route geometry between ordered stops.
type DirectionsProvider interface {
	// Route returns the route geometry through origin, waypoints and
	// destination in order. An empty result is an error.
	Route(ctx context.Context, req RouteRequest) (domain.RouteGeometry, error)
}

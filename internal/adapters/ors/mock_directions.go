package ors

import (
	"context"
	"errors"
	"sync"

	"trip-map-service/internal/domain"
	"trip-map-service/internal/ports"
)

// MockDirections replays the requested stops as route geometry, or
// fails every call when Fail is set. It records the requests it saw so
// tests can assert on waypoint counts and ordering.
type MockDirections struct {
	Fail bool

	mu       sync.Mutex
	requests []ports.RouteRequest
}

func (d *MockDirections) Route(ctx context.Context, req ports.RouteRequest) (domain.RouteGeometry, error) {
	d.mu.Lock()
	d.requests = append(d.requests, req)
	d.mu.Unlock()

	if d.Fail {
		return domain.RouteGeometry{}, errors.New("mock directions failure")
	}

	points := make([]domain.Coordinates, 0, 2+len(req.Waypoints))
	points = append(points, req.Origin)
	points = append(points, req.Waypoints...)
	points = append(points, req.Destination)

	return domain.RouteGeometry{
		Points:          points,
		DistanceMeters:  1000 * (len(points) - 1),
		DurationSeconds: 60 * (len(points) - 1),
	}, nil
}

// Requests returns a copy of the recorded requests.
func (d *MockDirections) Requests() []ports.RouteRequest {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]ports.RouteRequest, len(d.requests))
	copy(out, d.requests)
	return out
}

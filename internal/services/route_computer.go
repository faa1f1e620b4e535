package services

import (
	"context"
	"fmt"
	"log"
	"math"

	"trip-map-service/internal/config"
	"trip-map-service/internal/domain"
	"trip-map-service/internal/ports"
)

// RouteComputer turns a day's ordered, coordinate-resolved stops into
// drawable route geometry. Computed routes are memoized in the route
// cache so re-rendering the same day never re-issues identical
// provider requests.
type RouteComputer struct {
	Provider ports.DirectionsProvider
	Cache    ports.RouteCache
	Tuning   config.Pipeline
}

// ComputeRoute requests a driving route through the stops in itinerary
// order. Waypoint order is never optimized away; it reflects the
// intended visiting sequence.
//
// Errors: ErrNoRoute when fewer than two stops are located,
// ErrRouteFailed when the provider errors or returns empty geometry.
// The caller degrades ErrRouteFailed to BuildFallback.
func (rcmp *RouteComputer) ComputeRoute(ctx context.Context, day int, orderedStops []domain.Coordinates) (domain.DayRoute, error) {
	key := domain.RouteCacheKey(day, orderedStops)

	if rcmp.Cache != nil {
		if cached, ok, err := rcmp.Cache.Get(ctx, key); err != nil {
			log.Printf("route cache read failed: %v", err)
		} else if ok {
			return cached, nil
		}
	}

	if len(orderedStops) < 2 {
		return domain.DayRoute{}, ErrNoRoute
	}

	stops := orderedStops
	if threshold := rcmp.Tuning.WaypointThreshold; threshold > 0 && len(stops) > threshold {
		stops = reduceToKeyPoints(stops)
	}

	req := ports.RouteRequest{
		Origin:      stops[0],
		Destination: stops[len(stops)-1],
		Waypoints:   stops[1 : len(stops)-1],
	}

	geometry, err := rcmp.Provider.Route(ctx, req)
	if err != nil {
		// A run cancelled mid-request is not a provider failure; it
		// must not degrade to a fallback, and it must leave no cache
		// entry behind for the successor to serve.
		if ctx.Err() != nil {
			return domain.DayRoute{}, ErrCancelled
		}
		return domain.DayRoute{}, fmt.Errorf("%w: %v", ErrRouteFailed, err)
	}
	if geometry.Empty() {
		return domain.DayRoute{}, fmt.Errorf("%w: provider returned empty geometry", ErrRouteFailed)
	}

	route := domain.DayRoute{Day: day, Source: domain.RouteSourceProvider, Geometry: geometry}
	rcmp.remember(ctx, key, route)
	return route, nil
}

// BuildFallback synthesizes a direct multi-segment polyline through the
// same ordered stops, so a day with at least two located stops is never
// left unvisualized. The fallback is cached under the same key; the
// day will not retry the provider until its stop signature changes.
func (rcmp *RouteComputer) BuildFallback(ctx context.Context, day int, orderedStops []domain.Coordinates) (domain.DayRoute, error) {
	if ctx.Err() != nil {
		return domain.DayRoute{}, ErrCancelled
	}
	if len(orderedStops) < 2 {
		return domain.DayRoute{}, ErrNoRoute
	}

	meters := 0.0
	for i := 1; i < len(orderedStops); i++ {
		meters += domain.HaversineMeters(orderedStops[i-1], orderedStops[i])
	}

	points := make([]domain.Coordinates, len(orderedStops))
	copy(points, orderedStops)

	route := domain.DayRoute{
		Day:    day,
		Source: domain.RouteSourceFallback,
		Geometry: domain.RouteGeometry{
			Points:         points,
			DistanceMeters: int(math.Round(meters)),
		},
	}
	rcmp.remember(ctx, domain.RouteCacheKey(day, orderedStops), route)
	return route, nil
}

func (rcmp *RouteComputer) remember(ctx context.Context, key string, route domain.DayRoute) {
	// A cancelled run writes nothing; entries are immutable, so a
	// stale write would block the provider retry forever.
	if rcmp.Cache == nil || ctx.Err() != nil {
		return
	}
	if err := rcmp.Cache.Put(ctx, key, route); err != nil {
		log.Printf("route cache write failed: %v", err)
	}
}

// reduceToKeyPoints shrinks a long day to three representative stops,
// first, middle and last, to stay under provider waypoint ceilings.
func reduceToKeyPoints(stops []domain.Coordinates) []domain.Coordinates {
	return []domain.Coordinates{
		stops[0],
		stops[len(stops)/2],
		stops[len(stops)-1],
	}
}

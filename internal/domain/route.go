package domain

import "fmt"

// RouteSource records how a day's route geometry was obtained.
type RouteSource string

const (
	// RouteSourceProvider marks geometry returned by the directions
	// capability.
	RouteSourceProvider RouteSource = "provider"
	// RouteSourceFallback marks a synthesized straight-line polyline
	// used when the provider failed.
	RouteSourceFallback RouteSource = "fallback"
)

// RouteGeometry is the drawable path for one day, a polyline of
// coordinates in travel order plus aggregate metrics. It is immutable
// once computed and safe to share between cache and render surface.
type RouteGeometry struct {
	Points          []Coordinates
	DistanceMeters  int
	DurationSeconds int
}

// Empty reports whether the geometry has nothing to draw.
func (g RouteGeometry) Empty() bool { return len(g.Points) < 2 }

// DayRoute couples a day's geometry with its provenance.
type DayRoute struct {
	Day      int
	Source   RouteSource
	Geometry RouteGeometry
}

// RouteCacheKey builds the order-sensitive cache key for a day's
// computed route. A changed stop order or coordinate always produces a
// new key, never an overwrite.
func RouteCacheKey(day int, stops []Coordinates) string {
	return fmt.Sprintf("%d|%s", day, Signature(stops))
}

package ports

import (
	"context"

	"trip-map-service/internal/domain"
)

// GeocodeCache is a persistent address -> coordinates cache consulted
// before external lookups. Implementations must treat keys as opaque
// normalized strings.
type GeocodeCache interface {
	// Fetch cached coordinates for the given queries.
	GetMany(ctx context.Context, queries []string) (map[string]domain.Coordinates, error)
	// Store query -> coordinate mappings in the cache.
	PutMany(ctx context.Context, results map[string]domain.Coordinates) error
}

// RouteCache memoizes a day's computed route keyed by
// domain.RouteCacheKey. Entries are immutable once inserted; a benign
// duplicate insert (same key, same value) must be tolerated.
type RouteCache interface {
	Get(ctx context.Context, key string) (domain.DayRoute, bool, error)
	Put(ctx context.Context, key string, route domain.DayRoute) error
}

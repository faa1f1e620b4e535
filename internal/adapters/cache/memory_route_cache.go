package cache

import (
	"context"
	"sync"

	"trip-map-service/internal/domain"
)

// MemoryRouteCache memoizes day routes for the lifetime of one map
// view. It is created when the view opens and dropped when it closes;
// it is never shared across unrelated views.
type MemoryRouteCache struct {
	mu     sync.RWMutex
	routes map[string]domain.DayRoute
}

func NewMemoryRouteCache() *MemoryRouteCache {
	return &MemoryRouteCache{routes: make(map[string]domain.DayRoute)}
}

func (c *MemoryRouteCache) Get(ctx context.Context, key string) (domain.DayRoute, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	route, ok := c.routes[key]
	return route, ok, nil
}

// Put inserts a route. Entries are immutable: the first insert for a
// key wins, so a benign duplicate insert under re-entrancy cannot
// replace an existing value.
func (c *MemoryRouteCache) Put(ctx context.Context, key string, route domain.DayRoute) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.routes[key]; !exists {
		c.routes[key] = route
	}
	return nil
}

package ors

import (
	"context"
	"fmt"
	"sync"

	"trip-map-service/internal/domain"
)

// MockEntry pairs a query with its canned coordinate.
type MockEntry struct {
	Query    string
	Lat, Lon float64
}

// MockGeocoder serves canned lookups for tests. Unknown queries fail,
// which doubles as a way to exercise the unplaced-record path.
type MockGeocoder struct {
	mu    sync.Mutex
	m     map[string]domain.Coordinates
	calls int
}

func NewMockGeocoder(entries []MockEntry) *MockGeocoder {
	m := make(map[string]domain.Coordinates, len(entries))
	for _, e := range entries {
		m[e.Query] = domain.Coordinates{Lat: e.Lat, Lon: e.Lon}
	}
	return &MockGeocoder{m: m}
}

func (g *MockGeocoder) Lookup(ctx context.Context, query string) (domain.Coordinates, error) {
	g.mu.Lock()
	g.calls++
	pos, ok := g.m[query]
	g.mu.Unlock()

	if ok {
		return pos, nil
	}
	return domain.Coordinates{}, fmt.Errorf("missing mock geocode for %q", query)
}

// Calls reports how many lookups were issued.
func (g *MockGeocoder) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

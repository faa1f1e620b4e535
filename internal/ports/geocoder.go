package ports

import (
	"context"

	"trip-map-service/internal/domain"
)

// Contract for resolving a place name or address to coordinates.
type Geocoder interface {
	// Lookup resolves a free-text query to a single best-match
	// coordinate. A miss is an error; no retry contract is assumed
	// beyond what the batcher imposes.
	Lookup(ctx context.Context, query string) (domain.Coordinates, error)
}

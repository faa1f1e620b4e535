package ors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"trip-map-service/internal/domain"
	"trip-map-service/internal/platform/obs"
)

// ErrNoResults is returned when the provider finds nothing for a query.
var ErrNoResults = errors.New("no geocode results")

type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// Lookup resolves one query to its single best-match coordinate using
// /geocode/search.
func (o *ORSClient) Lookup(ctx context.Context, query string) (_ domain.Coordinates, err error) {
	defer obs.Time(ctx, "ors.Lookup")(&err)

	norm := o.normalize(query)
	if norm == "" {
		return domain.Coordinates{}, errors.New("geocode lookup: query must be non-empty")
	}

	if err := o.limiter.Wait(ctx); err != nil {
		return domain.Coordinates{}, err
	}

	endpoint := o.baseURL + "/geocode/search"
	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := o.newRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("text", norm)
		q.Set("size", "1")
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("geocode lookup %q: %w", norm, err)
	}
	defer resp.Body.Close()

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Coordinates{}, fmt.Errorf("decode geocode response: %w", err)
	}

	if len(decoded.Features) == 0 {
		return domain.Coordinates{}, fmt.Errorf("%w for %q", ErrNoResults, norm)
	}

	coords := decoded.Features[0].Geometry.Coordinates
	if len(coords) != 2 {
		return domain.Coordinates{}, fmt.Errorf("invalid coordinate format for %q", norm)
	}

	pos := domain.Coordinates{Lat: coords[1], Lon: coords[0]}
	if !pos.Valid() {
		return domain.Coordinates{}, fmt.Errorf("invalid coordinate values for %q", norm)
	}
	return pos, nil
}

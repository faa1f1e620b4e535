package ors

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"

	"trip-map-service/internal/domain"
	"trip-map-service/internal/platform/obs"
	"trip-map-service/internal/ports"
)

type directionsRequest struct {
	Coordinates      [][]float64 `json:"coordinates"`
	ContinueStraight bool        `json:"continue_straight"`
}

type directionsResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties struct {
			Summary struct {
				Distance float64 `json:"distance"`
				Duration float64 `json:"duration"`
			} `json:"summary"`
		} `json:"properties"`
	} `json:"features"`
}

// Route requests a driving route through origin, waypoints and
// destination in the given order via /v2/directions/{profile}/geojson.
// The stop order is preserved as sent; ORS does not reorder waypoints
// on this endpoint.
func (o *ORSClient) Route(ctx context.Context, r ports.RouteRequest) (_ domain.RouteGeometry, err error) {
	defer obs.Time(ctx, "ors.Route")(&err)

	if err := o.limiter.Wait(ctx); err != nil {
		return domain.RouteGeometry{}, err
	}

	coordinates := make([][]float64, 0, 2+len(r.Waypoints))
	coordinates = append(coordinates, r.Origin.CoordsToList())
	for _, w := range r.Waypoints {
		coordinates = append(coordinates, w.CoordsToList())
	}
	coordinates = append(coordinates, r.Destination.CoordsToList())

	payload, err := json.Marshal(directionsRequest{
		Coordinates:      coordinates,
		ContinueStraight: true,
	})
	if err != nil {
		return domain.RouteGeometry{}, fmt.Errorf("marshal directions request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v2/directions/%s/geojson", o.baseURL, o.profile)
	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		return domain.RouteGeometry{}, fmt.Errorf("directions request failed: %w", err)
	}
	defer resp.Body.Close()

	var decoded directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.RouteGeometry{}, fmt.Errorf("decode directions response: %w", err)
	}

	if len(decoded.Features) == 0 {
		return domain.RouteGeometry{}, errors.New("directions returned no features")
	}

	feature := decoded.Features[0]
	points := make([]domain.Coordinates, 0, len(feature.Geometry.Coordinates))
	for _, c := range feature.Geometry.Coordinates {
		if len(c) != 2 {
			return domain.RouteGeometry{}, errors.New("directions returned invalid coordinate pair")
		}
		points = append(points, domain.Coordinates{Lat: c[1], Lon: c[0]})
	}

	// ORS returns float metrics; round to nearest integer for domain
	// consistency.
	return domain.RouteGeometry{
		Points:          points,
		DistanceMeters:  int(math.Round(feature.Properties.Summary.Distance)),
		DurationSeconds: int(math.Round(feature.Properties.Summary.Duration)),
	}, nil
}

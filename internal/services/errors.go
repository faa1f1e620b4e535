package services

import "errors"

var (
	// ErrCancelled marks work abandoned because a newer selection
	// superseded its run context. It is silently discarded upstream,
	// never surfaced as a failure.
	ErrCancelled = errors.New("pipeline run cancelled")

	// ErrNoRoute means a day had fewer than two located stops; there
	// is nothing to draw a path through.
	ErrNoRoute = errors.New("not enough located stops for a route")

	// ErrRouteFailed means the directions capability could not produce
	// a route; the caller degrades to the fallback polyline.
	ErrRouteFailed = errors.New("route computation failed")

	// ErrNothingToShow means the itinerary is missing days or a
	// destination; no pipeline run is attempted.
	ErrNothingToShow = errors.New("itinerary has nothing to show")
)

package services

import (
	"context"
	"log"
	"time"

	"trip-map-service/internal/config"
	"trip-map-service/internal/domain"
	"trip-map-service/internal/ports"
)

// GeocodeQueue is the ordered, append-only list of records pending
// coordinate resolution. Total is fixed at creation so fractional
// progress has a stable denominator; records leave strictly in FIFO
// order.
type GeocodeQueue struct {
	records []*domain.LocationRecord
	total   int
}

// NewGeocodeQueue collects the records still lacking coordinates.
func NewGeocodeQueue(records []*domain.LocationRecord) *GeocodeQueue {
	pending := make([]*domain.LocationRecord, 0, len(records))
	for _, r := range records {
		if !r.Located() {
			pending = append(pending, r)
		}
	}
	return &GeocodeQueue{records: pending, total: len(pending)}
}

// Total returns the queue size fixed at creation time.
func (q *GeocodeQueue) Total() int { return q.total }

// GeocodeBatcher resolves queued records against the geocoding
// capability in small concurrent batches, with an inter-batch delay to
// respect external rate limits. A persistent cache, when configured,
// is consulted before any external lookup.
type GeocodeBatcher struct {
	Geocoder ports.Geocoder
	Cache    ports.GeocodeCache // optional
	Events   ports.EventSink
	Tuning   config.Pipeline
}

type lookupResult struct {
	record *domain.LocationRecord
	query  string
	pos    domain.Coordinates
	err    error
}

// Resolve works through the queue, setting each record's position in
// place on success. A failed lookup leaves the record unlocated; it is
// excluded from routing but may still be listed unplaced. Progress is
// reported after every individual completed lookup.
//
// Cancellation is cooperative: when the run is cancelled mid-batch,
// in-flight results are discarded without being written into records
// and no further batches are issued.
func (b *GeocodeBatcher) Resolve(rc *RunContext, queue *GeocodeQueue, destinationHint string) (int, error) {
	if queue.total == 0 {
		return 0, nil
	}

	processed := 0
	resolved := 0

	report := func() {
		if b.Events != nil {
			b.Events.Progress(rc.Day, processed*100/queue.total)
		}
	}

	pending := queue.records

	// Cached hits count as completed lookups; they advance progress
	// without touching the external capability.
	if b.Cache != nil {
		hits := b.cachedPositions(rc.Context(), pending, destinationHint)
		misses := make([]*domain.LocationRecord, 0, len(pending))
		for _, r := range pending {
			pos, ok := hits[r.GeocodeQuery(destinationHint)]
			if !ok || !pos.Valid() {
				misses = append(misses, r)
				continue
			}
			p := pos
			r.Position = &p
			processed++
			resolved++
			report()
		}
		pending = misses
	}

	batchSize := b.Tuning.BatchSize
	if batchSize < 1 {
		batchSize = 1
	}

	for start := 0; start < len(pending); start += batchSize {
		if rc.Cancelled() {
			return resolved, ErrCancelled
		}

		if start > 0 {
			if err := b.waitBetweenBatches(rc.Context()); err != nil {
				return resolved, ErrCancelled
			}
		}

		end := start + batchSize
		if end > len(pending) {
			end = len(pending)
		}
		batch := pending[start:end]

		results := make(chan lookupResult, len(batch))
		for _, rec := range batch {
			go func(rec *domain.LocationRecord) {
				query := rec.GeocodeQuery(destinationHint)
				pos, err := b.Geocoder.Lookup(rc.Context(), query)
				results <- lookupResult{record: rec, query: query, pos: pos, err: err}
			}(rec)
		}

		fresh := make(map[string]domain.Coordinates, len(batch))
		cancelled := false
		for range batch {
			res := <-results

			// A run cancelled mid-batch suppresses every remaining
			// effect: records stay untouched and nothing is cached.
			if cancelled || rc.Cancelled() {
				cancelled = true
				continue
			}

			processed++
			if res.err != nil {
				log.Printf("geocode miss query=%q err=%v", res.query, res.err)
				report()
				continue
			}

			pos := res.pos
			res.record.Position = &pos
			fresh[res.query] = pos
			resolved++
			report()
		}

		if cancelled {
			return resolved, ErrCancelled
		}

		if b.Cache != nil && len(fresh) > 0 {
			if err := b.Cache.PutMany(rc.Context(), fresh); err != nil {
				log.Printf("geocode cache write failed: %v", err)
			}
		}
	}

	return resolved, nil
}

// cachedPositions fetches persisted coordinates for the records'
// queries. A broken cache degrades to external lookups only.
func (b *GeocodeBatcher) cachedPositions(
	ctx context.Context,
	records []*domain.LocationRecord,
	destinationHint string,
) map[string]domain.Coordinates {
	queries := make([]string, 0, len(records))
	for _, r := range records {
		queries = append(queries, r.GeocodeQuery(destinationHint))
	}

	hits, err := b.Cache.GetMany(ctx, queries)
	if err != nil {
		log.Printf("geocode cache read failed: %v", err)
		return nil
	}
	return hits
}

func (b *GeocodeBatcher) waitBetweenBatches(ctx context.Context) error {
	delay := b.Tuning.BatchDelay
	if delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

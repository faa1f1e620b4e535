package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"trip-map-service/internal/config"
	"trip-map-service/internal/domain"
)

type stubGeocoder struct {
	mu       sync.Mutex
	byQuery  map[string]domain.Coordinates
	calls    int
	onLookup func()
}

func (g *stubGeocoder) Lookup(ctx context.Context, query string) (domain.Coordinates, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()

	if g.onLookup != nil {
		g.onLookup()
	}
	pos, ok := g.byQuery[query]
	if !ok {
		return domain.Coordinates{}, errors.New("no results")
	}
	return pos, nil
}

func (g *stubGeocoder) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

type stubGeocodeCache struct {
	mu   sync.Mutex
	data map[string]domain.Coordinates
	puts int
}

func newStubGeocodeCache() *stubGeocodeCache {
	return &stubGeocodeCache{data: make(map[string]domain.Coordinates)}
}

func (c *stubGeocodeCache) GetMany(ctx context.Context, queries []string) (map[string]domain.Coordinates, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]domain.Coordinates)
	for _, q := range queries {
		if pos, ok := c.data[q]; ok {
			out[q] = pos
		}
	}
	return out, nil
}

func (c *stubGeocodeCache) PutMany(ctx context.Context, results map[string]domain.Coordinates) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.puts++
	for q, pos := range results {
		c.data[q] = pos
	}
	return nil
}

type eventLog struct {
	mu       sync.Mutex
	percents []int
	ready    []int
	toasts   []string
}

func (e *eventLog) Progress(day, percent int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.percents = append(e.percents, percent)
}

func (e *eventLog) Ready(day int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ready = append(e.ready, day)
}

func (e *eventLog) Toast(message string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.toasts = append(e.toasts, message)
}

func (e *eventLog) Percents() []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]int, len(e.percents))
	copy(out, e.percents)
	return out
}

func (e *eventLog) Toasts() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.toasts))
	copy(out, e.toasts)
	return out
}

func testTuning() config.Pipeline {
	tuning := config.DefaultPipeline()
	tuning.BatchDelay = 0
	return tuning
}

func pendingRecords(names ...string) []*domain.LocationRecord {
	out := make([]*domain.LocationRecord, 0, len(names))
	for _, n := range names {
		out = append(out, &domain.LocationRecord{Name: n, Day: 1})
	}
	return out
}

func TestResolveReportsProgressPerLookup(t *testing.T) {
	geocoder := &stubGeocoder{byQuery: map[string]domain.Coordinates{
		"A, Kyoto": {Lat: 35.0, Lon: 135.0},
		"B, Kyoto": {Lat: 35.1, Lon: 135.1},
		"C, Kyoto": {Lat: 35.2, Lon: 135.2},
	}}
	events := &eventLog{}

	tuning := testTuning()
	tuning.BatchSize = 2
	b := &GeocodeBatcher{Geocoder: geocoder, Events: events, Tuning: tuning}

	records := pendingRecords("A", "B", "C")
	rc := newRunContext(context.Background(), 1)
	defer rc.cancel()

	resolved, err := b.Resolve(rc, NewGeocodeQueue(records), "Kyoto")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved != 3 {
		t.Fatalf("resolved = %d, want 3", resolved)
	}

	for _, r := range records {
		if !r.Located() {
			t.Errorf("record %q left unlocated", r.Name)
		}
	}

	want := []int{33, 66, 100}
	got := events.Percents()
	if len(got) != len(want) {
		t.Fatalf("progress reports = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("progress[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestResolveConsultsCacheBeforeGeocoder(t *testing.T) {
	cache := newStubGeocodeCache()
	cache.data["A, Kyoto"] = domain.Coordinates{Lat: 35.0, Lon: 135.0}

	geocoder := &stubGeocoder{byQuery: map[string]domain.Coordinates{
		"B, Kyoto": {Lat: 35.1, Lon: 135.1},
	}}

	b := &GeocodeBatcher{Geocoder: geocoder, Cache: cache, Events: &eventLog{}, Tuning: testTuning()}

	records := pendingRecords("A", "B")
	rc := newRunContext(context.Background(), 1)
	defer rc.cancel()

	resolved, err := b.Resolve(rc, NewGeocodeQueue(records), "Kyoto")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved != 2 {
		t.Fatalf("resolved = %d, want 2", resolved)
	}
	if geocoder.Calls() != 1 {
		t.Errorf("geocoder calls = %d, want 1 (cache hit must not reach geocoder)", geocoder.Calls())
	}

	if _, ok := cache.data["B, Kyoto"]; !ok {
		t.Error("fresh result was not written back to the cache")
	}
	if cache.puts != 1 {
		t.Errorf("cache puts = %d, want 1", cache.puts)
	}
}

func TestResolveCancelledMidBatchDiscardsResults(t *testing.T) {
	rc := newRunContext(context.Background(), 1)

	cache := newStubGeocodeCache()
	geocoder := &stubGeocoder{
		byQuery: map[string]domain.Coordinates{
			"A, Kyoto": {Lat: 35.0, Lon: 135.0},
			"B, Kyoto": {Lat: 35.1, Lon: 135.1},
		},
		onLookup: rc.cancel,
	}

	b := &GeocodeBatcher{Geocoder: geocoder, Cache: cache, Events: &eventLog{}, Tuning: testTuning()}

	records := pendingRecords("A", "B")
	resolved, err := b.Resolve(rc, NewGeocodeQueue(records), "Kyoto")
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("err = %v, want ErrCancelled", err)
	}
	if resolved != 0 {
		t.Errorf("resolved = %d, want 0", resolved)
	}

	for _, r := range records {
		if r.Located() {
			t.Errorf("record %q mutated after cancellation", r.Name)
		}
	}
	if cache.puts != 0 {
		t.Errorf("cache puts = %d, want 0 after cancellation", cache.puts)
	}
}

func TestResolveFailedLookupLeavesRecordUnlocated(t *testing.T) {
	geocoder := &stubGeocoder{byQuery: map[string]domain.Coordinates{
		"B, Kyoto": {Lat: 35.1, Lon: 135.1},
	}}
	events := &eventLog{}

	b := &GeocodeBatcher{Geocoder: geocoder, Events: events, Tuning: testTuning()}

	records := pendingRecords("A", "B")
	rc := newRunContext(context.Background(), 1)
	defer rc.cancel()

	resolved, err := b.Resolve(rc, NewGeocodeQueue(records), "Kyoto")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved != 1 {
		t.Fatalf("resolved = %d, want 1", resolved)
	}

	if records[0].Located() {
		t.Error("failed lookup should leave record unlocated")
	}
	if !records[1].Located() {
		t.Error("successful lookup should locate record")
	}

	got := events.Percents()
	if len(got) == 0 || got[len(got)-1] != 100 {
		t.Errorf("progress must reach 100 despite failures, got %v", got)
	}
}

func TestResolveSkipsAlreadyLocatedRecords(t *testing.T) {
	geocoder := &stubGeocoder{}
	b := &GeocodeBatcher{Geocoder: geocoder, Events: &eventLog{}, Tuning: testTuning()}

	pos := domain.Coordinates{Lat: 35.0, Lon: 135.0}
	records := []*domain.LocationRecord{{Name: "A", Day: 1, Position: &pos}}

	rc := newRunContext(context.Background(), 1)
	defer rc.cancel()

	resolved, err := b.Resolve(rc, NewGeocodeQueue(records), "Kyoto")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved != 0 {
		t.Errorf("resolved = %d, want 0", resolved)
	}
	if geocoder.Calls() != 0 {
		t.Errorf("geocoder calls = %d, want 0", geocoder.Calls())
	}
}

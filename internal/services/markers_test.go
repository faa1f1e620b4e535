package services

import (
	"context"
	"testing"

	"trip-map-service/internal/adapters/render"
	"trip-map-service/internal/domain"
)

func located(name string, day int, lat, lon float64, cat domain.Category) *domain.LocationRecord {
	return &domain.LocationRecord{
		Name:     name,
		Day:      day,
		Category: cat,
		Position: &domain.Coordinates{Lat: lat, Lon: lon},
	}
}

func TestAssignSequenceAndRevisits(t *testing.T) {
	m := NewSequenceMarkerManager(render.NewStateSurface(), testTuning())

	records := []*domain.LocationRecord{
		located("Hotel", 1, 35.0, 135.0, domain.CategoryLodging),
		{Name: "Unplaced Cafe", Day: 1, Category: domain.CategoryMeal},
		located("Hotel Again", 1, 35.0, 135.0, domain.CategoryLodging),
	}
	m.Assign(records)

	for i, r := range records {
		if r.SequenceNumber != i+1 {
			t.Errorf("records[%d].SequenceNumber = %d, want %d", i, r.SequenceNumber, i+1)
		}
	}
	if records[0].RevisitIndex != 0 {
		t.Errorf("first visit RevisitIndex = %d, want 0", records[0].RevisitIndex)
	}
	if records[2].RevisitIndex != 1 {
		t.Errorf("second visit RevisitIndex = %d, want 1", records[2].RevisitIndex)
	}
}

func TestRenderPlacesNumberedMarkers(t *testing.T) {
	surface := render.NewStateSurface()
	m := NewSequenceMarkerManager(surface, testTuning())

	records := []*domain.LocationRecord{
		located("Shrine", 1, 35.0, 135.0, domain.CategoryAttraction),
		{Name: "Unplaced Cafe", Day: 1, Category: domain.CategoryMeal},
		located("Shrine Return", 1, 35.0, 135.0, domain.CategoryAttraction),
	}
	m.Assign(records)

	rc := newRunContext(context.Background(), 1)
	defer rc.cancel()
	if err := m.Render(rc, 1, records); err != nil {
		t.Fatalf("Render: %v", err)
	}

	snap := surface.Snapshot()
	if len(snap.Markers) != 2 {
		t.Fatalf("markers = %d, want 2 (unlocated records place nothing)", len(snap.Markers))
	}
	if snap.Markers[0].Label != "1. Shrine" {
		t.Errorf("label = %q, want %q", snap.Markers[0].Label, "1. Shrine")
	}
	if snap.Markers[1].Label != "3. Shrine Return" {
		t.Errorf("label = %q, want %q", snap.Markers[1].Label, "3. Shrine Return")
	}

	// The revisit is nudged off the shared coordinate so both markers
	// stay clickable.
	if snap.Markers[0].Position == snap.Markers[1].Position {
		t.Error("revisit marker rendered on top of the original")
	}
}

func TestRenderStopsWhenCancelled(t *testing.T) {
	surface := render.NewStateSurface()
	m := NewSequenceMarkerManager(surface, testTuning())

	records := []*domain.LocationRecord{located("Shrine", 1, 35.0, 135.0, domain.CategoryAttraction)}
	m.Assign(records)

	rc := newRunContext(context.Background(), 1)
	rc.cancel()
	if err := m.Render(rc, 1, records); err != ErrCancelled {
		t.Fatalf("err = %v, want ErrCancelled", err)
	}
	if snap := surface.Snapshot(); len(snap.Markers) != 0 {
		t.Errorf("cancelled render placed %d markers", len(snap.Markers))
	}
}

func TestClearRemovesOnlyOneDay(t *testing.T) {
	surface := render.NewStateSurface()
	m := NewSequenceMarkerManager(surface, testTuning())

	day1 := []*domain.LocationRecord{
		located("Shrine", 1, 35.0, 135.0, domain.CategoryAttraction),
		located("Market", 1, 35.1, 135.1, domain.CategoryMeal),
	}
	day2 := []*domain.LocationRecord{
		located("Castle", 2, 35.2, 135.2, domain.CategoryAttraction),
	}
	m.Assign(day1)
	m.Assign(day2)

	rc := newRunContext(context.Background(), DayAll)
	defer rc.cancel()
	if err := m.Render(rc, 1, day1); err != nil {
		t.Fatalf("Render day 1: %v", err)
	}
	if err := m.Render(rc, 2, day2); err != nil {
		t.Fatalf("Render day 2: %v", err)
	}

	m.Clear(1)

	snap := surface.Snapshot()
	if len(snap.Markers) != 1 {
		t.Fatalf("markers after Clear(1) = %d, want 1", len(snap.Markers))
	}
	if snap.Markers[0].Label != "1. Castle" {
		t.Errorf("surviving marker = %q, want day 2's", snap.Markers[0].Label)
	}
}

package services

import (
	"sort"
	"strconv"
	"strings"

	"trip-map-service/internal/domain"
)

// Sentinel location values the generation step emits for entries with
// no visitable place. Such entries are dropped during extraction.
var notApplicable = map[string]struct{}{
	"n/a":            {},
	"na":             {},
	"none":           {},
	"not applicable": {},
}

// ExtractLocations walks the itinerary's per-day structure and
// produces the flat, normalized list of location records every
// downstream component consumes. It is a pure transform: the itinerary
// is never mutated and no I/O happens here.
//
// Output ordering: records are grouped by day in itinerary order and
// time-sorted within a day (minutes since midnight; records without a
// time sort last, otherwise the original order is kept).
func ExtractLocations(it *domain.Itinerary) []*domain.LocationRecord {
	if it == nil {
		return nil
	}

	var out []*domain.LocationRecord
	for _, day := range it.Days {
		var records []*domain.LocationRecord

		collect := func(entries []domain.ItineraryEntry, cat domain.Category) {
			for _, e := range entries {
				if rec := normalizeEntry(e, day.Day, cat); rec != nil {
					records = append(records, rec)
				}
			}
		}

		collect(day.Lodging, domain.CategoryLodging)
		collect(day.Meals, domain.CategoryMeal)
		collect(day.Attractions, domain.CategoryAttraction)
		collect(day.Activities, domain.CategoryActivity)

		sortDayRecords(records)
		out = append(out, records...)
	}

	return out
}

// normalizeEntry converts one loose itinerary entry into the strict
// LocationRecord shape, or nil when the entry names nothing visitable.
func normalizeEntry(e domain.ItineraryEntry, day int, cat domain.Category) *domain.LocationRecord {
	name := strings.TrimSpace(e.Name)
	if name == "" {
		name = strings.TrimSpace(e.Title)
	}
	if name == "" {
		return nil
	}
	if _, skip := notApplicable[strings.ToLower(name)]; skip {
		return nil
	}

	if day < 1 {
		day = domain.DayUnscheduled
	}

	rec := &domain.LocationRecord{
		Name:           name,
		Day:            day,
		Category:       cat,
		RawAddressHint: strings.TrimSpace(e.LocationHint),
	}

	if _, ok := parseClock(e.Time); ok {
		rec.Time = e.Time
	}

	// A position is adopted only when both components are present and
	// finite; a lone latitude or longitude is treated as absent.
	if e.Lat != nil && e.Lon != nil {
		pos := domain.Coordinates{Lat: *e.Lat, Lon: *e.Lon}
		if pos.Valid() {
			rec.Position = &pos
		}
	}

	return rec
}

// sortDayRecords orders one day's records by time ascending with
// missing-time records last. The sort is stable so equal times keep
// their itinerary order.
func sortDayRecords(records []*domain.LocationRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		mi, iok := parseClock(records[i].Time)
		mj, jok := parseClock(records[j].Time)
		if iok != jok {
			return iok
		}
		if !iok {
			return false
		}
		return mi < mj
	})
}

// parseClock parses "HH:MM" into minutes since midnight.
func parseClock(s string) (int, bool) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, false
	}

	hours, err := strconv.Atoi(h)
	if err != nil || hours < 0 || hours > 23 {
		return 0, false
	}
	minutes, err := strconv.Atoi(m)
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, false
	}

	return hours*60 + minutes, true
}

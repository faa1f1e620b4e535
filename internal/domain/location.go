package domain

// Category classifies what kind of itinerary entry a location came from.
// Marker styling is keyed by this value.
type Category string

const (
	CategoryLodging    Category = "lodging"
	CategoryMeal       Category = "meal"
	CategoryAttraction Category = "attraction"
	CategoryTransport  Category = "transport"
	CategoryActivity   Category = "activity"
	CategoryUnknown    Category = "unknown"
)

// DayUnscheduled marks records whose itinerary entry carried no usable
// day. They never participate in per-day route computation but may
// still be listed as unplaced.
const DayUnscheduled = 0

// LocationRecord is the normalized representation of one visitable
// itinerary stop. LocationExtractor produces these; every downstream
// component only ever sees this shape.
//
// Invariants: Name is non-empty; Position is either nil or fully
// resolved (both coordinates finite).
type LocationRecord struct {
	Name           string
	Day            int
	Time           string // "HH:MM", empty when the entry carried no time
	Category       Category
	Position       *Coordinates
	RawAddressHint string

	// Assigned only after per-day ordering.
	SequenceNumber int
	// Count of prior visits to the same rounded coordinate within the
	// day. Zero for the first visit; drives marker offset rendering.
	RevisitIndex int
}

// Located reports whether the record carries resolved coordinates.
func (r *LocationRecord) Located() bool {
	return r.Position != nil && r.Position.Valid()
}

// GeocodeQuery builds the lookup text for an unresolved record,
// combining the entry's own hint with the trip-wide destination so
// generically named places ("Central Market") disambiguate.
func (r *LocationRecord) GeocodeQuery(destinationHint string) string {
	hint := r.RawAddressHint
	if hint == "" {
		hint = r.Name
	}
	if destinationHint == "" {
		return hint
	}
	return hint + ", " + destinationHint
}

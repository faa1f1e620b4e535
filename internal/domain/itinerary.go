package domain

// Raw itinerary input as produced by the generation step. Shapes here
// are deliberately loose (optional coordinates, optional times, free
// text hints); LocationExtractor normalizes them into LocationRecord
// before anything else runs.

// ItineraryEntry is one activity, meal, lodging or attraction line
// within a day.
type ItineraryEntry struct {
	Name         string   `json:"name"`
	Title        string   `json:"title,omitempty"`
	Time         string   `json:"time,omitempty"` // "HH:MM"
	Lat          *float64 `json:"lat,omitempty"`
	Lon          *float64 `json:"lon,omitempty"`
	LocationHint string   `json:"location_hint,omitempty"`
}

// ItineraryDay groups the entries planned for one day of the trip.
type ItineraryDay struct {
	Day         int              `json:"day"`
	Activities  []ItineraryEntry `json:"activities,omitempty"`
	Meals       []ItineraryEntry `json:"meals,omitempty"`
	Lodging     []ItineraryEntry `json:"lodging,omitempty"`
	Attractions []ItineraryEntry `json:"attractions,omitempty"`
}

// Itinerary is the complete server-provided trip plan.
type Itinerary struct {
	Destination string         `json:"destination"`
	Days        []ItineraryDay `json:"days"`
}

// Renderable reports whether the itinerary can drive a map at all.
// A missing destination or an empty day list is surfaced to the
// presentation layer as "nothing to show"; no pipeline run is
// attempted.
func (it *Itinerary) Renderable() bool {
	return it != nil && it.Destination != "" && len(it.Days) > 0
}

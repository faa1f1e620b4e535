package dto

import (
	"encoding/json"
	"fmt"

	"trip-map-service/internal/domain"
)

// SubmitTripRequest carries the generated itinerary to render. The
// payload reuses the domain shapes; extraction tolerates partial
// coordinates and placeholder names.
type SubmitTripRequest struct {
	Itinerary domain.Itinerary `json:"itinerary"`
}

// TripCreatedResponse identifies a new map session.
type TripCreatedResponse struct {
	ID   string `json:"id"`
	Days int    `json:"days"`
}

// SelectDayRequest picks the day to render. Day 0 means every
// scheduled day.
type SelectDayRequest struct {
	Day int `json:"day"`
}

// UnmarshalJSON accepts `{"day": N}` or `{"day": "all"}`.
func (r *SelectDayRequest) UnmarshalJSON(data []byte) error {
	var raw struct {
		Day json.RawMessage `json:"day"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw.Day) == 0 {
		r.Day = 0
		return nil
	}

	var s string
	if err := json.Unmarshal(raw.Day, &s); err == nil {
		if s != "all" {
			return fmt.Errorf("invalid day %q", s)
		}
		r.Day = 0
		return nil
	}
	return json.Unmarshal(raw.Day, &r.Day)
}

// TripStatusResponse is the poll view of a session: controller phase,
// latest pipeline events, and locations that never resolved.
type TripStatusResponse struct {
	Phase    string       `json:"phase"`
	Day      int          `json:"day"`
	Unplaced []string     `json:"unplaced,omitempty"`
	Progress map[int]int  `json:"progress"`
	Ready    map[int]bool `json:"ready"`
	Toasts   []string     `json:"toasts"`
}

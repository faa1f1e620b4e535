package domain

import (
	"fmt"
	"math"
	"strings"
)

// Immutable geographic coordinates (latitude, longitude).
type Coordinates struct {
	Lat float64
	Lon float64
}

// Valid reports whether both components are finite numbers inside
// geographic range. A position is either fully present or fully
// absent; partial coordinates never reach downstream components.
func (c Coordinates) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsInf(c.Lat, 0) || math.IsNaN(c.Lon) || math.IsInf(c.Lon, 0) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// Return coordinates as [lon, lat] for external API compatibility.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lon, c.Lat} }

// Key returns the coordinate rounded to the given number of decimal
// places as a stable map key. Two stops at "the same place" must
// collide here, so revisit detection uses this instead of raw floats.
func (c Coordinates) Key(precision int) string {
	return fmt.Sprintf("%.*f,%.*f", precision, c.Lat, precision, c.Lon)
}

// Signature concatenates stop coordinates in visiting order into an
// order-sensitive key fragment. Swapping two stops yields a different
// signature.
func Signature(stops []Coordinates) string {
	parts := make([]string, 0, len(stops))
	for _, c := range stops {
		parts = append(parts, fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lon))
	}
	return strings.Join(parts, "|")
}

// HaversineMeters computes the great-circle distance between two points.
func HaversineMeters(a, b Coordinates) float64 {
	const earthRadiusM = 6371000

	la1 := a.Lat * math.Pi / 180
	la2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(la1)*math.Cos(la2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusM * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

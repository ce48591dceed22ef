// Package geo computes great-circle distances between coordinates.
package geo

import (
	"math"
	"sort"

	"pinledger/internal/core"
)

// EarthRadiusKm is the mean Earth radius used by Distance.
const EarthRadiusKm = 6371.0

// Match is a place that lies within a search radius.
type Match struct {
	Place    core.PointOfInterest
	Distance float64 // meters
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// Distance returns the haversine distance between a and b in meters.
func Distance(a, b core.Coordinates) float64 {
	dLat := toRad(b.Latitude - a.Latitude)
	dLon := toRad(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Latitude))*math.Cos(toRad(b.Latitude))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusKm * c * 1000
}

// Within returns the places strictly closer than radius meters to from, in
// the order they were given.
func Within(from core.Coordinates, places []core.PointOfInterest, radius float64) []Match {
	var out []Match
	for _, p := range places {
		d := Distance(from, p.Coordinates)
		if d < radius {
			out = append(out, Match{Place: p, Distance: d})
		}
	}
	return out
}

// Nearest sorts places by distance from the given point.
func Nearest(from core.Coordinates, places []core.PointOfInterest) []Match {
	out := make([]Match, 0, len(places))
	for _, p := range places {
		out = append(out, Match{Place: p, Distance: Distance(from, p.Coordinates)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	return out
}

package geo

import (
	"fmt"
	"math"
)

// EarthRadius is the mean earth radius in meters used for great-circle distances.
const EarthRadius = 6371000.0

// Point is a WGS84 coordinate in degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// String renders the point as "lat,lng", the form accepted by most map APIs.
func (p Point) String() string {
	return fmt.Sprintf("%f,%f", p.Lat, p.Lng)
}

// Distance returns the haversine distance between a and b in meters.
func Distance(a, b Point) float64 {
	phi1, phi2 := a.Lat*math.Pi/180, b.Lat*math.Pi/180
	dPhi, dLambda := (b.Lat-a.Lat)*math.Pi/180, (b.Lng-a.Lng)*math.Pi/180
	h := math.Sin(dPhi/2)*math.Sin(dPhi/2) + math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return 2 * EarthRadius * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Bounds is an axis-aligned box in degrees.
type Bounds struct {
	North float64 `json:"north"`
	East  float64 `json:"east"`
	South float64 `json:"south"`
	West  float64 `json:"west"`
}

// BoundsOf returns the smallest box that contains all points. ok is false for an empty slice.
func BoundsOf(points ...Point) (b Bounds, ok bool) {
	if len(points) == 0 {
		return Bounds{}, false
	}
	b = Bounds{North: points[0].Lat, South: points[0].Lat, East: points[0].Lng, West: points[0].Lng}
	for _, p := range points[1:] {
		b.North = math.Max(b.North, p.Lat)
		b.South = math.Min(b.South, p.Lat)
		b.East = math.Max(b.East, p.Lng)
		b.West = math.Min(b.West, p.Lng)
	}
	return b, true
}

// FormatDistance renders a distance for a short user message: meters below 1 km, kilometers above.
func FormatDistance(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("Distance: %.0f m", meters)
	}
	return fmt.Sprintf("Distance: %.2f km", meters/1000)
}

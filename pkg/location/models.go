package location

import (
	"time"

	"github.com/benmeehan/location-agent/pkg/geo"
)

// Location is a single position observation. Values are never modified after
// the provider hands them out.
type Location struct {
	Latitude  float64   // degrees
	Longitude float64   // degrees
	Accuracy  float64   // meters
	Timestamp time.Time // when the fix was taken
}

// Point returns the coordinate part of the observation.
func (l Location) Point() geo.Point {
	return geo.Point{Lat: l.Latitude, Lng: l.Longitude}
}

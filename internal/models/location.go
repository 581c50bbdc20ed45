package models

import (
	"time"

	"github.com/benmeehan/location-agent/pkg/geo"
)

// Location represents a geographical location with associated metadata
type Location struct {
	DeviceID  string    `json:"device_id"`
	Timestamp time.Time `json:"timestamp"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Accuracy  float64   `json:"accuracy"`
}

// SearchRequest asks the map screen to geocode a free-text query.
type SearchRequest struct {
	Query string `json:"query"`
}

// PressRequest is a long press on the map at a coordinate.
type PressRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Point returns the pressed coordinate.
func (p PressRequest) Point() geo.Point {
	return geo.Point{Lat: p.Lat, Lng: p.Lng}
}

// LightReading is an ambient light sensor sample in lux.
type LightReading struct {
	Lux float64 `json:"lux"`
}

package mapview

import (
	"github.com/benmeehan/location-agent/internal/geocoding"
	"github.com/benmeehan/location-agent/internal/routing"
	"github.com/benmeehan/location-agent/pkg/geo"
	"github.com/benmeehan/location-agent/pkg/location"
)

// event is anything processed by the screen's event loop.
type event interface{}

type locationEvent struct {
	loc     location.Location
	initial bool
}

type permissionDeniedEvent struct{}

type searchEvent struct {
	query string
}

type pressEvent struct {
	point geo.Point
}

type lightEvent struct {
	lux float64
}

type geocodeResult struct {
	requestID string
	query     string
	place     geocoding.Place
	err       error
}

type reverseResult struct {
	requestID string
	point     geo.Point
	title     string
}

type routeResult struct {
	requestID string
	route     routing.Route
	err       error
}

// Package routing computes driving routes between two coordinates.
package routing

import (
	"context"
	"time"

	"github.com/benmeehan/location-agent/pkg/geo"
	"googlemaps.github.io/maps"
)

// Status tells whether the route came from the routing engine or is a fallback.
type Status string

const (
	// StatusOK is a route computed by the routing engine.
	StatusOK Status = "ok"
	// StatusDegraded is a straight line between the endpoints, used when the
	// engine found no road connection.
	StatusDegraded Status = "degraded"
)

// Route is a path between two points.
type Route struct {
	Path      []geo.Point
	Bounds    geo.Bounds
	DistanceM float64
	Duration  time.Duration
	Status    Status
}

// Router computes routes.
type Router interface {
	Route(ctx context.Context, from, to geo.Point) (Route, error)
}

// straightLine is the degraded route between from and to.
func straightLine(from, to geo.Point) Route {
	b, _ := geo.BoundsOf(from, to)
	return Route{
		Path:      []geo.Point{from, to},
		Bounds:    b,
		DistanceM: geo.Distance(from, to),
		Status:    StatusDegraded,
	}
}

// decodePath decodes an encoded polyline (precision 5), the format shared by
// Google Directions and OSRM.
func decodePath(encoded string) ([]geo.Point, error) {
	latLngs, err := maps.DecodePolyline(encoded)
	if err != nil {
		return nil, err
	}
	path := make([]geo.Point, 0, len(latLngs))
	for _, ll := range latLngs {
		path = append(path, geo.Point{Lat: ll.Lat, Lng: ll.Lng})
	}
	return path, nil
}

package routing

import (
	"context"
	"fmt"
	"strings"

	"github.com/benmeehan/location-agent/pkg/geo"
	"googlemaps.github.io/maps"
)

// directionsClient is the part of the maps client used here.
type directionsClient interface {
	Directions(ctx context.Context, r *maps.DirectionsRequest) ([]maps.Route, []maps.GeocodedWaypoint, error)
}

// GoogleRouter uses the Google Directions API.
type GoogleRouter struct {
	client directionsClient
	mode   maps.Mode
}

// NewGoogleRouter creates a router for the given travel mode ("driving", "walking", ...).
func NewGoogleRouter(apiKey, mode string) (*GoogleRouter, error) {
	c, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return newGoogleRouter(c, mode), nil
}

func newGoogleRouter(client directionsClient, mode string) *GoogleRouter {
	if mode == "" {
		mode = string(maps.TravelModeDriving)
	}
	return &GoogleRouter{client: client, mode: maps.Mode(mode)}
}

// Route returns the first route Google proposes.
func (g *GoogleRouter) Route(ctx context.Context, from, to geo.Point) (Route, error) {
	routes, _, err := g.client.Directions(ctx, &maps.DirectionsRequest{
		Origin:      from.String(),
		Destination: to.String(),
		Mode:        g.mode,
	})
	if err != nil {
		if strings.Contains(err.Error(), "ZERO_RESULTS") {
			return straightLine(from, to), nil
		}
		return Route{}, err
	}
	if len(routes) == 0 {
		return straightLine(from, to), nil
	}

	r := routes[0]
	path, err := decodePath(r.OverviewPolyline.Points)
	if err != nil {
		return Route{}, fmt.Errorf("failed to decode route polyline: %w", err)
	}

	route := Route{Path: path, Status: StatusOK}
	for _, leg := range r.Legs {
		route.DistanceM += float64(leg.Distance.Meters)
		route.Duration += leg.Duration
	}

	if r.Bounds.NorthEast != (maps.LatLng{}) || r.Bounds.SouthWest != (maps.LatLng{}) {
		route.Bounds = geo.Bounds{
			North: r.Bounds.NorthEast.Lat,
			East:  r.Bounds.NorthEast.Lng,
			South: r.Bounds.SouthWest.Lat,
			West:  r.Bounds.SouthWest.Lng,
		}
	} else {
		points := make([]geo.Point, 0, len(path)+2)
		points = append(points, from, to)
		route.Bounds, _ = geo.BoundsOf(append(points, path...)...)
	}
	return route, nil
}

// Package geocoding maps free-text queries to coordinates and back.
package geocoding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/benmeehan/location-agent/pkg/geo"
	"googlemaps.github.io/maps"
)

// ErrNotFound is returned when the service has no result for the request.
var ErrNotFound = errors.New("address not found")

// Place is a geocoding result.
type Place struct {
	Point   geo.Point
	Address string
}

// Geocoder resolves addresses and coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (Place, error)
	ReverseGeocode(ctx context.Context, p geo.Point) (Place, error)
}

// mapsGeocoder is the part of the maps client used here.
type mapsGeocoder interface {
	Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
	ReverseGeocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

// GoogleGeocoder uses the Google Geocoding API.
type GoogleGeocoder struct {
	client   mapsGeocoder
	language string
	region   string
}

// NewGoogleGeocoder creates a geocoder. language and region may be empty.
func NewGoogleGeocoder(apiKey, language, region string) (*GoogleGeocoder, error) {
	c, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return newGoogleGeocoder(c, language, region), nil
}

func newGoogleGeocoder(client mapsGeocoder, language, region string) *GoogleGeocoder {
	return &GoogleGeocoder{client: client, language: language, region: region}
}

// Geocode returns the best match for query.
func (g *GoogleGeocoder) Geocode(ctx context.Context, query string) (Place, error) {
	results, err := g.client.Geocode(ctx, &maps.GeocodingRequest{
		Address:  query,
		Language: g.language,
		Region:   g.region,
	})
	return firstPlace(results, err)
}

// ReverseGeocode returns the address closest to p.
func (g *GoogleGeocoder) ReverseGeocode(ctx context.Context, p geo.Point) (Place, error) {
	results, err := g.client.ReverseGeocode(ctx, &maps.GeocodingRequest{
		LatLng:   &maps.LatLng{Lat: p.Lat, Lng: p.Lng},
		Language: g.language,
	})
	return firstPlace(results, err)
}

func firstPlace(results []maps.GeocodingResult, err error) (Place, error) {
	if err != nil {
		if strings.Contains(err.Error(), "ZERO_RESULTS") {
			return Place{}, ErrNotFound
		}
		return Place{}, err
	}
	if len(results) == 0 {
		return Place{}, ErrNotFound
	}

	r := results[0]
	return Place{
		Point:   geo.Point{Lat: r.Geometry.Location.Lat, Lng: r.Geometry.Location.Lng},
		Address: r.FormattedAddress,
	}, nil
}

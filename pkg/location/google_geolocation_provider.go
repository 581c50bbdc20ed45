package location

import (
	"context"
	"time"

	"googlemaps.github.io/maps"
)

// geolocator is the part of the maps client used here.
type geolocator interface {
	Geolocate(ctx context.Context, r *maps.GeolocationRequest) (*maps.GeolocationResult, error)
}

// GoogleGeolocationProvider uses the Google Maps API to get location data.
type GoogleGeolocationProvider struct {
	client     geolocator
	modemIndex int
	now        func() time.Time
}

// NewGoogleGeolocationProvider creates a new GoogleGeolocationProvider instance.
func NewGoogleGeolocationProvider(apiKey string, modemIndex int) (*GoogleGeolocationProvider, error) {
	c, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	return &GoogleGeolocationProvider{
		client:     c,
		modemIndex: modemIndex,
		now:        time.Now,
	}, nil
}

// GetLocation retrieves the device's location using Google Maps Geolocation API.
// Wi-Fi and cell data are best effort; without them the lookup falls back to the IP address.
func (g *GoogleGeolocationProvider) GetLocation(ctx context.Context) (Location, error) {
	req := &maps.GeolocationRequest{ConsiderIP: true}

	if wifiAPs, err := getWiFiAccessPoints(ctx); err == nil {
		req.WiFiAccessPoints = wifiAPs
	}
	if cellTowers, err := getCellTowers(ctx, g.modemIndex); err == nil {
		req.CellTowers = cellTowers
	}

	resp, err := g.client.Geolocate(ctx, req)
	if err != nil {
		return Location{}, err
	}

	return Location{
		Latitude:  resp.Location.Lat,
		Longitude: resp.Location.Lng,
		Accuracy:  resp.Accuracy,
		Timestamp: g.now(),
	}, nil
}

// Close releases nothing; the maps client holds no open connections of its own.
func (g *GoogleGeolocationProvider) Close() error {
	return nil
}

package service_registry

import (
	"fmt"
	"strings"

	"github.com/benmeehan/location-agent/internal/geocoding"
	"github.com/benmeehan/location-agent/internal/routing"
	"github.com/benmeehan/location-agent/internal/utils"
	"github.com/benmeehan/location-agent/pkg/location"
	"github.com/rs/zerolog"
)

// NewLocationProvider builds the configured location source.
func NewLocationProvider(config *utils.Config) (location.Provider, error) {
	switch strings.ToLower(config.Location.Provider) {
	case utils.ProviderGoogle:
		provider, err := location.NewGoogleGeolocationProvider(config.Location.MapsAPIKey, config.Location.ModemIndex)
		if err != nil {
			return nil, fmt.Errorf("failed to create Google Geolocation provider: %w", err)
		}
		return provider, nil
	case utils.ProviderSensor:
		return location.NewDeviceSensorProvider(
			config.Location.GPSDevicePort,
			config.Location.GPSDeviceBaudRate,
			config.Location.GPSReadTimeout,
		), nil
	default:
		return nil, fmt.Errorf("unknown location provider %q", config.Location.Provider)
	}
}

// NewGeocoder builds the Google geocoder. Without an API key it returns nil
// and searches report the service as unavailable.
func NewGeocoder(config *utils.Config, logger zerolog.Logger) (geocoding.Geocoder, error) {
	if config.Location.MapsAPIKey == "" {
		logger.Warn().Msg("No maps API key configured, address search is disabled")
		return nil, nil
	}
	geocoder, err := geocoding.NewGoogleGeocoder(config.Location.MapsAPIKey, config.Geocoding.Language, config.Geocoding.Region)
	if err != nil {
		return nil, fmt.Errorf("failed to create geocoder: %w", err)
	}
	return geocoder, nil
}

// NewRouter builds the configured router.
func NewRouter(config *utils.Config) (routing.Router, error) {
	switch strings.ToLower(config.Routing.Provider) {
	case utils.RouterGoogle:
		router, err := routing.NewGoogleRouter(config.Location.MapsAPIKey, config.Routing.Mode)
		if err != nil {
			return nil, fmt.Errorf("failed to create Google router: %w", err)
		}
		return router, nil
	case utils.RouterOSRM:
		return routing.NewOSRMRouter(config.Routing.OSRMURL, config.Routing.Profile, config.Routing.UserAgent, config.Routing.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown routing provider %q", config.Routing.Provider)
	}
}

package service_registry

import (
	"github.com/benmeehan/location-agent/internal/constants"
	"github.com/benmeehan/location-agent/internal/mapview"
	"github.com/benmeehan/location-agent/internal/services"
	"github.com/benmeehan/location-agent/internal/tracklog"
	"github.com/benmeehan/location-agent/internal/utils"
	"github.com/benmeehan/location-agent/pkg/identity"
	"github.com/benmeehan/location-agent/pkg/location"
	"github.com/benmeehan/location-agent/pkg/mqtt"
)

// Dependencies are the shared components the services are built from.
type Dependencies struct {
	MQTTClient mqtt.MQTTClient
	DeviceInfo identity.DeviceInfoInterface
	Screen     *mapview.Screen
	Log        *tracklog.Log
	Provider   location.Provider
}

// RegisterServices initializes and registers enabled services based on configuration.
// The map screen starts first so it is ready before any input or fix arrives.
func (sr *ServiceRegistry) RegisterServices(config *utils.Config, deps Dependencies) error {
	deviceID := deps.DeviceInfo.GetDeviceID()
	topic := func(suffix string) string {
		return mqtt.Topic(config.MQTT.TopicPrefix, deviceID, suffix)
	}

	// Ordered service definitions with inline constructors
	servicesInOrder := []struct {
		name        string
		enabled     bool
		constructor func() (Service, error)
	}{
		{
			name:        "mapview",
			enabled:     true,
			constructor: func() (Service, error) { return deps.Screen, nil },
		},
		{
			name:    "input",
			enabled: config.Services.Input.Enabled,
			constructor: func() (Service, error) {
				return services.NewInputService(
					topic(constants.TopicSearch),
					topic(constants.TopicPress),
					topic(constants.TopicLight),
					config.MQTT.QOS,
					deps.MQTTClient,
					deps.Screen,
					sr.Logger,
				), nil
			},
		},
		{
			name:    "location",
			enabled: true,
			constructor: func() (Service, error) {
				return services.NewLocationService(
					topic(constants.TopicLocation),
					config.Location.Interval,
					config.Location.MinDistanceM,
					config.MQTT.QOS,
					config.MQTT.PublishTimeout,
					deps.DeviceInfo,
					deps.MQTTClient,
					deps.Screen,
					deps.Provider,
					sr.Logger,
				), nil
			},
		},
		{
			name:    "heartbeat",
			enabled: config.Services.Heartbeat.Enabled,
			constructor: func() (Service, error) {
				return services.NewHeartbeatService(
					topic(constants.TopicHeartbeat),
					config.Services.Heartbeat.Interval,
					config.MQTT.QOS,
					config.MQTT.PublishTimeout,
					deps.DeviceInfo,
					deps.MQTTClient,
					deps.Screen,
					deps.Log,
					sr.Logger,
				), nil
			},
		},
	}

	// Register services in the predefined order
	registeredServices := []string{}
	for _, svc := range servicesInOrder {
		if svc.enabled {
			serviceInstance, err := svc.constructor()
			if err != nil {
				sr.Logger.Error().Err(err).Msgf("Failed to create %s service", svc.name)
				return err
			}
			sr.RegisterService(svc.name, serviceInstance)
			registeredServices = append(registeredServices, svc.name)
		}
	}

	sr.Logger.Info().Msgf("Registered services in order: %v", registeredServices)
	return nil
}

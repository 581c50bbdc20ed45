package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/benmeehan/location-agent/internal/mapview"
	"github.com/benmeehan/location-agent/internal/service_registry"
	"github.com/benmeehan/location-agent/internal/services"
	"github.com/benmeehan/location-agent/internal/tracker"
	"github.com/benmeehan/location-agent/internal/tracklog"
	"github.com/benmeehan/location-agent/internal/utils"
	"github.com/benmeehan/location-agent/pkg/file"
	"github.com/benmeehan/location-agent/pkg/identity"
	"github.com/benmeehan/location-agent/pkg/mqtt"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the configuration file")
	envFile := flag.String("env", ".env", "optional env file with overrides")
	flag.Parse()

	bootLogger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	// Initialize file operations handler
	fileClient := file.NewFileService()

	// Load configuration from file
	config, err := utils.LoadConfig(*configPath, fileClient, *envFile)
	if err != nil {
		bootLogger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger := utils.NewLogger(config.Logger.Level, config.Logger.Format, os.Stdout)

	// Initialize DeviceInfo
	deviceInfo := identity.NewDeviceInfo(config.Identity.DeviceFile, fileClient)
	if err := deviceInfo.LoadDeviceInfo(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to load device information")
	}
	logger = logger.With().Str("device_id", deviceInfo.GetDeviceID()).Logger()

	// Generate a unique MQTT Client ID by appending a UUID
	clientID := config.MQTT.ClientID + "-" + uuid.New().String()
	logger.Info().Str("client_id", clientID).Msg("Using MQTT Client ID")

	// Initialize the shared MQTT connection
	mqttClient := mqtt.NewMqttService(fileClient)
	err = mqttClient.Initialize(mqtt.Options{
		Broker:     config.MQTT.Broker,
		ClientID:   clientID,
		CACertPath: config.MQTT.CACertificate,
		Username:   config.MQTT.Username,
		Password:   config.MQTT.Password,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize MQTT connection")
	}

	provider, err := service_registry.NewLocationProvider(config)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create location provider")
	}
	geocoder, err := service_registry.NewGeocoder(config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create geocoder")
	}
	router, err := service_registry.NewRouter(config)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create router")
	}

	// Map screen: surface over MQTT, tracker over the JSON location log
	surface := services.NewMQTTSurface(config.MQTT.TopicPrefix, deviceInfo.GetDeviceID(), config.MQTT.QOS,
		config.MQTT.PublishTimeout, mqttClient, logger)
	locationLog := tracklog.NewLog(config.LocationLog.File, fileClient, logger)
	tr := tracker.New(tracker.DefaultConfig(), surface, locationLog, logger)

	workers := utils.NewWorkerPool(config.Workers.Count, config.Workers.QueueSize)
	screen := mapview.NewScreen(tr, surface, surface, geocoder, router, workers, logger)

	// Create a new service registry to manage services
	serviceRegistry := service_registry.NewServiceRegistry(logger)
	err = serviceRegistry.RegisterServices(config, service_registry.Dependencies{
		MQTTClient: mqttClient,
		DeviceInfo: deviceInfo,
		Screen:     screen,
		Log:        locationLog,
		Provider:   provider,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to register services")
	}

	// Start all registered services in the registry
	if err := serviceRegistry.StartServices(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start services")
	}
	logger.Info().Str("location_log", locationLog.Path()).Msg("All services started successfully")

	// Handle graceful shutdown
	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)
	<-stopCh

	logger.Info().Msg("Shutting down gracefully...")
	if err := serviceRegistry.StopServices(); err != nil {
		logger.Error().Err(err).Msg("Some services did not stop cleanly")
	}
	workers.Shutdown()
	mqttClient.Disconnect(250)
}

package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/benmeehan/location-agent/internal/models"
	"github.com/benmeehan/location-agent/pkg/geo"
	"github.com/benmeehan/location-agent/pkg/identity"
	"github.com/benmeehan/location-agent/pkg/location"
	"github.com/benmeehan/location-agent/pkg/mqtt"
	"github.com/rs/zerolog"
)

// LocationSink receives the fixes produced by the LocationService.
type LocationSink interface {
	OnInitialFix(loc location.Location)
	OnLocation(loc location.Location)
	OnPermissionDenied()
}

// LocationService polls a location provider and feeds the fixes to the map
// screen. Fixes closer than minDistance to the previously delivered one are
// dropped. When a topic is set each delivered fix is also published.
type LocationService struct {
	// Configuration fields
	topic       string
	interval    time.Duration
	minDistance float64
	qos         int
	ackTimeout  time.Duration

	// Dependencies
	deviceInfo       identity.DeviceInfoInterface
	mqttClient       mqtt.MQTTClient
	sink             LocationSink
	logger           zerolog.Logger
	locationProvider location.Provider

	// Internal state management, owned by the polling goroutine
	last *geo.Point

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewLocationService creates a new LocationService instance with the provided configuration.
// mqttClient may be nil, fixes are then only delivered to sink.
func NewLocationService(topic string, interval time.Duration, minDistance float64, qos int, ackTimeout time.Duration,
	deviceInfo identity.DeviceInfoInterface, mqttClient mqtt.MQTTClient, sink LocationSink,
	locationProvider location.Provider, logger zerolog.Logger) *LocationService {
	return &LocationService{
		topic:            topic,
		interval:         interval,
		minDistance:      minDistance,
		qos:              qos,
		ackTimeout:       ackTimeout,
		deviceInfo:       deviceInfo,
		mqttClient:       mqttClient,
		sink:             sink,
		locationProvider: locationProvider,
		logger:           logger.With().Str("component", "location_service").Logger(),
	}
}

// Start begins polling. The first poll happens immediately.
func (l *LocationService) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.ctx != nil {
		l.logger.Warn().Msg("LocationService is already running")
		return errors.New("location service is already running")
	}

	l.ctx, l.cancel = context.WithCancel(context.Background())
	ctx := l.ctx

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		l.run(ctx)
	}()

	l.logger.Info().
		Dur("interval", l.interval).
		Float64("min_distance_m", l.minDistance).
		Msg("LocationService started")
	return nil
}

// Stop ends polling and closes the provider.
func (l *LocationService) Stop() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.ctx == nil {
		l.logger.Warn().Msg("LocationService is not running")
		return errors.New("location service is not running")
	}

	l.cancel()
	l.wg.Wait()
	l.ctx, l.cancel = nil, nil

	if err := l.locationProvider.Close(); err != nil {
		l.logger.Error().Err(err).Msg("Failed to close location provider")
		return err
	}

	l.logger.Info().Msg("LocationService stopped")
	return nil
}

func (l *LocationService) run(ctx context.Context) {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		if !l.poll(ctx) {
			l.logger.Warn().Msg("Location updates disabled")
			return
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			l.logger.Info().Msg("LocationService is stopping")
			return
		}
	}
}

// poll takes one fix. It returns false when polling must not continue.
func (l *LocationService) poll(ctx context.Context) bool {
	loc, err := l.locationProvider.GetLocation(ctx)
	switch {
	case err == nil:
	case errors.Is(err, location.ErrPermissionDenied):
		l.logger.Error().Err(err).Msg("Location source refused access")
		l.sink.OnPermissionDenied()
		return false
	case errors.Is(err, location.ErrNoFix), ctx.Err() != nil:
		l.logger.Debug().Err(err).Msg("No location fix")
		return true
	default:
		l.logger.Error().Err(err).Msg("Failed to get location from provider")
		return true
	}

	p := loc.Point()
	if l.last == nil {
		l.sink.OnInitialFix(loc)
	} else if d := geo.Distance(*l.last, p); d < l.minDistance {
		l.logger.Debug().Float64("distance_m", d).Msg("Fix below minimum displacement, skipped")
		return true
	}
	l.last = &p
	l.sink.OnLocation(loc)
	l.publish(loc)
	return true
}

func (l *LocationService) publish(loc location.Location) {
	if l.mqttClient == nil || l.topic == "" {
		return
	}

	msg := models.Location{
		DeviceID:  l.deviceInfo.GetDeviceID(),
		Timestamp: loc.Timestamp,
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
		Accuracy:  loc.Accuracy,
	}
	// the poll loop must keep feeding the screen while the broker is away
	err := mqtt.PublishJSONAsync(l.mqttClient, l.topic, byte(l.qos), false, msg, l.ackTimeout, func(err error) {
		l.logger.Error().Err(err).Str("topic", l.topic).Msg("Failed to publish location message")
	})
	if err != nil {
		l.logger.Error().Err(err).Str("topic", l.topic).Msg("Failed to publish location message")
	}
}

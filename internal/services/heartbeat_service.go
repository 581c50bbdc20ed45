package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/benmeehan/location-agent/internal/constants"
	"github.com/benmeehan/location-agent/internal/models"
	"github.com/benmeehan/location-agent/pkg/identity"
	"github.com/benmeehan/location-agent/pkg/mqtt"
	"github.com/rs/zerolog"
)

// ScreenStatus reports the map screen state carried in heartbeats.
type ScreenStatus interface {
	DarkTiles() bool
	HasFix() bool
}

// EntryCounter reports the number of persisted log entries.
type EntryCounter interface {
	Len() int
}

// HeartbeatService manages periodic heartbeat messages.
type HeartbeatService struct {
	PubTopic   string
	Interval   time.Duration
	QOS        int
	AckTimeout time.Duration
	DeviceInfo identity.DeviceInfoInterface
	MqttClient mqtt.MQTTClient
	Screen     ScreenStatus
	Log        EntryCounter
	Logger     zerolog.Logger

	now    func() time.Time
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewHeartbeatService initializes a new HeartbeatService.
func NewHeartbeatService(pubTopic string, interval time.Duration, qos int, ackTimeout time.Duration, deviceInfo identity.DeviceInfoInterface,
	mqttClient mqtt.MQTTClient, screen ScreenStatus, log EntryCounter, logger zerolog.Logger) *HeartbeatService {
	return &HeartbeatService{
		PubTopic:   pubTopic,
		Interval:   interval,
		QOS:        qos,
		AckTimeout: ackTimeout,
		DeviceInfo: deviceInfo,
		MqttClient: mqttClient,
		Screen:     screen,
		Log:        log,
		Logger:     logger.With().Str("component", "heartbeat_service").Logger(),
		now:        time.Now,
	}
}

// Start launches the heartbeat loop in a separate goroutine.
func (h *HeartbeatService) Start() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.ctx != nil {
		h.Logger.Warn().Msg("HeartbeatService is already running")
		return errors.New("heartbeat service is already running")
	}

	h.ctx, h.cancel = context.WithCancel(context.Background())
	ctx := h.ctx

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		h.runHeartbeatLoop(ctx)
	}()

	h.Logger.Info().Str("topic", h.PubTopic).Msg("HeartbeatService started successfully")
	return nil
}

// Stop gracefully stops the heartbeat service.
func (h *HeartbeatService) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.ctx == nil {
		h.Logger.Warn().Msg("HeartbeatService is not running")
		return errors.New("heartbeat service is not running")
	}

	h.cancel()
	h.wg.Wait()

	h.ctx = nil
	h.cancel = nil

	h.Logger.Info().Msg("HeartbeatService stopped successfully")
	return nil
}

// runHeartbeatLoop continuously sends heartbeat messages at the specified interval.
func (h *HeartbeatService) runHeartbeatLoop(ctx context.Context) {
	ticker := time.NewTicker(h.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := h.publish(); err != nil {
				h.Logger.Error().Err(err).Msg("Failed to publish heartbeat message")
			} else {
				h.Logger.Debug().Msg("Heartbeat published successfully")
			}
		case <-ctx.Done():
			h.Logger.Info().Msg("HeartbeatService stopping gracefully")
			return
		}
	}
}

func (h *HeartbeatService) publish() error {
	msg := models.Heartbeat{
		DeviceID:      h.DeviceInfo.GetDeviceID(),
		Timestamp:     h.now(),
		Status:        constants.StatusAlive,
		LoggedEntries: h.Log.Len(),
		DarkTiles:     h.Screen.DarkTiles(),
		HasFix:        h.Screen.HasFix(),
	}
	return mqtt.PublishJSON(h.MqttClient, h.PubTopic, byte(h.QOS), false, msg, h.AckTimeout)
}

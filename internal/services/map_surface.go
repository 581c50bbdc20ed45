package services

import (
	"time"

	"github.com/benmeehan/location-agent/internal/constants"
	"github.com/benmeehan/location-agent/internal/models"
	"github.com/benmeehan/location-agent/pkg/mqtt"
	"github.com/rs/zerolog"
)

// MQTTSurface renders the map screen by publishing every change as a JSON
// message under <prefix>/<device id>/. Markers and the tile style are
// retained so a UI that connects late sees the current state.
//
// Publishing never waits for the broker: the surface is driven from the map
// screen's event loop, which must keep logging fixes during a broker outage.
type MQTTSurface struct {
	prefix     string
	deviceID   string
	qos        byte
	ackTimeout time.Duration
	mqttClient mqtt.MQTTClient
	logger     zerolog.Logger
}

// NewMQTTSurface creates a surface publishing under prefix for deviceID.
// Messages not acknowledged within ackTimeout are logged as failed.
func NewMQTTSurface(prefix, deviceID string, qos int, ackTimeout time.Duration, mqttClient mqtt.MQTTClient,
	logger zerolog.Logger) *MQTTSurface {
	return &MQTTSurface{
		prefix:     prefix,
		deviceID:   deviceID,
		qos:        byte(qos),
		ackTimeout: ackTimeout,
		mqttClient: mqttClient,
		logger:     logger.With().Str("component", "map_surface").Logger(),
	}
}

// SetMarker publishes a marker. Each kind has its own retained topic.
func (s *MQTTSurface) SetMarker(m models.Marker) {
	s.publish(constants.TopicMarker+"/"+m.Kind, true, m)
}

// MoveCamera publishes a camera move.
func (s *MQTTSurface) MoveCamera(c models.Camera) {
	s.publish(constants.TopicCamera, false, c)
}

// DrawRoute publishes the route overlay that replaces the previous one.
func (s *MQTTSurface) DrawRoute(r models.RouteOverlay) {
	s.publish(constants.TopicRoute, true, r)
}

// SetTileStyle publishes the tile style.
func (s *MQTTSurface) SetTileStyle(t models.TileStyle) {
	s.publish(constants.TopicTiles, true, t)
}

// Notify publishes a user notification.
func (s *MQTTSurface) Notify(n models.Notification) {
	s.publish(constants.TopicNotification, false, n)
}

func (s *MQTTSurface) publish(suffix string, retained bool, v any) {
	topic := mqtt.Topic(s.prefix, s.deviceID, suffix)
	err := mqtt.PublishJSONAsync(s.mqttClient, topic, s.qos, retained, v, s.ackTimeout, func(err error) {
		s.logger.Error().Err(err).Str("topic", topic).Msg("Failed to publish surface update")
	})
	if err != nil {
		s.logger.Error().Err(err).Str("topic", topic).Msg("Failed to publish surface update")
	}
}

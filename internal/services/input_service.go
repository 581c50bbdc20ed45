package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/benmeehan/location-agent/internal/models"
	"github.com/benmeehan/location-agent/pkg/geo"
	"github.com/benmeehan/location-agent/pkg/mqtt"
	MQTT "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
)

// InputHandler receives the user input relayed by the InputService.
type InputHandler interface {
	Search(query string)
	LongPress(p geo.Point)
	OnLight(lux float64)
}

// InputService subscribes to the search, long-press and light sensor topics
// and forwards decoded messages to the map screen.
type InputService struct {
	SearchTopic string
	PressTopic  string
	LightTopic  string
	QOS         int
	MqttClient  mqtt.MQTTClient
	Handler     InputHandler
	Logger      zerolog.Logger

	mu         sync.Mutex
	subscribed []string
}

// NewInputService creates a new InputService.
func NewInputService(searchTopic, pressTopic, lightTopic string, qos int, mqttClient mqtt.MQTTClient,
	handler InputHandler, logger zerolog.Logger) *InputService {
	return &InputService{
		SearchTopic: searchTopic,
		PressTopic:  pressTopic,
		LightTopic:  lightTopic,
		QOS:         qos,
		MqttClient:  mqttClient,
		Handler:     handler,
		Logger:      logger.With().Str("component", "input_service").Logger(),
	}
}

// Start subscribes to the input topics. Subscriptions made before a failure are undone.
func (s *InputService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.subscribed != nil {
		s.Logger.Warn().Msg("InputService is already running")
		return errors.New("input service is already running")
	}

	subscriptions := []struct {
		topic   string
		handler MQTT.MessageHandler
	}{
		{s.SearchTopic, s.handleSearch},
		{s.PressTopic, s.handlePress},
		{s.LightTopic, s.handleLight},
	}

	subscribed := make([]string, 0, len(subscriptions))
	for _, sub := range subscriptions {
		token := s.MqttClient.Subscribe(sub.topic, byte(s.QOS), sub.handler)
		token.Wait()
		if err := token.Error(); err != nil {
			if len(subscribed) > 0 {
				s.MqttClient.Unsubscribe(subscribed...).Wait()
			}
			s.Logger.Error().Err(err).Str("topic", sub.topic).Msg("Failed to subscribe")
			return fmt.Errorf("failed to subscribe to %s: %w", sub.topic, err)
		}
		subscribed = append(subscribed, sub.topic)
	}
	s.subscribed = subscribed

	s.Logger.Info().Strs("topics", subscribed).Msg("InputService started successfully")
	return nil
}

// Stop unsubscribes from the input topics.
func (s *InputService) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.subscribed == nil {
		s.Logger.Warn().Msg("InputService is not running")
		return errors.New("input service is not running")
	}

	token := s.MqttClient.Unsubscribe(s.subscribed...)
	token.Wait()
	s.subscribed = nil
	if err := token.Error(); err != nil {
		s.Logger.Error().Err(err).Msg("Failed to unsubscribe")
		return fmt.Errorf("failed to unsubscribe: %w", err)
	}

	s.Logger.Info().Msg("InputService stopped successfully")
	return nil
}

func (s *InputService) handleSearch(_ MQTT.Client, msg MQTT.Message) {
	var req models.SearchRequest
	if err := json.Unmarshal(msg.Payload(), &req); err != nil {
		s.Logger.Error().Err(err).Str("topic", msg.Topic()).Msg("Failed to decode search request")
		return
	}
	s.Handler.Search(req.Query)
}

func (s *InputService) handlePress(_ MQTT.Client, msg MQTT.Message) {
	var req models.PressRequest
	if err := json.Unmarshal(msg.Payload(), &req); err != nil {
		s.Logger.Error().Err(err).Str("topic", msg.Topic()).Msg("Failed to decode long press")
		return
	}
	if req.Lat < -90 || req.Lat > 90 || req.Lng < -180 || req.Lng > 180 {
		s.Logger.Warn().Float64("lat", req.Lat).Float64("lng", req.Lng).Msg("Ignoring long press outside valid coordinates")
		return
	}
	s.Handler.LongPress(req.Point())
}

func (s *InputService) handleLight(_ MQTT.Client, msg MQTT.Message) {
	var reading models.LightReading
	if err := json.Unmarshal(msg.Payload(), &reading); err != nil {
		s.Logger.Error().Err(err).Str("topic", msg.Topic()).Msg("Failed to decode light reading")
		return
	}
	s.Handler.OnLight(reading.Lux)
}

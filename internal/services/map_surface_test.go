package services_test

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/benmeehan/location-agent/internal/mapview"
	"github.com/benmeehan/location-agent/internal/mocks"
	"github.com/benmeehan/location-agent/internal/models"
	"github.com/benmeehan/location-agent/internal/services"
	"github.com/benmeehan/location-agent/internal/tracker"
	"github.com/benmeehan/location-agent/internal/tracklog"
	"github.com/benmeehan/location-agent/internal/utils"
	"github.com/benmeehan/location-agent/pkg/file"
	"github.com/benmeehan/location-agent/pkg/geo"
	"github.com/benmeehan/location-agent/pkg/location"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMQTTSurface_Topics(t *testing.T) {
	// Setup
	mockMQTTClient := new(mocks.MockMQTTClient)
	token := okToken()
	p := geo.Point{Lat: 4.6, Lng: -74.1}

	mockMQTTClient.On("Publish", "agents/dev-1/map/marker/current", byte(1), true, mock.Anything).Return(token).Once()
	mockMQTTClient.On("Publish", "agents/dev-1/map/camera", byte(1), false, mock.Anything).Return(token).Once()
	mockMQTTClient.On("Publish", "agents/dev-1/map/route", byte(1), true, mock.Anything).Return(token).Once()
	mockMQTTClient.On("Publish", "agents/dev-1/map/tiles", byte(1), true, []byte(`{"dark":true}`)).Return(token).Once()
	mockMQTTClient.On("Publish", "agents/dev-1/notification", byte(1), false,
		[]byte(`{"text":"Address not found","duration":"long"}`)).Return(token).Once()

	s := services.NewMQTTSurface("agents", "dev-1", 1, time.Second, mockMQTTClient, zerolog.Nop())

	// Execute
	s.SetMarker(models.Marker{Kind: models.MarkerCurrent, Position: p, Title: "Current position"})
	s.MoveCamera(models.Camera{Center: &p, Zoom: 16, Animate: true, DurationMs: 1200})
	s.DrawRoute(models.RouteOverlay{Path: []geo.Point{p, p}, Status: "ok"})
	s.SetTileStyle(models.TileStyle{Dark: true})
	s.Notify(models.Notification{Text: "Address not found", Duration: models.NotifyLong})

	// Assert
	mockMQTTClient.AssertExpectations(t)
}

func TestMQTTSurface_CameraPayload(t *testing.T) {
	// Setup
	mockMQTTClient := new(mocks.MockMQTTClient)
	var payload []byte
	mockMQTTClient.On("Publish", "p/d/map/camera", byte(0), false, mock.Anything).
		Run(func(args mock.Arguments) { payload = args.Get(3).([]byte) }).
		Return(okToken())

	s := services.NewMQTTSurface("p", "d", 0, time.Second, mockMQTTClient, zerolog.Nop())
	b := geo.Bounds{North: 2, East: 2, South: 1, West: 1}

	// Execute
	s.MoveCamera(models.Camera{Bounds: &b, PaddingPx: 80, Animate: true})

	// Assert
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.NotContains(t, decoded, "center")
	assert.Equal(t, 80.0, decoded["padding_px"])
	assert.Equal(t, map[string]any{"north": 2.0, "east": 2.0, "south": 1.0, "west": 1.0}, decoded["bounds"])
}

func TestMQTTSurface_PublishErrorIsSwallowed(t *testing.T) {
	// Setup
	mockMQTTClient := new(mocks.MockMQTTClient)
	failed := new(mocks.MockToken)
	checked := make(chan struct{}, 1)
	failed.On("Done").Return(closedChan())
	failed.On("Error").Return(errors.New("connection lost")).Run(func(mock.Arguments) { checked <- struct{}{} })
	mockMQTTClient.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(failed)

	s := services.NewMQTTSurface("p", "d", 0, time.Second, mockMQTTClient, zerolog.Nop())

	// Execute / Assert
	assert.NotPanics(t, func() { s.Notify(models.Notification{Text: "x", Duration: models.NotifyShort}) })
	mockMQTTClient.AssertNumberOfCalls(t, "Publish", 1)
	select {
	case <-checked:
	case <-time.After(2 * time.Second):
		t.Fatal("publish error was never inspected")
	}
}

// TestMQTTSurface_BrokerOutageKeepsLogging drives the real map screen through
// the surface while the broker never acknowledges anything, as paho does for
// qos 1 messages while it is reconnecting.
func TestMQTTSurface_BrokerOutageKeepsLogging(t *testing.T) {
	// Setup
	mockMQTTClient := new(mocks.MockMQTTClient)
	pending := new(mocks.MockToken)
	never := make(chan struct{})
	pending.On("Done").Return((<-chan struct{})(never))
	mockMQTTClient.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(pending)

	surface := services.NewMQTTSurface("p", "d", 1, 50*time.Millisecond, mockMQTTClient, zerolog.Nop())
	log := tracklog.NewLog(filepath.Join(t.TempDir(), "locations.json"), file.NewFileService(), zerolog.Nop())
	tr := tracker.New(tracker.DefaultConfig(), surface, log, zerolog.Nop())
	pool := utils.NewWorkerPool(1, 4)
	t.Cleanup(pool.Shutdown)
	screen := mapview.NewScreen(tr, surface, surface, nil, nil, pool, zerolog.Nop())
	require.NoError(t, screen.Start())
	t.Cleanup(func() { _ = screen.Stop() })

	// Execute: three fixes ~110 m apart, each one qualifies for the log
	for i := 0; i < 3; i++ {
		screen.OnLocation(location.Location{
			Latitude:  4.6 + float64(i)*0.001,
			Longitude: -74.08,
			Accuracy:  5,
			Timestamp: time.Now(),
		})
	}

	// Assert
	assert.Eventually(t, func() bool { return log.Len() == 3 }, 2*time.Second, 5*time.Millisecond)
	assert.Eventually(t, screen.HasFix, 2*time.Second, 5*time.Millisecond)
}

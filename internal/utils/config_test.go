package utils

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/benmeehan/location-agent/pkg/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

// unsetEnv clears key for the duration of the test.
func unsetEnv(t *testing.T, key string) {
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func TestLoadConfig_Defaults(t *testing.T) {
	for _, k := range []string{EnvMapsAPIKey, EnvMQTTBroker, EnvLocationLogFile, EnvLogLevel} {
		unsetEnv(t, k)
	}
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "mqtt:\n  broker: tcp://localhost:1883\n")

	cfg, err := LoadConfig(path, file.NewFileService(), filepath.Join(dir, "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "tcp://localhost:1883", cfg.MQTT.Broker)
	assert.Equal(t, "location-agent", cfg.MQTT.TopicPrefix)
	assert.Equal(t, 5*time.Second, cfg.MQTT.PublishTimeout)
	assert.Equal(t, ProviderSensor, cfg.Location.Provider)
	assert.Equal(t, 3*time.Second, cfg.Location.Interval)
	assert.Equal(t, 5.0, cfg.Location.MinDistanceM)
	assert.Equal(t, RouterOSRM, cfg.Routing.Provider)
	assert.Equal(t, "data/locations.json", cfg.LocationLog.File)
	assert.Equal(t, 2, cfg.Workers.Count)
	assert.Equal(t, "info", cfg.Logger.Level)
}

func TestLoadConfig_FileValues(t *testing.T) {
	for _, k := range []string{EnvMapsAPIKey, EnvMQTTBroker, EnvLocationLogFile, EnvLogLevel} {
		unsetEnv(t, k)
	}
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
mqtt:
  broker: ssl://broker:8883
  qos: 1
location:
  provider: google
  interval: 10s
  maps_api_key: yaml-key
routing:
  provider: google
  timeout: 5s
location_log:
  file: /var/lib/agent/locations.json
`)

	cfg, err := LoadConfig(path, file.NewFileService(), filepath.Join(dir, "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.MQTT.QOS)
	assert.Equal(t, ProviderGoogle, cfg.Location.Provider)
	assert.Equal(t, 10*time.Second, cfg.Location.Interval)
	assert.Equal(t, "yaml-key", cfg.Location.MapsAPIKey)
	assert.Equal(t, 5*time.Second, cfg.Routing.Timeout)
	assert.Equal(t, "/var/lib/agent/locations.json", cfg.LocationLog.File)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	unsetEnv(t, EnvMQTTBroker)
	unsetEnv(t, EnvLocationLogFile)
	t.Setenv(EnvMapsAPIKey, "process-key")
	t.Setenv(EnvLogLevel, "debug")

	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "mqtt:\n  broker: tcp://yaml:1883\nlocation:\n  maps_api_key: yaml-key\n")
	envFile := writeFile(t, dir, "agent.env",
		"MQTT_BROKER=tcp://dotenv:1883\nMAPS_API_KEY=dotenv-key\nLOCATION_LOG_FILE=/tmp/log.json\n")

	cfg, err := LoadConfig(path, file.NewFileService(), envFile)
	require.NoError(t, err)

	assert.Equal(t, "tcp://dotenv:1883", cfg.MQTT.Broker)
	assert.Equal(t, "/tmp/log.json", cfg.LocationLog.File)
	// the process environment wins over the env file
	assert.Equal(t, "process-key", cfg.Location.MapsAPIKey)
	assert.Equal(t, "debug", cfg.Logger.Level)

	_, set := os.LookupEnv(EnvMQTTBroker)
	assert.False(t, set, "env file must not leak into the process environment")
}

func TestLoadConfig_Invalid(t *testing.T) {
	for _, k := range []string{EnvMapsAPIKey, EnvMQTTBroker, EnvLocationLogFile, EnvLogLevel} {
		unsetEnv(t, k)
	}
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"no broker", "logger:\n  level: info\n", "mqtt.broker is required"},
		{"bad qos", "mqtt:\n  broker: b\n  qos: 3\n", "mqtt.qos must be 0, 1 or 2, got 3"},
		{"google without key", "mqtt:\n  broker: b\nlocation:\n  provider: google\n", "location.maps_api_key (or MAPS_API_KEY) is required for the google provider"},
		{"unknown provider", "mqtt:\n  broker: b\nlocation:\n  provider: wifi\n", `unknown location provider "wifi"`},
		{"unknown router", "mqtt:\n  broker: b\nrouting:\n  provider: here\n", `unknown routing provider "here"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeFile(t, dir, "config.yaml", tt.content)
			_, err := LoadConfig(path, file.NewFileService(), filepath.Join(dir, "missing.env"))
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"), file.NewFileService())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("warn", "json", &buf)

	logger.Info().Msg("hidden")
	logger.Warn().Str("component", "test").Msg("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"component":"test"`)
	assert.Contains(t, out, `"message":"shown"`)
}

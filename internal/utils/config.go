package utils

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/benmeehan/location-agent/internal/constants"
	"github.com/benmeehan/location-agent/pkg/file"
	"github.com/joho/godotenv"
)

// Environment variables that override values from the configuration file.
const (
	EnvMapsAPIKey      = "MAPS_API_KEY"
	EnvMQTTBroker      = "MQTT_BROKER"
	EnvLocationLogFile = "LOCATION_LOG_FILE"
	EnvLogLevel        = "LOG_LEVEL"
)

// Location provider kinds.
const (
	ProviderSensor = "sensor"
	ProviderGoogle = "google"
)

// Routing provider kinds.
const (
	RouterGoogle = "google"
	RouterOSRM   = "osrm"
)

// Config represents the structure of the configuration file.
type Config struct {
	MQTT struct {
		Broker        string `yaml:"broker"`         // MQTT broker address
		ClientID      string `yaml:"client_id"`      // MQTT client ID prefix
		CACertificate string `yaml:"ca_certificate"` // Path to the CA certificate, empty for plain TCP
		Username      string `yaml:"username"`
		Password      string `yaml:"password"`
		TopicPrefix   string `yaml:"topic_prefix"` // Root of the per-device topics
		QOS           int    `yaml:"qos"`
		// How long a publish may wait for the broker's acknowledgement
		PublishTimeout time.Duration `yaml:"publish_timeout"`
	} `yaml:"mqtt"`

	Identity struct {
		DeviceFile string `yaml:"device_file"` // Path to the device identity file
	} `yaml:"identity"`

	Logger struct {
		Level  string `yaml:"level"`  // debug, info, warn, error
		Format string `yaml:"format"` // json or console
	} `yaml:"logger"`

	LocationLog struct {
		File string `yaml:"file"` // Path to the JSON location log
	} `yaml:"location_log"`

	Location struct {
		Provider          string        `yaml:"provider"`        // sensor or google
		Interval          time.Duration `yaml:"interval"`        // Time between polls of the provider
		MinDistanceM      float64       `yaml:"min_distance_m"`  // Fixes closer than this to the previous one are not delivered
		GPSDevicePort     string        `yaml:"gps_device_port"` // Serial port of the GPS receiver
		GPSDeviceBaudRate int           `yaml:"gps_baud_rate"`
		GPSReadTimeout    time.Duration `yaml:"gps_read_timeout"`
		ModemIndex        int           `yaml:"modem_index"` // mmcli modem used for cell towers, -1 to skip
		MapsAPIKey        string        `yaml:"maps_api_key"`
	} `yaml:"location"`

	Geocoding struct {
		Language string `yaml:"language"`
		Region   string `yaml:"region"`
	} `yaml:"geocoding"`

	Routing struct {
		Provider  string        `yaml:"provider"` // google or osrm
		Mode      string        `yaml:"mode"`     // Google travel mode
		OSRMURL   string        `yaml:"osrm_url"`
		Profile   string        `yaml:"profile"` // OSRM profile
		UserAgent string        `yaml:"user_agent"`
		Timeout   time.Duration `yaml:"timeout"` // 0 waits for the server
	} `yaml:"routing"`

	Workers struct {
		Count     int `yaml:"count"`
		QueueSize int `yaml:"queue_size"`
	} `yaml:"workers"`

	Services struct {
		Heartbeat struct {
			Enabled  bool          `yaml:"enabled"`
			Interval time.Duration `yaml:"interval"`
		} `yaml:"heartbeat"`

		Input struct {
			Enabled bool `yaml:"enabled"`
		} `yaml:"input"`
	} `yaml:"services"`
}

// LoadConfig loads the YAML configuration from the specified file, applies
// overrides from the environment and envFiles (".env" when none are given)
// and fills in defaults. Variables already set in the process environment
// win over the files.
func LoadConfig(filename string, fileClient file.FileOperations, envFiles ...string) (*Config, error) {
	var config Config
	if err := fileClient.ReadYamlFile(filename, &config); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", filename, err)
	}

	// a missing .env is normal, the process environment is still consulted
	dotenv, err := godotenv.Read(envFiles...)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read env file: %w", err)
	}
	lookup := func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return dotenv[key]
	}
	config.applyEnv(lookup)
	config.setDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) applyEnv(lookup func(string) string) {
	if v := lookup(EnvMapsAPIKey); v != "" {
		c.Location.MapsAPIKey = v
	}
	if v := lookup(EnvMQTTBroker); v != "" {
		c.MQTT.Broker = v
	}
	if v := lookup(EnvLocationLogFile); v != "" {
		c.LocationLog.File = v
	}
	if v := lookup(EnvLogLevel); v != "" {
		c.Logger.Level = v
	}
}

func (c *Config) setDefaults() {
	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = "location-agent"
	}
	if c.MQTT.TopicPrefix == "" {
		c.MQTT.TopicPrefix = constants.DefaultTopicPrefix
	}
	if c.MQTT.PublishTimeout <= 0 {
		c.MQTT.PublishTimeout = constants.DefaultPublishTimeout
	}
	if c.Identity.DeviceFile == "" {
		c.Identity.DeviceFile = "data/device.json"
	}
	if c.Logger.Level == "" {
		c.Logger.Level = "info"
	}
	if c.Logger.Format == "" {
		c.Logger.Format = "json"
	}
	if c.LocationLog.File == "" {
		c.LocationLog.File = "data/locations.json"
	}
	if c.Location.Provider == "" {
		c.Location.Provider = ProviderSensor
	}
	if c.Location.Interval <= 0 {
		c.Location.Interval = constants.DefaultLocationInterval
	}
	if c.Location.MinDistanceM <= 0 {
		c.Location.MinDistanceM = constants.DefaultSourceMinDistanceM
	}
	if c.Location.GPSDevicePort == "" {
		c.Location.GPSDevicePort = "/dev/ttyUSB0"
	}
	if c.Location.GPSDeviceBaudRate == 0 {
		c.Location.GPSDeviceBaudRate = 9600
	}
	if c.Location.GPSReadTimeout <= 0 {
		c.Location.GPSReadTimeout = 2 * time.Second
	}
	if c.Geocoding.Language == "" {
		c.Geocoding.Language = "es"
	}
	if c.Routing.Provider == "" {
		c.Routing.Provider = RouterOSRM
	}
	if c.Routing.Mode == "" {
		c.Routing.Mode = "driving"
	}
	if c.Routing.Profile == "" {
		c.Routing.Profile = "driving"
	}
	if c.Routing.UserAgent == "" {
		c.Routing.UserAgent = "location-agent"
	}
	if c.Workers.Count <= 0 {
		c.Workers.Count = 2
	}
	if c.Workers.QueueSize <= 0 {
		c.Workers.QueueSize = 16
	}
	if c.Services.Heartbeat.Interval <= 0 {
		c.Services.Heartbeat.Interval = 30 * time.Second
	}
}

// Validate checks the values that have no sensible default.
func (c *Config) Validate() error {
	if c.MQTT.Broker == "" {
		return errors.New("mqtt.broker is required")
	}
	if c.MQTT.QOS < 0 || c.MQTT.QOS > 2 {
		return fmt.Errorf("mqtt.qos must be 0, 1 or 2, got %d", c.MQTT.QOS)
	}

	switch strings.ToLower(c.Location.Provider) {
	case ProviderSensor:
	case ProviderGoogle:
		if c.Location.MapsAPIKey == "" {
			return fmt.Errorf("location.maps_api_key (or %s) is required for the google provider", EnvMapsAPIKey)
		}
	default:
		return fmt.Errorf("unknown location provider %q", c.Location.Provider)
	}

	switch strings.ToLower(c.Routing.Provider) {
	case RouterOSRM:
	case RouterGoogle:
		if c.Location.MapsAPIKey == "" {
			return fmt.Errorf("location.maps_api_key (or %s) is required for google routing", EnvMapsAPIKey)
		}
	default:
		return fmt.Errorf("unknown routing provider %q", c.Routing.Provider)
	}
	return nil
}

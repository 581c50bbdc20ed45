package constants

import "time"

// Current-position camera throttle.
const (
	CameraMinDistanceM   = 25.0
	CameraMinInterval    = 6000 * time.Millisecond
	CameraAnimation      = 1200 * time.Millisecond
	CurrentLocationZoom  = 16.0
	DestinationZoom      = 17.0
	DestinationAnimation = 800 * time.Millisecond
	RouteBoundsPaddingPx = 80
)

// LogMinDistanceM is the distance a fix must exceed from the last logged one to be logged.
const LogMinDistanceM = 30.0

// DarkLuxThreshold is the ambient light level below which dark tiles are used.
const DarkLuxThreshold = 20.0

// Route overlay style.
const (
	RouteColor   = "#E53935"
	RouteWidthPx = 8.0
)

// Location source defaults.
const (
	DefaultLocationInterval   = 3 * time.Second
	DefaultSourceMinDistanceM = 5.0
)

// Marker texts.
const (
	CurrentMarkerTitle     = "Current position"
	DestinationSnippet     = "Destination"
	DefaultDestinationName = "Marker"
)

// DefaultPublishTimeout bounds the wait for a broker acknowledgement.
const DefaultPublishTimeout = 5 * time.Second

// DefaultTopicPrefix is the root of the per-device MQTT topics.
const DefaultTopicPrefix = "location-agent"

package constants

// User-facing notification texts.
const (
	MsgPermissionDenied    = "Location permission denied"
	MsgAddressNotFound     = "Address not found"
	MsgGeocodingError      = "Geocoding error: %s"
	MsgLocationUnavailable = "Current location not available yet"
	MsgLocationNotReady    = "Your location is not ready yet"
	MsgRouteDegraded       = "Route not optimal or service limited"
	MsgRouteError          = "Route error: %s"
)

// Heartbeat statuses.
const (
	StatusAlive = "alive"
)

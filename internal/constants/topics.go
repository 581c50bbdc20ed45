package constants

// Per-device topic suffixes, published under <prefix>/<device id>/.
const (
	TopicMarker       = "map/marker"
	TopicCamera       = "map/camera"
	TopicRoute        = "map/route"
	TopicTiles        = "map/tiles"
	TopicNotification = "notification"
	TopicHeartbeat    = "heartbeat"
	TopicLocation     = "location"

	TopicSearch = "input/search"
	TopicPress  = "input/press"
	TopicLight  = "input/light"
)

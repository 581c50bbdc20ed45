package mapview

import "github.com/benmeehan/location-agent/internal/models"

// Surface is the map rendering side. All calls come from the screen's event loop.
type Surface interface {
	SetMarker(m models.Marker)
	MoveCamera(c models.Camera)
	DrawRoute(r models.RouteOverlay)
	SetTileStyle(s models.TileStyle)
}

// Notifier shows short transient messages to the user.
type Notifier interface {
	Notify(n models.Notification)
}

// Dispatcher runs lookups off the event loop. Submit must not block.
type Dispatcher interface {
	Submit(task func()) bool
}

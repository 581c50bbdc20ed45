package models

import "github.com/benmeehan/location-agent/pkg/geo"

// Marker kinds.
const (
	MarkerCurrent     = "current"
	MarkerDestination = "destination"
)

// Marker places or moves a pin on the map. Markers are keyed by Kind, a
// second update of the same kind replaces the first.
type Marker struct {
	Kind     string    `json:"kind"`
	Position geo.Point `json:"position"`
	Title    string    `json:"title"`
	Snippet  string    `json:"snippet,omitempty"`
}

// Camera moves the viewport. Either Center or Bounds is set.
type Camera struct {
	Center     *geo.Point  `json:"center,omitempty"`
	Zoom       float64     `json:"zoom,omitempty"`
	Bounds     *geo.Bounds `json:"bounds,omitempty"`
	PaddingPx  int         `json:"padding_px,omitempty"`
	Animate    bool        `json:"animate"`
	DurationMs int64       `json:"duration_ms,omitempty"`
}

// RouteOverlay replaces the drawn route.
type RouteOverlay struct {
	RequestID string      `json:"request_id"`
	Path      []geo.Point `json:"path"`
	Color     string      `json:"color"`
	WidthPx   float64     `json:"width_px"`
	Status    string      `json:"status"` // "ok" or "degraded"
	DistanceM float64     `json:"distance_m"`
	DurationS float64     `json:"duration_s"`
}

// TileStyle switches the tile overlay filter.
type TileStyle struct {
	Dark bool `json:"dark"`
}

// Notification lengths.
const (
	NotifyShort = "short"
	NotifyLong  = "long"
)

// Notification is a transient user-facing message.
type Notification struct {
	Text     string `json:"text"`
	Duration string `json:"duration"`
}

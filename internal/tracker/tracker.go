// Package tracker turns a stream of location fixes into current-position
// marker and camera moves and into entries of the location log.
package tracker

import (
	"time"

	"github.com/benmeehan/location-agent/internal/constants"
	"github.com/benmeehan/location-agent/internal/models"
	"github.com/benmeehan/location-agent/internal/tracklog"
	"github.com/benmeehan/location-agent/pkg/geo"
	"github.com/benmeehan/location-agent/pkg/location"
	"github.com/rs/zerolog"
)

// View is the part of the map surface driven by the tracker.
type View interface {
	SetMarker(m models.Marker)
	MoveCamera(c models.Camera)
}

// Store is the persisted location log.
type Store interface {
	Read() []tracklog.Entry
	Append(entry tracklog.Entry) error
}

// Config holds the thresholds. Both distance checks are strict: a fix exactly
// at the threshold does not qualify.
type Config struct {
	CameraMinDistanceM float64
	CameraMinInterval  time.Duration
	CameraZoom         float64
	CameraAnimation    time.Duration
	LogMinDistanceM    float64
}

// DefaultConfig returns the thresholds used by the map screen.
func DefaultConfig() Config {
	return Config{
		CameraMinDistanceM: constants.CameraMinDistanceM,
		CameraMinInterval:  constants.CameraMinInterval,
		CameraZoom:         constants.CurrentLocationZoom,
		CameraAnimation:    constants.CameraAnimation,
		LogMinDistanceM:    constants.LogMinDistanceM,
	}
}

// Tracker owns the positions carried between fixes. It is not safe for
// concurrent use; callers deliver fixes from a single goroutine.
type Tracker struct {
	cfg    Config
	view   View
	store  Store
	logger zerolog.Logger
	now    func() time.Time

	current      *location.Location
	lastCamera   *geo.Point
	lastCameraAt time.Time
	lastLogged   *geo.Point
}

// New creates a tracker. The last entry already in the store, if any, is the
// reference for the next log distance check.
func New(cfg Config, view View, store Store, logger zerolog.Logger) *Tracker {
	t := &Tracker{
		cfg:    cfg,
		view:   view,
		store:  store,
		logger: logger.With().Str("component", "tracker").Logger(),
		now:    time.Now,
	}

	if entries := store.Read(); len(entries) > 0 {
		last := entries[len(entries)-1]
		t.lastLogged = &geo.Point{Lat: last.Lat, Lng: last.Lng}
	}
	return t
}

// OnInitialFix centres the camera on a last-known position without animation.
// The position becomes the camera reference, so a first update at the same
// spot does not move the camera again, but the throttle interval is not
// started. It is never logged.
func (t *Tracker) OnInitialFix(loc location.Location) {
	p := loc.Point()
	t.view.SetMarker(currentMarker(p))
	t.view.MoveCamera(models.Camera{Center: &p, Zoom: t.cfg.CameraZoom})
	t.lastCamera = &p
}

// OnLocationUpdate handles one fix from the location source.
//
// The current-position marker always follows the fix. The camera follows only
// when the fix moved more than CameraMinDistanceM from the last camera centre
// and more than CameraMinInterval passed since the last camera move. The fix is
// appended to the log when nothing was logged yet or it is more than
// LogMinDistanceM from the last logged fix. Log write failures are dropped.
func (t *Tracker) OnLocationUpdate(loc location.Location) {
	p := loc.Point()
	current := loc
	t.current = &current

	t.view.SetMarker(currentMarker(p))

	now := t.now()
	movedEnough := t.lastCamera == nil || geo.Distance(*t.lastCamera, p) > t.cfg.CameraMinDistanceM
	timeEnough := now.Sub(t.lastCameraAt) > t.cfg.CameraMinInterval
	if movedEnough && timeEnough {
		t.view.MoveCamera(models.Camera{
			Center:     &p,
			Zoom:       t.cfg.CameraZoom,
			Animate:    true,
			DurationMs: t.cfg.CameraAnimation.Milliseconds(),
		})
		t.lastCamera = &p
		t.lastCameraAt = now
	}

	if t.lastLogged == nil || geo.Distance(*t.lastLogged, p) > t.cfg.LogMinDistanceM {
		if err := t.store.Append(tracklog.NewEntry(loc)); err != nil {
			t.logger.Warn().Err(err).Msg("Failed to append location to log, entry dropped")
			return
		}
		t.lastLogged = &p
	}
}

// Current returns the latest fix delivered through OnLocationUpdate.
func (t *Tracker) Current() (location.Location, bool) {
	if t.current == nil {
		return location.Location{}, false
	}
	return *t.current, true
}

func currentMarker(p geo.Point) models.Marker {
	return models.Marker{Kind: models.MarkerCurrent, Position: p, Title: constants.CurrentMarkerTitle}
}

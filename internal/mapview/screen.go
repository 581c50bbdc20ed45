// Package mapview orchestrates the map screen: current-position tracking,
// address search, long-press destinations, routing and the light-driven
// tile style.
//
// Every change to the surface happens on one event loop goroutine. Lookups
// run on a Dispatcher and send their outcome back to the loop as an event.
// Lookups are never cancelled when a newer one starts, so results apply in
// completion order, not request order.
package mapview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/benmeehan/location-agent/internal/constants"
	"github.com/benmeehan/location-agent/internal/geocoding"
	"github.com/benmeehan/location-agent/internal/models"
	"github.com/benmeehan/location-agent/internal/routing"
	"github.com/benmeehan/location-agent/internal/tracker"
	"github.com/benmeehan/location-agent/pkg/geo"
	"github.com/benmeehan/location-agent/pkg/location"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	// ErrBusy is reported when a lookup could not be queued.
	ErrBusy = errors.New("too many pending lookups")
	// ErrUnavailable is reported when no lookup service is configured.
	ErrUnavailable = errors.New("service not configured")
)

const eventBuffer = 64

// Screen is the map screen state owner.
type Screen struct {
	tracker  *tracker.Tracker
	surface  Surface
	notifier Notifier
	geocoder geocoding.Geocoder
	router   routing.Router
	workers  Dispatcher
	logger   zerolog.Logger

	events chan event

	// loop-owned
	darkApplied        bool
	permissionNotified bool

	// snapshots for other goroutines
	darkTiles atomic.Bool
	hasFix    atomic.Bool

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running atomic.Bool
}

// NewScreen wires a screen. geocoder and router may be nil, lookups then
// report ErrUnavailable.
func NewScreen(tr *tracker.Tracker, surface Surface, notifier Notifier, geocoder geocoding.Geocoder,
	router routing.Router, workers Dispatcher, logger zerolog.Logger) *Screen {
	ctx, cancel := context.WithCancel(context.Background())
	return &Screen{
		tracker:  tr,
		surface:  surface,
		notifier: notifier,
		geocoder: geocoder,
		router:   router,
		workers:  workers,
		logger:   logger.With().Str("component", "mapview").Logger(),
		events:   make(chan event, eventBuffer),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start launches the event loop.
func (s *Screen) Start() error {
	if s.ctx.Err() != nil {
		return errors.New("map screen has been stopped")
	}
	if !s.running.CompareAndSwap(false, true) {
		return errors.New("map screen is already running")
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()

	s.logger.Info().Msg("Map screen started")
	return nil
}

// Stop ends the event loop and cancels lookups still in flight. Events not yet processed are dropped.
func (s *Screen) Stop() error {
	if !s.running.CompareAndSwap(true, false) {
		return errors.New("map screen is not running")
	}
	s.cancel()
	s.wg.Wait()
	s.logger.Info().Msg("Map screen stopped")
	return nil
}

// OnInitialFix centres the map on a last-known position.
func (s *Screen) OnInitialFix(loc location.Location) { s.post(locationEvent{loc: loc, initial: true}) }

// OnLocation delivers a location update.
func (s *Screen) OnLocation(loc location.Location) { s.post(locationEvent{loc: loc}) }

// OnPermissionDenied reports that the location source refused access.
func (s *Screen) OnPermissionDenied() { s.post(permissionDeniedEvent{}) }

// Search geocodes query and shows it as the destination.
func (s *Screen) Search(query string) { s.post(searchEvent{query: query}) }

// LongPress shows the pressed point as the destination.
func (s *Screen) LongPress(p geo.Point) { s.post(pressEvent{point: p}) }

// OnLight delivers an ambient light reading in lux.
func (s *Screen) OnLight(lux float64) { s.post(lightEvent{lux: lux}) }

// DarkTiles reports whether the dark tile style is applied.
func (s *Screen) DarkTiles() bool { return s.darkTiles.Load() }

// HasFix reports whether a location update has been received.
func (s *Screen) HasFix() bool { return s.hasFix.Load() }

// post hands ev to the loop. It blocks while the buffer is full and gives up once the screen is stopped.
func (s *Screen) post(ev event) {
	select {
	case s.events <- ev:
	case <-s.ctx.Done():
	}
}

func (s *Screen) loop() {
	for {
		select {
		case ev := <-s.events:
			s.handle(ev)
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Screen) handle(ev event) {
	switch e := ev.(type) {
	case locationEvent:
		if e.initial {
			s.tracker.OnInitialFix(e.loc)
			return
		}
		s.tracker.OnLocationUpdate(e.loc)
		s.hasFix.Store(true)
	case permissionDeniedEvent:
		if !s.permissionNotified {
			s.permissionNotified = true
			s.notify(constants.MsgPermissionDenied, models.NotifyLong)
		}
	case searchEvent:
		s.startSearch(e.query)
	case pressEvent:
		s.startReverse(e.point)
	case lightEvent:
		s.applyLight(e.lux)
	case geocodeResult:
		s.onGeocodeResult(e)
	case reverseResult:
		s.showDestination(e.requestID, e.point, e.title)
	case routeResult:
		s.onRouteResult(e)
	default:
		s.logger.Warn().Str("type", fmt.Sprintf("%T", ev)).Msg("Ignoring unknown event")
	}
}

func (s *Screen) startSearch(query string) {
	query = strings.TrimSpace(query)
	if query == "" {
		return
	}

	id := uuid.NewString()
	s.logger.Debug().Str("request_id", id).Str("query", query).Msg("Geocoding query")

	if s.geocoder == nil {
		s.onGeocodeResult(geocodeResult{requestID: id, query: query, err: ErrUnavailable})
		return
	}
	ok := s.workers.Submit(func() {
		place, err := s.geocoder.Geocode(s.ctx, query)
		s.post(geocodeResult{requestID: id, query: query, place: place, err: err})
	})
	if !ok {
		s.onGeocodeResult(geocodeResult{requestID: id, query: query, err: ErrBusy})
	}
}

func (s *Screen) onGeocodeResult(r geocodeResult) {
	if r.err != nil {
		if errors.Is(r.err, geocoding.ErrNotFound) {
			s.notify(constants.MsgAddressNotFound, models.NotifyLong)
			return
		}
		s.logger.Warn().Err(r.err).Str("request_id", r.requestID).Msg("Geocoding failed")
		s.notify(fmt.Sprintf(constants.MsgGeocodingError, r.err.Error()), models.NotifyLong)
		return
	}

	title := r.place.Address
	if title == "" {
		title = r.query
	}
	s.showDestination(r.requestID, r.place.Point, title)
}

func (s *Screen) startReverse(p geo.Point) {
	id := uuid.NewString()
	s.logger.Debug().Str("request_id", id).Float64("lat", p.Lat).Float64("lng", p.Lng).Msg("Reverse geocoding long press")

	if s.geocoder == nil {
		s.showDestination(id, p, constants.DefaultDestinationName)
		return
	}
	ok := s.workers.Submit(func() {
		title := constants.DefaultDestinationName
		place, err := s.geocoder.ReverseGeocode(s.ctx, p)
		if err != nil {
			s.logger.Debug().Err(err).Str("request_id", id).Msg("Reverse geocoding failed, using default title")
		} else if place.Address != "" {
			title = place.Address
		}
		s.post(reverseResult{requestID: id, point: p, title: title})
	})
	if !ok {
		s.showDestination(id, p, constants.DefaultDestinationName)
	}
}

// showDestination places the destination marker, reports the distance and starts routing.
func (s *Screen) showDestination(requestID string, p geo.Point, title string) {
	s.surface.SetMarker(models.Marker{
		Kind:     models.MarkerDestination,
		Position: p,
		Title:    title,
		Snippet:  constants.DestinationSnippet,
	})
	s.surface.MoveCamera(models.Camera{
		Center:     &p,
		Zoom:       constants.DestinationZoom,
		Animate:    true,
		DurationMs: constants.DestinationAnimation.Milliseconds(),
	})

	current, ok := s.tracker.Current()
	if !ok {
		s.notify(constants.MsgLocationUnavailable, models.NotifyShort)
	} else {
		s.notify(geo.FormatDistance(geo.Distance(current.Point(), p)), models.NotifyLong)
	}

	s.startRoute(requestID, p)
}

func (s *Screen) startRoute(requestID string, dest geo.Point) {
	current, ok := s.tracker.Current()
	if !ok {
		s.notify(constants.MsgLocationNotReady, models.NotifyShort)
		return
	}
	start := current.Point()

	if s.router == nil {
		s.onRouteResult(routeResult{requestID: requestID, err: ErrUnavailable})
		return
	}
	submitted := s.workers.Submit(func() {
		route, err := s.router.Route(s.ctx, start, dest)
		s.post(routeResult{requestID: requestID, route: route, err: err})
	})
	if !submitted {
		s.onRouteResult(routeResult{requestID: requestID, err: ErrBusy})
	}
}

func (s *Screen) onRouteResult(r routeResult) {
	if r.err != nil {
		s.logger.Warn().Err(r.err).Str("request_id", r.requestID).Msg("Routing failed")
		s.notify(fmt.Sprintf(constants.MsgRouteError, r.err.Error()), models.NotifyLong)
		return
	}

	s.surface.DrawRoute(models.RouteOverlay{
		RequestID: r.requestID,
		Path:      r.route.Path,
		Color:     constants.RouteColor,
		WidthPx:   constants.RouteWidthPx,
		Status:    string(r.route.Status),
		DistanceM: r.route.DistanceM,
		DurationS: r.route.Duration.Seconds(),
	})

	bounds := r.route.Bounds
	s.surface.MoveCamera(models.Camera{
		Bounds:    &bounds,
		PaddingPx: constants.RouteBoundsPaddingPx,
		Animate:   true,
	})

	if r.route.Status != routing.StatusOK {
		s.notify(constants.MsgRouteDegraded, models.NotifyShort)
	}
}

// applyLight switches the tile style only when the reading crosses the threshold.
func (s *Screen) applyLight(lux float64) {
	switch {
	case lux < constants.DarkLuxThreshold && !s.darkApplied:
		s.darkApplied = true
	case lux >= constants.DarkLuxThreshold && s.darkApplied:
		s.darkApplied = false
	default:
		return
	}
	s.darkTiles.Store(s.darkApplied)
	s.surface.SetTileStyle(models.TileStyle{Dark: s.darkApplied})
	s.logger.Debug().Float64("lux", lux).Bool("dark", s.darkApplied).Msg("Tile style switched")
}

func (s *Screen) notify(text, duration string) {
	s.notifier.Notify(models.Notification{Text: text, Duration: duration})
}

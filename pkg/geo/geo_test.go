package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	origin := Point{Lat: 10.0, Lng: 20.0}

	assert.Equal(t, 0.0, Distance(origin, origin))

	// One degree of latitude is ~111.19 km on the mean sphere.
	assert.InDelta(t, 111194.9, Distance(origin, Point{Lat: 11.0, Lng: 20.0}), 1.0)

	// Symmetric.
	a, b := Point{Lat: 52.52, Lng: 13.405}, Point{Lat: 48.8566, Lng: 2.3522}
	assert.InDelta(t, Distance(a, b), Distance(b, a), 1e-6)
	assert.InDelta(t, 877_460, Distance(a, b), 1_000)
}

func TestDistance_ShrinksWithLatitude(t *testing.T) {
	equator := Distance(Point{Lat: 0, Lng: 0}, Point{Lat: 0, Lng: 0.001})
	north := Distance(Point{Lat: 60, Lng: 0}, Point{Lat: 60, Lng: 0.001})
	assert.InDelta(t, equator/2, north, 0.5)
}

func TestBoundsOf(t *testing.T) {
	_, ok := BoundsOf()
	assert.False(t, ok)

	b, ok := BoundsOf(
		Point{Lat: 4.6, Lng: -74.1},
		Point{Lat: 4.7, Lng: -74.0},
		Point{Lat: 4.65, Lng: -74.2},
	)
	assert.True(t, ok)
	assert.Equal(t, Bounds{North: 4.7, East: -74.0, South: 4.6, West: -74.2}, b)
}

func TestFormatDistance(t *testing.T) {
	assert.Equal(t, "Distance: 0 m", FormatDistance(0))
	assert.Equal(t, "Distance: 999 m", FormatDistance(999.4))
	assert.Equal(t, "Distance: 1.00 km", FormatDistance(1000))
	assert.Equal(t, "Distance: 12.35 km", FormatDistance(12346))
}

func TestPointString(t *testing.T) {
	assert.Equal(t, "4.600000,-74.100000", Point{Lat: 4.6, Lng: -74.1}.String())
}

package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLongitude(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"zero", 0, 0},
		{"in range positive", 90, 90},
		{"in range negative", -90, -90},
		{"wraps east", 190, -170},
		{"wraps west", -190, 170},
		{"antimeridian maps to west", 180, -180},
		{"negative antimeridian stays", -180, -180},
		{"full circle", 360, 0},
		{"multiple wraps", 720 + 10, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, NormalizeLongitude(tt.in), 1e-9)
		})
	}
}

func TestNormalizeLongitude_PropagatesNonFinite(t *testing.T) {
	assert.True(t, math.IsNaN(NormalizeLongitude(math.NaN())))
	assert.True(t, math.IsInf(NormalizeLongitude(math.Inf(1)), 1))
}

func TestLongitudeDistance(t *testing.T) {
	// One degree of longitude at the equator is about 111.19 km on a
	// 6371 km sphere.
	d := LongitudeDistance(0, 0, 1)
	assert.InDelta(t, 111195, d, 10)

	// At 60°N a degree of longitude covers half the ground distance.
	dAt60 := LongitudeDistance(60, 0, 1)
	assert.InDelta(t, d/2, dAt60, 10)

	// Symmetric in the arguments.
	assert.Equal(t, LongitudeDistance(45, 3, 8), LongitudeDistance(45, 8, 3))

	// Shortest way around the antimeridian.
	wrap := LongitudeDistance(0, 179, -179)
	assert.InDelta(t, 2*d, wrap, 20)
}

func TestHaversine(t *testing.T) {
	paris := Position{Latitude: 48.8566, Longitude: 2.3522}
	london := Position{Latitude: 51.5074, Longitude: -0.1278}

	d := Haversine(paris, london)
	assert.InDelta(t, 343_500, d, 2_000)
	assert.Equal(t, 0.0, Haversine(paris, paris))
}

func TestRadiansDegreesRoundTrip(t *testing.T) {
	assert.InDelta(t, math.Pi, Radians(180), 1e-12)
	assert.InDelta(t, 180.0, Degrees(math.Pi), 1e-12)
	assert.InDelta(t, 42.5, Degrees(Radians(42.5)), 1e-12)
}

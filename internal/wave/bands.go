// Package wave implements the propagation engine: latitude band
// subdivision, wavefront tracking, polygon splitting along the curved
// front, and snapshot accumulation.
package wave

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/worldwidewaves/wave-engine/internal/geo"
)

const (
	// minPerceptibleDistanceMeters is the ground distance below which a
	// change in a band's longitudinal width is not worth a new band.
	minPerceptibleDistanceMeters = 500.0

	// minBandWidthDegrees bounds how thin a band may get near the
	// reference latitude, where the perceptible step goes to zero.
	minBandWidthDegrees = 0.01

	// maxBands caps the subdivision for degenerate configurations
	// (near-polar boxes, very slow waves).
	maxBands = 1024
)

// ErrNoBands reports a wave configuration that produces an empty band table.
var ErrNoBands = errors.New("band calculation produced no bands")

// Band is one row of the latitude subdivision of a bounding box. LngWidth
// is the angular distance the front sweeps across this band during one
// refresh interval; it widens poleward so the perceived ground speed stays
// uniform despite meridian convergence.
type Band struct {
	Latitude float64 // southern edge of the band, degrees
	LatWidth float64 // degrees
	LngWidth float64 // degrees per refresh interval
}

// Center returns the band's representative latitude.
func (b Band) Center() float64 {
	return b.Latitude + b.LatWidth/2
}

// CalculateBands subdivides the box into latitude bands for a wave moving
// at the given ground speed (m/s). The longitudinal width swept during one
// refresh interval is calibrated at the box's widest latitude and widened
// by 1/cos(lat) in every band. Band boundaries are placed where the width
// change becomes perceptible, clamped to a minimum band width, and the
// total count is hard-capped.
func CalculateBands(box geo.BoundingBox, speed float64, refreshInterval time.Duration) ([]Band, error) {
	if speed <= 0 || math.IsNaN(speed) || math.IsInf(speed, 0) {
		return nil, fmt.Errorf("wave speed must be positive, got %v", speed)
	}
	if refreshInterval <= 0 {
		return nil, fmt.Errorf("refresh interval must be positive, got %v", refreshInterval)
	}
	if box.IsDegenerate() {
		return nil, fmt.Errorf("degenerate bounding box %+v", box)
	}

	refLat := box.LatitudeOfWidestPart()
	lonWidthAtRef := geo.Degrees(speed * refreshInterval.Seconds() / (geo.EarthRadiusMeters * math.Cos(geo.Radians(refLat))))

	bands := make([]Band, 0, 16)
	for lat := box.SouthWest.Latitude; lat < box.NorthEast.Latitude && len(bands) < maxBands; {
		cosLat := math.Cos(geo.Radians(lat))
		if cosLat <= 0 {
			break // at or beyond a pole, no longitudinal extent left
		}

		lngWidth := lonWidthAtRef / cosLat

		// The latitude step after which the band width would have changed
		// by a perceptible ground distance.
		step := minPerceptibleDistanceMeters / geo.MetersPerLongitudeDegree(lat)
		if step < minBandWidthDegrees {
			step = minBandWidthDegrees
		}
		if lat+step > box.NorthEast.Latitude {
			step = box.NorthEast.Latitude - lat
		}

		bands = append(bands, Band{Latitude: lat, LatWidth: step, LngWidth: lngWidth})
		lat += step
	}

	if len(bands) == 0 {
		return nil, ErrNoBands
	}
	return bands, nil
}

// Package geo holds the spherical-geometry primitives shared by the wave
// engine: positions, bounding boxes, polygon rings, and the pure math that
// operates on them. All functions are total; invalid coordinates propagate
// as NaN or sentinel values rather than panicking.
package geo

import "math"

// Position is a point on the sphere in decimal degrees.
type Position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// IsValid reports whether both coordinates are finite and within range:
// latitude in [-90, 90], longitude in [-180, 180].
func (p Position) IsValid() bool {
	if math.IsNaN(p.Latitude) || math.IsInf(p.Latitude, 0) {
		return false
	}
	if math.IsNaN(p.Longitude) || math.IsInf(p.Longitude, 0) {
		return false
	}
	return p.Latitude >= -90 && p.Latitude <= 90 &&
		p.Longitude >= -180 && p.Longitude <= 180
}

// BoundingBox is an axis-aligned box on the sphere.
type BoundingBox struct {
	SouthWest Position `json:"southwest"`
	NorthEast Position `json:"northeast"`
}

// IsDegenerate reports whether the box has no interior.
func (b BoundingBox) IsDegenerate() bool {
	return !b.SouthWest.IsValid() || !b.NorthEast.IsValid() ||
		b.SouthWest.Latitude >= b.NorthEast.Latitude ||
		b.SouthWest.Longitude >= b.NorthEast.Longitude
}

// LatitudeOfWidestPart returns the latitude within the box closest to the
// equator, where one degree of longitude spans the most ground distance.
// It is the calibration reference for wave-speed-to-longitude conversions.
func (b BoundingBox) LatitudeOfWidestPart() float64 {
	if b.SouthWest.Latitude > 0 {
		return b.SouthWest.Latitude
	}
	if b.NorthEast.Latitude < 0 {
		return b.NorthEast.Latitude
	}
	return 0
}

// Contains reports whether the position lies inside the box, edges included.
func (b BoundingBox) Contains(p Position) bool {
	return p.Latitude >= b.SouthWest.Latitude && p.Latitude <= b.NorthEast.Latitude &&
		p.Longitude >= b.SouthWest.Longitude && p.Longitude <= b.NorthEast.Longitude
}

// LongitudeSpan returns the angular east-west extent of the box in degrees.
func (b BoundingBox) LongitudeSpan() float64 {
	return b.NorthEast.Longitude - b.SouthWest.Longitude
}

package geo

import "math"

// EarthRadiusMeters is the mean Earth radius used for all sphere-model
// calculations in this package.
const EarthRadiusMeters = 6371000.0

// Radians converts degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

// NormalizeLongitude wraps a longitude into [-180, 180).
// NaN and infinities pass through unchanged.
func NormalizeLongitude(lon float64) float64 {
	if math.IsNaN(lon) || math.IsInf(lon, 0) {
		return lon
	}
	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	return lon - 180
}

// LongitudeDistance returns the ground distance in meters between two
// longitudes measured along the parallel at the given latitude. This is the
// flat-earth-at-a-band approximation: exact on a parallel, which is the only
// way the wave travels.
func LongitudeDistance(lat, lon1, lon2 float64) float64 {
	delta := math.Abs(NormalizeLongitude(lon2) - NormalizeLongitude(lon1))
	if delta > 180 {
		delta = 360 - delta
	}
	return Radians(delta) * EarthRadiusMeters * math.Cos(Radians(lat))
}

// MetersPerLongitudeDegree returns the ground length of one degree of
// longitude at the given latitude.
func MetersPerLongitudeDegree(lat float64) float64 {
	return Radians(1) * EarthRadiusMeters * math.Cos(Radians(lat))
}

// Haversine returns the great-circle distance in meters between two
// positions. Invalid inputs propagate as NaN; callers that need the
// soft-failure sentinel use the observer package instead.
func Haversine(a, b Position) float64 {
	lat1 := Radians(a.Latitude)
	lat2 := Radians(b.Latitude)
	dLat := Radians(b.Latitude - a.Latitude)
	dLon := Radians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return EarthRadiusMeters * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

package wave

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/worldwidewaves/wave-engine/internal/geo"
)

// Direction is the wave's travel direction along parallels.
type Direction int

const (
	East Direction = iota
	West
)

func (d Direction) String() string {
	if d == West {
		return "west"
	}
	return "east"
}

// ParseDirection converts a configuration string to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "east", "EAST", "E", "e":
		return East, nil
	case "west", "WEST", "W", "w":
		return West, nil
	default:
		return East, fmt.Errorf("unknown wave direction %q", s)
	}
}

// Area is the containment contract the hit-detection queries consult. The
// bounding box alone is not enough: areas are non-rectangular.
type Area interface {
	Contains(geo.Position) bool
}

// Wave is one immutable wave configuration. The band table and total
// duration are memoized on first use and live for the wave's lifetime;
// changing speed or direction means constructing a new Wave.
type Wave struct {
	speed           float64 // ground speed, m/s
	direction       Direction
	box             geo.BoundingBox
	refreshInterval time.Duration
	start           time.Time

	once     sync.Once
	bands    []Band
	bandsErr error
}

// New validates the configuration and returns a Wave. Non-positive speed
// and degenerate boxes are configuration errors, fatal to this wave.
func New(speed float64, direction Direction, box geo.BoundingBox, refreshInterval time.Duration, start time.Time) (*Wave, error) {
	if speed <= 0 || math.IsNaN(speed) || math.IsInf(speed, 0) {
		return nil, fmt.Errorf("wave speed must be positive, got %v", speed)
	}
	if refreshInterval <= 0 {
		return nil, fmt.Errorf("refresh interval must be positive, got %v", refreshInterval)
	}
	if box.IsDegenerate() {
		return nil, fmt.Errorf("degenerate bounding box %+v", box)
	}
	return &Wave{
		speed:           speed,
		direction:       direction,
		box:             box,
		refreshInterval: refreshInterval,
		start:           start,
	}, nil
}

// Speed returns the configured ground speed in m/s.
func (w *Wave) Speed() float64 { return w.speed }

// Direction returns the travel direction.
func (w *Wave) Direction() Direction { return w.direction }

// BoundingBox returns the swept box.
func (w *Wave) BoundingBox() geo.BoundingBox { return w.box }

// Start returns the instant the front leaves the trailing edge.
func (w *Wave) Start() time.Time { return w.start }

// Bands returns the memoized band table.
func (w *Wave) Bands() ([]Band, error) {
	w.once.Do(func() {
		w.bands, w.bandsErr = CalculateBands(w.box, w.speed, w.refreshInterval)
	})
	return w.bands, w.bandsErr
}

// Duration returns the time for the front to traverse the whole box,
// measured at the reference latitude's geometry.
func (w *Wave) Duration() time.Duration {
	refLat := w.box.LatitudeOfWidestPart()
	widthMeters := geo.LongitudeDistance(refLat, w.box.SouthWest.Longitude, w.box.NorthEast.Longitude)
	return time.Duration(widthMeters / w.speed * float64(time.Second))
}

// Elapsed converts an instant to time since the wave start, clamped to zero.
func (w *Wave) Elapsed(now time.Time) time.Duration {
	elapsed := now.Sub(w.start)
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

// CurrentLongitude returns the front's longitude at the given latitude
// after the given elapsed time. The front moves at constant ground speed,
// so its angular speed grows poleward; the result is clamped to the box.
func (w *Wave) CurrentLongitude(lat float64, elapsed time.Duration) float64 {
	if elapsed < 0 {
		elapsed = 0
	}
	cosLat := math.Cos(geo.Radians(lat))
	if cosLat <= 0 {
		cosLat = math.SmallestNonzeroFloat64
	}
	degrees := geo.Degrees(w.speed * elapsed.Seconds() / (geo.EarthRadiusMeters * cosLat))

	if w.direction == East {
		lon := w.box.SouthWest.Longitude + degrees
		return math.Min(lon, w.box.NorthEast.Longitude)
	}
	lon := w.box.NorthEast.Longitude - degrees
	return math.Max(lon, w.box.SouthWest.Longitude)
}

// ComposedLongitude samples the front's longitude at the representative
// latitude of every band, describing its curved position at one instant.
func (w *Wave) ComposedLongitude(elapsed time.Duration) (ComposedLongitude, error) {
	bands, err := w.Bands()
	if err != nil {
		return nil, err
	}
	composed := make(ComposedLongitude, 0, len(bands))
	for _, b := range bands {
		lat := b.Center()
		composed = append(composed, LongitudeSample{
			Latitude:  lat,
			Longitude: w.CurrentLongitude(lat, elapsed),
		})
	}
	return composed, nil
}

// HasBeenHit reports whether the front has passed the position: its
// longitude must lie between the edge the wave started from and the front's
// current longitude at that latitude, and the area must confirm true
// containment. Invalid positions are never hit.
func (w *Wave) HasBeenHit(area Area, pos geo.Position, now time.Time) bool {
	if !pos.IsValid() || area == nil || !area.Contains(pos) {
		return false
	}
	front := w.CurrentLongitude(pos.Latitude, w.Elapsed(now))
	if w.direction == East {
		return pos.Longitude <= front
	}
	return pos.Longitude >= front
}

// TimeBeforeHit returns how long until the front reaches the position, or
// ok=false for positions outside the area or invalid ones. Positions the
// front already passed report zero.
func (w *Wave) TimeBeforeHit(area Area, pos geo.Position, now time.Time) (time.Duration, bool) {
	if !pos.IsValid() || area == nil || !area.Contains(pos) {
		return 0, false
	}
	if w.HasBeenHit(area, pos, now) {
		return 0, true
	}
	front := w.CurrentLongitude(pos.Latitude, w.Elapsed(now))
	meters := geo.LongitudeDistance(pos.Latitude, front, pos.Longitude)
	return time.Duration(meters / w.speed * float64(time.Second)), true
}

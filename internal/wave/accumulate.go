package wave

import (
	"fmt"
	"time"

	"github.com/worldwidewaves/wave-engine/internal/geo"
)

// Mode selects how traversed area accumulates across ticks.
type Mode int

const (
	// ModeAdd appends each tick's newly traversed fragments and reports
	// them as an explicit delta. Cheap, but fragment seams stay visible.
	ModeAdd Mode = iota
	// ModeRecompose rebuilds the traversed set as one clean cut of the
	// base area each tick. More work, no seams, no delta.
	ModeRecompose
)

func (m Mode) String() string {
	if m == ModeRecompose {
		return "recompose"
	}
	return "add"
}

// ParseMode converts a configuration string to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "add", "ADD":
		return ModeAdd, nil
	case "recompose", "RECOMPOSE":
		return ModeRecompose, nil
	default:
		return ModeAdd, fmt.Errorf("unknown wave mode %q", s)
	}
}

// Polygons is one immutable snapshot of wave state. Snapshots are value
// objects owned by the caller: each Accumulate call returns a fresh one
// and superseded snapshots are simply discarded.
type Polygons struct {
	Timestamp          time.Time
	ReferenceLongitude float64
	Traversed          []geo.Polygon
	Remaining          []geo.Polygon
	// AddedTraversed is the delta of this tick in ModeAdd, nil in
	// ModeRecompose (full replacement).
	AddedTraversed []geo.Polygon
}

// Accumulate produces the next wave snapshot. In ModeAdd only the previous
// snapshot's remaining polygons are re-split: the front never reverses, so
// already-traversed fragments are settled and per-tick cost shrinks with
// the remaining region. The caller guarantees the event is running.
func Accumulate(w *Wave, base []geo.Polygon, last *Polygons, mode Mode, now time.Time) (*Polygons, error) {
	elapsed := w.Elapsed(now)
	composed, err := w.ComposedLongitude(elapsed)
	if err != nil {
		return nil, fmt.Errorf("compose wavefront: %w", err)
	}
	refLon := w.CurrentLongitude(w.box.LatitudeOfWidestPart(), elapsed)

	snap := &Polygons{Timestamp: now, ReferenceLongitude: refLon}

	if mode == ModeRecompose || last == nil {
		traversed, remaining := splitAll(base, composed, w.direction)
		snap.Traversed = traversed
		snap.Remaining = remaining
		if mode == ModeAdd {
			snap.AddedTraversed = traversed
		}
		return snap, nil
	}

	added, remaining := splitAll(last.Remaining, composed, w.direction)
	snap.Traversed = append(append([]geo.Polygon(nil), last.Traversed...), added...)
	snap.Remaining = remaining
	snap.AddedTraversed = added
	return snap, nil
}

func splitAll(polys []geo.Polygon, composed ComposedLongitude, d Direction) (traversed, remaining []geo.Polygon) {
	for _, p := range polys {
		left, right := Split(p, composed)
		tr, re := Classify(left, right, d)
		traversed = append(traversed, tr...)
		remaining = append(remaining, re...)
	}
	return traversed, remaining
}

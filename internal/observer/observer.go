// Package observer validates and reports raw observer positions. Bad GPS
// fixes are an expected part of a continuous observation stream, so every
// query degrades to a sentinel instead of failing: false validity, +Inf
// distance, nil position. Callers rely on this to keep sampling alive
// through corrupt upstream data.
package observer

import (
	"context"
	"log/slog"
	"math"
	"sync/atomic"

	"github.com/worldwidewaves/wave-engine/internal/geo"
)

// Source produces raw observer positions, or nil when none is available.
type Source interface {
	Current(ctx context.Context) (*geo.Position, error)
}

// IsValidPosition reports whether both coordinates are finite and in range.
func IsValidPosition(p geo.Position) bool {
	return p.IsValid()
}

// Distance returns the great-circle distance in meters between two
// positions. Either input being invalid yields +Inf: a sentinel, not an
// error, so one corrupt fix never aborts an observation stream.
func Distance(a, b geo.Position) float64 {
	if !a.IsValid() || !b.IsValid() {
		return math.Inf(1)
	}
	if a == b {
		return 0
	}
	return geo.Haversine(a, b)
}

// Observer reports validated positions from a location source and tracks a
// simple observing flag, independent of the wave engine's own ticking.
type Observer struct {
	source    Source
	logger    *slog.Logger
	observing atomic.Bool
}

// New creates an Observer over the given location source.
func New(source Source, logger *slog.Logger) *Observer {
	return &Observer{source: source, logger: logger}
}

// Current returns the source's current position, or nil when the source has
// none, errors, or reports an out-of-range fix.
func (o *Observer) Current(ctx context.Context) *geo.Position {
	if o.source == nil {
		return nil
	}
	pos, err := o.source.Current(ctx)
	if err != nil {
		o.logger.Warn("location source failed", "error", err)
		return nil
	}
	if pos == nil {
		return nil
	}
	if !pos.IsValid() {
		o.logger.Warn("discarding invalid position", "lat", pos.Latitude, "lon", pos.Longitude)
		return nil
	}
	return pos
}

// StartObservation flips the observing flag on.
func (o *Observer) StartObservation() {
	o.observing.Store(true)
}

// StopObservation flips the observing flag off.
func (o *Observer) StopObservation() {
	o.observing.Store(false)
}

// IsObserving reports the observation flag.
func (o *Observer) IsObserving() bool {
	return o.observing.Load()
}

// Static is a Source pinned to one configured position, used when the
// deployment observes from a fixed site.
type Static struct {
	pos geo.Position
}

// NewStatic creates a fixed-position source.
func NewStatic(pos geo.Position) *Static {
	return &Static{pos: pos}
}

// Current returns the configured position, or nil if it is invalid.
func (s *Static) Current(_ context.Context) (*geo.Position, error) {
	if !s.pos.IsValid() {
		return nil, nil
	}
	p := s.pos
	return &p, nil
}

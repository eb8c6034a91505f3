// Package sampler turns a continuous progression signal into discrete,
// bounded-rate wave snapshot emissions toward a rendering sink.
package sampler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/worldwidewaves/wave-engine/internal/geo"
	"github.com/worldwidewaves/wave-engine/internal/observability"
	"github.com/worldwidewaves/wave-engine/internal/wave"
)

// Renderer is the sink for produced snapshots.
type Renderer interface {
	// UpdateWavePolygons replaces the rendered traversed set.
	UpdateWavePolygons(polys []geo.Polygon, refresh bool)
	// AddWavePolygons appends polygons; isDone marks the terminal emission.
	AddWavePolygons(polys []geo.Polygon, isDone bool)
}

// Event reports the lifecycle state driving the sampler's state machine.
type Event interface {
	IsRunning() bool
	IsDone() bool
	StartTime() time.Time
}

// AreaSource supplies the immutable base polygons.
type AreaSource interface {
	Polygons() []geo.Polygon
}

// Sampler throttles progression updates to at most one accumulator pass
// per interval. Before the event runs it stays dormant; while running it
// emits one snapshot per tick; once done it emits the whole area as
// traversed and stops.
type Sampler struct {
	wave     *wave.Wave
	area     AreaSource
	event    Event
	renderer Renderer
	clock    clockwork.Clock
	interval time.Duration
	mode     wave.Mode
	logger   *slog.Logger
	metrics  *observability.Metrics

	lifecycle sync.Mutex // guards the subscription handle
	cancel    context.CancelFunc
	done      chan struct{}

	mu          sync.Mutex // guards snapshot state
	last        *wave.Polygons
	lastEmitted []geo.Polygon

	ready atomic.Bool
}

// New creates a Sampler. It holds no subscription until StartObservation.
func New(w *wave.Wave, area AreaSource, ev Event, renderer Renderer, clock clockwork.Clock, interval time.Duration, mode wave.Mode, logger *slog.Logger, metrics *observability.Metrics) *Sampler {
	return &Sampler{
		wave:     w,
		area:     area,
		event:    ev,
		renderer: renderer,
		clock:    clock,
		interval: interval,
		mode:     mode,
		logger:   logger,
		metrics:  metrics,
	}
}

// StartObservation cancels any running subscription and starts a new one.
// Restart resumes from whatever snapshot the sampler still holds; there is
// never more than one subscription against the rendering sink.
func (s *Sampler) StartObservation() {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()
	s.stopSubscriptionLocked()

	if bands, err := s.wave.Bands(); err == nil {
		s.metrics.BandCount.Set(float64(len(bands)))
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.cancel, s.done = cancel, done
	s.logger.Info("sampling started", "interval", s.interval, "mode", s.mode.String())
	go s.run(ctx, done)
}

// PauseObservation cancels the subscription, keeping the last snapshot so
// a later StartObservation resumes where sampling left off.
func (s *Sampler) PauseObservation() {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()
	if s.cancel != nil {
		s.logger.Info("sampling paused")
	}
	s.stopSubscriptionLocked()
}

// StopObservation cancels the subscription. The last emitted snapshot is
// not discarded.
func (s *Sampler) StopObservation() {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()
	if s.cancel != nil {
		s.logger.Info("sampling stopped")
	}
	s.stopSubscriptionLocked()
}

// IsObserving reports whether a sampling subscription is active.
func (s *Sampler) IsObserving() bool {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()
	return s.cancel != nil
}

// LastState returns the most recent snapshot, or nil before the first tick.
func (s *Sampler) LastState() *wave.Polygons {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// CheckReadiness returns nil once at least one snapshot has been emitted.
func (s *Sampler) CheckReadiness(_ context.Context) error {
	if !s.ready.Load() {
		return errors.New("sampler has not emitted any snapshot yet")
	}
	return nil
}

func (s *Sampler) stopSubscriptionLocked() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.cancel, s.done = nil, nil
}

func (s *Sampler) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	s.metrics.SamplerRunning.Set(1)
	defer s.metrics.SamplerRunning.Set(0)

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			if !s.tick() {
				return
			}
		}
	}
}

// tick runs one sampled progression step. Returns false once the terminal
// snapshot has been emitted.
func (s *Sampler) tick() bool {
	if s.event.IsDone() {
		s.emitDone()
		return false
	}
	if !s.event.IsRunning() {
		return true // soon or undefined: stay dormant
	}

	now := s.clock.Now()
	started := time.Now()
	snap, err := wave.Accumulate(s.wave, s.area.Polygons(), s.LastState(), s.mode, now)
	s.metrics.AccumulateDuration.Observe(time.Since(started).Seconds())
	if err != nil {
		s.metrics.AccumulateErrors.Inc()
		s.logger.Error("accumulate failed", "error", err)
		return true
	}
	s.metrics.TicksSampled.Inc()

	// A tick with no traversed polygons is a transient recomputation
	// glitch; re-emit the previous set rather than rendering a blank wave.
	if len(snap.Traversed) == 0 {
		s.mu.Lock()
		previous := s.lastEmitted
		s.mu.Unlock()
		if previous != nil {
			s.renderer.UpdateWavePolygons(previous, true)
			s.metrics.EmptyTicksRetained.Inc()
			s.metrics.SnapshotsEmitted.Inc()
		}
		return true
	}

	s.mu.Lock()
	s.last = snap
	s.lastEmitted = snap.Traversed
	s.mu.Unlock()

	s.renderer.UpdateWavePolygons(snap.Traversed, true)
	s.metrics.SnapshotsEmitted.Inc()
	s.metrics.TraversedFragments.Observe(float64(len(snap.Traversed)))
	s.ready.Store(true)
	return true
}

// emitDone pushes the entire area as traversed with the terminal flag.
func (s *Sampler) emitDone() {
	polys := s.area.Polygons()
	s.renderer.AddWavePolygons(polys, true)
	s.metrics.SnapshotsEmitted.Inc()
	s.ready.Store(true)

	s.mu.Lock()
	s.lastEmitted = polys
	s.mu.Unlock()

	s.logger.Info("wave done, terminal snapshot emitted", "polygons", len(polys))
}

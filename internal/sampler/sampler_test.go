package sampler

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worldwidewaves/wave-engine/internal/area"
	"github.com/worldwidewaves/wave-engine/internal/geo"
	"github.com/worldwidewaves/wave-engine/internal/observability"
	"github.com/worldwidewaves/wave-engine/internal/wave"
)

type renderCall struct {
	polys []geo.Polygon
	flag  bool
}

type mockRenderer struct {
	mu      sync.Mutex
	updates []renderCall
	adds    []renderCall
	emitted chan struct{}
}

func newMockRenderer() *mockRenderer {
	return &mockRenderer{emitted: make(chan struct{}, 64)}
}

func (r *mockRenderer) UpdateWavePolygons(polys []geo.Polygon, refresh bool) {
	r.mu.Lock()
	r.updates = append(r.updates, renderCall{polys: polys, flag: refresh})
	r.mu.Unlock()
	r.emitted <- struct{}{}
}

func (r *mockRenderer) AddWavePolygons(polys []geo.Polygon, isDone bool) {
	r.mu.Lock()
	r.adds = append(r.adds, renderCall{polys: polys, flag: isDone})
	r.mu.Unlock()
	r.emitted <- struct{}{}
}

func (r *mockRenderer) waitEmissions(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-r.emitted:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for emission %d of %d", i+1, n)
		}
	}
}

func (r *mockRenderer) updateCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.updates)
}

func (r *mockRenderer) addCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.adds)
}

type stubEvent struct {
	mu      sync.Mutex
	running bool
	done    bool
	start   time.Time
}

func (e *stubEvent) IsRunning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

func (e *stubEvent) IsDone() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.done
}

func (e *stubEvent) StartTime() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.start
}

func (e *stubEvent) set(running, done bool) {
	e.mu.Lock()
	e.running, e.done = running, done
	e.mu.Unlock()
}

const testInterval = time.Second

func newTestSampler(t *testing.T, mode wave.Mode) (*Sampler, *mockRenderer, *stubEvent, *clockwork.FakeClock) {
	t.Helper()

	a, err := area.New([]geo.Polygon{{
		{Latitude: 0, Longitude: 0},
		{Latitude: 0, Longitude: 1},
		{Latitude: 1, Longitude: 1},
		{Latitude: 1, Longitude: 0},
	}})
	require.NoError(t, err)

	start := time.Unix(1_700_000_000, 0)
	w, err := wave.New(10_000, wave.East, a.BoundingBox(), 250*time.Millisecond, start)
	require.NoError(t, err)

	clock := clockwork.NewFakeClockAt(start)
	renderer := newMockRenderer()
	event := &stubEvent{start: start}
	s := New(w, a, event, renderer, clock, testInterval,
		mode, discardLogger(), observability.NewMetricsForTesting())
	return s, renderer, event, clock
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSampler_EmitsOneSnapshotPerTick(t *testing.T) {
	s, renderer, event, clock := newTestSampler(t, wave.ModeAdd)
	event.set(true, false)

	s.StartObservation()
	defer s.StopObservation()
	assert.True(t, s.IsObserving())
	assert.Error(t, s.CheckReadiness(context.Background()))

	clock.BlockUntil(1)
	for i := 0; i < 3; i++ {
		clock.Advance(testInterval)
		renderer.waitEmissions(t, 1)
	}

	assert.Equal(t, 3, renderer.updateCount())
	assert.Zero(t, renderer.addCount())
	renderer.mu.Lock()
	for _, call := range renderer.updates {
		assert.True(t, call.flag, "every tick emission carries refresh=true")
		assert.NotEmpty(t, call.polys)
	}
	renderer.mu.Unlock()

	assert.NoError(t, s.CheckReadiness(context.Background()))
	require.NotNil(t, s.LastState())
	assert.Equal(t, clock.Now(), s.LastState().Timestamp)
}

func TestSampler_DormantUntilEventRuns(t *testing.T) {
	s, renderer, event, clock := newTestSampler(t, wave.ModeAdd)

	s.StartObservation()
	defer s.StopObservation()

	clock.BlockUntil(1)
	clock.Advance(testInterval)
	clock.Advance(testInterval)
	time.Sleep(20 * time.Millisecond)

	assert.Zero(t, renderer.updateCount(), "no emissions while the event has not started")
	assert.Error(t, s.CheckReadiness(context.Background()))
	assert.Nil(t, s.LastState())

	event.set(true, false)
	clock.Advance(testInterval)
	renderer.waitEmissions(t, 1)
	assert.Equal(t, 1, renderer.updateCount())
}

func TestSampler_DoneEmitsTerminalSnapshotOnce(t *testing.T) {
	s, renderer, event, clock := newTestSampler(t, wave.ModeAdd)
	event.set(false, true)

	s.StartObservation()
	defer s.StopObservation()

	clock.BlockUntil(1)
	clock.Advance(testInterval)
	renderer.waitEmissions(t, 1)

	require.Equal(t, 1, renderer.addCount())
	renderer.mu.Lock()
	terminal := renderer.adds[0]
	renderer.mu.Unlock()
	assert.True(t, terminal.flag, "terminal emission carries isDone=true")
	assert.Len(t, terminal.polys, 1, "entire area emitted as traversed")
	assert.NoError(t, s.CheckReadiness(context.Background()))

	// The loop has stopped; further ticks produce nothing.
	clock.Advance(testInterval)
	clock.Advance(testInterval)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, renderer.addCount())
	assert.Zero(t, renderer.updateCount())
}

func TestSampler_RestartKeepsSingleSubscriptionAndState(t *testing.T) {
	s, renderer, event, clock := newTestSampler(t, wave.ModeAdd)
	event.set(true, false)

	s.StartObservation()
	clock.BlockUntil(1)
	clock.Advance(testInterval)
	renderer.waitEmissions(t, 1)
	first := s.LastState()
	require.NotNil(t, first)

	// Restart replaces the previous subscription without duplicating it.
	s.StartObservation()
	defer s.StopObservation()
	clock.BlockUntil(1)
	clock.Advance(testInterval)
	renderer.waitEmissions(t, 1)

	assert.Equal(t, 2, renderer.updateCount(), "one emission per tick across restart")
	second := s.LastState()
	require.NotNil(t, second)
	assert.GreaterOrEqual(t, geo.TotalArea(second.Traversed), geo.TotalArea(first.Traversed),
		"restart resumes from the retained snapshot")
}

func TestSampler_PauseRetainsLastState(t *testing.T) {
	s, renderer, event, clock := newTestSampler(t, wave.ModeAdd)
	event.set(true, false)

	s.StartObservation()
	clock.BlockUntil(1)
	clock.Advance(testInterval)
	renderer.waitEmissions(t, 1)

	s.PauseObservation()
	assert.False(t, s.IsObserving())
	assert.NotNil(t, s.LastState())

	clock.Advance(testInterval)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, renderer.updateCount(), "no emissions while paused")
}

func TestSampler_EmptyTickRetainsPreviousEmission(t *testing.T) {
	// Clock sits exactly at the wave start, so the accumulator produces an
	// empty traversed set. A previously emitted set must be re-pushed.
	s, renderer, event, _ := newTestSampler(t, wave.ModeRecompose)
	event.set(true, false)

	previous := []geo.Polygon{{
		{Latitude: 0, Longitude: 0},
		{Latitude: 0, Longitude: 0.1},
		{Latitude: 1, Longitude: 0.1},
		{Latitude: 1, Longitude: 0},
	}}
	s.mu.Lock()
	s.lastEmitted = previous
	s.mu.Unlock()

	assert.True(t, s.tick())
	renderer.waitEmissions(t, 1)

	require.Equal(t, 1, renderer.updateCount())
	renderer.mu.Lock()
	assert.Equal(t, previous, renderer.updates[0].polys)
	renderer.mu.Unlock()
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.EmptyTicksRetained))
}

func TestSampler_EmptyTickWithoutHistoryEmitsNothing(t *testing.T) {
	s, renderer, event, _ := newTestSampler(t, wave.ModeAdd)
	event.set(true, false)

	assert.True(t, s.tick())
	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, renderer.updateCount())
	assert.Error(t, s.CheckReadiness(context.Background()))
}

func TestSampler_StopIsIdempotent(t *testing.T) {
	s, _, _, _ := newTestSampler(t, wave.ModeAdd)
	s.StopObservation()
	s.StopObservation()
	assert.False(t, s.IsObserving())
}

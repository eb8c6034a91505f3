package httpapi_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worldwidewaves/wave-engine/internal/adapter/httpapi"
	"github.com/worldwidewaves/wave-engine/internal/area"
	"github.com/worldwidewaves/wave-engine/internal/geo"
	"github.com/worldwidewaves/wave-engine/internal/wave"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type mockState struct {
	snap *wave.Polygons
}

func (m *mockState) LastState() *wave.Polygons { return m.snap }

var testStart = time.Unix(1_700_000_000, 0)

func newTestServer(t *testing.T, readyErr error, snap *wave.Polygons, elapsed time.Duration) *httpapi.Server {
	t.Helper()

	a, err := area.New([]geo.Polygon{{
		{Latitude: 0, Longitude: 0},
		{Latitude: 0, Longitude: 1},
		{Latitude: 1, Longitude: 1},
		{Latitude: 1, Longitude: 0},
	}})
	require.NoError(t, err)

	w, err := wave.New(10_000, wave.East, a.BoundingBox(), 250*time.Millisecond, testStart)
	require.NoError(t, err)

	clock := clockwork.NewFakeClockAt(testStart.Add(elapsed))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return httpapi.NewServer(":0", w, a, &mockState{snap: snap}, &mockReadiness{err: readyErr}, clock, logger)
}

func get(t *testing.T, srv *httpapi.Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	srv.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealthzReturns200(t *testing.T) {
	rec := get(t, newTestServer(t, nil, nil, 0), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode(t, rec)["status"])
}

func TestReadyzReflectsChecker(t *testing.T) {
	rec := get(t, newTestServer(t, nil, nil, 0), "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = get(t, newTestServer(t, fmt.Errorf("not ready yet"), nil, 0), "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "not ready yet", decode(t, rec)["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	rec := get(t, newTestServer(t, nil, nil, 0), "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestWaveDuration(t *testing.T) {
	rec := get(t, newTestServer(t, nil, nil, 0), "/wave/duration")
	assert.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "east", body["direction"])
	assert.Equal(t, 10_000.0, body["speed_mps"])
	assert.Equal(t, testStart.UTC().Format(time.RFC3339), body["start"])
	assert.InDelta(t, 11.1, body["duration_seconds"].(float64), 0.1)
}

func TestWaveETA(t *testing.T) {
	srv := newTestServer(t, nil, nil, 0)

	rec := get(t, srv, "/wave/eta?lat=0.5&lon=0.5")
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.False(t, body["hit"].(bool))
	assert.Greater(t, body["eta_seconds"].(float64), 0.0)

	// Past the whole box: everything has been hit, ETA collapses to zero.
	done := newTestServer(t, nil, nil, time.Hour)
	rec = get(t, done, "/wave/eta?lat=0.5&lon=0.5")
	assert.Equal(t, http.StatusOK, rec.Code)
	body = decode(t, rec)
	assert.True(t, body["hit"].(bool))
	assert.Zero(t, body["eta_seconds"].(float64))
}

func TestWaveETA_OutsideArea(t *testing.T) {
	rec := get(t, newTestServer(t, nil, nil, 0), "/wave/eta?lat=5&lon=5")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWaveETA_BadParams(t *testing.T) {
	srv := newTestServer(t, nil, nil, 0)
	for _, path := range []string{
		"/wave/eta",
		"/wave/eta?lat=abc&lon=0.5",
		"/wave/eta?lat=91&lon=0.5",
	} {
		rec := get(t, srv, path)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
}

func TestWaveHit(t *testing.T) {
	rec := get(t, newTestServer(t, nil, nil, 0), "/wave/hit?lat=0.5&lon=0.99")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode(t, rec)["hit"].(bool))

	rec = get(t, newTestServer(t, nil, nil, time.Hour), "/wave/hit?lat=0.5&lon=0.99")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode(t, rec)["hit"].(bool))
}

func TestWaveState(t *testing.T) {
	rec := get(t, newTestServer(t, nil, nil, 0), "/wave/state")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	snap := &wave.Polygons{
		Timestamp:          testStart.Add(2 * time.Second),
		ReferenceLongitude: 0.2,
		Traversed: []geo.Polygon{{
			{Latitude: 0, Longitude: 0},
			{Latitude: 0, Longitude: 0.2},
			{Latitude: 1, Longitude: 0.2},
			{Latitude: 1, Longitude: 0},
		}},
	}
	rec = get(t, newTestServer(t, nil, snap, 2*time.Second), "/wave/state")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/geo+json", rec.Header().Get("Content-Type"))

	body := decode(t, rec)
	assert.Equal(t, "FeatureCollection", body["type"])

	polys, err := geo.UnmarshalPolygons(rec.Body.Bytes())
	require.NoError(t, err)
	require.Len(t, polys, 1)
	assert.InDelta(t, 0.2, geo.TotalArea(polys), 1e-9)
}

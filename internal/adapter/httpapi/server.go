// Package httpapi exposes health, metrics, and wave query endpoints.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/worldwidewaves/wave-engine/internal/geo"
	"github.com/worldwidewaves/wave-engine/internal/wave"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// StateProvider hands out the latest wave snapshot.
type StateProvider interface {
	LastState() *wave.Polygons
}

// Server exposes health, readiness, metrics, and wave query HTTP endpoints.
type Server struct {
	httpServer *http.Server
	wave       *wave.Wave
	area       wave.Area
	state      StateProvider
	clock      clockwork.Clock
	logger     *slog.Logger
}

// NewServer wires the routes. The wave endpoints answer from the wave model
// and the sampler's last snapshot; /metrics serves the default Prometheus
// registry.
func NewServer(addr string, w *wave.Wave, area wave.Area, state StateProvider, ready ReadinessChecker, clock clockwork.Clock, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		wave:   w,
		area:   area,
		state:  state,
		clock:  clock,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /wave/duration", s.handleDuration)
	mux.HandleFunc("GET /wave/eta", s.handleETA)
	mux.HandleFunc("GET /wave/hit", s.handleHit)
	mux.HandleFunc("GET /wave/state", s.handleState)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func (s *Server) handleDuration(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"duration_seconds": s.wave.Duration().Seconds(),
		"speed_mps":        s.wave.Speed(),
		"direction":        s.wave.Direction().String(),
		"start":            s.wave.Start().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleETA(w http.ResponseWriter, r *http.Request) {
	pos, ok := parsePosition(w, r)
	if !ok {
		return
	}

	eta, ok := s.wave.TimeBeforeHit(s.area, pos, s.clock.Now())
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "position is outside the event area",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"eta_seconds": eta.Seconds(),
		"hit":         eta == 0,
	})
}

func (s *Server) handleHit(w http.ResponseWriter, r *http.Request) {
	pos, ok := parsePosition(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"hit": s.wave.HasBeenHit(s.area, pos, s.clock.Now()),
	})
}

// handleState serves the latest traversed set as a GeoJSON
// FeatureCollection, or 503 before the first snapshot exists.
func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	snap := s.state.LastState()
	if snap == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "no wave snapshot produced yet",
		})
		return
	}

	doc, err := geo.MarshalFeatureCollection(snap.Traversed, map[string]any{
		"timestamp":           snap.Timestamp.UTC().Format(time.RFC3339),
		"reference_longitude": snap.ReferenceLongitude,
	})
	if err != nil {
		s.logger.Error("marshal wave state", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to encode wave state",
		})
		return
	}

	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	w.Write(doc) //nolint:errcheck // best-effort response body
}

// parsePosition reads lat/lon query parameters. On failure it writes a 400
// and returns ok=false.
func parsePosition(w http.ResponseWriter, r *http.Request) (geo.Position, bool) {
	lat, errLat := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lon, errLon := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if errLat != nil || errLon != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "lat and lon query parameters are required numbers",
		})
		return geo.Position{}, false
	}
	pos := geo.Position{Latitude: lat, Longitude: lon}
	if !pos.IsValid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "lat or lon out of range",
		})
		return geo.Position{}, false
	}
	return pos, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}

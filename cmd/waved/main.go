// Command waved runs the wave engine service: it sweeps the configured
// event area, samples wave snapshots, and serves wave queries over HTTP.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	"github.com/worldwidewaves/wave-engine/internal/adapter/httpapi"
	kafkaadapter "github.com/worldwidewaves/wave-engine/internal/adapter/kafka"
	"github.com/worldwidewaves/wave-engine/internal/area"
	"github.com/worldwidewaves/wave-engine/internal/config"
	"github.com/worldwidewaves/wave-engine/internal/event"
	"github.com/worldwidewaves/wave-engine/internal/geo"
	"github.com/worldwidewaves/wave-engine/internal/observability"
	"github.com/worldwidewaves/wave-engine/internal/observer"
	"github.com/worldwidewaves/wave-engine/internal/sampler"
	"github.com/worldwidewaves/wave-engine/internal/wave"
)

// logRenderer is the fallback snapshot sink when Kafka publishing is
// disabled: snapshots are only observable through /wave/state and logs.
type logRenderer struct {
	logger *slog.Logger
}

func (r *logRenderer) UpdateWavePolygons(polys []geo.Polygon, refresh bool) {
	r.logger.Debug("wave snapshot", "polygons", len(polys), "refresh", refresh)
}

func (r *logRenderer) AddWavePolygons(polys []geo.Polygon, isDone bool) {
	r.logger.Info("wave snapshot appended", "polygons", len(polys), "is_done", isDone)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Log.Level, cfg.Log.Format)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	a, err := area.Load(cfg.Area.File)
	if err != nil {
		logger.Error("failed to load event area", "file", cfg.Area.File, "error", err)
		os.Exit(1)
	}

	start, err := cfg.Event.StartTime()
	if err != nil {
		logger.Error("failed to parse event start", "error", err)
		os.Exit(1)
	}
	if start.IsZero() {
		start = clock.Now()
		logger.Info("no event start configured, starting now", "start", start)
	}

	direction, _ := wave.ParseDirection(cfg.Wave.Direction)
	mode, _ := wave.ParseMode(cfg.Wave.Mode)

	w, err := wave.New(cfg.Wave.SpeedMPS, direction, a.BoundingBox(), cfg.Wave.RefreshInterval, start)
	if err != nil {
		logger.Error("failed to build wave", "error", err)
		os.Exit(1)
	}
	logger.Info("wave configured",
		"direction", direction.String(),
		"speed_mps", w.Speed(),
		"duration", w.Duration(),
		"start", start)

	ev := event.NewScheduled(start, w.Duration(), clock)

	var renderer sampler.Renderer
	var publisher *kafkaadapter.Publisher
	if cfg.Kafka.Enabled {
		publisher = kafkaadapter.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		renderer = publisher
		logger.Info("kafka snapshot publishing enabled", "topic", cfg.Kafka.Topic)
	} else {
		renderer = &logRenderer{logger: logger}
		logger.Info("kafka snapshot publishing disabled")
	}

	s := sampler.New(w, a, ev, renderer, clock, cfg.Sample.Interval, mode, logger, metrics)

	if cfg.Observer.Enabled {
		pos := geo.Position{Latitude: cfg.Observer.Lat, Longitude: cfg.Observer.Lon}
		obs := observer.New(observer.NewStatic(pos), logger)
		obs.StartObservation()
		if eta, ok := w.TimeBeforeHit(a, pos, clock.Now()); ok {
			logger.Info("observer pinned", "lat", pos.Latitude, "lon", pos.Longitude, "eta", eta)
		} else {
			logger.Warn("observer position is outside the event area",
				"lat", pos.Latitude, "lon", pos.Longitude)
		}
	}

	srv := httpapi.NewServer(cfg.HTTP.Addr, w, a, s, s, clock, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	s.StartObservation()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
	defer cancel()

	s.StopObservation()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// wave sampling pipeline.
type Metrics struct {
	TicksSampled       prometheus.Counter
	SnapshotsEmitted   prometheus.Counter
	EmptyTicksRetained prometheus.Counter
	AccumulateErrors   prometheus.Counter
	SamplerRunning     prometheus.Gauge
	BandCount          prometheus.Gauge

	AccumulateDuration prometheus.Histogram
	TraversedFragments prometheus.Histogram
}

// NewMetrics creates and registers all sampler metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.TicksSampled,
		m.SnapshotsEmitted,
		m.EmptyTicksRetained,
		m.AccumulateErrors,
		m.SamplerRunning,
		m.BandCount,
		m.AccumulateDuration,
		m.TraversedFragments,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		TicksSampled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wave_engine",
			Name:      "ticks_sampled_total",
			Help:      "Total progression ticks that reached the accumulator after throttling.",
		}),
		SnapshotsEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wave_engine",
			Name:      "snapshots_emitted_total",
			Help:      "Total wave polygon snapshots pushed to the rendering sink.",
		}),
		EmptyTicksRetained: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wave_engine",
			Name:      "empty_ticks_retained_total",
			Help:      "Ticks that produced no traversed polygons and re-emitted the previous set.",
		}),
		AccumulateErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wave_engine",
			Name:      "accumulate_errors_total",
			Help:      "Failures producing a wave snapshot.",
		}),
		SamplerRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "wave_engine",
			Name:      "sampler_running",
			Help:      "1 while a sampling subscription is active, 0 otherwise.",
		}),
		BandCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "wave_engine",
			Name:      "band_count",
			Help:      "Number of latitude bands in the active wave configuration.",
		}),
		AccumulateDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "wave_engine",
			Name:      "accumulate_duration_seconds",
			Help:      "Duration of one split/accumulate pass.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		TraversedFragments: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "wave_engine",
			Name:      "traversed_fragments",
			Help:      "Number of traversed polygon fragments per emitted snapshot.",
			Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250},
		}),
	}
}

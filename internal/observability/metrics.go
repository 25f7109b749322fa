package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "dengue_dashboard"

// Metrics holds the Prometheus counters, histograms, and gauges for the dashboard.
type Metrics struct {
	Loads         *prometheus.CounterVec // labels: outcome={success,error}
	LoadDuration  prometheus.Histogram
	SourceFetch   *prometheus.HistogramVec // labels: dataset
	DatasetLoaded prometheus.Gauge

	// Geometry metrics.
	GeometryRequests *prometheus.CounterVec // labels: level={UF,MUN}, outcome={success,error,stale}
	GeometryCache    *prometheus.CounterVec // labels: result={hit,miss}
	FeatureMatches   *prometheus.CounterVec // labels: level, strategy={code,name,unresolved}
	StaleResponses   prometheus.Counter

	SnapshotMessages prometheus.Counter
}

// NewMetrics creates and registers all dashboard metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics(true)

	prometheus.MustRegister(
		m.Loads,
		m.LoadDuration,
		m.SourceFetch,
		m.DatasetLoaded,
		m.GeometryRequests,
		m.GeometryCache,
		m.FeatureMatches,
		m.StaleResponses,
		m.SnapshotMessages,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics(false)
}

func newMetrics(withHelp bool) *Metrics {
	help := func(s string) string {
		if withHelp {
			return s
		}
		return ""
	}
	return &Metrics{
		Loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loads_total",
			Help:      help("Dataset loads by outcome."),
		}, []string{"outcome"}),
		LoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "load_duration_seconds",
			Help:      help("Duration of a complete fetch, parse and index cycle."),
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		SourceFetch: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "source_fetch_duration_seconds",
			Help:      help("Duration of a single export fetch."),
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}, []string{"dataset"}),
		DatasetLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_loaded",
			Help:      help("1 when a dataset is loaded and served, 0 otherwise."),
		}),
		GeometryRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geometry_requests_total",
			Help:      help("Map layer requests by level and outcome."),
		}, []string{"level", "outcome"}),
		GeometryCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geometry_cache_total",
			Help:      help("Geometry cache lookups by result."),
		}, []string{"result"}),
		FeatureMatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feature_matches_total",
			Help:      help("Map features by level and matching strategy."),
		}, []string{"level", "strategy"}),
		StaleResponses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_responses_total",
			Help:      help("Geometry responses discarded because a newer request was issued."),
		}),
		SnapshotMessages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_messages_total",
			Help:      help("Snapshot messages written to Kafka."),
		}),
	}
}

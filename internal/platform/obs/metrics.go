package obs

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the Prometheus instruments for the distance maintenance
// engine and the route planner.
type Metrics struct {
	DistanceUpserts  prometheus.Counter
	DistanceDeletes  prometheus.Counter
	IndexWriteErrors prometheus.Counter
	RebuildRuns      prometheus.Counter
	RebuildSkipped   prometheus.Counter
	RebuildDuration  prometheus.Histogram

	GeocodeCacheHits   prometheus.Counter
	GeocodeCacheMisses prometheus.Counter
	GeocodeFailures    prometheus.Counter

	PlansBuilt    prometheus.Counter
	PlanErrors    prometheus.Counter
	IndexFallback prometheus.Counter
}

// NewMetrics registers the service metrics against the provided registerer,
// defaulting to the global Prometheus registry when nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		DistanceUpserts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "distance_index_upserts_total",
			Help: "Distance index rows upserted.",
		}),
		DistanceDeletes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "distance_index_deletes_total",
			Help: "Distance index rows deleted on entity removal.",
		}),
		IndexWriteErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "distance_index_write_errors_total",
			Help: "Distance index writes skipped due to errors.",
		}),
		RebuildRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "distance_index_rebuilds_total",
			Help: "Full distance index rebuilds completed.",
		}),
		RebuildSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "distance_index_rebuilds_skipped_total",
			Help: "Rebuild requests skipped because one was already in flight.",
		}),
		RebuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "distance_index_rebuild_duration_seconds",
			Help:    "Full rebuild latency in seconds.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		GeocodeCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "geocode_cache_hits_total",
			Help: "Geocode lookups served from the cache.",
		}),
		GeocodeCacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "geocode_cache_misses_total",
			Help: "Geocode lookups that reached the upstream service.",
		}),
		GeocodeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "geocode_failures_total",
			Help: "Geocode calls that failed and left a sentinel position.",
		}),
		PlansBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "distribution_plans_built_total",
			Help: "Distribution plans produced by the route planner.",
		}),
		PlanErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "distribution_plan_errors_total",
			Help: "Contract/date combinations that failed to produce a plan.",
		}),
		IndexFallback: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "distance_lookup_fallbacks_total",
			Help: "Route planner distance lookups that missed the index and fell back to haversine.",
		}),
	}

	reg.MustRegister(
		m.DistanceUpserts, m.DistanceDeletes, m.IndexWriteErrors,
		m.RebuildRuns, m.RebuildSkipped, m.RebuildDuration,
		m.GeocodeCacheHits, m.GeocodeCacheMisses, m.GeocodeFailures,
		m.PlansBuilt, m.PlanErrors, m.IndexFallback,
	)

	return m
}

// NopMetrics returns instruments bound to a throwaway registry, for tests
// and for callers that do not expose /metrics.
func NopMetrics() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}

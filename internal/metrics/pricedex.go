package metrics

import "github.com/prometheus/client_golang/prometheus"

// Namespace prefixes every pricedex metric.
const Namespace = "pricedex"

// Import Prometheus metrics.
var (
	ImportJobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "import_jobs_total",
			Help:      "Finished import jobs by final status",
		},
		[]string{"status"},
	)

	ImportRowsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "import_rows_total",
			Help:      "Imported rows by outcome",
		},
		[]string{"outcome"}, // "indexed" / "failed" / "skipped"
	)

	ImportJobDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "import_job_duration_seconds",
			Help:      "Import job duration in seconds",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
		},
	)
)

// Search Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "search_requests_total",
			Help:      "Search requests by serving mode",
		},
		[]string{"mode"},
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "search_duration_seconds",
			Help:      "Search duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"mode"},
	)

	SearchFallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "search_fallbacks_total",
			Help:      "Searches answered from the corpus store, by reason",
		},
		[]string{"reason"}, // "error" / "empty"
	)
)

// AdvisorRequestsTotal counts column advisor calls.
var AdvisorRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "advisor_requests_total",
		Help:      "Column advisor requests by status",
	},
	[]string{"model", "status"},
)

var appMetricsRegistered bool

// RegisterAppMetrics registers HTTP, import, search and advisor metrics.
// Must be called once from main; repeated calls are no-ops.
func RegisterAppMetrics() {
	if appMetricsRegistered {
		return
	}
	registerHTTPMetrics()
	prometheus.MustRegister(ImportJobsTotal)
	prometheus.MustRegister(ImportRowsTotal)
	prometheus.MustRegister(ImportJobDuration)
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(SearchFallbacksTotal)
	prometheus.MustRegister(AdvisorRequestsTotal)
	appMetricsRegistered = true
}

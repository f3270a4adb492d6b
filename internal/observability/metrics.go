package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ETLRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "etl_runs_total",
			Help: "Total number of ETL runs by outcome",
		},
		[]string{"status"},
	)

	ETLRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "etl_run_duration_seconds",
			Help:    "Wall time of a full ETL run in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		},
	)

	ETLPhaseDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "etl_phase_duration_seconds",
			Help:    "Wall time of each ETL phase in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"phase"}, // "readiness", "schema", "extract", "map", "load"
	)

	ETLRowsExtracted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "etl_rows_extracted_total",
			Help: "Total number of source rows extracted",
		},
		[]string{"table"},
	)

	ETLGraphWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "etl_graph_writes_total",
			Help: "Total number of graph upserts applied",
		},
		[]string{"kind", "type"}, // kind: "node" | "edge"
	)

	ETLDataQualityIssues = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "etl_data_quality_issues_total",
			Help: "Source data problems that aborted an ETL run",
		},
		[]string{"stage", "issue", "entity"},
	)

	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_requests_total",
			Help: "Total number of recommendation requests",
		},
		[]string{"strategy", "status"},
	)

	RecommendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommend_duration_seconds",
			Help:    "Duration of recommendation traversals in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"strategy"},
	)

	GraphBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "graph_breaker_state",
			Help: "Graph read circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

func RecordETLRun(status string, d time.Duration) {
	ETLRuns.WithLabelValues(status).Inc()
	ETLRunDuration.Observe(d.Seconds())
}

func RecordETLPhase(phase string, d time.Duration) {
	ETLPhaseDuration.WithLabelValues(phase).Observe(d.Seconds())
}

func RecordRecommendation(strategy string, err error, d time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	RecommendRequests.WithLabelValues(strategy, status).Inc()
	RecommendDuration.WithLabelValues(strategy).Observe(d.Seconds())
}

func RecordHTTPRequest(method, route string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the various metrics used for monitoring the console.
// It covers API calls, list view fetches and mutations, and the roster
// mirror runs and database queries.
type Metrics struct {
	APIRequestDuration *prometheus.HistogramVec
	Fetches            *prometheus.CounterVec
	Mutations          *prometheus.CounterVec
	Runs               *prometheus.CounterVec
	ItemsMirrored      *prometheus.CounterVec
	LastSuccessfulRun  *prometheus.GaugeVec
	RunDuration        *prometheus.HistogramVec
	InvalidPhones      prometheus.Counter
	DBQueryDuration    *prometheus.HistogramVec
}

// NewMetrics creates a new Metrics instance with the provided Registerer.
//
// Parameters:
//   - reg: A prometheus.Registerer used to register the metrics.
//
// Returns:
//   - A pointer to the newly created Metrics instance.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	metrics := &Metrics{
		APIRequestDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "roster_api_request_duration_seconds",
			Help:    "Duration of backend API calls.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "outcome"}),
		Fetches: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "roster_view_fetches_total",
			Help: "List view fetches by outcome: applied, stale or failed.",
		}, []string{"view", "outcome"}),
		Mutations: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "roster_view_mutations_total",
			Help: "Create, update and delete operations issued from list views.",
		}, []string{"view", "operation", "status"}),
		Runs: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "roster_mirror_runs_total",
			Help: "Total times the mirror has successfully or unsuccessfully completed its full cycle.",
		}, []string{"status"}),
		ItemsMirrored: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "roster_mirror_items_total",
			Help: "Total number of mirrored items",
		}, []string{"type"}),
		LastSuccessfulRun: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Name: "roster_mirror_last_successful_run_timestamp",
			Help: "Last time when run was successfully",
		}, []string{"type"}),
		RunDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name: "roster_mirror_run_duration_seconds",
			Help: "Measures how long it takes for a full mirror cycle to complete",
		}, []string{"type"}),
		InvalidPhones: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "roster_mirror_invalid_phones_total",
			Help: "Total number of mirrored employees whose phone number failed validation.",
		}),
		DBQueryDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "roster_db_query_duration_seconds",
			Help:    "Duration of database queries.",
			Buckets: prometheus.DefBuckets,
		}, []string{"query_type"}), // query_type: 'get_employee', 'upsert_division'
	}

	metrics.Runs.WithLabelValues("success")
	metrics.Runs.WithLabelValues("failure")

	return metrics
}

// NewNopMetrics returns metrics registered on a throwaway registry.
func NewNopMetrics() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}

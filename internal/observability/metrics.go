package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "matchday"

var (
	// WorkflowDispatchTotal counts analysis dispatches by transport and outcome.
	WorkflowDispatchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "workflow_dispatch_total",
			Help:      "Total number of analysis workflow dispatches",
		},
		[]string{"mode", "status"},
	)

	// WorkflowDispatchDuration measures how long the transport call took.
	WorkflowDispatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "workflow_dispatch_duration_seconds",
			Help:      "Duration of analysis workflow dispatches in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"mode"},
	)

	// AnalysisCallbackTotal counts workflow callbacks by kind and outcome.
	AnalysisCallbackTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "analysis_callback_total",
			Help:      "Total number of analysis callbacks received",
		},
		[]string{"kind", "outcome"},
	)

	// DashboardCacheTotal counts dashboard reads by cache result.
	DashboardCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "dashboard_cache_total",
			Help:      "Dashboard reads split by cache hit or miss",
		},
		[]string{"result"},
	)
)

// RecordDispatch records one workflow dispatch.
func RecordDispatch(mode, status string, seconds float64) {
	WorkflowDispatchTotal.WithLabelValues(mode, status).Inc()
	WorkflowDispatchDuration.WithLabelValues(mode).Observe(seconds)
}

// RecordCallback records one callback from the workflow engine.
func RecordCallback(kind, outcome string) {
	AnalysisCallbackTotal.WithLabelValues(kind, outcome).Inc()
}

// RecordDashboardCache records whether a dashboard read was served from cache.
func RecordDashboardCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	DashboardCacheTotal.WithLabelValues(result).Inc()
}

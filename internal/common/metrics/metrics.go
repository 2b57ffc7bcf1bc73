// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QueriesSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "query_workflows_submitted_total",
			Help: "Total number of query workflows started",
		},
		[]string{"intent"},
	)

	WorkflowTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "query_workflow_transitions_total",
			Help: "Total number of workflow state transitions",
		},
		[]string{"step"},
	)

	WorkflowsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "query_workflows_failed_total",
			Help: "Total number of workflows that terminated in FAILED",
		},
		[]string{"error_code"},
	)

	WorkflowDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "query_workflow_duration_seconds",
			Help: "Duration of workflow execution in seconds",
		},
		[]string{"intent"},
	)

	AgentFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "data_agent_failures_total",
			Help: "Total number of data agent fetch failures",
		},
		[]string{"agent", "error_code"},
	)

	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "result_cache_hits_total",
			Help: "Total number of result cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "result_cache_misses_total",
			Help: "Total number of result cache misses",
		},
	)

	CacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "result_cache_evictions_total",
			Help: "Total number of result cache evictions",
		},
	)
)

// internal/common/observability/observer.go
package observability

import (
	"airquality-agent/internal/common/metrics"
)

// Observer is the instrumentation seam the core calls at defined points.
// Core packages never touch process-wide counters directly; whoever wires
// the engine decides whether observations land in Prometheus, OTel, a test
// recorder or nowhere.
type Observer interface {
	StepTransition(step string)
	WorkflowFailed(errorCode string)
	CacheHit()
	CacheMiss()
	CacheEviction()
	AgentFailure(agent, errorCode string)
}

// NoopObserver discards all observations.
type NoopObserver struct{}

func (NoopObserver) StepTransition(string)    {}
func (NoopObserver) WorkflowFailed(string)    {}
func (NoopObserver) CacheHit()                {}
func (NoopObserver) CacheMiss()               {}
func (NoopObserver) CacheEviction()           {}
func (NoopObserver) AgentFailure(_, _ string) {}

// PrometheusObserver forwards observations to the shared Prometheus
// collectors in internal/common/metrics.
type PrometheusObserver struct{}

func (PrometheusObserver) StepTransition(step string) {
	metrics.WorkflowTransitions.WithLabelValues(step).Inc()
}

func (PrometheusObserver) WorkflowFailed(errorCode string) {
	metrics.WorkflowsFailed.WithLabelValues(errorCode).Inc()
}

func (PrometheusObserver) CacheHit() {
	metrics.CacheHits.Inc()
}

func (PrometheusObserver) CacheMiss() {
	metrics.CacheMisses.Inc()
}

func (PrometheusObserver) CacheEviction() {
	metrics.CacheEvictions.Inc()
}

func (PrometheusObserver) AgentFailure(agent, errorCode string) {
	metrics.AgentFailures.WithLabelValues(agent, errorCode).Inc()
}

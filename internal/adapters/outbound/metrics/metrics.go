// Package metrics records evaluation statistics in a Prometheus registry
// that can be written to a node-exporter textfile.
package metrics

import (
	"time"

	"github.com/complykit/complykit/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder implements domain.EvaluationMetrics.
type Recorder struct {
	registry *prometheus.Registry

	evaluationsTotal   prometheus.Counter
	failedTotal        prometheus.Counter
	violationsTotal    *prometheus.CounterVec
	resolvedTotal      prometheus.Counter
	issuesTotal        prometheus.Counter
	evaluationDuration prometheus.Histogram
}

// New creates a recorder with its own registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		evaluationsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "complykit_evaluations_total",
				Help: "Number of evaluation runs.",
			},
		),
		failedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "complykit_evaluations_failed_total",
				Help: "Number of evaluation runs with violations at or above the fail_on severity.",
			},
		),
		violationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "complykit_violations_total",
				Help: "Number of unresolved rule violations by rule and severity.",
			},
			[]string{"rule", "severity"},
		),
		resolvedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "complykit_violations_resolved_total",
				Help: "Number of rule violations matched by a resolution.",
			},
		),
		issuesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "complykit_issues_total",
				Help: "Number of analyzer and rule issues in evaluated results.",
			},
		),
		evaluationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "complykit_evaluation_duration_seconds",
				Help:    "Time taken to evaluate the rule set.",
				Buckets: prometheus.DefBuckets,
			},
		),
	}

	r.registry.MustRegister(
		r.evaluationsTotal,
		r.failedTotal,
		r.violationsTotal,
		r.resolvedTotal,
		r.issuesTotal,
		r.evaluationDuration,
	)
	return r
}

// Registry exposes the registry for gathering.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// ObserveEvaluation records one evaluation run.
func (r *Recorder) ObserveEvaluation(report *domain.EvaluationReport, elapsed time.Duration) {
	r.evaluationsTotal.Inc()
	if report.Failed() {
		r.failedTotal.Inc()
	}
	for _, v := range report.Violations {
		r.violationsTotal.WithLabelValues(v.Rule, v.Severity.String()).Inc()
	}
	r.resolvedTotal.Add(float64(len(report.Resolved)))
	r.issuesTotal.Add(float64(report.Summary.Issues))
	r.evaluationDuration.Observe(elapsed.Seconds())
}

// WriteTextfile writes all metrics in the Prometheus text format.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}

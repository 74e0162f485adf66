package metrics_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/complykit/complykit/internal/adapters/outbound/metrics"
	"github.com/complykit/complykit/internal/domain"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *domain.EvaluationReport {
	pkg := domain.ParseIdentifier("Maven:org:lib:1")
	report := &domain.EvaluationReport{
		FailOn: domain.SeverityError,
		Violations: []domain.Violation{
			{Rule: "DENIED_LICENSE", Pkg: pkg, Severity: domain.SeverityError},
			{Rule: "DENIED_LICENSE", Pkg: pkg, Severity: domain.SeverityError},
			{Rule: "MISSING_DECLARED_LICENSE", Pkg: pkg, Severity: domain.SeverityHint},
		},
		Resolved: []domain.ResolvedViolation{{Violation: domain.Violation{Rule: "COPYLEFT_IN_DEPENDENCY"}}},
		Issues:   map[domain.Identifier][]domain.Issue{pkg: {{Message: "a"}, {Message: "b"}}},
	}
	report.Summarize()
	return report
}

func gather(t *testing.T, r *metrics.Recorder) map[string]*dto.MetricFamily {
	t.Helper()
	families, err := r.Registry().Gather()
	require.NoError(t, err)
	out := make(map[string]*dto.MetricFamily, len(families))
	for _, f := range families {
		out[f.GetName()] = f
	}
	return out
}

func counterWithLabels(f *dto.MetricFamily, labels map[string]string) float64 {
	for _, m := range f.GetMetric() {
		match := true
		for _, lp := range m.GetLabel() {
			if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
				match = false
			}
		}
		if match {
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestRecorder_ObserveEvaluation(t *testing.T) {
	r := metrics.New()
	r.ObserveEvaluation(sampleReport(), 1500*time.Millisecond)

	families := gather(t, r)

	assert.Equal(t, 1.0, families["complykit_evaluations_total"].GetMetric()[0].GetCounter().GetValue())
	assert.Equal(t, 1.0, families["complykit_evaluations_failed_total"].GetMetric()[0].GetCounter().GetValue())
	assert.Equal(t, 2.0, counterWithLabels(families["complykit_violations_total"],
		map[string]string{"rule": "DENIED_LICENSE", "severity": "ERROR"}))
	assert.Equal(t, 1.0, counterWithLabels(families["complykit_violations_total"],
		map[string]string{"rule": "MISSING_DECLARED_LICENSE", "severity": "HINT"}))
	assert.Equal(t, 1.0, families["complykit_violations_resolved_total"].GetMetric()[0].GetCounter().GetValue())
	assert.Equal(t, 2.0, families["complykit_issues_total"].GetMetric()[0].GetCounter().GetValue())

	h := families["complykit_evaluation_duration_seconds"].GetMetric()[0].GetHistogram()
	assert.Equal(t, uint64(1), h.GetSampleCount())
	assert.InDelta(t, 1.5, h.GetSampleSum(), 0.001)
}

func TestRecorder_PassingRunIsNotCountedAsFailed(t *testing.T) {
	r := metrics.New()
	r.ObserveEvaluation(&domain.EvaluationReport{FailOn: domain.SeverityError}, time.Millisecond)

	families := gather(t, r)
	assert.Equal(t, 0.0, families["complykit_evaluations_failed_total"].GetMetric()[0].GetCounter().GetValue())
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := metrics.New()
	r.ObserveEvaluation(sampleReport(), time.Second)
	path := filepath.Join(t.TempDir(), "complykit.prom")

	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "complykit_evaluations_total 1")
	assert.Contains(t, string(data), `complykit_violations_total{rule="DENIED_LICENSE",severity="ERROR"} 2`)
}

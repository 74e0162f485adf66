package domain

import "time"

// ResolvedViolation pairs a violation with the resolution that matched it.
type ResolvedViolation struct {
	Violation  Violation               `json:"violation"  yaml:"violation"`
	Resolution RuleViolationResolution `json:"resolution" yaml:"resolution"`
}

// EvaluationSummary counts the findings of an evaluation.
type EvaluationSummary struct {
	Hints    int `json:"hints"    yaml:"hints"`
	Warnings int `json:"warnings" yaml:"warnings"`
	Errors   int `json:"errors"   yaml:"errors"`
	Resolved int `json:"resolved" yaml:"resolved"`
	Issues   int `json:"issues"   yaml:"issues"`
}

// EvaluationReport is the outcome of evaluating a rule set against an
// analyzer result. Violations keep the order in which rules recorded them.
type EvaluationReport struct {
	Revision    string                 `json:"revision,omitempty" yaml:"revision,omitempty"`
	EvaluatedAt time.Time              `json:"evaluated_at"       yaml:"evaluated_at"`
	FailOn      Severity               `json:"fail_on"            yaml:"fail_on"`
	Violations  []Violation            `json:"violations"         yaml:"violations"`
	Resolved    []ResolvedViolation    `json:"resolved,omitempty" yaml:"resolved,omitempty"`
	Issues      map[Identifier][]Issue `json:"issues,omitempty"   yaml:"issues,omitempty"`
	Summary     EvaluationSummary      `json:"summary"            yaml:"summary"`
}

// Summarize recomputes the summary from the report's contents.
func (r *EvaluationReport) Summarize() {
	s := EvaluationSummary{Resolved: len(r.Resolved)}
	for _, v := range r.Violations {
		switch v.Severity {
		case SeverityHint:
			s.Hints++
		case SeverityWarning:
			s.Warnings++
		case SeverityError:
			s.Errors++
		}
	}
	for _, issues := range r.Issues {
		s.Issues += len(issues)
	}
	r.Summary = s
}

// Failed reports whether any unresolved violation reaches the FailOn
// severity.
func (r *EvaluationReport) Failed() bool {
	for _, v := range r.Violations {
		if v.Severity.AtLeast(r.FailOn) {
			return true
		}
	}
	return false
}

// ViolationsBySeverity returns the unresolved violations with at least the
// given severity, in report order.
func (r *EvaluationReport) ViolationsBySeverity(min Severity) []Violation {
	var out []Violation
	for _, v := range r.Violations {
		if v.Severity.AtLeast(min) {
			out = append(out, v)
		}
	}
	return out
}

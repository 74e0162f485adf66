package evaluator

import (
	"slices"

	"github.com/complykit/complykit/internal/domain"
)

// State is the lifecycle state of a Rule.
type State int

const (
	// StateConstructed means the gate has not been checked yet.
	StateConstructed State = iota
	// StateEvaluated means the gate was checked and the body ran at most once.
	StateEvaluated
)

func (s State) String() string {
	if s == StateEvaluated {
		return "evaluated"
	}
	return "constructed"
}

// Rule is a named scope within a RuleSet. All violations a rule records go
// to the RuleSet's shared log.
type Rule struct {
	set         *RuleSet
	name        string
	description string
	issueSource string

	matchers []RuleMatcher
	recorded []int
	state    State
	fault    error
}

func newRule(set *RuleSet, name, description, issueSource string) *Rule {
	if issueSource == "" {
		issueSource = name
	}
	return &Rule{set: set, name: name, description: description, issueSource: issueSource}
}

func (r *Rule) Name() string        { return r.name }
func (r *Rule) Description() string { return r.description }

// IssueSource is the source of issues the rule raises against the model.
func (r *Rule) IssueSource() string { return r.issueSource }

// State returns the rule's lifecycle state.
func (r *Rule) State() State { return r.state }

// RuleSet returns the set the rule belongs to.
func (r *Rule) RuleSet() *RuleSet { return r.set }

// Require replaces the matchers that gate the rule body.
func (r *Rule) Require(matchers ...RuleMatcher) {
	r.matchers = slices.Clone(matchers)
}

// Matchers returns the active matchers in declaration order.
func (r *Rule) Matchers() []RuleMatcher {
	return slices.Clone(r.matchers)
}

// Matches reports whether every active matcher matches, checking them in
// declaration order and stopping at the first that does not.
func (r *Rule) Matches() bool {
	return matchAll(r.matchers)
}

// Hint records a violation of severity HINT.
func (r *Rule) Hint(pkg domain.Identifier, license string, source domain.LicenseSource, message, howToFix string) {
	r.record(pkg, license, source, domain.SeverityHint, message, howToFix)
}

// Warning records a violation of severity WARNING.
func (r *Rule) Warning(pkg domain.Identifier, license string, source domain.LicenseSource, message, howToFix string) {
	r.record(pkg, license, source, domain.SeverityWarning, message, howToFix)
}

// Error records a violation of severity ERROR.
func (r *Rule) Error(pkg domain.Identifier, license string, source domain.LicenseSource, message, howToFix string) {
	r.record(pkg, license, source, domain.SeverityError, message, howToFix)
}

// Violations returns the violations recorded by this rule, in call order.
func (r *Rule) Violations() []domain.Violation {
	out := make([]domain.Violation, 0, len(r.recorded))
	for _, i := range r.recorded {
		out = append(out, r.set.violations[i])
	}
	return out
}

// RaiseIssue attaches an issue to id in the evaluated model. Issues are not
// violations and do not count towards failing a run.
func (r *Rule) RaiseIssue(id domain.Identifier, message string, severity domain.Severity) domain.Issue {
	issue := domain.CreateAndLogIssue(r.set.log, r.issueSource, message, severity)
	r.set.raiseIssue(id, issue)
	return issue
}

// fail marks the rule as faulty; the RuleSet aborts the run with err once
// the gate has been declared.
func (r *Rule) fail(err error) {
	if r.fault == nil {
		r.fault = err
	}
}

func (r *Rule) record(pkg domain.Identifier, license string, source domain.LicenseSource, severity domain.Severity, message, howToFix string) {
	i := r.set.append(domain.Violation{
		Rule:          r.name,
		Pkg:           pkg,
		License:       license,
		LicenseSource: source,
		Severity:      severity,
		Message:       message,
		HowToFix:      howToFix,
	})
	r.recorded = append(r.recorded, i)
}

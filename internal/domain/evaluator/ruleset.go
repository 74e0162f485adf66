package evaluator

import (
	"errors"
	"fmt"
	"regexp"
	"slices"

	"github.com/go-logr/logr"

	"github.com/complykit/complykit/internal/domain"
	"github.com/complykit/complykit/internal/domain/graph"
)

// RuleSet binds rules to one analyzer result and owns the ordered,
// append-only log of violations they record. A RuleSet is used by a single
// goroutine; the analyzer result and index it reads may be shared.
type RuleSet struct {
	result         *domain.AnalyzerResult
	index          *graph.Index
	excludedScopes []*regexp.Regexp
	resolutions    []resolution
	isSPDXLicense  func(string) bool
	log            logr.Logger

	violations []domain.Violation
	issues     map[domain.Identifier][]domain.Issue
	collected  map[domain.Identifier][]domain.Issue
}

// Option configures a RuleSet.
type Option func(*ruleSetConfig)

type ruleSetConfig struct {
	excludedScopes []*regexp.Regexp
	resolutions    []domain.RuleViolationResolution
	isSPDXLicense  func(string) bool
	log            logr.Logger
}

// WithExcludedScopes sets the scope patterns that make a package excluded.
func WithExcludedScopes(patterns []*regexp.Regexp) Option {
	return func(c *ruleSetConfig) { c.excludedScopes = patterns }
}

// WithResolutions sets the resolutions applied by Partition.
func WithResolutions(resolutions []domain.RuleViolationResolution) Option {
	return func(c *ruleSetConfig) { c.resolutions = resolutions }
}

// WithLicenseValidator sets the predicate behind LicenseRule.IsSPDXLicense.
func WithLicenseValidator(isSPDXLicense func(string) bool) Option {
	return func(c *ruleSetConfig) { c.isSPDXLicense = isSPDXLicense }
}

// WithRuleLogger sets the logger used for issues raised by rules.
func WithRuleLogger(log logr.Logger) Option {
	return func(c *ruleSetConfig) { c.log = log }
}

// NewRuleSet binds a rule set to result. It fails only if a resolution
// pattern does not compile.
func NewRuleSet(result *domain.AnalyzerResult, opts ...Option) (*RuleSet, error) {
	cfg := ruleSetConfig{log: logr.Discard()}
	for _, opt := range opts {
		opt(&cfg)
	}

	resolutions, err := compileResolutions(cfg.resolutions)
	if err != nil {
		return nil, err
	}

	return &RuleSet{
		result:         result,
		index:          graph.New(result),
		excludedScopes: cfg.excludedScopes,
		resolutions:    resolutions,
		isSPDXLicense:  cfg.isSPDXLicense,
		log:            cfg.log,
		issues:         make(map[domain.Identifier][]domain.Issue),
	}, nil
}

// Result returns the analyzer result under evaluation.
func (s *RuleSet) Result() *domain.AnalyzerResult { return s.result }

// Index returns the tree index of the result.
func (s *RuleSet) Index() *graph.Index { return s.index }

// NewRule creates a rule in this set without evaluating anything.
func (s *RuleSet) NewRule(name, description, issueSource string) *Rule {
	return newRule(s, name, description, issueSource)
}

// Evaluate runs every definition in order. A definition whose matchers do not
// all match is not run. An error returned by a rule body aborts the run.
func (s *RuleSet) Evaluate(defs ...Definition) error {
	for _, def := range defs {
		rule := newRule(s, def.Name(), def.Description(), def.IssueSource())
		if err := s.run(rule, func() { def.Require(rule) }, func() error { return def.Run(rule) }); err != nil {
			return fmt.Errorf("rule %q: %w", rule.name, err)
		}
	}
	return nil
}

// run drives a rule from constructed to evaluated: declare the gate, check
// it once, run the body if it passed.
func (s *RuleSet) run(rule *Rule, require func(), body func() error) error {
	if rule.state != StateConstructed {
		return errors.New("rule was already evaluated")
	}
	require()
	rule.state = StateEvaluated
	if rule.fault != nil {
		return rule.fault
	}
	if !rule.Matches() {
		return nil
	}
	if err := body(); err != nil {
		return err
	}
	return rule.fault
}

// Violations returns a copy of the violation log in recording order.
func (s *RuleSet) Violations() []domain.Violation {
	return slices.Clone(s.violations)
}

// Issues returns the issues raised by rules, per identifier.
func (s *RuleSet) Issues() map[domain.Identifier][]domain.Issue {
	out := make(map[domain.Identifier][]domain.Issue, len(s.issues))
	for id, issues := range s.issues {
		out[id] = slices.Clone(issues)
	}
	return out
}

func (s *RuleSet) append(v domain.Violation) int {
	s.violations = append(s.violations, v)
	return len(s.violations) - 1
}

func (s *RuleSet) raiseIssue(id domain.Identifier, issue domain.Issue) {
	s.issues[id] = append(s.issues[id], issue)
}

// collectedIssues returns the issues of the result, collected once per set.
func (s *RuleSet) collectedIssues() map[domain.Identifier][]domain.Issue {
	if s.collected == nil {
		s.collected = s.result.CollectIssues()
	}
	return s.collected
}

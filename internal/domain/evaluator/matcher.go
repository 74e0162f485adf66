// Package evaluator runs compliance rules against an analyzer result and
// collects the violations they record.
package evaluator

import "strings"

// RuleMatcher is a named predicate that gates whether a rule body runs.
// Matchers only query the model; they never change it.
type RuleMatcher interface {
	Description() string
	Matches() bool
}

type funcMatcher struct {
	description string
	fn          func() bool
}

func (m funcMatcher) Description() string { return m.description }
func (m funcMatcher) Matches() bool       { return m.fn() }

// NewMatcher creates a matcher from a description and a predicate.
func NewMatcher(description string, fn func() bool) RuleMatcher {
	return funcMatcher{description: description, fn: fn}
}

// NegatedMatcher inverts the matcher it wraps.
type NegatedMatcher struct {
	Matcher RuleMatcher
}

func (m NegatedMatcher) Description() string { return "!(" + m.Matcher.Description() + ")" }
func (m NegatedMatcher) Matches() bool       { return !m.Matcher.Matches() }

// Not returns a matcher that matches when m does not.
func Not(m RuleMatcher) RuleMatcher {
	return NegatedMatcher{Matcher: m}
}

type allOf []RuleMatcher

func (ms allOf) Description() string { return joinDescriptions(ms, " && ") }
func (ms allOf) Matches() bool       { return matchAll(ms) }

// AllOf matches when every matcher matches. Evaluation stops at the first
// matcher that does not.
func AllOf(matchers ...RuleMatcher) RuleMatcher {
	return allOf(matchers)
}

type anyOf []RuleMatcher

func (ms anyOf) Description() string { return joinDescriptions(ms, " || ") }

func (ms anyOf) Matches() bool {
	for _, m := range ms {
		if m.Matches() {
			return true
		}
	}
	return false
}

// AnyOf matches when at least one matcher matches. Evaluation stops at the
// first matcher that does.
func AnyOf(matchers ...RuleMatcher) RuleMatcher {
	return anyOf(matchers)
}

func matchAll(matchers []RuleMatcher) bool {
	for _, m := range matchers {
		if !m.Matches() {
			return false
		}
	}
	return true
}

func joinDescriptions(matchers []RuleMatcher, sep string) string {
	parts := make([]string, len(matchers))
	for i, m := range matchers {
		parts[i] = "(" + m.Description() + ")"
	}
	return strings.Join(parts, sep)
}

package evaluator

import (
	"fmt"
	"regexp"

	"github.com/complykit/complykit/internal/domain"
)

type resolution struct {
	pattern *regexp.Regexp
	config  domain.RuleViolationResolution
}

// compileResolutions compiles message patterns so they must match a whole
// violation message, across line breaks.
func compileResolutions(in []domain.RuleViolationResolution) ([]resolution, error) {
	out := make([]resolution, 0, len(in))
	for i, r := range in {
		re, err := regexp.Compile(`(?s)^(?:` + r.Message + `)$`)
		if err != nil {
			return nil, fmt.Errorf("resolution %d: invalid message pattern %q: %w", i, r.Message, err)
		}
		out = append(out, resolution{pattern: re, config: r})
	}
	return out, nil
}

// Resolution returns the first resolution whose pattern matches the
// violation's message.
func (s *RuleSet) Resolution(v domain.Violation) (domain.RuleViolationResolution, bool) {
	for _, r := range s.resolutions {
		if r.pattern.MatchString(v.Message) {
			return r.config, true
		}
	}
	return domain.RuleViolationResolution{}, false
}

// IsResolved reports whether a resolution matches the violation.
func (s *RuleSet) IsResolved(v domain.Violation) bool {
	_, ok := s.Resolution(v)
	return ok
}

// Partition splits the violation log into unresolved and resolved
// violations, each keeping recording order.
func (s *RuleSet) Partition() ([]domain.Violation, []domain.ResolvedViolation) {
	var (
		unresolved []domain.Violation
		resolved   []domain.ResolvedViolation
	)
	for _, v := range s.violations {
		if r, ok := s.Resolution(v); ok {
			resolved = append(resolved, domain.ResolvedViolation{Violation: v, Resolution: r})
			continue
		}
		unresolved = append(unresolved, v)
	}
	return unresolved, resolved
}

// Package policy is the configurable compliance policy shipped with
// complykit. Each rule is an evaluator definition; hosts may evaluate their
// own definitions instead of, or next to, these.
package policy

import (
	"fmt"
	"strings"

	"github.com/complykit/complykit/internal/domain"
	"github.com/complykit/complykit/internal/domain/evaluator"
)

const (
	RuleUnmappedDeclaredLicense = "UNMAPPED_DECLARED_LICENSE"
	RuleDeniedLicense           = "DENIED_LICENSE"
	RuleCopyleftInDependency    = "COPYLEFT_IN_DEPENDENCY"
	RuleUnresolvedIssues        = "UNRESOLVED_ISSUES"
	RuleMissingDeclaredLicense  = "MISSING_DECLARED_LICENSE"
)

// Policy holds the parameters of the built-in rules.
type Policy struct {
	DeniedLicenses   []string
	CopyleftLicenses []string
	IssueThreshold   domain.Severity
}

// FromConfig builds the policy described by a project config.
func FromConfig(cfg domain.ProjectConfig) Policy {
	copyleft := cfg.Policy.CopyleftLicenses
	if len(copyleft) == 0 {
		copyleft = domain.DefaultCopyleftLicenses
	}
	return Policy{
		DeniedLicenses:   cfg.Policy.DeniedLicenses,
		CopyleftLicenses: copyleft,
		IssueThreshold:   cfg.IssueThresholdSeverity(),
	}
}

// Definitions returns the built-in rules in evaluation order.
func (p Policy) Definitions() []evaluator.Definition {
	return []evaluator.Definition{
		evaluator.ForEachPackage(p.unmappedDeclaredLicense()),
		evaluator.ForEachPackage(p.deniedLicense()),
		evaluator.ForEachPackage(p.copyleftInDependency()),
		evaluator.ForEachPackage(p.unresolvedIssues()),
		evaluator.ForEachPackage(p.missingDeclaredLicense()),
	}
}

// Evaluate runs the built-in rules against set.
func (p Policy) Evaluate(set *evaluator.RuleSet) error {
	return set.Evaluate(p.Definitions()...)
}

func (p Policy) unmappedDeclaredLicense() evaluator.PackageDefinition {
	return evaluator.PackageFunc{
		RuleName: RuleUnmappedDeclaredLicense,
		Desc:     "Declared licenses must map to SPDX license identifiers.",
		Gate: func(r *evaluator.PackageRule) {
			r.Require(evaluator.NewMatcher("hasUnmappedDeclaredLicenses", func() bool {
				return len(r.Pkg().DeclaredLicensesProcessed.Unmapped) > 0
			}))
		},
		Body: func(r *evaluator.PackageRule) error {
			for _, raw := range r.Pkg().DeclaredLicensesProcessed.Unmapped {
				r.Warning(r.Pkg().ID, raw, domain.LicenseSourceDeclared,
					fmt.Sprintf("The declared license '%s' of %s '%s' could not be mapped to an SPDX license.",
						raw, kind(r), r.Pkg().ID.Coordinates()),
					fmt.Sprintf("Add a mapping for '%s' to license_mappings in .complykit.yaml.", raw))
			}
			return nil
		},
	}
}

func (p Policy) deniedLicense() evaluator.PackageDefinition {
	return evaluator.PackageFunc{
		RuleName: RuleDeniedLicense,
		Desc:     "Packages must not use denied licenses.",
		Gate: func(r *evaluator.PackageRule) {
			r.Require(
				evaluator.NewMatcher("hasDeniedLicenses", func() bool { return len(p.DeniedLicenses) > 0 }),
				r.HasLicense(),
			)
		},
		Body: func(r *evaluator.PackageRule) error {
			return r.LicenseRule(evaluator.ViewAll, evaluator.LicenseFunc{
				RuleName: RuleDeniedLicense,
				Gate:     func(lr *evaluator.LicenseRule) { lr.Require(lr.IsLicense(p.DeniedLicenses...)) },
				Body: func(lr *evaluator.LicenseRule) error {
					lr.Error(lr.Pkg().ID, lr.License(), lr.LicenseSource(),
						fmt.Sprintf("The %s license '%s' of %s '%s' is denied.",
							strings.ToLower(string(lr.LicenseSource())), lr.License(), kind(r), lr.Pkg().ID.Coordinates()),
						"Remove the dependency or replace it with an alternative under an allowed license.")
					return nil
				},
			})
		},
	}
}

func (p Policy) copyleftInDependency() evaluator.PackageDefinition {
	return evaluator.PackageFunc{
		RuleName: RuleCopyleftInDependency,
		Desc:     "Dependencies must not be licensed under copyleft licenses.",
		Gate: func(r *evaluator.PackageRule) {
			r.Require(evaluator.Not(r.IsProject()), r.HasLicense())
		},
		Body: func(r *evaluator.PackageRule) error {
			excluded := r.IsExcluded().Matches()
			return r.LicenseRule(evaluator.ViewConcludedOrDeclared, evaluator.LicenseFunc{
				RuleName: RuleCopyleftInDependency,
				Gate:     func(lr *evaluator.LicenseRule) { lr.Require(lr.IsLicense(p.CopyleftLicenses...)) },
				Body: func(lr *evaluator.LicenseRule) error {
					message := fmt.Sprintf("The %s license '%s' of package '%s' is a copyleft license.",
						strings.ToLower(string(lr.LicenseSource())), lr.License(), lr.Pkg().ID.Coordinates())
					if excluded {
						lr.Hint(lr.Pkg().ID, lr.License(), lr.LicenseSource(),
							message+" The package is only used in excluded scopes.",
							"No action needed unless the package is distributed.")
						return nil
					}
					lr.Error(lr.Pkg().ID, lr.License(), lr.LicenseSource(), message,
						"Check whether the copyleft obligations are acceptable and add a resolution, or replace the dependency.")
					return nil
				},
			})
		},
	}
}

func (p Policy) unresolvedIssues() evaluator.PackageDefinition {
	return evaluator.PackageFunc{
		RuleName: RuleUnresolvedIssues,
		Desc:     "Analyzer issues must be resolved before the results can be trusted.",
		Gate: func(r *evaluator.PackageRule) {
			r.Require(r.HasIssues(p.IssueThreshold))
		},
		Body: func(r *evaluator.PackageRule) error {
			issues := r.Issues(p.IssueThreshold)
			r.Warning(r.Pkg().ID, "", domain.LicenseSourceNone,
				fmt.Sprintf("The %s '%s' has %d unresolved issue(s) of severity %s or higher, the first being: %s",
					kind(r), r.Pkg().ID.Coordinates(), len(issues), p.IssueThreshold, issues[0].Message),
				"Fix the analyzer setup so the issues no longer occur, or lower the policy issue_threshold.")
			return nil
		},
	}
}

func (p Policy) missingDeclaredLicense() evaluator.PackageDefinition {
	return evaluator.PackageFunc{
		RuleName: RuleMissingDeclaredLicense,
		Desc:     "Packages should declare a license.",
		Gate: func(r *evaluator.PackageRule) {
			r.Require(
				evaluator.Not(r.IsProject()),
				evaluator.NewMatcher("hasNoDeclaredLicense", func() bool { return len(r.Pkg().DeclaredLicenses) == 0 }),
			)
		},
		Body: func(r *evaluator.PackageRule) error {
			r.Hint(r.Pkg().ID, "", domain.LicenseSourceNone,
				fmt.Sprintf("The package '%s' does not declare any license.", r.Pkg().ID.Coordinates()),
				"Conclude the license by hand or curate the package metadata.")
			return nil
		},
	}
}

func kind(r *evaluator.PackageRule) string {
	if r.IsProject().Matches() {
		return "project"
	}
	return "package"
}

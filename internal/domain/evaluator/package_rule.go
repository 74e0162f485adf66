package evaluator

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/complykit/complykit/internal/domain"
)

// ErrNoLicenseValidator is the fault raised when a rule asks whether a
// license is an SPDX license but the RuleSet was built without a validator.
var ErrNoLicenseValidator = errors.New("no license validator configured")

// LicenseView selects which licenses of a package a license rule visits.
type LicenseView int

const (
	// ViewAll visits concluded and declared licenses.
	ViewAll LicenseView = iota
	// ViewOnlyDeclared visits declared licenses only.
	ViewOnlyDeclared
	// ViewOnlyConcluded visits the concluded license only.
	ViewOnlyConcluded
	// ViewConcludedOrDeclared visits the concluded license if there is one,
	// the declared licenses otherwise.
	ViewConcludedOrDeclared
)

// PackageRule is a rule applied to a single package. Projects are evaluated
// as packages too.
type PackageRule struct {
	*Rule
	pkg       domain.Package
	curations []domain.PackageCurationResult
	isProject bool
}

func (s *RuleSet) evaluatePackage(def PackageDefinition, pkg domain.Package, curations []domain.PackageCurationResult, isProject bool) error {
	rule := &PackageRule{
		Rule:      newRule(s, def.Name(), def.Description(), def.IssueSource()),
		pkg:       pkg,
		curations: curations,
		isProject: isProject,
	}
	if err := s.run(rule.Rule, func() { def.Require(rule) }, func() error { return def.Run(rule) }); err != nil {
		return fmt.Errorf("package %s: %w", pkg.ID.Coordinates(), err)
	}
	return nil
}

// Pkg returns the package under evaluation.
func (r *PackageRule) Pkg() domain.Package { return r.pkg }

// Curations returns the curations applied to the package.
func (r *PackageRule) Curations() []domain.PackageCurationResult { return r.curations }

// IsProject matches if the package is one of the analyzed projects.
func (r *PackageRule) IsProject() RuleMatcher {
	return NewMatcher("isProject", func() bool { return r.isProject })
}

// IsExcluded matches if every occurrence of the package lies in an excluded
// scope.
func (r *PackageRule) IsExcluded() RuleMatcher {
	return NewMatcher("isExcluded", func() bool {
		return r.set.index.IsExcluded(r.pkg.ID, r.set.excludedScopes)
	})
}

// IsDirect matches if the package is a direct dependency of some project.
func (r *PackageRule) IsDirect() RuleMatcher {
	return NewMatcher("isDirectDependency", func() bool {
		return r.set.index.IsDirect(r.pkg.ID)
	})
}

// HasLicense matches if the package declares a license or has a concluded one.
func (r *PackageRule) HasLicense() RuleMatcher {
	return NewMatcher("hasLicense", func() bool {
		return len(r.pkg.DeclaredLicenses) > 0 || r.pkg.ConcludedLicense != ""
	})
}

// IsCurated matches if curations were applied to the package.
func (r *PackageRule) IsCurated() RuleMatcher {
	return NewMatcher("isCurated", func() bool { return len(r.curations) > 0 })
}

// HasIssues matches if the package has collected issues of at least the
// given severity.
func (r *PackageRule) HasIssues(min domain.Severity) RuleMatcher {
	return NewMatcher(fmt.Sprintf("hasIssues(%s)", min), func() bool {
		return len(r.Issues(min)) > 0
	})
}

// Issues returns the collected issues of the package of at least the given
// severity.
func (r *PackageRule) Issues(min domain.Severity) []domain.Issue {
	var out []domain.Issue
	for _, issue := range r.set.collectedIssues()[r.pkg.ID] {
		if issue.Severity.AtLeast(min) {
			out = append(out, issue)
		}
	}
	return out
}

// HasVersion matches if the package version satisfies a semantic version
// constraint. Versions that are not semantic versions never match. An
// invalid constraint is a fault that aborts the evaluation.
func (r *PackageRule) HasVersion(constraint string) RuleMatcher {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		r.fail(fmt.Errorf("invalid version constraint %q: %w", constraint, err))
		return NewMatcher(fmt.Sprintf("hasVersion(%s)", constraint), func() bool { return false })
	}
	return NewMatcher(fmt.Sprintf("hasVersion(%s)", constraint), func() bool {
		v, err := semver.NewVersion(r.pkg.ID.Version)
		if err != nil {
			return false
		}
		return c.Check(v)
	})
}

// LicenseRule applies def to every license of the package in view.
func (r *PackageRule) LicenseRule(view LicenseView, def LicenseDefinition) error {
	for _, ref := range packageLicenses(r.pkg, view) {
		rule := &LicenseRule{
			Rule:    newRule(r.set, def.Name(), def.Description(), r.issueSource),
			pkgRule: r,
			license: ref.license,
			source:  ref.source,
		}
		if err := r.set.run(rule.Rule, func() { def.Require(rule) }, func() error { return def.Run(rule) }); err != nil {
			return fmt.Errorf("license rule %q for %s: %w", def.Name(), ref.license, err)
		}
	}
	return nil
}

// LicenseRule is a rule applied to one license of a package.
type LicenseRule struct {
	*Rule
	pkgRule *PackageRule
	license string
	source  domain.LicenseSource
}

// Pkg returns the package the license belongs to.
func (r *LicenseRule) Pkg() domain.Package { return r.pkgRule.pkg }

// PackageRule returns the enclosing package rule.
func (r *LicenseRule) PackageRule() *PackageRule { return r.pkgRule }

// License returns the license under evaluation.
func (r *LicenseRule) License() string { return r.license }

// LicenseSource returns where the license was found.
func (r *LicenseRule) LicenseSource() domain.LicenseSource { return r.source }

// IsLicense matches if the license is one of ids, compared case-insensitively.
func (r *LicenseRule) IsLicense(ids ...string) RuleMatcher {
	return NewMatcher(fmt.Sprintf("isLicense(%s)", strings.Join(ids, ", ")), func() bool {
		return slices.ContainsFunc(ids, func(id string) bool { return strings.EqualFold(id, r.license) })
	})
}

// IsSPDXLicense matches if the license is a valid SPDX license identifier.
func (r *LicenseRule) IsSPDXLicense() RuleMatcher {
	validate := r.set.isSPDXLicense
	if validate == nil {
		r.fail(ErrNoLicenseValidator)
		validate = func(string) bool { return false }
	}
	return NewMatcher("isSpdxLicense", func() bool { return validate(r.license) })
}

type licenseRef struct {
	license string
	source  domain.LicenseSource
}

func packageLicenses(pkg domain.Package, view LicenseView) []licenseRef {
	declared := refs(DecomposeExpression(pkg.DeclaredLicensesProcessed.SPDXExpression), domain.LicenseSourceDeclared)
	concluded := refs(DecomposeExpression(pkg.ConcludedLicense), domain.LicenseSourceConcluded)

	switch view {
	case ViewOnlyDeclared:
		return declared
	case ViewOnlyConcluded:
		return concluded
	case ViewConcludedOrDeclared:
		if len(concluded) > 0 {
			return concluded
		}
		return declared
	default:
		return append(concluded, declared...)
	}
}

func refs(licenses []string, source domain.LicenseSource) []licenseRef {
	out := make([]licenseRef, 0, len(licenses))
	for _, l := range licenses {
		out = append(out, licenseRef{license: l, source: source})
	}
	return out
}

// DecomposeExpression splits an SPDX license expression into its distinct
// license terms, in order of appearance. "X WITH Y" is kept as one term.
func DecomposeExpression(expression string) []string {
	fields := strings.Fields(strings.NewReplacer("(", " ", ")", " ").Replace(expression))

	var terms []string
	seen := make(map[string]bool)
	for i := 0; i < len(fields); i++ {
		tok := fields[i]
		switch strings.ToUpper(tok) {
		case "AND", "OR":
			continue
		case "WITH":
			if len(terms) > 0 && i+1 < len(fields) {
				last := terms[len(terms)-1]
				delete(seen, last)
				terms[len(terms)-1] = last + " WITH " + fields[i+1]
				seen[terms[len(terms)-1]] = true
				i++
			}
			continue
		}
		if seen[tok] {
			continue
		}
		seen[tok] = true
		terms = append(terms, tok)
	}
	return terms
}

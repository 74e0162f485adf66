package evaluator_test

import (
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/complykit/complykit/internal/domain"
	"github.com/complykit/complykit/internal/domain/evaluator"
)

var (
	projectID = domain.NewIdentifier("Gradle", "org.example", "app", "1.0")
	libID     = domain.NewIdentifier("Maven", "org.lib", "lib", "2.3.1")
	testLibID = domain.NewIdentifier("Maven", "org.junit", "junit", "4.13")
	deepID    = domain.NewIdentifier("Maven", "org.deep", "deep", "0.1.0")
)

func sampleResult() *domain.AnalyzerResult {
	project := domain.Project{
		ID:                        projectID,
		DefinitionFilePath:        "build.gradle",
		DeclaredLicenses:          []string{"Apache-2.0"},
		DeclaredLicensesProcessed: domain.ProcessedDeclaredLicense{SPDXExpression: "Apache-2.0"},
	}.WithScopes(
		domain.NewScope("compile", domain.NewPackageReference(libID, []domain.PackageReference{
			domain.NewPackageReference(deepID, nil, domain.Issue{Source: "Gradle", Message: "deep failed", Severity: domain.SeverityError}),
		})),
		domain.NewScope("test", domain.NewPackageReference(testLibID, nil)),
	)

	lib := domain.NewPackage(libID, "MIT", "GPL-2.0-only")
	lib.DeclaredLicensesProcessed = domain.ProcessedDeclaredLicense{SPDXExpression: "MIT AND GPL-2.0-only"}
	lib.ConcludedLicense = "MIT"

	junit := domain.NewPackage(testLibID, "EPL-1.0")
	junit.DeclaredLicensesProcessed = domain.ProcessedDeclaredLicense{SPDXExpression: "EPL-1.0"}

	deep := domain.NewPackage(deepID, "Weird License")
	deep.DeclaredLicensesProcessed = domain.ProcessedDeclaredLicense{Unmapped: []string{"Weird License"}}

	return &domain.AnalyzerResult{
		Projects: []domain.Project{project},
		Packages: []domain.CuratedPackage{
			deep.ToCuratedPackage(),
			junit.ToCuratedPackage(),
			lib.ToCuratedPackage(),
		},
	}
}

func newSet(t *testing.T, opts ...evaluator.Option) *evaluator.RuleSet {
	t.Helper()
	set, err := evaluator.NewRuleSet(sampleResult(), opts...)
	require.NoError(t, err)
	return set
}

func matcher(desc string, ok bool) evaluator.RuleMatcher {
	return evaluator.NewMatcher(desc, func() bool { return ok })
}

func TestRule_RecordsViolationsWithProperties(t *testing.T) {
	set := newSet(t)
	rule := set.NewRule("test", "a test rule", "")

	rule.Hint(libID, "MIT", domain.LicenseSourceDeclared, "hint message", "hint fix")
	rule.Warning(libID, "", domain.LicenseSourceNone, "warning message", "warning fix")
	rule.Error(projectID, "GPL-2.0-only", domain.LicenseSourceConcluded, "error message", "error fix")

	got := rule.Violations()
	require.Len(t, got, 3)

	assert.Equal(t, domain.Violation{
		Rule:          "test",
		Pkg:           libID,
		License:       "MIT",
		LicenseSource: domain.LicenseSourceDeclared,
		Severity:      domain.SeverityHint,
		Message:       "hint message",
		HowToFix:      "hint fix",
	}, got[0])
	assert.Equal(t, domain.SeverityWarning, got[1].Severity)
	assert.Empty(t, got[1].License)
	assert.Equal(t, domain.SeverityError, got[2].Severity)
	assert.Equal(t, domain.LicenseSourceConcluded, got[2].LicenseSource)
	assert.Equal(t, got, set.Violations())
}

func TestRule_IssueSourceDefaultsToName(t *testing.T) {
	set := newSet(t)
	assert.Equal(t, "rule", set.NewRule("rule", "", "").IssueSource())
	assert.Equal(t, "custom", set.NewRule("rule", "", "custom").IssueSource())
}

func TestRule_RequireReplacesMatchers(t *testing.T) {
	set := newSet(t)
	rule := set.NewRule("test", "", "")

	rule.Require(matcher("first", true))
	rule.Require(evaluator.Not(matcher("test", true)))

	ms := rule.Matchers()
	require.Len(t, ms, 1)
	assert.Equal(t, "!(test)", ms[0].Description())
	assert.False(t, rule.Matches())
}

func TestRule_NoMatchersAlwaysMatch(t *testing.T) {
	set := newSet(t)
	assert.True(t, set.NewRule("test", "", "").Matches())
}

func TestMatcher_Composition(t *testing.T) {
	yes, no := matcher("yes", true), matcher("no", false)

	all := evaluator.AllOf(yes, no)
	assert.Equal(t, "(yes) && (no)", all.Description())
	assert.False(t, all.Matches())

	anyM := evaluator.AnyOf(no, yes)
	assert.Equal(t, "(no) || (yes)", anyM.Description())
	assert.True(t, anyM.Matches())

	assert.True(t, evaluator.AllOf().Matches())
	assert.False(t, evaluator.AnyOf().Matches())
}

func TestMatcher_AllOfShortCircuits(t *testing.T) {
	called := false
	spy := evaluator.NewMatcher("spy", func() bool { called = true; return true })

	assert.False(t, evaluator.AllOf(matcher("no", false), spy).Matches())
	assert.False(t, called)
}

func TestEvaluate_GateFalseSkipsBody(t *testing.T) {
	set := newSet(t)
	ran := false

	err := set.Evaluate(evaluator.Func{
		RuleName: "gated",
		Gate:     func(r *evaluator.Rule) { r.Require(evaluator.Not(matcher("test", true))) },
		Body: func(r *evaluator.Rule) error {
			ran = true
			r.Error(libID, "", domain.LicenseSourceNone, "never", "")
			return nil
		},
	})

	require.NoError(t, err)
	assert.False(t, ran)
	assert.Empty(t, set.Violations())
}

func TestEvaluate_GateTrueRunsBodyOnce(t *testing.T) {
	set := newSet(t)
	runs := 0

	err := set.Evaluate(evaluator.Func{
		RuleName: "open",
		Gate:     func(r *evaluator.Rule) { r.Require(matcher("yes", true)) },
		Body: func(r *evaluator.Rule) error {
			runs++
			r.Warning(libID, "", domain.LicenseSourceNone, "found", "")
			assert.Equal(t, evaluator.StateEvaluated, r.State())
			return nil
		},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, runs)
	assert.Len(t, set.Violations(), 1)
}

func TestEvaluate_PreservesRecordingOrderAcrossRules(t *testing.T) {
	set := newSet(t)
	record := func(name, msg string) evaluator.Func {
		return evaluator.Func{RuleName: name, Body: func(r *evaluator.Rule) error {
			r.Hint(libID, "", domain.LicenseSourceNone, msg, "")
			return nil
		}}
	}

	require.NoError(t, set.Evaluate(record("a", "1"), record("b", "2"), record("a", "3")))

	var msgs []string
	for _, v := range set.Violations() {
		msgs = append(msgs, v.Message)
	}
	assert.Equal(t, []string{"1", "2", "3"}, msgs)
}

func TestEvaluate_BodyErrorAbortsRun(t *testing.T) {
	set := newSet(t)
	boom := errors.New("boom")
	secondRan := false

	err := set.Evaluate(
		evaluator.Func{RuleName: "broken", Body: func(*evaluator.Rule) error { return boom }},
		evaluator.Func{RuleName: "after", Body: func(*evaluator.Rule) error { secondRan = true; return nil }},
	)

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), `rule "broken"`)
	assert.False(t, secondRan)
}

func TestForEachPackage_VisitsProjectsThenPackages(t *testing.T) {
	set := newSet(t)
	var visited []string
	var projects []bool

	err := set.Evaluate(evaluator.ForEachPackage(evaluator.PackageFunc{
		RuleName: "visit",
		Body: func(r *evaluator.PackageRule) error {
			visited = append(visited, r.Pkg().ID.Name)
			projects = append(projects, r.IsProject().Matches())
			return nil
		},
	}))

	require.NoError(t, err)
	assert.Equal(t, []string{"app", "deep", "junit", "lib"}, visited)
	assert.Equal(t, []bool{true, false, false, false}, projects)
}

func TestPackageRule_Matchers(t *testing.T) {
	set := newSet(t, evaluator.WithExcludedScopes([]*regexp.Regexp{regexp.MustCompile(`^(?:test)$`)}))
	type facts struct {
		excluded, direct, license, issues bool
	}
	got := map[string]facts{}

	err := set.Evaluate(evaluator.ForEachPackage(evaluator.PackageFunc{
		RuleName: "facts",
		Body: func(r *evaluator.PackageRule) error {
			got[r.Pkg().ID.Name] = facts{
				excluded: r.IsExcluded().Matches(),
				direct:   r.IsDirect().Matches(),
				license:  r.HasLicense().Matches(),
				issues:   r.HasIssues(domain.SeverityWarning).Matches(),
			}
			return nil
		},
	}))

	require.NoError(t, err)
	assert.Equal(t, facts{excluded: false, direct: false, license: true, issues: false}, got["app"])
	assert.Equal(t, facts{excluded: false, direct: true, license: true, issues: false}, got["lib"])
	assert.Equal(t, facts{excluded: true, direct: true, license: true, issues: false}, got["junit"])
	assert.Equal(t, facts{excluded: false, direct: false, license: true, issues: true}, got["deep"])
}

func TestPackageRule_HasVersion(t *testing.T) {
	set := newSet(t)
	matched := map[string]bool{}

	err := set.Evaluate(evaluator.ForEachPackage(evaluator.PackageFunc{
		RuleName: "version",
		Gate:     func(r *evaluator.PackageRule) { r.Require(r.HasVersion(">= 1.0.0, < 3.0.0")) },
		Body: func(r *evaluator.PackageRule) error {
			matched[r.Pkg().ID.Name] = true
			return nil
		},
	}))

	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"app": true, "lib": true}, matched)
}

func TestPackageRule_InvalidVersionConstraintIsFault(t *testing.T) {
	set := newSet(t)

	err := set.Evaluate(evaluator.ForEachPackage(evaluator.PackageFunc{
		RuleName: "version",
		Gate:     func(r *evaluator.PackageRule) { r.Require(r.HasVersion("not a constraint")) },
	}))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid version constraint")
	assert.Contains(t, err.Error(), projectID.Coordinates())
}

func TestLicenseRule_Views(t *testing.T) {
	tests := []struct {
		name string
		view evaluator.LicenseView
		want []string
	}{
		{"all", evaluator.ViewAll, []string{"CONCLUDED:MIT", "DECLARED:MIT", "DECLARED:GPL-2.0-only"}},
		{"only declared", evaluator.ViewOnlyDeclared, []string{"DECLARED:MIT", "DECLARED:GPL-2.0-only"}},
		{"only concluded", evaluator.ViewOnlyConcluded, []string{"CONCLUDED:MIT"}},
		{"concluded or declared", evaluator.ViewConcludedOrDeclared, []string{"CONCLUDED:MIT"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := newSet(t)
			var seen []string

			err := set.Evaluate(evaluator.ForEachPackage(evaluator.PackageFunc{
				RuleName: "licenses",
				Gate: func(r *evaluator.PackageRule) {
					r.Require(evaluator.NewMatcher("isLib", func() bool { return r.Pkg().ID == libID }))
				},
				Body: func(r *evaluator.PackageRule) error {
					return r.LicenseRule(tt.view, evaluator.LicenseFunc{
						RuleName: "license",
						Body: func(lr *evaluator.LicenseRule) error {
							seen = append(seen, string(lr.LicenseSource())+":"+lr.License())
							return nil
						},
					})
				},
			}))

			require.NoError(t, err)
			assert.Equal(t, tt.want, seen)
		})
	}
}

func TestLicenseRule_IsLicenseRecordsLicenseViolation(t *testing.T) {
	set := newSet(t)

	err := set.Evaluate(evaluator.ForEachPackage(evaluator.PackageFunc{
		RuleName: "denied",
		Body: func(r *evaluator.PackageRule) error {
			return r.LicenseRule(evaluator.ViewOnlyDeclared, evaluator.LicenseFunc{
				RuleName: "denied",
				Gate:     func(lr *evaluator.LicenseRule) { lr.Require(lr.IsLicense("gpl-2.0-only")) },
				Body: func(lr *evaluator.LicenseRule) error {
					lr.Error(lr.Pkg().ID, lr.License(), lr.LicenseSource(), "denied", "remove it")
					return nil
				},
			})
		},
	}))

	require.NoError(t, err)
	got := set.Violations()
	require.Len(t, got, 1)
	assert.Equal(t, libID, got[0].Pkg)
	assert.Equal(t, "GPL-2.0-only", got[0].License)
	assert.Equal(t, domain.LicenseSourceDeclared, got[0].LicenseSource)
}

func TestLicenseRule_IsSPDXLicenseWithoutValidatorIsFault(t *testing.T) {
	set := newSet(t)

	err := set.Evaluate(evaluator.ForEachPackage(evaluator.PackageFunc{
		RuleName: "spdx",
		Body: func(r *evaluator.PackageRule) error {
			return r.LicenseRule(evaluator.ViewAll, evaluator.LicenseFunc{
				RuleName: "spdx",
				Gate:     func(lr *evaluator.LicenseRule) { lr.Require(lr.IsSPDXLicense()) },
			})
		},
	}))

	require.Error(t, err)
	assert.ErrorIs(t, err, evaluator.ErrNoLicenseValidator)
}

func TestLicenseRule_IsSPDXLicenseUsesValidator(t *testing.T) {
	set := newSet(t, evaluator.WithLicenseValidator(func(id string) bool { return id == "MIT" }))
	var valid []string

	err := set.Evaluate(evaluator.ForEachPackage(evaluator.PackageFunc{
		RuleName: "spdx",
		Body: func(r *evaluator.PackageRule) error {
			return r.LicenseRule(evaluator.ViewOnlyDeclared, evaluator.LicenseFunc{
				RuleName: "spdx",
				Gate:     func(lr *evaluator.LicenseRule) { lr.Require(lr.IsSPDXLicense()) },
				Body: func(lr *evaluator.LicenseRule) error {
					valid = append(valid, lr.Pkg().ID.Name+":"+lr.License())
					return nil
				},
			})
		},
	}))

	require.NoError(t, err)
	assert.Equal(t, []string{"lib:MIT"}, valid)
}

func TestRule_RaiseIssueDoesNotRecordViolation(t *testing.T) {
	set := newSet(t)
	rule := set.NewRule("issues", "", "Evaluator")

	issue := rule.RaiseIssue(libID, "something odd", domain.SeverityHint)

	assert.Equal(t, "Evaluator", issue.Source)
	assert.Empty(t, set.Violations())
	assert.Equal(t, []domain.Issue{issue}, set.Issues()[libID])
}

func TestDecomposeExpression(t *testing.T) {
	tests := []struct {
		expr string
		want []string
	}{
		{"", nil},
		{"MIT", []string{"MIT"}},
		{"MIT OR Apache-2.0", []string{"MIT", "Apache-2.0"}},
		{"(MIT AND BSD-3-Clause) OR MIT", []string{"MIT", "BSD-3-Clause"}},
		{"GPL-2.0-only WITH Classpath-exception-2.0 AND MIT", []string{"GPL-2.0-only WITH Classpath-exception-2.0", "MIT"}},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			assert.Equal(t, tt.want, evaluator.DecomposeExpression(tt.expr))
		})
	}
}

func TestRuleSet_Partition(t *testing.T) {
	set := newSet(t, evaluator.WithResolutions([]domain.RuleViolationResolution{
		{Message: "License .* is denied\\.", Reason: "CANT_FIX_EXCEPTION", Comment: "legacy"},
	}))
	rule := set.NewRule("r", "", "")
	rule.Error(libID, "GPL-2.0-only", domain.LicenseSourceDeclared, "License GPL-2.0-only is denied.", "")
	rule.Warning(libID, "", domain.LicenseSourceNone, "Something else.", "")
	rule.Error(libID, "", domain.LicenseSourceNone, "Prefix License X is denied.", "")

	unresolved, resolved := set.Partition()

	require.Len(t, resolved, 1)
	assert.Equal(t, "CANT_FIX_EXCEPTION", resolved[0].Resolution.Reason)
	assert.Equal(t, "License GPL-2.0-only is denied.", resolved[0].Violation.Message)
	require.Len(t, unresolved, 2)
	assert.Equal(t, "Something else.", unresolved[0].Message)
	assert.True(t, set.IsResolved(resolved[0].Violation))
	assert.False(t, set.IsResolved(unresolved[1]))
}

func TestNewRuleSet_InvalidResolutionPattern(t *testing.T) {
	_, err := evaluator.NewRuleSet(sampleResult(), evaluator.WithResolutions([]domain.RuleViolationResolution{
		{Message: "(", Reason: "CANT_FIX_EXCEPTION"},
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolution 0")
}

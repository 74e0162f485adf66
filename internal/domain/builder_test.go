package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/complykit/complykit/internal/domain"
)

var fixedNow = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func id(coords string) domain.Identifier { return domain.ParseIdentifier(coords) }

func projectResult(project string, deps ...string) domain.ProjectAnalyzerResult {
	var refs []domain.PackageReference
	var pkgs []domain.CuratedPackage
	for _, d := range deps {
		refs = append(refs, domain.NewPackageReference(id(d), nil))
		pkgs = append(pkgs, domain.NewPackage(id(d), "MIT").ToCuratedPackage())
	}
	return domain.ProjectAnalyzerResult{
		Project: domain.Project{ID: id(project), DefinitionFilePath: project + "/build.gradle"}.
			WithScopes(domain.NewScope("compile", refs...)),
		Packages: pkgs,
	}
}

func TestBuilder_MergesProjectsAndPackagesSorted(t *testing.T) {
	result := domain.NewAnalyzerResultBuilder(domain.WithClock(fixedClock)).
		AddResult(projectResult("Gradle::b:1", "Maven:x:z:1", "Maven:x:y:1")).
		AddResult(projectResult("Gradle::a:1", "Maven:x:y:1")).
		Build()

	require.Len(t, result.Projects, 2)
	assert.Equal(t, "a", result.Projects[0].ID.Name)
	assert.Equal(t, "b", result.Projects[1].ID.Name)

	require.Len(t, result.Packages, 2)
	assert.Equal(t, "y", result.Packages[0].Package.ID.Name)
	assert.Equal(t, "z", result.Packages[1].Package.ID.Name)
	assert.Nil(t, result.Issues)
}

func TestBuilder_EmptyBuild(t *testing.T) {
	result := domain.NewAnalyzerResultBuilder().Build()
	assert.Empty(t, result.Projects)
	assert.Empty(t, result.Packages)
	assert.Nil(t, result.Issues)
}

func TestBuilder_UnionsProjectIssues(t *testing.T) {
	first := projectResult("Gradle::a:1")
	first.Issues = []domain.Issue{{Source: "Gradle", Message: "one", Severity: domain.SeverityWarning}}
	second := projectResult("Gradle::b:1")
	second.Issues = []domain.Issue{{Source: "Gradle", Message: "two", Severity: domain.SeverityError}}

	result := domain.NewAnalyzerResultBuilder().AddResult(first).AddResult(second).Build()

	assert.Equal(t, first.Issues, result.Issues[id("Gradle::a:1")])
	assert.Equal(t, second.Issues, result.Issues[id("Gradle::b:1")])
}

func TestBuilder_ConflictingPackageKeepsFirstAndRaisesError(t *testing.T) {
	first := projectResult("Gradle::a:1", "Maven:x:y:1")
	second := projectResult("Gradle::b:1", "Maven:x:y:1")
	second.Packages[0].Package.DeclaredLicenses = []string{"GPL-2.0-only"}

	result := domain.NewAnalyzerResultBuilder(domain.WithClock(fixedClock)).
		AddResult(first).AddResult(second).Build()

	require.Len(t, result.Packages, 1)
	assert.Equal(t, []string{"MIT"}, result.Packages[0].Package.DeclaredLicenses)

	issues := result.Issues[id("Maven:x:y:1")]
	require.Len(t, issues, 1)
	assert.Equal(t, domain.SeverityError, issues[0].Severity)
	assert.Equal(t, domain.BuilderIssueSource, issues[0].Source)
	assert.Equal(t, fixedNow, issues[0].Timestamp)
	assert.Contains(t, issues[0].Message, "Gradle::b:1")
}

func TestBuilder_ConflictingProjectKeepsFirst(t *testing.T) {
	first := projectResult("Gradle::a:1", "Maven:x:y:1")
	second := projectResult("Gradle::a:1")
	second.Project.DefinitionFilePath = "other/build.gradle"

	result := domain.NewAnalyzerResultBuilder().AddResult(first).AddResult(second).Build()

	require.Len(t, result.Projects, 1)
	assert.Equal(t, "Gradle::a:1/build.gradle", result.Projects[0].DefinitionFilePath)
	require.Len(t, result.Issues[id("Gradle::a:1")], 1)
	assert.Contains(t, result.Issues[id("Gradle::a:1")][0].Message, "more than once")
}

func TestBuilder_IdenticalResultsDoNotConflict(t *testing.T) {
	r := projectResult("Gradle::a:1", "Maven:x:y:1")
	result := domain.NewAnalyzerResultBuilder().AddResult(r).AddResult(r).Build()

	assert.Len(t, result.Projects, 1)
	assert.Nil(t, result.Issues)
}

func TestBuilder_ReportsUnresolvedReferencesOnce(t *testing.T) {
	r := projectResult("Gradle::a:1", "Maven:x:y:1")
	r.Packages = nil

	b := domain.NewAnalyzerResultBuilder(domain.WithClock(fixedClock)).AddResult(r)
	first := b.Build()
	second := b.Build()

	issues := first.Issues[id("Maven:x:y:1")]
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Message, "does not resolve to any analyzed package")
	assert.True(t, first.Equal(&second))
}

func TestBuilder_ProjectReferencesResolve(t *testing.T) {
	r := projectResult("Gradle::a:1", "Gradle::b:1")
	r.Packages = nil

	result := domain.NewAnalyzerResultBuilder().
		AddResult(r).
		AddResult(projectResult("Gradle::b:1")).
		Build()

	assert.Nil(t, result.Issues)
}

func TestBuilder_CollectsTreeIssuesIntoResult(t *testing.T) {
	treeIssue := domain.Issue{Source: "Gradle", Message: "resolution failed", Severity: domain.SeverityError}
	r := projectResult("Gradle::a:1")
	r.Project = r.Project.WithScopes(domain.NewScope("compile",
		domain.NewPackageReference(id("Maven:x:y:1"), nil, treeIssue)))
	r.Packages = []domain.CuratedPackage{domain.NewPackage(id("Maven:x:y:1")).ToCuratedPackage()}

	result := domain.NewAnalyzerResultBuilder().AddResult(r).Build()

	assert.Equal(t, []domain.Issue{treeIssue}, result.Issues[id("Maven:x:y:1")])
}

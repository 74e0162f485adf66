package domain

import (
	"fmt"
	"maps"
	"slices"
	"sort"
)

// ProjectAnalyzerResult is what an analyzer plugin produces for one
// definition file.
type ProjectAnalyzerResult struct {
	Project  Project          `json:"project"          yaml:"project"`
	Packages []CuratedPackage `json:"packages"         yaml:"packages"`
	Issues   []Issue          `json:"issues,omitempty" yaml:"issues,omitempty"`
}

// AnalyzerResult is the merged dependency graph of all analyzed projects.
// Projects and packages are sorted by id and unique. It is not modified
// after AnalyzerResultBuilder.Build returns it.
type AnalyzerResult struct {
	Projects []Project              `json:"projects"         yaml:"projects"`
	Packages []CuratedPackage       `json:"packages"         yaml:"packages"`
	Issues   map[Identifier][]Issue `json:"issues,omitempty" yaml:"issues,omitempty"`
}

// Project returns the project with the given id.
func (r *AnalyzerResult) Project(id Identifier) (Project, bool) {
	i, found := slices.BinarySearchFunc(r.Projects, id, func(p Project, id Identifier) int {
		return p.ID.Compare(id)
	})
	if !found {
		return Project{}, false
	}
	return r.Projects[i], true
}

// Package returns the curated package with the given id.
func (r *AnalyzerResult) Package(id Identifier) (CuratedPackage, bool) {
	i, found := slices.BinarySearchFunc(r.Packages, id, func(p CuratedPackage, id Identifier) int {
		return p.Package.ID.Compare(id)
	})
	if !found {
		return CuratedPackage{}, false
	}
	return r.Packages[i], true
}

// IsProject reports whether id names one of the analyzed projects.
func (r *AnalyzerResult) IsProject(id Identifier) bool {
	_, ok := r.Project(id)
	return ok
}

// CollectIssues returns every issue of the result attached to the entity it
// concerns: the top-level issues, the issues of every package reference in
// every tree, and a warning for each declared license that could not be
// mapped. Issues are deduplicated by value.
func (r *AnalyzerResult) CollectIssues() map[Identifier][]Issue {
	sets := make(map[Identifier]*issueSet)
	add := func(id Identifier, issues ...Issue) {
		if len(issues) == 0 {
			return
		}
		s, ok := sets[id]
		if !ok {
			s = &issueSet{}
			sets[id] = s
		}
		s.add(issues...)
	}

	for _, id := range sortedKeys(r.Issues) {
		add(id, r.Issues[id]...)
	}

	for _, project := range r.Projects {
		collectTreeIssues(project, add)
		add(project.ID, declaredLicenseIssues(project.ID, project.DeclaredLicensesProcessed)...)
	}

	for _, pkg := range r.Packages {
		add(pkg.Package.ID, declaredLicenseIssues(pkg.Package.ID, pkg.Package.DeclaredLicensesProcessed)...)
	}

	out := make(map[Identifier][]Issue, len(sets))
	for id, s := range sets {
		out[id] = s.items
	}
	return out
}

// HasIssues reports whether CollectIssues would return anything.
func (r *AnalyzerResult) HasIssues() bool {
	return len(r.CollectIssues()) > 0
}

// Equal compares two results structurally.
func (r *AnalyzerResult) Equal(other *AnalyzerResult) bool {
	if !slices.EqualFunc(r.Projects, other.Projects, Project.Equal) {
		return false
	}
	if !slices.EqualFunc(r.Packages, other.Packages, CuratedPackage.Equal) {
		return false
	}
	return maps.EqualFunc(r.Issues, other.Issues, func(a, b []Issue) bool {
		return slices.EqualFunc(a, b, Issue.Equal)
	})
}

func collectTreeIssues(project Project, add func(Identifier, ...Issue)) {
	for _, scope := range project.Scopes {
		for _, root := range scope.Dependencies {
			root.Walk(0, func(ref PackageReference, _ int) {
				add(ref.ID, ref.Issues...)
			})
		}
	}
}

// declaredLicenseIssues synthesizes one warning per unmapped license. The
// timestamp is left at its zero value so repeated collection yields equal
// issues.
func declaredLicenseIssues(id Identifier, processed ProcessedDeclaredLicense) []Issue {
	var issues []Issue
	for _, raw := range processed.Unmapped {
		issues = append(issues, Issue{
			Source:   id.Coordinates(),
			Message:  UnmappedLicenseMessage(raw),
			Severity: SeverityWarning,
		})
	}
	return issues
}

// UnmappedLicenseMessage is the issue message for a declared license that
// could not be normalized.
func UnmappedLicenseMessage(raw string) string {
	return fmt.Sprintf("The declared license '%s' could not be mapped to a valid license or parsed as an SPDX expression.", raw)
}

func sortedKeys[V any](m map[Identifier]V) []Identifier {
	keys := make([]Identifier, 0, len(m))
	for id := range m {
		keys = append(keys, id)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Compare(keys[j]) < 0 })
	return keys
}

// SortedIssueIDs returns the keys of an issue map in identifier order.
func SortedIssueIDs(issues map[Identifier][]Issue) []Identifier {
	return sortedKeys(issues)
}

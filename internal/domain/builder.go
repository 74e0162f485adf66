package domain

import (
	"fmt"
	"slices"
	"time"

	"github.com/go-logr/logr"
)

// BuilderIssueSource is the source of issues raised while merging results.
const BuilderIssueSource = "AnalyzerResultBuilder"

// AnalyzerResultBuilder merges per-project results into one AnalyzerResult.
// Inconsistencies never fail the merge: the first-seen value is kept and an
// ERROR issue is attached to the affected identifier.
type AnalyzerResultBuilder struct {
	log   logr.Logger
	clock func() time.Time

	projects map[Identifier]Project
	packages map[Identifier]CuratedPackage
	issues   map[Identifier]*issueSet

	// unresolved memoizes dangling-reference issues so Build stays idempotent.
	unresolved map[Identifier]Issue
}

// BuilderOption configures an AnalyzerResultBuilder.
type BuilderOption func(*AnalyzerResultBuilder)

// WithLogger sets the logger used to report merge conflicts.
func WithLogger(log logr.Logger) BuilderOption {
	return func(b *AnalyzerResultBuilder) { b.log = log }
}

// WithClock overrides the time source for issues raised by the builder.
func WithClock(clock func() time.Time) BuilderOption {
	return func(b *AnalyzerResultBuilder) { b.clock = clock }
}

// NewAnalyzerResultBuilder creates an empty builder.
func NewAnalyzerResultBuilder(opts ...BuilderOption) *AnalyzerResultBuilder {
	b := &AnalyzerResultBuilder{
		log:        logr.Discard(),
		clock:      time.Now,
		projects:   make(map[Identifier]Project),
		packages:   make(map[Identifier]CuratedPackage),
		issues:     make(map[Identifier]*issueSet),
		unresolved: make(map[Identifier]Issue),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// AddResult merges one project result into the builder. Results are merged
// in call order, which decides which value wins a conflict.
func (b *AnalyzerResultBuilder) AddResult(result ProjectAnalyzerResult) *AnalyzerResultBuilder {
	project := result.Project

	if existing, ok := b.projects[project.ID]; ok {
		if !existing.Equal(project) {
			b.conflict(project.ID, fmt.Sprintf(
				"Project '%s' was analyzed more than once with differing results; keeping the first result (definition file '%s').",
				project.ID.Coordinates(), existing.DefinitionFilePath))
		}
	} else {
		b.projects[project.ID] = project
		collectTreeIssues(project, b.addIssues)
	}

	for _, pkg := range result.Packages {
		id := pkg.Package.ID
		existing, ok := b.packages[id]
		if !ok {
			b.packages[id] = pkg
			continue
		}
		if !existing.Equal(pkg) {
			b.conflict(id, fmt.Sprintf(
				"Package '%s' was disclosed with differing metadata by project '%s'; keeping the first-seen metadata.",
				id.Coordinates(), project.ID.Coordinates()))
		}
	}

	b.addIssues(project.ID, result.Issues...)

	return b
}

// Build returns the merged result. It may be called repeatedly; calls with
// the same accumulated input return equal results.
func (b *AnalyzerResultBuilder) Build() AnalyzerResult {
	result := AnalyzerResult{
		Projects: make([]Project, 0, len(b.projects)),
		Packages: make([]CuratedPackage, 0, len(b.packages)),
	}
	for _, p := range b.projects {
		result.Projects = append(result.Projects, p)
	}
	for _, p := range b.packages {
		result.Packages = append(result.Packages, p)
	}
	slices.SortFunc(result.Projects, func(a, c Project) int { return a.ID.Compare(c.ID) })
	slices.SortFunc(result.Packages, func(a, c CuratedPackage) int { return a.Package.ID.Compare(c.Package.ID) })

	b.reportUnresolved(&result)

	result.Issues = make(map[Identifier][]Issue, len(b.issues)+len(b.unresolved))
	for id, s := range b.issues {
		result.Issues[id] = slices.Clone(s.items)
	}
	for _, id := range sortedKeys(b.unresolved) {
		result.Issues[id] = DedupIssues(append(result.Issues[id], b.unresolved[id]))
	}
	if len(result.Issues) == 0 {
		result.Issues = nil
	}

	return result
}

// reportUnresolved records an issue for every referenced id that is neither
// a merged package nor a merged project.
func (b *AnalyzerResultBuilder) reportUnresolved(result *AnalyzerResult) {
	for _, project := range result.Projects {
		for _, scope := range project.Scopes {
			for _, root := range scope.Dependencies {
				root.Walk(0, func(ref PackageReference, _ int) {
					if _, ok := b.packages[ref.ID]; ok {
						return
					}
					if _, ok := b.projects[ref.ID]; ok {
						return
					}
					if _, done := b.unresolved[ref.ID]; done {
						return
					}
					b.unresolved[ref.ID] = b.newIssue(fmt.Sprintf(
						"Dependency '%s' referenced in scope '%s' of project '%s' does not resolve to any analyzed package.",
						ref.ID.Coordinates(), scope.Name, project.ID.Coordinates()))
				})
			}
		}
	}
}

func (b *AnalyzerResultBuilder) conflict(id Identifier, message string) {
	b.addIssues(id, b.newIssue(message))
}

func (b *AnalyzerResultBuilder) newIssue(message string) Issue {
	issue := CreateAndLogIssue(b.log, BuilderIssueSource, message, SeverityError)
	issue.Timestamp = b.clock().UTC()
	return issue
}

func (b *AnalyzerResultBuilder) addIssues(id Identifier, issues ...Issue) {
	if len(issues) == 0 {
		return
	}
	s, ok := b.issues[id]
	if !ok {
		s = &issueSet{}
		b.issues[id] = s
	}
	s.add(issues...)
}

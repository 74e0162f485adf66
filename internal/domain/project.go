package domain

import (
	"slices"
	"strings"
)

// PackageLinkage describes how a dependency is linked into its dependent.
type PackageLinkage string

const (
	LinkageDynamic        PackageLinkage = "DYNAMIC"
	LinkageStatic         PackageLinkage = "STATIC"
	LinkageProjectDynamic PackageLinkage = "PROJECT_DYNAMIC"
	LinkageProjectStatic  PackageLinkage = "PROJECT_STATIC"
)

// PackageReference is one occurrence of a package in a dependency tree. The
// same package may occur at several positions, each with its own issues.
type PackageReference struct {
	ID           Identifier         `json:"id"                     yaml:"id"`
	Linkage      PackageLinkage     `json:"linkage,omitempty"      yaml:"linkage,omitempty"`
	Dependencies []PackageReference `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	Issues       []Issue            `json:"issues,omitempty"       yaml:"issues,omitempty"`
}

// NewPackageReference creates a tree node with sorted children.
func NewPackageReference(id Identifier, dependencies []PackageReference, issues ...Issue) PackageReference {
	ref := PackageReference{ID: id, Linkage: LinkageDynamic, Issues: slices.Clone(issues)}
	if len(dependencies) > 0 {
		ref.Dependencies = sortReferences(dependencies)
	}
	return ref
}

// Walk visits the reference and all its transitive dependencies depth-first.
// fn receives each node and its depth, with this node at depth.
func (r PackageReference) Walk(depth int, fn func(ref PackageReference, depth int)) {
	fn(r, depth)
	for _, dep := range r.Dependencies {
		dep.Walk(depth+1, fn)
	}
}

// Equal compares two trees structurally.
func (r PackageReference) Equal(other PackageReference) bool {
	return r.ID == other.ID &&
		r.Linkage == other.Linkage &&
		slices.EqualFunc(r.Issues, other.Issues, Issue.Equal) &&
		slices.EqualFunc(r.Dependencies, other.Dependencies, PackageReference.Equal)
}

func sortReferences(refs []PackageReference) []PackageReference {
	out := slices.Clone(refs)
	slices.SortStableFunc(out, func(a, b PackageReference) int { return a.ID.Compare(b.ID) })
	return out
}

// Scope is a named subset of a project's dependency tree, for example
// "compile" or "test".
type Scope struct {
	Name         string             `json:"name"                   yaml:"name"`
	Dependencies []PackageReference `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
}

// NewScope creates a scope with sorted root references.
func NewScope(name string, dependencies ...PackageReference) Scope {
	s := Scope{Name: name}
	if len(dependencies) > 0 {
		s.Dependencies = sortReferences(dependencies)
	}
	return s
}

// Contains reports whether id occurs anywhere in the scope's trees.
func (s Scope) Contains(id Identifier) bool {
	found := false
	for _, root := range s.Dependencies {
		root.Walk(0, func(ref PackageReference, _ int) {
			if ref.ID == id {
				found = true
			}
		})
		if found {
			return true
		}
	}
	return false
}

// Equal compares two scopes structurally.
func (s Scope) Equal(other Scope) bool {
	return s.Name == other.Name &&
		slices.EqualFunc(s.Dependencies, other.Dependencies, PackageReference.Equal)
}

// Project is a unit analyzed from a single definition file.
type Project struct {
	ID                        Identifier               `json:"id"                           yaml:"id"`
	DefinitionFilePath        string                   `json:"definition_file_path"         yaml:"definition_file_path"`
	DeclaredLicenses          []string                 `json:"declared_licenses,omitempty"  yaml:"declared_licenses,omitempty"`
	DeclaredLicensesProcessed ProcessedDeclaredLicense `json:"declared_licenses_processed"  yaml:"declared_licenses_processed,omitempty"`
	VCS                       VcsInfo                  `json:"vcs"                          yaml:"vcs,omitempty"`
	HomepageURL               string                   `json:"homepage_url,omitempty"       yaml:"homepage_url,omitempty"`
	Scopes                    []Scope                  `json:"scopes,omitempty"             yaml:"scopes,omitempty"`
}

// WithScopes returns a copy of the project whose scopes are sorted by name.
// A later scope with an already used name is dropped.
func (p Project) WithScopes(scopes ...Scope) Project {
	seen := make(map[string]bool, len(scopes))
	var out []Scope
	for _, s := range scopes {
		if seen[s.Name] {
			continue
		}
		seen[s.Name] = true
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b Scope) int { return strings.Compare(a.Name, b.Name) })
	p.Scopes = out
	return p
}

// Scope returns the scope with the given name.
func (p Project) Scope(name string) (Scope, bool) {
	for _, s := range p.Scopes {
		if s.Name == name {
			return s, true
		}
	}
	return Scope{}, false
}

// CollectDependencies returns the ids of all packages in the project's
// scopes up to maxDepth (0 = direct only, negative = unlimited), sorted.
func (p Project) CollectDependencies(maxDepth int) []Identifier {
	seen := make(map[Identifier]bool)
	for _, s := range p.Scopes {
		for _, root := range s.Dependencies {
			root.Walk(0, func(ref PackageReference, depth int) {
				if maxDepth < 0 || depth <= maxDepth {
					seen[ref.ID] = true
				}
			})
		}
	}
	ids := make([]Identifier, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, Identifier.Compare)
	return ids
}

// ToPackage views the project as a package so that package rules can be
// applied to it.
func (p Project) ToPackage() Package {
	return Package{
		ID:                        p.ID,
		DeclaredLicenses:          slices.Clone(p.DeclaredLicenses),
		DeclaredLicensesProcessed: p.DeclaredLicensesProcessed,
		HomepageURL:               p.HomepageURL,
		VCS:                       p.VCS,
	}
}

// Equal compares two projects structurally.
func (p Project) Equal(other Project) bool {
	return p.ID == other.ID &&
		p.DefinitionFilePath == other.DefinitionFilePath &&
		slices.Equal(p.DeclaredLicenses, other.DeclaredLicenses) &&
		p.DeclaredLicensesProcessed.Equal(other.DeclaredLicensesProcessed) &&
		p.VCS == other.VCS &&
		p.HomepageURL == other.HomepageURL &&
		slices.EqualFunc(p.Scopes, other.Scopes, Scope.Equal)
}

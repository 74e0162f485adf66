// Package graph indexes the dependency trees of an analyzer result as a flat
// arena of nodes, one per occurrence of a package in a tree.
package graph

import (
	"regexp"
	"slices"

	"github.com/complykit/complykit/internal/domain"
)

// NoParent is the Parent of root nodes.
const NoParent = -1

// Node is one occurrence of a package in a project's scope. Children and
// Parent are indices into the arena.
type Node struct {
	ID       domain.Identifier
	Project  domain.Identifier
	Scope    string
	Linkage  domain.PackageLinkage
	Parent   int
	Depth    int
	Children []int
	Issues   []domain.Issue
}

// ScopeRef names a scope of a project.
type ScopeRef struct {
	Project domain.Identifier
	Scope   string
}

// Index is a read-only view over the trees of an AnalyzerResult. It may be
// shared between goroutines.
type Index struct {
	nodes    []Node
	byID     map[domain.Identifier][]int
	projects map[domain.Identifier]bool
}

// New builds the index. The result must not be modified afterwards.
func New(result *domain.AnalyzerResult) *Index {
	ix := &Index{
		byID:     make(map[domain.Identifier][]int),
		projects: make(map[domain.Identifier]bool, len(result.Projects)),
	}
	for _, project := range result.Projects {
		ix.projects[project.ID] = true
		for _, scope := range project.Scopes {
			for _, root := range scope.Dependencies {
				ix.add(project.ID, scope.Name, root, NoParent, 0)
			}
		}
	}
	return ix
}

func (ix *Index) add(project domain.Identifier, scope string, ref domain.PackageReference, parent, depth int) int {
	i := len(ix.nodes)
	ix.nodes = append(ix.nodes, Node{
		ID:      ref.ID,
		Project: project,
		Scope:   scope,
		Linkage: ref.Linkage,
		Parent:  parent,
		Depth:   depth,
		Issues:  ref.Issues,
	})
	ix.byID[ref.ID] = append(ix.byID[ref.ID], i)

	for _, dep := range ref.Dependencies {
		child := ix.add(project, scope, dep, i, depth+1)
		ix.nodes[i].Children = append(ix.nodes[i].Children, child)
	}
	return i
}

// Len returns the number of nodes.
func (ix *Index) Len() int { return len(ix.nodes) }

// Node returns the node at index i.
func (ix *Index) Node(i int) Node { return ix.nodes[i] }

// Occurrences returns every node of id in tree order.
func (ix *Index) Occurrences(id domain.Identifier) []Node {
	idx := ix.byID[id]
	out := make([]Node, 0, len(idx))
	for _, i := range idx {
		out = append(out, ix.nodes[i])
	}
	return out
}

// IsProject reports whether id names an analyzed project.
func (ix *Index) IsProject(id domain.Identifier) bool { return ix.projects[id] }

// IsDirect reports whether id occurs as a root of any scope.
func (ix *Index) IsDirect(id domain.Identifier) bool {
	for _, i := range ix.byID[id] {
		if ix.nodes[i].Depth == 0 {
			return true
		}
	}
	return false
}

// MinDepth returns the smallest depth at which id occurs.
func (ix *Index) MinDepth(id domain.Identifier) (int, bool) {
	idx := ix.byID[id]
	if len(idx) == 0 {
		return 0, false
	}
	depth := ix.nodes[idx[0]].Depth
	for _, i := range idx[1:] {
		depth = min(depth, ix.nodes[i].Depth)
	}
	return depth, true
}

// ScopesOf returns the distinct scopes id occurs in, sorted.
func (ix *Index) ScopesOf(id domain.Identifier) []ScopeRef {
	seen := make(map[ScopeRef]bool)
	var refs []ScopeRef
	for _, i := range ix.byID[id] {
		ref := ScopeRef{Project: ix.nodes[i].Project, Scope: ix.nodes[i].Scope}
		if !seen[ref] {
			seen[ref] = true
			refs = append(refs, ref)
		}
	}
	slices.SortFunc(refs, func(a, b ScopeRef) int {
		if c := a.Project.Compare(b.Project); c != 0 {
			return c
		}
		switch {
		case a.Scope < b.Scope:
			return -1
		case a.Scope > b.Scope:
			return 1
		}
		return 0
	})
	return refs
}

// ProjectsUsing returns the projects whose trees contain id, sorted.
func (ix *Index) ProjectsUsing(id domain.Identifier) []domain.Identifier {
	var out []domain.Identifier
	for _, ref := range ix.ScopesOf(id) {
		if len(out) == 0 || out[len(out)-1] != ref.Project {
			out = append(out, ref.Project)
		}
	}
	return out
}

// IsExcluded reports whether every occurrence of id lies in a scope matched
// by one of the patterns. Projects and ids that occur nowhere are never
// excluded.
func (ix *Index) IsExcluded(id domain.Identifier, excludedScopes []*regexp.Regexp) bool {
	if ix.projects[id] || len(excludedScopes) == 0 {
		return false
	}
	idx := ix.byID[id]
	if len(idx) == 0 {
		return false
	}
	for _, i := range idx {
		if !matchesAny(ix.nodes[i].Scope, excludedScopes) {
			return false
		}
	}
	return true
}

// Path returns the ids from the scope root down to node i.
func (ix *Index) Path(i int) []domain.Identifier {
	var path []domain.Identifier
	for ; i != NoParent; i = ix.nodes[i].Parent {
		path = append(path, ix.nodes[i].ID)
	}
	slices.Reverse(path)
	return path
}

func matchesAny(s string, patterns []*regexp.Regexp) bool {
	for _, re := range patterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

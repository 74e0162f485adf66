package domain

import (
	"maps"
	"slices"
)

// RemoteArtifact locates a downloadable binary or source archive.
type RemoteArtifact struct {
	URL  string `json:"url"            yaml:"url"`
	Hash string `json:"hash,omitempty" yaml:"hash,omitempty"`
}

// IsEmpty reports whether the artifact carries no location.
func (a RemoteArtifact) IsEmpty() bool { return a.URL == "" && a.Hash == "" }

// VcsInfo describes where the sources of a project or package live.
type VcsInfo struct {
	Type     string `json:"type,omitempty"     yaml:"type,omitempty"`
	URL      string `json:"url,omitempty"      yaml:"url,omitempty"`
	Revision string `json:"revision,omitempty" yaml:"revision,omitempty"`
	Path     string `json:"path,omitempty"     yaml:"path,omitempty"`
}

// ProcessedDeclaredLicense is the normalized form of a set of raw declared
// license strings.
type ProcessedDeclaredLicense struct {
	SPDXExpression string            `json:"spdx_expression,omitempty" yaml:"spdx_expression,omitempty"`
	Mapped         map[string]string `json:"mapped,omitempty"          yaml:"mapped,omitempty"`
	Unmapped       []string          `json:"unmapped,omitempty"        yaml:"unmapped,omitempty"`
}

// Equal compares two processed licenses treating nil and empty alike.
func (p ProcessedDeclaredLicense) Equal(other ProcessedDeclaredLicense) bool {
	return p.SPDXExpression == other.SPDXExpression &&
		maps.Equal(p.Mapped, other.Mapped) &&
		slices.Equal(p.Unmapped, other.Unmapped)
}

// Package is a dependency as reported by a package manager.
type Package struct {
	ID                        Identifier               `json:"id"                           yaml:"id"`
	DeclaredLicenses          []string                 `json:"declared_licenses,omitempty"  yaml:"declared_licenses,omitempty"`
	DeclaredLicensesProcessed ProcessedDeclaredLicense `json:"declared_licenses_processed"  yaml:"declared_licenses_processed,omitempty"`
	ConcludedLicense          string                   `json:"concluded_license,omitempty"  yaml:"concluded_license,omitempty"`
	Description               string                   `json:"description,omitempty"        yaml:"description,omitempty"`
	HomepageURL               string                   `json:"homepage_url,omitempty"       yaml:"homepage_url,omitempty"`
	BinaryArtifact            RemoteArtifact           `json:"binary_artifact"              yaml:"binary_artifact,omitempty"`
	SourceArtifact            RemoteArtifact           `json:"source_artifact"              yaml:"source_artifact,omitempty"`
	VCS                       VcsInfo                  `json:"vcs"                          yaml:"vcs,omitempty"`
}

// NewPackage creates a package with sorted, unique declared licenses.
func NewPackage(id Identifier, declaredLicenses ...string) Package {
	return Package{ID: id, DeclaredLicenses: sortedUnique(declaredLicenses)}
}

// Equal reports whether two packages carry the same metadata.
func (p Package) Equal(other Package) bool {
	return p.ID == other.ID &&
		slices.Equal(p.DeclaredLicenses, other.DeclaredLicenses) &&
		p.DeclaredLicensesProcessed.Equal(other.DeclaredLicensesProcessed) &&
		p.ConcludedLicense == other.ConcludedLicense &&
		p.Description == other.Description &&
		p.HomepageURL == other.HomepageURL &&
		p.BinaryArtifact == other.BinaryArtifact &&
		p.SourceArtifact == other.SourceArtifact &&
		p.VCS == other.VCS
}

// ToReference creates a tree node for this package.
func (p Package) ToReference(dependencies []PackageReference, issues ...Issue) PackageReference {
	return NewPackageReference(p.ID, dependencies, issues...)
}

// ToCuratedPackage wraps the package without any curations applied.
func (p Package) ToCuratedPackage() CuratedPackage {
	return CuratedPackage{Package: p}
}

// PackageCurationResult records one curation applied to a package. The
// maps are opaque to the evaluator.
type PackageCurationResult struct {
	Base     map[string]string `json:"base,omitempty"     yaml:"base,omitempty"`
	Curation map[string]string `json:"curation,omitempty" yaml:"curation,omitempty"`
}

// CuratedPackage is a package with metadata corrections applied.
type CuratedPackage struct {
	Package   Package                 `json:"package"             yaml:"package"`
	Curations []PackageCurationResult `json:"curations,omitempty" yaml:"curations,omitempty"`
}

// Equal reports whether two curated packages are identical.
func (c CuratedPackage) Equal(other CuratedPackage) bool {
	return c.Package.Equal(other.Package) &&
		slices.EqualFunc(c.Curations, other.Curations, func(a, b PackageCurationResult) bool {
			return maps.Equal(a.Base, b.Base) && maps.Equal(a.Curation, b.Curation)
		})
}

func sortedUnique(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	out := slices.Clone(items)
	slices.Sort(out)
	return slices.Compact(out)
}

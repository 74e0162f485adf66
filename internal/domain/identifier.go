package domain

import (
	"cmp"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Identifier names a project or package by ecosystem type, namespace, name
// and version.
type Identifier struct {
	Type      string
	Namespace string
	Name      string
	Version   string
}

// NewIdentifier builds a normalized Identifier.
func NewIdentifier(typ, namespace, name, version string) Identifier {
	return Identifier{
		Type:      strings.NewReplacer("/", "", "\\", "").Replace(normalizeComponent(typ)),
		Namespace: normalizeComponent(namespace),
		Name:      normalizeComponent(name),
		Version:   normalizeComponent(version),
	}
}

// ParseIdentifier parses "type:namespace:name:version". Missing trailing
// components are left empty; extra colons belong to the version.
func ParseIdentifier(coordinates string) Identifier {
	parts := strings.SplitN(coordinates, ":", 4)
	for len(parts) < 4 {
		parts = append(parts, "")
	}
	return NewIdentifier(parts[0], parts[1], parts[2], parts[3])
}

func normalizeComponent(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// Coordinates returns the colon-separated form of the identifier.
func (id Identifier) Coordinates() string {
	return fmt.Sprintf("%s:%s:%s:%s", id.Type, id.Namespace, id.Name, id.Version)
}

func (id Identifier) String() string { return id.Coordinates() }

// IsEmpty reports whether every component is empty.
func (id Identifier) IsEmpty() bool {
	return id == Identifier{}
}

// Compare orders identifiers lexicographically over
// (type, namespace, name, version).
func (id Identifier) Compare(other Identifier) int {
	if c := cmp.Compare(id.Type, other.Type); c != 0 {
		return c
	}
	if c := cmp.Compare(id.Namespace, other.Namespace); c != 0 {
		return c
	}
	if c := cmp.Compare(id.Name, other.Name); c != 0 {
		return c
	}
	return cmp.Compare(id.Version, other.Version)
}

func (id Identifier) MarshalText() ([]byte, error) {
	return []byte(id.Coordinates()), nil
}

func (id *Identifier) UnmarshalText(text []byte) error {
	*id = ParseIdentifier(string(text))
	return nil
}

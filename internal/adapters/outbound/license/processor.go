// Package license normalizes raw declared license strings into SPDX
// expressions.
package license

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/complykit/complykit/internal/domain"
	"github.com/github/go-spdx/v2/spdxexp"
	"gopkg.in/yaml.v3"
)

//go:embed mappings.yml
var builtinMappings []byte

// Processor implements domain.LicenseProcessor. A raw license is first
// looked up in the mapping table, then accepted as is if it is a valid SPDX
// expression, and otherwise reported as unmapped.
type Processor struct {
	mappings map[string]string
}

// New creates a processor from the built-in mappings overlaid with extra,
// which usually comes from the license_mappings of the project config.
func New(extra map[string]string) (*Processor, error) {
	var builtin map[string]string
	if err := yaml.Unmarshal(builtinMappings, &builtin); err != nil {
		return nil, fmt.Errorf("parsing built-in license mappings: %w", err)
	}

	p := &Processor{mappings: make(map[string]string, len(builtin)+len(extra))}
	for raw, spdx := range builtin {
		p.mappings[key(raw)] = spdx
	}
	for raw, spdx := range extra {
		p.mappings[key(raw)] = spdx
	}
	return p, nil
}

// Process normalizes raw. Blank entries are ignored.
func (p *Processor) Process(raw []string) domain.ProcessedDeclaredLicense {
	var (
		result      domain.ProcessedDeclaredLicense
		expressions []string
		seen        = make(map[string]bool)
	)

	for _, r := range raw {
		trimmed := strings.TrimSpace(r)
		if trimmed == "" {
			continue
		}

		expr, ok := p.mappings[key(trimmed)]
		if ok {
			if result.Mapped == nil {
				result.Mapped = make(map[string]string)
			}
			result.Mapped[r] = expr
		} else if IsValidExpression(trimmed) {
			expr = trimmed
		} else {
			result.Unmapped = append(result.Unmapped, r)
			continue
		}

		if !seen[expr] {
			seen[expr] = true
			expressions = append(expressions, expr)
		}
	}

	result.SPDXExpression = conjunction(expressions)
	return result
}

// IsValidExpression reports whether s is a valid SPDX license expression.
func IsValidExpression(s string) bool {
	if strings.TrimSpace(s) == "" {
		return false
	}
	valid, _ := spdxexp.ValidateLicenses([]string{s})
	return valid
}

// IsSPDXLicense reports whether id is a single valid SPDX license identifier,
// optionally with an exception.
func IsSPDXLicense(id string) bool {
	if strings.ContainsAny(id, "()") {
		return false
	}
	for _, tok := range strings.Fields(id) {
		switch strings.ToUpper(tok) {
		case "AND", "OR":
			return false
		}
	}
	return IsValidExpression(id)
}

func conjunction(expressions []string) string {
	if len(expressions) == 1 {
		return expressions[0]
	}
	parts := make([]string, len(expressions))
	for i, e := range expressions {
		if isCompound(e) {
			e = "(" + e + ")"
		}
		parts[i] = e
	}
	return strings.Join(parts, " AND ")
}

func isCompound(expr string) bool {
	for _, tok := range strings.Fields(expr) {
		switch strings.ToUpper(tok) {
		case "AND", "OR":
			return true
		}
	}
	return false
}

func key(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

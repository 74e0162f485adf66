package domain

import (
	"fmt"
	"strings"
)

// LicenseSource tells where a license of a package was found.
type LicenseSource string

const (
	LicenseSourceNone      LicenseSource = ""
	LicenseSourceDeclared  LicenseSource = "DECLARED"
	LicenseSourceDetected  LicenseSource = "DETECTED"
	LicenseSourceConcluded LicenseSource = "CONCLUDED"
)

// ParseLicenseSource parses a license source name case-insensitively. The
// empty string yields LicenseSourceNone.
func ParseLicenseSource(raw string) (LicenseSource, error) {
	switch s := LicenseSource(strings.ToUpper(strings.TrimSpace(raw))); s {
	case LicenseSourceNone, LicenseSourceDeclared, LicenseSourceDetected, LicenseSourceConcluded:
		return s, nil
	default:
		return LicenseSourceNone, fmt.Errorf("unknown license source %q", raw)
	}
}

// Violation is a compliance finding produced by a rule. License and
// LicenseSource are empty when the finding does not concern a license.
type Violation struct {
	Rule          string        `json:"rule"                     yaml:"rule"`
	Pkg           Identifier    `json:"pkg"                      yaml:"pkg"`
	License       string        `json:"license,omitempty"        yaml:"license,omitempty"`
	LicenseSource LicenseSource `json:"license_source,omitempty" yaml:"license_source,omitempty"`
	Severity      Severity      `json:"severity"                 yaml:"severity"`
	Message       string        `json:"message"                  yaml:"message"`
	HowToFix      string        `json:"how_to_fix"               yaml:"how_to_fix"`
}

func (v Violation) String() string {
	return fmt.Sprintf("[%s] %s: %s - %s", v.Severity, v.Rule, v.Pkg.Coordinates(), v.Message)
}

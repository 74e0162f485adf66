package domain

import (
	"fmt"
	"regexp"
)

// StorageType selects a scan result storage backend.
type StorageType string

const (
	StorageTypeLocal  StorageType = "local"
	StorageTypeMemory StorageType = "memory"
)

// ValidStorageTypes enumerates all recognized storage backends.
var ValidStorageTypes = []StorageType{StorageTypeLocal, StorageTypeMemory}

// ProjectConfig holds project-level configuration loaded from .complykit.yaml.
type ProjectConfig struct {
	ExcludedScopes  []string                  `yaml:"excluded_scopes"  json:"excluded_scopes,omitempty"`
	LicenseMappings map[string]string         `yaml:"license_mappings" json:"license_mappings,omitempty"`
	Resolutions     []RuleViolationResolution `yaml:"resolutions"      json:"resolutions,omitempty"`
	Policy          PolicyConfig              `yaml:"policy"           json:"policy,omitempty"`
	FailOn          string                    `yaml:"fail_on"          json:"fail_on,omitempty"`
	Storage         StorageConfig             `yaml:"storage"          json:"storage,omitempty"`
}

// PolicyConfig parameterizes the built-in policy rules.
type PolicyConfig struct {
	DeniedLicenses   []string `yaml:"denied_licenses"   json:"denied_licenses,omitempty"`
	CopyleftLicenses []string `yaml:"copyleft_licenses" json:"copyleft_licenses,omitempty"`
	IssueThreshold   string   `yaml:"issue_threshold"   json:"issue_threshold,omitempty"`
}

// StorageConfig selects and configures the scan result storage.
type StorageConfig struct {
	Type StorageType `yaml:"type" json:"type,omitempty"`
	Path string      `yaml:"path" json:"path,omitempty"`
}

// RuleViolationResolution marks violations whose message matches Message as
// resolved, for the stated reason.
type RuleViolationResolution struct {
	Message string `yaml:"message" json:"message"`
	Reason  string `yaml:"reason"  json:"reason"`
	Comment string `yaml:"comment" json:"comment,omitempty"`
}

// ValidResolutionReasons enumerates the accepted resolution reasons.
var ValidResolutionReasons = []string{
	"CANT_FIX_EXCEPTION",
	"DYNAMIC_LINKAGE_EXCEPTION",
	"EXAMPLE_OF_EXCEPTION",
	"LICENSE_ACQUIRED_EXCEPTION",
	"NOT_MODIFIED_EXCEPTION",
	"PATENT_GRANT_EXCEPTION",
}

// DefaultCopyleftLicenses is used when the policy names none.
var DefaultCopyleftLicenses = []string{
	"AGPL-3.0-only", "AGPL-3.0-or-later",
	"GPL-2.0-only", "GPL-2.0-or-later",
	"GPL-3.0-only", "GPL-3.0-or-later",
	"LGPL-2.1-only", "LGPL-2.1-or-later",
	"LGPL-3.0-only", "LGPL-3.0-or-later",
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() ProjectConfig {
	return ProjectConfig{
		Policy: PolicyConfig{
			CopyleftLicenses: DefaultCopyleftLicenses,
			IssueThreshold:   SeverityWarning.String(),
		},
		FailOn:  SeverityError.String(),
		Storage: StorageConfig{Type: StorageTypeLocal, Path: ".complykit/scan-results"},
	}
}

// FailOnSeverity returns the lowest unresolved violation severity that fails
// a run.
func (c ProjectConfig) FailOnSeverity() Severity {
	if c.FailOn == "" {
		return SeverityError
	}
	s, err := ParseSeverity(c.FailOn)
	if err != nil {
		return SeverityError
	}
	return s
}

// IssueThresholdSeverity returns the lowest analyzer issue severity the
// policy reports.
func (c ProjectConfig) IssueThresholdSeverity() Severity {
	if c.Policy.IssueThreshold == "" {
		return SeverityWarning
	}
	s, err := ParseSeverity(c.Policy.IssueThreshold)
	if err != nil {
		return SeverityWarning
	}
	return s
}

// Validate checks the config for invalid values and returns a descriptive error.
func (c ProjectConfig) Validate() error {
	// 1. excluded scopes must be valid patterns
	for _, pattern := range c.ExcludedScopes {
		if _, err := regexp.Compile(pattern); err != nil {
			return fmt.Errorf("invalid excluded_scopes pattern %q: %w", pattern, err)
		}
	}

	// 2. license mappings need both sides
	for raw, spdx := range c.LicenseMappings {
		if raw == "" || spdx == "" {
			return fmt.Errorf("license_mappings entries must not be empty (got %q: %q)", raw, spdx)
		}
	}

	// 3. resolutions need a valid pattern and a known reason
	for i, r := range c.Resolutions {
		if r.Message == "" {
			return fmt.Errorf("resolutions[%d].message must not be empty", i)
		}
		if _, err := regexp.Compile(r.Message); err != nil {
			return fmt.Errorf("resolutions[%d].message is not a valid pattern: %w", i, err)
		}
		if !isValidReason(r.Reason) {
			return fmt.Errorf("unknown reason %q in resolutions[%d]", r.Reason, i)
		}
	}

	// 4. severities must parse
	if c.FailOn != "" {
		if _, err := ParseSeverity(c.FailOn); err != nil {
			return fmt.Errorf("fail_on: %w", err)
		}
	}
	if c.Policy.IssueThreshold != "" {
		if _, err := ParseSeverity(c.Policy.IssueThreshold); err != nil {
			return fmt.Errorf("policy.issue_threshold: %w", err)
		}
	}

	// 5. storage type must be known or empty
	if c.Storage.Type != "" {
		valid := false
		for _, t := range ValidStorageTypes {
			if c.Storage.Type == t {
				valid = true
				break
			}
		}
		if !valid {
			return fmt.Errorf("unknown storage.type %q (valid: local, memory)", c.Storage.Type)
		}
	}

	return nil
}

// ExcludedScopePatterns compiles the excluded scope patterns. Patterns are
// anchored so that "test" does not exclude "testFixtures".
func (c ProjectConfig) ExcludedScopePatterns() ([]*regexp.Regexp, error) {
	patterns := make([]*regexp.Regexp, 0, len(c.ExcludedScopes))
	for _, p := range c.ExcludedScopes {
		re, err := regexp.Compile("^(?:" + p + ")$")
		if err != nil {
			return nil, fmt.Errorf("compiling excluded scope %q: %w", p, err)
		}
		patterns = append(patterns, re)
	}
	return patterns, nil
}

func isValidReason(reason string) bool {
	for _, r := range ValidResolutionReasons {
		if r == reason {
			return true
		}
	}
	return false
}

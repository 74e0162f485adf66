package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/complykit/complykit/internal/domain"
	"gopkg.in/yaml.v3"
)

// FileName is the name of the project configuration file.
const FileName = ".complykit.yaml"

// YAMLLoader implements domain.ConfigLoader by reading .complykit.yaml.
type YAMLLoader struct{}

// New creates a YAMLLoader.
func New() *YAMLLoader { return &YAMLLoader{} }

// Load reads .complykit.yaml from projectPath.
// Returns DefaultConfig if the file does not exist.
func (l *YAMLLoader) Load(projectPath string) (domain.ProjectConfig, error) {
	data, err := os.ReadFile(filepath.Join(projectPath, FileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.DefaultConfig(), nil
		}
		return domain.ProjectConfig{}, err
	}

	var cfg domain.ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.ProjectConfig{}, fmt.Errorf("parsing %s: %w", FileName, err)
	}

	// Validate before merging so errors point at what the user wrote.
	if err := cfg.Validate(); err != nil {
		return domain.ProjectConfig{}, fmt.Errorf("invalid %s: %w", FileName, err)
	}

	return mergeConfig(domain.DefaultConfig(), cfg), nil
}

// mergeConfig overlays explicit values on top of the defaults.
// Explicit (non-zero) values always win.
func mergeConfig(base, override domain.ProjectConfig) domain.ProjectConfig {
	result := base

	result.ExcludedScopes = override.ExcludedScopes
	result.LicenseMappings = override.LicenseMappings
	result.Resolutions = override.Resolutions
	result.Policy.DeniedLicenses = override.Policy.DeniedLicenses

	// An explicit copyleft list replaces the default list entirely.
	if len(override.Policy.CopyleftLicenses) > 0 {
		result.Policy.CopyleftLicenses = override.Policy.CopyleftLicenses
	}
	if override.Policy.IssueThreshold != "" {
		result.Policy.IssueThreshold = override.Policy.IssueThreshold
	}
	if override.FailOn != "" {
		result.FailOn = override.FailOn
	}

	if override.Storage.Type != "" {
		result.Storage.Type = override.Storage.Type
	}
	if override.Storage.Path != "" {
		result.Storage.Path = override.Storage.Path
	}

	return result
}

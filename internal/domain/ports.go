package domain

import (
	"context"
	"time"
)

// ResultReader loads analyzer output from disk.
type ResultReader interface {
	ReadProjectResult(path string) (ProjectAnalyzerResult, error)
	ReadAnalyzerResult(path string) (*AnalyzerResult, error)
}

// ResultWriter persists a merged analyzer result.
type ResultWriter interface {
	WriteAnalyzerResult(path string, result *AnalyzerResult) error
}

// LicenseProcessor normalizes raw declared license strings. Strings that
// cannot be mapped end up in ProcessedDeclaredLicense.Unmapped.
type LicenseProcessor interface {
	Process(raw []string) ProcessedDeclaredLicense
}

// ConfigLoader loads the project configuration.
type ConfigLoader interface {
	Load(projectPath string) (ProjectConfig, error)
}

// ScanResultStorage is a key/value store of scan results keyed by package
// identifier.
type ScanResultStorage interface {
	Name() string
	Read(ctx context.Context, id Identifier) (ScanResultContainer, error)
	Add(ctx context.Context, id Identifier, result ScanResult) error
}

// GitInfo answers questions about the VCS checkout of a project.
type GitInfo interface {
	IsGitRepo(projectPath string) bool
	CommitHash(projectPath string) (string, error)
	VcsInfo(projectPath string) (VcsInfo, error)
}

// EvaluationMetrics records statistics about evaluation runs.
type EvaluationMetrics interface {
	ObserveEvaluation(report *EvaluationReport, elapsed time.Duration)
}

package application

import (
	"context"
	"fmt"
	"time"

	"github.com/complykit/complykit/internal/domain"
	"github.com/complykit/complykit/internal/domain/evaluator"
	"github.com/complykit/complykit/internal/domain/policy"
	"github.com/go-logr/logr"
)

// EvaluateService orchestrates an evaluation run:
// load config → read result → evaluate rules → apply resolutions → report.
type EvaluateService struct {
	reader       domain.ResultReader
	configLoader domain.ConfigLoader
	gitInfo      domain.GitInfo
	metrics      domain.EvaluationMetrics
	isSPDX       func(string) bool
	definitions  []evaluator.Definition
	log          logr.Logger
	clock        func() time.Time
}

// EvaluateOption configures an EvaluateService.
type EvaluateOption func(*EvaluateService)

// WithMetrics records every evaluation in m.
func WithMetrics(m domain.EvaluationMetrics) EvaluateOption {
	return func(s *EvaluateService) { s.metrics = m }
}

// WithLicenseValidator sets the SPDX license predicate offered to rules.
func WithLicenseValidator(isSPDX func(string) bool) EvaluateOption {
	return func(s *EvaluateService) { s.isSPDX = isSPDX }
}

// WithDefinitions adds rules evaluated after the built-in policy.
func WithDefinitions(defs ...evaluator.Definition) EvaluateOption {
	return func(s *EvaluateService) { s.definitions = append(s.definitions, defs...) }
}

// WithLogger sets the logger for issues raised by rules.
func WithLogger(log logr.Logger) EvaluateOption {
	return func(s *EvaluateService) { s.log = log }
}

// WithEvaluationClock overrides the time stamped on reports.
func WithEvaluationClock(clock func() time.Time) EvaluateOption {
	return func(s *EvaluateService) { s.clock = clock }
}

func NewEvaluateService(
	reader domain.ResultReader,
	configLoader domain.ConfigLoader,
	gitInfo domain.GitInfo,
	opts ...EvaluateOption,
) *EvaluateService {
	s := &EvaluateService{
		reader:       reader,
		configLoader: configLoader,
		gitInfo:      gitInfo,
		log:          logr.Discard(),
		clock:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Evaluate evaluates the analyzer result at resultPath with the config of
// the project at projectPath.
func (s *EvaluateService) Evaluate(ctx context.Context, resultPath, projectPath string) (*domain.EvaluationReport, error) {
	// 0. Load config
	cfg, err := s.configLoader.Load(projectPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	// 1. Read the merged result
	result, err := s.reader.ReadAnalyzerResult(resultPath)
	if err != nil {
		return nil, fmt.Errorf("reading analyzer result: %w", err)
	}

	report, err := s.EvaluateResult(ctx, result, cfg)
	if err != nil {
		return nil, err
	}

	// 2. Attach the revision of the evaluated checkout
	if s.gitInfo != nil && s.gitInfo.IsGitRepo(projectPath) {
		if vcs, err := s.gitInfo.VcsInfo(projectPath); err == nil {
			report.Revision = vcs.Revision
		}
	}

	return report, nil
}

// EvaluateResult evaluates an in-memory result with cfg.
func (s *EvaluateService) EvaluateResult(ctx context.Context, result *domain.AnalyzerResult, cfg domain.ProjectConfig) (*domain.EvaluationReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	// 1. Bind the rule set
	excluded, err := cfg.ExcludedScopePatterns()
	if err != nil {
		return nil, fmt.Errorf("compiling excluded scopes: %w", err)
	}
	opts := []evaluator.Option{
		evaluator.WithExcludedScopes(excluded),
		evaluator.WithResolutions(cfg.Resolutions),
		evaluator.WithRuleLogger(s.log),
	}
	if s.isSPDX != nil {
		opts = append(opts, evaluator.WithLicenseValidator(s.isSPDX))
	}
	set, err := evaluator.NewRuleSet(result, opts...)
	if err != nil {
		return nil, fmt.Errorf("building rule set: %w", err)
	}

	// 2. Evaluate the policy, then host rules
	defs := append(policy.FromConfig(cfg).Definitions(), s.definitions...)
	if err := set.Evaluate(defs...); err != nil {
		return nil, fmt.Errorf("evaluating rules: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 3. Apply resolutions
	unresolved, resolved := set.Partition()
	if unresolved == nil {
		unresolved = []domain.Violation{}
	}

	// 4. Assemble the report
	report := &domain.EvaluationReport{
		EvaluatedAt: s.clock().UTC(),
		FailOn:      cfg.FailOnSeverity(),
		Violations:  unresolved,
		Resolved:    resolved,
		Issues:      mergeIssues(result.CollectIssues(), set.Issues()),
	}
	report.Summarize()

	s.log.Info("evaluated rules", "violations", len(unresolved), "resolved", len(resolved),
		"failed", report.Failed())

	// 5. Record metrics
	if s.metrics != nil {
		s.metrics.ObserveEvaluation(report, time.Since(start))
	}

	return report, nil
}

func mergeIssues(a, b map[domain.Identifier][]domain.Issue) map[domain.Identifier][]domain.Issue {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	out := make(map[domain.Identifier][]domain.Issue, len(a)+len(b))
	for id, issues := range a {
		out[id] = issues
	}
	for id, issues := range b {
		out[id] = domain.DedupIssues(append(out[id], issues...))
	}
	return out
}

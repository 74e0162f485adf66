package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/complykit/complykit/internal/adapters/outbound/config"
	"github.com/complykit/complykit/internal/adapters/outbound/gitinfo"
	"github.com/complykit/complykit/internal/adapters/outbound/license"
	"github.com/complykit/complykit/internal/adapters/outbound/metrics"
	"github.com/complykit/complykit/internal/adapters/outbound/resultfile"
	"github.com/complykit/complykit/internal/adapters/outbound/tui"
	"github.com/complykit/complykit/internal/application"
	"github.com/complykit/complykit/internal/domain"
	"github.com/spf13/cobra"
)

// ErrEvaluationFailed is returned when unresolved violations reach the
// fail_on severity.
var ErrEvaluationFailed = errors.New("evaluation failed")

func newEvaluateCmd(flags *globalFlags) *cobra.Command {
	var (
		projectPath string
		jsonOutput  bool
		yamlOutput  bool
		metricsFile string
	)

	cmd := &cobra.Command{
		Use:   "evaluate <analyzer-result>",
		Short: "Evaluate license compliance rules against a merged analyzer result",
		Long: "Evaluate the compliance policy configured in .complykit.yaml against a merged " +
			"analyzer result. Exits non-zero when an unresolved violation reaches fail_on.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if jsonOutput && yamlOutput {
				return fmt.Errorf("--json and --yaml are mutually exclusive")
			}

			absPath, err := filepath.Abs(projectPath)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			recorder := metrics.New()
			svc := application.NewEvaluateService(
				resultfile.New(),
				config.New(),
				gitinfo.New(),
				application.WithLicenseValidator(license.IsSPDXLicense),
				application.WithMetrics(recorder),
				application.WithLogger(flags.logger(cmd)),
			)

			report, err := svc.Evaluate(cmd.Context(), args[0], absPath)
			if err != nil {
				return fmt.Errorf("evaluation aborted: %w", err)
			}

			if metricsFile != "" {
				if err := recorder.WriteTextfile(metricsFile); err != nil {
					return fmt.Errorf("writing metrics: %w", err)
				}
			}

			switch {
			case jsonOutput:
				if err := renderJSON(cmd, report); err != nil {
					return err
				}
			case yamlOutput:
				data, err := resultfile.Encode(resultfile.FormatYAML, report)
				if err != nil {
					return err
				}
				if _, err := cmd.OutOrStdout().Write(data); err != nil {
					return err
				}
			default:
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderEvaluation(report))
			}

			if report.Failed() {
				return fmt.Errorf("%w: %d unresolved violation(s) at or above %s",
					ErrEvaluationFailed, len(report.ViolationsBySeverity(report.FailOn)), report.FailOn)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&projectPath, "path", ".", "Project path holding .complykit.yaml")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the report as JSON")
	cmd.Flags().BoolVar(&yamlOutput, "yaml", false, "Output the report as YAML")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write Prometheus metrics in text format to this file")

	return cmd
}

func renderJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseSeverityFlag(raw string) (domain.Severity, error) {
	s, err := domain.ParseSeverity(raw)
	if err != nil {
		return 0, fmt.Errorf("--min-severity: %w", err)
	}
	return s, nil
}

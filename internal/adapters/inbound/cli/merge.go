package cli

import (
	"fmt"
	"path/filepath"

	"github.com/complykit/complykit/internal/adapters/outbound/config"
	"github.com/complykit/complykit/internal/adapters/outbound/license"
	"github.com/complykit/complykit/internal/adapters/outbound/resultfile"
	"github.com/complykit/complykit/internal/application"
	"github.com/spf13/cobra"
)

func newMergeCmd(flags *globalFlags) *cobra.Command {
	var (
		output      string
		projectPath string
	)

	cmd := &cobra.Command{
		Use:   "merge <result-file|dir>...",
		Short: "Merge per-project analyzer results into one dependency graph",
		Long: "Merge the analyzer output of several projects into a single result. Declared " +
			"licenses are normalized to SPDX expressions; conflicts and unresolved references " +
			"are recorded as issues in the merged result.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			absPath, err := filepath.Abs(projectPath)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			cfg, err := config.New().Load(absPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			processor, err := license.New(cfg.LicenseMappings)
			if err != nil {
				return err
			}

			store := resultfile.New()
			svc := application.NewMergeService(store, processor, flags.logger(cmd))

			result, err := svc.Merge(args)
			if err != nil {
				return fmt.Errorf("merge failed: %w", err)
			}

			if err := store.WriteAnalyzerResult(output, result); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Merged %d project(s) and %d package(s) into %s\n",
				len(result.Projects), len(result.Packages), output)
			if n := len(result.Issues); n > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%d identifier(s) have issues; run 'complykit issues %s' for details\n", n, output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "analyzer-result.yml", "Merged result file (.yml, .yaml or .json)")
	cmd.Flags().StringVar(&projectPath, "path", ".", "Project path holding .complykit.yaml")

	return cmd
}

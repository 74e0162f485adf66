package cli

import (
	"fmt"

	"github.com/complykit/complykit/internal/adapters/outbound/resultfile"
	"github.com/complykit/complykit/internal/adapters/outbound/tui"
	"github.com/complykit/complykit/internal/application"
	"github.com/spf13/cobra"
)

func newIssuesCmd() *cobra.Command {
	var (
		minSeverity string
		jsonOutput  bool
	)

	cmd := &cobra.Command{
		Use:   "issues <analyzer-result>",
		Short: "List the issues recorded in a merged analyzer result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			min, err := parseSeverityFlag(minSeverity)
			if err != nil {
				return err
			}

			issues, err := application.NewIssueService(resultfile.New()).Collect(args[0], min)
			if err != nil {
				return err
			}

			if jsonOutput {
				return renderJSON(cmd, issues)
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderIssues(issues))
			return nil
		},
	}

	cmd.Flags().StringVar(&minSeverity, "min-severity", "HINT", "Only list issues with at least this severity")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output issues as JSON")

	return cmd
}

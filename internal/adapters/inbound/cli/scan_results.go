package cli

import (
	"fmt"
	"path/filepath"

	"github.com/complykit/complykit/internal/adapters/outbound/config"
	"github.com/complykit/complykit/internal/adapters/outbound/storage"
	"github.com/complykit/complykit/internal/adapters/outbound/tui"
	"github.com/complykit/complykit/internal/application"
	"github.com/complykit/complykit/internal/domain"
	"github.com/spf13/cobra"
)

func newListStoredScanResultsCmd() *cobra.Command {
	var (
		projectPath string
		jsonOutput  bool
	)

	cmd := &cobra.Command{
		Use:   "list-stored-scan-results <package-id>",
		Short: "List the stored scan results of a package",
		Long: "List the scan results stored for a package, identified by its coordinates " +
			"'type:namespace:name:version'. The storage is configured in .complykit.yaml.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := domain.ParseIdentifier(args[0])

			absPath, err := filepath.Abs(projectPath)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			cfg, err := config.New().Load(absPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			store, err := storage.New(cfg.Storage, absPath)
			if err != nil {
				return err
			}

			container, err := application.NewScanResultService(store).List(cmd.Context(), id)
			if err != nil {
				return err
			}

			if jsonOutput {
				return renderJSON(cmd, container)
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderScanResults(container))
			return nil
		},
	}

	cmd.Flags().StringVar(&projectPath, "path", ".", "Project path holding .complykit.yaml")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the scan results as JSON")

	return cmd
}

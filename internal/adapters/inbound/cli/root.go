package cli

import (
	"github.com/complykit/complykit/internal/adapters/outbound/logging"
	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

type globalFlags struct {
	verbose bool
	logJSON bool
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "complykit",
		Short: "License compliance for analyzed dependency graphs",
		Long: "complykit merges analyzer results into one dependency graph and evaluates " +
			"license compliance rules against it.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Log debug output to stderr")
	cmd.PersistentFlags().BoolVar(&flags.logJSON, "log-json", false, "Log as JSON lines")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newMergeCmd(flags))
	cmd.AddCommand(newEvaluateCmd(flags))
	cmd.AddCommand(newIssuesCmd())
	cmd.AddCommand(newListStoredScanResultsCmd())
	cmd.AddCommand(newMCPCmd(flags))
	return cmd
}

func (f *globalFlags) logger(cmd *cobra.Command) logr.Logger {
	return logging.New(cmd.ErrOrStderr(), logging.Options{Verbose: f.verbose, JSON: f.logJSON})
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

func Execute() error {
	return newRootCmd().Execute()
}

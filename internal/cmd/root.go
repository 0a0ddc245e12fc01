package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for taskflow
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "taskflow",
		Short: "Sequential security automation workflow runner",
		Long: `taskflow runs security automation workflows: ordered lists of tasks such as
vendor API calls (Google Workspace, Microsoft Graph, Okta, SIEM collectors)
or local commands.

Tasks run one after another in the order they are defined. A failing task is
recorded and the workflow continues with the next one. Every run produces an
execution report with per-task status and results.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	cmd.AddCommand(NewRunCommand())
	cmd.AddCommand(NewValidateCommand())
	cmd.AddCommand(NewReportsCommand())

	return cmd
}

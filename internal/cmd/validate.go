package cmd

import (
	"fmt"
	"io"

	"github.com/harrison/taskflow/internal/workflow"
	"github.com/spf13/cobra"
)

// NewValidateCommand creates and returns the validate subcommand
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <workflow.yaml>...",
		Short: "Validate one or more workflow files",
		Long: `Parse and validate workflow files, checking for:
  - Every task has an id
  - Every task defines exactly one of http, command or shell
  - HTTP tasks have a valid URL and expected status
  - Duplicate task ids (reported as warnings)

Exit code: 0 if valid, 1 if errors found`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateWorkflowFiles(args, cmd.OutOrStdout())
		},
		SilenceUsage: true,
	}

	return cmd
}

// validateWorkflowFiles validates each file and reports all of them before failing.
func validateWorkflowFiles(paths []string, output io.Writer) error {
	invalid := 0
	for _, path := range paths {
		if err := validateWorkflowFile(path, output); err != nil {
			fmt.Fprintf(output, "✗ %s\n%v\n", path, err)
			invalid++
		}
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d workflow file(s) invalid", invalid, len(paths))
	}
	return nil
}

func validateWorkflowFile(path string, output io.Writer) error {
	def, err := workflow.LoadFile(path)
	if err != nil {
		return err
	}
	if err := def.Validate(); err != nil {
		return err
	}

	name := def.Name
	if name == "" {
		name = path
	}
	fmt.Fprintf(output, "✓ %s: %d task(s)\n", name, len(def.Tasks))
	for _, td := range def.Tasks {
		fmt.Fprintf(output, "  - %s [%s] %s\n", td.ID, td.Kind(), td.Name)
	}
	for _, id := range def.DuplicateIDs() {
		fmt.Fprintf(output, "  warning: task id %q is used more than once\n", id)
	}
	return nil
}

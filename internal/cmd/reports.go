package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/harrison/taskflow/internal/models"
	"github.com/harrison/taskflow/internal/report"
	"github.com/spf13/cobra"
)

// NewReportsCommand creates the reports command and its subcommands
func NewReportsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "List and inspect stored execution reports",
		Long: `Read execution reports written by "taskflow run".

Reports are looked up in the configured report directory
($TASKFLOW_HOME/reports by default). "list" shows reports in the configured
report format; "show" reads JSON or YAML reports by file extension.

Examples:
  taskflow reports list
  taskflow reports show                       # Most recent report
  taskflow reports show run-20241225-100000-1a2b3c4d.json`,
	}

	cmd.PersistentFlags().String("config", "", "Path to config file (default: $TASKFLOW_HOME/config.yaml)")
	cmd.PersistentFlags().String("report-dir", "", "Directory containing execution reports")
	cmd.PersistentFlags().String("format", "", "Report format: json or yaml")

	cmd.AddCommand(newReportsListCommand())
	cmd.AddCommand(newReportsShowCommand())

	return cmd
}

func newReportsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored reports, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openReportStore(cmd)
			if err != nil {
				return err
			}
			return listReports(store, cmd.OutOrStdout())
		},
	}
}

func newReportsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [report-file]",
		Short: "Show one report (default: the most recent)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openReportStore(cmd)
			if err != nil {
				return err
			}

			var path string
			if len(args) == 1 {
				path = resolveReportPath(store, args[0])
			} else {
				paths, err := store.List()
				if err != nil {
					return err
				}
				if len(paths) == 0 {
					return fmt.Errorf("no reports found in %s", store.Dir())
				}
				path = paths[len(paths)-1]
			}

			rep, err := store.Read(path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			printReport(cmd.OutOrStdout(), path, rep)
			return nil
		},
	}
}

func openReportStore(cmd *cobra.Command) (*report.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return report.NewStore(cfg.ReportDir, cfg.ReportFormat)
}

// resolveReportPath accepts either a path or a bare file name inside the store.
func resolveReportPath(store *report.Store, arg string) string {
	if _, err := os.Stat(arg); err == nil || filepath.Base(arg) != arg {
		return arg
	}
	return filepath.Join(store.Dir(), arg)
}

func listReports(store *report.Store, w io.Writer) error {
	paths, err := store.List()
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		fmt.Fprintf(w, "No reports in %s\n", store.Dir())
		return nil
	}

	for _, path := range paths {
		rep, err := store.Read(path)
		if err != nil {
			fmt.Fprintf(w, "%s  (unreadable: %v)\n", filepath.Base(path), err)
			continue
		}
		status := "ok"
		if !rep.Succeeded() {
			status = "FAILED"
		}
		fmt.Fprintf(w, "%s  %s  %d completed, %d failed  %s\n",
			filepath.Base(path), rep.StartTime.Format(time.RFC3339), rep.TasksExecuted, rep.TasksFailed, status)
	}
	return nil
}

func printReport(w io.Writer, path string, rep models.ExecutionReport) {
	fmt.Fprintf(w, "Report: %s\n", path)
	fmt.Fprintf(w, "Run: %s\n", rep.RunID)
	fmt.Fprintf(w, "Started: %s\n", rep.StartTime.Format(time.RFC3339))
	fmt.Fprintf(w, "Finished: %s\n", rep.EndTime.Format(time.RFC3339))
	fmt.Fprintf(w, "Duration: %s\n", rep.Duration())
	fmt.Fprintf(w, "Completed: %d\n", rep.TasksExecuted)
	fmt.Fprintf(w, "Failed: %d\n", rep.TasksFailed)
	fmt.Fprintf(w, "Results:\n")
	for _, rec := range rep.Results {
		fmt.Fprintf(w, "  - %s [%s] %s\n", rec.TaskID, rec.Status, rec.Result)
	}
}

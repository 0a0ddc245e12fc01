package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/harrison/taskflow/internal/config"
	"github.com/harrison/taskflow/internal/executor"
	"github.com/harrison/taskflow/internal/logger"
	"github.com/harrison/taskflow/internal/models"
	"github.com/harrison/taskflow/internal/report"
	"github.com/harrison/taskflow/internal/workflow"
	"github.com/spf13/cobra"
)

// NewRunCommand creates the run command
func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <workflow.yaml>",
		Short: "Execute a workflow",
		Long: `Execute every task in a workflow file in order and write an execution report.

Failed tasks never stop the run; they are recorded in the report and the
summary. Configuration is loaded from $TASKFLOW_HOME/config.yaml (default
.taskflow/config.yaml) unless --config is given. CLI flags override
configuration file settings.

Examples:
  taskflow run sweep.yaml
  taskflow run --format yaml --report-dir ./reports sweep.yaml
  taskflow run --runs 3 sweep.yaml          # Run the workflow three times
  taskflow run --max-concurrency 4 sweep.yaml
  taskflow run --fail-on-error sweep.yaml   # Exit non-zero if any task failed`,
		Args: cobra.ExactArgs(1),
		RunE: runCommand,
	}

	cmd.Flags().String("config", "", "Path to config file (default: $TASKFLOW_HOME/config.yaml)")
	cmd.Flags().String("log-level", "", "Log level: trace, debug, info, warn, error")
	cmd.Flags().String("log-dir", "", "Directory for run log files")
	cmd.Flags().String("report-dir", "", "Directory for execution reports")
	cmd.Flags().String("format", "", "Report format: json or yaml")
	cmd.Flags().Int("max-concurrency", 0, "Run up to N tasks at once (0 or 1 = sequential)")
	cmd.Flags().Int("runs", 1, "Number of times to run the workflow")
	cmd.Flags().Bool("no-report", false, "Do not write report files")
	cmd.Flags().Bool("no-log-file", false, "Do not write a run log file")
	cmd.Flags().Bool("fail-on-error", false, "Exit with an error if any task failed")

	return cmd
}

// runCommand implements the run command logic
func runCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	runs, _ := cmd.Flags().GetInt("runs")
	if runs < 1 {
		return fmt.Errorf("--runs must be >= 1, got %d", runs)
	}
	noReport, _ := cmd.Flags().GetBool("no-report")
	noLogFile, _ := cmd.Flags().GetBool("no-log-file")
	failOnError, _ := cmd.Flags().GetBool("fail-on-error")

	def, err := workflow.LoadFile(args[0])
	if err != nil {
		return err
	}
	if err := def.Validate(); err != nil {
		return fmt.Errorf("invalid workflow %s:\n%w", args[0], err)
	}

	out := cmd.OutOrStdout()
	console := logger.NewConsoleLogger(out, cfg.LogLevel)
	console.LogDebug(fmt.Sprintf("Config: report_dir=%s report_format=%s max_concurrency=%d http_timeout=%s max_result_length=%d",
		cfg.ReportDir, cfg.ReportFormat, cfg.MaxConcurrency, cfg.HTTPTimeout, cfg.MaxResultLength))

	var fileLog *logger.FileLogger
	var log executor.Logger = console
	if !noLogFile {
		fileLog, err = logger.NewFileLogger(cfg.LogDir, cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("failed to create file logger: %w", err)
		}
		defer fileLog.Close()
		log = logger.NewMultiLogger(console, fileLog)
		console.LogInfo(fmt.Sprintf("Run log: %s", fileLog.Path()))
		fileLog.LogInfo(fmt.Sprintf("Workflow %q loaded from %s", def.Name, def.FilePath))
	}

	for _, id := range def.DuplicateIDs() {
		msg := fmt.Sprintf("task id %q is used more than once", id)
		console.LogWarn(msg)
		if fileLog != nil {
			fileLog.LogWarn(msg)
		}
	}

	var store *report.Store
	if !noReport {
		store, err = report.NewStore(cfg.ReportDir, cfg.ReportFormat)
		if err != nil {
			return err
		}
	}

	// Interrupts cancel in-flight HTTP calls and commands; the workflow still
	// finishes and records the affected tasks as failed.
	ctx, stop := signal.NotifyContext(withContext(cmd.Context()), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tasks, err := workflow.NewBinder(ctx, cfg.HTTPTimeout).BuildTasks(def, log)
	if err != nil {
		return err
	}
	for _, td := range def.Tasks {
		console.LogTrace(fmt.Sprintf("Bound task %s as %s operation", td.ID, td.Kind()))
	}

	orch := executor.NewOrchestrator(log,
		executor.WithMaxConcurrency(cfg.MaxConcurrency),
		executor.WithMaxResultLength(cfg.MaxResultLength),
	)
	for _, task := range tasks {
		orch.AddTask(task)
	}

	for i := 0; i < runs; i++ {
		rep := orch.ExecuteWorkflow()
		if store != nil {
			path, err := store.Write(rep)
			if err != nil {
				msg := fmt.Sprintf("failed to write report for run %s: %v", rep.RunID, err)
				console.LogError(msg)
				if fileLog != nil {
					fileLog.LogError(msg)
				}
				return fmt.Errorf("failed to write report: %w", err)
			}
			fmt.Fprintf(out, "Report written to %s\n", path)
		}
	}

	if runs > 1 {
		printHistory(out, orch.Reports())
	}

	if failOnError {
		failed := 0
		for _, rep := range orch.Reports() {
			failed += rep.TasksFailed
		}
		if failed > 0 {
			return fmt.Errorf("%d task(s) failed", failed)
		}
	}
	return nil
}

// loadConfig loads the config file and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
	} else {
		home, herr := config.Home()
		if herr != nil {
			return nil, herr
		}
		cfg, err = config.LoadConfigFromHome(home)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	// Build flag pointers for merge (only flags the user actually set)
	stringFlag := func(name string) *string {
		if !cmd.Flags().Changed(name) {
			return nil
		}
		v, _ := cmd.Flags().GetString(name)
		return &v
	}
	var maxConcurrency *int
	if cmd.Flags().Changed("max-concurrency") {
		v, _ := cmd.Flags().GetInt("max-concurrency")
		maxConcurrency = &v
	}

	cfg.MergeWithFlags(stringFlag("log-level"), stringFlag("log-dir"), stringFlag("report-dir"), stringFlag("format"), maxConcurrency)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// printHistory lists one line per run when the workflow ran more than once.
func printHistory(w io.Writer, history []models.ExecutionReport) {
	fmt.Fprintf(w, "\nRun history:\n")
	for i, rep := range history {
		fmt.Fprintf(w, "  %d. %s: %d completed, %d failed\n", i+1, rep.RunID, rep.TasksExecuted, rep.TasksFailed)
	}
}

// withContext returns ctx, defaulting to Background when cobra has none.
func withContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

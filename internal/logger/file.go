package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/harrison/taskflow/internal/models"
)

// FileLogger logs workflow events to a timestamped run log in a log directory
// and maintains a latest.log symlink pointing to the most recent run.
// It is thread-safe and implements the executor.Logger interface.
type FileLogger struct {
	logDir   string
	runLog   *os.File
	runFile  string
	logLevel string
	mu       sync.Mutex
}

// NewFileLogger creates a FileLogger writing to logDir at the given level.
// It creates the directory if needed, opens run-YYYYMMDD-HHMMSS.log and
// repoints latest.log at it.
func NewFileLogger(logDir string, logLevel string) (*FileLogger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	stamp := time.Now().Format("20060102-150405")
	runFile := filepath.Join(logDir, fmt.Sprintf("run-%s.log", stamp))

	file, err := os.OpenFile(runFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create run log file: %w", err)
	}

	symlinkPath := filepath.Join(logDir, "latest.log")
	if _, err := os.Lstat(symlinkPath); err == nil {
		if err := os.Remove(symlinkPath); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to remove old symlink: %w", err)
		}
	}
	if err := os.Symlink(filepath.Base(runFile), symlinkPath); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to create symlink: %w", err)
	}

	fl := &FileLogger{
		logDir:   logDir,
		runLog:   file,
		runFile:  runFile,
		logLevel: normalizeLogLevel(logLevel),
	}

	fl.writeRunLog("=== taskflow run log ===\n")
	fl.writeRunLog(fmt.Sprintf("Started at: %s\n\n", time.Now().Format(time.RFC3339)))

	return fl, nil
}

// Path returns the path of the current run log file.
func (fl *FileLogger) Path() string {
	return fl.runFile
}

func (fl *FileLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(fl.logLevel)
}

func (fl *FileLogger) logWithLevel(level string, message string) {
	if !fl.shouldLog(strings.ToLower(level)) {
		return
	}
	fl.writeRunLog(fmt.Sprintf("[%s] [%s] %s\n", timestamp(), level, message))
}

// LogInfo logs an info-level message.
func (fl *FileLogger) LogInfo(message string) {
	fl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (fl *FileLogger) LogWarn(message string) {
	fl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
func (fl *FileLogger) LogError(message string) {
	fl.logWithLevel("ERROR", message)
}

// LogWorkflowStart records the run id and task count.
func (fl *FileLogger) LogWorkflowStart(runID string, taskCount int) {
	fl.logWithLevel("INFO", fmt.Sprintf("Starting workflow run %s: %d %s", runID, taskCount, plural(taskCount, "task")))
}

// LogTaskStart records that a task is about to execute.
func (fl *FileLogger) LogTaskStart(taskID, name string) {
	fl.logWithLevel("INFO", fmt.Sprintf("Executing task: %s (%s)", name, taskID))
}

// LogTaskComplete records a successful task with its duration.
func (fl *FileLogger) LogTaskComplete(taskID string, duration time.Duration) {
	fl.logWithLevel("INFO", fmt.Sprintf("Task %s completed in %s", taskID, formatDuration(duration)))
}

// LogTaskFail records a task failure.
func (fl *FileLogger) LogTaskFail(taskID string, err error) {
	fl.logWithLevel("ERROR", failureMessage(taskID, err))
}

// LogSummary records the final statistics and every per-task record.
func (fl *FileLogger) LogSummary(report models.ExecutionReport) {
	if !fl.shouldLog("info") {
		return
	}

	var sb strings.Builder
	sb.WriteString("\n=== Workflow Summary ===\n")
	sb.WriteString(fmt.Sprintf("Run: %s\n", report.RunID))
	sb.WriteString(fmt.Sprintf("Started: %s\n", report.StartTime.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Finished: %s\n", report.EndTime.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Total tasks: %d\n", report.TotalTasks()))
	sb.WriteString(fmt.Sprintf("Completed: %d\n", report.TasksExecuted))
	sb.WriteString(fmt.Sprintf("Failed: %d\n", report.TasksFailed))
	for _, rec := range report.Results {
		sb.WriteString(fmt.Sprintf("  - %s [%s] %s\n", rec.TaskID, rec.Status, rec.Result))
	}

	status := "SUCCESS"
	if !report.Succeeded() {
		status = "FAILED"
	}
	sb.WriteString(fmt.Sprintf("Status: %s\n", status))

	fl.writeRunLog(sb.String())
}

// Close flushes and closes the run log file.
// It should be called when the logger is no longer needed.
func (fl *FileLogger) Close() error {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		if err := fl.runLog.Sync(); err != nil {
			return fmt.Errorf("failed to sync run log: %w", err)
		}
		if err := fl.runLog.Close(); err != nil {
			return fmt.Errorf("failed to close run log: %w", err)
		}
		fl.runLog = nil
	}

	return nil
}

// writeRunLog is a thread-safe helper to write to the run log file.
func (fl *FileLogger) writeRunLog(message string) {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		fl.runLog.WriteString(message)
		// Flush after each write for real-time logging
		fl.runLog.Sync()
	}
}

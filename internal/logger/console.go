// Package logger provides logging implementations for taskflow workflow runs.
//
// Loggers report workflow start, per-task start and outcome, and the final
// run summary. Implementations are thread-safe so they can be shared by a
// workflow and its tasks, including when tasks run concurrently.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/harrison/taskflow/internal/executor"
	"github.com/harrison/taskflow/internal/models"
	"github.com/mattn/go-isatty"
)

// ConsoleLogger logs workflow progress to a writer with timestamps and thread safety.
// All output is prefixed with [HH:MM:SS] timestamps for tracking execution flow.
// It supports log level filtering to control message verbosity.
// Color output is automatically enabled for terminal output (os.Stdout/os.Stderr).
type ConsoleLogger struct {
	writer      io.Writer
	logLevel    string
	mutex       sync.Mutex
	colorOutput bool
}

// NewConsoleLogger creates a ConsoleLogger that writes to the provided io.Writer.
// If writer is nil, messages are silently discarded.
// Valid levels: trace, debug, info, warn, error (case-insensitive).
// If logLevel is empty or invalid, defaults to "info".
func NewConsoleLogger(writer io.Writer, logLevel string) *ConsoleLogger {
	return &ConsoleLogger{
		writer:      writer,
		logLevel:    normalizeLogLevel(logLevel),
		colorOutput: isTerminal(writer),
	}
}

// isTerminal reports whether w is a TTY that should receive ANSI colors.
// NO_COLOR (honored by fatih/color) disables colors even on a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || f == nil {
		return false
	}
	if color.NoColor {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (cl *ConsoleLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(cl.logLevel)
}

// LogTrace logs a trace-level message (most verbose).
func (cl *ConsoleLogger) LogTrace(message string) {
	cl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message.
func (cl *ConsoleLogger) LogDebug(message string) {
	cl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
// Format: "[HH:MM:SS] [INFO] <message>"
func (cl *ConsoleLogger) LogInfo(message string) {
	cl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (cl *ConsoleLogger) LogWarn(message string) {
	cl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
func (cl *ConsoleLogger) LogError(message string) {
	cl.logWithLevel("ERROR", message)
}

func (cl *ConsoleLogger) logWithLevel(level string, message string) {
	if cl.writer == nil || !cl.shouldLog(strings.ToLower(level)) {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	label := level
	if cl.colorOutput {
		label = levelColor(level).Sprint(level)
	}
	fmt.Fprintf(cl.writer, "[%s] [%s] %s\n", timestamp(), label, message)
}

func levelColor(level string) *color.Color {
	switch level {
	case "TRACE":
		return color.New(color.FgHiBlack)
	case "DEBUG":
		return color.New(color.FgCyan)
	case "WARN":
		return color.New(color.FgYellow)
	case "ERROR":
		return color.New(color.FgRed)
	default:
		return color.New(color.FgBlue)
	}
}

// LogWorkflowStart logs the start of a run at INFO level.
// Format: "[HH:MM:SS] Starting workflow run <id>: <n> tasks"
func (cl *ConsoleLogger) LogWorkflowStart(runID string, taskCount int) {
	if cl.writer == nil || !cl.shouldLog("info") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	id := runID
	if cl.colorOutput {
		id = color.New(color.Bold).Sprint(runID)
	}
	fmt.Fprintf(cl.writer, "[%s] Starting workflow run %s: %d %s\n", timestamp(), id, taskCount, plural(taskCount, "task"))
}

// LogTaskStart logs that a task is about to execute at INFO level.
// Format: "[HH:MM:SS] Executing task: <name> (<id>)"
func (cl *ConsoleLogger) LogTaskStart(taskID, name string) {
	if cl.writer == nil || !cl.shouldLog("info") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	fmt.Fprintf(cl.writer, "[%s] Executing task: %s (%s)\n", timestamp(), name, taskID)
}

// LogTaskComplete logs a successful task at DEBUG level.
func (cl *ConsoleLogger) LogTaskComplete(taskID string, duration time.Duration) {
	if cl.writer == nil || !cl.shouldLog("debug") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	status := "completed"
	if cl.colorOutput {
		status = color.New(color.FgGreen).Sprint(status)
	}
	fmt.Fprintf(cl.writer, "[%s] Task %s %s (%s)\n", timestamp(), taskID, status, formatDuration(duration))
}

// LogTaskFail logs a task failure at ERROR level.
// Format: "[HH:MM:SS] [ERROR] task <id> failed: <description>"
func (cl *ConsoleLogger) LogTaskFail(taskID string, err error) {
	cl.logWithLevel("ERROR", failureMessage(taskID, err))
}

// LogSummary logs the run summary with completion statistics at INFO level.
func (cl *ConsoleLogger) LogSummary(report models.ExecutionReport) {
	if cl.writer == nil || !cl.shouldLog("info") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	paint := func(c color.Attribute, s string) string {
		if !cl.colorOutput {
			return s
		}
		return color.New(c).Sprint(s)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] %s\n", ts, paint(color.Bold, "=== Workflow Summary ===")))
	sb.WriteString(fmt.Sprintf("[%s] Run: %s\n", ts, report.RunID))
	sb.WriteString(fmt.Sprintf("[%s] Total tasks: %d\n", ts, report.TotalTasks()))
	sb.WriteString(fmt.Sprintf("[%s] %s\n", ts, paint(color.FgGreen, fmt.Sprintf("Completed: %d", report.TasksExecuted))))
	if report.TasksFailed > 0 {
		sb.WriteString(fmt.Sprintf("[%s] %s\n", ts, paint(color.FgRed, fmt.Sprintf("Failed: %d", report.TasksFailed))))
	} else {
		sb.WriteString(fmt.Sprintf("[%s] Failed: 0\n", ts))
	}
	sb.WriteString(fmt.Sprintf("[%s] Duration: %s\n", ts, formatDuration(report.Duration())))

	if failed := report.FailedRecords(); len(failed) > 0 {
		sb.WriteString(fmt.Sprintf("[%s] %s\n", ts, paint(color.FgRed, "Failed tasks:")))
		for _, rec := range failed {
			sb.WriteString(fmt.Sprintf("[%s]   - %s: %s\n", ts, paint(color.FgRed, rec.TaskID), rec.Result))
		}
	}

	io.WriteString(cl.writer, sb.String())
}

// failureMessage renders a task failure as "task <id> failed: <description>".
// A TaskExecutionFailure, even wrapped, already carries that prefix.
func failureMessage(taskID string, err error) string {
	switch {
	case err == nil:
		return fmt.Sprintf("task %s failed", taskID)
	case executor.IsTaskExecutionFailure(err):
		return err.Error()
	default:
		return fmt.Sprintf("task %s failed: %s", taskID, err)
	}
}

// timestamp returns the current time formatted as "15:04:05" (HH:MM:SS).
func timestamp() string {
	return time.Now().Format("15:04:05")
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

// formatDuration converts a time.Duration to a human-readable string.
// Sub-second durations are shown in milliseconds.
func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Hour:
		hours := d / time.Hour
		minutes := (d % time.Hour) / time.Minute
		seconds := (d % time.Minute) / time.Second
		if minutes == 0 && seconds == 0 {
			return fmt.Sprintf("%dh", hours)
		}
		if seconds == 0 {
			return fmt.Sprintf("%dh%dm", hours, minutes)
		}
		return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
	case d >= time.Minute:
		minutes := d / time.Minute
		seconds := (d % time.Minute) / time.Second
		if seconds == 0 {
			return fmt.Sprintf("%dm", minutes)
		}
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	case d >= time.Second:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
}

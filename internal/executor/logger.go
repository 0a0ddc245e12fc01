package executor

import (
	"time"

	"github.com/harrison/taskflow/internal/models"
)

// Logger defines the interface for logging workflow progress and results.
// Implementations used with WithMaxConcurrency must be safe for concurrent use.
type Logger interface {
	LogWorkflowStart(runID string, taskCount int)
	LogTaskStart(taskID, name string)
	LogTaskComplete(taskID string, duration time.Duration)
	LogTaskFail(taskID string, err error)
	LogSummary(report models.ExecutionReport)
}

// NopLogger discards everything. It is the default when no logger is supplied.
type NopLogger struct{}

func (NopLogger) LogWorkflowStart(string, int) {}
func (NopLogger) LogTaskStart(string, string) {}
func (NopLogger) LogTaskComplete(string, time.Duration) {}
func (NopLogger) LogTaskFail(string, error) {}
func (NopLogger) LogSummary(models.ExecutionReport) {}

// orNop returns l, or a NopLogger when l is nil.
func orNop(l Logger) Logger {
	if l == nil {
		return NopLogger{}
	}
	return l
}

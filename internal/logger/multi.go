package logger

import (
	"time"

	"github.com/harrison/taskflow/internal/executor"
	"github.com/harrison/taskflow/internal/models"
)

// MultiLogger forwards every event to each of its loggers in order.
type MultiLogger struct {
	loggers []executor.Logger
}

// NewMultiLogger creates a MultiLogger. Nil entries are skipped.
func NewMultiLogger(loggers ...executor.Logger) *MultiLogger {
	m := &MultiLogger{}
	for _, l := range loggers {
		if l != nil {
			m.loggers = append(m.loggers, l)
		}
	}
	return m
}

func (m *MultiLogger) LogWorkflowStart(runID string, taskCount int) {
	for _, l := range m.loggers {
		l.LogWorkflowStart(runID, taskCount)
	}
}

func (m *MultiLogger) LogTaskStart(taskID, name string) {
	for _, l := range m.loggers {
		l.LogTaskStart(taskID, name)
	}
}

func (m *MultiLogger) LogTaskComplete(taskID string, duration time.Duration) {
	for _, l := range m.loggers {
		l.LogTaskComplete(taskID, duration)
	}
}

func (m *MultiLogger) LogTaskFail(taskID string, err error) {
	for _, l := range m.loggers {
		l.LogTaskFail(taskID, err)
	}
}

func (m *MultiLogger) LogSummary(report models.ExecutionReport) {
	for _, l := range m.loggers {
		l.LogSummary(report)
	}
}

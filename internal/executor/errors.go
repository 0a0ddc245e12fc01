package executor

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// TaskExecutionFailure is the single failure kind produced at the task boundary.
// It wraps whatever the bound operation returned (or the value it panicked with)
// together with the task that produced it.
type TaskExecutionFailure struct {
	TaskID    string    // Identifier of the task that failed
	Message   string    // Human-readable description of the failure
	Err       error     // Underlying error (nil when the operation panicked with a non-error value)
	Panicked  bool      // True when the failure was recovered from a panic
	Timestamp time.Time // When the failure was captured
}

// NewTaskExecutionFailure wraps err for the task identified by taskID.
func NewTaskExecutionFailure(taskID string, err error) *TaskExecutionFailure {
	msg := "operation failed"
	if err != nil {
		msg = err.Error()
	}
	return &TaskExecutionFailure{
		TaskID:    taskID,
		Message:   msg,
		Err:       err,
		Timestamp: time.Now(),
	}
}

// newPanicFailure converts a recovered panic value into a failure.
func newPanicFailure(taskID string, recovered interface{}) *TaskExecutionFailure {
	f := &TaskExecutionFailure{
		TaskID:    taskID,
		Panicked:  true,
		Timestamp: time.Now(),
	}
	if err, ok := recovered.(error); ok {
		f.Err = err
		f.Message = fmt.Sprintf("panic: %v", err)
	} else {
		f.Message = fmt.Sprintf("panic: %v", recovered)
	}
	return f
}

// Error implements the error interface.
// Format: "task <id> failed: <message>"
func (e *TaskExecutionFailure) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("task %s failed", e.TaskID))
	if e.Message != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Message)
	}
	return sb.String()
}

// Unwrap returns the underlying error for errors.Is / errors.As.
func (e *TaskExecutionFailure) Unwrap() error {
	return e.Err
}

// IsTaskExecutionFailure checks if the error is or wraps a TaskExecutionFailure.
func IsTaskExecutionFailure(err error) bool {
	if err == nil {
		return false
	}
	var f *TaskExecutionFailure
	return errors.As(err, &f)
}

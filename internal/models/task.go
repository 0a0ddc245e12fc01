package models

import "fmt"

// TaskStatus is the lifecycle state of a workflow task.
// Tasks only move forward: Pending -> Running -> Completed or Failed.
type TaskStatus int

const (
	// StatusPending is the initial state of every task.
	StatusPending TaskStatus = iota
	// StatusRunning is set while the task's operation is executing.
	StatusRunning
	// StatusCompleted means the operation returned without error.
	StatusCompleted
	// StatusFailed means the operation returned an error or panicked.
	StatusFailed
)

// String returns the lowercase name used in reports and logs.
func (s TaskStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// IsTerminal returns true for Completed and Failed.
func (s TaskStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanTransitionTo reports whether moving from s to next is a legal step.
func (s TaskStatus) CanTransitionTo(next TaskStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusRunning
	case StatusRunning:
		return next == StatusCompleted || next == StatusFailed
	case StatusCompleted, StatusFailed:
		return false
	default:
		return false
	}
}

// ParseTaskStatus converts a status name back into a TaskStatus.
func ParseTaskStatus(name string) (TaskStatus, error) {
	switch name {
	case "pending":
		return StatusPending, nil
	case "running":
		return StatusRunning, nil
	case "completed":
		return StatusCompleted, nil
	case "failed":
		return StatusFailed, nil
	default:
		return StatusPending, fmt.Errorf("unknown task status %q", name)
	}
}

// MarshalText encodes the status by name so JSON and YAML reports stay readable.
func (s TaskStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name.
func (s *TaskStatus) UnmarshalText(text []byte) error {
	parsed, err := ParseTaskStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

package models

import "time"

// TaskRecord is the outcome of a single task within one workflow run.
type TaskRecord struct {
	TaskID string     `json:"task_id" yaml:"task_id"` // Caller-assigned task identifier
	Status TaskStatus `json:"status" yaml:"status"`   // Final status, always Completed or Failed
	Result string     `json:"result" yaml:"result"`   // Stringified result, or failure text
}

// ExecutionReport is the aggregate outcome of one workflow run.
// A new report is produced per run and is never modified afterwards.
type ExecutionReport struct {
	RunID         string       `json:"run_id" yaml:"run_id"`
	StartTime     time.Time    `json:"start_time" yaml:"start_time"`
	EndTime       time.Time    `json:"end_time" yaml:"end_time"`
	TasksExecuted int          `json:"tasks_executed" yaml:"tasks_executed"` // Tasks that completed
	TasksFailed   int          `json:"tasks_failed" yaml:"tasks_failed"`
	Results       []TaskRecord `json:"results" yaml:"results"`
}

// TotalTasks returns the number of tasks run in this report.
func (r ExecutionReport) TotalTasks() int {
	return r.TasksExecuted + r.TasksFailed
}

// Duration returns the wall-clock time of the run.
func (r ExecutionReport) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}

// Succeeded returns true when no task failed.
func (r ExecutionReport) Succeeded() bool {
	return r.TasksFailed == 0
}

// FailedRecords returns the records of failed tasks in run order.
func (r ExecutionReport) FailedRecords() []TaskRecord {
	failed := []TaskRecord{}
	for _, rec := range r.Results {
		if rec.Status == StatusFailed {
			failed = append(failed, rec)
		}
	}
	return failed
}

// Clone returns a deep copy so callers cannot mutate stored history.
func (r ExecutionReport) Clone() ExecutionReport {
	out := r
	out.Results = make([]TaskRecord, len(r.Results))
	copy(out.Results, r.Results)
	return out
}

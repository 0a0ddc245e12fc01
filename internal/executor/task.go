package executor

import (
	"errors"
	"sync"
	"time"

	"github.com/harrison/taskflow/internal/models"
)

// Operation is the zero-argument unit of work bound to a Task.
// It returns an arbitrary result on success or an error on failure.
type Operation func() (interface{}, error)

// errNoOperation is reported when a task was built without an operation.
var errNoOperation = errors.New("no operation bound to task")

// Task is a named unit of work with a lifecycle status.
//
// Execute never lets a failure escape: errors and panics raised by the
// operation become a TaskExecutionFailure, the task moves to Failed, and the
// failure is logged. One task failing therefore never aborts a workflow run.
type Task struct {
	id     string
	name   string
	op     Operation
	logger Logger

	mu      sync.Mutex
	status  models.TaskStatus
	result  interface{}
	failure *TaskExecutionFailure
}

// NewTask creates a Pending task. The id is not checked for uniqueness.
// The logger parameter is optional and can be nil.
func NewTask(id, name string, op Operation, logger Logger) *Task {
	return &Task{
		id:     id,
		name:   name,
		op:     op,
		logger: orNop(logger),
		status: models.StatusPending,
	}
}

// ID returns the caller-assigned task identifier.
func (t *Task) ID() string { return t.id }

// Name returns the human-readable task name.
func (t *Task) Name() string { return t.name }

// Status returns the current lifecycle status.
func (t *Task) Status() models.TaskStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Result returns the operation's output. It is nil unless the task completed.
func (t *Task) Result() interface{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.result
}

// Failure returns the captured failure, or nil unless the task failed.
func (t *Task) Failure() *TaskExecutionFailure {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.failure
}

// Execute runs the bound operation synchronously and reports whether it succeeded.
//
// Only a Pending task can be executed; on any other status Execute returns
// false and leaves the task untouched. Use Reset to run a task again.
func (t *Task) Execute() bool {
	if !t.transition(models.StatusRunning) {
		return false
	}

	start := time.Now()
	result, failure := t.invoke()
	elapsed := time.Since(start)

	t.mu.Lock()
	if failure != nil {
		t.result = nil
		t.failure = failure
		t.status = models.StatusFailed
	} else {
		t.result = result
		t.status = models.StatusCompleted
	}
	t.mu.Unlock()

	if failure != nil {
		t.logger.LogTaskFail(t.id, failure)
		return false
	}
	t.logger.LogTaskComplete(t.id, elapsed)
	return true
}

// Reset returns a finished task to Pending and clears its outcome.
// A running task is left alone.
func (t *Task) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status == models.StatusRunning {
		return
	}
	t.status = models.StatusPending
	t.result = nil
	t.failure = nil
}

// transition moves the task to next if the step is legal.
func (t *Task) transition(next models.TaskStatus) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.status.CanTransitionTo(next) {
		return false
	}
	t.status = next
	return true
}

// invoke calls the operation, converting errors and panics into a failure.
func (t *Task) invoke() (result interface{}, failure *TaskExecutionFailure) {
	if t.op == nil {
		return nil, NewTaskExecutionFailure(t.id, errNoOperation)
	}

	defer func() {
		if r := recover(); r != nil {
			result = nil
			failure = newPanicFailure(t.id, r)
		}
	}()

	out, err := t.op()
	if err != nil {
		return nil, NewTaskExecutionFailure(t.id, err)
	}
	return out, nil
}

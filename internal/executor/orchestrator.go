package executor

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/harrison/taskflow/internal/models"
)

// Orchestrator owns an ordered list of tasks and runs them as a workflow.
//
// By default tasks run strictly one after another on the caller's goroutine.
// A failing task is recorded and the run moves on to the next task; the
// workflow as a whole never fails. Every run produces a new ExecutionReport
// that is also appended to the orchestrator's history.
//
// AddTask and ExecuteWorkflow must not be called concurrently.
type Orchestrator struct {
	tasks           []*Task
	logger          Logger
	maxConcurrency  int
	maxResultLength int
	now             func() time.Time
	newRunID        func() string

	mu      sync.Mutex
	history []models.ExecutionReport
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithMaxConcurrency lets up to n tasks run at once. Values <= 1 keep the
// default sequential mode. Report records stay in registration order either way.
func WithMaxConcurrency(n int) Option {
	return func(o *Orchestrator) {
		o.maxConcurrency = n
	}
}

// WithMaxResultLength truncates stringified results longer than n runes (0 = unlimited).
func WithMaxResultLength(n int) Option {
	return func(o *Orchestrator) {
		o.maxResultLength = n
	}
}

// WithClock overrides the time source used for report timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// NewOrchestrator creates an Orchestrator with no tasks.
// The logger parameter is optional and can be nil.
func NewOrchestrator(logger Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		logger:   orNop(logger),
		now:      time.Now,
		newRunID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// AddTask appends a task to the workflow. Duplicates are not detected.
func (o *Orchestrator) AddTask(task *Task) {
	if task == nil {
		return
	}
	o.tasks = append(o.tasks, task)
}

// Tasks returns the registered tasks in registration order.
func (o *Orchestrator) Tasks() []*Task {
	out := make([]*Task, len(o.tasks))
	copy(out, o.tasks)
	return out
}

// ExecuteWorkflow runs every registered task and returns the run's report.
// Each task is reset before it runs, so repeated calls re-execute everything.
func (o *Orchestrator) ExecuteWorkflow() models.ExecutionReport {
	tasks := o.Tasks()

	report := models.ExecutionReport{
		RunID:     o.newRunID(),
		StartTime: o.now(),
	}
	o.logger.LogWorkflowStart(report.RunID, len(tasks))

	records := make([]models.TaskRecord, len(tasks))
	if o.maxConcurrency > 1 && len(tasks) > 1 {
		o.runConcurrent(tasks, records)
	} else {
		for i, task := range tasks {
			records[i] = o.runTask(task)
		}
	}

	for _, rec := range records {
		if rec.Status == models.StatusCompleted {
			report.TasksExecuted++
		} else {
			report.TasksFailed++
		}
	}
	report.Results = records
	report.EndTime = o.now()

	o.mu.Lock()
	o.history = append(o.history, report.Clone())
	o.mu.Unlock()

	o.logger.LogSummary(report)
	return report
}

// Reports returns a copy of every report produced so far, oldest first.
func (o *Orchestrator) Reports() []models.ExecutionReport {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make([]models.ExecutionReport, len(o.history))
	for i, r := range o.history {
		out[i] = r.Clone()
	}
	return out
}

// runTask executes one task and builds its record.
func (o *Orchestrator) runTask(task *Task) models.TaskRecord {
	task.Reset()
	o.logger.LogTaskStart(task.ID(), task.Name())

	rec := models.TaskRecord{TaskID: task.ID()}
	if task.Execute() {
		rec.Status = models.StatusCompleted
		rec.Result = FormatResult(task.Result(), o.maxResultLength)
		return rec
	}

	rec.Status = models.StatusFailed
	if f := task.Failure(); f != nil {
		rec.Result = truncate(f.Message, o.maxResultLength)
	} else {
		rec.Result = "task was not pending"
	}
	return rec
}

// runConcurrent executes tasks with at most maxConcurrency in flight.
// Records are written at the task's index, so ordering is preserved.
// A task registered more than once runs all of its slots in order on a
// single goroutine, since a Task holds the state of one execution at a time.
func (o *Orchestrator) runConcurrent(tasks []*Task, records []models.TaskRecord) {
	slots := make(map[*Task][]int, len(tasks))
	unique := make([]*Task, 0, len(tasks))
	for i, task := range tasks {
		if _, seen := slots[task]; !seen {
			unique = append(unique, task)
		}
		slots[task] = append(slots[task], i)
	}

	limit := o.maxConcurrency
	if limit > len(unique) {
		limit = len(unique)
	}
	semaphore := make(chan struct{}, limit)

	var wg sync.WaitGroup
	for _, task := range unique {
		semaphore <- struct{}{}
		wg.Add(1)

		go func(task *Task, indices []int) {
			defer wg.Done()
			defer func() { <-semaphore }()
			for _, i := range indices {
				records[i] = o.runTask(task)
			}
		}(task, slots[task])
	}
	wg.Wait()
}

// Package tracker owns the per-run task state machine: which stages exist,
// where each one is, and the overall run state derived from them.
package tracker

import "fmt"

// TaskState is the lifecycle position of a single task.
//
// Lifecycle: pending -> in_progress -> completed | failed
type TaskState string

// Task state constants
const (
	TaskPending    TaskState = "pending"
	TaskInProgress TaskState = "in_progress"
	TaskCompleted  TaskState = "completed"
	TaskFailed     TaskState = "failed"
)

var allowedTransitions = map[TaskState]map[TaskState]struct{}{
	TaskPending: {
		TaskInProgress: {},
	},
	TaskInProgress: {
		TaskCompleted: {},
		TaskFailed:    {},
	},
	TaskCompleted: {},
	TaskFailed:    {},
}

// ValidateTransition reports whether a task may move from one state to another.
func ValidateTransition(from, to TaskState) error {
	if _, ok := allowedTransitions[from]; !ok {
		return fmt.Errorf("invalid task state: %q", from)
	}
	if _, ok := allowedTransitions[to]; !ok {
		return fmt.Errorf("invalid task state: %q", to)
	}
	if _, ok := allowedTransitions[from][to]; !ok {
		return fmt.Errorf("invalid task transition: %s -> %s", from, to)
	}
	return nil
}

// Terminal reports whether no further transition is possible.
func (s TaskState) Terminal() bool {
	return s == TaskCompleted || s == TaskFailed
}

// Icon returns the status glyph shown next to a task.
func (s TaskState) Icon() string {
	switch s {
	case TaskPending:
		return "⏳"
	case TaskInProgress:
		return "🔄"
	case TaskCompleted:
		return "✅"
	case TaskFailed:
		return "❌"
	default:
		return "❓"
	}
}

// RunState is the overall state of a run. It is never stored; Derive
// computes it from the tasks every time it is needed.
type RunState string

// Run state constants
const (
	RunIdle          RunState = "idle"
	RunRunning       RunState = "running"
	RunCompleted     RunState = "completed"
	RunFailedPartial RunState = "failed_partial"
)

// Derive computes the run state from task states. A run with any task still
// pending or in progress is running; otherwise it is completed when every
// task completed and failed_partial when at least one failed.
func Derive(tasks []Task) RunState {
	if len(tasks) == 0 {
		return RunIdle
	}
	failed := false
	for i := range tasks {
		switch tasks[i].State {
		case TaskPending, TaskInProgress:
			return RunRunning
		case TaskFailed:
			failed = true
		}
	}
	if failed {
		return RunFailedPartial
	}
	return RunCompleted
}

// Finished reports whether the run reached a terminal state.
func (s RunState) Finished() bool {
	return s == RunCompleted || s == RunFailedPartial
}

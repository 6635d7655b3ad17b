package tracker

import "fmt"

// AlreadyRunningError is returned by StartRun while the tracker still owns
// a run that has not finished.
type AlreadyRunningError struct {
	State RunState
}

func (e *AlreadyRunningError) Error() string {
	return fmt.Sprintf("tracker already owns a run in state %s", e.State)
}

// InvalidTransitionError is returned when a transition request breaks the
// state machine. It always indicates an orchestration bug.
type InvalidTransitionError struct {
	Task   string
	From   TaskState
	To     TaskState
	Reason string
}

func (e *InvalidTransitionError) Error() string {
	if e.From == "" {
		return fmt.Sprintf("invalid transition for task %q to %s: %s", e.Task, e.To, e.Reason)
	}
	return fmt.Sprintf("invalid transition for task %q: %s -> %s: %s", e.Task, e.From, e.To, e.Reason)
}

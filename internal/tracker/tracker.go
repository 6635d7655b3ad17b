package tracker

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// TaskSpec declares one task of a run.
type TaskSpec struct {
	Name  string
	Label string
	Icon  string
}

// Task is the tracked state of one pipeline stage.
type Task struct {
	Name       string     `json:"name"`
	Label      string     `json:"label"`
	Icon       string     `json:"icon,omitempty"`
	State      TaskState  `json:"status"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Error      string     `json:"error,omitempty"`
}

func (t Task) clone() Task {
	out := t
	if t.StartedAt != nil {
		started := *t.StartedAt
		out.StartedAt = &started
	}
	if t.FinishedAt != nil {
		finished := *t.FinishedAt
		out.FinishedAt = &finished
	}
	return out
}

// Duration returns how long the task ran, or has been running so far.
func (t Task) Duration(now time.Time) time.Duration {
	if t.StartedAt == nil {
		return 0
	}
	if t.FinishedAt != nil {
		return t.FinishedAt.Sub(*t.StartedAt)
	}
	return now.Sub(*t.StartedAt)
}

// Tracker owns the tasks of one run at a time. All methods are safe for
// concurrent use; transitions are serialized and readers never observe a
// half-applied transition.
//
// Observers are called synchronously after each transition, in order, and
// must not call transition methods themselves.
type Tracker struct {
	mu      sync.RWMutex
	tasks   []Task
	index   map[string]int
	version uint64

	// notifyMu serializes transition + delivery so observers see events in
	// the order transitions happened.
	notifyMu  sync.Mutex
	obsMu     sync.Mutex
	observers map[int]Observer
	nextObsID int

	runID  string
	logger *zap.Logger
	now    func() time.Time
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithLogger sets the logger used for observer failures.
func WithLogger(l *zap.Logger) Option {
	return func(t *Tracker) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithRunID labels every event with the run it belongs to.
func WithRunID(id string) Option {
	return func(t *Tracker) {
		t.runID = id
	}
}

// WithClock replaces time.Now (useful for testing).
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

// New creates a tracker with no run.
func New(opts ...Option) *Tracker {
	t := &Tracker{
		index:     make(map[string]int),
		observers: make(map[int]Observer),
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// StartRun replaces the tracked tasks with a fresh, all-pending set in the
// given order. It fails while the previous run is still unfinished.
func (t *Tracker) StartRun(specs ...TaskSpec) error {
	if len(specs) == 0 {
		return fmt.Errorf("at least one task is required")
	}
	tasks := make([]Task, 0, len(specs))
	index := make(map[string]int, len(specs))
	for i, spec := range specs {
		if spec.Name == "" {
			return fmt.Errorf("task %d has no name", i+1)
		}
		if _, dup := index[spec.Name]; dup {
			return fmt.Errorf("duplicate task name %q", spec.Name)
		}
		index[spec.Name] = i
		label := spec.Label
		if label == "" {
			label = spec.Name
		}
		tasks = append(tasks, Task{
			Name:  spec.Name,
			Label: label,
			Icon:  spec.Icon,
			State: TaskPending,
		})
	}

	t.notifyMu.Lock()
	defer t.notifyMu.Unlock()

	t.mu.Lock()
	if state := Derive(t.tasks); state == RunRunning {
		t.mu.Unlock()
		return &AlreadyRunningError{State: state}
	}
	t.tasks = tasks
	t.index = index
	t.version++
	snap := t.snapshotLocked()
	t.mu.Unlock()

	t.notify(Event{Kind: EventRunStarted, At: t.now(), Snapshot: snap})
	return nil
}

// Begin moves a pending task to in_progress. Only one task may be in
// progress at a time.
func (t *Tracker) Begin(name string) error {
	return t.transition(name, TaskInProgress, "")
}

// Succeed moves an in_progress task to completed.
func (t *Tracker) Succeed(name string) error {
	return t.transition(name, TaskCompleted, "")
}

// Fail moves an in_progress task to failed and records the message.
func (t *Tracker) Fail(name, message string) error {
	return t.transition(name, TaskFailed, message)
}

func (t *Tracker) transition(name string, to TaskState, message string) error {
	t.notifyMu.Lock()
	defer t.notifyMu.Unlock()

	t.mu.Lock()
	idx, ok := t.index[name]
	if !ok || len(t.tasks) == 0 {
		t.mu.Unlock()
		return &InvalidTransitionError{Task: name, To: to, Reason: "no such task in the current run"}
	}
	task := &t.tasks[idx]
	from := task.State

	if err := ValidateTransition(from, to); err != nil {
		t.mu.Unlock()
		return &InvalidTransitionError{Task: name, From: from, To: to, Reason: err.Error()}
	}
	if to == TaskInProgress {
		if active := t.activeLocked(); active != "" {
			t.mu.Unlock()
			return &InvalidTransitionError{
				Task:   name,
				From:   from,
				To:     to,
				Reason: fmt.Sprintf("task %q is already in progress", active),
			}
		}
	}

	now := t.now()
	task.State = to
	kind := EventTaskStarted
	switch to {
	case TaskInProgress:
		task.StartedAt = &now
	case TaskCompleted:
		task.FinishedAt = &now
		kind = EventTaskCompleted
	case TaskFailed:
		task.FinishedAt = &now
		task.Error = message
		kind = EventTaskFailed
	}
	t.version++
	snap := t.snapshotLocked()
	t.mu.Unlock()

	t.notify(Event{Kind: kind, Task: name, Error: message, At: now, Snapshot: snap})
	if to.Terminal() && snap.State.Finished() {
		t.notify(Event{Kind: EventRunFinished, At: now, Snapshot: snap})
	}
	return nil
}

func (t *Tracker) activeLocked() string {
	for i := range t.tasks {
		if t.tasks[i].State == TaskInProgress {
			return t.tasks[i].Name
		}
	}
	return ""
}

// Snapshot returns an immutable copy of the current run.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snapshotLocked()
}

// State returns the derived run state.
func (t *Tracker) State() RunState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return Derive(t.tasks)
}

// Subscribe registers an observer for transition events. The returned
// function removes it.
func (t *Tracker) Subscribe(o Observer) func() {
	if o == nil {
		return func() {}
	}
	t.obsMu.Lock()
	id := t.nextObsID
	t.nextObsID++
	t.observers[id] = o
	t.obsMu.Unlock()

	return func() {
		t.obsMu.Lock()
		delete(t.observers, id)
		t.obsMu.Unlock()
	}
}

func (t *Tracker) notify(ev Event) {
	ev.RunID = t.runID
	t.obsMu.Lock()
	ids := make([]int, 0, len(t.observers))
	for id := range t.observers {
		ids = append(ids, id)
	}
	observers := make([]Observer, 0, len(ids))
	sort.Ints(ids)
	for _, id := range ids {
		observers = append(observers, t.observers[id])
	}
	t.obsMu.Unlock()

	for _, o := range observers {
		t.deliver(o, ev)
	}
}

func (t *Tracker) deliver(o Observer, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("status observer panicked",
				zap.String("event", string(ev.Kind)),
				zap.Any("panic", r))
		}
	}()
	o(ev)
}

// Package runstore keeps submitted runs in memory so that several
// presenters (the status API, the MCP server) can look them up by ID.
//
// Nothing is persisted; the store lives as long as the process.
package runstore

import (
	"context"
	"sync"
	"time"

	"github.com/pablasso/lexa/internal/tracker"
	"github.com/pablasso/lexa/internal/workflow"
)

// DefaultLimit is the number of runs kept before finished ones are evicted.
const DefaultLimit = 200

// Submitter starts runs. *workflow.Orchestrator satisfies it.
type Submitter interface {
	Submit(ctx context.Context, q workflow.Query, observers ...tracker.Observer) (*workflow.Run, error)
}

// Store holds runs in a map for lookup and a slice for insertion order.
type Store struct {
	submitter Submitter
	limit     int

	mu    sync.Mutex
	runs  map[string]*workflow.Run
	order []string
}

// Option configures a Store.
type Option func(*Store)

// WithLimit sets how many runs are retained.
func WithLimit(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.limit = n
		}
	}
}

// New creates an empty store that submits through sub.
func New(sub Submitter, opts ...Option) *Store {
	s := &Store{
		submitter: sub,
		limit:     DefaultLimit,
		runs:      make(map[string]*workflow.Run),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit starts a run and records it.
func (s *Store) Submit(ctx context.Context, q workflow.Query, observers ...tracker.Observer) (*workflow.Run, error) {
	run, err := s.submitter.Submit(ctx, q, observers...)
	if err != nil {
		return nil, err
	}
	s.Add(run)
	return run, nil
}

// Add records a run started elsewhere.
func (s *Store) Add(run *workflow.Run) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[run.ID()]; ok {
		return
	}
	s.runs[run.ID()] = run
	s.order = append(s.order, run.ID())
	s.evictLocked()
}

// evictLocked drops the oldest finished runs while over the limit. Runs
// still executing are never dropped.
func (s *Store) evictLocked() {
	for i := 0; len(s.order) > s.limit && i < len(s.order); {
		id := s.order[i]
		if s.runs[id].Snapshot().State.Finished() {
			delete(s.runs, id)
			s.order = append(s.order[:i], s.order[i+1:]...)
			continue
		}
		i++
	}
}

// Get returns the run with the given ID.
func (s *Store) Get(id string) (*workflow.Run, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[id]
	return run, ok
}

// Latest returns the most recently added run.
func (s *Store) Latest() (*workflow.Run, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.order) == 0 {
		return nil, false
	}
	return s.runs[s.order[len(s.order)-1]], true
}

// List returns all runs in insertion order. Run handles are safe for
// concurrent use.
func (s *Store) List() []*workflow.Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*workflow.Run, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.runs[id])
	}
	return out
}

// Summary counts runs by state.
type Summary struct {
	Total         int `json:"total"`
	Running       int `json:"running"`
	Completed     int `json:"completed"`
	FailedPartial int `json:"failed_partial"`
}

// RunStatus is the lightweight per-run view: no response content.
type RunStatus struct {
	ID             string           `json:"id"`
	Query          string           `json:"query"`
	State          tracker.RunState `json:"state"`
	Current        string           `json:"current_task,omitempty"`
	Progress       float64          `json:"progress"`
	StatusText     string           `json:"status_text"`
	ElapsedSeconds int              `json:"elapsed_seconds"`
}

// Status builds the status view of one run.
func Status(run *workflow.Run, now time.Time) RunStatus {
	snap := run.Snapshot()
	end := now
	if snap.State.Finished() {
		var last time.Time
		for _, t := range snap.Tasks {
			if t.FinishedAt != nil && t.FinishedAt.After(last) {
				last = *t.FinishedAt
			}
		}
		if !last.IsZero() {
			end = last
		}
	}
	return RunStatus{
		ID:             run.ID(),
		Query:          run.Query().Text,
		State:          snap.State,
		Current:        snap.Current,
		Progress:       snap.Progress,
		StatusText:     snap.StatusText,
		ElapsedSeconds: int(end.Sub(run.StartedAt()).Seconds()),
	}
}

// Summarize counts statuses by run state.
func Summarize(statuses []RunStatus) Summary {
	var summary Summary
	for _, st := range statuses {
		summary.Total++
		switch st.State {
		case tracker.RunCompleted:
			summary.Completed++
		case tracker.RunFailedPartial:
			summary.FailedPartial++
		default:
			summary.Running++
		}
	}
	return summary
}

// Statuses returns the summary and per-run statuses, in insertion order.
func (s *Store) Statuses() (Summary, []RunStatus) {
	runs := s.List()
	now := time.Now()

	statuses := make([]RunStatus, 0, len(runs))
	for _, run := range runs {
		statuses = append(statuses, Status(run, now))
	}
	return Summarize(statuses), statuses
}

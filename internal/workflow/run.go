package workflow

import (
	"context"
	"sync"
	"time"

	"github.com/pablasso/lexa/internal/tracker"
)

// Run is the handle for one submitted query. It owns its tracker; nothing
// in it is shared with other runs.
type Run struct {
	id        string
	query     Query
	startedAt time.Time
	tracker   *tracker.Tracker
	done      chan struct{}

	mu       sync.RWMutex
	results  []StageResult
	response LegalResponse
}

func newRun(id string, q Query, t *tracker.Tracker) *Run {
	return &Run{
		id:        id,
		query:     q,
		startedAt: time.Now(),
		tracker:   t,
		done:      make(chan struct{}),
	}
}

// ID returns the run identifier.
func (r *Run) ID() string { return r.id }

// Query returns the submitted query.
func (r *Run) Query() Query { return r.query }

// StartedAt returns when the run was submitted.
func (r *Run) StartedAt() time.Time { return r.startedAt }

// Snapshot returns the current task states of the run.
func (r *Run) Snapshot() tracker.Snapshot {
	return r.tracker.Snapshot()
}

// Subscribe registers an observer for the remaining transitions of the run.
func (r *Run) Subscribe(o tracker.Observer) func() {
	return r.tracker.Subscribe(o)
}

// Done is closed once the response is available.
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the run finishes or ctx ends. Cancelling ctx stops the
// wait, not the run.
func (r *Run) Wait(ctx context.Context) (LegalResponse, error) {
	select {
	case <-r.done:
		return r.Response()
	case <-ctx.Done():
		return LegalResponse{}, ctx.Err()
	}
}

// Response returns the aggregated response once the run is done. Before
// that it returns ErrRunInProgress.
func (r *Run) Response() (LegalResponse, error) {
	select {
	case <-r.done:
	default:
		return LegalResponse{}, ErrRunInProgress
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.response, nil
}

// Results returns the stage results recorded so far, in stage order.
func (r *Run) Results() []StageResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]StageResult, len(r.results))
	copy(out, r.results)
	return out
}

func (r *Run) appendResult(sr StageResult) {
	r.mu.Lock()
	r.results = append(r.results, sr)
	r.mu.Unlock()
}

func (r *Run) finish(resp LegalResponse) {
	r.mu.Lock()
	r.response = resp
	r.mu.Unlock()
	close(r.done)
}

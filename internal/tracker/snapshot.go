package tracker

import "fmt"

// Snapshot is a point-in-time copy of a run. Nothing in it aliases tracker
// state, so it can be kept, shared and rendered freely.
type Snapshot struct {
	Version    uint64   `json:"version"`
	State      RunState `json:"state"`
	Current    string   `json:"current_task,omitempty"`
	Tasks      []Task   `json:"tasks"`
	Total      int      `json:"total_tasks"`
	Completed  int      `json:"completed_tasks"`
	Failed     int      `json:"failed_tasks"`
	Progress   float64  `json:"progress"`
	StatusText string   `json:"status_text"`
}

func (t *Tracker) snapshotLocked() Snapshot {
	snap := Snapshot{
		Version: t.version,
		State:   Derive(t.tasks),
		Tasks:   make([]Task, len(t.tasks)),
		Total:   len(t.tasks),
	}
	inProgress := 0
	for i := range t.tasks {
		snap.Tasks[i] = t.tasks[i].clone()
		switch t.tasks[i].State {
		case TaskInProgress:
			snap.Current = t.tasks[i].Name
			inProgress++
		case TaskCompleted:
			snap.Completed++
		case TaskFailed:
			snap.Failed++
		}
	}
	if snap.Total > 0 {
		// In-progress tasks count for half.
		snap.Progress = (float64(snap.Completed) + float64(inProgress)*0.5) / float64(snap.Total) * 100
	}
	snap.StatusText = statusText(snap)
	return snap
}

// Finished returns the number of tasks in a terminal state.
func (s Snapshot) Finished() int {
	return s.Completed + s.Failed
}

// Task returns the named task and whether it exists.
func (s Snapshot) Task(name string) (Task, bool) {
	for _, t := range s.Tasks {
		if t.Name == name {
			return t, true
		}
	}
	return Task{}, false
}

// CurrentTask returns the in-progress task, if any.
func (s Snapshot) CurrentTask() (Task, bool) {
	if s.Current == "" {
		return Task{}, false
	}
	return s.Task(s.Current)
}

func statusText(s Snapshot) string {
	if s.Total == 0 {
		return "No run started"
	}
	if current, ok := s.CurrentTask(); ok {
		return "🔄 " + current.Label
	}
	switch {
	case s.Failed > 0:
		return fmt.Sprintf("❌ %d task(s) failed", s.Failed)
	case s.Completed == s.Total:
		return "✅ All tasks completed successfully"
	default:
		return fmt.Sprintf("⏳ %d/%d tasks completed", s.Completed, s.Total)
	}
}

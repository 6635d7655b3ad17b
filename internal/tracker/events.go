package tracker

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// EventKind names a tracker transition.
type EventKind string

// Event kind constants
const (
	EventRunStarted    EventKind = "run_started"
	EventTaskStarted   EventKind = "task_started"
	EventTaskCompleted EventKind = "task_completed"
	EventTaskFailed    EventKind = "task_failed"
	EventRunFinished   EventKind = "run_finished"
)

// Event describes one transition together with the snapshot taken right
// after it.
type Event struct {
	Kind     EventKind `json:"event"`
	RunID    string    `json:"run_id,omitempty"`
	Task     string    `json:"task,omitempty"`
	Error    string    `json:"error,omitempty"`
	At       time.Time `json:"timestamp"`
	Snapshot Snapshot  `json:"-"`
}

// Observer receives tracker events.
type Observer func(Event)

// journalEntry is one JSON Lines record.
type journalEntry struct {
	Timestamp time.Time      `json:"timestamp"`
	Event     EventKind      `json:"event"`
	Data      map[string]any `json:"data,omitempty"`
}

// Journal appends tracker events to a JSON Lines file. Every record
// carries the run ID of its event, so several runs can share one file.
type Journal struct {
	mu   sync.Mutex
	path string
	err  error
}

// NewJournal creates a journal writing to path.
func NewJournal(path string) *Journal {
	return &Journal{path: path}
}

// Observe is an Observer that appends ev to the journal. Write failures are
// kept and reported by Err rather than interrupting the run.
func (j *Journal) Observe(ev Event) {
	data := map[string]any{
		"state": string(ev.Snapshot.State),
	}
	if ev.RunID != "" {
		data["run_id"] = ev.RunID
	}
	if ev.Task != "" {
		data["task"] = ev.Task
	}
	if ev.Error != "" {
		data["error"] = ev.Error
	}
	if ev.Kind == EventRunFinished {
		data["completed_tasks"] = ev.Snapshot.Completed
		data["failed_tasks"] = ev.Snapshot.Failed
		data["total_tasks"] = ev.Snapshot.Total
	}

	if err := j.Log(ev.Kind, ev.At, data); err != nil {
		j.mu.Lock()
		if j.err == nil {
			j.err = err
		}
		j.mu.Unlock()
	}
}

// Log appends a single record.
func (j *Journal) Log(kind EventKind, at time.Time, data map[string]any) error {
	entry := journalEntry{
		Timestamp: at,
		Event:     kind,
		Data:      data,
	}

	jsonBytes, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal journal entry: %w", err)
	}
	jsonBytes = append(jsonBytes, '\n')

	j.mu.Lock()
	defer j.mu.Unlock()

	f, err := os.OpenFile(j.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer f.Close()

	_, err = f.Write(jsonBytes)
	return err
}

// Err returns the first write error, if any.
func (j *Journal) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}

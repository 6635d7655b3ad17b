package tracker

import "testing"

func TestValidateTransition(t *testing.T) {
	tests := []struct {
		from    TaskState
		to      TaskState
		wantErr bool
	}{
		{TaskPending, TaskInProgress, false},
		{TaskInProgress, TaskCompleted, false},
		{TaskInProgress, TaskFailed, false},
		{TaskPending, TaskCompleted, true},
		{TaskPending, TaskFailed, true},
		{TaskInProgress, TaskPending, true},
		{TaskCompleted, TaskInProgress, true},
		{TaskFailed, TaskPending, true},
		{TaskCompleted, TaskFailed, true},
		{TaskState("queued"), TaskInProgress, true},
		{TaskPending, TaskState("done"), true},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			err := ValidateTransition(tt.from, tt.to)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTransition(%s, %s) error = %v, wantErr %v", tt.from, tt.to, err, tt.wantErr)
			}
		})
	}
}

func TestDerive(t *testing.T) {
	task := func(s TaskState) Task { return Task{State: s} }

	tests := []struct {
		name  string
		tasks []Task
		want  RunState
	}{
		{"no tasks", nil, RunIdle},
		{"all pending", []Task{task(TaskPending), task(TaskPending)}, RunRunning},
		{"one active", []Task{task(TaskCompleted), task(TaskInProgress)}, RunRunning},
		{"failure with pending left", []Task{task(TaskFailed), task(TaskPending)}, RunRunning},
		{"all completed", []Task{task(TaskCompleted), task(TaskCompleted)}, RunCompleted},
		{"one failed", []Task{task(TaskCompleted), task(TaskFailed)}, RunFailedPartial},
		{"all failed", []Task{task(TaskFailed), task(TaskFailed)}, RunFailedPartial},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Derive(tt.tasks); got != tt.want {
				t.Errorf("Derive() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestIcons(t *testing.T) {
	want := map[TaskState]string{
		TaskPending:    "⏳",
		TaskInProgress: "🔄",
		TaskCompleted:  "✅",
		TaskFailed:     "❌",
		"bogus":        "❓",
	}
	for state, icon := range want {
		if got := state.Icon(); got != icon {
			t.Errorf("%s.Icon() = %q, want %q", state, got, icon)
		}
	}
}

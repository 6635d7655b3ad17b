package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pablasso/lexa/internal/testutil"
	"github.com/pablasso/lexa/internal/tool"
	"github.com/pablasso/lexa/internal/tracker"
	"github.com/pablasso/lexa/internal/workflow"
)

func startRun(t *testing.T) (*workflow.Run, chan struct{}, <-chan struct{}) {
	t.Helper()
	release := make(chan struct{})
	gate, entered := testutil.Gate(workflow.Draft{Document: "NOTICE"}, release)

	reg := tool.NewRegistry()
	reg.MustRegister("case_analysis", testutil.Succeed(workflow.CaseAnalysis{Summary: "Wallet theft", CaseType: "property_crime"}))
	reg.MustRegister("ipc_search", testutil.Fail("index offline"))
	reg.MustRegister("precedent_search", testutil.Succeed([]workflow.PrecedentHit{{Title: "State v. Kumar"}}))
	reg.MustRegister("document_drafting", gate)
	reg.Freeze()

	o, err := workflow.New(reg)
	if err != nil {
		t.Fatalf("workflow.New: %v", err)
	}
	run, err := o.Submit(context.Background(), workflow.Query{Text: "A man stole my wallet"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	t.Cleanup(func() {
		select {
		case <-release:
		default:
			close(release)
		}
	})
	return run, release, entered
}

func waitFor(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out")
	}
}

func TestModel_ViewWhileRunning(t *testing.T) {
	run, _, entered := startRun(t)
	waitFor(t, entered)

	m := NewModel(run)
	defer m.unsubscribe()
	view := m.View()

	for _, want := range []string{
		"A man stole my wallet",
		"Analyzing your legal issue",
		"Finding relevant Indian Penal Code sections",
		"index offline",
		"Drafting formal legal document",
		"62.5%",
		"q Quit",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
	if strings.Contains(view, "Enter Response") {
		t.Error("response hint shown before the run finished")
	}
}

func TestModel_SnapshotMsgKeepsNewest(t *testing.T) {
	run, _, entered := startRun(t)
	waitFor(t, entered)

	m := NewModel(run)
	defer m.unsubscribe()
	current := m.snap.Version

	updated, cmd := m.Update(snapshotMsg(tracker.Snapshot{Version: current - 1}))
	if got := updated.(Model).snap.Version; got != current {
		t.Errorf("stale snapshot applied: version %d, want %d", got, current)
	}
	if cmd == nil {
		t.Error("expected the model to keep listening for snapshots")
	}
}

func TestModel_RunDone(t *testing.T) {
	run, release, entered := startRun(t)
	waitFor(t, entered)
	m := NewModel(run)
	defer m.unsubscribe()

	close(release)
	msg := m.waitForDone()()
	done, ok := msg.(runDoneMsg)
	if !ok {
		t.Fatalf("expected runDoneMsg, got %T", msg)
	}
	if done.err != nil {
		t.Fatalf("unexpected error: %v", done.err)
	}

	updated, _ := m.Update(done)
	m = updated.(Model)
	if !m.Done() {
		t.Fatal("model should be done")
	}
	view := m.View()
	for _, want := range []string{"Case type: property_crime", "Degraded stages: statute_search", "Enter Response"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected quit command on enter")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestModel_EnterIgnoredWhileRunning(t *testing.T) {
	run, _, entered := startRun(t)
	waitFor(t, entered)
	m := NewModel(run)
	defer m.unsubscribe()

	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Error("enter should do nothing while the run is going")
	}
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected quit command on q")
	}
}

func TestModel_WindowSize(t *testing.T) {
	run, _, _ := startRun(t)
	m := NewModel(run)
	defer m.unsubscribe()

	updated, cmd := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	if cmd != nil {
		t.Error("expected no command from WindowSizeMsg")
	}
	if got := updated.(Model); got.width != 120 || got.height != 40 {
		t.Errorf("size = %dx%d, want 120x40", got.width, got.height)
	}
}

func TestLatestKeepsOnlyNewestSnapshot(t *testing.T) {
	ch := make(chan tracker.Snapshot, 1)
	obs := latest(ch)
	for v := uint64(1); v <= 3; v++ {
		obs(tracker.Event{Snapshot: tracker.Snapshot{Version: v}})
	}
	if got := (<-ch).Version; got != 3 {
		t.Errorf("version = %d, want 3", got)
	}
}

func TestTruncateWithEllipsis(t *testing.T) {
	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"a longer query text", 10, "a longe..."},
		{"abcdef", 3, "abc"},
		{"anything", 0, ""},
	}
	for _, tt := range tests {
		if got := truncateWithEllipsis(tt.in, tt.maxLen); got != tt.want {
			t.Errorf("truncateWithEllipsis(%q, %d) = %q, want %q", tt.in, tt.maxLen, got, tt.want)
		}
	}
}

// Package tui is the interactive run monitor: a live view of one run's
// stages that turns into a short summary when the run finishes.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pablasso/lexa/internal/tracker"
	"github.com/pablasso/lexa/internal/tui/components"
	"github.com/pablasso/lexa/internal/tui/styles"
	"github.com/pablasso/lexa/internal/workflow"
)

const progressWidth = 24

// Message types for run events

// snapshotMsg carries the newest snapshot published by the tracker.
type snapshotMsg tracker.Snapshot

// runDoneMsg signals that the run has an aggregated response.
type runDoneMsg struct {
	response workflow.LegalResponse
	err      error
}

type tickMsg time.Time

// Model is the Bubble Tea model for one run.
type Model struct {
	run         *workflow.Run
	updates     chan tracker.Snapshot
	unsubscribe func()

	snap     tracker.Snapshot
	spinner  spinner.Model
	now      func() time.Time
	done     bool
	response workflow.LegalResponse
	err      error

	width  int
	height int
}

// NewModel subscribes to run and returns a model showing its progress.
func NewModel(run *workflow.Run) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.ActiveStyle

	updates := make(chan tracker.Snapshot, 1)
	m := Model{
		run:     run,
		updates: updates,
		snap:    run.Snapshot(),
		spinner: s,
		now:     time.Now,
		width:   80,
	}
	m.unsubscribe = run.Subscribe(latest(updates))
	return m
}

// latest returns an observer that keeps only the newest snapshot in ch.
// The tracker never blocks on a slow UI.
func latest(ch chan tracker.Snapshot) tracker.Observer {
	return func(ev tracker.Event) {
		for {
			select {
			case ch <- ev.Snapshot:
				return
			default:
			}
			select {
			case <-ch:
			default:
			}
		}
	}
}

// Run shows the monitor until the user quits. The run keeps executing if
// the user quits early.
func Run(ctx context.Context, run *workflow.Run) error {
	m := NewModel(run)
	defer m.unsubscribe()
	p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.tickCmd(),
		m.waitForSnapshot(),
		m.waitForDone(),
	)
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) waitForSnapshot() tea.Cmd {
	return func() tea.Msg {
		select {
		case snap := <-m.updates:
			return snapshotMsg(snap)
		case <-m.run.Done():
			return nil
		}
	}
}

func (m Model) waitForDone() tea.Cmd {
	return func() tea.Msg {
		<-m.run.Done()
		resp, err := m.run.Response()
		return runDoneMsg{response: resp, err: err}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			if m.done {
				return m, tea.Quit
			}
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tickMsg:
		if m.done {
			return m, nil
		}
		return m, m.tickCmd()

	case snapshotMsg:
		if snap := tracker.Snapshot(msg); snap.Version >= m.snap.Version {
			m.snap = snap
		}
		return m, m.waitForSnapshot()

	case runDoneMsg:
		m.done = true
		m.snap = m.run.Snapshot()
		m.response = msg.response
		m.err = msg.err
		return m, nil
	}
	return m, nil
}

// Done reports whether the run finished while the monitor was open.
func (m Model) Done() bool {
	return m.done
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render("⚖️  Lexa legal research"))
	b.WriteString("\n")
	b.WriteString(styles.SubtleStyle.Render(truncateWithEllipsis(m.run.Query().Text, m.width-2)))
	b.WriteString("\n\n")

	for _, t := range m.snap.Tasks {
		b.WriteString(m.renderTask(t))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(components.NewProgress(m.snap.Progress, progressWidth).View())
	b.WriteString("  ")
	b.WriteString(m.snap.StatusText)
	b.WriteString("\n\n")

	if m.done {
		b.WriteString(m.renderSummary())
		b.WriteString("\n\n")
	}

	items := []string{"run " + shortID(m.run.ID()), formatDuration(m.elapsed())}
	if m.done {
		items = append(items, "Enter Response")
	}
	items = append(items, "q Quit")
	b.WriteString(components.NewStatusBar().Render(m.width, items))

	return b.String()
}

func (m Model) renderTask(t tracker.Task) string {
	indicator := m.taskIndicator(t.State)
	line := fmt.Sprintf("%s %s %s", indicator, t.Icon, t.Label)
	switch t.State {
	case tracker.TaskInProgress:
		line = fmt.Sprintf("%s %s %s", indicator, t.Icon, styles.ActiveStyle.Render(t.Label))
	case tracker.TaskPending:
		line = fmt.Sprintf("%s %s %s", indicator, t.Icon, styles.SubtleStyle.Render(t.Label))
	}
	if t.StartedAt != nil {
		line += " " + styles.SubtleStyle.Render(formatDuration(t.Duration(m.now())))
	}
	if t.Error != "" {
		line += "\n    " + styles.ErrorStyle.Render(truncateWithEllipsis(t.Error, m.width-6))
	}
	return line
}

// taskIndicator returns the status indicator for a task.
func (m Model) taskIndicator(state tracker.TaskState) string {
	switch state {
	case tracker.TaskCompleted:
		return styles.SuccessStyle.Render("✓")
	case tracker.TaskFailed:
		return styles.ErrorStyle.Render("✗")
	case tracker.TaskInProgress:
		return m.spinner.View()
	default:
		return styles.SubtleStyle.Render("○")
	}
}

func (m Model) renderSummary() string {
	if m.err != nil {
		return styles.ErrorStyle.Render(m.err.Error())
	}
	r := m.response
	lines := []string{
		fmt.Sprintf("Case type: %s", r.CaseType),
		fmt.Sprintf("Relevant sections: %d  Precedents: %d", len(r.Statutes), len(r.Precedents)),
	}
	if len(r.FailedStages) > 0 {
		names := make([]string, len(r.FailedStages))
		for i, s := range r.FailedStages {
			names[i] = string(s)
		}
		lines = append(lines, styles.ErrorStyle.Render("Degraded stages: "+strings.Join(names, ", ")))
	}
	return styles.BoxStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) elapsed() time.Duration {
	if !m.done {
		return m.now().Sub(m.run.StartedAt())
	}
	var last time.Time
	for _, t := range m.snap.Tasks {
		if t.FinishedAt != nil && t.FinishedAt.After(last) {
			last = *t.FinishedAt
		}
	}
	return last.Sub(m.run.StartedAt())
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncateWithEllipsis(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	m := d / time.Minute
	s := (d - m*time.Minute) / time.Second
	return fmt.Sprintf("%02d:%02d", m, s)
}

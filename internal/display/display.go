// Package display renders run progress to a plain terminal: a ticking
// status line on a TTY, one line per event otherwise.
package display

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"

	"github.com/pablasso/lexa/internal/tracker"
)

// Display manages the terminal status line.
type Display struct {
	mu       sync.Mutex
	writer   io.Writer
	live     bool
	snap     tracker.Snapshot
	start    time.Time
	now      func() time.Time
	ticker   *time.Ticker
	done     chan struct{}
	wg       sync.WaitGroup // Ensures goroutine exits before Stop() returns
	active   bool
	lastLine string
}

// New creates a Display writing to w. The status line is redrawn in place
// only when w is a terminal.
func New(w io.Writer) *Display {
	return &Display{
		writer: w,
		live:   IsTerminal(w),
		now:    time.Now,
		done:   make(chan struct{}),
	}
}

// IsTerminal reports whether w is a file attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Start begins the display update loop.
func (d *Display) Start() {
	d.mu.Lock()
	if d.active {
		d.mu.Unlock()
		return
	}
	d.active = true
	d.start = d.now()
	if !d.live {
		d.mu.Unlock()
		return
	}
	d.ticker = time.NewTicker(time.Second)
	d.wg.Add(1)
	d.mu.Unlock()

	go d.updateLoop()
}

// Stop halts the update loop and clears the status line.
func (d *Display) Stop() {
	d.mu.Lock()
	if !d.active {
		d.mu.Unlock()
		return
	}
	d.active = false
	live := d.live
	d.mu.Unlock()

	if !live {
		return
	}
	d.ticker.Stop()
	close(d.done)
	d.wg.Wait()
	d.clearLine()
}

// Observe is a tracker.Observer. Task transitions are printed above the
// status line so they stay in the scrollback.
func (d *Display) Observe(ev tracker.Event) {
	d.mu.Lock()
	d.snap = ev.Snapshot
	d.mu.Unlock()

	switch ev.Kind {
	case tracker.EventTaskCompleted, tracker.EventTaskFailed:
		if t, ok := ev.Snapshot.Task(ev.Task); ok {
			d.PrintAbove("%s", taskLine(t, d.now()))
		}
	case tracker.EventTaskStarted:
		if !d.live {
			if t, ok := ev.Snapshot.Task(ev.Task); ok {
				d.PrintAbove("%s", taskLine(t, d.now()))
			}
			return
		}
		d.render()
	}
}

func (d *Display) updateLoop() {
	defer d.wg.Done()
	d.render()
	for {
		select {
		case <-d.ticker.C:
			d.render()
		case <-d.done:
			return
		}
	}
}

func (d *Display) render() {
	d.mu.Lock()
	if !d.live {
		d.mu.Unlock()
		return
	}
	line := formatLine(d.snap, d.now().Sub(d.start))
	if line == d.lastLine {
		d.mu.Unlock()
		return
	}
	d.lastLine = line
	d.mu.Unlock()

	fmt.Fprintf(d.writer, "\r\033[K%s", line)
}

// formatLine creates the status line string.
func formatLine(snap tracker.Snapshot, elapsed time.Duration) string {
	if snap.Total == 0 {
		return ""
	}
	stage := snap.Finished()
	label := snap.StatusText
	if t, ok := snap.CurrentTask(); ok {
		stage++
		label = t.Icon + " " + t.Label
	}
	return fmt.Sprintf("Stage %d/%d: %s │ %.1f%% │ ⏱ %s",
		stage,
		snap.Total,
		truncate(label, 60),
		snap.Progress,
		formatDuration(elapsed))
}

func (d *Display) clearLine() {
	if d.live {
		fmt.Fprintf(d.writer, "\r\033[K")
	}
}

// PrintAbove prints a message above the status line.
func (d *Display) PrintAbove(format string, args ...any) {
	d.mu.Lock()
	d.lastLine = ""
	d.mu.Unlock()
	d.clearLine()
	fmt.Fprintf(d.writer, format+"\n", args...)
	d.render()
}

// Report writes the per-task summary of a snapshot.
func Report(w io.Writer, snap tracker.Snapshot, now time.Time) {
	for _, t := range snap.Tasks {
		fmt.Fprintln(w, taskLine(t, now))
	}
	fmt.Fprintf(w, "Progress: %.1f%% │ %s\n", snap.Progress, snap.StatusText)
}

func taskLine(t tracker.Task, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s", t.State.Icon(), t.Icon, t.Label)
	if t.StartedAt != nil {
		fmt.Fprintf(&b, " (%s)", formatDuration(t.Duration(now)))
	}
	if t.Error != "" {
		fmt.Fprintf(&b, ": %s", t.Error)
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

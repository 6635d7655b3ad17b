package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pablasso/lexa/internal/display"
	"github.com/pablasso/lexa/internal/runstore"
	"github.com/pablasso/lexa/internal/tracker"
	"github.com/pablasso/lexa/internal/tui"
	"github.com/pablasso/lexa/internal/util"
	"github.com/pablasso/lexa/internal/workflow"
)

var (
	askCategory string
	askJSON     bool
	askTUI      bool
	askSave     string
	askJournal  string
)

func init() {
	askCmd.Flags().StringVar(&askCategory, "category", "", "Case type hint, e.g. property_crime or contract_dispute")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "Print the response as JSON")
	askCmd.Flags().BoolVar(&askTUI, "tui", false, "Watch the run in an interactive monitor")
	askCmd.Flags().StringVar(&askSave, "save", "", "Also save the response as markdown in this directory")
	askCmd.Flags().StringVar(&askJournal, "journal", "", "Append run events to this JSON Lines file")
}

var askCmd = &cobra.Command{
	Use:   "ask <query>",
	Short: "Research a legal question",
	Long: `Run a legal question through case analysis, IPC section search, precedent
search and document drafting. Pass "-" to read the question from stdin.`,
	Example: `  lexa ask "A man stole my wallet at the bus stop"
  lexa ask --category contract_dispute --save ./notices "The builder has not delivered my flat"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
	query, err := readQuery(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return ask(ctx, a.orchestrator, cmd.OutOrStdout(), cmd.ErrOrStderr(),
		workflow.Query{Text: query, CategoryHint: askCategory},
		askOptions{JSON: askJSON, TUI: askTUI, SaveDir: askSave, Journal: askJournal})
}

// readQuery joins the arguments into one query, or reads stdin for "-".
func readQuery(stdin io.Reader, args []string) (string, error) {
	if len(args) == 1 && args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read query from stdin: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	return strings.TrimSpace(strings.Join(args, " ")), nil
}

type askOptions struct {
	JSON    bool
	TUI     bool
	SaveDir string
	Journal string
}

// runResult is the JSON shape of one finished run.
type runResult struct {
	RunID    string                 `json:"run_id"`
	Query    string                 `json:"query"`
	State    tracker.RunState       `json:"state"`
	Response workflow.LegalResponse `json:"response"`
}

func newRunResult(run *workflow.Run, resp workflow.LegalResponse) runResult {
	return runResult{
		RunID:    run.ID(),
		Query:    run.Query().Text,
		State:    run.Snapshot().State,
		Response: resp,
	}
}

func ask(ctx context.Context, s runstore.Submitter, out, errOut io.Writer, q workflow.Query, opts askOptions) error {
	var observers []tracker.Observer

	var journal *tracker.Journal
	if opts.Journal != "" {
		journal = tracker.NewJournal(opts.Journal)
		observers = append(observers, journal.Observe)
	}

	var status *display.Display
	if !opts.TUI {
		status = display.New(errOut)
		observers = append(observers, status.Observe)
		status.Start()
		defer status.Stop()
	}

	run, err := s.Submit(ctx, q, observers...)
	if err != nil {
		return err
	}

	if opts.TUI {
		if err := tui.Run(ctx, run); err != nil {
			return fmt.Errorf("monitor failed: %w", err)
		}
	}

	resp, err := run.Wait(ctx)
	if err != nil {
		return err
	}
	if status != nil {
		status.Stop()
	} else {
		display.Report(errOut, run.Snapshot(), time.Now())
	}

	if journal != nil {
		if err := journal.Err(); err != nil {
			fmt.Fprintf(errOut, "warning: journal not fully written: %v\n", err)
		}
	}

	if opts.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(newRunResult(run, resp)); err != nil {
			return fmt.Errorf("failed to encode response: %w", err)
		}
	} else {
		renderResponse(out, q.Text, resp)
	}

	if opts.SaveDir != "" {
		path, err := saveResponse(opts.SaveDir, run, resp)
		if err != nil {
			return err
		}
		fmt.Fprintf(errOut, "Saved response to %s\n", path)
	}
	return nil
}

func saveResponse(dir string, run *workflow.Run, resp workflow.LegalResponse) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	path := filepath.Join(dir, util.ResponseFileName(run.Query().Text, run.ID(), run.StartedAt()))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to save response: %w", err)
	}
	defer f.Close()

	renderResponse(f, run.Query().Text, resp)
	return path, nil
}

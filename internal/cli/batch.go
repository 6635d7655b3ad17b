package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pablasso/lexa/internal/runstore"
	"github.com/pablasso/lexa/internal/workflow"
)

// DefaultBatchConcurrency is how many runs a batch executes at once.
const DefaultBatchConcurrency = 4

var (
	batchConcurrency int
	batchCategory    string
)

func init() {
	batchCmd.Flags().IntVarP(&batchConcurrency, "concurrency", "c", DefaultBatchConcurrency, "Number of queries researched at the same time")
	batchCmd.Flags().StringVar(&batchCategory, "category", "", "Case type hint applied to every query")
}

var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Research one query per line of a file",
	Long: `Research every non-empty line of a file as a separate query. Lines starting
with # are skipped. Results are printed as JSON Lines in input order; use "-"
to read queries from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func runBatch(cmd *cobra.Command, args []string) error {
	var r io.Reader = cmd.InOrStdin()
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", args[0], err)
		}
		defer f.Close()
		r = f
	}
	queries, err := readQueries(r)
	if err != nil {
		return err
	}
	if len(queries) == 0 {
		return fmt.Errorf("no queries in %s", args[0])
	}

	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store := runstore.New(a.orchestrator)
	results, err := batch(ctx, store, queries, batchCategory, batchConcurrency)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	for _, res := range results {
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
	}

	summary, _ := store.Statuses()
	a.logger.Info("batch finished",
		zap.Int("runs", summary.Total),
		zap.Int("completed", summary.Completed),
		zap.Int("failed_partial", summary.FailedPartial))
	fmt.Fprintf(cmd.ErrOrStderr(), "%d runs: %d completed, %d with failed stages\n",
		summary.Total, summary.Completed, summary.FailedPartial)
	return nil
}

func readQueries(r io.Reader) ([]string, error) {
	var queries []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		queries = append(queries, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read queries: %w", err)
	}
	return queries, nil
}

// batch researches every query, at most limit at a time, and returns the
// results in query order.
func batch(ctx context.Context, store *runstore.Store, queries []string, category string, limit int) ([]runResult, error) {
	if limit < 1 {
		limit = 1
	}
	results := make([]runResult, len(queries))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, q := range queries {
		g.Go(func() error {
			run, err := store.Submit(ctx, workflow.Query{Text: q, CategoryHint: category})
			if err != nil {
				return fmt.Errorf("query %d: %w", i+1, err)
			}
			resp, err := run.Wait(ctx)
			if err != nil {
				return fmt.Errorf("query %d: %w", i+1, err)
			}
			results[i] = newRunResult(run, resp)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

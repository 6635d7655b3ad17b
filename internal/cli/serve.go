package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pablasso/lexa/internal/runstore"
	"github.com/pablasso/lexa/internal/statusapi"
)

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default LEXA_STATUS_ADDR or :8000)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the run status API over HTTP",
	Long: `Serve the status API: submit queries with POST /runs and follow them with
GET /runs/{id}/status, /progress, /tasks and /response. GET /status, /progress
and /tasks report the most recent run.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		defer a.close()

		addr := serveAddr
		if addr == "" {
			addr = a.cfg.StatusAddr
		}

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		store := runstore.New(a.orchestrator)
		srv := statusapi.New(store,
			statusapi.WithTools(a.registry),
			statusapi.WithLogger(a.logger),
		)
		return srv.ListenAndServe(ctx, addr)
	},
}

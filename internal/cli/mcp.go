package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pablasso/lexa/internal/mcpserver"
	"github.com/pablasso/lexa/internal/runstore"
	"github.com/pablasso/lexa/internal/version"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the research tools over MCP on stdio",
	Long: `Serve the Model Context Protocol on stdin/stdout so an assistant can list and
invoke the research tools, submit queries and poll their runs. Logs go to
stderr or LEXA_LOG_FILE; stdout carries protocol messages only.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		defer a.close()

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		store := runstore.New(a.orchestrator)
		return mcpserver.New(a.registry, store, version.Version, a.logger).Run(ctx)
	},
}

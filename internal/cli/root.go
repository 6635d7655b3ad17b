package cli

import (
	"github.com/spf13/cobra"

	"github.com/pablasso/lexa/internal/version"
)

var (
	envDir   string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "lexa",
	Short: "Legal research pipeline for everyday legal questions",
	Long: `Lexa runs a legal query through four stages: case analysis, Indian Penal Code
section search, precedent search and document drafting. Every stage reports its
status while it runs, and a response is produced even when some stages fail.`,
	Version:      version.Version,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envDir, "env-dir", "", "Directory holding .env files (default: working directory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override LEXA_LOG_LEVEL: debug, info, warn or error")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(toolCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

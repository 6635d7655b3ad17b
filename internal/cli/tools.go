package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pablasso/lexa/internal/tool"
)

var toolInput string

func init() {
	toolCmd.Flags().StringVar(&toolInput, "input", "", `Tool arguments as a JSON object, or "-" to read them from stdin`)
}

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the registered research tools",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		defer a.close()
		return listTools(cmd.OutOrStdout(), a.registry)
	},
}

var toolCmd = &cobra.Command{
	Use:     "tool <name>",
	Short:   "Invoke one research tool directly",
	Example: `  lexa tool ipc_search --input '{"query": "stolen phone", "case_type": "property_crime"}'`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw := toolInput
		if raw == "-" {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("failed to read input from stdin: %w", err)
			}
			raw = strings.TrimSpace(string(data))
		}

		a, err := loadApp()
		if err != nil {
			return err
		}
		defer a.close()
		return invokeTool(cmd.Context(), cmd.OutOrStdout(), a.registry, args[0], raw)
	},
}

type toolDescriber interface {
	Describe() []tool.Descriptor
}

func listTools(w io.Writer, tools toolDescriber) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tDESCRIPTION")
	for _, d := range tools.Describe() {
		fmt.Fprintf(tw, "%s\t%s\n", d.Name, d.Description)
	}
	return tw.Flush()
}

type toolResolver interface {
	Resolve(name string) (tool.Capability, error)
}

func invokeTool(ctx context.Context, w io.Writer, tools toolResolver, name, raw string) error {
	c, err := tools.Resolve(name)
	if err != nil {
		return err
	}
	in, err := tool.InputFromJSON(raw)
	if err != nil {
		return err
	}

	res := c.Invoke(ctx, in)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	if !res.OK() {
		return fmt.Errorf("%s failed: %s", name, res.Error)
	}
	return nil
}

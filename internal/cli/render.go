package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/pablasso/lexa/internal/workflow"
)

// renderResponse writes resp as markdown. The same text is printed by
// `lexa ask` and saved by --save.
func renderResponse(w io.Writer, query string, resp workflow.LegalResponse) {
	fmt.Fprintf(w, "# Legal research\n\n")
	fmt.Fprintf(w, "**Query:** %s\n\n", strings.TrimSpace(query))
	fmt.Fprintf(w, "**Case type:** %s\n\n", resp.CaseType)

	fmt.Fprintf(w, "## Case analysis\n\n%s\n\n", strings.TrimSpace(resp.CaseSummary))

	fmt.Fprintf(w, "## Relevant IPC sections\n\n")
	if len(resp.Statutes) == 0 {
		fmt.Fprintf(w, "No matching sections found.\n\n")
	}
	for _, s := range resp.Statutes {
		fmt.Fprintf(w, "- **Section %s, %s** (relevance %.1f): %s\n", s.Section, s.Title, s.Score, s.Content)
	}
	if len(resp.Statutes) > 0 {
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "## Precedents\n\n")
	if len(resp.Precedents) == 0 {
		fmt.Fprintf(w, "No matching precedents found.\n\n")
	}
	for _, p := range resp.Precedents {
		fmt.Fprintf(w, "- **%s** (%s, %d): %s\n", p.Title, p.Court, p.Year, p.Summary)
	}
	if len(resp.Precedents) > 0 {
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "## Draft document\n\n```\n%s\n```\n", strings.TrimSpace(resp.Document))

	if len(resp.FailedStages) > 0 {
		names := make([]string, len(resp.FailedStages))
		for i, s := range resp.FailedStages {
			names[i] = string(s)
		}
		fmt.Fprintf(w, "\n> Some stages failed and were replaced with defaults: %s\n", strings.Join(names, ", "))
	}
}

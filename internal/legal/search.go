package legal

import (
	"context"
	"errors"
	"strings"

	"github.com/pablasso/lexa/internal/tool"
	"github.com/pablasso/lexa/internal/workflow"
)

// DefaultSearchLimit caps the hits returned by the search tools.
const DefaultSearchLimit = 5

// StatuteSearch is the statute search capability.
type StatuteSearch struct {
	corpus *Corpus
	limit  int
}

// Description implements tool.Describer.
func (s *StatuteSearch) Description() string {
	return "Search for relevant IPC sections based on a legal query"
}

// Parameters implements tool.Describer.
func (s *StatuteSearch) Parameters() map[string]any {
	return searchSchema("Legal query or case description")
}

// Invoke searches the statute table.
func (s *StatuteSearch) Invoke(ctx context.Context, in tool.Input) tool.Result {
	args, err := decodeSearch(in, s.limit)
	if err != nil {
		return tool.Failure(ToolIPCSearch, err)
	}
	terms := searchTerms(args.Query, args.Keywords)
	return tool.Success(ToolIPCSearch, s.corpus.SearchStatutes(terms, args.CaseType, args.Limit))
}

// PrecedentSearch is the precedent search capability.
type PrecedentSearch struct {
	corpus *Corpus
	limit  int
}

// Description implements tool.Describer.
func (s *PrecedentSearch) Description() string {
	return "Search for relevant legal precedents and case law"
}

// Parameters implements tool.Describer.
func (s *PrecedentSearch) Parameters() map[string]any {
	schema := searchSchema("Legal query for precedent search")
	props := schema["properties"].(map[string]any)
	props["sections"] = map[string]any{
		"type":        "array",
		"items":       map[string]any{"type": "string"},
		"description": "IPC sections already found, used to boost precedents citing them",
	}
	return schema
}

// Invoke searches the precedent table.
func (s *PrecedentSearch) Invoke(ctx context.Context, in tool.Input) tool.Result {
	args, err := decodeSearch(in, s.limit)
	if err != nil {
		return tool.Failure(ToolPrecedentSearch, err)
	}
	terms := searchTerms(args.Query, args.Keywords)
	return tool.Success(ToolPrecedentSearch, s.corpus.SearchPrecedents(terms, args.CaseType, args.Sections, args.Limit))
}

func decodeSearch(in tool.Input, defaultLimit int) (workflow.SearchInput, error) {
	var args workflow.SearchInput
	if err := in.Decode(&args); err != nil {
		return args, err
	}
	if strings.TrimSpace(args.Query) == "" && len(args.Keywords) == 0 {
		return args, errors.New("query is required")
	}
	if args.Limit <= 0 {
		args.Limit = defaultLimit
	}
	return args, nil
}

func searchSchema(queryDesc string) map[string]any {
	return objectSchema(map[string]any{
		"query":     stringProp(queryDesc),
		"case_type": stringProp("Case type from case analysis, boosts matching entries"),
		"keywords": map[string]any{
			"type":        "array",
			"items":       map[string]any{"type": "string"},
			"description": "Additional search keywords",
		},
		"limit": map[string]any{"type": "integer", "description": "Maximum number of results"},
	}, "query")
}

func objectSchema(props map[string]any, required ...string) map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

func stringProp(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}

package mcpserver

import (
	"github.com/pablasso/lexa/internal/runstore"
	"github.com/pablasso/lexa/internal/tool"
	"github.com/pablasso/lexa/internal/tracker"
	"github.com/pablasso/lexa/internal/workflow"
)

// ListToolsArgs is the input for list_tools.
type ListToolsArgs struct{}

// ListToolsOutput lists the registered capabilities.
type ListToolsOutput struct {
	Tools []tool.Descriptor `json:"tools"`
}

// InvokeToolArgs is the input for invoke_tool.
type InvokeToolArgs struct {
	Name  string         `json:"name" jsonschema:"Registered tool name, see list_tools"`
	Input map[string]any `json:"input,omitempty" jsonschema:"Tool arguments as described by the tool's parameters"`
}

// ToolResultOutput is a tool result without its timestamp.
type ToolResultOutput struct {
	Tool   string `json:"tool_name"`
	Status string `json:"status"`
	Data   any    `json:"data,omitempty"`
	Error  string `json:"error,omitempty"`
}

func toolResultOutput(r tool.Result) ToolResultOutput {
	return ToolResultOutput{
		Tool:   r.Tool,
		Status: string(r.Status),
		Data:   r.Payload,
		Error:  r.Error,
	}
}

// SubmitQueryArgs is the input for submit_query.
type SubmitQueryArgs struct {
	Query    string `json:"query" jsonschema:"The legal question or incident description"`
	Category string `json:"category,omitempty" jsonschema:"Optional case type hint such as property_crime or contract_dispute"`
}

// SubmitQueryOutput identifies the new run.
type SubmitQueryOutput struct {
	RunID      string `json:"run_id"`
	State      string `json:"state"`
	StatusText string `json:"status_text"`
}

// CheckRunArgs is the input for check_run.
type CheckRunArgs struct {
	RunID string `json:"run_id,omitempty" jsonschema:"Run to inspect. Empty returns a summary of all runs."`
}

// TaskView is one task of a run.
type TaskView struct {
	Name   string `json:"name"`
	Label  string `json:"label"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// CheckRunOutput is lightweight status: no response content.
type CheckRunOutput struct {
	Summary runstore.Summary     `json:"summary"`
	Runs    []runstore.RunStatus `json:"runs"`
	Tasks   []TaskView           `json:"tasks,omitempty"`
}

func taskViews(snap tracker.Snapshot) []TaskView {
	views := make([]TaskView, 0, len(snap.Tasks))
	for _, t := range snap.Tasks {
		views = append(views, TaskView{
			Name:   t.Name,
			Label:  t.Label,
			Status: string(t.State),
			Error:  t.Error,
		})
	}
	return views
}

// GetResponseArgs is the input for get_response.
type GetResponseArgs struct {
	RunID       string `json:"run_id" jsonschema:"Run returned by submit_query"`
	WaitSeconds int    `json:"wait_seconds,omitempty" jsonschema:"Seconds to wait for the run to finish, at most 60. Zero returns immediately."`
}

// StageOutput is the result of one stage.
type StageOutput struct {
	Stage  string           `json:"stage"`
	Result ToolResultOutput `json:"result"`
}

// GetResponseOutput carries the response once the run is done.
type GetResponseOutput struct {
	RunID    string                  `json:"run_id"`
	State    string                  `json:"state"`
	Done     bool                    `json:"done"`
	Response *workflow.LegalResponse `json:"response,omitempty"`
	Stages   []StageOutput           `json:"stages,omitempty"`
}

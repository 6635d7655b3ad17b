// Package mcpserver exposes the tool registry and query runs over the
// Model Context Protocol on stdio.
package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/pablasso/lexa/internal/runstore"
	"github.com/pablasso/lexa/internal/tool"
	"github.com/pablasso/lexa/internal/workflow"
)

const maxWait = 60 * time.Second

// Registry is what the server needs from the tool registry.
type Registry interface {
	Describe() []tool.Descriptor
	Resolve(name string) (tool.Capability, error)
}

// Server wraps an MCP server bound to a registry and a run store.
type Server struct {
	registry Registry
	store    *runstore.Store
	logger   *zap.Logger
	mcp      *mcp.Server
}

// New creates the server and registers its tools.
func New(registry Registry, store *runstore.Store, version string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		registry: registry,
		store:    store,
		logger:   logger,
		mcp:      mcp.NewServer(&mcp.Implementation{Name: "lexa", Version: version}, nil),
	}

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_tools",
		Description: "List the legal research tools and their parameters",
	}, s.listTools)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "invoke_tool",
		Description: "Invoke one legal research tool directly with structured input",
	}, s.invokeTool)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "submit_query",
		Description: "Start the full legal workflow (case analysis, IPC search, precedent search, drafting) for a query. Returns a run ID immediately.",
	}, s.submitQuery)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "check_run",
		Description: "Check the per-stage status and progress of one run, or summarize all runs",
	}, s.checkRun)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_response",
		Description: "Get the aggregated legal response of a run, optionally waiting for it to finish",
	}, s.getResponse)

	return s
}

// MCP returns the underlying protocol server.
func (s *Server) MCP() *mcp.Server {
	return s.mcp
}

// Run serves over stdin/stdout until ctx is cancelled or the client
// disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) listTools(ctx context.Context, req *mcp.CallToolRequest, args ListToolsArgs) (*mcp.CallToolResult, ListToolsOutput, error) {
	return nil, ListToolsOutput{Tools: s.registry.Describe()}, nil
}

func (s *Server) invokeTool(ctx context.Context, req *mcp.CallToolRequest, args InvokeToolArgs) (*mcp.CallToolResult, ToolResultOutput, error) {
	c, err := s.registry.Resolve(args.Name)
	if err != nil {
		return nil, ToolResultOutput{}, err
	}
	in := tool.Input(args.Input)
	if in == nil {
		in = tool.Input{}
	}
	res := c.Invoke(ctx, in)
	s.logger.Debug("tool invoked over MCP",
		zap.String("tool", args.Name),
		zap.String("status", string(res.Status)))
	return nil, toolResultOutput(res), nil
}

func (s *Server) submitQuery(ctx context.Context, req *mcp.CallToolRequest, args SubmitQueryArgs) (*mcp.CallToolResult, SubmitQueryOutput, error) {
	run, err := s.store.Submit(ctx, workflow.Query{Text: args.Query, CategoryHint: args.Category})
	if err != nil {
		return nil, SubmitQueryOutput{}, err
	}
	snap := run.Snapshot()
	return nil, SubmitQueryOutput{
		RunID:      run.ID(),
		State:      string(snap.State),
		StatusText: snap.StatusText,
	}, nil
}

func (s *Server) checkRun(ctx context.Context, req *mcp.CallToolRequest, args CheckRunArgs) (*mcp.CallToolResult, CheckRunOutput, error) {
	if args.RunID == "" {
		summary, runs := s.store.Statuses()
		return nil, CheckRunOutput{Summary: summary, Runs: runs}, nil
	}

	run, ok := s.store.Get(args.RunID)
	if !ok {
		return nil, CheckRunOutput{}, fmt.Errorf("run not found: %s", args.RunID)
	}
	st := runstore.Status(run, time.Now())
	out := CheckRunOutput{
		Summary: runstore.Summarize([]runstore.RunStatus{st}),
		Runs:    []runstore.RunStatus{st},
		Tasks:   taskViews(run.Snapshot()),
	}
	return nil, out, nil
}

func (s *Server) getResponse(ctx context.Context, req *mcp.CallToolRequest, args GetResponseArgs) (*mcp.CallToolResult, GetResponseOutput, error) {
	run, ok := s.store.Get(args.RunID)
	if !ok {
		return nil, GetResponseOutput{}, fmt.Errorf("run not found: %s", args.RunID)
	}

	if args.WaitSeconds > 0 {
		wait := min(time.Duration(args.WaitSeconds)*time.Second, maxWait)
		waitCtx, cancel := context.WithTimeout(ctx, wait)
		_, err := run.Wait(waitCtx)
		cancel()
		if err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return nil, GetResponseOutput{}, err
		}
	}

	out := GetResponseOutput{
		RunID: run.ID(),
		State: string(run.Snapshot().State),
	}
	resp, err := run.Response()
	if err != nil {
		return nil, out, nil
	}
	out.Done = true
	out.Response = &resp
	for _, sr := range run.Results() {
		out.Stages = append(out.Stages, StageOutput{
			Stage:  string(sr.Stage),
			Result: toolResultOutput(sr.Result),
		})
	}
	return nil, out, nil
}

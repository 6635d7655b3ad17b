package mcpserver

import (
	"context"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pablasso/lexa/internal/runstore"
	"github.com/pablasso/lexa/internal/testutil"
	"github.com/pablasso/lexa/internal/tool"
	"github.com/pablasso/lexa/internal/workflow"
)

func newTestServer(t *testing.T, drafting tool.Capability) (*Server, *tool.Registry) {
	t.Helper()
	reg := tool.NewRegistry()
	reg.MustRegister("case_analysis", testutil.Succeed(workflow.CaseAnalysis{Summary: "Wallet theft", CaseType: "property_crime"}))
	reg.MustRegister("ipc_search", testutil.Succeed([]workflow.StatuteHit{{Section: "379", Title: "Punishment for theft"}}))
	reg.MustRegister("precedent_search", testutil.Fail("index offline"))
	reg.MustRegister("document_drafting", drafting)
	reg.Freeze()

	o, err := workflow.New(reg)
	require.NoError(t, err)
	return New(reg, runstore.New(o), "test", nil), reg
}

func TestListTools(t *testing.T) {
	s, _ := newTestServer(t, testutil.Succeed(workflow.Draft{Document: "NOTICE"}))

	_, out, err := s.listTools(context.Background(), nil, ListToolsArgs{})
	require.NoError(t, err)
	require.Len(t, out.Tools, 4)
	assert.Equal(t, "case_analysis", out.Tools[0].Name)
}

func TestInvokeTool(t *testing.T) {
	s, _ := newTestServer(t, testutil.Succeed(workflow.Draft{Document: "NOTICE"}))

	_, out, err := s.invokeTool(context.Background(), nil, InvokeToolArgs{Name: "precedent_search"})
	require.NoError(t, err)
	assert.Equal(t, "error", out.Status)
	assert.Equal(t, "precedent_search", out.Tool)
	assert.Equal(t, "index offline", out.Error)

	_, _, err = s.invokeTool(context.Background(), nil, InvokeToolArgs{Name: "fortune_teller"})
	var unknown *tool.UnknownToolError
	assert.ErrorAs(t, err, &unknown)
}

func TestSubmitAndGetResponse(t *testing.T) {
	s, _ := newTestServer(t, testutil.Succeed(workflow.Draft{Document: "NOTICE"}))
	ctx := context.Background()

	_, sub, err := s.submitQuery(ctx, nil, SubmitQueryArgs{Query: "A man stole my wallet"})
	require.NoError(t, err)
	require.NotEmpty(t, sub.RunID)

	_, out, err := s.getResponse(ctx, nil, GetResponseArgs{RunID: sub.RunID, WaitSeconds: 5})
	require.NoError(t, err)
	require.True(t, out.Done)
	require.NotNil(t, out.Response)
	assert.Equal(t, "failed_partial", out.State)
	assert.Equal(t, "NOTICE", out.Response.Document)
	assert.Empty(t, out.Response.Precedents)
	require.Len(t, out.Stages, 4)
	assert.Equal(t, "error", out.Stages[2].Result.Status)

	_, check, err := s.checkRun(ctx, nil, CheckRunArgs{RunID: sub.RunID})
	require.NoError(t, err)
	assert.Equal(t, 1, check.Summary.FailedPartial)
	require.Len(t, check.Tasks, 4)
	assert.Equal(t, "failed", check.Tasks[2].Status)
	assert.Equal(t, "index offline", check.Tasks[2].Error)
}

func TestSubmitEmptyQuery(t *testing.T) {
	s, _ := newTestServer(t, testutil.Succeed(workflow.Draft{Document: "NOTICE"}))

	_, _, err := s.submitQuery(context.Background(), nil, SubmitQueryArgs{Query: "  "})
	assert.ErrorIs(t, err, workflow.ErrEmptyQuery)
}

func TestGetResponseInProgress(t *testing.T) {
	release := make(chan struct{})
	gate, entered := testutil.Gate(workflow.Draft{Document: "NOTICE"}, release)
	t.Cleanup(func() { close(release) })
	s, _ := newTestServer(t, gate)
	ctx := context.Background()

	_, sub, err := s.submitQuery(ctx, nil, SubmitQueryArgs{Query: "Someone broke into my house"})
	require.NoError(t, err)
	select {
	case <-entered:
	case <-time.After(5 * time.Second):
		t.Fatal("drafting never started")
	}

	_, out, err := s.getResponse(ctx, nil, GetResponseArgs{RunID: sub.RunID})
	require.NoError(t, err)
	assert.False(t, out.Done)
	assert.Nil(t, out.Response)
	assert.Equal(t, "running", out.State)

	_, check, err := s.checkRun(ctx, nil, CheckRunArgs{})
	require.NoError(t, err)
	assert.Equal(t, 1, check.Summary.Running)
	assert.Empty(t, check.Tasks)
}

func TestUnknownRun(t *testing.T) {
	s, _ := newTestServer(t, testutil.Succeed(workflow.Draft{Document: "NOTICE"}))

	_, _, err := s.checkRun(context.Background(), nil, CheckRunArgs{RunID: "nope"})
	assert.ErrorContains(t, err, "run not found")
	_, _, err = s.getResponse(context.Background(), nil, GetResponseArgs{RunID: "nope"})
	assert.ErrorContains(t, err, "run not found")
}

func TestOverProtocol(t *testing.T) {
	s, _ := newTestServer(t, testutil.Succeed(workflow.Draft{Document: "NOTICE"}))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	ss, err := s.MCP().Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	defer ss.Close()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "test"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer cs.Close()

	res, err := cs.CallTool(ctx, &mcp.CallToolParams{
		Name:      "invoke_tool",
		Arguments: map[string]any{"name": "ipc_search", "input": map[string]any{"query": "theft"}},
	})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	structured, ok := res.StructuredContent.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "success", structured["status"])

	res, err = cs.CallTool(ctx, &mcp.CallToolParams{
		Name:      "invoke_tool",
		Arguments: map[string]any{"name": "fortune_teller"},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

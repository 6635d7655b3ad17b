package statusapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pablasso/lexa/internal/runstore"
	"github.com/pablasso/lexa/internal/testutil"
	"github.com/pablasso/lexa/internal/tool"
	"github.com/pablasso/lexa/internal/workflow"
)

type fixture struct {
	server  *httptest.Server
	store   *runstore.Store
	release chan struct{}
	entered <-chan struct{}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	release := make(chan struct{})
	gate, entered := testutil.Gate(workflow.Draft{Document: "NOTICE"}, release)

	reg := tool.NewRegistry()
	reg.MustRegister("case_analysis", testutil.Succeed(workflow.CaseAnalysis{Summary: "Wallet theft", CaseType: "property_crime"}))
	reg.MustRegister("ipc_search", testutil.Fail("index offline"))
	reg.MustRegister("precedent_search", testutil.Succeed([]workflow.PrecedentHit{{Title: "State v. Kumar"}}))
	reg.MustRegister("document_drafting", gate)
	reg.Freeze()

	o, err := workflow.New(reg)
	require.NoError(t, err)
	store := runstore.New(o)
	srv := httptest.NewServer(New(store, WithTools(reg), WithAccessLog(io.Discard)).Handler())

	f := &fixture{server: srv, store: store, release: release, entered: entered}
	t.Cleanup(func() {
		select {
		case <-release:
		default:
			close(release)
		}
		srv.Close()
	})
	return f
}

func (f *fixture) get(t *testing.T, path string, v any) int {
	t.Helper()
	resp, err := http.Get(f.server.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	if v != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp.StatusCode
}

func (f *fixture) submit(t *testing.T, body string) (int, map[string]any) {
	t.Helper()
	resp, err := http.Post(f.server.URL+"/runs", "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestRoot(t *testing.T) {
	f := newFixture(t)
	var body map[string]string
	assert.Equal(t, http.StatusOK, f.get(t, "/", &body))
	assert.Contains(t, body["message"], "status API")
}

func TestTools(t *testing.T) {
	f := newFixture(t)
	var body struct {
		Tools []tool.Descriptor `json:"tools"`
	}
	assert.Equal(t, http.StatusOK, f.get(t, "/tools", &body))
	require.Len(t, body.Tools, 4)
	assert.Equal(t, "case_analysis", body.Tools[0].Name)
}

func TestLatest_NoRuns(t *testing.T) {
	f := newFixture(t)

	var status map[string]any
	assert.Equal(t, http.StatusOK, f.get(t, "/status", &status))
	assert.Equal(t, "idle", status["state"])
	assert.Equal(t, "No run started", status["status_text"])

	var progress map[string]any
	f.get(t, "/progress", &progress)
	assert.Equal(t, 0.0, progress["progress"])
}

func TestSubmitAndPoll(t *testing.T) {
	f := newFixture(t)

	code, created := f.submit(t, `{"query":"A man stole my wallet"}`)
	require.Equal(t, http.StatusAccepted, code)
	id, _ := created["id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, "/runs/"+id+"/status", created["status_url"])

	<-f.entered

	var status struct {
		RunID   string `json:"run_id"`
		State   string `json:"state"`
		Current string `json:"current_task"`
		Failed  int    `json:"failed_tasks"`
		Tasks   []struct {
			Name   string `json:"name"`
			Status string `json:"status"`
			Error  string `json:"error"`
		} `json:"tasks"`
	}
	assert.Equal(t, http.StatusOK, f.get(t, "/runs/"+id+"/status", &status))
	assert.Equal(t, id, status.RunID)
	assert.Equal(t, "running", status.State)
	assert.Equal(t, "drafting", status.Current)
	assert.Equal(t, 1, status.Failed)
	require.Len(t, status.Tasks, 4)
	assert.Equal(t, "failed", status.Tasks[1].Status)
	assert.Equal(t, "index offline", status.Tasks[1].Error)

	var pending map[string]any
	assert.Equal(t, http.StatusAccepted, f.get(t, "/runs/"+id+"/response", &pending))
	assert.Equal(t, "running", pending["state"])

	var progress map[string]any
	f.get(t, "/progress", &progress)
	assert.InDelta(t, 62.5, progress["progress"], 0.001)
	assert.Equal(t, "🔄 Drafting formal legal document", progress["status_text"])

	close(f.release)
	run, ok := f.store.Get(id)
	require.True(t, ok)
	select {
	case <-run.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("run did not finish")
	}

	var done struct {
		State    string                 `json:"state"`
		Response workflow.LegalResponse `json:"response"`
	}
	assert.Equal(t, http.StatusOK, f.get(t, "/runs/"+id+"/response", &done))
	assert.Equal(t, "failed_partial", done.State)
	assert.Equal(t, "NOTICE", done.Response.Document)
	assert.Empty(t, done.Response.Statutes)
	assert.Equal(t, []workflow.Stage{workflow.StageStatuteSearch}, done.Response.FailedStages)

	var tasks struct {
		Tasks []map[string]any `json:"tasks"`
	}
	f.get(t, "/runs/"+id+"/tasks", &tasks)
	assert.Len(t, tasks.Tasks, 4)

	var list struct {
		Summary runstore.Summary     `json:"summary"`
		Runs    []runstore.RunStatus `json:"runs"`
	}
	f.get(t, "/runs", &list)
	assert.Equal(t, runstore.Summary{Total: 1, FailedPartial: 1}, list.Summary)
	require.Len(t, list.Runs, 1)
	assert.Equal(t, "A man stole my wallet", list.Runs[0].Query)
}

func TestSubmit_BadRequests(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"query":`},
		{"empty query", `{"query":"   "}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := f.submit(t, tt.body)
			assert.Equal(t, http.StatusBadRequest, code)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestUnknownRun(t *testing.T) {
	f := newFixture(t)
	var body map[string]string
	assert.Equal(t, http.StatusNotFound, f.get(t, "/runs/nope/status", &body))
	assert.Contains(t, body["error"], "nope")
}

// Package statusapi serves run status over HTTP so browser or script
// presenters can poll progress while a run executes.
package statusapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog"
	"github.com/rs/zerolog"
	"go.uber.org/zap"

	"github.com/pablasso/lexa/internal/runstore"
	"github.com/pablasso/lexa/internal/tool"
	"github.com/pablasso/lexa/internal/tracker"
	"github.com/pablasso/lexa/internal/workflow"
)

const serviceName = "lexa"

// ToolLister describes the registered tools. *tool.Registry satisfies it.
type ToolLister interface {
	Describe() []tool.Descriptor
}

// Server exposes a run store over HTTP.
type Server struct {
	store  *runstore.Store
	tools  ToolLister
	access zerolog.Logger
	logger *zap.Logger
	router chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithTools enables GET /tools.
func WithTools(t ToolLister) Option {
	return func(s *Server) { s.tools = t }
}

// WithAccessLog sends request logs to w instead of stdout.
func WithAccessLog(w io.Writer) Option {
	return func(s *Server) { s.access = s.access.Output(w) }
}

// WithLogger sets the application logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a server over store.
func New(store *runstore.Store, opts ...Option) *Server {
	s := &Server{
		store: store,
		access: httplog.NewLogger(serviceName, httplog.Options{
			JSON:    true,
			Concise: true,
		}),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(httplog.RequestLogger(s.access))
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleRoot)
	r.Get("/tools", s.handleTools)

	// Latest run, for presenters that track one query at a time.
	r.Get("/status", s.latest(s.writeStatus))
	r.Get("/progress", s.latest(s.writeProgress))
	r.Get("/tasks", s.latest(s.writeTasks))

	r.Route("/runs", func(r chi.Router) {
		r.Post("/", s.handleSubmit)
		r.Get("/", s.handleList)
		r.Route("/{runID}", func(r chi.Router) {
			r.Get("/status", s.byID(s.writeStatus))
			r.Get("/progress", s.byID(s.writeProgress))
			r.Get("/tasks", s.byID(s.writeTasks))
			r.Get("/response", s.byID(s.writeResponse))
		})
	})
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("status API listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("status API shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

type runWriter func(w http.ResponseWriter, r *http.Request, run *workflow.Run)

func (s *Server) byID(next runWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "runID")
		run, ok := s.store.Get(id)
		if !ok {
			writeError(w, http.StatusNotFound, "run not found: "+id)
			return
		}
		next(w, r, run)
	}
}

// latest serves the most recent run, or an idle snapshot when there is
// none.
func (s *Server) latest(next runWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, _ := s.store.Latest()
		next(w, r, run)
	}
}

func snapshotOf(run *workflow.Run) tracker.Snapshot {
	if run == nil {
		return tracker.New().Snapshot()
	}
	return run.Snapshot()
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "lexa legal assistant status API"})
}

func (s *Server) handleTools(w http.ResponseWriter, r *http.Request) {
	if s.tools == nil {
		writeJSON(w, http.StatusOK, map[string]any{"tools": []tool.Descriptor{}})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tools": s.tools.Describe()})
}

type submitRequest struct {
	Query    string `json:"query"`
	Category string `json:"category,omitempty"`
}

type submitResponse struct {
	ID        string           `json:"id"`
	State     tracker.RunState `json:"state"`
	StatusURL string           `json:"status_url"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	// The run must outlive this request.
	run, err := s.store.Submit(context.WithoutCancel(r.Context()), workflow.Query{Text: req.Query, CategoryHint: req.Category})
	if err != nil {
		if errors.Is(err, workflow.ErrEmptyQuery) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("submit failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	entry := httplog.LogEntry(r.Context())
	entry.Info().Str("run_id", run.ID()).Msg("run submitted")

	w.Header().Set("Location", "/runs/"+run.ID()+"/status")
	writeJSON(w, http.StatusAccepted, submitResponse{
		ID:        run.ID(),
		State:     run.Snapshot().State,
		StatusURL: "/runs/" + run.ID() + "/status",
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	summary, runs := s.store.Statuses()
	writeJSON(w, http.StatusOK, map[string]any{
		"summary": summary,
		"runs":    runs,
	})
}

type statusResponse struct {
	RunID string `json:"run_id,omitempty"`
	tracker.Snapshot
}

func (s *Server) writeStatus(w http.ResponseWriter, r *http.Request, run *workflow.Run) {
	resp := statusResponse{Snapshot: snapshotOf(run)}
	if run != nil {
		resp.RunID = run.ID()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) writeProgress(w http.ResponseWriter, r *http.Request, run *workflow.Run) {
	snap := snapshotOf(run)
	writeJSON(w, http.StatusOK, map[string]any{
		"progress":    snap.Progress,
		"status_text": snap.StatusText,
	})
}

func (s *Server) writeTasks(w http.ResponseWriter, r *http.Request, run *workflow.Run) {
	writeJSON(w, http.StatusOK, map[string]any{"tasks": snapshotOf(run).Tasks})
}

func (s *Server) writeResponse(w http.ResponseWriter, r *http.Request, run *workflow.Run) {
	resp, err := run.Response()
	if err != nil {
		writeJSON(w, http.StatusAccepted, map[string]any{
			"id":    run.ID(),
			"state": run.Snapshot().State,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":       run.ID(),
		"state":    run.Snapshot().State,
		"response": resp,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

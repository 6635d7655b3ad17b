package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pablasso/lexa/internal/tool"
	"github.com/pablasso/lexa/internal/tracker"
)

var (
	// ErrEmptyQuery is returned by Submit when the query text is blank.
	ErrEmptyQuery = errors.New("query text is required")
	// ErrRunInProgress is returned by Run.Response before the run finishes.
	ErrRunInProgress = errors.New("run is still in progress")
)

// Resolver looks up capabilities by tool name. *tool.Registry satisfies it.
type Resolver interface {
	Resolve(name string) (tool.Capability, error)
}

// Orchestrator runs queries through the stage pipeline. It holds no
// per-run state and may serve any number of concurrent runs.
type Orchestrator struct {
	resolver     Resolver
	bindings     []Binding
	stageTimeout time.Duration
	documentType string
	logger       *zap.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithStageTimeout bounds each tool invocation. Zero means no bound.
func WithStageTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.stageTimeout = d
		}
	}
}

// WithLogger sets the logger for run and stage events.
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithBindings overrides the tool bound to individual stages. Stages not
// listed keep their default tool.
func WithBindings(tools map[Stage]string) Option {
	return func(o *Orchestrator) {
		for i := range o.bindings {
			if name, ok := tools[o.bindings[i].Stage]; ok && name != "" {
				o.bindings[i].Tool = name
			}
		}
	}
}

// WithDocumentType selects the document the drafting stage should produce.
func WithDocumentType(docType string) Option {
	return func(o *Orchestrator) {
		o.documentType = docType
	}
}

// New creates an orchestrator. Every stage binding is resolved up front so
// a missing tool is reported at startup as *tool.UnknownToolError.
func New(resolver Resolver, opts ...Option) (*Orchestrator, error) {
	if resolver == nil {
		return nil, errors.New("tool resolver is required")
	}
	o := &Orchestrator{
		resolver: resolver,
		bindings: DefaultBindings(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	for _, b := range o.bindings {
		if _, err := resolver.Resolve(b.Tool); err != nil {
			return nil, fmt.Errorf("stage %s: %w", b.Stage, err)
		}
	}
	return o, nil
}

// Bindings returns the stage bindings in pipeline order.
func (o *Orchestrator) Bindings() []Binding {
	out := make([]Binding, len(o.bindings))
	copy(out, o.bindings)
	return out
}

// Submit starts a run for q and returns its handle immediately. Observers
// are subscribed before the first transition, so they see every event.
//
// The run is detached from ctx cancellation: a caller that stops waiting
// does not stop the run, which always finishes all stages.
func (o *Orchestrator) Submit(ctx context.Context, q Query, observers ...tracker.Observer) (*Run, error) {
	if q.blank() {
		return nil, ErrEmptyQuery
	}

	id := uuid.NewString()
	run := newRun(id, q, tracker.New(tracker.WithRunID(id), tracker.WithLogger(o.logger)))
	for _, obs := range observers {
		run.tracker.Subscribe(obs)
	}
	if err := run.tracker.StartRun(taskSpecs(o.bindings)...); err != nil {
		return nil, fmt.Errorf("failed to start run: %w", err)
	}

	o.logger.Info("run submitted",
		zap.String("run_id", run.id),
		zap.String("category", q.CategoryHint))

	go o.execute(context.WithoutCancel(ctx), run)
	return run, nil
}

// Execute submits q and waits for its response.
func (o *Orchestrator) Execute(ctx context.Context, q Query, observers ...tracker.Observer) (*Run, LegalResponse, error) {
	run, err := o.Submit(ctx, q, observers...)
	if err != nil {
		return nil, LegalResponse{}, err
	}
	resp, err := run.Wait(ctx)
	return run, resp, err
}

// accumulated is the context handed from stage to stage.
type accumulated struct {
	query      Query
	analysis   CaseAnalysis
	statutes   []StatuteHit
	precedents []PrecedentHit
}

func (o *Orchestrator) execute(ctx context.Context, run *Run) {
	acc := &accumulated{query: run.query}
	log := o.logger.With(zap.String("run_id", run.id))

	for _, b := range o.bindings {
		sr := o.runStage(ctx, run, b, acc, log)
		run.appendResult(sr)
	}

	resp := Aggregate(run.Results())
	snap := run.tracker.Snapshot()
	log.Info("run finished",
		zap.String("state", string(snap.State)),
		zap.Int("failed_stages", snap.Failed))
	run.finish(resp)
}

func (o *Orchestrator) runStage(ctx context.Context, run *Run, b Binding, acc *accumulated, log *zap.Logger) StageResult {
	log = log.With(zap.String("stage", string(b.Stage)), zap.String("tool", b.Tool))
	name := string(b.Stage)

	capability, err := o.resolver.Resolve(b.Tool)
	if err != nil {
		// The task is still pending here; record the failure against it
		// so the run can finish.
		log.Error("tool no longer resolvable", zap.Error(err))
		res := tool.Failure(b.Tool, err)
		o.logRejected(log, run.tracker.Begin(name))
		o.logRejected(log, run.tracker.Fail(name, res.Error))
		applyDefault(b.Stage, acc)
		return StageResult{Stage: b.Stage, Tool: b.Tool, Result: res}
	}

	o.logRejected(log, run.tracker.Begin(name))
	start := time.Now()
	res := o.invoke(ctx, capability, b, acc)

	if res.OK() {
		if err := merge(b.Stage, res, acc); err != nil {
			res = tool.Failure(b.Tool, fmt.Errorf("unexpected %s payload: %w", b.Tool, err))
		}
	}

	if res.OK() {
		o.logRejected(log, run.tracker.Succeed(name))
		log.Info("stage completed", zap.Duration("duration", time.Since(start)))
	} else {
		o.logRejected(log, run.tracker.Fail(name, res.Error))
		applyDefault(b.Stage, acc)
		log.Warn("stage failed, continuing with defaults",
			zap.Duration("duration", time.Since(start)),
			zap.String("error", res.Error))
	}
	return StageResult{Stage: b.Stage, Tool: b.Tool, Result: res}
}

func (o *Orchestrator) invoke(ctx context.Context, c tool.Capability, b Binding, acc *accumulated) tool.Result {
	in, err := stageInput(b.Stage, acc, o.documentType)
	if err != nil {
		return tool.Failure(b.Tool, err)
	}

	if o.stageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.stageTimeout)
		defer cancel()
	}

	// Registry capabilities are already guarded; this covers resolvers
	// that hand out raw ones.
	res := tool.Guard(b.Tool, c).Invoke(ctx, in)
	if !res.OK() && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		res = tool.Failure(b.Tool, fmt.Errorf("%s timed out after %s: %s", b.Tool, o.stageTimeout, res.Error))
	}
	return res
}

// logRejected logs a rejected tracker transition. It means the pipeline
// drove the tracker incorrectly; the run still produces a response.
func (o *Orchestrator) logRejected(log *zap.Logger, err error) {
	if err != nil {
		log.Error("tracker rejected transition", zap.Error(err))
	}
}

func stageInput(stage Stage, acc *accumulated, documentType string) (tool.Input, error) {
	var v any
	switch stage {
	case StageIntake:
		v = IntakeInput{Query: acc.query.Text, Category: acc.query.CategoryHint}
	case StageStatuteSearch:
		v = SearchInput{
			Query:    acc.query.Text,
			CaseType: acc.analysis.CaseType,
			Keywords: acc.analysis.Keywords,
		}
	case StagePrecedentSearch:
		sections := make([]string, 0, len(acc.statutes))
		for _, s := range acc.statutes {
			sections = append(sections, s.Section)
		}
		v = SearchInput{
			Query:    acc.query.Text,
			CaseType: acc.analysis.CaseType,
			Keywords: acc.analysis.Keywords,
			Sections: sections,
		}
	case StageDrafting:
		v = DraftingInput{
			Query:        acc.query.Text,
			CaseSummary:  acc.analysis.Summary,
			CaseType:     acc.analysis.CaseType,
			Statutes:     acc.statutes,
			Precedents:   acc.precedents,
			DocumentType: documentType,
		}
	default:
		return nil, fmt.Errorf("unknown stage %q", stage)
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s input: %w", stage, err)
	}
	in := tool.Input{}
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("failed to encode %s input: %w", stage, err)
	}
	return in, nil
}

func merge(stage Stage, res tool.Result, acc *accumulated) error {
	switch stage {
	case StageIntake:
		a, err := decodeAnalysis(res)
		if err != nil {
			return err
		}
		acc.analysis = a
	case StageStatuteSearch:
		hits, err := decodeStatutes(res)
		if err != nil {
			return err
		}
		acc.statutes = hits
	case StagePrecedentSearch:
		hits, err := decodePrecedents(res)
		if err != nil {
			return err
		}
		acc.precedents = hits
	case StageDrafting:
		if _, err := decodeDraft(res); err != nil {
			return err
		}
	}
	return nil
}

// applyDefault fills in the context a failed stage would have produced.
func applyDefault(stage Stage, acc *accumulated) {
	switch stage {
	case StageIntake:
		acc.analysis = CaseAnalysis{Summary: acc.query.Text, CaseType: CaseGeneral}
	case StageStatuteSearch:
		acc.statutes = []StatuteHit{}
	case StagePrecedentSearch:
		acc.precedents = []PrecedentHit{}
	}
}

// Package legal implements the legal research capabilities behind the
// pipeline stages: case analysis, statute and precedent search, document
// drafting and general advice.
package legal

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pablasso/lexa/internal/llm"
	"github.com/pablasso/lexa/internal/tool"
)

// Registered tool names.
const (
	ToolCaseAnalysis     = "case_analysis"
	ToolIPCSearch        = "ipc_search"
	ToolPrecedentSearch  = "precedent_search"
	ToolDocumentDrafting = "document_drafting"
	ToolLegalAdvice      = "legal_advice"
)

type settings struct {
	generator   llm.Generator
	logger      *zap.Logger
	now         func() time.Time
	searchLimit int
}

// Option configures the registered capabilities.
type Option func(*settings)

// WithGenerator lets the drafter polish documents with an LLM.
func WithGenerator(g llm.Generator) Option {
	return func(s *settings) { s.generator = g }
}

// WithLogger sets the logger used by the capabilities.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock replaces time.Now for document dates.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSearchLimit caps search results.
func WithSearchLimit(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.searchLimit = n
		}
	}
}

// RegisterAll registers every legal capability on reg.
func RegisterAll(reg *tool.Registry, opts ...Option) error {
	s := settings{
		logger:      zap.NewNop(),
		now:         time.Now,
		searchLimit: DefaultSearchLimit,
	}
	for _, opt := range opts {
		opt(&s)
	}

	corpus, err := LoadCorpus()
	if err != nil {
		return err
	}

	tools := []struct {
		name string
		c    tool.Capability
	}{
		{ToolCaseAnalysis, CaseAnalyzer{}},
		{ToolIPCSearch, &StatuteSearch{corpus: corpus, limit: s.searchLimit}},
		{ToolPrecedentSearch, &PrecedentSearch{corpus: corpus, limit: s.searchLimit}},
		{ToolDocumentDrafting, &Drafter{generator: s.generator, logger: s.logger, now: s.now}},
		{ToolLegalAdvice, Adviser{}},
	}
	for _, t := range tools {
		if err := reg.Register(t.name, t.c); err != nil {
			return fmt.Errorf("failed to register %s: %w", t.name, err)
		}
	}
	return nil
}

package legal

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"go.uber.org/zap"

	"github.com/pablasso/lexa/internal/llm"
	"github.com/pablasso/lexa/internal/tool"
	"github.com/pablasso/lexa/internal/workflow"
)

// Document types the drafter knows. Any other type uses the generic
// template.
const (
	DocumentLegalNotice = "legal_notice"
	DocumentComplaint   = "complaint"
)

const (
	maxStatutesInDraft   = 3
	maxPrecedentsInDraft = 2
	excerptLength        = 200
	subjectLength        = 50
	generatedByTemplate  = "template"
)

const refineSystemPrompt = `You are an assistant that polishes legal document drafts for Indian law.
Keep the structure, headings, placeholders in square brackets, section numbers and case names exactly as given.
Improve clarity and formal tone only. Reply with the final document text and nothing else.`

//go:embed templates/*.tmpl
var templateFS embed.FS

var draftTemplates = template.Must(template.New("drafts").Funcs(template.FuncMap{
	"inc":     func(i int) int { return i + 1 },
	"excerpt": excerpt,
}).ParseFS(templateFS, "templates/*.tmpl"))

type draftData struct {
	Date       string
	Subject    string
	Summary    string
	Statutes   []workflow.StatuteHit
	Precedents []workflow.PrecedentHit
}

// Drafter is the document drafting capability. With a generator it asks
// the model to polish the template draft and keeps the template when the
// model fails.
type Drafter struct {
	generator llm.Generator
	logger    *zap.Logger
	now       func() time.Time
}

// Description implements tool.Describer.
func (d *Drafter) Description() string {
	return "Draft legal documents based on case analysis"
}

// Parameters implements tool.Describer.
func (d *Drafter) Parameters() map[string]any {
	return objectSchema(map[string]any{
		"case_summary":  stringProp("Case summary"),
		"query":         stringProp("Original query, used for the subject line"),
		"statutes":      map[string]any{"type": "array", "description": "Relevant IPC sections"},
		"precedents":    map[string]any{"type": "array", "description": "Relevant legal precedents"},
		"document_type": stringProp("Type of document to draft: legal_notice, complaint or other"),
	}, "case_summary")
}

// Invoke drafts the document.
func (d *Drafter) Invoke(ctx context.Context, in tool.Input) tool.Result {
	var args workflow.DraftingInput
	if err := in.Decode(&args); err != nil {
		return tool.Failure(ToolDocumentDrafting, err)
	}
	summary := strings.TrimSpace(args.CaseSummary)
	if summary == "" {
		summary = strings.TrimSpace(args.Query)
	}
	if summary == "" {
		return tool.Failure(ToolDocumentDrafting, errors.New("case_summary is required"))
	}
	docType := args.DocumentType
	if docType == "" {
		docType = DocumentLegalNotice
	}

	now := d.now()
	subjectSource := args.Query
	if strings.TrimSpace(subjectSource) == "" {
		subjectSource = summary
	}
	data := draftData{
		Date:       now.Format("January 02, 2006"),
		Subject:    subject(subjectSource),
		Summary:    summary,
		Statutes:   firstN(args.Statutes, maxStatutesInDraft),
		Precedents: firstN(args.Precedents, maxPrecedentsInDraft),
	}

	var buf strings.Builder
	if err := draftTemplates.ExecuteTemplate(&buf, templateFor(docType), data); err != nil {
		return tool.Failure(ToolDocumentDrafting, fmt.Errorf("failed to render %s: %w", docType, err))
	}
	document := strings.TrimSpace(buf.String())
	generatedBy := generatedByTemplate

	if d.generator != nil {
		refined, err := d.generator.Generate(ctx, refineSystemPrompt, document)
		switch {
		case err != nil:
			d.logger.Warn("document refinement failed, keeping template draft",
				zap.String("generator", d.generator.Name()),
				zap.Error(err))
		case strings.TrimSpace(refined) == "":
			d.logger.Warn("document refinement returned an empty draft, keeping template draft",
				zap.String("generator", d.generator.Name()))
		default:
			document = strings.TrimSpace(refined)
			generatedBy = d.generator.Name()
		}
	}

	return tool.Success(ToolDocumentDrafting, workflow.Draft{
		Document:     document,
		DocumentType: docType,
		WordCount:    len(strings.Fields(document)),
		GeneratedBy:  generatedBy,
		CreatedAt:    now,
	})
}

func templateFor(docType string) string {
	switch docType {
	case DocumentLegalNotice, DocumentComplaint:
		return docType + ".tmpl"
	default:
		return "generic.tmpl"
	}
}

// subject is the first sentence of text, cut to subjectLength runes.
func subject(text string) string {
	first := strings.TrimSpace(strings.SplitN(text, ".", 2)[0])
	first = strings.Join(strings.Fields(first), " ")
	r := []rune(first)
	if len(r) > subjectLength {
		return string(r[:subjectLength]) + "..."
	}
	return first
}

func excerpt(s string) string {
	r := []rune(s)
	if len(r) > excerptLength {
		return string(r[:excerptLength]) + "..."
	}
	return s
}

func firstN[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}

package workflow

import (
	"strings"
	"time"
)

// Case types produced by intake. Anything else is treated as CaseGeneral.
const (
	CaseGeneral         = "general"
	CasePropertyCrime   = "property_crime"
	CaseViolentCrime    = "violent_crime"
	CaseFraud           = "fraud"
	CaseContractDispute = "contract_dispute"
	CasePropertyDispute = "property_dispute"
)

// Query is what a caller submits. It is not modified after Submit.
type Query struct {
	Text         string `json:"query"`
	CategoryHint string `json:"category,omitempty"`
}

func (q Query) blank() bool {
	return strings.TrimSpace(q.Text) == ""
}

// CaseAnalysis is the intake payload.
type CaseAnalysis struct {
	Summary    string   `json:"summary"`
	CaseType   string   `json:"case_type"`
	Priority   string   `json:"priority,omitempty"`
	Keywords   []string `json:"keywords,omitempty"`
	Confidence float64  `json:"confidence,omitempty"`
}

// StatuteHit is one statutory section returned by statute search.
type StatuteHit struct {
	Section string  `json:"section"`
	Title   string  `json:"title"`
	Content string  `json:"content"`
	Score   float64 `json:"relevance_score"`
}

// PrecedentHit is one precedent returned by precedent search.
type PrecedentHit struct {
	Title   string  `json:"title"`
	Court   string  `json:"court"`
	Year    int     `json:"year"`
	Summary string  `json:"summary"`
	Score   float64 `json:"relevance_score"`
}

// Draft is the drafting payload.
type Draft struct {
	Document     string    `json:"document"`
	DocumentType string    `json:"document_type"`
	WordCount    int       `json:"word_count"`
	GeneratedBy  string    `json:"generated_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// IntakeInput is passed to the intake tool.
type IntakeInput struct {
	Query    string `json:"query"`
	Category string `json:"category,omitempty"`
}

// SearchInput is passed to the statute and precedent search tools.
type SearchInput struct {
	Query    string   `json:"query"`
	CaseType string   `json:"case_type"`
	Keywords []string `json:"keywords,omitempty"`
	Sections []string `json:"sections,omitempty"`
	Limit    int      `json:"limit,omitempty"`
}

// DraftingInput is passed to the drafting tool.
type DraftingInput struct {
	Query        string         `json:"query"`
	CaseSummary  string         `json:"case_summary"`
	CaseType     string         `json:"case_type"`
	Statutes     []StatuteHit   `json:"statutes"`
	Precedents   []PrecedentHit `json:"precedents"`
	DocumentType string         `json:"document_type,omitempty"`
}

// LegalResponse is the aggregated answer to a query. Its shape does not
// depend on which stages failed: missing values take documented defaults.
type LegalResponse struct {
	CaseSummary  string         `json:"case_summary"`
	CaseType     string         `json:"case_type"`
	Statutes     []StatuteHit   `json:"relevant_sections"`
	Precedents   []PrecedentHit `json:"precedents"`
	Document     string         `json:"document"`
	FailedStages []Stage        `json:"failed_stages,omitempty"`
}

package legal

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pablasso/lexa/internal/tool"
	"github.com/pablasso/lexa/internal/workflow"
)

// Priorities assigned by the classifier.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
)

const analysisConfidence = 0.8

// caseRules are checked in order; the first rule with a matching word wins.
var caseRules = []struct {
	caseType string
	priority string
	words    []string
}{
	{workflow.CasePropertyCrime, PriorityHigh, []string{"theft", "steal", "stole", "robbery", "burglary"}},
	{workflow.CaseViolentCrime, PriorityHigh, []string{"assault", "threat", "violence", "attack"}},
	{workflow.CaseFraud, PriorityHigh, []string{"fraud", "cheating", "scam"}},
	{workflow.CaseContractDispute, PriorityMedium, []string{"contract", "agreement", "breach"}},
	{workflow.CasePropertyDispute, PriorityMedium, []string{"property", "land", "ownership"}},
}

// Classify returns the case type and priority for a description.
func Classify(text string) (caseType, priority string) {
	lower := strings.ToLower(text)
	for _, rule := range caseRules {
		for _, w := range rule.words {
			if strings.Contains(lower, w) {
				return rule.caseType, rule.priority
			}
		}
	}
	return workflow.CaseGeneral, PriorityMedium
}

// knownCaseType normalizes a category hint and reports whether it names a
// case type the classifier can produce.
func knownCaseType(hint string) (string, string, bool) {
	norm := strings.ToLower(strings.TrimSpace(hint))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	if norm == workflow.CaseGeneral {
		return norm, PriorityMedium, true
	}
	for _, rule := range caseRules {
		if rule.caseType == norm {
			return rule.caseType, rule.priority, true
		}
	}
	return "", "", false
}

// CaseAnalyzer is the intake capability.
type CaseAnalyzer struct{}

// Description implements tool.Describer.
func (CaseAnalyzer) Description() string {
	return "Analyze and categorize a legal case description"
}

// Parameters implements tool.Describer.
func (CaseAnalyzer) Parameters() map[string]any {
	return objectSchema(map[string]any{
		"query":    stringProp("The user's legal case description"),
		"category": stringProp("Optional case type hint, e.g. property_crime"),
	}, "query")
}

// Invoke classifies the query.
func (CaseAnalyzer) Invoke(ctx context.Context, in tool.Input) tool.Result {
	var args workflow.IntakeInput
	if err := in.Decode(&args); err != nil {
		return tool.Failure(ToolCaseAnalysis, err)
	}
	if args.Query == "" {
		args.Query = in.String("user_input")
	}
	query := strings.TrimSpace(args.Query)
	if query == "" {
		return tool.Failure(ToolCaseAnalysis, errors.New("query is required"))
	}

	caseType, priority := Classify(query)
	if ct, p, ok := knownCaseType(args.Category); ok {
		caseType, priority = ct, p
	}

	var keywords []string
	for _, w := range tokenize(query) {
		if len(w) > 3 {
			keywords = append(keywords, w)
		}
	}

	return tool.Success(ToolCaseAnalysis, workflow.CaseAnalysis{
		Summary:    caseSummary(query, caseType, priority),
		CaseType:   caseType,
		Priority:   priority,
		Keywords:   keywords,
		Confidence: analysisConfidence,
	})
}

func caseSummary(query, caseType, priority string) string {
	return fmt.Sprintf("Legal Issue Analysis\n\nDescription: %s\n\nCase Type: %s\nPriority: %s\n\nThis case requires examination of applicable laws and precedents.",
		query, titleWords(caseType), titleWords(priority))
}

// titleWords turns "property_crime" into "Property Crime".
func titleWords(s string) string {
	words := strings.Fields(strings.ReplaceAll(s, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

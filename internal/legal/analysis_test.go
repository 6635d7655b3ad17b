package legal

import (
	"context"
	"testing"

	"github.com/pablasso/lexa/internal/tool"
	"github.com/pablasso/lexa/internal/workflow"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		text         string
		wantType     string
		wantPriority string
	}{
		{"A man stole my wallet", workflow.CasePropertyCrime, PriorityHigh},
		{"There was a burglary at my shop", workflow.CasePropertyCrime, PriorityHigh},
		{"My neighbour made a THREAT to kill me", workflow.CaseViolentCrime, PriorityHigh},
		{"I lost money in an online scam", workflow.CaseFraud, PriorityHigh},
		{"The builder is in breach of our agreement", workflow.CaseContractDispute, PriorityMedium},
		{"Dispute over ownership of ancestral land", workflow.CasePropertyDispute, PriorityMedium},
		{"I need help with a divorce", workflow.CaseGeneral, PriorityMedium},
		// First matching rule wins.
		{"Theft of documents in breach of contract", workflow.CasePropertyCrime, PriorityHigh},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			gotType, gotPriority := Classify(tt.text)
			if gotType != tt.wantType || gotPriority != tt.wantPriority {
				t.Errorf("Classify(%q) = %s/%s, want %s/%s", tt.text, gotType, gotPriority, tt.wantType, tt.wantPriority)
			}
		})
	}
}

func TestCaseAnalyzer_Invoke(t *testing.T) {
	res := CaseAnalyzer{}.Invoke(context.Background(), tool.Input{"query": "A man stole my wallet!"})
	if !res.OK() {
		t.Fatalf("expected success, got error %q", res.Error)
	}
	a, ok := res.Payload.(workflow.CaseAnalysis)
	if !ok {
		t.Fatalf("unexpected payload type %T", res.Payload)
	}

	if a.CaseType != workflow.CasePropertyCrime {
		t.Errorf("CaseType = %s, want property_crime", a.CaseType)
	}
	if a.Priority != PriorityHigh {
		t.Errorf("Priority = %s, want high", a.Priority)
	}
	if a.Confidence != 0.8 {
		t.Errorf("Confidence = %v, want 0.8", a.Confidence)
	}
	wantKeywords := []string{"stole", "wallet"}
	if len(a.Keywords) != len(wantKeywords) {
		t.Fatalf("Keywords = %v, want %v", a.Keywords, wantKeywords)
	}
	for i := range wantKeywords {
		if a.Keywords[i] != wantKeywords[i] {
			t.Errorf("Keywords[%d] = %s, want %s", i, a.Keywords[i], wantKeywords[i])
		}
	}
	want := "Legal Issue Analysis\n\nDescription: A man stole my wallet!\n\nCase Type: Property Crime\nPriority: High\n\nThis case requires examination of applicable laws and precedents."
	if a.Summary != want {
		t.Errorf("Summary = %q, want %q", a.Summary, want)
	}
}

func TestCaseAnalyzer_CategoryHint(t *testing.T) {
	tests := []struct {
		name     string
		category string
		wantType string
	}{
		{"known hint overrides", "Contract Dispute", workflow.CaseContractDispute},
		{"hyphenated hint", "violent-crime", workflow.CaseViolentCrime},
		{"general hint", "general", workflow.CaseGeneral},
		{"unknown hint ignored", "family", workflow.CasePropertyCrime},
		{"empty hint ignored", "", workflow.CasePropertyCrime},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := CaseAnalyzer{}.Invoke(context.Background(), tool.Input{
				"query":    "Someone stole my bicycle",
				"category": tt.category,
			})
			a, err := tool.DecodePayload[workflow.CaseAnalysis](res.Payload)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if a.CaseType != tt.wantType {
				t.Errorf("CaseType = %s, want %s", a.CaseType, tt.wantType)
			}
		})
	}
}

func TestCaseAnalyzer_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   tool.Input
	}{
		{"missing query", tool.Input{}},
		{"blank query", tool.Input{"query": "   "}},
		{"wrong type", tool.Input{"query": 12}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := CaseAnalyzer{}.Invoke(context.Background(), tt.in)
			if res.OK() {
				t.Fatal("expected error result")
			}
			if res.Error == "" {
				t.Error("error result must carry a message")
			}
		})
	}
}

func TestCaseAnalyzer_UserInputAlias(t *testing.T) {
	res := CaseAnalyzer{}.Invoke(context.Background(), tool.Input{"user_input": "I was cheated in a land deal"})
	if !res.OK() {
		t.Fatalf("expected success, got %q", res.Error)
	}
}

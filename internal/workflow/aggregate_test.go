package workflow

import (
	"errors"
	"testing"

	"github.com/pablasso/lexa/internal/tool"
)

type panicPayload struct{}

func (panicPayload) MarshalJSON() ([]byte, error) {
	panic("broken marshaller")
}

func TestAggregate_Defaults(t *testing.T) {
	tests := []struct {
		name    string
		results []StageResult
	}{
		{"no results", nil},
		{"all errors", []StageResult{
			{Stage: StageIntake, Result: tool.Failure("case_analysis", errors.New("x"))},
			{Stage: StageStatuteSearch, Result: tool.Failure("ipc_search", errors.New("x"))},
			{Stage: StagePrecedentSearch, Result: tool.Failure("precedent_search", errors.New("x"))},
			{Stage: StageDrafting, Result: tool.Failure("document_drafting", errors.New("x"))},
		}},
		{"success with wrong shapes", []StageResult{
			{Stage: StageIntake, Result: tool.Success("case_analysis", 42)},
			{Stage: StageStatuteSearch, Result: tool.Success("ipc_search", map[string]any{"section": "379"})},
			{Stage: StagePrecedentSearch, Result: tool.Success("precedent_search", nil)},
			{Stage: StageDrafting, Result: tool.Success("document_drafting", Draft{Document: "  "})},
		}},
		{"panicking payloads", []StageResult{
			{Stage: StageIntake, Result: tool.Success("case_analysis", panicPayload{})},
			{Stage: StageDrafting, Result: tool.Success("document_drafting", panicPayload{})},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := Aggregate(tt.results)

			if resp.CaseSummary != DefaultCaseSummary {
				t.Errorf("CaseSummary = %q, want default", resp.CaseSummary)
			}
			if resp.CaseType != CaseGeneral {
				t.Errorf("CaseType = %q, want %q", resp.CaseType, CaseGeneral)
			}
			if resp.Statutes == nil || len(resp.Statutes) != 0 {
				t.Errorf("Statutes = %#v, want empty non-nil slice", resp.Statutes)
			}
			if resp.Precedents == nil || len(resp.Precedents) != 0 {
				t.Errorf("Precedents = %#v, want empty non-nil slice", resp.Precedents)
			}
			if resp.Document != DefaultDocument {
				t.Errorf("Document = %q, want default", resp.Document)
			}
		})
	}
}

func TestAggregate_DecodesJSONShapedPayloads(t *testing.T) {
	results := []StageResult{
		{Stage: StageIntake, Result: tool.Success("case_analysis", map[string]any{
			"summary":   "Wallet theft",
			"case_type": "property_crime",
		})},
		{Stage: StageStatuteSearch, Result: tool.Success("ipc_search", []any{
			map[string]any{"section": "379", "title": "Punishment for theft"},
		})},
		{Stage: StagePrecedentSearch, Result: tool.Success("precedent_search", &[]PrecedentHit{{Title: "State v. Kumar"}})},
		{Stage: StageDrafting, Result: tool.Success("document_drafting", &Draft{Document: "NOTICE"})},
	}

	resp := Aggregate(results)

	if resp.CaseSummary != "Wallet theft" || resp.CaseType != "property_crime" {
		t.Errorf("unexpected analysis fields: %+v", resp)
	}
	if len(resp.Statutes) != 1 || resp.Statutes[0].Section != "379" {
		t.Errorf("Statutes = %+v", resp.Statutes)
	}
	if len(resp.Precedents) != 1 || resp.Precedents[0].Title != "State v. Kumar" {
		t.Errorf("Precedents = %+v", resp.Precedents)
	}
	if resp.Document != "NOTICE" {
		t.Errorf("Document = %q", resp.Document)
	}
	if len(resp.FailedStages) != 0 {
		t.Errorf("FailedStages = %v, want none", resp.FailedStages)
	}
}

func TestAggregate_EmptyCaseTypeBecomesGeneral(t *testing.T) {
	resp := Aggregate([]StageResult{
		{Stage: StageIntake, Result: tool.Success("case_analysis", CaseAnalysis{Summary: "something"})},
	})
	if resp.CaseType != CaseGeneral {
		t.Errorf("CaseType = %q, want %q", resp.CaseType, CaseGeneral)
	}
}

func TestAggregate_RecordsFailedStages(t *testing.T) {
	resp := Aggregate([]StageResult{
		{Stage: StageIntake, Result: tool.Success("case_analysis", CaseAnalysis{Summary: "s", CaseType: "fraud"})},
		{Stage: StageStatuteSearch, Result: tool.Failure("ipc_search", errors.New("down"))},
		{Stage: StageDrafting, Result: tool.Failure("document_drafting", errors.New("down"))},
	})

	want := []Stage{StageStatuteSearch, StageDrafting}
	if len(resp.FailedStages) != len(want) {
		t.Fatalf("FailedStages = %v, want %v", resp.FailedStages, want)
	}
	for i := range want {
		if resp.FailedStages[i] != want[i] {
			t.Errorf("FailedStages[%d] = %s, want %s", i, resp.FailedStages[i], want[i])
		}
	}
}

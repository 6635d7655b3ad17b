// Package workflow drives a legal query through the fixed stage pipeline
// and folds the stage results into a single response.
package workflow

import "github.com/pablasso/lexa/internal/tracker"

// Stage is one step of the pipeline.
type Stage string

// Stage constants, in execution order.
const (
	StageIntake          Stage = "intake"
	StageStatuteSearch   Stage = "statute_search"
	StagePrecedentSearch Stage = "precedent_search"
	StageDrafting        Stage = "drafting"
)

// Stages returns the pipeline order.
func Stages() []Stage {
	return []Stage{StageIntake, StageStatuteSearch, StagePrecedentSearch, StageDrafting}
}

// Binding ties a stage to the registered tool that implements it.
type Binding struct {
	Stage Stage
	Tool  string
	Label string
	Icon  string
}

// DefaultBindings returns the stock stage bindings.
func DefaultBindings() []Binding {
	return []Binding{
		{Stage: StageIntake, Tool: "case_analysis", Label: "Analyzing your legal issue and extracting key information", Icon: "📋"},
		{Stage: StageStatuteSearch, Tool: "ipc_search", Label: "Finding relevant Indian Penal Code sections", Icon: "📚"},
		{Stage: StagePrecedentSearch, Tool: "precedent_search", Label: "Searching for relevant legal precedents", Icon: "⚖️"},
		{Stage: StageDrafting, Tool: "document_drafting", Label: "Drafting formal legal document", Icon: "📝"},
	}
}

func taskSpecs(bindings []Binding) []tracker.TaskSpec {
	specs := make([]tracker.TaskSpec, len(bindings))
	for i, b := range bindings {
		specs[i] = tracker.TaskSpec{Name: string(b.Stage), Label: b.Label, Icon: b.Icon}
	}
	return specs
}

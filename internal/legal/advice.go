package legal

import (
	"context"
	"errors"
	"strings"

	"github.com/pablasso/lexa/internal/tool"
	"github.com/pablasso/lexa/internal/workflow"
)

// Disclaimer accompanies every piece of advice.
const Disclaimer = "This is general legal advice. Please consult with a qualified lawyer for specific legal guidance."

var adviceTemplates = map[string]string{
	workflow.CasePropertyCrime: `LEGAL ADVICE FOR PROPERTY CRIME

1. IMMEDIATE STEPS:
   - File an FIR at the nearest police station immediately
   - Preserve all evidence (photographs, witness statements, etc.)
   - Prepare a detailed list of stolen/damaged items

2. LEGAL REMEDIES:
   - Criminal proceedings under relevant IPC sections
   - Civil suit for damages and compensation
   - Insurance claim if applicable

3. DOCUMENTATION NEEDED:
   - Police complaint receipt
   - Medical certificates (if injured)
   - Proof of ownership of stolen items
   - Witness statements

4. PRECAUTIONS:
   - Do not tamper with evidence
   - Cooperate fully with police investigation
   - Maintain all communication records`,

	workflow.CaseViolentCrime: `LEGAL ADVICE FOR VIOLENT CRIME

1. IMMEDIATE STEPS:
   - Seek immediate medical attention if injured
   - Report to police without delay
   - Document all injuries with photographs

2. LEGAL REMEDIES:
   - Criminal case under IPC sections for assault/threats
   - Application for anticipatory bail if required
   - Compensation claim under victim compensation scheme

3. DOCUMENTATION NEEDED:
   - Medical reports and certificates
   - Police complaint and FIR copy
   - Witness statements
   - Photographs of injuries

4. PRECAUTIONS:
   - Preserve all evidence
   - Do not meet accused without legal counsel
   - Keep records of all medical expenses`,

	workflow.CaseContractDispute: `LEGAL ADVICE FOR CONTRACT DISPUTE

1. IMMEDIATE STEPS:
   - Review contract terms and conditions
   - Send legal notice to defaulting party
   - Gather all relevant documents

2. LEGAL REMEDIES:
   - Civil suit for specific performance
   - Claim for damages and compensation
   - Arbitration if clause exists in contract

3. DOCUMENTATION NEEDED:
   - Original contract/agreement
   - Correspondence between parties
   - Proof of performance from your side
   - Evidence of breach by other party

4. PRECAUTIONS:
   - Preserve all written communications
   - Do not waive your rights inadvertently
   - Consider alternative dispute resolution`,

	workflow.CaseGeneral: `GENERAL LEGAL ADVICE

1. IMMEDIATE STEPS:
   - Document the incident thoroughly
   - Consult with a qualified lawyer
   - Gather all relevant evidence

2. LEGAL REMEDIES:
   - Appropriate legal action based on facts
   - Seek compensation if applicable
   - Follow proper legal procedures

3. DOCUMENTATION NEEDED:
   - All relevant documents and evidence
   - Witness statements if any
   - Proof of damages/losses

4. PRECAUTIONS:
   - Act within limitation periods
   - Preserve all evidence
   - Do not delay legal action`,
}

// Advice is the legal_advice payload.
type Advice struct {
	Advice     string `json:"advice"`
	CaseType   string `json:"case_type"`
	Disclaimer string `json:"disclaimer"`
}

type adviceInput struct {
	CaseSummary string `json:"case_summary"`
	CaseType    string `json:"case_type"`
}

// Adviser is the legal advice capability. It is not a pipeline stage; it
// is available to direct tool calls.
type Adviser struct{}

// Description implements tool.Describer.
func (Adviser) Description() string {
	return "Provide general legal advice based on case analysis"
}

// Parameters implements tool.Describer.
func (Adviser) Parameters() map[string]any {
	return objectSchema(map[string]any{
		"case_summary": stringProp("Case summary"),
		"case_type":    stringProp("Type of legal case"),
	}, "case_summary")
}

// Invoke returns the advice for the case type. Unknown types get the
// general advice.
func (Adviser) Invoke(ctx context.Context, in tool.Input) tool.Result {
	var args adviceInput
	if err := in.Decode(&args); err != nil {
		return tool.Failure(ToolLegalAdvice, err)
	}
	if strings.TrimSpace(args.CaseSummary) == "" {
		return tool.Failure(ToolLegalAdvice, errors.New("case_summary is required"))
	}
	caseType := args.CaseType
	if caseType == "" {
		caseType, _ = Classify(args.CaseSummary)
	}
	text, ok := adviceTemplates[caseType]
	if !ok {
		text = adviceTemplates[workflow.CaseGeneral]
	}
	return tool.Success(ToolLegalAdvice, Advice{
		Advice:     text,
		CaseType:   caseType,
		Disclaimer: Disclaimer,
	})
}

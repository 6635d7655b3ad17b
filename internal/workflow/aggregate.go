package workflow

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pablasso/lexa/internal/tool"
)

// Placeholders used when a stage produced nothing usable.
const (
	DefaultCaseSummary = "Case analysis unavailable; the query could not be analyzed."
	DefaultDocument    = "Document drafting unavailable; no document could be generated for this query."
)

// StageResult is the outcome of one stage, attributed to the tool that
// produced it.
type StageResult struct {
	Stage  Stage       `json:"stage"`
	Tool   string      `json:"tool"`
	Result tool.Result `json:"result"`
}

// Aggregate folds stage results into a response. It never fails: error
// results and payloads of the wrong shape yield the field defaults.
func Aggregate(results []StageResult) LegalResponse {
	resp := LegalResponse{
		CaseSummary: DefaultCaseSummary,
		CaseType:    CaseGeneral,
		Statutes:    []StatuteHit{},
		Precedents:  []PrecedentHit{},
		Document:    DefaultDocument,
	}

	for _, sr := range results {
		if !sr.Result.OK() {
			resp.FailedStages = append(resp.FailedStages, sr.Stage)
			continue
		}
		switch sr.Stage {
		case StageIntake:
			if a, err := decodeAnalysis(sr.Result); err == nil {
				resp.CaseSummary = a.Summary
				resp.CaseType = a.CaseType
			}
		case StageStatuteSearch:
			if hits, err := decodeStatutes(sr.Result); err == nil {
				resp.Statutes = hits
			}
		case StagePrecedentSearch:
			if hits, err := decodePrecedents(sr.Result); err == nil {
				resp.Precedents = hits
			}
		case StageDrafting:
			if d, err := decodeDraft(sr.Result); err == nil {
				resp.Document = d.Document
			}
		}
	}
	return resp
}

func decodeAnalysis(res tool.Result) (a CaseAnalysis, err error) {
	defer recoverDecode(&err)
	a, err = tool.DecodePayload[CaseAnalysis](res.Payload)
	if err != nil {
		return a, err
	}
	if strings.TrimSpace(a.Summary) == "" {
		return a, errors.New("case analysis has no summary")
	}
	if a.CaseType == "" {
		a.CaseType = CaseGeneral
	}
	return a, nil
}

func decodeStatutes(res tool.Result) (hits []StatuteHit, err error) {
	defer recoverDecode(&err)
	hits, err = tool.DecodePayload[[]StatuteHit](res.Payload)
	if err != nil {
		return nil, err
	}
	if hits == nil {
		hits = []StatuteHit{}
	}
	return hits, nil
}

func decodePrecedents(res tool.Result) (hits []PrecedentHit, err error) {
	defer recoverDecode(&err)
	hits, err = tool.DecodePayload[[]PrecedentHit](res.Payload)
	if err != nil {
		return nil, err
	}
	if hits == nil {
		hits = []PrecedentHit{}
	}
	return hits, nil
}

func decodeDraft(res tool.Result) (d Draft, err error) {
	defer recoverDecode(&err)
	d, err = tool.DecodePayload[Draft](res.Payload)
	if err != nil {
		return d, err
	}
	if strings.TrimSpace(d.Document) == "" {
		return d, errors.New("draft has no document")
	}
	return d, nil
}

// recoverDecode turns a panic from a misbehaving payload (a MarshalJSON
// that panics, for instance) into an error.
func recoverDecode(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("unreadable payload: %v", r)
	}
}

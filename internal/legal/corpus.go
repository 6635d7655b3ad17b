package legal

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/pablasso/lexa/internal/workflow"
)

//go:embed data/ipc_sections.json
var ipcSectionsJSON []byte

//go:embed data/precedents.json
var precedentsJSON []byte

type statuteRecord struct {
	Section   string   `json:"section"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Keywords  []string `json:"keywords"`
	CaseTypes []string `json:"case_types"`
}

type precedentRecord struct {
	Title     string   `json:"title"`
	Court     string   `json:"court"`
	Year      int      `json:"year"`
	Summary   string   `json:"summary"`
	Keywords  []string `json:"keywords"`
	CaseTypes []string `json:"case_types"`
}

// Corpus is the read-only statute and precedent table searched by the
// search tools.
type Corpus struct {
	statutes   []statuteRecord
	precedents []precedentRecord
}

// LoadCorpus parses the embedded tables.
func LoadCorpus() (*Corpus, error) {
	c := &Corpus{}
	if err := json.Unmarshal(ipcSectionsJSON, &c.statutes); err != nil {
		return nil, fmt.Errorf("failed to parse IPC sections: %w", err)
	}
	if err := json.Unmarshal(precedentsJSON, &c.precedents); err != nil {
		return nil, fmt.Errorf("failed to parse precedents: %w", err)
	}
	return c, nil
}

// caseTypeBoost is added for a matching case type. It is below a single
// keyword match, so case type alone never outranks a keyword hit.
const caseTypeBoost = 0.5

// SearchStatutes ranks sections by keyword overlap with terms, boosted by
// a matching case type.
func (c *Corpus) SearchStatutes(terms []string, caseType string, limit int) []workflow.StatuteHit {
	type scored struct {
		rec   statuteRecord
		score float64
	}
	var matches []scored
	for _, rec := range c.statutes {
		score := relevance(terms, rec.Keywords, rec.CaseTypes, caseType)
		if score > 0 {
			matches = append(matches, scored{rec: rec, score: score})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	hits := make([]workflow.StatuteHit, 0, min(len(matches), limit))
	for _, m := range matches {
		if len(hits) == limit {
			break
		}
		hits = append(hits, workflow.StatuteHit{
			Section: m.rec.Section,
			Title:   m.rec.Title,
			Content: m.rec.Content,
			Score:   m.score,
		})
	}
	return hits
}

// SearchPrecedents ranks precedents the same way. Precedents that cite one
// of sections get an extra boost.
func (c *Corpus) SearchPrecedents(terms []string, caseType string, sections []string, limit int) []workflow.PrecedentHit {
	type scored struct {
		rec   precedentRecord
		score float64
	}
	var matches []scored
	for _, rec := range c.precedents {
		score := relevance(terms, rec.Keywords, rec.CaseTypes, caseType)
		if score == 0 {
			continue
		}
		for _, s := range sections {
			if strings.Contains(rec.Summary, "Section "+s) || strings.Contains(rec.Summary, "Sections "+s) {
				score += caseTypeBoost
				break
			}
		}
		matches = append(matches, scored{rec: rec, score: score})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	hits := make([]workflow.PrecedentHit, 0, min(len(matches), limit))
	for _, m := range matches {
		if len(hits) == limit {
			break
		}
		hits = append(hits, workflow.PrecedentHit{
			Title:   m.rec.Title,
			Court:   m.rec.Court,
			Year:    m.rec.Year,
			Summary: m.rec.Summary,
			Score:   m.score,
		})
	}
	return hits
}

func relevance(terms, keywords, caseTypes []string, caseType string) float64 {
	var score float64
	for _, term := range terms {
		for _, kw := range keywords {
			if term == kw {
				score++
				break
			}
		}
	}
	if caseType != "" && caseType != workflow.CaseGeneral {
		for _, ct := range caseTypes {
			if ct == caseType {
				score += caseTypeBoost
				break
			}
		}
	}
	return score
}

// searchTerms lowercases and splits text into distinct words of at least
// three letters, followed by any extra keywords.
func searchTerms(text string, extra []string) []string {
	seen := make(map[string]bool)
	var terms []string
	add := func(w string) {
		if len(w) < 3 || seen[w] {
			return
		}
		seen[w] = true
		terms = append(terms, w)
	}
	for _, w := range tokenize(text) {
		add(w)
	}
	for _, kw := range extra {
		for _, w := range tokenize(kw) {
			add(w)
		}
	}
	return terms
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

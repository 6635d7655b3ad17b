package legal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pablasso/lexa/internal/tool"
	"github.com/pablasso/lexa/internal/workflow"
)

func loadCorpus(t *testing.T) *Corpus {
	t.Helper()
	c, err := LoadCorpus()
	require.NoError(t, err)
	require.NotEmpty(t, c.statutes)
	require.NotEmpty(t, c.precedents)
	return c
}

func TestSearchStatutes_Theft(t *testing.T) {
	c := loadCorpus(t)

	hits := c.SearchStatutes(searchTerms("A man stole my wallet", nil), workflow.CasePropertyCrime, 5)

	require.NotEmpty(t, hits)
	assert.LessOrEqual(t, len(hits), 5)
	sections := make([]string, len(hits))
	for i, h := range hits {
		sections[i] = h.Section
	}
	assert.Contains(t, sections[:2], "378")
	assert.Contains(t, sections[:2], "379")
	for i := 1; i < len(hits); i++ {
		assert.GreaterOrEqual(t, hits[i-1].Score, hits[i].Score, "hits must be ranked")
	}
}

func TestSearchStatutes_NoMatch(t *testing.T) {
	c := loadCorpus(t)
	hits := c.SearchStatutes(searchTerms("quantum entanglement", nil), workflow.CaseGeneral, 5)
	assert.Empty(t, hits)
	assert.NotNil(t, hits)
}

func TestSearchStatutes_CaseTypeBoost(t *testing.T) {
	c := loadCorpus(t)

	// "breach" appears in section 406 only.
	hits := c.SearchStatutes([]string{"breach"}, workflow.CaseContractDispute, 5)
	require.NotEmpty(t, hits)
	assert.Equal(t, "406", hits[0].Section)
	assert.Equal(t, 1.5, hits[0].Score)
}

func TestSearchStatutes_Limit(t *testing.T) {
	c := loadCorpus(t)
	hits := c.SearchStatutes([]string{"theft", "stolen"}, workflow.CasePropertyCrime, 2)
	assert.Len(t, hits, 2)
}

func TestSearchPrecedents_SectionBoost(t *testing.T) {
	c := loadCorpus(t)

	plain := c.SearchPrecedents([]string{"fraud", "online"}, workflow.CaseFraud, nil, 5)
	boosted := c.SearchPrecedents([]string{"fraud", "online"}, workflow.CaseFraud, []string{"420"}, 5)

	require.NotEmpty(t, plain)
	require.NotEmpty(t, boosted)
	assert.Contains(t, boosted[0].Title, "Online Transfer Fraud")
	assert.Greater(t, boosted[0].Score, plain[0].Score)
}

func TestSearchTerms(t *testing.T) {
	got := searchTerms("A man STOLE my wallet, my wallet!", []string{"wallet", "Phone"})
	assert.Equal(t, []string{"man", "stole", "wallet", "phone"}, got)
}

func TestSearchTools_Invoke(t *testing.T) {
	c := loadCorpus(t)
	statutes := &StatuteSearch{corpus: c, limit: 3}
	precedents := &PrecedentSearch{corpus: c, limit: 3}

	res := statutes.Invoke(context.Background(), tool.Input{"query": "A man stole my wallet", "case_type": "property_crime"})
	require.True(t, res.OK(), res.Error)
	hits, ok := res.Payload.([]workflow.StatuteHit)
	require.True(t, ok)
	assert.Len(t, hits, 3)

	res = precedents.Invoke(context.Background(), tool.Input{"query": "A man stole my wallet", "sections": []any{"378"}})
	require.True(t, res.OK(), res.Error)
	phits, ok := res.Payload.([]workflow.PrecedentHit)
	require.True(t, ok)
	assert.NotEmpty(t, phits)

	res = statutes.Invoke(context.Background(), tool.Input{"query": ""})
	assert.False(t, res.OK())

	res = precedents.Invoke(context.Background(), tool.Input{"limit": "ten"})
	assert.False(t, res.OK())
}

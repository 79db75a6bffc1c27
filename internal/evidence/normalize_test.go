package evidence

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/evidence-engine/internal/competitors"
	"github.com/jonathan/evidence-engine/internal/search"
)

var fixedNow = time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

func webResults(n int) []search.QueryResult {
	items := make([]search.Item, n)
	for i := range items {
		items[i] = search.Item{Title: fmt.Sprintf("Result %d", i), Link: fmt.Sprintf("https://site%d.io/", i)}
	}
	return []search.QueryResult{{Query: "q", Items: items}}
}

func TestNormalize_EmptyInputs(t *testing.T) {
	n := Normalize(RawFetch{}, nil, competitors.Summary{}, fixedNow)

	assert.False(t, n.Web.Configured)
	assert.NotNil(t, n.Web.Queries)
	assert.NotNil(t, n.Forum.Hits)
	assert.NotNil(t, n.Competitors)
	assert.NotNil(t, n.Citations)
	assert.NotNil(t, n.Warnings)
	assert.NotNil(t, n.Keywords)
	assert.Equal(t, competitors.SaturationLow, n.CompetitorSummary.SaturationSignal)
	assert.Equal(t, fixedNow, n.GeneratedAt)

	data, err := json.Marshal(n)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"queries":[]`)
	assert.Contains(t, string(data), `"hits":[]`)
	assert.Contains(t, string(data), `"competitors":[]`)
}

func TestNormalize_CopiesSources(t *testing.T) {
	raw := NewRawFetch(
		[]string{"resume", "ats"},
		[]string{"resume ats software"},
		search.Batch{Configured: true, Results: webResults(2)},
		[]search.ForumHit{{ID: "42", Title: "Ask HN"}},
		[]Warning{{Source: "forum", Code: "timeout", Message: "timed out"}},
	)

	n := Normalize(raw, nil, competitors.Summarize(nil), fixedNow)

	assert.True(t, n.Web.Configured)
	require.Len(t, n.Web.Queries, 1)
	assert.Len(t, n.Web.Queries[0].Items, 2)
	assert.Len(t, n.Forum.Hits, 1)
	assert.Equal(t, []string{"resume", "ats"}, n.Keywords)
	require.Len(t, n.Warnings, 1)
	assert.Equal(t, "timeout", n.Warnings[0].Code)

	raw.Warnings[0].Code = "changed"
	assert.Equal(t, "timeout", n.Warnings[0].Code)
}

func TestBuildCitations_Caps(t *testing.T) {
	hits := make([]search.ForumHit, 5)
	for i := range hits {
		hits[i] = search.ForumHit{ID: fmt.Sprintf("%d", i), Title: "hit"}
	}
	cs := []competitors.Competitor{
		{Name: "A", URL: "https://a.io/"},
		{Name: "B", URL: "https://b.io/"},
		{Name: "C", URL: "https://c.io/"},
		{Name: "D", URL: "https://d.io/"},
	}

	citations := BuildCitations(webResults(10), hits, cs)

	counts := map[string]int{}
	for _, c := range citations {
		counts[c.Source]++
	}
	assert.Equal(t, MaxWebCitations+MaxCompetitorCitations, counts[SourceWeb])
	assert.Equal(t, MaxForumCitations, counts[SourceForum])
	assert.Len(t, citations, 11)
}

func TestBuildCitations_UniqueAndNonEmpty(t *testing.T) {
	results := []search.QueryResult{
		{Query: "a", Items: []search.Item{
			{Title: "no link"},
			{Title: "Lever", Link: "https://lever.co/"},
		}},
		{Query: "b", Items: []search.Item{
			{Title: "Lever again", Link: "https://lever.co/"},
		}},
	}
	cs := []competitors.Competitor{{Name: "Lever", URL: "https://lever.co/"}}

	citations := BuildCitations(results, nil, cs)

	require.Len(t, citations, 1)
	assert.Equal(t, Citation{Source: SourceWeb, Title: "Lever", URL: "https://lever.co/"}, citations[0])
}

func TestBuildCitations_ForumPermalinkFallback(t *testing.T) {
	hits := []search.ForumHit{
		{ID: "1", Title: "Has URL", URL: "https://example.com/post"},
		{ID: "2", Title: "Ask HN"},
		{Title: "no id no url"},
	}

	citations := BuildCitations(nil, hits, nil)

	require.Len(t, citations, 2)
	assert.Equal(t, "https://example.com/post", citations[0].URL)
	assert.Equal(t, "https://news.ycombinator.com/item?id=2", citations[1].URL)
	assert.Equal(t, SourceForum, citations[1].Source)
}

func TestNewScored_FillsLists(t *testing.T) {
	s := NewScored(Normalize(RawFetch{}, nil, competitors.Summary{}, fixedNow), Signals{})

	assert.NotNil(t, s.Signals.Notes)
	assert.NotNil(t, s.Signals.PerMetricEvidence.TopCompetitors)
	assert.NotNil(t, s.Signals.PerMetricEvidence.RecentHits)

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	for _, key := range []string{"web", "forum", "competitors", "competitorSummary", "citations", "signals", "warnings", "keywords", "generatedAt"} {
		assert.Contains(t, doc, key)
	}
}

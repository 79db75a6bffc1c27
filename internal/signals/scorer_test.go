package signals

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/evidence-engine/internal/competitors"
	"github.com/jonathan/evidence-engine/internal/evidence"
	"github.com/jonathan/evidence-engine/internal/search"
)

var now = time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

func testScorer() *Scorer {
	s := NewScorer()
	s.Now = func() time.Time { return now }
	return s
}

func daysAgo(d int) *time.Time {
	t := now.Add(-time.Duration(d) * 24 * time.Hour)
	return &t
}

func normalized(items []search.Item, cs []competitors.Competitor, hits []search.ForumHit) evidence.Normalized {
	raw := evidence.NewRawFetch(nil, nil, search.Batch{Configured: true, Results: []search.QueryResult{{Query: "q", Items: items}}}, hits, nil)
	return evidence.Normalize(raw, cs, competitors.Summarize(cs), now)
}

func TestScore_ScenarioNoEvidence(t *testing.T) {
	sig := testScorer().Score(evidence.Normalize(evidence.RawFetch{}, nil, competitors.Summarize(nil), now))

	assert.Zero(t, sig.CompetitorDensity)
	assert.False(t, sig.MarketEstablished)
	assert.Zero(t, sig.EvidenceCoverage)
	assert.Zero(t, sig.PainSignal)
	assert.Equal(t, DefaultNeutralRecency, sig.RecencyScore)
	// (100-100)*0.35 + 0*0.40 + 50*0.5*0.25 = 6.25
	assert.Equal(t, 6, sig.OverallScore)
	assert.Len(t, sig.Notes, 6)
	assert.NotNil(t, sig.PerMetricEvidence.RecentHits)
	assert.NotNil(t, sig.PerMetricEvidence.PainIndicators)
}

func TestScore_EnterpriseWithoutForumHits(t *testing.T) {
	cs := []competitors.Competitor{{Name: "Workday", Domain: "workday.com", URL: "https://workday.com", Enterprise: true}}
	sig := testScorer().Score(normalized(nil, cs, nil))

	assert.Equal(t, DefaultEnterpriseRecency, sig.RecencyScore)
	assert.Equal(t, 25, sig.CompetitorDensity)
	assert.True(t, sig.MarketEstablished)
	assert.Equal(t, 20, sig.EvidenceCoverage)
	assert.Equal(t, 14, sig.OverallScore)
	assert.Contains(t, sig.Notes[2], "typical for enterprise tools")
	assert.Equal(t, []string{"Workday"}, sig.PerMetricEvidence.TopCompetitors)
}

func TestScore_TunableRecencyDefaults(t *testing.T) {
	s := testScorer()
	s.NeutralRecency = 40
	sig := s.Score(normalized(nil, nil, nil))
	assert.Equal(t, 40, sig.RecencyScore)
}

func TestScore_FullEvidence(t *testing.T) {
	items := []search.Item{
		{Title: "Acme pricing", Snippet: "Stop manual screening", Link: "https://acme.io/pricing"},
		{Title: "Beta", Snippet: "Recruiters find it painful and tedious", Link: "https://beta.io/"},
	}
	cs := []competitors.Competitor{
		{Name: "Acme", Domain: "acme.io"},
		{Name: "Beta", Domain: "beta.io"},
		{Name: "Gamma", Domain: "gamma.io"},
	}
	hits := []search.ForumHit{
		{ID: "1", NumComments: 40, CreatedAt: daysAgo(5)},
		{ID: "2", NumComments: 2, CreatedAt: daysAgo(200)},
	}

	sig := testScorer().Score(normalized(items, cs, hits))

	assert.Equal(t, 15, sig.CompetitorDensity)
	assert.True(t, sig.MarketEstablished)
	assert.Equal(t, 90, sig.RecencyScore)
	// 3 pain hits over 2 snippets caps at 50; 1 of 2 hits engaged adds 25
	assert.Equal(t, 75, sig.PainSignal)
	assert.Equal(t, []string{"manual", "tedious", "painful"}, sig.PerMetricEvidence.PainIndicators)
	// 10 web + 30 competitors + 10 pricing + 5 forum
	assert.Equal(t, 55, sig.EvidenceCoverage)
	assert.Equal(t, evidence.CoverageCounts{WebResults: 2, Competitors: 3, ForumHits: 2, PricingPages: 1}, sig.PerMetricEvidence.Coverage)
	require.Len(t, sig.PerMetricEvidence.RecentHits, 1)
	assert.Equal(t, "1", sig.PerMetricEvidence.RecentHits[0].ID)
	assert.Equal(t, OverallScore(15, 75, 90, 55), sig.OverallScore)
	assert.Contains(t, sig.Notes[4], "pricing pages found")
}

func TestCompetitorDensity(t *testing.T) {
	tests := []struct {
		count, enterprise, expected int
	}{
		{0, 0, 0},
		{1, 0, 5},
		{3, 0, 15},
		{10, 0, 50},
		{15, 0, 65},
		{20, 0, 80},
		{25, 0, 85},
		{8, 1, 60},
		{8, 3, 100},
		{200, 0, 100},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d/%d", tt.count, tt.enterprise), func(t *testing.T) {
			assert.Equal(t, tt.expected, CompetitorDensity(tt.count, tt.enterprise))
		})
	}
}

func TestMarketEstablished(t *testing.T) {
	assert.False(t, MarketEstablished(0, 0))
	assert.False(t, MarketEstablished(2, 0))
	assert.True(t, MarketEstablished(2, 1))
	for count := 3; count <= 20; count++ {
		assert.True(t, MarketEstablished(count, 0))
	}
}

func TestRecencyBuckets(t *testing.T) {
	build := func(total, veryRecent, recent int) []search.ForumHit {
		hits := make([]search.ForumHit, total)
		for i := range hits {
			switch {
			case i < veryRecent:
				hits[i].CreatedAt = daysAgo(10)
			case i < veryRecent+recent:
				hits[i].CreatedAt = daysAgo(60)
			default:
				hits[i].CreatedAt = daysAgo(365)
			}
		}
		return hits
	}

	tests := []struct {
		name     string
		hits     []search.ForumHit
		expected int
	}{
		{"mostly very recent", build(4, 2, 0), 90},
		{"some very recent", build(10, 2, 0), 70},
		{"mostly recent", build(10, 0, 6), 70},
		{"some recent", build(10, 0, 3), 50},
		{"old", build(10, 0, 1), 30},
		{"no dates", make([]search.ForumHit, 3), 30},
	}

	s := testScorer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, _ := s.recencyScore(tt.hits, false, now)
			assert.Equal(t, tt.expected, score)
		})
	}
}

func TestPainSignal(t *testing.T) {
	score, hits, indicators := painSignal([]string{"manual process is painful", "nothing here"}, []search.ForumHit{
		{NumComments: 20}, {NumComments: 1}, {NumComments: 10}, {NumComments: 0},
	})
	// 2 hits / 2 snippets -> 50; 1 of 4 engaged -> 12.5 rounds to 13
	assert.Equal(t, 63, score)
	assert.Equal(t, 2, hits)
	assert.Equal(t, []string{"manual", "painful"}, indicators)

	capped, _, _ := painSignal([]string{"manual manual manual"}, nil)
	assert.Equal(t, 50, capped)

	empty, _, emptyIndicators := painSignal(nil, nil)
	assert.Zero(t, empty)
	assert.NotNil(t, emptyIndicators)
}

func TestEvidenceCoverage(t *testing.T) {
	tests := []struct {
		counts   evidence.CoverageCounts
		expected int
	}{
		{evidence.CoverageCounts{}, 0},
		{evidence.CoverageCounts{WebResults: 5, Competitors: 1, ForumHits: 1}, 35},
		{evidence.CoverageCounts{WebResults: 15, Competitors: 3}, 50},
		{evidence.CoverageCounts{WebResults: 25, Competitors: 4, PricingPages: 1, ForumHits: 5}, 80},
		{evidence.CoverageCounts{WebResults: 40, Competitors: 8, PricingPages: 2, ForumHits: 10}, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, EvidenceCoverage(tt.counts), "%+v", tt.counts)
	}
}

func TestOverallScore(t *testing.T) {
	tests := []struct {
		density, pain, recency, coverage, expected int
	}{
		{0, 0, 50, 0, 6},
		{0, 0, 60, 0, 8},
		{0, 0, 0, 100, 35},
		{100, 100, 100, 100, 65},
		{0, 100, 100, 100, 100},
		{25, 0, 60, 20, 14},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, OverallScore(tt.density, tt.pain, tt.recency, tt.coverage), "%+v", tt)
	}
}

func TestScoresAlwaysInRange(t *testing.T) {
	s := testScorer()
	for nComp := 0; nComp <= 8; nComp++ {
		for nEnt := 0; nEnt <= nComp; nEnt += 2 {
			for nHits := 0; nHits <= 12; nHits += 4 {
				cs := make([]competitors.Competitor, nComp)
				for i := range cs {
					cs[i] = competitors.Competitor{Name: fmt.Sprintf("c%d", i), Enterprise: i < nEnt}
				}
				hits := make([]search.ForumHit, nHits)
				for i := range hits {
					hits[i] = search.ForumHit{NumComments: i * 5, CreatedAt: daysAgo(i * 20)}
				}
				items := make([]search.Item, nComp*4)
				for i := range items {
					items[i] = search.Item{Snippet: "struggling with manual problems", Link: fmt.Sprintf("https://x%d.io/pricing", i)}
				}

				sig := s.Score(normalized(items, cs, hits))
				for _, v := range []int{sig.CompetitorDensity, sig.RecencyScore, sig.PainSignal, sig.EvidenceCoverage, sig.OverallScore} {
					assert.GreaterOrEqual(t, v, 0)
					assert.LessOrEqual(t, v, 100)
				}
				if nComp >= 3 {
					assert.True(t, sig.MarketEstablished)
				}
			}
		}
	}
}

func TestZero(t *testing.T) {
	sig := Zero("scoring failed")
	assert.Equal(t, []string{"scoring failed"}, sig.Notes)
	assert.Zero(t, sig.OverallScore)
	assert.False(t, sig.MarketEstablished)
	assert.NotNil(t, sig.PerMetricEvidence.TopCompetitors)
}

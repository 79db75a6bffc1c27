// Package signals computes deterministic 0-100 market-signal scores and
// explanatory notes from normalized evidence.
package signals

import (
	"math"
	"strings"
	"time"

	"github.com/jonathan/evidence-engine/internal/competitors"
	"github.com/jonathan/evidence-engine/internal/evidence"
	"github.com/jonathan/evidence-engine/internal/search"
	"github.com/jonathan/evidence-engine/internal/vocab"
)

// Signals is the scored output. It lives in the evidence package so that the
// final document can embed it.
type Signals = evidence.Signals

// PerMetricEvidence is the data backing each score.
type PerMetricEvidence = evidence.PerMetricEvidence

// Default recency values when there are no forum hits.
const (
	DefaultNeutralRecency    = 50
	DefaultEnterpriseRecency = 60
)

// Overall score weights
const (
	densityWeight = 0.35
	painWeight    = 0.40
	recencyWeight = 0.25
)

const (
	veryRecentWindow     = 30 * 24 * time.Hour
	recentWindow         = 90 * 24 * time.Hour
	engagedCommentCount  = 10
	maxPainComponent     = 50
	enterpriseDensity    = 20
	establishedThreshold = 3
	maxRecentHits        = 5
)

// Scorer computes Signals. The zero value is not usable; use NewScorer.
type Scorer struct {
	// Now returns the reference time for recency buckets.
	Now func() time.Time
	// NeutralRecency is the recency score when there are no forum hits.
	NeutralRecency int
	// EnterpriseRecency replaces NeutralRecency when an enterprise competitor
	// was found.
	EnterpriseRecency int
}

// NewScorer returns a Scorer using the wall clock and default constants.
func NewScorer() *Scorer {
	return &Scorer{
		Now:               time.Now,
		NeutralRecency:    DefaultNeutralRecency,
		EnterpriseRecency: DefaultEnterpriseRecency,
	}
}

// Score computes every signal from n. It is pure apart from the Now clock.
func (s *Scorer) Score(n evidence.Normalized) Signals {
	count := len(n.Competitors)
	enterprise := competitors.CountEnterprise(n.Competitors)

	density := CompetitorDensity(count, enterprise)
	established := MarketEstablished(count, enterprise)

	now := s.Now()
	recency, recent := s.recencyScore(n.Forum.Hits, enterprise > 0, now)

	snippets := webSnippets(n.Web.Queries)
	pain, painHits, indicators := painSignal(snippets, n.Forum.Hits)

	counts := coverageCounts(n)
	coverage := EvidenceCoverage(counts)

	overall := OverallScore(density, pain, recency, coverage)

	topNames := n.CompetitorSummary.TopCompetitors
	if topNames == nil {
		topNames = []string{}
	}

	notes := []string{
		densityNote(density, count, enterprise),
		establishedNote(established, count, enterprise),
		recencyNote(recency, n.Forum.Hits, enterprise > 0, now),
		painNote(pain, painHits, len(snippets), engagedHits(n.Forum.Hits)),
		coverageNote(coverage, counts),
		overallNote(overall, coverage),
	}

	return Signals{
		CompetitorDensity: density,
		RecencyScore:      recency,
		PainSignal:        pain,
		EvidenceCoverage:  coverage,
		OverallScore:      overall,
		MarketEstablished: established,
		Notes:             notes,
		PerMetricEvidence: PerMetricEvidence{
			TopCompetitors: topNames,
			PainIndicators: indicators,
			RecentHits:     recent,
			Coverage:       counts,
		},
	}
}

// Zero returns all-zero signals carrying a single diagnostic note.
func Zero(note string) Signals {
	return Signals{
		Notes: []string{note},
		PerMetricEvidence: PerMetricEvidence{
			TopCompetitors: []string{},
			PainIndicators: []string{},
			RecentHits:     []search.ForumHit{},
		},
	}
}

// CompetitorDensity scores how crowded the market is: 5 points per
// competitor up to 10, 3 per competitor up to 20, 1 beyond, plus 20 per
// enterprise vendor.
func CompetitorDensity(count, enterprise int) int {
	var base int
	switch {
	case count <= 0:
		base = 0
	case count <= 10:
		base = count * 5
	case count <= 20:
		base = 50 + (count-10)*3
	default:
		base = 80 + (count - 20)
	}
	return clamp(base + enterprise*enterpriseDensity)
}

// MarketEstablished reports whether at least three competitors or any
// enterprise vendor were found.
func MarketEstablished(count, enterprise int) bool {
	return count >= establishedThreshold || enterprise > 0
}

func (s *Scorer) recencyScore(hits []search.ForumHit, hasEnterprise bool, now time.Time) (int, []search.ForumHit) {
	recent := []search.ForumHit{}
	if len(hits) == 0 {
		if hasEnterprise {
			return clamp(s.EnterpriseRecency), recent
		}
		return clamp(s.NeutralRecency), recent
	}

	veryRecentCount, recentCount := 0, 0
	for _, h := range hits {
		if h.CreatedAt == nil {
			continue
		}
		age := now.Sub(*h.CreatedAt)
		if age <= veryRecentWindow {
			veryRecentCount++
		}
		if age <= recentWindow {
			recentCount++
			if len(recent) < maxRecentHits {
				recent = append(recent, h)
			}
		}
	}

	total := float64(len(hits))
	veryRecent := float64(veryRecentCount) / total
	recentShare := float64(recentCount) / total

	switch {
	case veryRecent > 0.3:
		return 90, recent
	case veryRecent > 0.1 || recentShare > 0.5:
		return 70, recent
	case recentShare > 0.2:
		return 50, recent
	default:
		return 30, recent
	}
}

// painSignal sums two components, each capped at 50: pain-term density over
// web snippets and the share of forum hits with more than ten comments.
func painSignal(snippets []string, hits []search.ForumHit) (int, int, []string) {
	terms := vocab.Signals().PainTerms

	termHits := 0
	matched := make(map[string]bool)
	for _, snippet := range snippets {
		text := strings.ToLower(snippet)
		for _, term := range terms {
			if c := vocab.CountTerm(text, term); c > 0 {
				termHits += c
				matched[term] = true
			}
		}
	}

	indicators := []string{}
	for _, term := range terms {
		if matched[term] {
			indicators = append(indicators, term)
		}
	}

	textComponent := 0
	if len(snippets) > 0 {
		textComponent = int(math.Round(float64(termHits) / float64(len(snippets)) * maxPainComponent))
		if textComponent > maxPainComponent {
			textComponent = maxPainComponent
		}
	}

	forumComponent := 0
	if len(hits) > 0 {
		forumComponent = int(math.Round(float64(engagedHits(hits)) / float64(len(hits)) * maxPainComponent))
	}

	return clamp(textComponent + forumComponent), termHits, indicators
}

func engagedHits(hits []search.ForumHit) int {
	n := 0
	for _, h := range hits {
		if h.NumComments > engagedCommentCount {
			n++
		}
	}
	return n
}

// EvidenceCoverage scores how much data backs the other signals.
func EvidenceCoverage(c evidence.CoverageCounts) int {
	score := 0

	switch {
	case c.WebResults == 0:
	case c.WebResults < 10:
		score += 10
	case c.WebResults < 20:
		score += 20
	case c.WebResults < 30:
		score += 30
	default:
		score += 40
	}

	switch {
	case c.Competitors == 0:
	case c.Competitors < 3:
		score += 20
	case c.Competitors < 5:
		score += 30
	default:
		score += 40
	}

	if c.PricingPages > 0 {
		score += 10
	}

	switch {
	case c.ForumHits >= 5:
		score += 10
	case c.ForumHits > 0:
		score += 5
	}

	return clamp(score)
}

// OverallScore combines the signals, using coverage as a reliability factor.
// At zero coverage density counts as 100 and pain and recency are halved.
func OverallScore(density, pain, recency, coverage int) int {
	r := float64(clamp(coverage)) / 100
	adjustedDensity := 100 - (100-float64(density))*r
	adjustedPain := float64(pain) * (0.5 + 0.5*r)
	adjustedRecency := float64(recency) * (0.5 + 0.5*r)

	raw := (100-adjustedDensity)*densityWeight + adjustedPain*painWeight + adjustedRecency*recencyWeight
	return clamp(int(math.Round(raw)))
}

func coverageCounts(n evidence.Normalized) evidence.CoverageCounts {
	pricingTerms := vocab.Signals().PricingTerms
	counts := evidence.CoverageCounts{
		Competitors: len(n.Competitors),
		ForumHits:   len(n.Forum.Hits),
	}
	for _, r := range n.Web.Queries {
		for _, item := range r.Items {
			counts.WebResults++
			if isPricingPage(item, pricingTerms) {
				counts.PricingPages++
			}
		}
	}
	return counts
}

func isPricingPage(item search.Item, terms []string) bool {
	link := strings.ToLower(item.Link)
	title := strings.ToLower(item.Title)
	for _, term := range terms {
		if strings.Contains(link, strings.ReplaceAll(term, " ", "-")) || vocab.ContainsTerm(title, term) {
			return true
		}
	}
	return false
}

func webSnippets(results []search.QueryResult) []string {
	var snippets []string
	for _, r := range results {
		for _, item := range r.Items {
			if strings.TrimSpace(item.Snippet) != "" {
				snippets = append(snippets, item.Snippet)
			}
		}
	}
	return snippets
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Package evidence defines the per-stage evidence records produced by the
// pipeline: RawFetch (what the sources returned), Normalized (merged with
// competitors and citations) and Scored (with market signals attached).
// Every record is built by a constructor that fills all fields, so consumers
// never see a nil slice where a list is expected.
package evidence

import (
	"time"

	"github.com/jonathan/evidence-engine/internal/competitors"
	"github.com/jonathan/evidence-engine/internal/search"
)

// Citation sources
const (
	SourceWeb   = "web"
	SourceForum = "forum"
)

// Citation caps per evidence build.
const (
	MaxWebCitations        = 5
	MaxForumCitations      = 3
	MaxCompetitorCitations = 3
)

// Warning explains why part of the evidence is missing or partial.
type Warning struct {
	Source  string `json:"source"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Citation is a link backing the evidence.
type Citation struct {
	Source string `json:"source"`
	Title  string `json:"title"`
	URL    string `json:"url"`
}

// WebEvidence is the web sub-object of the evidence document.
type WebEvidence struct {
	Configured bool                 `json:"configured"`
	Queries    []search.QueryResult `json:"queries"`
}

// ForumEvidence is the forum sub-object of the evidence document.
type ForumEvidence struct {
	Hits []search.ForumHit `json:"hits"`
}

// RawFetch is the output of the fetching stage.
type RawFetch struct {
	Keywords []string
	Queries  []string
	Web      search.Batch
	Forum    []search.ForumHit
	Warnings []Warning
}

// NewRawFetch builds a RawFetch, replacing nil lists with empty ones.
func NewRawFetch(keywords, queries []string, web search.Batch, forum []search.ForumHit, warnings []Warning) RawFetch {
	if web.Results == nil {
		web.Results = []search.QueryResult{}
	}
	if web.Errors == nil {
		web.Errors = []search.QueryError{}
	}
	if web.Diagnostics == nil {
		web.Diagnostics = []search.Diagnostics{}
	}
	return RawFetch{
		Keywords: nonNil(keywords),
		Queries:  nonNil(queries),
		Web:      web,
		Forum:    nonNilHits(forum),
		Warnings: nonNilWarnings(warnings),
	}
}

// Normalized is the merged, unscored evidence.
type Normalized struct {
	Web               WebEvidence              `json:"web"`
	Forum             ForumEvidence            `json:"forum"`
	Competitors       []competitors.Competitor `json:"competitors"`
	CompetitorSummary competitors.Summary      `json:"competitorSummary"`
	Citations         []Citation               `json:"citations"`
	Warnings          []Warning                `json:"warnings"`
	Keywords          []string                 `json:"keywords"`
	GeneratedAt       time.Time                `json:"generatedAt"`
}

// CoverageCounts are the raw counts behind the evidence coverage score.
type CoverageCounts struct {
	WebResults   int `json:"webResults"`
	Competitors  int `json:"competitors"`
	ForumHits    int `json:"forumHits"`
	PricingPages int `json:"pricingPages"`
}

// PerMetricEvidence is the data backing each signal, for display.
type PerMetricEvidence struct {
	TopCompetitors []string          `json:"topCompetitors"`
	PainIndicators []string          `json:"painIndicators"`
	RecentHits     []search.ForumHit `json:"recentHits"`
	Coverage       CoverageCounts    `json:"coverage"`
}

// Signals are the market-signal scores. All scores are in [0,100].
type Signals struct {
	CompetitorDensity int               `json:"competitorDensity"`
	RecencyScore      int               `json:"recencyScore"`
	PainSignal        int               `json:"painSignal"`
	EvidenceCoverage  int               `json:"evidenceCoverage"`
	OverallScore      int               `json:"overallScore"`
	MarketEstablished bool              `json:"marketEstablished"`
	Notes             []string          `json:"notes"`
	PerMetricEvidence PerMetricEvidence `json:"perMetricEvidence"`
}

// Scored is the final evidence document handed to consumers.
type Scored struct {
	Normalized
	Signals Signals `json:"signals"`
}

// NewScored attaches signals to normalized evidence.
func NewScored(n Normalized, s Signals) *Scored {
	if s.Notes == nil {
		s.Notes = []string{}
	}
	if s.PerMetricEvidence.TopCompetitors == nil {
		s.PerMetricEvidence.TopCompetitors = []string{}
	}
	if s.PerMetricEvidence.PainIndicators == nil {
		s.PerMetricEvidence.PainIndicators = []string{}
	}
	if s.PerMetricEvidence.RecentHits == nil {
		s.PerMetricEvidence.RecentHits = []search.ForumHit{}
	}
	return &Scored{Normalized: n, Signals: s}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilHits(h []search.ForumHit) []search.ForumHit {
	if h == nil {
		return []search.ForumHit{}
	}
	return h
}

func nonNilWarnings(w []Warning) []Warning {
	if w == nil {
		return []Warning{}
	}
	return w
}

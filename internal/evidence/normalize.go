package evidence

import (
	"time"

	"github.com/jonathan/evidence-engine/internal/competitors"
	"github.com/jonathan/evidence-engine/internal/search"
)

// Normalize merges the fetched sources with the extracted competitors into a
// Normalized record and builds its citation list. It does not score.
func Normalize(raw RawFetch, cs []competitors.Competitor, summary competitors.Summary, now time.Time) Normalized {
	raw = NewRawFetch(raw.Keywords, raw.Queries, raw.Web, raw.Forum, raw.Warnings)
	if cs == nil {
		cs = []competitors.Competitor{}
	}
	if summary.TopCompetitors == nil {
		summary.TopCompetitors = []string{}
	}
	if summary.SaturationSignal == "" {
		summary.SaturationSignal = competitors.SaturationLow
	}

	warnings := make([]Warning, len(raw.Warnings))
	copy(warnings, raw.Warnings)

	return Normalized{
		Web: WebEvidence{
			Configured: raw.Web.Configured,
			Queries:    raw.Web.Results,
		},
		Forum:             ForumEvidence{Hits: raw.Forum},
		Competitors:       cs,
		CompetitorSummary: summary,
		Citations:         BuildCitations(raw.Web.Results, raw.Forum, cs),
		Warnings:          warnings,
		Keywords:          raw.Keywords,
		GeneratedAt:       now.UTC(),
	}
}

// BuildCitations collects up to five web, three forum and three competitor
// links. Entries without a URL are skipped and each URL appears once.
func BuildCitations(results []search.QueryResult, hits []search.ForumHit, cs []competitors.Competitor) []Citation {
	citations := make([]Citation, 0, MaxWebCitations+MaxForumCitations+MaxCompetitorCitations)
	seen := make(map[string]bool)

	add := func(source, title, url string) bool {
		if url == "" || seen[url] {
			return false
		}
		seen[url] = true
		citations = append(citations, Citation{Source: source, Title: title, URL: url})
		return true
	}

	web := 0
	for _, r := range results {
		for _, item := range r.Items {
			if web >= MaxWebCitations {
				break
			}
			if add(SourceWeb, item.Title, item.Link) {
				web++
			}
		}
	}

	forum := 0
	for _, h := range hits {
		if forum >= MaxForumCitations {
			break
		}
		if add(SourceForum, h.Title, ForumURL(h)) {
			forum++
		}
	}

	comp := 0
	for _, c := range cs {
		if comp >= MaxCompetitorCitations {
			break
		}
		if add(SourceWeb, c.Name, c.URL) {
			comp++
		}
	}

	return citations
}

// ForumURL returns the hit's link, or the discussion permalink when the story
// has no external URL.
func ForumURL(h search.ForumHit) string {
	if h.URL != "" {
		return h.URL
	}
	if h.ID == "" {
		return ""
	}
	return search.ForumItemURL + h.ID
}

package signals

import (
	"fmt"
	"time"

	"github.com/jonathan/evidence-engine/internal/evidence"
	"github.com/jonathan/evidence-engine/internal/search"
)

func densityNote(density, count, enterprise int) string {
	var label string
	switch {
	case count == 0:
		label = "no competitors identified"
	case density >= 70:
		label = "crowded market"
	case density >= 40:
		label = "moderately competitive market"
	default:
		label = "few direct competitors found"
	}
	return fmt.Sprintf("Competitor density %d/100: %s (%d competitors, %d enterprise).", density, label, count, enterprise)
}

func establishedNote(established bool, count, enterprise int) string {
	switch {
	case enterprise > 0:
		return fmt.Sprintf("Market appears established: %d enterprise vendor(s) already serve it.", enterprise)
	case established:
		return fmt.Sprintf("Market appears established: %d competing products found.", count)
	default:
		return "No established market detected from search results."
	}
}

func recencyNote(recency int, hits []search.ForumHit, hasEnterprise bool, now time.Time) string {
	if len(hits) == 0 {
		if hasEnterprise {
			return fmt.Sprintf("Recency %d/100: no forum discussion found, which is typical for enterprise tools.", recency)
		}
		return fmt.Sprintf("Recency %d/100: no forum discussion found, using a neutral default.", recency)
	}

	veryRecent, recent := 0, 0
	for _, h := range hits {
		if h.CreatedAt == nil {
			continue
		}
		age := now.Sub(*h.CreatedAt)
		if age <= veryRecentWindow {
			veryRecent++
		}
		if age <= recentWindow {
			recent++
		}
	}
	return fmt.Sprintf("Recency %d/100: %d of %d forum threads from the last 30 days, %d from the last 90 days.",
		recency, veryRecent, len(hits), recent)
}

func painNote(pain, termHits, snippetCount, engaged int) string {
	var label string
	switch {
	case pain >= 60:
		label = "strong"
	case pain >= 30:
		label = "moderate"
	default:
		label = "weak"
	}
	return fmt.Sprintf("Pain signal %d/100 (%s): %d pain-term matches across %d snippets, %d forum threads with more than %d comments.",
		pain, label, termHits, snippetCount, engaged, engagedCommentCount)
}

func coverageNote(coverage int, c evidence.CoverageCounts) string {
	pricing := ""
	if c.PricingPages > 0 {
		pricing = ", pricing pages found"
	}
	return fmt.Sprintf("Evidence coverage %d/100: %d web results, %d competitors, %d forum threads%s.",
		coverage, c.WebResults, c.Competitors, c.ForumHits, pricing)
}

func overallNote(overall, coverage int) string {
	var label string
	switch {
	case overall >= 70:
		label = "strong opportunity"
	case overall >= 40:
		label = "moderate opportunity"
	default:
		label = "weak opportunity"
	}
	if coverage < 30 {
		return fmt.Sprintf("Overall score %d/100: %s; low evidence coverage pulls scores toward neutral.", overall, label)
	}
	return fmt.Sprintf("Overall score %d/100: %s.", overall, label)
}

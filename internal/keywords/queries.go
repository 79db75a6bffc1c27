package keywords

import (
	"strings"

	"github.com/jonathan/evidence-engine/internal/vocab"
)

// MaxQueries caps the number of strategic queries sent to the web source.
const MaxQueries = 8

// maxQueryKeywords is the number of keywords joined into the query phrase.
const maxQueryKeywords = 5

// BuildQueries builds the strategic search queries for a keyword list. The
// business context, if any, only influences which domain variants are added.
// Output is deterministic, deduplicated and capped at MaxQueries.
func BuildQueries(kws []string, contextText string) []string {
	if len(kws) == 0 {
		return []string{}
	}

	phraseKeywords := kws
	if len(phraseKeywords) > maxQueryKeywords {
		phraseKeywords = phraseKeywords[:maxQueryKeywords]
	}
	data := map[string]string{"Keywords": strings.Join(phraseKeywords, " ")}

	tables := vocab.Queries()
	templates := append([]string{}, tables.Baseline...)
	for _, profile := range DetectDomains(kws, contextText) {
		templates = append(templates, profile.Templates...)
	}
	templates = append(templates, tables.Discovery...)
	templates = append(templates, tables.BuyerIntent...)

	queries := make([]string, 0, MaxQueries)
	seen := make(map[string]bool)
	for _, tmpl := range templates {
		q := strings.Join(strings.Fields(vocab.Format(tmpl, data)), " ")
		if q == "" || seen[q] {
			continue
		}
		seen[q] = true
		queries = append(queries, q)
		if len(queries) == MaxQueries {
			break
		}
	}
	return queries
}

// DetectDomains returns the domain profiles whose indicator terms appear in the
// keywords or the context text, in table order.
func DetectDomains(kws []string, contextText string) []vocab.DomainProfile {
	haystack := strings.ToLower(strings.Join(kws, " ") + " " + contextText)

	var matched []vocab.DomainProfile
	for _, profile := range vocab.Queries().Domains {
		for _, indicator := range profile.Indicators {
			if vocab.ContainsTerm(haystack, indicator) {
				matched = append(matched, profile)
				break
			}
		}
	}
	return matched
}

package competitors

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/publicsuffix"

	"github.com/jonathan/evidence-engine/internal/search"
	"github.com/jonathan/evidence-engine/internal/vocab"
)

// Heuristic weights
const (
	enterpriseBonus     = 50
	productURLBonus     = 20
	categoryMatchPoints = 10
	productTermPoints   = 5
	tutorialPenalty     = 10
	githubPenalty       = 5
	enterpriseATSVote   = 5
	minScore            = 10
	highConfidenceScore = 40
	medConfidenceScore  = 20
)

// Limits
const (
	MaxCompetitors  = 8
	MaxSnippets     = 3
	MaxSnippetChars = 150
)

// candidate is one scored search item before per-domain dedupe.
type candidate struct {
	competitor Competitor
	snippet    string
}

// Extract scores every search item, keeps the best candidate per registrable
// domain and returns at most MaxCompetitors, enterprise vendors first, then by
// descending score and ascending domain.
func Extract(results []search.QueryResult) []Competitor {
	tables := vocab.Competitors()
	enterprise := make(map[string]string, len(tables.EnterpriseATS))
	for _, v := range tables.EnterpriseATS {
		enterprise[v.Domain] = v.Name
	}
	aggregators := make(map[string]bool, len(tables.AggregatorDomains))
	for _, d := range tables.AggregatorDomains {
		aggregators[d] = true
	}

	best := make(map[string]*candidate)
	var order []string
	snippets := make(map[string][]string)

	for _, result := range results {
		for _, item := range result.Items {
			c, ok := scoreItem(item, tables, enterprise, aggregators)
			if !ok {
				continue
			}
			domain := c.competitor.Domain
			if c.snippet != "" {
				snippets[domain] = append(snippets[domain], c.snippet)
			}
			existing, seen := best[domain]
			if !seen {
				order = append(order, domain)
				best[domain] = c
				continue
			}
			if c.competitor.Score > existing.competitor.Score {
				best[domain] = c
			}
		}
	}

	competitors := make([]Competitor, 0, len(order))
	for _, domain := range order {
		c := best[domain]
		comp := c.competitor
		comp.EvidenceSnippets = collectSnippets(c.snippet, snippets[domain])
		competitors = append(competitors, comp)
	}

	sort.SliceStable(competitors, func(i, j int) bool {
		a, b := competitors[i], competitors[j]
		if a.Enterprise != b.Enterprise {
			return a.Enterprise
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.Domain < b.Domain
	})

	if len(competitors) > MaxCompetitors {
		competitors = competitors[:MaxCompetitors]
	}
	return competitors
}

// scoreItem applies the heuristics to a single search item. It reports false
// when the item should not be considered a competitor.
func scoreItem(item search.Item, tables vocab.CompetitorTables, enterprise map[string]string, aggregators map[string]bool) (*candidate, bool) {
	domain := RegistrableDomain(item.Link)
	if domain == "" || aggregators[domain] {
		return nil, false
	}

	text := strings.ToLower(item.Title + " " + item.Snippet)
	vendorName, isEnterprise := enterprise[domain]
	productURL := isEnterprise || isProductDomain(domain, tables.ProductURLTerms)

	categoryHits := make(map[string][]string, len(tables.Categories))
	categoryMatches := 0
	for _, cat := range tables.Categories {
		hits := vocab.MatchedTerms(text, cat.Keywords)
		categoryHits[cat.Category] = hits
		categoryMatches += len(hits)
	}
	productHits := vocab.MatchedTerms(text, tables.ProductTerms)

	if !productURL && categoryMatches == 0 && len(productHits) == 0 {
		return nil, false
	}

	score := 0
	if isEnterprise {
		score += enterpriseBonus
	}
	if productURL {
		score += productURLBonus
	}
	score += categoryMatches * categoryMatchPoints
	score += len(productHits) * productTermPoints
	if len(vocab.MatchedTerms(text, tables.TutorialTerms)) > 0 {
		score -= tutorialPenalty
	}
	if domain == "github.com" && !strings.Contains(text, "enterprise") {
		score -= githubPenalty
	}
	if score < minScore {
		return nil, false
	}

	category := classify(tables.Categories, categoryHits, isEnterprise)

	name := vendorName
	if name == "" {
		name = nameFromDomain(domain)
	}

	return &candidate{
		competitor: Competitor{
			Name:          name,
			Domain:        domain,
			URL:           item.Link,
			Category:      category,
			OverlapReason: overlapReason(isEnterprise, category, categoryHits[string(category)], productHits),
			Confidence:    confidenceFor(isEnterprise, score),
			Enterprise:    isEnterprise,
			Score:         score,
		},
		snippet: truncate(strings.TrimSpace(item.Snippet), MaxSnippetChars),
	}, true
}

// classify picks the category with the most keyword matches. Enterprise
// vendors add a bonus toward ATS. Ties and zero matches fall back to Other.
func classify(categories []vocab.CategoryTerms, hits map[string][]string, isEnterprise bool) Category {
	bestCount := 0
	bestCategory := CategoryOther
	tied := false
	for _, cat := range categories {
		count := len(hits[cat.Category])
		if isEnterprise && Category(cat.Category) == CategoryATS {
			count += enterpriseATSVote
		}
		switch {
		case count > bestCount:
			bestCount = count
			bestCategory = Category(cat.Category)
			tied = false
		case count == bestCount && count > 0:
			tied = true
		}
	}
	if bestCount == 0 || tied {
		return CategoryOther
	}
	return bestCategory
}

func confidenceFor(isEnterprise bool, score int) Confidence {
	switch {
	case isEnterprise || score >= highConfidenceScore:
		return ConfidenceHigh
	case score >= medConfidenceScore:
		return ConfidenceMed
	default:
		return ConfidenceLow
	}
}

func overlapReason(isEnterprise bool, category Category, categoryHits, productHits []string) string {
	var parts []string
	if isEnterprise {
		parts = append(parts, "known enterprise ATS vendor")
	}
	if len(categoryHits) > 0 {
		parts = append(parts, fmt.Sprintf("matches %s terms: %s", category, strings.Join(categoryHits, ", ")))
	}
	if len(productHits) > 0 {
		parts = append(parts, fmt.Sprintf("product signals: %s", strings.Join(productHits, ", ")))
	}
	if len(parts) == 0 {
		return "product-like site"
	}
	return strings.Join(parts, "; ")
}

// collectSnippets returns up to MaxSnippets unique snippets, starting with the
// winning item's own snippet.
func collectSnippets(own string, all []string) []string {
	out := make([]string, 0, MaxSnippets)
	seen := make(map[string]bool)
	add := func(s string) {
		if s == "" || seen[s] || len(out) >= MaxSnippets {
			return
		}
		seen[s] = true
		out = append(out, s)
	}
	add(own)
	for _, s := range all {
		add(s)
	}
	return out
}

// RegistrableDomain returns the eTLD+1 of a link's host with any leading
// "www." removed. Hosts with no registrable part, such as localhost, are
// returned as-is. Unparseable links yield "".
func RegistrableDomain(link string) string {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")
	if host == "" {
		return ""
	}
	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return domain
}

// isProductDomain reports whether the registrable domain itself names a
// product. The URL path is not considered.
func isProductDomain(domain string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(domain, term) {
			return true
		}
	}
	return false
}

// nameFromDomain capitalizes the first label of a domain: "tealhq.com" -> "Tealhq".
func nameFromDomain(domain string) string {
	label, _, _ := strings.Cut(domain, ".")
	r, size := utf8.DecodeRuneInString(label)
	if r == utf8.RuneError {
		return domain
	}
	return string(unicode.ToUpper(r)) + label[size:]
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:max-3])) + "..."
}

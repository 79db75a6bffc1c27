// Package vocab provides the heuristic word lists and domain tables used for
// keyword derivation, query building, competitor classification and scoring.
// Tables are stored as JSON files and embedded at compile time so they can be
// tuned and versioned independently of the code that reads them.
package vocab

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

//go:embed *.json
var tableFiles embed.FS

// Table file names.
const (
	StopwordsFile   = "stopwords.json"
	QueriesFile     = "queries.json"
	CompetitorsFile = "competitors.json"
	SignalsFile     = "signals.json"
)

// DomainProfile enables domain-specific query variants when one of its
// indicator terms appears in the keywords or business context.
type DomainProfile struct {
	Name       string   `json:"name"`
	Indicators []string `json:"indicators"`
	Templates  []string `json:"templates"`
}

// QueryTables holds the query templates. Templates use the {{.Keywords}} placeholder.
type QueryTables struct {
	Baseline    []string        `json:"baseline"`
	Domains     []DomainProfile `json:"domains"`
	Discovery   []string        `json:"discovery"`
	BuyerIntent []string        `json:"buyer_intent"`
}

// CategoryTerms lists the keywords that vote for one competitor category.
type CategoryTerms struct {
	Category string   `json:"category"`
	Keywords []string `json:"keywords"`
}

// EnterpriseVendor is a known enterprise applicant tracking vendor.
type EnterpriseVendor struct {
	Domain string `json:"domain"`
	Name   string `json:"name"`
}

// CompetitorTables holds the competitor extraction vocabularies.
type CompetitorTables struct {
	Categories        []CategoryTerms    `json:"categories"`
	EnterpriseATS     []EnterpriseVendor `json:"enterprise_ats"`
	ProductURLTerms   []string           `json:"product_url_terms"`
	ProductTerms      []string           `json:"product_terms"`
	TutorialTerms     []string           `json:"tutorial_terms"`
	AggregatorDomains []string           `json:"aggregator_domains"`
}

// SignalTables holds the scoring vocabularies.
type SignalTables struct {
	PainTerms    []string `json:"pain_terms"`
	PricingTerms []string `json:"pricing_terms"`
}

var (
	cache   = make(map[string]any)
	cacheMu sync.RWMutex
)

// Load decodes an embedded table file into v.
func Load(filename string, v any) error {
	data, err := tableFiles.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read vocabulary file %s: %w", filename, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse vocabulary file %s: %w", filename, err)
	}
	return nil
}

// mustLoad loads and caches a table, panicking if the embedded file is broken.
func mustLoad[T any](filename string) T {
	cacheMu.RLock()
	if cached, ok := cache[filename]; ok {
		cacheMu.RUnlock()
		return cached.(T)
	}
	cacheMu.RUnlock()

	var table T
	if err := Load(filename, &table); err != nil {
		panic(fmt.Sprintf("failed to load vocabulary: %v", err))
	}

	cacheMu.Lock()
	cache[filename] = table
	cacheMu.Unlock()
	return table
}

// stopwordSetKey caches the built stopword set next to the raw tables.
const stopwordSetKey = StopwordsFile + "#set"

// Stopwords returns the stopword set used by keyword derivation. The set is
// built once and shared; callers must not modify it.
func Stopwords() map[string]bool {
	cacheMu.RLock()
	set, ok := cache[stopwordSetKey].(map[string]bool)
	cacheMu.RUnlock()
	if ok {
		return set
	}

	words := mustLoad[[]string](StopwordsFile)
	set = make(map[string]bool, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = true
	}

	cacheMu.Lock()
	cache[stopwordSetKey] = set
	cacheMu.Unlock()
	return set
}

// Queries returns the query templates.
func Queries() QueryTables {
	return mustLoad[QueryTables](QueriesFile)
}

// Competitors returns the competitor extraction tables.
func Competitors() CompetitorTables {
	return mustLoad[CompetitorTables](CompetitorsFile)
}

// Signals returns the scoring tables.
func Signals() SignalTables {
	return mustLoad[SignalTables](SignalsFile)
}

// Format replaces placeholders in the form {{.Key}} with values from data.
func Format(template string, data map[string]string) string {
	result := template
	for key, value := range data {
		result = strings.ReplaceAll(result, "{{."+key+"}}", value)
	}
	return result
}

// ClearCache clears the table cache. Useful for testing.
func ClearCache() {
	cacheMu.Lock()
	cache = make(map[string]any)
	cacheMu.Unlock()
}

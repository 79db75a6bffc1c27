// Package competitors identifies, scores, classifies and ranks likely
// competitor products from web search results using lexical and domain
// heuristics.
package competitors

// Category is the market category a competitor is assigned to.
type Category string

// Competitor categories
const (
	CategoryATS                    Category = "ATS"
	CategoryResumeOptimizer        Category = "ResumeOptimizer"
	CategoryScreeningMatching      Category = "ScreeningMatching"
	CategoryVerificationBackground Category = "VerificationBackground"
	CategoryOther                  Category = "Other"
)

// Confidence expresses how sure the extractor is that a domain is a competitor.
type Confidence string

// Confidence levels
const (
	ConfidenceHigh Confidence = "high"
	ConfidenceMed  Confidence = "med"
	ConfidenceLow  Confidence = "low"
)

// Saturation is the qualitative crowdedness of a market.
type Saturation string

// Saturation levels
const (
	SaturationLow    Saturation = "low"
	SaturationMedium Saturation = "medium"
	SaturationHigh   Saturation = "high"
)

// Competitor is a candidate competing product. There is at most one per domain.
type Competitor struct {
	Name             string     `json:"name"`
	Domain           string     `json:"domain"`
	URL              string     `json:"url"`
	Category         Category   `json:"category"`
	OverlapReason    string     `json:"overlapReason"`
	EvidenceSnippets []string   `json:"evidenceSnippets"`
	Confidence       Confidence `json:"confidence"`
	Enterprise       bool       `json:"enterprise"`

	// Score is the internal heuristic score used for dedupe and ordering.
	Score int `json:"-"`
}

// Summary is a compact description of the competitor set.
type Summary struct {
	TotalCompetitorsFound int        `json:"totalCompetitorsFound"`
	TopCompetitors        []string   `json:"topCompetitors"`
	SaturationSignal      Saturation `json:"saturationSignal"`
}

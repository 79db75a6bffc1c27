package competitors

// MaxTopCompetitors is the number of names listed in a Summary.
const MaxTopCompetitors = 5

// Saturation thresholds on competitor count.
const (
	highSaturationCount   = 6
	mediumSaturationCount = 3
)

// Summarize derives a Summary from an ordered competitor list. Saturation is
// high when any enterprise vendor is present or there are at least six
// competitors, medium from three, and low otherwise.
func Summarize(cs []Competitor) Summary {
	summary := Summary{
		TotalCompetitorsFound: len(cs),
		TopCompetitors:        []string{},
		SaturationSignal:      SaturationLow,
	}

	hasEnterprise := false
	for i, c := range cs {
		if c.Enterprise {
			hasEnterprise = true
		}
		if i < MaxTopCompetitors {
			summary.TopCompetitors = append(summary.TopCompetitors, c.Name)
		}
	}

	switch {
	case hasEnterprise || len(cs) >= highSaturationCount:
		summary.SaturationSignal = SaturationHigh
	case len(cs) >= mediumSaturationCount:
		summary.SaturationSignal = SaturationMedium
	}
	return summary
}

// CountEnterprise returns the number of enterprise vendors in cs.
func CountEnterprise(cs []Competitor) int {
	n := 0
	for _, c := range cs {
		if c.Enterprise {
			n++
		}
	}
	return n
}

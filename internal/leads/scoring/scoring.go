// Package scoring contains the pure triage heuristics for lead intake.
// Both scores are computed without I/O so they stay independently testable.
package scoring

import "strings"

// Recommended pack names as seeded in the recommended_packs table.
const (
	PackTrust      = "confiance"
	PackGrowth     = "croissance"
	PackCompliance = "conformité"
)

// Urgency names that contribute to the potential score.
const (
	UrgencyImmediate = "immédiat"
	UrgencyThisMonth = "ce mois"
)

const maturityCeiling = 5

// seniorTitles are matched case-insensitively as substrings of the
// contact's job title.
var seniorTitles = []string{"manager", "director", "cto", "ceo"}

// MaturityInput carries the payload-derived signals for the maturity score.
// It is computed from the raw submission, before any row is resolved.
type MaturityInput struct {
	CompanySize    *int32
	EstimatedUsers *int32
	ConcernCount   int
	JobTitle       *string
}

// Maturity estimates buying readiness on a 0-5 scale.
func Maturity(in MaturityInput) int32 {
	var score int32

	if in.CompanySize != nil && *in.CompanySize > 100 {
		score++
	}
	if in.EstimatedUsers != nil && *in.EstimatedUsers > 50 {
		score++
	}
	if in.ConcernCount > 2 {
		score++
	}
	if in.JobTitle != nil && hasSeniorTitle(*in.JobTitle) {
		score++
	}

	if score > maturityCeiling {
		return maturityCeiling
	}
	return score
}

// Potential estimates commercial value from the resolved company,
// urgency and contact rows. The sum is open-ended; it is bounded only
// by the contributing weights.
func Potential(companySize *int32, urgencyName string, jobTitle *string) int32 {
	var score int32

	if companySize != nil {
		switch size := *companySize; {
		case size > 1000:
			score += 3
		case size > 250:
			score += 2
		default:
			score += 1
		}
	}

	switch urgencyName {
	case UrgencyImmediate:
		score += 3
	case UrgencyThisMonth:
		score += 2
	}

	if jobTitle != nil && hasSeniorTitle(*jobTitle) {
		score += 2
	}

	return score
}

// RecommendPack picks a pack from the submitted concern labels.
// The scan is a case-sensitive substring match over the raw labels,
// first match wins; no concerns at all falls through to the default.
func RecommendPack(concerns []string) string {
	for _, label := range concerns {
		if strings.Contains(label, PackTrust) {
			return PackTrust
		}
	}
	for _, label := range concerns {
		if strings.Contains(label, PackGrowth) {
			return PackGrowth
		}
	}
	return PackCompliance
}

func hasSeniorTitle(title string) bool {
	lowered := strings.ToLower(title)
	for _, keyword := range seniorTitles {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}

package analysis

import (
	"math"

	"health-claims/internal/models"
)

// Stats summarizes a verified claim list by status and category.
type Stats struct {
	Total             int                               `json:"total"`
	ByStatus          map[models.VerificationStatus]int `json:"by_status"`
	ByCategory        map[string]int                    `json:"by_category"`
	AverageConfidence int                               `json:"average_confidence"`
}

// BuildStats computes claim counts and the mean confidence. A zero-claim
// input yields empty maps and zero averages, never a division by zero.
func BuildStats(claims []models.Claim) Stats {
	stats := Stats{
		Total:      len(claims),
		ByStatus:   make(map[models.VerificationStatus]int),
		ByCategory: make(map[string]int),
	}

	if len(claims) == 0 {
		return stats
	}

	var confidenceSum int
	for _, claim := range claims {
		stats.ByStatus[claim.VerificationStatus]++
		stats.ByCategory[claim.Category]++
		confidenceSum += claim.Confidence
	}

	stats.AverageConfidence = int(math.Round(float64(confidenceSum) / float64(len(claims))))
	return stats
}

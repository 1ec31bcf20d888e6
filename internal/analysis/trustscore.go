package analysis

import (
	"math"

	"health-claims/internal/models"
)

// statusWeights maps each verdict to its contribution factor. A claim
// contributes confidence * weight to the trust score average. Failed
// verifications count at the same weight as questionable claims.
var statusWeights = map[models.VerificationStatus]float64{
	models.StatusVerified:     1.0,
	models.StatusQuestionable: 0.5,
	models.StatusDebunked:     0.0,
	models.StatusNeedsReview:  0.5,
	models.StatusError:        0.5,
}

// TrustScore reduces a claim list to a single 0..100 integer score.
// An empty list scores zero.
func TrustScore(claims []models.Claim) int {
	if len(claims) == 0 {
		return 0
	}

	var total float64
	for _, claim := range claims {
		weight, ok := statusWeights[claim.VerificationStatus]
		if !ok {
			weight = 0.5
		}
		total += float64(claim.Confidence) * weight
	}

	return int(math.Round(total / float64(len(claims))))
}

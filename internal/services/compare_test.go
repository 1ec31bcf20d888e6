package services

import (
	"testing"

	"health-claims/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func comparisonInfluencer(name string, trustScore int, engagement float64, followers int) models.Influencer {
	return models.Influencer{
		ID:   uuid.New(),
		Name: name,
		SocialMetrics: models.SocialMetrics{
			TwitterFollowers: followers,
			Engagement:       engagement,
		},
		AnalysisMetrics: models.AnalysisMetrics{
			TrustScore: trustScore,
		},
	}
}

func TestCompareLoaded_EmptyInputFails(t *testing.T) {
	result, err := CompareLoaded(nil)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrEmptyComparison)
}

func TestCompareLoaded_SummaryPicksSuperlatives(t *testing.T) {
	result, err := CompareLoaded([]models.Influencer{
		comparisonInfluencer("a", 40, 9.5, 100),
		comparisonInfluencer("b", 90, 2.0, 500),
		comparisonInfluencer("c", 60, 5.0, 300),
	})

	assert.NoError(t, err)
	assert.Len(t, result.Comparison, 3)
	assert.Equal(t, "b", result.Summary.MostTrusted)
	assert.Equal(t, "a", result.Summary.HighestEngagement)
	assert.Equal(t, "b", result.Summary.MostFollowers)
}

func TestCompareLoaded_TiesGoToFirstEntity(t *testing.T) {
	result, err := CompareLoaded([]models.Influencer{
		comparisonInfluencer("first", 50, 1.0, 10),
		comparisonInfluencer("second", 50, 1.0, 10),
	})

	assert.NoError(t, err)
	assert.Equal(t, "first", result.Summary.MostTrusted)
	assert.Equal(t, "first", result.Summary.HighestEngagement)
	assert.Equal(t, "first", result.Summary.MostFollowers)
}

func TestCompareLoaded_VerificationRate(t *testing.T) {
	inf := comparisonInfluencer("a", 50, 1.0, 10)
	inf.AnalysisMetrics.ClaimsAnalyzed = 8
	inf.AnalysisMetrics.VerifiedClaims = 6

	result, err := CompareLoaded([]models.Influencer{inf})
	assert.NoError(t, err)
	assert.InDelta(t, 75.0, result.Comparison[0].Metrics.VerificationRate, 0.001)
}

func TestCompareLoaded_ZeroClaimsMeansZeroRate(t *testing.T) {
	result, err := CompareLoaded([]models.Influencer{comparisonInfluencer("a", 50, 1.0, 10)})
	assert.NoError(t, err)
	assert.Zero(t, result.Comparison[0].Metrics.VerificationRate)
}

func TestCompareLoaded_CredentialCounts(t *testing.T) {
	inf := comparisonInfluencer("a", 50, 1.0, 10)
	inf.Credentials = models.Credentials{
		Education:      []string{"MD", "PhD"},
		Certifications: []string{"Board Certified"},
		Institutions:   []string{},
	}

	result, err := CompareLoaded([]models.Influencer{inf})
	assert.NoError(t, err)
	assert.Equal(t, 2, result.Comparison[0].Credentials.Education)
	assert.Equal(t, 1, result.Comparison[0].Credentials.Certifications)
	assert.Equal(t, 0, result.Comparison[0].Credentials.Institutions)
}

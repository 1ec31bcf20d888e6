package analysis

import (
	"testing"

	"health-claims/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestBuildStats_EmptyClaims(t *testing.T) {
	stats := BuildStats(nil)

	assert.Equal(t, 0, stats.Total)
	assert.Empty(t, stats.ByStatus)
	assert.Empty(t, stats.ByCategory)
	assert.Equal(t, 0, stats.AverageConfidence)

	// Maps must be initialized so they serialize as {} rather than null.
	assert.NotNil(t, stats.ByStatus)
	assert.NotNil(t, stats.ByCategory)
}

func TestBuildStats_CountsAndAverage(t *testing.T) {
	claims := []models.Claim{
		{VerificationStatus: models.StatusVerified, Category: "Nutrition", Confidence: 90},
		{VerificationStatus: models.StatusVerified, Category: "Nutrition", Confidence: 70},
		{VerificationStatus: models.StatusDebunked, Category: "Supplements", Confidence: 80},
	}

	stats := BuildStats(claims)

	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.ByStatus[models.StatusVerified])
	assert.Equal(t, 1, stats.ByStatus[models.StatusDebunked])
	assert.Equal(t, 2, stats.ByCategory["Nutrition"])
	assert.Equal(t, 1, stats.ByCategory["Supplements"])
	assert.Equal(t, 80, stats.AverageConfidence)
}

func TestBuildStats_RoundsAverage(t *testing.T) {
	claims := []models.Claim{
		{VerificationStatus: models.StatusVerified, Category: "Nutrition", Confidence: 50},
		{VerificationStatus: models.StatusVerified, Category: "Nutrition", Confidence: 51},
	}

	stats := BuildStats(claims)
	assert.Equal(t, 51, stats.AverageConfidence)
}

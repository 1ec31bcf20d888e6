package services

import (
	"health-claims/internal/models"

	"github.com/google/uuid"
)

// ComparisonMetrics are the per-entity derived metrics in a comparison.
type ComparisonMetrics struct {
	TrustScore       int     `json:"trust_score"`
	TotalFollowers   int     `json:"total_followers"`
	Engagement       float64 `json:"engagement"`
	ClaimsAnalyzed   int     `json:"claims_analyzed"`
	VerificationRate float64 `json:"verification_rate"`
}

// CredentialCounts summarizes the lengths of each credential list.
type CredentialCounts struct {
	Education      int `json:"education"`
	Certifications int `json:"certifications"`
	Institutions   int `json:"institutions"`
}

// ComparisonEntry is one influencer's row in a comparison.
type ComparisonEntry struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Title       string            `json:"title"`
	Metrics     ComparisonMetrics `json:"metrics"`
	Credentials CredentialCounts  `json:"credentials"`
}

// ComparisonSummary names the superlative influencer per metric.
type ComparisonSummary struct {
	MostTrusted       string `json:"most_trusted"`
	HighestEngagement string `json:"highest_engagement"`
	MostFollowers     string `json:"most_followers"`
}

// ComparisonResult is the full output of a comparison request.
type ComparisonResult struct {
	Comparison []ComparisonEntry `json:"comparison"`
	Summary    ComparisonSummary `json:"summary"`
}

// CompareLoaded derives per-entity metrics and the superlative summary
// for an already-resolved set of influencers. The summary picks by
// linear scan with first-element-wins tie-break. A zero-entity input
// fails with ErrEmptyComparison.
func CompareLoaded(influencers []models.Influencer) (*ComparisonResult, error) {
	if len(influencers) == 0 {
		return nil, ErrEmptyComparison
	}

	entries := make([]ComparisonEntry, len(influencers))
	for i := range influencers {
		entries[i] = compareEntry(&influencers[i])
	}

	best := func(key func(*models.Influencer) float64) string {
		winner := 0
		for i := 1; i < len(influencers); i++ {
			if key(&influencers[i]) > key(&influencers[winner]) {
				winner = i
			}
		}
		return influencers[winner].Name
	}

	return &ComparisonResult{
		Comparison: entries,
		Summary: ComparisonSummary{
			MostTrusted: best(func(inf *models.Influencer) float64 {
				return float64(inf.AnalysisMetrics.TrustScore)
			}),
			HighestEngagement: best(func(inf *models.Influencer) float64 {
				return inf.SocialMetrics.Engagement
			}),
			MostFollowers: best(func(inf *models.Influencer) float64 {
				return float64(inf.SocialMetrics.TotalFollowers())
			}),
		},
	}, nil
}

func compareEntry(inf *models.Influencer) ComparisonEntry {
	metrics := ComparisonMetrics{
		TrustScore:     inf.AnalysisMetrics.TrustScore,
		TotalFollowers: inf.SocialMetrics.TotalFollowers(),
		Engagement:     inf.SocialMetrics.Engagement,
		ClaimsAnalyzed: inf.AnalysisMetrics.ClaimsAnalyzed,
	}
	if inf.AnalysisMetrics.ClaimsAnalyzed > 0 {
		metrics.VerificationRate = float64(inf.AnalysisMetrics.VerifiedClaims) /
			float64(inf.AnalysisMetrics.ClaimsAnalyzed) * 100
	}

	return ComparisonEntry{
		ID:      inf.ID.String(),
		Name:    inf.Name,
		Title:   inf.Title,
		Metrics: metrics,
		Credentials: CredentialCounts{
			Education:      len(inf.Credentials.Education),
			Certifications: len(inf.Credentials.Certifications),
			Institutions:   len(inf.Credentials.Institutions),
		},
	}
}

// Compare resolves the given ids and compares them. Unknown ids are
// simply absent from the result; resolved entities keep request order.
func (s *InfluencersService) Compare(ids []uuid.UUID) (*ComparisonResult, error) {
	var found []models.Influencer
	if err := s.db.Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*models.Influencer, len(found))
	for i := range found {
		byID[found[i].ID] = &found[i]
	}

	ordered := make([]models.Influencer, 0, len(found))
	for _, id := range ids {
		if inf, ok := byID[id]; ok {
			ordered = append(ordered, *inf)
		}
	}

	return CompareLoaded(ordered)
}

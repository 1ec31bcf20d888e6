package services

import (
	"sort"
	"strings"

	"health-claims/internal/models"
)

const resultCap = 20

// Leaderboard metrics.
const (
	MetricTrustScore = "trustScore"
	MetricFollowers  = "followers"
	MetricEngagement = "engagement"
)

// FollowersView is the follower projection used by the leaderboard.
// Platform fields are omitted when only a legacy flat count exists.
type FollowersView struct {
	Total     int `json:"total"`
	Twitter   int `json:"twitter,omitempty"`
	Instagram int `json:"instagram,omitempty"`
	YouTube   int `json:"youtube,omitempty"`
}

// LeaderboardEntry is the reduced influencer view returned by the
// leaderboard endpoint.
type LeaderboardEntry struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Title       string             `json:"title"`
	TrustScore  int                `json:"trust_score"`
	Followers   FollowersView      `json:"followers"`
	Engagement  float64            `json:"engagement"`
	Claims      []models.Claim     `json:"claims"`
	Specialties []string           `json:"specialties"`
	Credentials models.Credentials `json:"credentials"`
}

// RankLeaderboard ranks active influencers by the chosen metric,
// optionally restricted to one specialty category. Ties keep the
// original collection order; at most 20 entries are returned.
func RankLeaderboard(influencers []models.Influencer, category, metric string) []LeaderboardEntry {
	filtered := make([]models.Influencer, 0, len(influencers))
	for _, inf := range influencers {
		if !inf.IsActive {
			continue
		}
		if category != "" && !containsString(inf.Specialties, category) {
			continue
		}
		filtered = append(filtered, inf)
	}

	sort.SliceStable(filtered, func(a, b int) bool {
		return leaderboardKey(&filtered[a], metric) > leaderboardKey(&filtered[b], metric)
	})

	if len(filtered) > resultCap {
		filtered = filtered[:resultCap]
	}

	entries := make([]LeaderboardEntry, len(filtered))
	for i := range filtered {
		entries[i] = projectLeaderboardEntry(&filtered[i])
	}
	return entries
}

func leaderboardKey(inf *models.Influencer, metric string) float64 {
	switch metric {
	case MetricFollowers:
		return float64(inf.EffectiveFollowers())
	case MetricEngagement:
		return inf.SocialMetrics.Engagement
	default:
		return float64(inf.EffectiveTrustScore())
	}
}

func projectLeaderboardEntry(inf *models.Influencer) LeaderboardEntry {
	followers := FollowersView{Total: inf.EffectiveFollowers()}
	if inf.HasFollowerBreakdown() {
		followers.Twitter = inf.SocialMetrics.TwitterFollowers
		followers.Instagram = inf.SocialMetrics.InstagramFollowers
		followers.YouTube = inf.SocialMetrics.YouTubeFollowers
	}

	return LeaderboardEntry{
		ID:          inf.ID.String(),
		Name:        inf.Name,
		Title:       inf.Title,
		TrustScore:  inf.EffectiveTrustScore(),
		Followers:   followers,
		Engagement:  inf.SocialMetrics.Engagement,
		Claims:      inf.Claims,
		Specialties: inf.Specialties,
		Credentials: inf.Credentials,
	}
}

// Leaderboard loads the collection and ranks it.
func (s *InfluencersService) Leaderboard(category, metric string) ([]LeaderboardEntry, error) {
	influencers, err := s.List()
	if err != nil {
		return nil, err
	}
	return RankLeaderboard(influencers, category, metric), nil
}

// SearchFilters are the supported search predicates. All present
// filters combine with logical AND.
type SearchFilters struct {
	Query         string
	Specialty     string
	MinTrustScore *int
	MinFollowers  *int
	SortBy        string
	Order         string
}

// FilterInfluencers applies the search filters to the collection,
// sorts by the requested key, and caps the result at 20 entries.
func FilterInfluencers(influencers []models.Influencer, filters SearchFilters) []models.Influencer {
	matched := make([]models.Influencer, 0, len(influencers))
	for _, inf := range influencers {
		if !matchesFilters(&inf, filters) {
			continue
		}
		matched = append(matched, inf)
	}

	ascending := filters.Order == "asc"
	sortBy := filters.SortBy
	sort.SliceStable(matched, func(a, b int) bool {
		less := searchKey(&matched[a], sortBy) < searchKey(&matched[b], sortBy)
		if ascending {
			return less
		}
		return searchKey(&matched[a], sortBy) > searchKey(&matched[b], sortBy)
	})

	if len(matched) > resultCap {
		matched = matched[:resultCap]
	}
	return matched
}

func matchesFilters(inf *models.Influencer, filters SearchFilters) bool {
	if filters.Query != "" && !matchesQuery(inf, filters.Query) {
		return false
	}
	if filters.Specialty != "" && !containsString(inf.Specialties, filters.Specialty) {
		return false
	}
	if filters.MinTrustScore != nil && inf.AnalysisMetrics.TrustScore < *filters.MinTrustScore {
		return false
	}
	if filters.MinFollowers != nil && inf.EffectiveFollowers() < *filters.MinFollowers {
		return false
	}
	return true
}

// matchesQuery matches case-insensitively as a substring against the
// name, any specialty, or any tag.
func matchesQuery(inf *models.Influencer, query string) bool {
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(inf.Name), q) {
		return true
	}
	for _, specialty := range inf.Specialties {
		if strings.Contains(strings.ToLower(specialty), q) {
			return true
		}
	}
	for _, tag := range inf.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

func searchKey(inf *models.Influencer, sortBy string) float64 {
	switch sortBy {
	case MetricFollowers:
		return float64(inf.EffectiveFollowers())
	case MetricEngagement:
		return inf.SocialMetrics.Engagement
	default:
		return float64(inf.AnalysisMetrics.TrustScore)
	}
}

// Search loads the collection and filters it.
func (s *InfluencersService) Search(filters SearchFilters) ([]models.Influencer, error) {
	influencers, err := s.List()
	if err != nil {
		return nil, err
	}
	return FilterInfluencers(influencers, filters), nil
}

func containsString(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}

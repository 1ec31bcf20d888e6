package services

import (
	"fmt"
	"sort"
	"time"

	"health-claims/internal/models"

	"github.com/google/uuid"
)

// TimelineEntry is the projected claim view on the timeline.
type TimelineEntry struct {
	Date       time.Time                 `json:"date"`
	Statement  string                    `json:"statement"`
	Status     models.VerificationStatus `json:"status"`
	Confidence int                       `json:"confidence"`
}

// TimelineOptions filter a timeline. Nil bounds are open; the date
// window is inclusive on both ends.
type TimelineOptions struct {
	StartDate *time.Time
	EndDate   *time.Time
	Category  string
}

// BuildTimeline filters one influencer's claims and orders them by
// statement date, newest first.
func BuildTimeline(claims []models.Claim, opts TimelineOptions) []TimelineEntry {
	filtered := make([]models.Claim, 0, len(claims))
	for _, claim := range claims {
		if opts.StartDate != nil && claim.Date.Before(*opts.StartDate) {
			continue
		}
		if opts.EndDate != nil && claim.Date.After(*opts.EndDate) {
			continue
		}
		if opts.Category != "" && claim.Category != opts.Category {
			continue
		}
		filtered = append(filtered, claim)
	}

	sort.SliceStable(filtered, func(a, b int) bool {
		return filtered[a].Date.After(filtered[b].Date)
	})

	entries := make([]TimelineEntry, len(filtered))
	for i, claim := range filtered {
		entries[i] = TimelineEntry{
			Date:       claim.Date,
			Statement:  claim.Statement,
			Status:     claim.VerificationStatus,
			Confidence: claim.Confidence,
		}
	}
	return entries
}

// Timeline loads an influencer and builds its claims timeline.
func (s *InfluencersService) Timeline(id uuid.UUID, opts TimelineOptions) ([]TimelineEntry, error) {
	influencer, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	return BuildTimeline(influencer.Claims, opts), nil
}

// CategoryGroup is one category's slice of an influencer's claims.
type CategoryGroup struct {
	Category              string                            `json:"category"`
	Total                 int                               `json:"total"`
	Claims                []models.Claim                    `json:"claims"`
	VerificationBreakdown map[models.VerificationStatus]int `json:"verification_breakdown"`
	ConfidenceAverage     float64                           `json:"confidence_average"`
}

// BreakdownByCategory groups claims by category, keeping categories in
// order of first appearance.
func BreakdownByCategory(claims []models.Claim) []CategoryGroup {
	index := make(map[string]int)
	groups := make([]CategoryGroup, 0)

	for _, claim := range claims {
		i, ok := index[claim.Category]
		if !ok {
			i = len(groups)
			index[claim.Category] = i
			groups = append(groups, CategoryGroup{
				Category:              claim.Category,
				VerificationBreakdown: make(map[models.VerificationStatus]int),
			})
		}
		groups[i].Total++
		groups[i].Claims = append(groups[i].Claims, claim)
		groups[i].VerificationBreakdown[claim.VerificationStatus]++
	}

	for i := range groups {
		var sum int
		for _, claim := range groups[i].Claims {
			sum += claim.Confidence
		}
		groups[i].ConfidenceAverage = float64(sum) / float64(groups[i].Total)
	}
	return groups
}

// ClaimsByCategory loads an influencer and groups its claims.
func (s *InfluencersService) ClaimsByCategory(id uuid.UUID) ([]CategoryGroup, error) {
	influencer, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	return BreakdownByCategory(influencer.Claims), nil
}

// TrendingClaims flattens all influencers' claims, optionally filtered
// by category and a trailing window of days, and returns the ten with
// the highest engagement. A negative timeframe is a validation error.
func TrendingClaims(influencers []models.Influencer, category string, timeframeDays int, now time.Time) ([]models.Claim, error) {
	if timeframeDays < 0 {
		return nil, fmt.Errorf("%w: timeframe must not be negative", ErrValidation)
	}

	var cutoff time.Time
	if timeframeDays > 0 {
		cutoff = now.AddDate(0, 0, -timeframeDays)
	}

	all := make([]models.Claim, 0)
	for _, inf := range influencers {
		for _, claim := range inf.Claims {
			if category != "" && claim.Category != category {
				continue
			}
			if timeframeDays > 0 && claim.Date.Before(cutoff) {
				continue
			}
			all = append(all, claim)
		}
	}

	sort.SliceStable(all, func(a, b int) bool {
		return all[a].EngagementTotal > all[b].EngagementTotal
	})

	if len(all) > 10 {
		all = all[:10]
	}
	return all, nil
}

// Trending loads the collection and ranks its claims by engagement.
func (s *InfluencersService) Trending(category string, timeframeDays int) ([]models.Claim, error) {
	influencers, err := s.List()
	if err != nil {
		return nil, err
	}
	return TrendingClaims(influencers, category, timeframeDays, time.Now().UTC())
}

// CategoryStat counts verification outcomes within one category.
type CategoryStat struct {
	Total        int `json:"total"`
	Verified     int `json:"verified"`
	Questionable int `json:"questionable"`
	Debunked     int `json:"debunked"`
}

// CategoryStats aggregates verification outcomes per category across
// the whole collection.
func CategoryStats(influencers []models.Influencer) map[string]CategoryStat {
	stats := make(map[string]CategoryStat)
	for _, inf := range influencers {
		for _, claim := range inf.Claims {
			stat := stats[claim.Category]
			stat.Total++
			switch claim.VerificationStatus {
			case models.StatusVerified:
				stat.Verified++
			case models.StatusQuestionable:
				stat.Questionable++
			case models.StatusDebunked:
				stat.Debunked++
			}
			stats[claim.Category] = stat
		}
	}
	return stats
}

// GlobalCategoryStats loads the collection and aggregates per category.
func (s *InfluencersService) GlobalCategoryStats() (map[string]CategoryStat, error) {
	influencers, err := s.List()
	if err != nil {
		return nil, err
	}
	return CategoryStats(influencers), nil
}

// TopCategory is a category's share of recent claims.
type TopCategory struct {
	Category   string  `json:"category"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// RecentActivity summarizes claims made within the trailing window.
type RecentActivity struct {
	TotalClaims           int                               `json:"total_claims"`
	VerificationBreakdown map[models.VerificationStatus]int `json:"verification_breakdown"`
	TopCategories         []TopCategory                     `json:"top_categories"`
	AverageConfidence     float64                           `json:"average_confidence"`
}

// PlatformPresence describes one content-source platform entry.
type PlatformPresence struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
	Active   bool   `json:"active"`
}

// SocialMetricsView is the social-metrics endpoint payload.
type SocialMetricsView struct {
	Followers      FollowersView      `json:"followers"`
	Engagement     float64            `json:"engagement"`
	Reach          int64              `json:"reach"`
	RecentActivity RecentActivity     `json:"recent_activity"`
	Platforms      []PlatformPresence `json:"platforms"`
}

// BuildSocialMetrics assembles the social view for one influencer with
// a recent-activity rollup over the trailing timeframe in days.
func BuildSocialMetrics(inf *models.Influencer, timeframeDays int, now time.Time) SocialMetricsView {
	if timeframeDays <= 0 {
		timeframeDays = 30
	}
	cutoff := now.AddDate(0, 0, -timeframeDays)

	recent := make([]models.Claim, 0, len(inf.Claims))
	for _, claim := range inf.Claims {
		if !claim.Date.Before(cutoff) {
			recent = append(recent, claim)
		}
	}

	breakdown := make(map[models.VerificationStatus]int)
	var confidenceSum int
	for _, claim := range recent {
		breakdown[claim.VerificationStatus]++
		confidenceSum += claim.Confidence
	}

	activity := RecentActivity{
		TotalClaims:           len(recent),
		VerificationBreakdown: breakdown,
		TopCategories:         topCategories(recent),
	}
	if len(recent) > 0 {
		activity.AverageConfidence = float64(confidenceSum) / float64(len(recent))
	}

	return SocialMetricsView{
		Followers: FollowersView{
			Total:     inf.SocialMetrics.TotalFollowers(),
			Twitter:   inf.SocialMetrics.TwitterFollowers,
			Instagram: inf.SocialMetrics.InstagramFollowers,
			YouTube:   inf.SocialMetrics.YouTubeFollowers,
		},
		Engagement:     inf.SocialMetrics.Engagement,
		Reach:          inf.SocialMetrics.Reach,
		RecentActivity: activity,
		Platforms:      platformPresence(inf.ContentSources),
	}
}

// topCategories returns the five most frequent categories with their
// share of the claim list.
func topCategories(claims []models.Claim) []TopCategory {
	counts := make(map[string]int)
	order := make([]string, 0)
	for _, claim := range claims {
		if _, seen := counts[claim.Category]; !seen {
			order = append(order, claim.Category)
		}
		counts[claim.Category]++
	}

	sort.SliceStable(order, func(a, b int) bool {
		return counts[order[a]] > counts[order[b]]
	})
	if len(order) > 5 {
		order = order[:5]
	}

	top := make([]TopCategory, len(order))
	for i, category := range order {
		top[i] = TopCategory{
			Category:   category,
			Count:      counts[category],
			Percentage: float64(counts[category]) / float64(len(claims)) * 100,
		}
	}
	return top
}

func platformPresence(sources models.ContentSources) []PlatformPresence {
	entries := []PlatformPresence{
		{Platform: "podcast", URL: sources.Podcast},
		{Platform: "blog", URL: sources.Blog},
		{Platform: "youtube", URL: sources.YouTube},
		{Platform: "twitter", URL: sources.Twitter},
		{Platform: "instagram", URL: sources.Instagram},
	}
	for i := range entries {
		entries[i].Active = entries[i].URL != ""
	}
	return entries
}

// SocialMetrics loads an influencer and builds its social view.
func (s *InfluencersService) SocialMetrics(id uuid.UUID, timeframeDays int) (*SocialMetricsView, error) {
	influencer, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	view := BuildSocialMetrics(influencer, timeframeDays, time.Now().UTC())
	return &view, nil
}

// DetailedAnalysis is the full per-influencer analysis payload.
type DetailedAnalysis struct {
	Basic struct {
		Name        string   `json:"name"`
		Title       string   `json:"title"`
		Specialties []string `json:"specialties"`
	} `json:"basic"`
	Metrics  models.AnalysisMetrics `json:"metrics"`
	Social   models.SocialMetrics   `json:"social"`
	Claims   []CategoryGroup        `json:"claims"`
	Timeline []TimelineEntry        `json:"timeline"`
}

// Analysis assembles the detailed analysis view for one influencer.
func (s *InfluencersService) Analysis(id uuid.UUID) (*DetailedAnalysis, error) {
	influencer, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	detail := &DetailedAnalysis{
		Metrics:  influencer.AnalysisMetrics,
		Social:   influencer.SocialMetrics,
		Claims:   BreakdownByCategory(influencer.Claims),
		Timeline: BuildTimeline(influencer.Claims, TimelineOptions{}),
	}
	detail.Basic.Name = influencer.Name
	detail.Basic.Title = influencer.Title
	detail.Basic.Specialties = influencer.Specialties
	return detail, nil
}

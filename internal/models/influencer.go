package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Credentials holds an influencer's academic and professional background.
type Credentials struct {
	Education      pq.StringArray `json:"education" gorm:"type:text[]"`
	Certifications pq.StringArray `json:"certifications" gorm:"type:text[]"`
	Institutions   pq.StringArray `json:"institutions" gorm:"type:text[]"`
}

// SocialMetrics holds per-platform follower counts and engagement figures.
type SocialMetrics struct {
	TwitterFollowers   int     `json:"twitter_followers" gorm:"default:0"`
	InstagramFollowers int     `json:"instagram_followers" gorm:"default:0"`
	YouTubeFollowers   int     `json:"youtube_followers" gorm:"default:0"`
	Engagement         float64 `json:"engagement" gorm:"default:0"`
	Reach              int64   `json:"reach" gorm:"default:0"`
}

// TotalFollowers sums the per-platform follower counts.
func (s SocialMetrics) TotalFollowers() int {
	return s.TwitterFollowers + s.InstagramFollowers + s.YouTubeFollowers
}

// AnalysisMetrics is the derived reputation record. It is overwritten
// wholesale by each completed analysis run, never merged incrementally.
type AnalysisMetrics struct {
	TrustScore         int        `json:"trust_score" gorm:"default:0"`
	ClaimsAnalyzed     int        `json:"claims_analyzed" gorm:"default:0"`
	VerifiedClaims     int        `json:"verified_claims" gorm:"default:0"`
	QuestionableClaims int        `json:"questionable_claims" gorm:"default:0"`
	DebunkedClaims     int        `json:"debunked_claims" gorm:"default:0"`
	LastAnalysis       *time.Time `json:"last_analysis"`
}

// ContentSources maps publishing platforms to their URLs. Empty string
// means the influencer is not present on that platform.
type ContentSources struct {
	Podcast   string `json:"podcast"`
	Blog      string `json:"blog"`
	YouTube   string `json:"youtube"`
	Twitter   string `json:"twitter"`
	Instagram string `json:"instagram"`
}

// Influencer represents a tracked public figure and their claim history.
type Influencer struct {
	ID          uuid.UUID      `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Name        string         `json:"name" gorm:"not null;index"`
	Title       string         `json:"title"`
	Specialties pq.StringArray `json:"specialties" gorm:"type:text[]"`
	Tags        pq.StringArray `json:"tags" gorm:"type:text[]"`

	Credentials     Credentials     `json:"credentials" gorm:"embedded;embeddedPrefix:cred_"`
	SocialMetrics   SocialMetrics   `json:"social_metrics" gorm:"embedded;embeddedPrefix:social_"`
	AnalysisMetrics AnalysisMetrics `json:"analysis_metrics" gorm:"embedded;embeddedPrefix:analysis_"`
	ContentSources  ContentSources  `json:"content_sources" gorm:"embedded;embeddedPrefix:source_"`

	// Pre-migration records carried a flat trust score and follower count.
	// Read-path fallback only; new writes always use the structured fields.
	LegacyTrustScore    int `json:"legacy_trust_score,omitempty" gorm:"default:0"`
	LegacyFollowerCount int `json:"legacy_follower_count,omitempty" gorm:"default:0"`

	// Revision guards analysis writes against concurrent runs on the
	// same influencer (compare-and-swap on update).
	Revision int  `json:"revision" gorm:"default:0"`
	IsActive bool `json:"is_active" gorm:"default:true"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Claims are exclusively owned; deleting the influencer deletes them.
	Claims []Claim `json:"claims,omitempty" gorm:"foreignKey:InfluencerID;constraint:OnDelete:CASCADE"`
}

// TableName sets the table name for the Influencer model
func (Influencer) TableName() string {
	return "influencers"
}

// EffectiveTrustScore returns the structured trust score once an analysis
// has run, falling back to the legacy flat field for older records.
func (i *Influencer) EffectiveTrustScore() int {
	if i.AnalysisMetrics.LastAnalysis != nil {
		return i.AnalysisMetrics.TrustScore
	}
	return i.LegacyTrustScore
}

// EffectiveFollowers returns the summed per-platform follower count,
// falling back to the legacy flat count when no breakdown exists.
func (i *Influencer) EffectiveFollowers() int {
	if total := i.SocialMetrics.TotalFollowers(); total > 0 {
		return total
	}
	return i.LegacyFollowerCount
}

// HasFollowerBreakdown reports whether any per-platform count is recorded.
func (i *Influencer) HasFollowerBreakdown() bool {
	return i.SocialMetrics.TotalFollowers() > 0
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// VerificationStatus is the closed set of verdicts a claim can carry.
type VerificationStatus string

const (
	StatusVerified     VerificationStatus = "Verified"
	StatusQuestionable VerificationStatus = "Questionable"
	StatusDebunked     VerificationStatus = "Debunked"
	StatusNeedsReview  VerificationStatus = "Needs Review"
	StatusError        VerificationStatus = "Error"
)

// ParseVerificationStatus coerces a free-form status string into the
// enumerated set. Unknown values become Needs Review rather than being
// stored verbatim.
func ParseVerificationStatus(s string) VerificationStatus {
	switch VerificationStatus(s) {
	case StatusVerified, StatusQuestionable, StatusDebunked, StatusNeedsReview, StatusError:
		return VerificationStatus(s)
	}
	return StatusNeedsReview
}

// ClampConfidence bounds a confidence value to the valid 0..100 range.
func ClampConfidence(c int) int {
	if c < 0 {
		return 0
	}
	if c > 100 {
		return 100
	}
	return c
}

// Claim is a single health-related statement with its verification verdict.
type Claim struct {
	ID           uuid.UUID `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	InfluencerID uuid.UUID `json:"influencer_id" gorm:"type:uuid;index;not null"`

	// Position preserves discovery order within one analysis run.
	Position  int       `json:"position" gorm:"default:0"`
	Statement string    `json:"statement" gorm:"not null"`
	Source    string    `json:"source"`
	Date      time.Time `json:"date"`

	Category           string             `json:"category"`
	VerificationStatus VerificationStatus `json:"verification_status" gorm:"type:varchar(32)"`
	Confidence         int                `json:"confidence" gorm:"default:0"`
	Evidence           string             `json:"evidence" gorm:"type:text"`
	Sources            pq.StringArray     `json:"sources" gorm:"type:text[]"`

	EngagementTotal int       `json:"engagement_total" gorm:"default:0"`
	DateAnalyzed    time.Time `json:"date_analyzed"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName sets the table name for the Claim model
func (Claim) TableName() string {
	return "claims"
}

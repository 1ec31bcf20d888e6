package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"health-claims/internal/analysis"
	"health-claims/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrNotFound indicates an unknown influencer id.
	ErrNotFound = errors.New("influencer not found")
	// ErrValidation indicates a malformed create/update payload.
	ErrValidation = errors.New("invalid influencer payload")
	// ErrEmptyComparison indicates a comparison that resolved zero entities.
	ErrEmptyComparison = errors.New("no influencers found to compare")
	// ErrConcurrentAnalysis indicates an analysis write lost the revision race.
	ErrConcurrentAnalysis = errors.New("influencer was modified by a concurrent analysis")
)

// InfluencersService owns influencer CRUD, analysis orchestration, and
// the ranking/comparison/claims views built over the stored collection.
type InfluencersService struct {
	db       *gorm.DB
	pipeline *analysis.Pipeline
}

// NewInfluencersService creates a new influencers service.
func NewInfluencersService(db *gorm.DB, pipeline *analysis.Pipeline) *InfluencersService {
	return &InfluencersService{db: db, pipeline: pipeline}
}

// Create stores a new influencer. Legacy fields are never written by
// new code, so they are zeroed regardless of the payload.
func (s *InfluencersService) Create(influencer *models.Influencer) error {
	if influencer.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	influencer.ID = uuid.New()
	influencer.LegacyTrustScore = 0
	influencer.LegacyFollowerCount = 0
	influencer.Revision = 0

	if err := s.db.Create(influencer).Error; err != nil {
		return fmt.Errorf("failed to create influencer: %w", err)
	}
	return nil
}

// List returns all influencers with their claims in analysis order.
func (s *InfluencersService) List() ([]models.Influencer, error) {
	var influencers []models.Influencer
	err := s.db.Preload("Claims", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).Order("created_at ASC").Find(&influencers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list influencers: %w", err)
	}
	return influencers, nil
}

// Get returns one influencer with claims in analysis order.
func (s *InfluencersService) Get(id uuid.UUID) (*models.Influencer, error) {
	var influencer models.Influencer
	err := s.db.Preload("Claims", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).First(&influencer, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load influencer: %w", err)
	}
	return &influencer, nil
}

// UpdateInput carries the updatable influencer fields. Nil pointers
// leave the stored value untouched.
type UpdateInput struct {
	Name           *string                `json:"name"`
	Title          *string                `json:"title"`
	Specialties    *[]string              `json:"specialties"`
	Tags           *[]string              `json:"tags"`
	Credentials    *models.Credentials    `json:"credentials"`
	SocialMetrics  *models.SocialMetrics  `json:"social_metrics"`
	ContentSources *models.ContentSources `json:"content_sources"`
	IsActive       *bool                  `json:"is_active"`
}

// Update applies the given fields to an existing influencer.
func (s *InfluencersService) Update(id uuid.UUID, input UpdateInput) (*models.Influencer, error) {
	influencer, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrValidation)
		}
		influencer.Name = *input.Name
	}
	if input.Title != nil {
		influencer.Title = *input.Title
	}
	if input.Specialties != nil {
		influencer.Specialties = *input.Specialties
	}
	if input.Tags != nil {
		influencer.Tags = *input.Tags
	}
	if input.Credentials != nil {
		influencer.Credentials = *input.Credentials
	}
	if input.SocialMetrics != nil {
		influencer.SocialMetrics = *input.SocialMetrics
	}
	if input.ContentSources != nil {
		influencer.ContentSources = *input.ContentSources
	}
	if input.IsActive != nil {
		influencer.IsActive = *input.IsActive
	}

	if err := s.db.Save(influencer).Error; err != nil {
		return nil, fmt.Errorf("failed to update influencer: %w", err)
	}
	return influencer, nil
}

// Delete removes an influencer and all of its claims.
func (s *InfluencersService) Delete(id uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("influencer_id = ?", id).Delete(&models.Claim{}).Error; err != nil {
			return fmt.Errorf("failed to delete claims: %w", err)
		}

		result := tx.Delete(&models.Influencer{}, "id = ?", id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete influencer: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// Analyze runs the discovery/verification pipeline for one influencer
// and persists the result as a wholesale replacement of its claims and
// analysis metrics. A revision check rejects the write if another run
// finished in between, so the earlier result is never silently lost.
func (s *InfluencersService) Analyze(ctx context.Context, id uuid.UUID) (*models.Influencer, error) {
	influencer, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	result, err := s.pipeline.Analyze(ctx, influencer.Name)
	if err != nil {
		return nil, err
	}

	if err := s.persistAnalysis(influencer, result); err != nil {
		return nil, err
	}

	log.Printf("Analyzed %s: %d claims, trust score %d", influencer.Name, len(result.Claims), result.TrustScore)
	return s.Get(id)
}

func (s *InfluencersService) persistAnalysis(influencer *models.Influencer, result *analysis.Result) error {
	lastAnalysis := result.LastUpdated
	metrics := models.AnalysisMetrics{
		TrustScore:         result.TrustScore,
		ClaimsAnalyzed:     len(result.Claims),
		VerifiedClaims:     result.Stats.ByStatus[models.StatusVerified],
		QuestionableClaims: result.Stats.ByStatus[models.StatusQuestionable],
		DebunkedClaims:     result.Stats.ByStatus[models.StatusDebunked],
		LastAnalysis:       &lastAnalysis,
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		// Compare-and-swap on the revision read before the pipeline ran.
		updates := map[string]interface{}{
			"analysis_trust_score":         metrics.TrustScore,
			"analysis_claims_analyzed":     metrics.ClaimsAnalyzed,
			"analysis_verified_claims":     metrics.VerifiedClaims,
			"analysis_questionable_claims": metrics.QuestionableClaims,
			"analysis_debunked_claims":     metrics.DebunkedClaims,
			"analysis_last_analysis":       metrics.LastAnalysis,
			"revision":                     influencer.Revision + 1,
			"updated_at":                   time.Now().UTC(),
		}
		res := tx.Model(&models.Influencer{}).
			Where("id = ? AND revision = ?", influencer.ID, influencer.Revision).
			Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("failed to update analysis metrics: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrConcurrentAnalysis
		}

		if err := tx.Where("influencer_id = ?", influencer.ID).Delete(&models.Claim{}).Error; err != nil {
			return fmt.Errorf("failed to clear previous claims: %w", err)
		}

		for i := range result.Claims {
			claim := result.Claims[i]
			claim.ID = uuid.New()
			claim.InfluencerID = influencer.ID
			if err := tx.Create(&claim).Error; err != nil {
				return fmt.Errorf("failed to store claim: %w", err)
			}
		}
		return nil
	})
}

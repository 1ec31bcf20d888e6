// Package ai provides the generative-content providers backing the
// discovery and verification ports.
package ai

import (
	"regexp"
	"strings"

	"health-claims/internal/analysis"
	"health-claims/internal/catalog"
	"health-claims/internal/models"
)

// Provider bundles the two analysis ports a backend must implement.
type Provider interface {
	analysis.ContentDiscovery
	analysis.ClaimVerifier
}

// FactoryConfig selects and configures a provider backend.
type FactoryConfig struct {
	Provider      string // "gemini" or "perplexity"
	GeminiKey     string
	PerplexityKey string
	Model         string
}

// NewProvider returns a provider-agnostic discovery/verification client.
func NewProvider(cfg FactoryConfig) Provider {
	switch cfg.Provider {
	case "perplexity":
		return NewPerplexityClient(cfg.PerplexityKey, cfg.Model)
	default:
		return NewGeminiClient(cfg.GeminiKey, cfg.Model)
	}
}

var jsonPattern = regexp.MustCompile(`\{[\s\S]*\}|\[[\s\S]*\]`)

// extractJSON pulls the first JSON object or array out of a model
// response that may be wrapped in prose or markdown fences.
func extractJSON(text string) string {
	if match := jsonPattern.FindString(text); match != "" {
		return match
	}
	return text
}

// verdictFromProse derives a structured verdict from a free-text
// analysis when the provider ignores the JSON format instructions.
func verdictFromProse(statement, text string) *analysis.Verdict {
	return &analysis.Verdict{
		Status:     string(statusFromProse(text)),
		Category:   categoryFromStatement(statement),
		Confidence: confidenceFromProse(text),
		Evidence:   text,
		Sources:    []string{},
	}
}

func statusFromProse(text string) models.VerificationStatus {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "evidence supports") || strings.Contains(lower, "research confirms"):
		return models.StatusVerified
	case strings.Contains(lower, "limited evidence") || strings.Contains(lower, "more research needed"):
		return models.StatusQuestionable
	case strings.Contains(lower, "no evidence") || strings.Contains(lower, "contradicts"):
		return models.StatusDebunked
	}
	return models.StatusNeedsReview
}

func categoryFromStatement(statement string) string {
	lower := strings.ToLower(statement)
	switch {
	case strings.Contains(lower, "diet") || strings.Contains(lower, "food") || strings.Contains(lower, "nutrition"):
		return "Nutrition"
	case strings.Contains(lower, "anxiety") || strings.Contains(lower, "depression") || strings.Contains(lower, "stress"):
		return "Mental Health"
	}
	return catalog.CategoryMedicine
}

func confidenceFromProse(text string) int {
	indicators := []string{
		"strong evidence",
		"multiple studies",
		"research confirms",
		"clinical trials",
	}

	confidence := 50
	lower := strings.ToLower(text)
	for _, indicator := range indicators {
		if strings.Contains(lower, indicator) {
			confidence += 10
		}
	}
	return models.ClampConfidence(confidence)
}

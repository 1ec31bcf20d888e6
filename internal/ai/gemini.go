package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"health-claims/internal/analysis"
	"health-claims/internal/catalog"
)

const geminiEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent?key=%s"

// GeminiClient discovers and verifies health claims through the Google
// Generative Language API. It implements both analysis ports.
type GeminiClient struct {
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewGeminiClient creates a Gemini-backed provider.
func NewGeminiClient(apiKey string, model string) *GeminiClient {
	if model == "" {
		model = "gemini-pro"
	}
	return &GeminiClient{
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// Discover asks the model for recent health claims made by the subject.
func (c *GeminiClient) Discover(ctx context.Context, name string) ([]analysis.RawClaim, error) {
	prompt := fmt.Sprintf(`Analyze %s's recent health claims and list 3-5 specific claims they have made.
Focus on their most notable statements about health, nutrition, or medical advice.
Return ONLY a JSON array where each element has the fields:
"statement" (the claim text), "source" (where it was made, e.g. podcast, social media, book),
"date" (ISO 8601 timestamp of the statement).`, name)

	text, err := c.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var claims []analysis.RawClaim
	if err := json.Unmarshal([]byte(extractJSON(text)), &claims); err != nil {
		return nil, fmt.Errorf("gemini discovery returned unparseable payload: %w", err)
	}
	return claims, nil
}

// Verify checks one claim statement and returns a structured verdict.
func (c *GeminiClient) Verify(ctx context.Context, statement string) (*analysis.Verdict, error) {
	prompt := fmt.Sprintf(`As a medical researcher, analyze this health claim in detail: %q
Consider current peer-reviewed research and the general scientific consensus.
Return ONLY a JSON object with the fields:
"verification_status" (one of Verified, Questionable, Debunked, Needs Review),
"category" (one of: %s),
"confidence" (integer 0-100),
"evidence" (short summary of the scientific evidence),
"sources" (array of citation strings).`, statement, strings.Join(catalog.Categories(), ", "))

	text, err := c.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var verdict analysis.Verdict
	if err := json.Unmarshal([]byte(extractJSON(text)), &verdict); err != nil {
		// Some model revisions answer in prose despite the instructions.
		// Derive a verdict from the analysis text instead of failing.
		return verdictFromProse(statement, text), nil
	}
	return &verdict, nil
}

func (c *GeminiClient) generate(ctx context.Context, prompt string) (string, error) {
	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{"parts": []map[string]string{{"text": prompt}}},
		},
	}
	b, _ := json.Marshal(reqBody)

	url := fmt.Sprintf(geminiEndpoint, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini API error: %s", string(body))
	}

	var result struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", err
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from Gemini")
	}
	return result.Candidates[0].Content.Parts[0].Text, nil
}

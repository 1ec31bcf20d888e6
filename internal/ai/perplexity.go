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

const perplexityEndpoint = "https://api.perplexity.ai/chat/completions"

// PerplexityClient discovers and verifies health claims through the
// Perplexity online chat-completions API.
type PerplexityClient struct {
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewPerplexityClient creates a Perplexity-backed provider.
func NewPerplexityClient(apiKey string, model string) *PerplexityClient {
	if model == "" {
		model = "sonar"
	}
	return &PerplexityClient{
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// Discover asks the model for recent health claims made by the subject.
func (c *PerplexityClient) Discover(ctx context.Context, name string) ([]analysis.RawClaim, error) {
	prompt := fmt.Sprintf(`Find recent health-related content from %s.
Focus on specific health claims they have made.
Return ONLY a JSON array of objects with fields "statement", "source", "date" (ISO 8601).`, name)

	text, err := c.chat(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var claims []analysis.RawClaim
	if err := json.Unmarshal([]byte(extractJSON(text)), &claims); err != nil {
		return nil, fmt.Errorf("perplexity discovery returned unparseable payload: %w", err)
	}
	return claims, nil
}

// Verify checks one claim statement and returns a structured verdict.
func (c *PerplexityClient) Verify(ctx context.Context, statement string) (*analysis.Verdict, error) {
	prompt := fmt.Sprintf(`Analyze this health claim: %q
Provide a verification status (Verified/Questionable/Debunked/Needs Review),
a scientific evidence summary, a confidence score (0-100), and a category (one of: %s).
Return ONLY a JSON object with fields "verification_status", "category",
"confidence", "evidence", "sources".`, statement, strings.Join(catalog.Categories(), ", "))

	text, err := c.chat(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var verdict analysis.Verdict
	if err := json.Unmarshal([]byte(extractJSON(text)), &verdict); err != nil {
		return verdictFromProse(statement, text), nil
	}
	return &verdict, nil
}

func (c *PerplexityClient) chat(ctx context.Context, prompt string) (string, error) {
	reqBody := map[string]interface{}{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	}
	b, _ := json.Marshal(reqBody)

	req, err := http.NewRequestWithContext(ctx, "POST", perplexityEndpoint, bytes.NewBuffer(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

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
		return "", fmt.Errorf("perplexity API error: %s", string(body))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", err
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no response from Perplexity")
	}
	return result.Choices[0].Message.Content, nil
}

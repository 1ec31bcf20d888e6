package analysis

import (
	"context"
	"sync"
	"time"

	"health-claims/internal/catalog"
	"health-claims/internal/models"

	"github.com/lib/pq"
)

// Config controls pipeline concurrency and per-call verification policy.
type Config struct {
	// MaxConcurrent bounds the number of in-flight verification calls
	// so throughput stays independent of per-run claim count.
	MaxConcurrent int
	// VerifyTimeout applies to each individual verification call.
	VerifyTimeout time.Duration
	// MaxAttempts is the total attempts per statement before the claim
	// is recorded with Error status.
	MaxAttempts int
}

// DefaultConfig returns the pipeline defaults used by the server.
func DefaultConfig() Config {
	return Config{
		MaxConcurrent: 4,
		VerifyTimeout: 30 * time.Second,
		MaxAttempts:   2,
	}
}

// Result is the output of one analysis run. The caller persists it as a
// wholesale replacement of the influencer's claims and analysis metrics.
type Result struct {
	Name        string         `json:"name"`
	TrustScore  int            `json:"trust_score"`
	Stats       Stats          `json:"stats"`
	Claims      []models.Claim `json:"claims"`
	LastUpdated time.Time      `json:"last_updated"`
}

// Pipeline orchestrates discovery, per-claim verification, scoring,
// and stats aggregation for one subject.
type Pipeline struct {
	discovery ContentDiscovery
	verifier  ClaimVerifier
	cfg       Config
	now       func() time.Time
}

// NewPipeline creates a pipeline over the given ports.
func NewPipeline(discovery ContentDiscovery, verifier ClaimVerifier, cfg Config) *Pipeline {
	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = 1
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.VerifyTimeout <= 0 {
		cfg.VerifyTimeout = 30 * time.Second
	}
	return &Pipeline{
		discovery: discovery,
		verifier:  verifier,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Analyze runs the full pipeline for one subject. Discovery failure
// aborts the run; verification failures are captured per claim and
// never abort the batch. Zero discovered claims is a valid result.
func (p *Pipeline) Analyze(ctx context.Context, name string) (*Result, error) {
	raw, err := p.discovery.Discover(ctx, name)
	if err != nil {
		return nil, &DiscoveryError{Name: name, Err: err}
	}

	claims := p.verifyAll(ctx, raw)

	return &Result{
		Name:        name,
		TrustScore:  TrustScore(claims),
		Stats:       BuildStats(claims),
		Claims:      claims,
		LastUpdated: p.now().UTC(),
	}, nil
}

// verifyAll fans verification calls out over a bounded semaphore.
// Results land at their discovery index, so output order matches input
// order regardless of completion order.
func (p *Pipeline) verifyAll(ctx context.Context, raw []RawClaim) []models.Claim {
	claims := make([]models.Claim, len(raw))
	sem := make(chan struct{}, p.cfg.MaxConcurrent)
	var wg sync.WaitGroup

	for i, rc := range raw {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, rc RawClaim) {
			defer wg.Done()
			defer func() { <-sem }()
			claims[i] = p.verifyOne(ctx, i, rc)
		}(i, rc)
	}

	wg.Wait()
	return claims
}

func (p *Pipeline) verifyOne(ctx context.Context, position int, rc RawClaim) models.Claim {
	claim := models.Claim{
		Position:     position,
		Statement:    rc.Statement,
		Source:       rc.Source,
		Date:         rc.Date,
		DateAnalyzed: p.now().UTC(),
	}

	verdict, err := p.verifyWithRetry(ctx, rc.Statement)
	if err != nil {
		claim.VerificationStatus = models.StatusError
		claim.Category = catalog.CategoryUnknown
		claim.Confidence = 0
		claim.Evidence = "verification failed"
		claim.Sources = pq.StringArray{}
		return claim
	}

	claim.VerificationStatus = models.ParseVerificationStatus(verdict.Status)
	claim.Category = verdict.Category
	if claim.Category == "" {
		claim.Category = catalog.CategoryUnknown
	}
	claim.Confidence = models.ClampConfidence(verdict.Confidence)
	claim.Evidence = verdict.Evidence
	claim.Sources = pq.StringArray(verdict.Sources)
	return claim
}

func (p *Pipeline) verifyWithRetry(ctx context.Context, statement string) (*Verdict, error) {
	var lastErr error
	for attempt := 1; attempt <= p.cfg.MaxAttempts; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, p.cfg.VerifyTimeout)
		verdict, err := p.verifier.Verify(callCtx, statement)
		cancel()

		if err == nil {
			return verdict, nil
		}
		lastErr = err

		// Don't burn attempts once the run itself is cancelled.
		if ctx.Err() != nil {
			break
		}
	}
	return nil, lastErr
}

package analysis

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"health-claims/internal/catalog"
	"health-claims/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockDiscovery is a mock implementation of the ContentDiscovery port
type MockDiscovery struct {
	mock.Mock
}

func (m *MockDiscovery) Discover(ctx context.Context, name string) ([]RawClaim, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]RawClaim), args.Error(1)
}

// MockVerifier is a mock implementation of the ClaimVerifier port
type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) Verify(ctx context.Context, statement string) (*Verdict, error) {
	args := m.Called(ctx, statement)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Verdict), args.Error(1)
}

// verifierFunc adapts a function to the ClaimVerifier port for tests
// that need per-call behavior.
type verifierFunc func(ctx context.Context, statement string) (*Verdict, error)

func (f verifierFunc) Verify(ctx context.Context, statement string) (*Verdict, error) {
	return f(ctx, statement)
}

func rawClaims(n int) []RawClaim {
	claims := make([]RawClaim, n)
	for i := range claims {
		claims[i] = RawClaim{
			Statement: fmt.Sprintf("claim %d", i),
			Source:    "Podcast",
			Date:      time.Date(2025, 1, 1+i, 0, 0, 0, 0, time.UTC),
		}
	}
	return claims
}

func TestPipeline_Analyze(t *testing.T) {
	discovery := &MockDiscovery{}
	verifier := &MockVerifier{}

	raw := rawClaims(2)
	discovery.On("Discover", mock.Anything, "Dr. Example").Return(raw, nil)
	verifier.On("Verify", mock.Anything, "claim 0").Return(&Verdict{
		Status:     "Verified",
		Category:   "Nutrition",
		Confidence: 80,
		Evidence:   "supported by multiple trials",
		Sources:    []string{"PubMed"},
	}, nil)
	verifier.On("Verify", mock.Anything, "claim 1").Return(&Verdict{
		Status:     "Debunked",
		Category:   "Supplements",
		Confidence: 100,
		Evidence:   "contradicted by meta-analysis",
		Sources:    []string{"Cochrane Library"},
	}, nil)

	p := NewPipeline(discovery, verifier, DefaultConfig())
	result, err := p.Analyze(context.Background(), "Dr. Example")

	assert.NoError(t, err)
	assert.Equal(t, "Dr. Example", result.Name)
	assert.Len(t, result.Claims, 2)
	assert.Equal(t, 40, result.TrustScore)
	assert.Equal(t, 2, result.Stats.Total)
	assert.Equal(t, models.StatusVerified, result.Claims[0].VerificationStatus)
	assert.Equal(t, models.StatusDebunked, result.Claims[1].VerificationStatus)
	assert.Equal(t, "claim 0", result.Claims[0].Statement)
	assert.Equal(t, 0, result.Claims[0].Position)
	assert.Equal(t, 1, result.Claims[1].Position)
	assert.WithinDuration(t, time.Now(), result.Claims[0].DateAnalyzed, time.Minute)
	assert.WithinDuration(t, time.Now(), result.LastUpdated, time.Minute)

	discovery.AssertExpectations(t)
	verifier.AssertExpectations(t)
}

func TestPipeline_Analyze_EmptyDiscoveryIsValid(t *testing.T) {
	discovery := &MockDiscovery{}
	verifier := &MockVerifier{}
	discovery.On("Discover", mock.Anything, "Unknown Person").Return([]RawClaim{}, nil)

	p := NewPipeline(discovery, verifier, DefaultConfig())
	result, err := p.Analyze(context.Background(), "Unknown Person")

	assert.NoError(t, err)
	assert.Empty(t, result.Claims)
	assert.Equal(t, 0, result.TrustScore)
	assert.Equal(t, 0, result.Stats.Total)
	verifier.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
}

func TestPipeline_Analyze_DiscoveryFailureAborts(t *testing.T) {
	discovery := &MockDiscovery{}
	verifier := &MockVerifier{}
	discovery.On("Discover", mock.Anything, "Dr. Example").Return(nil, errors.New("provider unavailable"))

	p := NewPipeline(discovery, verifier, DefaultConfig())
	result, err := p.Analyze(context.Background(), "Dr. Example")

	assert.Nil(t, result)
	var discErr *DiscoveryError
	assert.ErrorAs(t, err, &discErr)
	assert.Equal(t, "Dr. Example", discErr.Name)
}

func TestPipeline_Analyze_VerifierFailureNeverAbortsBatch(t *testing.T) {
	discovery := &MockDiscovery{}
	discovery.On("Discover", mock.Anything, "Dr. Example").Return(rawClaims(3), nil)

	verifier := verifierFunc(func(ctx context.Context, statement string) (*Verdict, error) {
		if statement == "claim 1" {
			return nil, errors.New("rate limited")
		}
		return &Verdict{Status: "Verified", Category: "Nutrition", Confidence: 90}, nil
	})

	cfg := DefaultConfig()
	cfg.MaxAttempts = 1
	p := NewPipeline(discovery, verifier, cfg)
	result, err := p.Analyze(context.Background(), "Dr. Example")

	assert.NoError(t, err)
	assert.Len(t, result.Claims, 3)

	failed := result.Claims[1]
	assert.Equal(t, models.StatusError, failed.VerificationStatus)
	assert.Equal(t, 0, failed.Confidence)
	assert.Equal(t, "verification failed", failed.Evidence)
	assert.Equal(t, catalog.CategoryUnknown, failed.Category)

	assert.Equal(t, models.StatusVerified, result.Claims[0].VerificationStatus)
	assert.Equal(t, models.StatusVerified, result.Claims[2].VerificationStatus)
	assert.Equal(t, 1, result.Stats.ByStatus[models.StatusError])
}

func TestPipeline_Analyze_PreservesDiscoveryOrder(t *testing.T) {
	discovery := &MockDiscovery{}
	raw := rawClaims(8)
	discovery.On("Discover", mock.Anything, "Dr. Example").Return(raw, nil)

	// Later claims finish first; output order must still match input order.
	verifier := verifierFunc(func(ctx context.Context, statement string) (*Verdict, error) {
		var idx int
		fmt.Sscanf(statement, "claim %d", &idx)
		time.Sleep(time.Duration(len(raw)-idx) * time.Millisecond)
		return &Verdict{Status: "Verified", Category: "Nutrition", Confidence: idx}, nil
	})

	cfg := DefaultConfig()
	cfg.MaxConcurrent = 4
	p := NewPipeline(discovery, verifier, cfg)
	result, err := p.Analyze(context.Background(), "Dr. Example")

	assert.NoError(t, err)
	assert.Len(t, result.Claims, len(raw))
	for i, claim := range result.Claims {
		assert.Equal(t, fmt.Sprintf("claim %d", i), claim.Statement)
		assert.Equal(t, i, claim.Confidence)
	}
}

func TestPipeline_Analyze_BoundsConcurrency(t *testing.T) {
	discovery := &MockDiscovery{}
	discovery.On("Discover", mock.Anything, "Dr. Example").Return(rawClaims(10), nil)

	var inFlight, peak int64
	verifier := verifierFunc(func(ctx context.Context, statement string) (*Verdict, error) {
		n := atomic.AddInt64(&inFlight, 1)
		for {
			p := atomic.LoadInt64(&peak)
			if n <= p || atomic.CompareAndSwapInt64(&peak, p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt64(&inFlight, -1)
		return &Verdict{Status: "Verified", Confidence: 50}, nil
	})

	cfg := DefaultConfig()
	cfg.MaxConcurrent = 2
	p := NewPipeline(discovery, verifier, cfg)
	_, err := p.Analyze(context.Background(), "Dr. Example")

	assert.NoError(t, err)
	assert.LessOrEqual(t, atomic.LoadInt64(&peak), int64(2))
}

func TestPipeline_Analyze_RetriesBeforeMarkingError(t *testing.T) {
	discovery := &MockDiscovery{}
	discovery.On("Discover", mock.Anything, "Dr. Example").Return(rawClaims(1), nil)

	var calls int64
	verifier := verifierFunc(func(ctx context.Context, statement string) (*Verdict, error) {
		if atomic.AddInt64(&calls, 1) == 1 {
			return nil, errors.New("transient")
		}
		return &Verdict{Status: "Verified", Category: "Nutrition", Confidence: 70}, nil
	})

	cfg := DefaultConfig()
	cfg.MaxAttempts = 2
	p := NewPipeline(discovery, verifier, cfg)
	result, err := p.Analyze(context.Background(), "Dr. Example")

	assert.NoError(t, err)
	assert.Equal(t, int64(2), atomic.LoadInt64(&calls))
	assert.Equal(t, models.StatusVerified, result.Claims[0].VerificationStatus)
}

func TestPipeline_Analyze_CoercesUnknownStatusAndConfidence(t *testing.T) {
	discovery := &MockDiscovery{}
	discovery.On("Discover", mock.Anything, "Dr. Example").Return(rawClaims(1), nil)

	verifier := verifierFunc(func(ctx context.Context, statement string) (*Verdict, error) {
		return &Verdict{Status: "Probably Fine", Confidence: 250}, nil
	})

	p := NewPipeline(discovery, verifier, DefaultConfig())
	result, err := p.Analyze(context.Background(), "Dr. Example")

	assert.NoError(t, err)
	assert.Equal(t, models.StatusNeedsReview, result.Claims[0].VerificationStatus)
	assert.Equal(t, 100, result.Claims[0].Confidence)
	assert.Equal(t, catalog.CategoryUnknown, result.Claims[0].Category)
}

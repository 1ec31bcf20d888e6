// Package analysis implements the claim verification, scoring, and
// aggregation pipeline. Discovery and verification are external
// capabilities reached through the ports defined here.
package analysis

import (
	"context"
	"fmt"
	"time"
)

// RawClaim is an unverified statement returned by content discovery.
type RawClaim struct {
	Statement string    `json:"statement"`
	Source    string    `json:"source"`
	Date      time.Time `json:"date"`
}

// Verdict is the structured result of verifying one statement. Status
// arrives as provider text and is coerced to the closed enum by the
// pipeline, never stored verbatim.
type Verdict struct {
	Status     string   `json:"verification_status"`
	Category   string   `json:"category"`
	Confidence int      `json:"confidence"`
	Evidence   string   `json:"evidence"`
	Sources    []string `json:"sources"`
}

// ContentDiscovery finds recent health claims made by a named subject.
// An empty result is valid: the subject made no discoverable claims.
type ContentDiscovery interface {
	Discover(ctx context.Context, name string) ([]RawClaim, error)
}

// ClaimVerifier checks a single claim statement against the provider's
// knowledge source. Calls are independent; a failure on one statement
// must never affect sibling calls in the same batch.
type ClaimVerifier interface {
	Verify(ctx context.Context, statement string) (*Verdict, error)
}

// DiscoveryError reports a content discovery failure. It aborts the
// whole analysis run, unlike per-claim verification failures.
type DiscoveryError struct {
	Name string
	Err  error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("discovering content for %q: %v", e.Name, e.Err)
}

func (e *DiscoveryError) Unwrap() error {
	return e.Err
}

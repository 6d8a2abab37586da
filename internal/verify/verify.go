package verify

import "context"

// Verdict is the verifier's advisory opinion on an estimate. Only SingleCoin
// changes control flow upstream; Rating and Reason are informational.
type Verdict struct {
	SingleCoin bool   `json:"singleCoin"`
	Rating     string `json:"verdict"` // "low", "fair" or "high"
	Reason     string `json:"reason"`  // at most 120 characters
}

// Verifier defines the interface for estimate verification operations
type Verifier interface {
	// Classify asks the model whether the photos show a single coin and
	// whether the estimate is plausible. A nil Verdict with an error means
	// the verifier has no opinion.
	Classify(ctx context.Context, front, back []byte, estimate float64, titleHint string) (*Verdict, error)
	// Close closes the verifier and releases resources
	Close() error
}

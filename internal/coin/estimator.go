package coin

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Antkiler2012/Coin-Vault/internal/ocr"
	"github.com/Antkiler2012/Coin-Vault/internal/search"
	"github.com/Antkiler2012/Coin-Vault/internal/verify"
)

// User-visible estimation failures. Everything else that can go wrong with an
// external collaborator is swallowed at the boundary and degrades to no data.
var (
	// ErrMissingImage means one or both coin faces are absent
	ErrMissingImage = errors.New("both coin faces are required")
	// ErrInvalidYear means the year override is not a 4-digit string
	ErrInvalidYear = errors.New("year must be a 4-digit string")
	// ErrNotSingleCoin means the verifier decided the photos do not show a
	// single coin
	ErrNotSingleCoin = errors.New("photos do not show a single coin")
)

// Estimation outcome labels for metrics
const (
	outcomeOK         = "ok"
	outcomeNoListings = "no_listings"
	outcomeNoPrices   = "no_prices"
	outcomeRejected   = "rejected"
)

// Estimator turns two coin photos into a single price estimate
type Estimator struct {
	recognizer ocr.Recognizer
	searcher   search.Searcher
	verifier   verify.Verifier // nil disables verification
	policy     BoundsPolicy
	metrics    *Metrics
}

// NewEstimator creates a new Estimator with the default bounds policy. The
// verifier is optional and may be nil.
func NewEstimator(recognizer ocr.Recognizer, searcher search.Searcher, verifier verify.Verifier, metrics *Metrics) *Estimator {
	return NewEstimatorWithPolicy(recognizer, searcher, verifier, metrics, DefaultBoundsPolicy)
}

// NewEstimatorWithPolicy creates an Estimator with a custom bounds policy
func NewEstimatorWithPolicy(recognizer ocr.Recognizer, searcher search.Searcher, verifier verify.Verifier, metrics *Metrics, policy BoundsPolicy) *Estimator {
	return &Estimator{
		recognizer: recognizer,
		searcher:   searcher,
		verifier:   verifier,
		policy:     policy,
		metrics:    metrics,
	}
}

// Estimate runs the full pipeline: OCR on both faces, query building, shopping
// search, filtering, bounding, robust statistics and the optional verifier
// check. A result with Count zero is the canonical "no usable data" outcome.
// There are no retries; each external call is a single definitive attempt.
func (e *Estimator) Estimate(ctx context.Context, front, back []byte, yearOverride string) (*StatsResult, error) {
	if len(front) == 0 || len(back) == 0 {
		return nil, ErrMissingImage
	}
	if yearOverride != "" && !yearOverridePattern.MatchString(yearOverride) {
		return nil, ErrInvalidYear
	}

	// Both faces are independent; recognize them concurrently and merge
	// after both complete
	var frontText, backText string
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		frontText = e.recognize(ctx, front, "front")
	}()
	go func() {
		defer wg.Done()
		backText = e.recognize(ctx, back, "back")
	}()
	wg.Wait()

	hints := ExtractHints(frontText, backText).WithYearOverride(yearOverride)
	query := BuildQuery(hints, frontText, backText)
	slog.Info("Built search query", "query", query, "year", hints.Year, "denomination", hints.Denomination, "country", hints.Country)

	listings := e.search(ctx, query)
	filtered := FilterListings(listings)
	e.metrics.ObserveListings(len(listings), len(filtered))
	if len(filtered) == 0 {
		slog.Info("No coin-like listings", "received", len(listings))
		e.metrics.IncEstimate(outcomeNoListings)
		return &StatsResult{}, nil
	}

	prices := make([]float64, 0, len(filtered))
	for _, l := range filtered {
		if l.ExtractedPrice != nil {
			prices = append(prices, *l.ExtractedPrice)
		}
	}
	if len(prices) == 0 {
		slog.Info("No priced listings", "filtered", len(filtered))
		e.metrics.IncEstimate(outcomeNoPrices)
		return &StatsResult{}, nil
	}

	stats := ComputeRobustStats(prices, e.policy.BoundsFor(hints))

	// The top listing is a representative, not the cheapest or priciest
	top := filtered[0]

	avg := stats.Median
	min := stats.Trimmed[0]
	max := stats.Trimmed[len(stats.Trimmed)-1]
	result := &StatsResult{
		Avg:   &avg,
		Min:   &min,
		Max:   &max,
		Count: len(stats.Trimmed),
		Top:   &top,
	}

	if err := e.checkSingleCoin(ctx, front, back, avg, top.Title); err != nil {
		e.metrics.IncEstimate(outcomeRejected)
		return nil, err
	}

	e.metrics.IncEstimate(outcomeOK)
	return result, nil
}

// recognize swallows OCR failures into an empty contribution
func (e *Estimator) recognize(ctx context.Context, image []byte, face string) string {
	start := time.Now()
	text, err := e.recognizer.RecognizeText(ctx, image, "")
	e.metrics.ObserveCall("ocr", time.Since(start))
	if err != nil {
		slog.Warn("OCR failed, continuing without text", "face", face, "error", err)
		e.metrics.IncExternalError("ocr")
		return ""
	}
	return text
}

// search swallows shopping-search failures into an empty listing sequence
func (e *Estimator) search(ctx context.Context, query string) []search.Listing {
	start := time.Now()
	listings, err := e.searcher.Search(ctx, query)
	e.metrics.ObserveCall("search", time.Since(start))
	if err != nil {
		slog.Warn("Shopping search failed, treating as empty", "error", err)
		e.metrics.IncExternalError("search")
		return nil
	}
	return listings
}

// checkSingleCoin runs the advisory verifier. Only an explicit "not a single
// coin" answer changes control flow; an unreachable or unparsable verifier
// means no opinion and the estimate stands.
func (e *Estimator) checkSingleCoin(ctx context.Context, front, back []byte, estimate float64, titleHint string) error {
	if e.verifier == nil {
		return nil
	}

	start := time.Now()
	verdict, err := e.verifier.Classify(ctx, front, back, estimate, titleHint)
	e.metrics.ObserveCall("verify", time.Since(start))
	if err != nil || verdict == nil {
		slog.Warn("Verifier has no opinion", "error", err)
		e.metrics.IncExternalError("verify")
		return nil
	}

	if !verdict.SingleCoin {
		slog.Info("Verifier rejected the scan", "reason", verdict.Reason)
		return ErrNotSingleCoin
	}

	slog.Info("Verifier opinion", "verdict", verdict.Rating, "reason", verdict.Reason)
	return nil
}

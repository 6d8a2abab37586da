package coin

import (
	"time"

	"github.com/Antkiler2012/Coin-Vault/internal/search"
)

// CollectedCoin represents a coin saved to the user's collection
type CollectedCoin struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Avg     *float64  `json:"avg,omitempty"` // Estimated value in USD
	Image   string    `json:"image,omitempty"`
	AddedAt time.Time `json:"added_at"`
}

// Hints are the structured attributes inferred from OCR text. An empty field
// means the attribute is unknown.
type Hints struct {
	Year         string `json:"year,omitempty"`
	Denomination string `json:"denomination,omitempty"`
	Country      string `json:"country,omitempty"`
}

// Bounds is a plausible price envelope, open on either side when nil
type Bounds struct {
	Min *float64
	Max *float64
}

// RobustStats holds the quartile summary of a price set. P25, P75 and IQR are
// computed before trimming; Median is recomputed over the trimmed set so a
// single mispriced listing cannot pull the estimate.
type RobustStats struct {
	Median  float64
	P25     float64
	P75     float64
	IQR     float64
	Trimmed []float64
}

// StatsResult is the externally visible estimate. A Count of zero (and nil
// Avg/Min/Max) is the canonical "no usable data" outcome, not an error.
type StatsResult struct {
	Avg   *float64        `json:"avg"`
	Min   *float64        `json:"min"`
	Max   *float64        `json:"max"`
	Count int             `json:"count"`
	Top   *search.Listing `json:"top,omitempty"`
}

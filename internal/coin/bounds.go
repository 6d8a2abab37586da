package coin

import "strconv"

// ModernYearFloor separates modern circulation coins from potentially
// collectible older ones. Envelope rules only apply at or above it; an unknown
// year is assumed modern, which is conservative toward a low price.
const ModernYearFloor = 1990

// BoundsRule matches hints against a denomination set and an optional country
// and yields a price envelope
type BoundsRule struct {
	Denominations []string
	Country       string // empty matches any country
	Min           float64
	Max           float64
}

// BoundsPolicy is an ordered rule table; the first matching rule wins
type BoundsPolicy []BoundsRule

// smallDenominations are the small base-metal units whose modern issues are
// near-worthless
var smallDenominations = []string{
	"grosz", "groszy", "cent", "cents", "centavo", "centavos", "penny", "pence",
	"peso", "pesos",
}

// DefaultBoundsPolicy holds the hand-tuned envelopes. The constants are
// configuration, not derived values; swap the table to change behavior.
var DefaultBoundsPolicy = BoundsPolicy{
	{Denominations: smallDenominations, Country: "poland", Min: 0.01, Max: 1.5},
	{Denominations: smallDenominations, Min: 0.01, Max: 2.0},
}

// BoundsFor derives the price envelope for the hints. Coins dated before the
// modern floor, and denominations outside every rule, are unbounded.
func (p BoundsPolicy) BoundsFor(hints Hints) Bounds {
	if hints.Year != "" {
		if year, err := strconv.Atoi(hints.Year); err == nil && year < ModernYearFloor {
			return Bounds{}
		}
	}

	for _, rule := range p {
		if rule.matches(hints) {
			min, max := rule.Min, rule.Max
			return Bounds{Min: &min, Max: &max}
		}
	}
	return Bounds{}
}

func (r BoundsRule) matches(hints Hints) bool {
	if r.Country != "" && r.Country != hints.Country {
		return false
	}
	for _, d := range r.Denominations {
		if d == hints.Denomination {
			return true
		}
	}
	return false
}

// Contains reports whether the price falls inside the envelope
func (b Bounds) Contains(price float64) bool {
	if b.Min != nil && price < *b.Min {
		return false
	}
	if b.Max != nil && price > *b.Max {
		return false
	}
	return true
}

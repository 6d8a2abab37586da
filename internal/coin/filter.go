package coin

import (
	"strings"

	"github.com/Antkiler2012/Coin-Vault/internal/search"
)

// includeTerms mark a listing title as coin-like
var includeTerms = []string{
	"coin", "pesos", "peso", "grosz", "groszy", "dos y medio",
	"km:", "mint", "uncirculated",
}

// excludeTerms mark a listing as jewelry, a set, or graded/bulk/precious-metal
// material whose prices say nothing about a single circulated coin. An exclude
// match always wins over an include match.
var excludeTerms = []string{
	"ring", "bracelet", "pendant", "bezel", "necklace", "brooch", "charm",
	"chain", "earring", "set ", "lot", "roll", "bulk", "copy", "replica",
	"mount", "framed", "silver", "gold", "proof", "pcgs", "ngc", "ms-", "ms ",
}

// FilterListings returns the coin-like subsequence of the listings, preserving
// order. A listing without a title is excluded. An empty result is a valid
// outcome that signals "no coin-like listings".
func FilterListings(listings []search.Listing) []search.Listing {
	filtered := make([]search.Listing, 0, len(listings))
	for _, l := range listings {
		if isCoinLike(l.Title) {
			filtered = append(filtered, l)
		}
	}
	return filtered
}

func isCoinLike(title string) bool {
	if title == "" {
		return false
	}
	title = strings.ToLower(title)

	included := false
	for _, term := range includeTerms {
		if strings.Contains(title, term) {
			included = true
			break
		}
	}
	if !included {
		return false
	}

	for _, term := range excludeTerms {
		if strings.Contains(title, term) {
			return false
		}
	}
	return true
}

package coin

import "strings"

// querySuffixTokens are always appended so the query stays anchored on coin
// listings even when OCR produced nothing
var querySuffixTokens = []string{"coin", "value"}

// BuildQuery composes the shopping-search query from the hints and the raw
// OCR text. The order is fixed: country, denomination, year, raw text, suffix
// tokens. Identical input always yields the identical query, and the result is
// never empty.
func BuildQuery(hints Hints, frontText, backText string) string {
	tokens := make([]string, 0, 8)

	if hints.Country != "" {
		tokens = append(tokens, hints.Country)
	}
	if hints.Denomination != "" {
		tokens = append(tokens, hints.Denomination)
	}
	if hints.Year != "" {
		tokens = append(tokens, hints.Year)
	}

	// OCR output is full of newlines; collapse it to single-spaced words
	for _, t := range []string{frontText, backText} {
		tokens = append(tokens, strings.Fields(t)...)
	}

	tokens = append(tokens, querySuffixTokens...)
	return strings.Join(tokens, " ")
}

package coin

import (
	"regexp"
	"strings"
)

// yearPattern matches 4-digit tokens in the 1800-2099 range
var yearPattern = regexp.MustCompile(`\b(18|19|20)\d{2}\b`)

// denominationKeywords is an ordered list of denomination words seen on coin
// faces across languages. More specific spellings come before their prefixes
// so "centavo" is not reported as "cent".
var denominationKeywords = []string{
	"pesos", "peso",
	"centavos", "centavo",
	"cents", "cent",
	"pennies", "penny",
	"pence",
	"euro",
	"groszy", "grosz",
	"złoty", "zloty",
	"yen", "yuan",
	"rupee", "ruble",
	"krona", "kroner", "kronor",
	"dinar", "dirham",
	"franc", "mark", "lira",
	"kopeck",
	"paise", "paisa",
}

// countryIndicators maps a country to the phrases that identify it on a coin.
// Evaluated in order; the first country with a matching phrase wins and later
// entries never override it.
var countryIndicators = []struct {
	country string
	terms   []string
}{
	{"poland", []string{"polska", "rzeczpospolita", "polski", "groszy", "grosz", "złoty", "zloty"}},
	{"mexico", []string{"estados unidos mexicanos", "mexicanos", "méxico", "mexico", "centavos", "centavo", "peso"}},
	{"usa", []string{"united states", "liberty", "in god we trust", "america"}},
}

// ExtractHints parses the OCR transcriptions of both coin faces into
// structured hints. Absent input simply yields all-absent hints.
func ExtractHints(frontText, backText string) Hints {
	parts := make([]string, 0, 2)
	for _, t := range []string{frontText, backText} {
		if strings.TrimSpace(t) != "" {
			parts = append(parts, t)
		}
	}
	combined := strings.ToLower(strings.Join(parts, " "))
	if combined == "" {
		return Hints{}
	}

	var hints Hints

	hints.Year = yearPattern.FindString(combined)

	for _, keyword := range denominationKeywords {
		if strings.Contains(combined, keyword) {
			hints.Denomination = keyword
			break
		}
	}

	for _, indicator := range countryIndicators {
		for _, term := range indicator.terms {
			if strings.Contains(combined, term) {
				hints.Country = indicator.country
				break
			}
		}
		if hints.Country != "" {
			break
		}
	}

	return hints
}

// yearOverridePattern validates a caller-supplied year
var yearOverridePattern = regexp.MustCompile(`^\d{4}$`)

// WithYearOverride returns a copy of the hints with the year replaced by the
// caller-supplied value. Overrides that are not 4-digit strings are ignored.
func (h Hints) WithYearOverride(year string) Hints {
	if yearOverridePattern.MatchString(year) {
		h.Year = year
	}
	return h
}

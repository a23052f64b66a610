package categorization

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// maxSuggestDistance is the largest Levenshtein distance still considered a
// plausible misspelling of a keyword.
const maxSuggestDistance = 2

// FuzzySuggester proposes a closest-category hint for descriptions the exact
// engine labeled as the catch-all. It catches merchant-name variations like
// "NETFLLIX BR" that the substring rules miss. Suggestions are non-binding:
// they never change the assigned label.
type FuzzySuggester struct {
	rules Ruleset
}

// NewFuzzySuggester builds a suggester over the same ruleset as the engine.
func NewFuzzySuggester(rules Ruleset) *FuzzySuggester {
	return &FuzzySuggester{rules: rules}
}

// Suggest returns the category whose keyword is closest to any token of the
// description, within the distance cutoff. Ties keep the earliest declared
// rule, matching the exact engine's precedence.
func (f *FuzzySuggester) Suggest(description string) (string, bool) {
	tokens := strings.Fields(strings.ToLower(description))
	if len(tokens) == 0 {
		return "", false
	}

	bestCategory := ""
	bestDistance := maxSuggestDistance + 1

	for _, rule := range f.rules {
		for _, kw := range rule.Keywords {
			for _, tok := range tokens {
				d := fuzzy.LevenshteinDistance(kw, tok)
				if d < bestDistance {
					bestDistance = d
					bestCategory = rule.Category
				}
			}
		}
	}

	if bestCategory == "" {
		return "", false
	}
	return bestCategory, true
}

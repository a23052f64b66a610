package categorization

import (
	"strings"

	"github.com/cloudflare/ahocorasick"

	"github.com/extrato-dev/extrato/internal/domain/transaction"
)

// Engine is a deterministic keyword classifier. All keywords are compiled
// into a single Aho-Corasick automaton so every pattern is tested in one
// pass over the description; among the patterns that hit, the one belonging
// to the earliest declared rule wins. The result is identical to an ordered
// linear scan of the ruleset.
type Engine struct {
	rules    Ruleset
	matcher  *ahocorasick.Matcher
	ruleOf   []int // pattern index -> earliest declaring rule index
	patterns []string
}

// NewEngine compiles the ruleset. The engine is immutable and safe for
// concurrent use once built.
func NewEngine(rules Ruleset) *Engine {
	e := &Engine{rules: rules}

	seen := make(map[string]int)
	for ri, rule := range rules {
		for _, kw := range rule.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				continue
			}
			if _, dup := seen[kw]; dup {
				// A keyword shared across rules belongs to the earliest one.
				continue
			}
			seen[kw] = ri
			e.patterns = append(e.patterns, kw)
			e.ruleOf = append(e.ruleOf, ri)
		}
	}

	if len(e.patterns) > 0 {
		bytePatterns := make([][]byte, len(e.patterns))
		for i, p := range e.patterns {
			bytePatterns[i] = []byte(p)
		}
		e.matcher = ahocorasick.NewMatcher(bytePatterns)
	}
	return e
}

// Label returns the category for a description: the first declared category
// with any keyword appearing as a substring, or the catch-all.
func (e *Engine) Label(description string) string {
	if e.matcher == nil {
		return Outros
	}

	hits := e.matcher.Match([]byte(strings.ToLower(description)))
	if len(hits) == 0 {
		return Outros
	}

	best := -1
	for _, idx := range hits {
		if idx < 0 || idx >= len(e.ruleOf) {
			continue
		}
		if ri := e.ruleOf[idx]; best == -1 || ri < best {
			best = ri
		}
	}
	if best == -1 {
		return Outros
	}
	return e.rules[best].Category
}

// Categorize labels every transaction, returning copies. The input sequence
// is never mutated.
func (e *Engine) Categorize(seq transaction.Sequence) []transaction.Categorized {
	out := make([]transaction.Categorized, 0, len(seq))
	for _, t := range seq {
		out = append(out, transaction.Categorized{
			Transaction: t,
			Category:    e.Label(t.Description),
		})
	}
	return out
}

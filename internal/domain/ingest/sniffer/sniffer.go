// Package sniffer detects the shape of delimited statement exports: the field
// delimiter and which column plays which role. Role matching is driven by an
// ordered, declarative rule table so priority is testable independently of
// the parsing logic.
package sniffer

import (
	"errors"
	"strings"
)

// ErrEmptyInput indicates a blank header line.
var ErrEmptyInput = errors.New("input is empty")

// delimiterCandidates are tried in order; the one splitting the header into
// the most fields wins.
var delimiterCandidates = []rune{';', '\t', ',', '|'}

// RoleRules maps column roles to ordered candidate header names. For each
// role the first candidate present in the header wins; candidates are matched
// by case-insensitive exact name equality.
type RoleRules struct {
	Date        []string
	Description []string
	Amount      []string
	Credit      []string
	Debit       []string
}

// DefaultRoleRules returns the built-in candidate-name lists covering the
// English and Portuguese exports seen in the wild.
func DefaultRoleRules() RoleRules {
	return RoleRules{
		Date:        []string{"date", "data", "transaction_date", "dt"},
		Description: []string{"description", "descricao", "details", "historico", "lancamento"},
		Amount:      []string{"amount", "valor", "valor_r$", "value", "valor_bruto"},
		Credit:      []string{"credit", "credito"},
		Debit:       []string{"debit", "debito"},
	}
}

// Columns holds the resolved column index per role; -1 means not found.
type Columns struct {
	Date        int
	Description int
	Amount      int
	Credit      int
	Debit       int
}

// DetectDelimiter picks the delimiter that splits the header line into the
// most fields. When no candidate appears at all it falls back to comma; a
// blank header is ErrEmptyInput.
func DetectDelimiter(headerLine string) (rune, error) {
	headerLine = CleanLine(headerLine, true)
	if headerLine == "" {
		return 0, ErrEmptyInput
	}

	best := rune(0)
	bestCount := 0
	for _, d := range delimiterCandidates {
		if count := strings.Count(headerLine, string(d)); count > bestCount {
			bestCount = count
			best = d
		}
	}
	if best == 0 {
		// Single-column files are still tabular; comma is the fixed fallback.
		return ',', nil
	}
	return best, nil
}

// Resolve matches header names against the rule table. Lists are scanned in
// fixed priority order, so ties are impossible.
func (r RoleRules) Resolve(headers []string) Columns {
	cols := Columns{Date: -1, Description: -1, Amount: -1, Credit: -1, Debit: -1}

	lowered := make(map[string]int, len(headers))
	for i, h := range headers {
		name := strings.ToLower(strings.TrimSpace(h))
		if _, seen := lowered[name]; !seen {
			lowered[name] = i
		}
	}

	match := func(candidates []string) int {
		for _, c := range candidates {
			if i, ok := lowered[c]; ok {
				return i
			}
		}
		return -1
	}

	cols.Date = match(r.Date)
	cols.Description = match(r.Description)
	cols.Amount = match(r.Amount)
	cols.Credit = match(r.Credit)
	cols.Debit = match(r.Debit)
	return cols
}

// CleanLine strips carriage returns, an optional BOM on the first line, and
// surrounding whitespace.
func CleanLine(line string, firstLine bool) string {
	line = strings.TrimRight(line, "\r")
	if firstLine {
		line = strings.TrimPrefix(line, "\uFEFF")
	}
	return strings.TrimSpace(line)
}

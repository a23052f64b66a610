// Package qif implements a line-driven QIF record parser. Records accumulate
// field by field and are emitted only on the `^` terminator, so a truncated
// trailing record is dropped rather than emitted partially.
package qif

import (
	"bufio"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/extrato-dev/extrato/internal/domain/ingest/parser"
	"github.com/extrato-dev/extrato/internal/domain/transaction"
)

// record is the in-progress accumulator state.
type record struct {
	date        string
	description string
	amount      decimal.Decimal
}

// Machine is the explicit tag-driven state accumulator. Feed it lines one at
// a time and read the emitted records afterwards; it is independently
// testable against crafted line sequences without file I/O.
type Machine struct {
	current record
	out     []record
}

// Feed consumes one line, keyed by its first character. Unknown tags are
// ignored with no state change.
func (m *Machine) Feed(line string) {
	if line == "" {
		return
	}
	tag, rest := line[0], strings.TrimSpace(line[1:])

	switch tag {
	case 'D':
		m.current.date = rest
	case 'T':
		m.current.amount = parseAmount(rest)
	case 'P':
		m.current.description = rest
	case '^':
		m.out = append(m.out, m.current)
		m.current = record{}
	}
}

// Records returns the emitted records. The accumulator's unterminated state,
// if any, is not included.
func (m *Machine) Records() []record {
	return m.out
}

// parseAmount strips commas and parses; failing that it treats dots as
// thousands separators and the comma as the decimal separator; total failure
// is a zero amount.
func parseAmount(s string) decimal.Decimal {
	if d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "")); err == nil {
		return d
	}
	alt := strings.ReplaceAll(s, ".", "")
	alt = strings.ReplaceAll(alt, ",", ".")
	if d, err := decimal.NewFromString(alt); err == nil {
		return d
	}
	return decimal.Zero
}

// Parse consumes a QIF stream and returns the canonical sequence. Dates are
// parsed permissively with a day-before-month bias after accumulation.
func Parse(r io.Reader) (transaction.Sequence, error) {
	m := &Machine{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		m.Feed(strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	records := m.Records()
	seq := make(transaction.Sequence, 0, len(records))
	for _, rec := range records {
		seq = append(seq, transaction.Transaction{
			Date:        parser.CoerceDate(rec.date),
			Description: rec.description,
			Amount:      rec.amount,
		})
	}
	seq.SortByDate()
	return seq, nil
}

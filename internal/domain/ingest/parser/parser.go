// Package parser normalizes delimited statement exports of unknown delimiter
// and unknown column naming into the canonical transaction schema. Malformed
// individual cells degrade to zero/absent values; only a stream that cannot
// be read as tabular data at all is a fatal parse error.
package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/extrato-dev/extrato/internal/domain/ingest/sniffer"
	"github.com/extrato-dev/extrato/internal/domain/transaction"
)

// ErrNotTabular indicates the input could not be read as tabular data with
// any delimiter, including the comma fallback.
var ErrNotTabular = errors.New("input is not tabular data")

// Config controls the normalizer. The rule table is injected so matching
// order and extensibility are testable independently of the parsing logic.
type Config struct {
	// Rules is the ordered column-role candidate table.
	Rules sniffer.RoleRules
	// Delimiter overrides auto-detection when non-zero.
	Delimiter rune
	// DebitIsMagnitude controls the credit/debit fallback: when true (the
	// default) debit cells are magnitudes subtracted from credit; when false
	// debit cells already carry their own sign and are added as-is.
	DebitIsMagnitude bool
}

// DefaultConfig returns the built-in rule table with the magnitude debit
// convention.
func DefaultConfig() Config {
	return Config{
		Rules:            sniffer.DefaultRoleRules(),
		DebitIsMagnitude: true,
	}
}

// Parser normalizes delimited text. It holds no state between invocations.
type Parser struct {
	config Config
}

// New creates a normalizer with the given configuration.
func New(config Config) *Parser {
	return &Parser{config: config}
}

// Parse reads the whole input and returns a canonical sequence sorted by date
// when any date is resolvable.
func (p *Parser) Parse(data []byte) (transaction.Sequence, error) {
	text := strings.TrimPrefix(string(data), "\uFEFF")
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty input", ErrNotTabular)
	}

	delimiter := p.config.Delimiter
	if delimiter == 0 {
		d, err := sniffer.DetectDelimiter(firstLine(text))
		if err != nil {
			d = ','
		}
		delimiter = d
	}

	records, err := readRecords(text, delimiter)
	if err != nil && delimiter != ',' {
		// Detection picked a bad delimiter; comma is the fixed fallback.
		records, err = readRecords(text, ',')
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotTabular, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrNotTabular)
	}

	headers := records[0]
	rows := records[1:]
	cols := p.config.Rules.Resolve(headers)

	numericCol := -1
	if cols.Amount < 0 && cols.Credit < 0 && cols.Debit < 0 {
		numericCol = firstNumericColumn(rows)
	}

	seq := make(transaction.Sequence, 0, len(rows))
	for _, row := range rows {
		seq = append(seq, transaction.Transaction{
			Date:        transactionDate(row, cols.Date),
			Description: description(row, cols.Description),
			Amount:      p.amount(row, cols, numericCol),
		})
	}

	seq.SortByDate()
	return seq, nil
}

// amount resolves the transaction amount following the fixed priority order:
// single amount column, credit minus debit, credit alone, negated debit
// alone, first numeric column, zero.
func (p *Parser) amount(row []string, cols sniffer.Columns, numericCol int) decimal.Decimal {
	if cols.Amount >= 0 {
		d, _ := CoerceAmount(cell(row, cols.Amount))
		return d
	}

	switch {
	case cols.Credit >= 0 && cols.Debit >= 0:
		credit, _ := CoerceAmount(cell(row, cols.Credit))
		debit, _ := CoerceAmount(cell(row, cols.Debit))
		if p.config.DebitIsMagnitude {
			return credit.Sub(debit)
		}
		return credit.Add(debit)
	case cols.Credit >= 0:
		credit, _ := CoerceAmount(cell(row, cols.Credit))
		return credit
	case cols.Debit >= 0:
		debit, _ := CoerceAmount(cell(row, cols.Debit))
		if p.config.DebitIsMagnitude {
			return debit.Neg()
		}
		return debit
	case numericCol >= 0:
		d, _ := CoerceAmount(cell(row, numericCol))
		return d
	}
	return decimal.Zero
}

func transactionDate(row []string, col int) (t time.Time) {
	if col < 0 {
		return t
	}
	return CoerceDate(cell(row, col))
}

// description uses the matched column, or synthesizes one by joining all row
// cells so the description is never empty when any data exists.
func description(row []string, col int) string {
	if col >= 0 {
		return strings.TrimSpace(cell(row, col))
	}
	parts := make([]string, 0, len(row))
	for _, c := range row {
		if c = strings.TrimSpace(c); c != "" {
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, " ")
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// firstNumericColumn returns the index of the first column whose non-empty
// cells all parse as plain numbers, or -1.
func firstNumericColumn(rows [][]string) int {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	for col := 0; col < width; col++ {
		nonEmpty := 0
		numeric := true
		for _, row := range rows {
			v := strings.TrimSpace(cell(row, col))
			if v == "" {
				continue
			}
			nonEmpty++
			if _, err := decimal.NewFromString(strings.ReplaceAll(v, ",", ".")); err != nil {
				numeric = false
				break
			}
		}
		if numeric && nonEmpty > 0 {
			return col
		}
	}
	return -1
}

func readRecords(text string, delimiter rune) ([][]string, error) {
	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	return reader.ReadAll()
}

func firstLine(text string) string {
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		return text[:i]
	}
	return text
}

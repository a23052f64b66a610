// Package pdfext extracts transactions from PDF statements on a best-effort,
// fallback-ordered basis: tables first, then a line heuristic, then a
// legitimate empty result. It never guarantees extraction from arbitrary
// PDFs and degrades to an empty sequence instead of failing.
package pdfext

import (
	"bytes"
	"context"
	"encoding/csv"
	"log/slog"
	"regexp"
	"strings"

	"github.com/extrato-dev/extrato/internal/domain/ingest/parser"
	"github.com/extrato-dev/extrato/internal/domain/transaction"
)

// Table is one extracted table: a header row plus data rows.
type Table struct {
	Header []string
	Rows   [][]string
}

// Layout is the table/text extraction collaborator. Failures on a single
// page must not abort extraction of other pages.
type Layout interface {
	Tables(ctx context.Context, data []byte) ([]Table, error)
	TextLines(ctx context.Context, data []byte) ([]string, error)
}

// Extractor runs the two-stage extraction ladder over a PDF byte stream.
type Extractor struct {
	layout Layout
	parser *parser.Parser
	logger *slog.Logger
}

// New creates a PDF extractor backed by the given layout collaborator. The
// normalizer is reused for final date/amount coercion of every stage.
func New(layout Layout, p *parser.Parser, logger *slog.Logger) *Extractor {
	return &Extractor{layout: layout, parser: p, logger: logger}
}

// stage is one rung of the fallback ladder. It reports the rows it produced;
// an empty result moves the driver to the next rung.
type stage func(ctx context.Context, data []byte) transaction.Sequence

// Parse tries each stage in order and stops at the first that yields rows.
// A PDF with no extractable transaction data returns an empty sequence and a
// nil error; that is a terminal state, not a failure.
func (e *Extractor) Parse(ctx context.Context, data []byte) (transaction.Sequence, error) {
	stages := []stage{e.tableStage, e.lineStage}
	for _, s := range stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if seq := s(ctx, data); len(seq) > 0 {
			return seq, nil
		}
	}
	return transaction.Sequence{}, nil
}

// tableStage serializes every extracted table to delimited text and runs it
// through the normalizer; the first table yielding rows wins. Tables that
// fail serialization or normalize to nothing are skipped.
func (e *Extractor) tableStage(ctx context.Context, data []byte) transaction.Sequence {
	tables, err := e.layout.Tables(ctx, data)
	if err != nil {
		e.logger.Debug("pdf table extraction failed", slog.Any("error", err))
		return nil
	}

	for _, t := range tables {
		text, err := serializeTable(t)
		if err != nil {
			continue
		}
		seq, err := e.parser.Parse(text)
		if err != nil || len(seq) == 0 {
			continue
		}
		return seq
	}
	return nil
}

var (
	lineDatePattern   = regexp.MustCompile(`\d{2}/\d{2}/\d{4}|\d{2}-\d{2}-\d{4}|\d{4}-\d{2}-\d{2}`)
	lineAmountPattern = regexp.MustCompile(`-?\d{1,3}(?:[.,]\d{3})*(?:[.,]\d{2})?`)
)

// lineStage scans plain text lines for a date and the last numeric amount on
// the line. Taking the last occurrence avoids reading the date's own digits
// as an amount. Qualifying lines are re-serialized through the normalizer so
// date and amount coercion stay in one place.
func (e *Extractor) lineStage(ctx context.Context, data []byte) transaction.Sequence {
	lines, err := e.layout.TextLines(ctx, data)
	if err != nil {
		e.logger.Debug("pdf text extraction failed", slog.Any("error", err))
		return nil
	}

	table := Table{Header: []string{"date", "description", "amount"}}
	for _, line := range lines {
		row, ok := lineToRow(line)
		if ok {
			table.Rows = append(table.Rows, row)
		}
	}
	if len(table.Rows) == 0 {
		return nil
	}

	text, err := serializeTable(table)
	if err != nil {
		return nil
	}
	seq, err := e.parser.Parse(text)
	if err != nil {
		return nil
	}
	return seq
}

// lineToRow qualifies a text line as a transaction candidate. Both a date and
// an amount must be present; the description is the line with both matches
// removed.
func lineToRow(line string) ([]string, bool) {
	dateLoc := lineDatePattern.FindStringIndex(line)
	if dateLoc == nil {
		return nil, false
	}

	var amountLoc []int
	for _, loc := range lineAmountPattern.FindAllStringIndex(line, -1) {
		if loc[1] > dateLoc[0] && loc[0] < dateLoc[1] {
			continue // digits touching the date are not an amount
		}
		amountLoc = loc
	}
	if amountLoc == nil || line[amountLoc[0]:amountLoc[1]] == "" {
		return nil, false
	}

	date := line[dateLoc[0]:dateLoc[1]]
	amount := normalizeLineAmount(line[amountLoc[0]:amountLoc[1]])

	desc := line
	// Remove the later span first so the earlier offsets stay valid.
	if amountLoc[0] > dateLoc[0] {
		desc = desc[:amountLoc[0]] + desc[amountLoc[1]:]
		desc = desc[:dateLoc[0]] + desc[dateLoc[1]:]
	} else {
		desc = desc[:dateLoc[0]] + desc[dateLoc[1]:]
		desc = desc[:amountLoc[0]] + desc[amountLoc[1]:]
	}

	return []string{date, strings.TrimSpace(desc), amount}, true
}

// normalizeLineAmount applies the PDF amount convention: a comma means the
// comma is the decimal separator and dots are thousands separators.
func normalizeLineAmount(s string) string {
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	return s
}

func serializeTable(t Table) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(t.Header); err != nil {
		return nil, err
	}
	for _, row := range t.Rows {
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

package parser

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/extrato-dev/extrato/internal/domain/transaction"
)

// ParseExcel reads an XLSX statement export and funnels its first non-empty
// sheet through the delimited-text normalizer, so column sniffing and amount
// coercion behave identically to CSV input.
func (p *Parser) ParseExcel(data []byte) (transaction.Sequence, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotTabular, err)
	}
	defer f.Close()

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil || len(rows) == 0 || sheetLooksEmpty(rows) {
			continue
		}

		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		for _, row := range rows {
			if err := w.Write(row); err != nil {
				return nil, fmt.Errorf("serializing sheet %s: %w", sheet, err)
			}
		}
		w.Flush()

		cfg := p.config
		cfg.Delimiter = ','
		seq, err := New(cfg).Parse(buf.Bytes())
		if err != nil {
			continue
		}
		return seq, nil
	}

	return nil, fmt.Errorf("%w: no readable sheet", ErrNotTabular)
}

// sheetLooksEmpty reports whether every cell of the sheet is blank.
func sheetLooksEmpty(rows [][]string) bool {
	for _, row := range rows {
		for _, c := range row {
			if strings.TrimSpace(c) != "" {
				return false
			}
		}
	}
	return true
}

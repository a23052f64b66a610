package pdfext

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// cellGap is the horizontal distance, in PDF points, beyond which adjacent
// text fragments on one row are treated as separate table cells.
const cellGap = 12.0

// PDFLayout implements Layout on top of the pure-Go pdf reader. It is
// stateless and safe for concurrent use.
type PDFLayout struct{}

// Tables reconstructs row/column structure from positioned text fragments,
// page by page. A failing page is skipped, never fatal for the document.
func (PDFLayout) Tables(ctx context.Context, data []byte) ([]Table, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening pdf: %w", err)
	}

	var tables []Table
	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows := pageRows(reader, i)
		if t, ok := rowsToTable(rows); ok {
			tables = append(tables, t)
		}
	}
	return tables, nil
}

// TextLines extracts the plain text of every page, split into trimmed
// non-empty lines. Failing pages are skipped.
func (PDFLayout) TextLines(ctx context.Context, data []byte) ([]string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening pdf: %w", err)
	}

	var lines []string
	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text := pageText(reader, i)
		for _, line := range strings.Split(text, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				lines = append(lines, line)
			}
		}
	}
	return lines, nil
}

// pageRows reads positioned text rows from one page. The pdf library panics
// on some malformed content streams; a panic degrades to no rows.
func pageRows(reader *pdf.Reader, num int) (rows [][]cellText) {
	defer func() {
		if r := recover(); r != nil {
			rows = nil
		}
	}()

	page := reader.Page(num)
	if page.V.IsNull() {
		return nil
	}
	textRows, err := page.GetTextByRow()
	if err != nil {
		return nil
	}

	for _, row := range textRows {
		var fragments []cellText
		for _, t := range row.Content {
			if t.S == "" {
				continue
			}
			fragments = append(fragments, cellText{x: t.X, s: t.S, w: t.W})
		}
		if len(fragments) > 0 {
			sort.SliceStable(fragments, func(a, b int) bool { return fragments[a].x < fragments[b].x })
			rows = append(rows, fragments)
		}
	}
	return rows
}

func pageText(reader *pdf.Reader, num int) (text string) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
		}
	}()

	page := reader.Page(num)
	if page.V.IsNull() {
		return ""
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return text
}

type cellText struct {
	x float64
	w float64
	s string
}

// rowsToTable groups each row's fragments into cells by horizontal gap and
// promotes the first row to a header. Pages without at least two rows of at
// least two columns carry no recognizable table.
func rowsToTable(rows [][]cellText) (Table, bool) {
	if len(rows) < 2 {
		return Table{}, false
	}

	grouped := make([][]string, 0, len(rows))
	for _, fragments := range rows {
		grouped = append(grouped, groupCells(fragments))
	}

	header := grouped[0]
	if len(header) < 2 {
		return Table{}, false
	}
	return Table{Header: header, Rows: grouped[1:]}, true
}

func groupCells(fragments []cellText) []string {
	var cells []string
	var current strings.Builder
	prevEnd := 0.0

	for i, f := range fragments {
		if i > 0 && f.x-prevEnd > cellGap {
			cells = append(cells, strings.TrimSpace(current.String()))
			current.Reset()
		} else if i > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(f.s)
		prevEnd = f.x + f.w
	}
	if current.Len() > 0 {
		cells = append(cells, strings.TrimSpace(current.String()))
	}
	return cells
}

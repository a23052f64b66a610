package parser

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, sheets map[string][][]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	first := true
	for name, rows := range sheets {
		if first {
			require.NoError(t, f.SetSheetName("Sheet1", name))
			first = false
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())
	return buf.Bytes()
}

func TestParseExcel(t *testing.T) {
	t.Run("parses first populated sheet", func(t *testing.T) {
		data := buildWorkbook(t, map[string][][]any{
			"Extrato": {
				{"date", "description", "amount"},
				{"2025-10-01", "Salario", "5000.00"},
				{"2025-10-03", "Supermercado XYZ", "-320.45"},
			},
		})

		seq, err := New(DefaultConfig()).ParseExcel(data)
		require.NoError(t, err)
		require.Len(t, seq, 2)
		assert.Equal(t, "Salario", seq[0].Description)
		assert.Equal(t, "-320.45", seq[1].Amount.String())
	})

	t.Run("skips empty sheet", func(t *testing.T) {
		f := excelize.NewFile()
		_, err := f.NewSheet("Dados")
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Dados", "A1", &[]any{"date", "description", "amount"}))
		require.NoError(t, f.SetSheetRow("Dados", "A2", &[]any{"2025-10-01", "Loja", "-10.00"}))

		var buf bytes.Buffer
		require.NoError(t, f.Write(&buf))
		require.NoError(t, f.Close())

		seq, err := New(DefaultConfig()).ParseExcel(buf.Bytes())
		require.NoError(t, err)
		require.Len(t, seq, 1)
		assert.Equal(t, "Loja", seq[0].Description)
	})

	t.Run("not a workbook", func(t *testing.T) {
		_, err := New(DefaultConfig()).ParseExcel([]byte("plain text, not xlsx"))
		assert.ErrorIs(t, err, ErrNotTabular)
	})
}

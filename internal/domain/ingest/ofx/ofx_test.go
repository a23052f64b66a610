package ofx

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sgmlResponse = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20251031120000
<LANGUAGE>POR
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>BRL
<BANKACCTFROM>
<BANKID>0341
<ACCTID>12345
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20251001
<DTEND>20251031
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20251001
<TRNAMT>5000.00
<FITID>1
<NAME>Salario
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20251003
<TRNAMT>-320.45
<FITID>2
<MEMO>Supermercado XYZ
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>4679.55
<DTASOF>20251031
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>
`

func TestParse(t *testing.T) {
	t.Run("structured sgml document", func(t *testing.T) {
		seq, err := Parse(context.Background(), []byte(sgmlResponse))
		require.NoError(t, err)
		require.Len(t, seq, 2)

		assert.Equal(t, time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC), seq[0].Date.UTC())
		assert.Equal(t, "Salario", seq[0].Description)
		assert.Equal(t, "5000", seq[0].Amount.String())

		assert.Equal(t, "Supermercado XYZ", seq[1].Description)
		assert.Equal(t, "-320.45", seq[1].Amount.String())
	})

	t.Run("markup fallback without valid header", func(t *testing.T) {
		doc := `this is not a valid OFX envelope
<STMTTRN>
<DTPOSTED>20251003120000[-3:BRT]
<TRNAMT>-89.90
<NAME>FARMACIA CENTRAL
</STMTTRN>
<STMTTRN>
<DTPOSTED>20251001
<TRNAMT>1200.00
<NAME>TED RECEBIDA
</STMTTRN>`

		seq, err := Parse(context.Background(), []byte(doc))
		require.NoError(t, err)
		require.Len(t, seq, 2)

		// Sorted ascending despite reversed document order.
		assert.Equal(t, "TED RECEBIDA", seq[0].Description)
		assert.Equal(t, time.Date(2025, 10, 3, 0, 0, 0, 0, time.UTC), seq[1].Date)
		assert.Equal(t, "-89.9", seq[1].Amount.String())
	})

	t.Run("block without date or amount is dropped", func(t *testing.T) {
		doc := `garbage
<STMTTRN>
<NAME>SO DESCRICAO
</STMTTRN>
<STMTTRN>
<DTPOSTED>20251002
<TRNAMT>-10.00
<NAME>VALIDA
</STMTTRN>`

		seq, err := Parse(context.Background(), []byte(doc))
		require.NoError(t, err)
		require.Len(t, seq, 1)
		assert.Equal(t, "VALIDA", seq[0].Description)
	})

	t.Run("no markers at all is fatal", func(t *testing.T) {
		_, err := Parse(context.Background(), []byte("completely unrelated content"))
		assert.ErrorIs(t, err, ErrNoTransactions)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := Parse(ctx, []byte(sgmlResponse))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestParseOFXDate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want time.Time
	}{
		{"compact date", "20251003", time.Date(2025, 10, 3, 0, 0, 0, 0, time.UTC)},
		{"compact with time and zone", "20251003120000.000[-3:BRT]", time.Date(2025, 10, 3, 0, 0, 0, 0, time.UTC)},
		{"iso fallback", "2025-10-03", time.Date(2025, 10, 3, 0, 0, 0, 0, time.UTC)},
		{"garbage", "soon", time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.want.Equal(parseOFXDate(tt.in)))
		})
	}
}

func TestFromMarkupKeepsDocumentLooseness(t *testing.T) {
	// Closing NAME tags and CRLF line endings both appear in the wild.
	doc := strings.ReplaceAll(`noise
<STMTTRN>
<DTPOSTED>20251005
<TRNAMT>15,75
<NAME>PADARIA DO BAIRRO</NAME>
</STMTTRN>`, "\n", "\r\n")

	seq := fromMarkup([]byte(doc))
	require.Len(t, seq, 1)
	assert.Equal(t, "PADARIA DO BAIRRO", seq[0].Description)
	assert.Equal(t, "15.75", seq[0].Amount.String())
}

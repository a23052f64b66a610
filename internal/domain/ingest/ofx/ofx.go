// Package ofx parses OFX/QFX statement documents. The structured decoder is
// tried first (twice: raw bytes, then bytes re-decoded as permissive text),
// then a direct-markup extraction over STMTTRN blocks. This is the one parser
// where total failure surfaces to the caller: a document that fails every
// decode path with zero extractable records is a genuine format mismatch.
package ofx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"github.com/extrato-dev/extrato/internal/domain/ingest/parser"
	"github.com/extrato-dev/extrato/internal/domain/transaction"
)

// ErrNoTransactions indicates the document failed structured decoding and
// the markup fallback extracted zero records.
var ErrNoTransactions = errors.New("no transactions could be extracted from OFX document")

// Parse decodes an OFX/QFX byte stream into a canonical sequence sorted by
// date ascending.
func Parse(ctx context.Context, data []byte) (transaction.Sequence, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, decodeErr := ofxgo.ParseResponse(bytes.NewReader(data))
	if decodeErr != nil {
		// Some real-world exports are mildly malformed at the byte level but
		// textually recoverable.
		recovered := []byte(strings.ToValidUTF8(string(data), ""))
		resp, decodeErr = ofxgo.ParseResponse(bytes.NewReader(recovered))
	}
	if decodeErr == nil {
		seq := fromResponse(resp)
		seq.SortByDate()
		return seq, nil
	}

	seq := fromMarkup(data)
	if len(seq) == 0 {
		return nil, fmt.Errorf("%w: %v", ErrNoTransactions, decodeErr)
	}
	seq.SortByDate()
	return seq, nil
}

// fromResponse walks every statement of the structured document: bank and
// credit-card messages both carry BankTranList nodes.
func fromResponse(resp *ofxgo.Response) transaction.Sequence {
	seq := transaction.Sequence{}

	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		seq = append(seq, fromTranList(stmt.BankTranList)...)
	}
	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		seq = append(seq, fromTranList(stmt.BankTranList)...)
	}

	return seq
}

func fromTranList(list *ofxgo.TransactionList) transaction.Sequence {
	seq := make(transaction.Sequence, 0, len(list.Transactions))
	for _, txn := range list.Transactions {
		desc := strings.TrimSpace(txn.Name.String())
		if desc == "" {
			desc = strings.TrimSpace(txn.Memo.String())
		}

		amount := decimal.Zero
		if f, _ := txn.TrnAmt.Float64(); f != 0 {
			amount = decimal.NewFromFloat(f)
		}

		seq = append(seq, transaction.Transaction{
			Date:        txn.DtPosted.Time,
			Description: desc,
			Amount:      amount,
		})
	}
	return seq
}

var (
	stmtTrnPattern  = regexp.MustCompile(`(?s)<STMTTRN>(.*?)</STMTTRN>`)
	dtPostedPattern = regexp.MustCompile(`<DTPOSTED>([0-9T+\-:.\[\]a-zA-Z]+)`)
	trnAmtPattern   = regexp.MustCompile(`<TRNAMT>(-?[0-9.,]+)`)
	namePattern     = regexp.MustCompile(`<NAME>([^<\r\n]+)`)
	compactDate     = regexp.MustCompile(`^(\d{4})(\d{2})(\d{2})`)
)

// fromMarkup extracts transactions straight from STMTTRN markers. Blocks
// missing both a date and an amount are dropped.
func fromMarkup(data []byte) transaction.Sequence {
	raw := strings.ToValidUTF8(string(data), "")

	var seq transaction.Sequence
	for _, block := range stmtTrnPattern.FindAllStringSubmatch(raw, -1) {
		body := block[1]

		var date time.Time
		if m := dtPostedPattern.FindStringSubmatch(body); m != nil {
			date = parseOFXDate(m[1])
		}

		amount := decimal.Zero
		hasAmount := false
		if m := trnAmtPattern.FindStringSubmatch(body); m != nil {
			if d, ok := parser.CoerceAmount(m[1]); ok {
				amount = d
				hasAmount = true
			}
		}

		desc := ""
		if m := namePattern.FindStringSubmatch(body); m != nil {
			desc = strings.TrimSpace(m[1])
		}

		if date.IsZero() && !hasAmount {
			continue
		}
		seq = append(seq, transaction.Transaction{Date: date, Description: desc, Amount: amount})
	}
	return seq
}

// parseOFXDate handles the compact YYYYMMDD[...] form by truncating to the
// first 8 digits, then falls back to the permissive date ladder.
func parseOFXDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if m := compactDate.FindStringSubmatch(s); m != nil {
		t, err := time.Parse("20060102", m[1]+m[2]+m[3])
		if err == nil {
			return t
		}
	}
	return parser.CoerceDate(s)
}

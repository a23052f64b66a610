package transaction

import (
	"time"

	"github.com/gocarina/gocsv"
)

// csvDateLayout is the canonical export date format (ISO-8601 date).
const csvDateLayout = "2006-01-02"

// csvRow is the canonical delimited-text shape of a Transaction. The header
// names are exactly the ones the delimited-text normalizer treats as
// canonical, so an export round-trips through the normalizer unchanged.
type csvRow struct {
	Date        string `csv:"date"`
	Description string `csv:"description"`
	Amount      string `csv:"amount"`
}

// MarshalCSV renders the sequence as canonical delimited text with a
// date,description,amount header. Absent dates serialize as empty cells.
func MarshalCSV(s Sequence) (string, error) {
	rows := make([]csvRow, 0, len(s))
	for _, t := range s {
		var date string
		if t.HasDate() {
			date = t.Date.Format(csvDateLayout)
		}
		rows = append(rows, csvRow{
			Date:        date,
			Description: t.Description,
			Amount:      t.Amount.String(),
		})
	}
	return gocsv.MarshalString(&rows)
}

// ParseCanonicalDate parses the canonical export date format.
func ParseCanonicalDate(s string) (time.Time, error) {
	return time.Parse(csvDateLayout, s)
}

package parser

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// dateLayouts is the permissive parsing ladder. Day-first layouts come before
// month-first because the statements this system targets follow the regional
// convention of writing the day first.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"02-01-2006",
	"02.01.2006",
	"2006/01/02",
	"01/02/2006",
	"01-02-2006",
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05",
	"02/01/2006 15:04",
}

// CoerceDate parses a date permissively. Unparseable values coerce to the
// zero time rather than failing the row.
func CoerceDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// CoerceAmount normalizes a free-form monetary cell to a decimal. It strips
// every character except digits, comma, minus and dot, then treats comma as
// the decimal separator (removing dot thousands separators first) when one is
// present. Unparseable cells coerce to zero with ok=false.
func CoerceAmount(s string) (decimal.Decimal, bool) {
	cleaned := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' || r == ',' || r == '-' || r == '.' {
			return r
		}
		return -1
	}, s)

	if cleaned == "" || cleaned == "-" {
		return decimal.Zero, false
	}

	if strings.Contains(cleaned, ",") {
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

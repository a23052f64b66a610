// Package transaction defines the canonical statement record that every
// parser normalizes into. Downstream engines (categorization, insights)
// consume only this schema and never see the source format.
package transaction

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the canonical unit produced by all parsers.
// Amount follows a single sign convention: expenses are negative, income is
// positive. A zero Date means the source carried no parseable date.
type Transaction struct {
	Date        time.Time
	Description string
	Amount      decimal.Decimal
}

// HasDate reports whether the transaction carries a resolvable date.
func (t Transaction) HasDate() bool {
	return !t.Date.IsZero()
}

// IsExpense reports whether the transaction is an outflow.
func (t Transaction) IsExpense() bool {
	return t.Amount.IsNegative()
}

// Sequence is an ordered collection of transactions. Parsers produce a fresh
// Sequence per invocation and retain no state afterwards.
type Sequence []Transaction

// HasDates reports whether at least one transaction has a resolvable date.
func (s Sequence) HasDates() bool {
	for _, t := range s {
		if t.HasDate() {
			return true
		}
	}
	return false
}

// SortByDate orders the sequence by date ascending when at least one
// transaction has a resolvable date; otherwise insertion order is kept.
// Undated transactions sort after dated ones, preserving their relative order.
func (s Sequence) SortByDate() {
	if !s.HasDates() {
		return
	}
	sort.SliceStable(s, func(i, j int) bool {
		if !s[i].HasDate() || !s[j].HasDate() {
			return s[i].HasDate()
		}
		return s[i].Date.Before(s[j].Date)
	})
}

// TotalIncome sums all positive amounts.
func (s Sequence) TotalIncome() decimal.Decimal {
	total := decimal.Zero
	for _, t := range s {
		if t.Amount.IsPositive() {
			total = total.Add(t.Amount)
		}
	}
	return total
}

// TotalSpent sums the absolute values of all negative amounts.
func (s Sequence) TotalSpent() decimal.Decimal {
	total := decimal.Zero
	for _, t := range s {
		if t.Amount.IsNegative() {
			total = total.Add(t.Amount.Abs())
		}
	}
	return total
}

// Categorized is a Transaction augmented with a spending category label.
// It is always a copy; categorization never mutates the source Sequence.
type Categorized struct {
	Transaction
	Category string
}

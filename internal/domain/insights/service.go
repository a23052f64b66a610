// Package insights aggregates categorized transactions into a one-shot
// report: category totals, recurring-charge candidates and rule-based
// savings suggestions, optionally complemented by external commentary.
package insights

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/extrato-dev/extrato/internal/domain/transaction"
	"github.com/extrato-dev/extrato/pkg/money"
)

// DefaultRecurringThreshold is the occurrence count at which an exact
// description is reported as a candidate recurring charge.
const DefaultRecurringThreshold = 3

// topCategoryCount is how many categories receive a reduction suggestion.
const topCategoryCount = 3

// recurringListCap bounds how many recurring descriptions one suggestion names.
const recurringListCap = 5

// CategoryTotal is one row of the category summary.
type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total_spent"`
}

// Bundle is the read-only insight report for one statement. It is built
// once per pipeline run and never mutated afterwards.
type Bundle struct {
	ID              uuid.UUID       `json:"id"`
	CategorySummary []CategoryTotal `json:"category_summary"`
	RuleSuggestions []string        `json:"rule_suggestions"`
	Commentary      string          `json:"commentary"`
	TotalSpent      decimal.Decimal `json:"total_spent"`
	Income          decimal.Decimal `json:"income"`
}

// Summarizer is the external commentary collaborator. Failures degrade to an
// empty commentary, never to a pipeline error.
type Summarizer interface {
	Summarize(ctx context.Context, digest string) (string, error)
}

// Service derives insights from categorized transactions.
type Service struct {
	summarizer         Summarizer
	recurringThreshold int
	logger             *slog.Logger
}

// NewService builds the insight engine. A nil summarizer disables external
// commentary; a threshold below one falls back to the default.
func NewService(summarizer Summarizer, recurringThreshold int, logger *slog.Logger) *Service {
	if recurringThreshold < 1 {
		recurringThreshold = DefaultRecurringThreshold
	}
	return &Service{
		summarizer:         summarizer,
		recurringThreshold: recurringThreshold,
		logger:             logger,
	}
}

// Generate builds the full insight bundle for one categorized statement.
func (s *Service) Generate(ctx context.Context, txs []transaction.Categorized) (*Bundle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	summary := SummaryByCategory(txs)
	recurring := s.DetectRecurring(txs)
	suggestions := s.ruleSuggestions(summary, recurring, txs)

	bundle := &Bundle{
		ID:              uuid.New(),
		CategorySummary: summary,
		RuleSuggestions: suggestions,
		TotalSpent:      totalSpent(txs),
		Income:          totalIncome(txs),
	}

	bundle.Commentary = s.commentary(ctx, summary, suggestions)
	return bundle, nil
}

// SummaryByCategory sums absolute expense per category over transactions with
// negative amount, sorted descending by total. Ties keep the category that
// was encountered first.
func SummaryByCategory(txs []transaction.Categorized) []CategoryTotal {
	totals := make(map[string]decimal.Decimal)
	var order []string

	for _, t := range txs {
		if !t.Amount.IsNegative() {
			continue
		}
		if _, seen := totals[t.Category]; !seen {
			order = append(order, t.Category)
		}
		totals[t.Category] = totals[t.Category].Add(t.Amount.Abs())
	}

	summary := make([]CategoryTotal, 0, len(order))
	for _, cat := range order {
		summary = append(summary, CategoryTotal{Category: cat, Total: totals[cat]})
	}

	// Stable sort preserves first-encountered order among equal totals.
	sort.SliceStable(summary, func(i, j int) bool {
		return summary[i].Total.GreaterThan(summary[j].Total)
	})
	return summary
}

// DetectRecurring reports descriptions occurring at or above the threshold,
// in first-occurrence order. Matching is exact: near-duplicate descriptions
// are not merged.
func (s *Service) DetectRecurring(txs []transaction.Categorized) []string {
	counts := make(map[string]int)
	var order []string

	for _, t := range txs {
		if counts[t.Description] == 0 {
			order = append(order, t.Description)
		}
		counts[t.Description]++
	}

	var recurring []string
	for _, desc := range order {
		if counts[desc] >= s.recurringThreshold {
			recurring = append(recurring, desc)
		}
	}
	return recurring
}

// ruleSuggestions emits suggestions in a fixed order: top categories by
// spend, then recurring charges, then a savings target. Each entry is
// emitted only when its triggering condition holds.
func (s *Service) ruleSuggestions(summary []CategoryTotal, recurring []string, txs []transaction.Categorized) []string {
	var suggestions []string

	top := summary
	if len(top) > topCategoryCount {
		top = top[:topCategoryCount]
	}
	for _, row := range top {
		suggestions = append(suggestions, fmt.Sprintf(
			"Gasto alto em '%s': %s. Considere revisar assinaturas e reduzir 10%% nas despesas desse grupo.",
			row.Category, money.FormatBRL(row.Total),
		))
	}

	if len(recurring) > 0 {
		listed := recurring
		if len(listed) > recurringListCap {
			listed = listed[:recurringListCap]
		}
		suggestions = append(suggestions, fmt.Sprintf(
			"Possíveis assinaturas recorrentes detectadas: %s. Revise contratos e cancele o que não utiliza.",
			strings.Join(listed, ", "),
		))
	}

	if income := totalIncome(txs); income.IsPositive() {
		suggestions = append(suggestions, fmt.Sprintf(
			"Renda total detectada no período: %s. Considere poupar 10%% da sua renda mensal como meta inicial.",
			money.FormatBRL(income),
		))
	}

	return suggestions
}

// commentary asks the external summarizer for free-text commentary over a
// plain-text digest. Any failure yields an empty string.
func (s *Service) commentary(ctx context.Context, summary []CategoryTotal, suggestions []string) string {
	if s.summarizer == nil {
		return ""
	}

	var digest strings.Builder
	digest.WriteString("Resumo das maiores categorias e sugestões:\n")
	for _, row := range summary {
		fmt.Fprintf(&digest, "Categoria: %s, gasto: %s\n", row.Category, money.FormatBRL(row.Total))
	}
	digest.WriteString("Sugestões iniciais:\n")
	for _, sug := range suggestions {
		fmt.Fprintf(&digest, "- %s\n", sug)
	}

	text, err := s.summarizer.Summarize(ctx, digest.String())
	if err != nil {
		s.logger.Warn("summarizer unavailable", slog.Any("error", err))
		return ""
	}
	return text
}

func totalIncome(txs []transaction.Categorized) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txs {
		if t.Amount.IsPositive() {
			total = total.Add(t.Amount)
		}
	}
	return total
}

func totalSpent(txs []transaction.Categorized) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txs {
		if t.Amount.IsNegative() {
			total = total.Add(t.Amount.Abs())
		}
	}
	return total
}

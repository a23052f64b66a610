package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/extrato-dev/extrato/internal/domain/categorization"
	"github.com/extrato-dev/extrato/internal/domain/ingest"
	"github.com/extrato-dev/extrato/internal/domain/ingest/parser"
	"github.com/extrato-dev/extrato/internal/domain/ingest/pdfext"
	"github.com/extrato-dev/extrato/internal/domain/insights"
	"github.com/extrato-dev/extrato/internal/domain/transaction"
	"github.com/extrato-dev/extrato/pkg/money"
)

func newAnalyzeCommand(logger *slog.Logger) *cobra.Command {
	var threshold int
	var asJSON bool
	var signedDebits bool

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Parse a statement file and print categories and insights",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading statement: %w", err)
			}

			cfg := parser.DefaultConfig()
			cfg.DebitIsMagnitude = !signedDebits
			svc := ingest.NewService(cfg, pdfext.PDFLayout{}, logger)

			txs, err := svc.Parse(cmd.Context(), filepath.Base(args[0]), data)
			if err != nil {
				return fmt.Errorf("parsing statement: %w", err)
			}

			rules := categorization.DefaultRuleset()
			categorized := categorization.NewEngine(rules).Categorize(txs)

			insightsSvc := insights.NewService(nil, threshold, logger)
			bundle, err := insightsSvc.Generate(cmd.Context(), categorized)
			if err != nil {
				return fmt.Errorf("generating insights: %w", err)
			}

			if asJSON {
				return printAnalysisJSON(cmd, categorized, bundle)
			}
			printAnalysisText(cmd, categorized, bundle)
			return nil
		},
	}

	cmd.Flags().IntVar(&threshold, "threshold", insights.DefaultRecurringThreshold,
		"occurrences before a description counts as recurring")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit JSON instead of a text report")
	cmd.Flags().BoolVar(&signedDebits, "signed-debits", false,
		"treat debit column values as already signed")

	return cmd
}

func printAnalysisText(cmd *cobra.Command, categorized []transaction.Categorized, bundle *insights.Bundle) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Transações (%d):\n", len(categorized))
	for _, tx := range categorized {
		date := "          "
		if tx.HasDate() {
			date = tx.Date.Format("2006-01-02")
		}
		fmt.Fprintf(out, "  %s  %-12s %10s  %s\n",
			date, tx.Category, money.Round2(tx.Amount).StringFixed(2), tx.Description)
	}

	fmt.Fprintf(out, "\nGastos por categoria:\n")
	for _, row := range bundle.CategorySummary {
		fmt.Fprintf(out, "  %-12s %s\n", row.Category, money.FormatBRL(row.Total))
	}

	if len(bundle.RuleSuggestions) > 0 {
		fmt.Fprintf(out, "\nSugestões:\n")
		for _, sug := range bundle.RuleSuggestions {
			fmt.Fprintf(out, "  - %s\n", sug)
		}
	}

	fmt.Fprintf(out, "\nTotal gasto: %s  Renda: %s\n",
		money.FormatBRL(bundle.TotalSpent), money.FormatBRL(bundle.Income))
}

func printAnalysisJSON(cmd *cobra.Command, categorized []transaction.Categorized, bundle *insights.Bundle) error {
	type txPayload struct {
		Date        *string `json:"date"`
		Description string  `json:"description"`
		Amount      float64 `json:"amount"`
		Category    string  `json:"category"`
	}
	type report struct {
		Transactions []txPayload      `json:"transactions"`
		Insights     *insights.Bundle `json:"insights"`
	}

	out := report{Insights: bundle}
	for _, tx := range categorized {
		var date *string
		if tx.HasDate() {
			d := tx.Date.Format("2006-01-02")
			date = &d
		}
		out.Transactions = append(out.Transactions, txPayload{
			Date:        date,
			Description: tx.Description,
			Amount:      money.Float2(tx.Amount),
			Category:    tx.Category,
		})
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

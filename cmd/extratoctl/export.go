package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/extrato-dev/extrato/internal/domain/ingest"
	"github.com/extrato-dev/extrato/internal/domain/ingest/parser"
	"github.com/extrato-dev/extrato/internal/domain/ingest/pdfext"
	"github.com/extrato-dev/extrato/internal/domain/transaction"
)

func newExportCommand(logger *slog.Logger) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Parse a statement file and write canonical CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading statement: %w", err)
			}

			svc := ingest.NewService(parser.DefaultConfig(), pdfext.PDFLayout{}, logger)
			txs, err := svc.Parse(cmd.Context(), filepath.Base(args[0]), data)
			if err != nil {
				return fmt.Errorf("parsing statement: %w", err)
			}

			csvText, err := transaction.MarshalCSV(txs)
			if err != nil {
				return fmt.Errorf("encoding csv: %w", err)
			}

			if output == "" || output == "-" {
				fmt.Fprint(cmd.OutOrStdout(), csvText)
				return nil
			}
			if err := os.WriteFile(output, []byte(csvText), 0o644); err != nil {
				return fmt.Errorf("writing output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d transactions to %s\n", len(txs), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	return cmd
}

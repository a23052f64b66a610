// extratoctl runs the statement pipeline from the command line: analyze a
// statement file, export it as canonical CSV, list categories or fetch
// market quotes.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	rootCmd := &cobra.Command{
		Use:   "extratoctl",
		Short: "Bank statement analysis from the command line",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newAnalyzeCommand(logger))
	rootCmd.AddCommand(newExportCommand(logger))
	rootCmd.AddCommand(newCategoriesCommand())
	rootCmd.AddCommand(newQuotesCommand(logger))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

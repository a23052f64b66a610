package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/extrato-dev/extrato/internal/domain/categorization"
)

func newCategoriesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the built-in categories and their keywords",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			for _, rule := range categorization.DefaultRuleset() {
				fmt.Fprintf(out, "%-12s %s\n", rule.Category, strings.Join(rule.Keywords, ", "))
			}
			fmt.Fprintf(out, "%-12s (sem correspondência)\n", categorization.Outros)
			return nil
		},
	}
}

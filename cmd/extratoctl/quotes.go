package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/extrato-dev/extrato/internal/domain/market"
)

func newQuotesCommand(logger *slog.Logger) *cobra.Command {
	var interval string
	var outputsize string

	cmd := &cobra.Command{
		Use:   "quotes <symbol>",
		Short: "Fetch intraday quotes from Alpha Vantage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := market.NewClient(os.Getenv("ALPHA_VANTAGE_API_KEY"), logger)

			quotes, err := client.Intraday(cmd.Context(), args[0], interval, outputsize)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-20s %10s %10s %10s %10s %12s\n",
				"time", "open", "high", "low", "close", "volume")
			for _, q := range quotes {
				fmt.Fprintf(out, "%-20s %10s %10s %10s %10s %12s\n",
					q.Time.Format("2006-01-02 15:04"),
					q.Open.StringFixed(2), q.High.StringFixed(2),
					q.Low.StringFixed(2), q.Close.StringFixed(2),
					q.Volume.StringFixed(0))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&interval, "interval", market.DefaultInterval, "bar interval")
	cmd.Flags().StringVar(&outputsize, "outputsize", market.DefaultOutputSize, "compact or full")

	return cmd
}

package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var historyLimit int

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Number of rows to show.")
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Shows the most recently archived snapshot rows.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := setup()
		if err != nil {
			return err
		}

		reader, closeFn, err := openHistoryReader(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer closeFn()

		rows, err := reader.Recent(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "UPDATED\tPERIOD\tHEAD\tCLEAR\tVOR\tAYCI\tRUN")
		for _, r := range rows {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				r.UpdatedAt.Format("2006-01-02 15:04"), r.Period,
				r.Record.TotalHead, r.Record.ClearanceRate, r.Record.AmountOverReserve, r.Record.AYCIDW,
				r.RunID)
		}
		return w.Flush()
	},
}

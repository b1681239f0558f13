package cmd

import (
	"github.com/Re-Quant/calc/internal/database"
	"github.com/Re-Quant/calc/internal/planner"
	"github.com/spf13/cobra"
)

var (
	historyLimit  int
	historyOutput string
)

var historyCmd = &cobra.Command{
	Use:   "history [plan-id]",
	Short: "List journaled plans or show one of them",
	Long: `Without arguments, list the most recent calculated plans, newest first.
With a plan ID, print that plan's full trade info.

Examples:
  riskcalc history --limit 5
  riskcalc history 01HZX3N5V8Q2K7M4T9B6C1D0EF --output json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of plans to list (0 for all)")
	historyCmd.Flags().StringVarP(&historyOutput, "output", "o", "table", "output format for a single plan: table, json or yaml")
}

func runHistory(cmd *cobra.Command, args []string) error {
	db, err := database.NewDatabase(cfg.Database.DSN)
	if err != nil {
		return err
	}
	store := database.NewPlanStore(db)

	if len(args) == 0 {
		plans, err := store.Recent(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		return renderHistory(cmd.OutOrStdout(), plans)
	}

	render, err := renderer(historyOutput)
	if err != nil {
		return err
	}
	row, info, err := store.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return render(cmd.OutOrStdout(), planner.Result{
		ID:          row.ID,
		Symbol:      row.Symbol,
		MarketPrice: row.MarketPrice,
		Info:        info,
	})
}

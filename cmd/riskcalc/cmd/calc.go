package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Re-Quant/calc/internal/binance"
	"github.com/Re-Quant/calc/internal/database"
	"github.com/Re-Quant/calc/internal/plan"
	"github.com/Re-Quant/calc/internal/planner"
	"github.com/Re-Quant/calc/internal/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	calcOutput    string
	calcNoJournal bool
)

var calcCmd = &cobra.Command{
	Use:   "calc <plan-file>",
	Short: "Size a trade plan",
	Long: `Read a plan file (YAML, JSON or TOML), fill unset fields from the
"defaults" config section, look up the market price when a leg is placed by
offset, and print the full trade info.`,
	Args: cobra.ExactArgs(1),
	RunE: runCalc,
}

func init() {
	rootCmd.AddCommand(calcCmd)
	calcCmd.Flags().StringVarP(&calcOutput, "output", "o", "table", "output format: table, json or yaml")
	calcCmd.Flags().BoolVar(&calcNoJournal, "no-journal", false, "do not store the result in the journal")
}

func runCalc(cmd *cobra.Command, args []string) error {
	render, err := renderer(calcOutput)
	if err != nil {
		return err
	}

	p, err := plan.Load(args[0])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var prices planner.PriceSource
	if p.NeedsMarketPrice() {
		prices = binance.NewRestClient(cfg.Binance, log)
	}

	var journal planner.Journal
	if !calcNoJournal {
		db, err := database.NewDatabase(cfg.Database.DSN)
		if err != nil {
			return err
		}
		journal = database.NewPlanStore(db)
	}

	svc := planner.NewService(log, prices, journal, cfg.Defaults)
	res, err := svc.Calculate(ctx, p)
	if err != nil {
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			printValidationErrors(cmd, verrs)
		}
		return err
	}

	log.Debug("Rendering result", zap.String("format", calcOutput))
	return render(cmd.OutOrStdout(), res)
}

func printValidationErrors(cmd *cobra.Command, errs validation.Errors) {
	w := cmd.ErrOrStderr()
	fmt.Fprintln(w, "Plan is invalid:")
	for _, path := range errs.Paths() {
		fmt.Fprintf(w, "  %-28s %s\n", path, errs[path].Message)
	}
}

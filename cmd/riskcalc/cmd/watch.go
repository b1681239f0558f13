package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Re-Quant/calc/internal/binance"
	"github.com/Re-Quant/calc/internal/plan"
	"github.com/Re-Quant/calc/internal/planner"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	watchInterval time.Duration
	watchOutput   string
)

var watchCmd = &cobra.Command{
	Use:   "watch <plan-file>",
	Short: "Recalculate a plan as the market price moves",
	Long: `Poll the market price and resize a plan whose legs are placed by offset.
Results are printed on every tick and are not journaled. Stop with Ctrl-C.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().DurationVarP(&watchInterval, "interval", "i", 10*time.Second, "time between recalculations")
	watchCmd.Flags().StringVarP(&watchOutput, "output", "o", "table", "output format: table, json or yaml")
}

func runWatch(cmd *cobra.Command, args []string) error {
	render, err := renderer(watchOutput)
	if err != nil {
		return err
	}
	if watchInterval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", watchInterval)
	}

	p, err := plan.Load(args[0])
	if err != nil {
		return err
	}
	if !p.NeedsMarketPrice() {
		return fmt.Errorf("plan %s has no offset legs; use calc instead", args[0])
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc := planner.NewService(log, binance.NewRestClient(cfg.Binance, log), nil, cfg.Defaults)
	out := cmd.OutOrStdout()
	planner.NewWatcher(log, svc, p, watchInterval, func(res planner.Result) {
		fmt.Fprintf(out, "--- %s\n", time.Now().Format(time.RFC3339))
		if err := render(out, res); err != nil {
			log.Error("Failed to render result", zap.Error(err))
		}
	}).Run(ctx)
	return nil
}

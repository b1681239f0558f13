package cmd

import (
	"fmt"

	"github.com/Re-Quant/calc/internal/config"
	"github.com/Re-Quant/calc/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configDir string
	cfg       config.Config
	log       = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "riskcalc",
	Short: "Position sizing and risk analytics for trade plans",
	Long: `riskcalc sizes a trade from a plan file so that hitting every stop
loses exactly the chosen fraction of the deposit.

It reports per-order volumes, fees, running totals and P/L, the leverage
needed, average prices, the breakeven price and the margin call price.
Calculated plans are kept in a SQLite journal.

Examples:
  riskcalc calc plans/btc-long.yml
  riskcalc calc plans/eth-short.json --output yaml --no-journal
  riskcalc history --limit 5`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	defer func() { _ = log.Sync() }()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configDir, "config-dir", "c", "./configs", "directory holding config.yml and .env")
}

func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.LoadConfig(configDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	l, err := logger.NewLogger(cfg.Logger)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	log = l
	return nil
}

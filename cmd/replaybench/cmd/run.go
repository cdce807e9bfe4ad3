package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/replaybench/backtest"
	"github.com/rustyeddy/replaybench/config"
	"github.com/rustyeddy/replaybench/journal"
	"github.com/rustyeddy/replaybench/market"
	"github.com/rustyeddy/replaybench/metrics"
	"github.com/rustyeddy/replaybench/store"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Replay a decision log against a candle dataset",
	Long: `Replay a recorded agent decision log over a historical dataset using
settings from a configuration file.

Example:
  replaybench run -f examples/configs/nasdaq.yaml`,
	RunE: runRun,
}

var runConfigPath string

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON) (required)")
	runCmd.MarkFlagRequired("config")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	st, err := loadCandles(cfg.Data.Candles)
	if err != nil {
		return fmt.Errorf("load candles: %w", err)
	}
	for _, sym := range cfg.Simulation.Universe {
		if st.Len(sym) == 0 {
			return fmt.Errorf("dataset %s has no bars for universe instrument %s", cfg.Data.Candles, sym)
		}
	}

	script, err := backtest.LoadScriptFile(cfg.Data.Decisions)
	if err != nil {
		return fmt.Errorf("load decisions: %w", err)
	}

	jnl, err := openJournal(cfg.Journal)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer jnl.Close()

	start, end, err := cfg.Simulation.Window()
	if err != nil {
		return err
	}
	steps := st.Times(start, end)
	if len(steps) == 0 {
		return fmt.Errorf("dataset %s has no bars in the configured window", cfg.Data.Candles)
	}

	periods, err := metrics.PeriodsPerYear(cfg.Simulation.Frequency, alwaysOpen(cfg.Simulation.Universe))
	if err != nil {
		return err
	}

	fmt.Printf("Replaying %s over %s (%d steps, $%.2f %s)\n\n",
		cfg.Data.Decisions, cfg.Data.Candles, len(steps), cfg.Account.Cash, cfg.Account.Currency)

	outs := backtest.RunAll(context.Background(), st, backtest.Options{
		Cash:    cfg.Account.Cash,
		Steps:   steps,
		Metrics: metrics.Options{PeriodsPerYear: periods},
		Log:     log,
	}, backtest.Agent{Source: script, Journal: jnl})

	out := outs[0]
	if out.Err != nil {
		return out.Err
	}
	backtest.PrintResult(os.Stdout, out.Result, out.Report)
	return nil
}

func loadCandles(path string) (*store.Store, error) {
	st := store.New()
	if strings.HasSuffix(path, ".csv") {
		return st, st.LoadCSVFile(path)
	}
	return st, st.LoadJSONLFile(path)
}

func openJournal(jc config.JournalConfig) (journal.Journal, error) {
	switch jc.Type {
	case "jsonl":
		return journal.NewJSONL(jc.Path)
	case "csv":
		return journal.NewCSV(jc.TradesFile, jc.EquityFile)
	case "sqlite":
		return journal.NewSQLite(jc.Path)
	default:
		return journal.Nop{}, nil
	}
}

// alwaysOpen reports whether every instrument in the universe trades every
// calendar day, which switches daily annualization from 252 to 365 periods.
func alwaysOpen(universe []string) bool {
	if len(universe) == 0 {
		return false
	}
	for _, sym := range universe {
		if market.ProfileFor(sym).Session != market.SessionAlways {
			return false
		}
	}
	return true
}
